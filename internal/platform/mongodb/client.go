package mongodb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/mindmirror/mindmirror-backend/internal/platform/logger"
)

type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type Client struct {
	Mongo    *mongo.Client
	Database *mongo.Database
	log      *logger.Logger
}

func NewClient(log *logger.Logger, cfg Config) (*Client, error) {
	if log == nil {
		return nil, fmt.Errorf("mongodb: logger required")
	}
	uri := strings.TrimSpace(cfg.URI)
	if uri == "" {
		return nil, fmt.Errorf("mongodb: missing MONGO_URI")
	}
	dbName := strings.TrimSpace(cfg.Database)
	if dbName == "" {
		dbName = "mindmirror"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)
	mc, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb: connect: %w", err)
	}
	if err := mc.Ping(ctx, readpref.Primary()); err != nil {
		_ = mc.Disconnect(context.Background())
		return nil, fmt.Errorf("mongodb: ping: %w", err)
	}

	clientLog := log.With("client", "MongoDB")
	clientLog.Info("MongoDB connected", "database", dbName)
	return &Client{
		Mongo:    mc,
		Database: mc.Database(dbName),
		log:      clientLog,
	}, nil
}

func (c *Client) Close(ctx context.Context) error {
	if c == nil || c.Mongo == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err := c.Mongo.Disconnect(ctx)
	c.Mongo = nil
	return err
}
