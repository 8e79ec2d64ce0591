package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	types "github.com/mindmirror/mindmirror-backend/internal/domain"
	"github.com/mindmirror/mindmirror-backend/internal/platform/logger"
)

const (
	keyPrefix  = "feelings:stats:"
	DefaultTTL = 60 * time.Second
)

type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// StatsCache stores a caller's stats payload as JSON. Failures are logged and
// reported as misses so the caller always falls back to the database.
type StatsCache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

// NewStatsCache returns nil, nil when no address is configured.
func NewStatsCache(ctx context.Context, log *logger.Logger, cfg Config) (*StatsCache, error) {
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, nil
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	serviceLog := log.With("service", "StatsCache")
	serviceLog.Info("Redis stats cache enabled", "addr", addr, "ttl", ttl.String())
	return &StatsCache{log: serviceLog, rdb: rdb, ttl: ttl}, nil
}

func Key(ownerID string) string { return keyPrefix + ownerID }

func (c *StatsCache) Get(ctx context.Context, ownerID string) (*types.FeelingStats, bool) {
	raw, err := c.rdb.Get(ctx, Key(ownerID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false
	}
	if err != nil {
		c.log.Warn("stats cache get failed", "owner_id", ownerID, "error", err)
		return nil, false
	}
	var stats types.FeelingStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		c.log.Warn("stats cache entry unreadable", "owner_id", ownerID, "error", err)
		_ = c.rdb.Del(ctx, Key(ownerID)).Err()
		return nil, false
	}
	return &stats, true
}

func (c *StatsCache) Set(ctx context.Context, ownerID string, stats *types.FeelingStats) {
	if stats == nil {
		return
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		c.log.Warn("stats cache encode failed", "owner_id", ownerID, "error", err)
		return
	}
	if err := c.rdb.Set(ctx, Key(ownerID), raw, c.ttl).Err(); err != nil {
		c.log.Warn("stats cache set failed", "owner_id", ownerID, "error", err)
	}
}

func (c *StatsCache) Invalidate(ctx context.Context, ownerID string) {
	if err := c.rdb.Del(ctx, Key(ownerID)).Err(); err != nil {
		c.log.Warn("stats cache invalidate failed", "owner_id", ownerID, "error", err)
	}
}

func (c *StatsCache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

// Ping backs the readiness probe and the metrics collector.
func (c *StatsCache) Ping(ctx context.Context) error {
	if c == nil || c.rdb == nil {
		return errors.New("stats cache disabled")
	}
	return c.rdb.Ping(ctx).Err()
}
