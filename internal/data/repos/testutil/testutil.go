package testutil

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	types "github.com/mindmirror/mindmirror-backend/internal/domain"
	"github.com/mindmirror/mindmirror-backend/internal/platform/logger"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var (
	logOnce sync.Once
	logg    *logger.Logger
	logErr  error

	dbSeq atomic.Int64
)

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	logOnce.Do(func() {
		logg, logErr = logger.New("test")
	})
	if logErr != nil {
		tb.Fatalf("failed to init logger: %v", logErr)
	}
	return logg
}

// DB opens a private in-memory SQLite database with the feeling table migrated.
// It is closed when the test finishes.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	name := fmt.Sprintf("file:feelings_%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(name), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("sqlite pool: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(&types.Feeling{}); err != nil {
		tb.Fatalf("automigrate: %v", err)
	}
	return db
}

// MongoDB connects to TEST_MONGO_URI and returns a throwaway database that is
// dropped on cleanup. Tests are skipped when the variable is unset.
func MongoDB(tb testing.TB) *mongo.Database {
	tb.Helper()

	uri := strings.TrimSpace(os.Getenv("TEST_MONGO_URI"))
	if uri == "" {
		tb.Skip("set TEST_MONGO_URI to run mongo repo integration tests")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		tb.Fatalf("mongo connect: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		tb.Fatalf("mongo ping: %v", err)
	}

	database := client.Database(fmt.Sprintf("mindmirror_test_%d", time.Now().UnixNano()))
	tb.Cleanup(func() {
		cctx, ccancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer ccancel()
		_ = database.Drop(cctx)
		_ = client.Disconnect(cctx)
	})
	return database
}

// SeedFeeling inserts a record directly, bypassing the repo, with an explicit createdAt.
func SeedFeeling(tb testing.TB, ctx context.Context, db *gorm.DB, ownerID string, mood types.Mood, createdAt time.Time) *types.Feeling {
	tb.Helper()
	f := &types.Feeling{
		ID:         types.NewID(),
		OwnerID:    ownerID,
		Text:       "seeded " + string(mood),
		Mood:       mood,
		AIResponse: "seeded response",
		CreatedAt:  createdAt.UTC(),
		UpdatedAt:  createdAt.UTC(),
	}
	if err := db.WithContext(ctx).Create(f).Error; err != nil {
		tb.Fatalf("seed feeling: %v", err)
	}
	return f
}
