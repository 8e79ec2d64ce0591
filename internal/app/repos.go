package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo/readpref"
	"gorm.io/gorm"

	"github.com/mindmirror/mindmirror-backend/internal/data/db"
	"github.com/mindmirror/mindmirror-backend/internal/data/repos"
	"github.com/mindmirror/mindmirror-backend/internal/platform/logger"
	"github.com/mindmirror/mindmirror-backend/internal/platform/mongodb"
)

type DatabaseBootstrapErrorCode string

const (
	DatabaseBootstrapErrorInvalidDriver DatabaseBootstrapErrorCode = "invalid_driver"
	DatabaseBootstrapErrorConnectFailed DatabaseBootstrapErrorCode = "connect_failed"
	DatabaseBootstrapErrorMigrateFailed DatabaseBootstrapErrorCode = "migrate_failed"
)

type DatabaseBootstrapError struct {
	Code   DatabaseBootstrapErrorCode
	Driver string
	Cause  error
}

func (e *DatabaseBootstrapError) Error() string {
	if e == nil {
		return "database bootstrap failed"
	}
	return fmt.Sprintf("database bootstrap failed (code=%s driver=%q): %v", e.Code, e.Driver, e.Cause)
}

func (e *DatabaseBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

type Repos struct {
	Feeling repos.FeelingRepo

	// SQL is nil when DB_DRIVER=mongo.
	SQL   *gorm.DB
	Ping  func(ctx context.Context) error
	close func(ctx context.Context) error
}

func (r *Repos) Close(ctx context.Context) error {
	if r == nil || r.close == nil {
		return nil
	}
	return r.close(ctx)
}

func wireRepos(ctx context.Context, log *logger.Logger, cfg Config) (*Repos, error) {
	log.Info("Wiring repos...", "driver", cfg.DBDriver)
	switch strings.ToLower(strings.TrimSpace(cfg.DBDriver)) {
	case DBDriverPostgres, "":
		return wirePostgresRepos(log, cfg)
	case DBDriverMongo:
		return wireMongoRepos(ctx, log, cfg)
	default:
		return nil, &DatabaseBootstrapError{
			Code:   DatabaseBootstrapErrorInvalidDriver,
			Driver: cfg.DBDriver,
			Cause:  errors.New("DB_DRIVER must be postgres or mongo"),
		}
	}
}

func wirePostgresRepos(log *logger.Logger, cfg Config) (*Repos, error) {
	pg, err := db.NewPostgresService(log, cfg.Postgres)
	if err != nil {
		return nil, &DatabaseBootstrapError{Code: DatabaseBootstrapErrorConnectFailed, Driver: DBDriverPostgres, Cause: err}
	}
	if err := db.AutoMigrateAll(pg.DB()); err != nil {
		_ = pg.Close()
		return nil, &DatabaseBootstrapError{Code: DatabaseBootstrapErrorMigrateFailed, Driver: DBDriverPostgres, Cause: err}
	}
	return sqlRepos(log, pg.DB(), func(context.Context) error { return pg.Close() }), nil
}

func sqlRepos(log *logger.Logger, gdb *gorm.DB, closer func(context.Context) error) *Repos {
	return &Repos{
		Feeling: repos.NewFeelingRepo(gdb, log),
		SQL:     gdb,
		Ping: func(ctx context.Context) error {
			sqlDB, err := gdb.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		close: closer,
	}
}

func wireMongoRepos(ctx context.Context, log *logger.Logger, cfg Config) (*Repos, error) {
	client, err := mongodb.NewClient(log, mongodb.Config{
		URI:      cfg.MongoURI,
		Database: cfg.MongoDatabase,
		Timeout:  10 * time.Second,
	})
	if err != nil {
		return nil, &DatabaseBootstrapError{Code: DatabaseBootstrapErrorConnectFailed, Driver: DBDriverMongo, Cause: err}
	}
	if err := repos.EnsureFeelingIndexes(ctx, client.Database); err != nil {
		_ = client.Close(context.Background())
		return nil, &DatabaseBootstrapError{Code: DatabaseBootstrapErrorMigrateFailed, Driver: DBDriverMongo, Cause: err}
	}
	return &Repos{
		Feeling: repos.NewMongoFeelingRepo(client.Database, log),
		Ping: func(ctx context.Context) error {
			return client.Mongo.Ping(ctx, readpref.Primary())
		},
		close: client.Close,
	}, nil
}
