package repos

import (
	"context"

	"github.com/mindmirror/mindmirror-backend/internal/data/repos/journal"
	"github.com/mindmirror/mindmirror-backend/internal/platform/logger"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

type FeelingRepo = journal.FeelingRepo

func NewFeelingRepo(db *gorm.DB, baseLog *logger.Logger) FeelingRepo {
	return journal.NewFeelingRepo(db, baseLog)
}

func NewMongoFeelingRepo(database *mongo.Database, baseLog *logger.Logger) FeelingRepo {
	return journal.NewMongoFeelingRepo(database, baseLog)
}

func EnsureFeelingIndexes(ctx context.Context, database *mongo.Database) error {
	return journal.EnsureFeelingIndexes(ctx, database)
}
