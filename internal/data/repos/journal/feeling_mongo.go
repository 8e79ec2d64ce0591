package journal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	types "github.com/mindmirror/mindmirror-backend/internal/domain"
	"github.com/mindmirror/mindmirror-backend/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/gorm"
)

const FeelingCollection = "feelings"

type feelingDoc struct {
	ID         primitive.ObjectID `bson:"_id"`
	OwnerID    string             `bson:"userId"`
	Text       string             `bson:"text"`
	Mood       string             `bson:"mood"`
	Gratitude  *string            `bson:"gratitude,omitempty"`
	VoiceRef   *string            `bson:"voiceNote,omitempty"`
	VideoRef   *string            `bson:"videoNote,omitempty"`
	AIResponse string             `bson:"aiResponse"`
	CreatedAt  time.Time          `bson:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt"`
}

func (d *feelingDoc) toDomain() *types.Feeling {
	return &types.Feeling{
		ID:         d.ID.Hex(),
		OwnerID:    d.OwnerID,
		Text:       d.Text,
		Mood:       types.Mood(d.Mood),
		Gratitude:  d.Gratitude,
		VoiceRef:   d.VoiceRef,
		VideoRef:   d.VideoRef,
		AIResponse: d.AIResponse,
		CreatedAt:  d.CreatedAt.UTC(),
		UpdatedAt:  d.UpdatedAt.UTC(),
	}
}

type mongoFeelingRepo struct {
	coll *mongo.Collection
	log  *logger.Logger
}

// NewMongoFeelingRepo stores feelings in a MongoDB collection. The tx argument
// of every method is ignored.
func NewMongoFeelingRepo(database *mongo.Database, baseLog *logger.Logger) FeelingRepo {
	repoLog := baseLog.With("repo", "MongoFeelingRepo")
	return &mongoFeelingRepo{coll: database.Collection(FeelingCollection), log: repoLog}
}

// EnsureFeelingIndexes creates the (userId, createdAt) index used by list and stats.
func EnsureFeelingIndexes(ctx context.Context, database *mongo.Database) error {
	_, err := database.Collection(FeelingCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("idx_feeling_owner_created"),
	})
	if err != nil {
		return fmt.Errorf("ensure feeling indexes: %w", err)
	}
	return nil
}

func ownerScoped(id primitive.ObjectID, ownerID string) bson.M {
	return bson.M{"_id": id, "userId": ownerID}
}

func (r *mongoFeelingRepo) Create(ctx context.Context, _ *gorm.DB, feeling *types.Feeling) (*types.Feeling, error) {
	oid := primitive.NewObjectID()
	if raw := strings.TrimSpace(feeling.ID); raw != "" {
		parsed, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return nil, fmt.Errorf("feeling id %q: %w", raw, err)
		}
		oid = parsed
	}
	// mongo keeps millisecond precision
	now := time.Now().UTC().Truncate(time.Millisecond)

	doc := feelingDoc{
		ID:         oid,
		OwnerID:    feeling.OwnerID,
		Text:       feeling.Text,
		Mood:       string(feeling.Mood),
		Gratitude:  feeling.Gratitude,
		VoiceRef:   feeling.VoiceRef,
		VideoRef:   feeling.VideoRef,
		AIResponse: feeling.AIResponse,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *mongoFeelingRepo) ListByOwner(ctx context.Context, _ *gorm.DB, ownerID string, filter types.ListFilter) ([]*types.Feeling, error) {
	query := bson.M{"userId": ownerID}
	if filter.Mood != "" {
		query["mood"] = string(filter.Mood)
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}
	if filter.Offset > 0 {
		opts.SetSkip(int64(filter.Offset))
	}
	return r.find(ctx, query, opts)
}

func (r *mongoFeelingRepo) GetByIDForOwner(ctx context.Context, _ *gorm.DB, id, ownerID string) (*types.Feeling, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	var doc feelingDoc
	err = r.coll.FindOne(ctx, ownerScoped(oid, ownerID)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *mongoFeelingRepo) Update(ctx context.Context, _ *gorm.DB, id, ownerID string, patch types.FeelingPatch) (*types.Feeling, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	set := bson.M{
		"text":       patch.Text,
		"mood":       string(patch.Mood),
		"aiResponse": patch.AIResponse,
		"updatedAt":  time.Now().UTC().Truncate(time.Millisecond),
	}
	update := bson.M{"$set": set}
	if patch.SetGratitude {
		if patch.Gratitude == nil {
			update["$unset"] = bson.M{"gratitude": ""}
		} else {
			set["gratitude"] = *patch.Gratitude
		}
	}

	var doc feelingDoc
	err = r.coll.FindOneAndUpdate(
		ctx,
		ownerScoped(oid, ownerID),
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *mongoFeelingRepo) Delete(ctx context.Context, _ *gorm.DB, id, ownerID string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}
	res, err := r.coll.DeleteOne(ctx, ownerScoped(oid, ownerID))
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (r *mongoFeelingRepo) AggregateMoodCounts(ctx context.Context, _ *gorm.DB, ownerID string) ([]types.MoodCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"userId": ownerID}}},
		{{Key: "$group", Value: bson.M{"_id": "$mood", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	}
	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		Mood  string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	out := make([]types.MoodCount, 0, len(rows))
	for _, row := range rows {
		out = append(out, types.MoodCount{Mood: types.Mood(row.Mood), Count: row.Count})
	}
	return out, nil
}

func (r *mongoFeelingRepo) ListSince(ctx context.Context, _ *gorm.DB, ownerID string, since time.Time) ([]*types.Feeling, error) {
	query := bson.M{"userId": ownerID, "createdAt": bson.M{"$gte": since.UTC()}}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	return r.find(ctx, query, opts)
}

func (r *mongoFeelingRepo) find(ctx context.Context, query bson.M, opts *options.FindOptions) ([]*types.Feeling, error) {
	cur, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []feelingDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*types.Feeling, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}
