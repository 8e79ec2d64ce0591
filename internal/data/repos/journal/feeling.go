package journal

import (
	"context"
	"strings"
	"time"

	types "github.com/mindmirror/mindmirror-backend/internal/domain"
	"github.com/mindmirror/mindmirror-backend/internal/platform/logger"
	"gorm.io/gorm"
)

// FeelingRepo persists journal entries. Every by-id method is scoped to the
// owner at the query, so a record that exists but belongs to someone else
// looks exactly like a missing one.
type FeelingRepo interface {
	Create(ctx context.Context, tx *gorm.DB, feeling *types.Feeling) (*types.Feeling, error)
	ListByOwner(ctx context.Context, tx *gorm.DB, ownerID string, filter types.ListFilter) ([]*types.Feeling, error)
	GetByIDForOwner(ctx context.Context, tx *gorm.DB, id, ownerID string) (*types.Feeling, error)
	Update(ctx context.Context, tx *gorm.DB, id, ownerID string, patch types.FeelingPatch) (*types.Feeling, error)
	Delete(ctx context.Context, tx *gorm.DB, id, ownerID string) (bool, error)
	AggregateMoodCounts(ctx context.Context, tx *gorm.DB, ownerID string) ([]types.MoodCount, error)
	ListSince(ctx context.Context, tx *gorm.DB, ownerID string, since time.Time) ([]*types.Feeling, error)
}

type feelingRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFeelingRepo(db *gorm.DB, baseLog *logger.Logger) FeelingRepo {
	repoLog := baseLog.With("repo", "FeelingRepo")
	return &feelingRepo{db: db, log: repoLog}
}

func (r *feelingRepo) Create(ctx context.Context, tx *gorm.DB, feeling *types.Feeling) (*types.Feeling, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	now := time.Now().UTC().Truncate(time.Microsecond)
	if strings.TrimSpace(feeling.ID) == "" {
		feeling.ID = types.NewID()
	}
	feeling.CreatedAt = now
	feeling.UpdatedAt = now

	if err := transaction.WithContext(ctx).Create(feeling).Error; err != nil {
		return nil, err
	}
	return feeling, nil
}

func (r *feelingRepo) ListByOwner(ctx context.Context, tx *gorm.DB, ownerID string, filter types.ListFilter) ([]*types.Feeling, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	results := []*types.Feeling{}
	q := transaction.WithContext(ctx).
		Where("owner_id = ?", ownerID)
	if filter.Mood != "" {
		q = q.Where("mood = ?", filter.Mood)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		if filter.Limit <= 0 {
			// sqlite refuses OFFSET without LIMIT
			q = q.Limit(-1)
		}
		q = q.Offset(filter.Offset)
	}
	if err := q.
		Order("created_at DESC").
		Order("id DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *feelingRepo) GetByIDForOwner(ctx context.Context, tx *gorm.DB, id, ownerID string) (*types.Feeling, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Feeling
	if err := transaction.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (r *feelingRepo) Update(ctx context.Context, tx *gorm.DB, id, ownerID string, patch types.FeelingPatch) (*types.Feeling, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	updates := map[string]any{
		"text":        patch.Text,
		"mood":        patch.Mood,
		"ai_response": patch.AIResponse,
		"updated_at":  time.Now().UTC().Truncate(time.Microsecond),
	}
	if patch.SetGratitude {
		updates["gratitude"] = patch.Gratitude
	}

	res := transaction.WithContext(ctx).
		Model(&types.Feeling{}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return r.GetByIDForOwner(ctx, transaction, id, ownerID)
}

func (r *feelingRepo) Delete(ctx context.Context, tx *gorm.DB, id, ownerID string) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	res := transaction.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&types.Feeling{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *feelingRepo) AggregateMoodCounts(ctx context.Context, tx *gorm.DB, ownerID string) ([]types.MoodCount, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	type row struct {
		Mood  string
		Count int64
	}
	var rows []row
	if err := transaction.WithContext(ctx).
		Model(&types.Feeling{}).
		Select("mood, COUNT(*) AS count").
		Where("owner_id = ?", ownerID).
		Group("mood").
		Order("count DESC").
		Order("mood ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]types.MoodCount, 0, len(rows))
	for _, rr := range rows {
		out = append(out, types.MoodCount{Mood: types.Mood(rr.Mood), Count: rr.Count})
	}
	return out, nil
}

func (r *feelingRepo) ListSince(ctx context.Context, tx *gorm.DB, ownerID string, since time.Time) ([]*types.Feeling, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	results := []*types.Feeling{}
	if err := transaction.WithContext(ctx).
		Where("owner_id = ? AND created_at >= ?", ownerID, since.UTC()).
		Order("created_at ASC").
		Order("id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
