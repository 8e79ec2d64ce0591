package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/mindmirror/mindmirror-backend/internal/data/repos"
	types "github.com/mindmirror/mindmirror-backend/internal/domain"
	"github.com/mindmirror/mindmirror-backend/internal/platform/apierr"
	"github.com/mindmirror/mindmirror-backend/internal/platform/ctxutil"
	"github.com/mindmirror/mindmirror-backend/internal/platform/logger"
)

const (
	// StatsWindow is how far back weekTrends reaches.
	StatsWindow  = 7 * 24 * time.Hour
	MaxListLimit = 500

	msgEditNotFound   = "Feeling not found or you do not have permission to edit it"
	msgDeleteNotFound = "Feeling not found or you do not have permission to delete it"
	msgGetNotFound    = "Feeling not found"
)

// StatsCache is an optional read-through cache of a caller's stats.
type StatsCache interface {
	Get(ctx context.Context, ownerID string) (*types.FeelingStats, bool)
	Set(ctx context.Context, ownerID string, stats *types.FeelingStats)
	Invalidate(ctx context.Context, ownerID string)
}

type CreateFeelingInput struct {
	Text      string
	Mood      string
	Gratitude *string
	Voice     *Upload
	Video     *Upload
}

// UpdateFeelingInput replaces text and mood. A nil Gratitude leaves it as is;
// a blank one clears it.
type UpdateFeelingInput struct {
	Text      string
	Mood      string
	Gratitude *string
}

type ListFeelingsInput struct {
	Mood   string
	Limit  int
	Offset int
}

type FeelingService interface {
	Create(ctx context.Context, in CreateFeelingInput) (*types.Feeling, error)
	List(ctx context.Context, in ListFeelingsInput) ([]*types.Feeling, error)
	Get(ctx context.Context, id string) (*types.Feeling, error)
	Stats(ctx context.Context) (*types.FeelingStats, error)
	Update(ctx context.Context, id string, in UpdateFeelingInput) (*types.Feeling, error)
	Delete(ctx context.Context, id string) error
}

type feelingService struct {
	log       *logger.Logger
	repo      repos.FeelingRepo
	responder Responder
	media     MediaStore
	cache     StatsCache
	now       func() time.Time
}

// NewFeelingService wires the feelings use cases. cache may be nil.
func NewFeelingService(
	log *logger.Logger,
	repo repos.FeelingRepo,
	responder Responder,
	media MediaStore,
	cache StatsCache,
) FeelingService {
	return &feelingService{
		log:       log.With("service", "FeelingService"),
		repo:      repo,
		responder: responder,
		media:     media,
		cache:     cache,
		now:       time.Now,
	}
}

func (s *feelingService) Create(ctx context.Context, in CreateFeelingInput) (*types.Feeling, error) {
	ownerID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	text, mood, err := validateEntry(in.Text, in.Mood, in.Gratitude)
	if err != nil {
		return nil, err
	}

	voiceRef, videoRef, err := s.storeAttachments(ctx, in.Voice, in.Video)
	if err != nil {
		s.log.Error("attachment upload failed", s.fields(ctx, ownerID, "error", err)...)
		return nil, apierr.Storage("failed to store attachment", err)
	}

	feeling := &types.Feeling{
		ID:         types.NewID(),
		OwnerID:    ownerID,
		Text:       text,
		Mood:       mood,
		Gratitude:  normalizeGratitude(in.Gratitude),
		VoiceRef:   voiceRef,
		VideoRef:   videoRef,
		AIResponse: s.responder.Select(mood),
	}
	created, err := s.repo.Create(ctx, nil, feeling)
	if err != nil {
		s.log.Error("create feeling failed", s.fields(ctx, ownerID, "error", err)...)
		s.removeAttachments(ctx, ownerID, voiceRef, videoRef)
		return nil, apierr.Storage("failed to save feeling", err)
	}

	s.invalidate(ctx, ownerID)
	s.log.Info("feeling created", s.fields(ctx, ownerID, "feeling_id", created.ID, "mood", created.Mood)...)
	return created, nil
}

func (s *feelingService) List(ctx context.Context, in ListFeelingsInput) ([]*types.Feeling, error) {
	ownerID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	filter := types.ListFilter{Limit: in.Limit, Offset: in.Offset}
	if strings.TrimSpace(in.Mood) != "" {
		mood, err := types.ParseMood(in.Mood)
		if err != nil {
			return nil, invalidMood()
		}
		filter.Mood = mood
	}
	if filter.Limit < 0 || filter.Offset < 0 {
		return nil, apierr.BadRequest(apierr.CodeInvalidRequest, "limit and offset must not be negative")
	}
	if filter.Limit > MaxListLimit {
		filter.Limit = MaxListLimit
	}

	out, err := s.repo.ListByOwner(ctx, nil, ownerID, filter)
	if err != nil {
		s.log.Error("list feelings failed", s.fields(ctx, ownerID, "error", err)...)
		return nil, apierr.Storage("failed to load feelings", err)
	}
	if out == nil {
		out = []*types.Feeling{}
	}
	return out, nil
}

func (s *feelingService) Get(ctx context.Context, id string) (*types.Feeling, error) {
	ownerID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	feelingID, err := parseFeelingID(id)
	if err != nil {
		return nil, err
	}
	found, err := s.repo.GetByIDForOwner(ctx, nil, feelingID, ownerID)
	if err != nil {
		s.log.Error("get feeling failed", s.fields(ctx, ownerID, "feeling_id", feelingID, "error", err)...)
		return nil, apierr.Storage("failed to load feeling", err)
	}
	if found == nil {
		return nil, apierr.NotFound(msgGetNotFound)
	}
	return found, nil
}

func (s *feelingService) Stats(ctx context.Context) (*types.FeelingStats, error) {
	ownerID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, ownerID); ok {
			return cached, nil
		}
	}

	counts, err := s.repo.AggregateMoodCounts(ctx, nil, ownerID)
	if err != nil {
		s.log.Error("aggregate mood counts failed", s.fields(ctx, ownerID, "error", err)...)
		return nil, apierr.Storage("failed to load stats", err)
	}
	trends, err := s.repo.ListSince(ctx, nil, ownerID, s.now().Add(-StatsWindow))
	if err != nil {
		s.log.Error("list week trends failed", s.fields(ctx, ownerID, "error", err)...)
		return nil, apierr.Storage("failed to load stats", err)
	}
	if counts == nil {
		counts = []types.MoodCount{}
	}
	if trends == nil {
		trends = []*types.Feeling{}
	}

	stats := &types.FeelingStats{MoodCounts: counts, WeekTrends: trends}
	if s.cache != nil {
		s.cache.Set(ctx, ownerID, stats)
	}
	return stats, nil
}

func (s *feelingService) Update(ctx context.Context, id string, in UpdateFeelingInput) (*types.Feeling, error) {
	ownerID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	feelingID, err := parseFeelingID(id)
	if err != nil {
		return nil, err
	}
	text, mood, err := validateEntry(in.Text, in.Mood, in.Gratitude)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByIDForOwner(ctx, nil, feelingID, ownerID)
	if err != nil {
		s.log.Error("load feeling for update failed", s.fields(ctx, ownerID, "feeling_id", feelingID, "error", err)...)
		return nil, apierr.Storage("failed to update feeling", err)
	}
	if existing == nil {
		return nil, apierr.NotFound(msgEditNotFound)
	}

	patch := types.FeelingPatch{
		Text:       text,
		Mood:       mood,
		AIResponse: s.responder.Select(mood),
	}
	if in.Gratitude != nil {
		patch.SetGratitude = true
		patch.Gratitude = normalizeGratitude(in.Gratitude)
	}

	updated, err := s.repo.Update(ctx, nil, feelingID, ownerID, patch)
	if err != nil {
		s.log.Error("update feeling failed", s.fields(ctx, ownerID, "feeling_id", feelingID, "error", err)...)
		return nil, apierr.Storage("failed to update feeling", err)
	}
	if updated == nil {
		// deleted between load and update
		return nil, apierr.NotFound(msgEditNotFound)
	}

	s.invalidate(ctx, ownerID)
	return updated, nil
}

func (s *feelingService) Delete(ctx context.Context, id string) error {
	ownerID, err := callerID(ctx)
	if err != nil {
		return err
	}
	feelingID, err := parseFeelingID(id)
	if err != nil {
		return err
	}

	existing, err := s.repo.GetByIDForOwner(ctx, nil, feelingID, ownerID)
	if err != nil {
		s.log.Error("load feeling for delete failed", s.fields(ctx, ownerID, "feeling_id", feelingID, "error", err)...)
		return apierr.Storage("failed to delete feeling", err)
	}
	if existing == nil {
		return apierr.NotFound(msgDeleteNotFound)
	}

	removed, err := s.repo.Delete(ctx, nil, feelingID, ownerID)
	if err != nil {
		s.log.Error("delete feeling failed", s.fields(ctx, ownerID, "feeling_id", feelingID, "error", err)...)
		return apierr.Storage("failed to delete feeling", err)
	}
	if !removed {
		return apierr.NotFound(msgDeleteNotFound)
	}

	s.removeAttachments(ctx, ownerID, existing.VoiceRef, existing.VideoRef)
	s.invalidate(ctx, ownerID)
	return nil
}

// storeAttachments uploads voice and video concurrently. If either fails the
// other is removed again.
func (s *feelingService) storeAttachments(ctx context.Context, voice, video *Upload) (*string, *string, error) {
	if voice == nil && video == nil {
		return nil, nil, nil
	}
	var voiceRef, videoRef string
	g, gctx := errgroup.WithContext(ctx)
	if voice != nil {
		g.Go(func() error {
			ref, err := s.media.Store(gctx, MediaVoice, *voice)
			voiceRef = ref
			return err
		})
	}
	if video != nil {
		g.Go(func() error {
			ref, err := s.media.Store(gctx, MediaVideo, *video)
			videoRef = ref
			return err
		})
	}
	if err := g.Wait(); err != nil {
		s.removeAttachments(ctx, ctxutil.CallerID(ctx), optional(voiceRef), optional(videoRef))
		return nil, nil, err
	}
	return optional(voiceRef), optional(videoRef), nil
}

func (s *feelingService) removeAttachments(ctx context.Context, ownerID string, refs ...*string) {
	// detached so a cancelled request still cleans up
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()
	for _, ref := range refs {
		if ref == nil || *ref == "" {
			continue
		}
		if err := s.media.Remove(cleanupCtx, *ref); err != nil {
			s.log.Warn("attachment cleanup failed", s.fields(ctx, ownerID, "ref", *ref, "error", err)...)
		}
	}
}

// invalidate runs on a detached context so a client that disconnects right
// after a write still drops the cached stats. A Stats miss racing a write can
// still put back the older payload; the cache TTL bounds how long it is served.
func (s *feelingService) invalidate(ctx context.Context, ownerID string) {
	if s.cache == nil {
		return
	}
	invCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	s.cache.Invalidate(invCtx, ownerID)
}

func (s *feelingService) fields(ctx context.Context, ownerID string, kv ...interface{}) []interface{} {
	out := append(ctxutil.LogFields(ctx), "owner_id", ownerID)
	return append(out, kv...)
}

func callerID(ctx context.Context) (string, error) {
	ownerID := ctxutil.CallerID(ctx)
	if ownerID == "" {
		return "", apierr.Unauthorized("missing or invalid token")
	}
	return ownerID, nil
}

func parseFeelingID(raw string) (string, error) {
	id, ok := types.ParseID(raw)
	if !ok {
		return "", apierr.BadRequest(apierr.CodeInvalidID, "Invalid feeling id")
	}
	return id, nil
}

func validateEntry(rawText, rawMood string, gratitude *string) (string, types.Mood, error) {
	if !utf8.ValidString(rawText) || (gratitude != nil && !utf8.ValidString(*gratitude)) {
		return "", "", apierr.BadRequest(apierr.CodeInvalidRequest, "text and gratitude must be valid UTF-8")
	}
	text := strings.TrimSpace(rawText)
	if text == "" {
		return "", "", apierr.BadRequest(apierr.CodeTextRequired, "text is required")
	}
	mood, err := types.ParseMood(rawMood)
	if err != nil {
		return "", "", invalidMood()
	}
	return text, mood, nil
}

func invalidMood() error {
	names := make([]string, 0, len(types.Moods))
	for _, m := range types.Moods {
		names = append(names, string(m))
	}
	return apierr.BadRequest(apierr.CodeInvalidMood, fmt.Sprintf("mood must be one of: %s", strings.Join(names, ", ")))
}

func normalizeGratitude(raw *string) *string {
	if raw == nil {
		return nil
	}
	v := strings.TrimSpace(*raw)
	if v == "" {
		return nil
	}
	return &v
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
