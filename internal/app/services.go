package app

import (
	"context"

	"github.com/mindmirror/mindmirror-backend/internal/platform/logger"
	"github.com/mindmirror/mindmirror-backend/internal/platform/rediscache"
	"github.com/mindmirror/mindmirror-backend/internal/services"
)

type Services struct {
	Auth      services.AuthService
	Responder services.Responder
	Media     services.MediaStore
	Feelings  services.FeelingService

	// StatsCache is nil unless REDIS_ADDR is set.
	StatsCache *rediscache.StatsCache
}

func wireServices(ctx context.Context, log *logger.Logger, cfg Config, reposet *Repos, media *MediaProvider) Services {
	log.Info("Wiring services...")

	statsCache, err := rediscache.NewStatsCache(ctx, log, rediscache.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		TTL:      cfg.StatsCacheTTL,
	})
	if err != nil {
		// the cache is optional; run without it
		log.Warn("Stats cache unavailable, continuing without it", "error", err)
		statsCache = nil
	}

	var cache services.StatsCache
	if statsCache != nil {
		cache = statsCache
	}

	responder := services.NewResponder(log, services.LoadResponseCatalog(log, cfg.ResponseCatalogPath), nil)
	mediaStore := services.NewMediaStore(log, media.Backend)

	return Services{
		Auth:       services.NewAuthService(log, cfg.JWTSecretKey),
		Responder:  responder,
		Media:      mediaStore,
		Feelings:   services.NewFeelingService(log, reposet.Feeling, responder, mediaStore, cache),
		StatsCache: statsCache,
	}
}
