package app

import (
	"context"

	httpH "github.com/mindmirror/mindmirror-backend/internal/http/handlers"
	httpMW "github.com/mindmirror/mindmirror-backend/internal/http/middleware"
	"github.com/mindmirror/mindmirror-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health  *httpH.HealthHandler
	Feeling *httpH.FeelingHandler
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func wireHandlers(log *logger.Logger, services Services, reposet *Repos) (Handlers, error) {
	log.Info("Wiring handlers...")
	if err := httpH.RegisterValidators(); err != nil {
		return Handlers{}, err
	}

	checks := map[string]httpH.HealthCheckFunc{
		"database": reposet.Ping,
	}
	if services.StatsCache != nil {
		cache := services.StatsCache
		checks["stats_cache"] = func(ctx context.Context) error { return cache.Ping(ctx) }
	}

	return Handlers{
		Health:  httpH.NewHealthHandler(checks),
		Feeling: httpH.NewFeelingHandler(log, services.Feelings),
	}, nil
}
