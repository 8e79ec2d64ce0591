package app

import (
	"github.com/mindmirror/mindmirror-backend/internal/http"
	"github.com/mindmirror/mindmirror-backend/internal/observability"
	"github.com/mindmirror/mindmirror-backend/internal/platform/logger"
)

func routerConfig(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware, media *MediaProvider, metrics *observability.Metrics) http.RouterConfig {
	rc := http.RouterConfig{
		Log:            log,
		AuthMiddleware: middleware.Auth,
		FeelingHandler: handlers.Feeling,
		HealthHandler:  handlers.Health,
		CORSOrigins:    cfg.CORSOrigins,
		MaxBodyBytes:   cfg.MaxBodyBytes(),
		MediaDir:       media.LocalDir,
		MediaURLPrefix: media.URLPrefix,
		Metrics:        metrics,
	}
	if cfg.Otel.Enabled {
		rc.TracingService = cfg.Otel.ServiceName
	}
	return rc
}
