package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mindmirror/mindmirror-backend/internal/http"
	"github.com/mindmirror/mindmirror-backend/internal/observability"
	"github.com/mindmirror/mindmirror-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	Cfg      Config
	Repos    *Repos
	Services Services
	Media    *MediaProvider
	Metrics  *observability.Metrics
	Server   *http.Server

	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

func New(ctx context.Context) (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	LoadDotEnv(log)
	cfg := LoadConfig(log)
	cfg.Otel.Environment = cfg.Environment
	cfg.Otel.Version = cfg.Version

	otelShutdown := observability.InitOTel(ctx, log, cfg.Otel)

	media, err := resolveMediaProvider(ctx, log, cfg)
	if err != nil {
		_ = otelShutdown(ctx)
		log.Sync()
		return nil, err
	}

	reposet, err := wireRepos(ctx, log, cfg)
	if err != nil {
		_ = media.Close()
		_ = otelShutdown(ctx)
		log.Sync()
		return nil, err
	}

	serviceset := wireServices(ctx, log, cfg, reposet, media)
	middleware := wireMiddleware(log, serviceset)
	handlerset, err := wireHandlers(log, serviceset, reposet)
	if err != nil {
		_ = serviceset.StatsCache.Close()
		_ = reposet.Close(ctx)
		_ = media.Close()
		_ = otelShutdown(ctx)
		log.Sync()
		return nil, fmt.Errorf("wire handlers: %w", err)
	}

	var metrics *observability.Metrics
	if cfg.MetricsEnabled {
		metrics = observability.NewMetrics(0)
		log.Info("Observability metrics enabled")
	}

	server := http.NewServer(":"+cfg.Port, routerConfig(log, cfg, handlerset, middleware, media, metrics))

	return &App{
		Log:          log,
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		Media:        media,
		Metrics:      metrics,
		Server:       server,
		otelShutdown: otelShutdown,
	}, nil
}

// Start launches the background collectors. Run blocks serving HTTP.
func (a *App) Start() {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if a.Metrics != nil {
		a.Metrics.StartServer(ctx, a.Log, a.Cfg.MetricsAddr)
		a.Metrics.StartDBCollector(ctx, a.Log, a.Repos.SQL)
		if a.Services.StatsCache != nil {
			a.Metrics.StartRedisCollector(ctx, a.Log, a.Services.StatsCache)
		}
	}
}

func (a *App) Run() error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("Server listening", "port", a.Cfg.Port)
	return a.Server.Run()
}

// Shutdown drains in-flight requests, then releases every client.
func (a *App) Shutdown(ctx context.Context) error {
	if a == nil {
		return nil
	}
	var errs []error
	if a.Server != nil {
		if err := a.Server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
	}
	if err := a.close(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (a *App) close(ctx context.Context) error {
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	var errs []error
	if err := a.Services.StatsCache.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close stats cache: %w", err))
	}
	if err := a.Repos.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("close database: %w", err))
	}
	if err := a.Media.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close media: %w", err))
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("otel shutdown: %w", err))
		}
	}
	a.Log.Sync()
	return errors.Join(errs...)
}
