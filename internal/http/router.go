package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/mindmirror/mindmirror-backend/internal/http/handlers"
	httpMW "github.com/mindmirror/mindmirror-backend/internal/http/middleware"
	"github.com/mindmirror/mindmirror-backend/internal/observability"
	"github.com/mindmirror/mindmirror-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	AuthMiddleware *httpMW.AuthMiddleware
	FeelingHandler *httpH.FeelingHandler
	HealthHandler  *httpH.HealthHandler

	CORSOrigins []string
	// MaxBodyBytes caps every request body; 0 disables the cap.
	MaxBodyBytes int64

	// MediaDir is mounted read-only at MediaURLPrefix when set.
	MediaDir       string
	MediaURLPrefix string

	// TracingService enables otelgin spans under this service name when set.
	TracingService string
	Metrics        *observability.Metrics
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.TracingService != "" {
		r.Use(otelgin.Middleware(cfg.TracingService))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))
	if cfg.MaxBodyBytes > 0 {
		r.MaxMultipartMemory = cfg.MaxBodyBytes
		r.Use(httpMW.LimitBody(cfg.MaxBodyBytes))
	}

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}

	// Attachments (local storage only)
	if cfg.MediaDir != "" && cfg.MediaURLPrefix != "" {
		r.StaticFS(cfg.MediaURLPrefix, gin.Dir(cfg.MediaDir, false))
	}

	api := r.Group("/api")
	if cfg.AuthMiddleware != nil {
		api.Use(cfg.AuthMiddleware.RequireAuth())
	}

	// Feelings
	if cfg.FeelingHandler != nil {
		feelings := api.Group("/feelings")
		feelings.POST("", cfg.FeelingHandler.Create)
		feelings.GET("", cfg.FeelingHandler.List)
		feelings.GET("/stats", cfg.FeelingHandler.Stats)
		feelings.GET("/:id", cfg.FeelingHandler.Get)
		feelings.PUT("/:id", cfg.FeelingHandler.Update)
		feelings.DELETE("/:id", cfg.FeelingHandler.Delete)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "route not found", "code": "not_found"}})
	})

	return r
}
