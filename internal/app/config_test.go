package app

import (
	"testing"
	"time"

	"github.com/mindmirror/mindmirror-backend/internal/platform/logger"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DB_DRIVER", "MEDIA_DIR", "MAX_UPLOAD_MB", "STATS_CACHE_TTL_SECONDS", "CORS_ALLOW_ORIGINS", "OTEL_ENABLED"} {
		t.Setenv(key, "")
	}
	cfg := LoadConfig(logger.NewNop())

	if cfg.Port != "8080" {
		t.Fatalf("Port: got=%q want=%q", cfg.Port, "8080")
	}
	if cfg.DBDriver != DBDriverPostgres {
		t.Fatalf("DBDriver: got=%q want=%q", cfg.DBDriver, DBDriverPostgres)
	}
	if cfg.MediaDir != "uploads" {
		t.Fatalf("MediaDir: got=%q want=%q", cfg.MediaDir, "uploads")
	}
	if cfg.MaxBodyBytes() != 64<<20 {
		t.Fatalf("MaxBodyBytes: got=%d want=%d", cfg.MaxBodyBytes(), 64<<20)
	}
	if cfg.StatsCacheTTL != 60*time.Second {
		t.Fatalf("StatsCacheTTL: got=%s", cfg.StatsCacheTTL)
	}
	if cfg.CORSOrigins != nil || cfg.Otel.Enabled {
		t.Fatalf("unexpected defaults: cors=%v otel=%v", cfg.CORSOrigins, cfg.Otel.Enabled)
	}
	if cfg.ShutdownTimeout != 15*time.Second {
		t.Fatalf("ShutdownTimeout: got=%s", cfg.ShutdownTimeout)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "Mongo")
	t.Setenv("MAX_UPLOAD_MB", "8")
	t.Setenv("STATS_CACHE_TTL_SECONDS", "5")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_SAMPLER_PERCENT", "50")

	cfg := LoadConfig(logger.NewNop())
	if cfg.DBDriver != DBDriverMongo {
		t.Fatalf("DBDriver: got=%q want=%q", cfg.DBDriver, DBDriverMongo)
	}
	if cfg.MaxBodyBytes() != 8<<20 {
		t.Fatalf("MaxBodyBytes: got=%d", cfg.MaxBodyBytes())
	}
	if cfg.StatsCacheTTL != 5*time.Second {
		t.Fatalf("StatsCacheTTL: got=%s", cfg.StatsCacheTTL)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("CORSOrigins: got=%v", cfg.CORSOrigins)
	}
	if !cfg.Otel.Enabled || cfg.Otel.SampleRatio != 0.5 {
		t.Fatalf("Otel: got=%+v", cfg.Otel)
	}
}
