package app

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/mindmirror/mindmirror-backend/internal/data/db"
	"github.com/mindmirror/mindmirror-backend/internal/observability"
	"github.com/mindmirror/mindmirror-backend/internal/platform/envutil"
	"github.com/mindmirror/mindmirror-backend/internal/platform/logger"
	"github.com/mindmirror/mindmirror-backend/internal/platform/rediscache"
)

const (
	DBDriverPostgres = "postgres"
	DBDriverMongo    = "mongo"
)

type Config struct {
	Port        string
	Environment string
	Version     string

	JWTSecretKey string

	DBDriver      string
	Postgres      db.PostgresConfig
	MongoURI      string
	MongoDatabase string

	ObjectStorageMode          string
	StorageEmulatorHost        string
	ObjectStoragePublicBaseURL string
	MediaDir                   string
	MediaGCSBucketName         string
	MediaCDNDomain             string
	MaxUploadMB                int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	StatsCacheTTL time.Duration

	ResponseCatalogPath string
	CORSOrigins         []string

	Otel           observability.OtelConfig
	MetricsEnabled bool
	MetricsAddr    string

	ShutdownTimeout time.Duration
}

// LoadDotEnv reads .env into the process environment. A missing file is fine.
func LoadDotEnv(log *logger.Logger, paths ...string) {
	if err := godotenv.Load(paths...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn("Could not load .env file", "error", err)
	}
}

func LoadConfig(log *logger.Logger) Config {
	return Config{
		Port:        envutil.String("PORT", "8080", log),
		Environment: envutil.String("APP_ENV", "development", log),
		Version:     envutil.String("APP_VERSION", "dev", log),

		JWTSecretKey: envutil.String("JWT_SECRET_KEY", "defaultsecret", log),

		DBDriver: strings.ToLower(envutil.String("DB_DRIVER", DBDriverPostgres, log)),
		Postgres: db.PostgresConfig{
			DSN:      envutil.String("POSTGRES_DSN", "", log),
			Host:     envutil.String("POSTGRES_HOST", "localhost", log),
			Port:     envutil.String("POSTGRES_PORT", "5432", log),
			User:     envutil.String("POSTGRES_USER", "postgres", log),
			Password: envutil.String("POSTGRES_PASSWORD", "", log),
			Name:     envutil.String("POSTGRES_NAME", "mindmirror", log),
			SSLMode:  envutil.String("POSTGRES_SSLMODE", "disable", log),
		},
		MongoURI:      envutil.String("MONGO_URI", "", log),
		MongoDatabase: envutil.String("MONGO_DATABASE", "mindmirror", log),

		ObjectStorageMode:          envutil.String("OBJECT_STORAGE_MODE", "", log),
		StorageEmulatorHost:        envutil.String("STORAGE_EMULATOR_HOST", "", log),
		ObjectStoragePublicBaseURL: envutil.String("OBJECT_STORAGE_PUBLIC_BASE_URL", "", log),
		MediaDir:                   envutil.String("MEDIA_DIR", "uploads", log),
		MediaGCSBucketName:         envutil.String("MEDIA_GCS_BUCKET_NAME", "", log),
		MediaCDNDomain:             envutil.String("MEDIA_CDN_DOMAIN", "", log),
		MaxUploadMB:                envutil.Int("MAX_UPLOAD_MB", 64, log),

		RedisAddr:     envutil.String("REDIS_ADDR", "", log),
		RedisPassword: envutil.String("REDIS_PASSWORD", "", log),
		RedisDB:       envutil.Int("REDIS_DB", 0, log),
		StatsCacheTTL: envutil.Seconds("STATS_CACHE_TTL_SECONDS", rediscache.DefaultTTL, log),

		ResponseCatalogPath: envutil.String("RESPONSE_CATALOG_YAML", "", log),
		CORSOrigins:         envutil.List("CORS_ALLOW_ORIGINS", nil),

		Otel: observability.OtelConfig{
			Enabled:     envutil.Bool("OTEL_ENABLED", false),
			ServiceName: envutil.String("OTEL_SERVICE_NAME", observability.DefaultServiceName, log),
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", "", log),
			Headers:     observability.ParseHeaders(envutil.String("OTEL_EXPORTER_OTLP_HEADERS", "", log)),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
			SampleRatio: float64(envutil.Int("OTEL_SAMPLER_PERCENT", 10, log)) / 100,
		},
		MetricsEnabled: envutil.Bool("METRICS_ENABLED", false),
		MetricsAddr:    envutil.String("METRICS_ADDR", ":9090", log),

		ShutdownTimeout: envutil.Seconds("SHUTDOWN_TIMEOUT_SECONDS", 15*time.Second, log),
	}
}

// MaxBodyBytes is the request body cap derived from MAX_UPLOAD_MB.
func (c Config) MaxBodyBytes() int64 {
	if c.MaxUploadMB <= 0 {
		return 0
	}
	return int64(c.MaxUploadMB) << 20
}
