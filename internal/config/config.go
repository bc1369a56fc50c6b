package config

// Config holds all application configuration loaded from environment
// variables via github.com/caarlos0/env struct tags.
type Config struct {
	// Server configuration
	HTTPPort    int    `env:"HTTP_PORT" envDefault:"8000"`
	MetricsPort int    `env:"METRICS_PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"dev"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"reviewquest-progression"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Redis configuration
	RedisHost         string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort         string `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword     string `env:"REDIS_PASSWORD"`
	RedisMaxRetries   int    `env:"REDIS_MAX_RETRIES" envDefault:"5"`
	RedisRetryDelayMs int    `env:"REDIS_RETRY_DELAY_MS" envDefault:"1000"`

	// Progression engine configuration
	CatalogPath      string `env:"CATALOG_PATH" envDefault:"config/achievements.yaml"`
	AwardMaxAttempts int    `env:"AWARD_MAX_ATTEMPTS" envDefault:"5"`
	AwardBackoffMs   int    `env:"AWARD_BACKOFF_MS" envDefault:"20"`
	CoalesceWindowMs int    `env:"COALESCE_WINDOW_MS" envDefault:"250"`
	SnapshotTTLDays  int    `env:"SNAPSHOT_TTL_DAYS" envDefault:"0"`

	// Telemetry configuration
	OtelEnabled    bool   `env:"OTEL_ENABLED" envDefault:"false"`
	ZipkinEndpoint string `env:"ZIPKIN_ENDPOINT" envDefault:"http://localhost:9411/api/v2/spans"`
}
