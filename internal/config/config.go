package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string `validate:"required"`
	Port               string `validate:"required,numeric"`
	DatabaseURL        string `validate:"omitempty,url"`
	RedisURL           string `validate:"omitempty,url"`
	CORSAllowedOrigins []string
	CatalogCacheTTL    time.Duration `validate:"gte=0"`
	IdempotencyTTL     time.Duration `validate:"gt=0"`
	RateLimitSales     string        `validate:"required"`
	BodyLimitBytes     int64         `validate:"gt=0"`
	AdminAPIKeyHash    string        `validate:"omitempty,startswith=$argon2id$"`
	RunMigrations      bool
	SeedCatalog        bool
	ReceiptsEnabled    bool
	ReceiptQueue       string        `validate:"required"`
	HTTPReadTimeout    time.Duration `validate:"gt=0"`
	HTTPWriteTimeout   time.Duration `validate:"gt=0"`
	Obs                ObsConfig
}

// ObsConfig carries logging, metrics and tracing knobs.
type ObsConfig struct {
	LogFormat        string  `validate:"oneof=json console"`
	LogLevel         string  `validate:"required"`
	MetricsNamespace string  `validate:"required"`
	EnablePrometheus bool
	MetricsBuckets   string
	EnableTracing    bool
	TracingExporter  string  `validate:"oneof=otlp none"`
	OTLPEndpoint     string
	SamplingRatio    float64 `validate:"gte=0,lte=1"`
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(strings.TrimPrefix(k.String("PORT"), ":"), "8080"),
		DatabaseURL:        strings.TrimSpace(k.String("DATABASE_URL")),
		RedisURL:           strings.TrimSpace(k.String("REDIS_URL")),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
		CatalogCacheTTL:    parseDuration(k.String("CATALOG_CACHE_TTL"), "5m"),
		IdempotencyTTL:     parseDuration(k.String("IDEMPOTENCY_TTL"), "24h"),
		RateLimitSales:     valueOrDefault(k.String("RATE_LIMIT_SALES"), "120-M"),
		BodyLimitBytes:     parseInt(k.String("BODY_LIMIT_BYTES"), 1<<20),
		AdminAPIKeyHash:    strings.TrimSpace(k.String("ADMIN_API_KEY_HASH")),
		RunMigrations:      parseBool(k.String("RUN_MIGRATIONS"), true),
		SeedCatalog:        parseBool(k.String("SEED_CATALOG"), true),
		ReceiptsEnabled:    parseBool(k.String("RECEIPTS_ENABLED"), false),
		ReceiptQueue:       valueOrDefault(k.String("RECEIPT_QUEUE"), "receipts"),
		HTTPReadTimeout:    parseDuration(k.String("HTTP_READ_TIMEOUT"), "10s"),
		HTTPWriteTimeout:   parseDuration(k.String("HTTP_WRITE_TIMEOUT"), "15s"),
		Obs: ObsConfig{
			LogFormat:        strings.ToLower(valueOrDefault(k.String("OBS_LOG_FORMAT"), "json")),
			LogLevel:         valueOrDefault(k.String("OBS_LOG_LEVEL"), "info"),
			MetricsNamespace: valueOrDefault(k.String("OBS_METRICS_NAMESPACE"), "kasir"),
			EnablePrometheus: parseBool(k.String("OBS_ENABLE_PROMETHEUS"), true),
			MetricsBuckets:   k.String("OBS_METRICS_BUCKETS_MS"),
			EnableTracing:    parseBool(k.String("OBS_ENABLE_TRACING"), false),
			TracingExporter:  strings.ToLower(valueOrDefault(k.String("OBS_TRACING_EXPORTER"), "otlp")),
			OTLPEndpoint:     strings.TrimSpace(k.String("OBS_OTLP_ENDPOINT")),
			SamplingRatio:    parseFloat(k.String("OBS_TRACING_SAMPLING_RATIO"), 1.0),
		},
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if cfg.ReceiptsEnabled && cfg.RedisURL == "" {
		return nil, errors.New("RECEIPTS_ENABLED requires REDIS_URL")
	}
	if cfg.ReceiptsEnabled && cfg.DatabaseURL == "" {
		return nil, errors.New("RECEIPTS_ENABLED requires DATABASE_URL")
	}

	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	return ":" + strings.TrimSpace(c.Port)
}

// UsesPostgres reports whether the catalog is backed by Postgres rather than memory.
func (c *Config) UsesPostgres() bool {
	return c.DatabaseURL != ""
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseInt(value string, fallback int64) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func parseFloat(value string, fallback float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return f
}

func parseBool(value string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

// MustLoad behaves like Load but panics on error. The command entrypoints use it.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
