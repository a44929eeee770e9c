package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-kasir/internal/catalog"
	"github.com/noah-isme/backend-kasir/internal/common"
	"github.com/noah-isme/backend-kasir/internal/config"
	"github.com/noah-isme/backend-kasir/internal/db"
	"github.com/noah-isme/backend-kasir/internal/health"
	"github.com/noah-isme/backend-kasir/internal/lock"
	"github.com/noah-isme/backend-kasir/internal/obs"
	"github.com/noah-isme/backend-kasir/internal/ratelimit"
	"github.com/noah-isme/backend-kasir/internal/receipt"
	"github.com/noah-isme/backend-kasir/internal/resilience"
	"github.com/noah-isme/backend-kasir/internal/sales"
)

const serviceName = "kasir-api"

var version = "dev"

func main() {
	cfg := config.MustLoad()

	logger := obs.NewLogger(cfg.Obs.LogFormat, cfg.Obs.LogLevel).With().Str("env", cfg.AppEnv).Logger()
	obs.MustRegisterDomainMetrics(cfg.Obs.MetricsNamespace, nil)

	tracingEnabled := cfg.Obs.EnableTracing
	if tracingEnabled {
		shutdown, err := obs.InitTracer(context.Background(), obs.TracingConfig{
			ServiceName:    serviceName,
			ServiceVersion: version,
			Endpoint:       cfg.Obs.OTLPEndpoint,
			Exporter:       cfg.Obs.TracingExporter,
			SamplingRatio:  cfg.Obs.SamplingRatio,
			Environment:    cfg.AppEnv,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
			tracingEnabled = false
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var probes []health.Probe

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient = mustInitRedis(ctx, cfg, logger)
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Error().Err(err).Msg("close redis")
			}
		}()
		probes = append(probes, health.RedisProbe(redisClient))
	}

	var store catalog.Store
	var pool *pgxpool.Pool
	if cfg.UsesPostgres() {
		pool = mustInitDatabase(ctx, cfg, logger)
		defer pool.Close()
		store = catalog.NewPostgresStore(pool)
		probes = append(probes, health.PostgresProbe(pool))
	} else {
		logger.Warn().Msg("DATABASE_URL not set, using in-memory catalog")
		store = catalog.NewMemoryStore()
	}

	locker := lock.Locker{Client: redisClient}
	if err := locker.DoOrRun(ctx, "kasir:bootstrap", 2*time.Minute, func(ctx context.Context) error {
		return bootstrap(ctx, cfg, store, logger)
	}); err != nil {
		logger.Fatal().Err(err).Msg("bootstrap")
	}

	catalogSvc, err := catalog.NewService(catalog.ServiceConfig{
		Store:  store,
		Cache:  catalog.NewCache(redisClient, cfg.CatalogCacheTTL),
		Logger: &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("init catalog service")
	}
	salesSvc, err := sales.NewService(sales.ServiceConfig{Catalog: catalogSvc, Logger: &logger})
	if err != nil {
		logger.Fatal().Err(err).Msg("init sales service")
	}

	salesHandlerCfg := sales.HandlerConfig{Service: salesSvc, Logger: &logger}
	if cfg.ReceiptsEnabled {
		redisOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("parse receipt queue redis url")
		}
		taskClient := asynq.NewClient(redisOpt)
		defer func() {
			if err := taskClient.Close(); err != nil {
				logger.Error().Err(err).Msg("close task client")
			}
		}()
		salesHandlerCfg.Receipts = receipt.Publisher{
			Client:  taskClient,
			Queue:   cfg.ReceiptQueue,
			Breaker: resilience.NewBreaker("receipts", 5, 0.5, 30*time.Second).WithLogger(logger),
		}
	}

	salesLimiter, err := ratelimit.New(cfg.RateLimitSales, "ratelimit:sales", redisClient)
	if err != nil {
		logger.Fatal().Err(err).Msg("init sales rate limiter")
	}

	deps := routerDeps{
		Logger:       logger,
		Catalog:      catalog.NewHandler(catalog.HandlerConfig{Service: catalogSvc, Logger: &logger}),
		Sales:        sales.NewHandler(salesHandlerCfg),
		Health:       health.Handler{Probes: probes},
		Tracing:      tracingEnabled,
		SalesLimiter: salesLimiter,
		Idem:         common.Idem{R: redisClient, TTL: cfg.IdempotencyTTL},
		AdminKeyHash: cfg.AdminAPIKeyHash,
		BodyLimit:    cfg.BodyLimitBytes,
		CORSOrigins:  cfg.CORSAllowedOrigins,
	}
	if cfg.Obs.EnablePrometheus {
		deps.HTTPMetrics = obs.NewHTTPMetrics(cfg.Obs.MetricsNamespace, obs.ParseBucketsCSV(cfg.Obs.MetricsBuckets), nil)
		deps.MetricsHandler = promhttp.Handler()
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           newRouter(deps),
		ReadTimeout:       cfg.HTTPReadTimeout,
		ReadHeaderTimeout: cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       2 * cfg.HTTPWriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Str("version", version).Msg("server starting")
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server exited unexpectedly")
		}
		return
	case <-ctx.Done():
	}

	health.SetReady(false)
	logger.Info().Msg("shutdown requested")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown")
	}
	logger.Info().Msg("server stopped")
}

func mustInitDatabase(ctx context.Context, cfg *config.Config, logger zerolog.Logger) *pgxpool.Pool {
	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse database config")
	}
	poolConfig.ConnConfig.Tracer = obs.PGXTracer{}
	if poolConfig.ConnConfig.RuntimeParams == nil {
		poolConfig.ConnConfig.RuntimeParams = map[string]string{}
	}
	poolConfig.ConnConfig.RuntimeParams["application_name"] = serviceName

	pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	if err := pool.Ping(connectCtx); err != nil {
		logger.Fatal().Err(err).Msg("ping database")
	}
	return pool
}

func mustInitRedis(ctx context.Context, cfg *config.Config, logger zerolog.Logger) *redis.Client {
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisotel.InstrumentTracing(redisClient); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("ping redis")
	}
	return redisClient
}

// bootstrap applies migrations and seeds an empty catalog. It runs under the
// bootstrap lock when Redis is available.
func bootstrap(ctx context.Context, cfg *config.Config, store catalog.Store, logger zerolog.Logger) error {
	if cfg.UsesPostgres() && cfg.RunMigrations {
		if err := db.RunMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}
	if !cfg.SeedCatalog {
		return nil
	}
	seeded, err := catalog.SeedIfEmpty(ctx, store)
	if err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	if seeded {
		logger.Info().Msg("catalog seeded with initial products")
	}
	return nil
}
