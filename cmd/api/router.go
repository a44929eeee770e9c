package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	limiter "github.com/ulule/limiter/v3"

	"github.com/noah-isme/backend-kasir/internal/catalog"
	"github.com/noah-isme/backend-kasir/internal/common"
	"github.com/noah-isme/backend-kasir/internal/health"
	"github.com/noah-isme/backend-kasir/internal/obs"
	"github.com/noah-isme/backend-kasir/internal/ratelimit"
	"github.com/noah-isme/backend-kasir/internal/sales"
	"github.com/noah-isme/backend-kasir/internal/security"
)

// routerDeps carries everything the HTTP surface needs. Optional pieces are
// left nil when their backing service is not configured.
type routerDeps struct {
	Logger         zerolog.Logger
	Catalog        *catalog.Handler
	Sales          *sales.Handler
	Health         health.Handler
	HTTPMetrics    *obs.HTTPMetrics
	MetricsHandler http.Handler
	Tracing        bool
	SalesLimiter   *limiter.Limiter
	Idem           common.Idem
	AdminKeyHash   string
	BodyLimit      int64
	CORSOrigins    []string
}

func newRouter(d routerDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if d.Tracing {
		r.Use(obs.TracingMiddleware)
	}
	if d.HTTPMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: d.HTTPMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: d.Logger}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins(d.CORSOrigins),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", common.IdempotencyHeader, security.APIKeyHeader},
		ExposedHeaders: []string{"X-Request-Id", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:         300,
	}))
	r.Use(security.Headers{Enable: true, EnableHSTS: true}.Middleware)
	r.Use(security.BodyLimit{Max: d.BodyLimit}.Middleware)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		common.JSONError(w, http.StatusNotFound, "Resource not found.")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		common.JSONError(w, http.StatusMethodNotAllowed, "Method not allowed.")
	})

	if d.MetricsHandler != nil {
		r.Handle("/metrics", d.MetricsHandler)
	}
	r.Get("/health/live", d.Health.Live)
	r.Get("/health/ready", d.Health.Ready)

	adminKey := security.APIKey{Hash: d.AdminKeyHash, Logger: &d.Logger}
	r.Get("/products", d.Catalog.List)
	r.With(adminKey.Middleware, d.Idem.Middleware).Post("/products", d.Catalog.Create)
	r.Get("/products/{id}", d.Catalog.Get)

	salesLimit := ratelimit.Handler{
		Limiter: d.SalesLimiter,
		OnError: func(err error) {
			d.Logger.Warn().Err(err).Msg("sales rate limiter unavailable")
		},
	}
	r.With(salesLimit.Middleware, d.Idem.Middleware).Post("/sales", d.Sales.Create)

	return r
}

func allowedOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
