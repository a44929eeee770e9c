package health

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/backend-kasir/internal/common"
)

const defaultTimeout = 500 * time.Millisecond

var ready atomic.Bool

func init() {
	ready.Store(true)
}

// SetReady toggles readiness. The API flips it off when shutdown begins so
// load balancers drain traffic before the listener closes.
func SetReady(v bool) {
	ready.Store(v)
}

// Probe checks a single optional dependency.
type Probe struct {
	Name  string
	Check func(ctx context.Context) error
}

// PostgresProbe pings the catalog database.
func PostgresProbe(pool *pgxpool.Pool) Probe {
	return Probe{Name: "db", Check: pool.Ping}
}

// RedisProbe pings the cache and queue backend.
func RedisProbe(client *redis.Client) Probe {
	return Probe{Name: "redis", Check: func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}}
}

// Handler exposes HTTP handlers for health endpoints. Dependencies that are
// not configured simply have no probe.
type Handler struct {
	Probes  []Probe
	Timeout time.Duration
}

type readyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Live reports liveness status.
func (h Handler) Live(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ready reports readiness based on dependency probes.
func (h Handler) Ready(w http.ResponseWriter, r *http.Request) {
	resp := readyResponse{Status: "ok", Checks: make(map[string]string, len(h.Probes))}
	if !ready.Load() {
		resp.Status = "shutting_down"
	}
	for _, p := range h.Probes {
		ctx, cancel := context.WithTimeout(r.Context(), h.timeout())
		err := p.Check(ctx)
		cancel()
		if err != nil {
			resp.Checks[p.Name] = err.Error()
			resp.Status = "unavailable"
			continue
		}
		resp.Checks[p.Name] = "ok"
	}
	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	common.JSON(w, status, resp)
}

func (h Handler) timeout() time.Duration {
	if h.Timeout <= 0 {
		return defaultTimeout
	}
	return h.Timeout
}
