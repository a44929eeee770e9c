package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func send(h http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/sales", nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandlerMiddlewareEnforcesLimit(t *testing.T) {
	l, err := New("1-M", "test", nil)
	require.NoError(t, err)

	h := Handler{Limiter: l}.Middleware(okHandler())

	first := send(h, "10.0.0.1:1234")
	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, "1", first.Header().Get("X-RateLimit-Limit"))
	require.Equal(t, "0", first.Header().Get("X-RateLimit-Remaining"))

	second := send(h, "10.0.0.1:1234")
	require.Equal(t, http.StatusTooManyRequests, second.Code)
	require.JSONEq(t, `{"error":"Too many requests."}`, second.Body.String())
	require.NotEmpty(t, second.Header().Get("Retry-After"))

	other := send(h, "10.0.0.2:1234")
	require.Equal(t, http.StatusOK, other.Code)
}

func TestHandlerMiddlewareWithRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	l, err := New("2-M", "sales", client)
	require.NoError(t, err)
	h := Handler{Limiter: l, Key: func(*http.Request) string { return "static" }}.Middleware(okHandler())

	require.Equal(t, http.StatusOK, send(h, "10.0.0.1:1").Code)
	require.Equal(t, http.StatusOK, send(h, "10.0.0.2:1").Code)
	require.Equal(t, http.StatusTooManyRequests, send(h, "10.0.0.3:1").Code)
}

func TestHandlerMiddlewareOnError(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	l, err := New("1-M", "sales", client)
	require.NoError(t, err)
	mr.Close()

	called := false
	h := Handler{Limiter: l, OnError: func(error) { called = true }}.Middleware(okHandler())

	rec := send(h, "10.0.0.1:1")
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, called)
}

func TestNewRejectsBadRate(t *testing.T) {
	_, err := New("lots", "", nil)
	require.Error(t, err)
}

func TestNilLimiterPassesThrough(t *testing.T) {
	h := Handler{}.Middleware(okHandler())
	require.Equal(t, http.StatusOK, send(h, "10.0.0.1:1").Code)
}
