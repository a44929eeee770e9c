package common

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestIdemRejectsReplay(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	calls := 0
	h := Idem{R: client, TTL: time.Minute}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}))

	send := func(key string) int {
		req := httptest.NewRequest(http.MethodPost, "/sales", nil)
		if key != "" {
			req.Header.Set(IdempotencyHeader, key)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusOK, send("abc"))
	require.Equal(t, http.StatusConflict, send("abc"))
	require.Equal(t, http.StatusOK, send("def"))
	require.Equal(t, http.StatusOK, send(""))
	require.Equal(t, http.StatusOK, send(""))
	require.Equal(t, 4, calls)

	mr.FastForward(2 * time.Minute)
	require.Equal(t, http.StatusOK, send("abc"))
}

func TestIdemWithoutRedisPassesThrough(t *testing.T) {
	h := Idem{}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	req := httptest.NewRequest(http.MethodPost, "/sales", nil)
	req.Header.Set(IdempotencyHeader, "abc")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
}
