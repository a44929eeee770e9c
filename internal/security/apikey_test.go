package security

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alexedwards/argon2id"
	"github.com/stretchr/testify/require"
)

var testParams = &argon2id.Params{Memory: 8 * 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

func TestAPIKeyMiddleware(t *testing.T) {
	hash, err := argon2id.CreateHash("s3cret", testParams)
	require.NoError(t, err)

	handler := APIKey{Hash: hash}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	send := func(key string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/products", nil)
		if key != "" {
			req.Header.Set(APIKeyHeader, key)
		}
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr
	}

	missing := send("")
	require.Equal(t, http.StatusUnauthorized, missing.Code)
	require.JSONEq(t, `{"error":"Missing API key."}`, missing.Body.String())

	require.Equal(t, http.StatusForbidden, send("guess").Code)
	require.Equal(t, http.StatusCreated, send("s3cret").Code)
}

func TestAPIKeyMiddlewareDisabledWithoutHash(t *testing.T) {
	handler := APIKey{}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/products", nil))
	require.Equal(t, http.StatusCreated, rr.Code)
}

func TestAPIKeyMiddlewareMalformedHash(t *testing.T) {
	handler := APIKey{Hash: "$argon2id$broken"}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	req := httptest.NewRequest(http.MethodPost, "/products", nil)
	req.Header.Set(APIKeyHeader, "anything")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusInternalServerError, rr.Code)
}
