package security

import (
	"net/http"
	"strings"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-kasir/internal/common"
)

// APIKeyHeader carries the administrative key.
const APIKeyHeader = "X-API-Key"

// APIKey guards administrative routes with a shared key stored as an argon2id
// hash. An empty Hash disables the check.
type APIKey struct {
	Hash   string
	Logger *zerolog.Logger
}

// Middleware rejects requests without a key matching Hash.
func (a APIKey) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.Hash == "" {
			next.ServeHTTP(w, r)
			return
		}
		key := strings.TrimSpace(r.Header.Get(APIKeyHeader))
		if key == "" {
			common.JSONError(w, http.StatusUnauthorized, "Missing API key.")
			return
		}
		ok, err := argon2id.ComparePasswordAndHash(key, a.Hash)
		if err != nil {
			if a.Logger != nil {
				a.Logger.Error().Err(err).Msg("compare api key")
			}
			common.JSONError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if !ok {
			common.JSONError(w, http.StatusForbidden, "Invalid API key.")
			return
		}
		next.ServeHTTP(w, r)
	})
}
