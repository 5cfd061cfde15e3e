package middleware

import (
	"net/http"

	"github.com/stoicjournal/stoic/internal/config"
	"github.com/stoicjournal/stoic/internal/ctxkeys"
)

// Config adds the sanitized configuration to the request context.
// Secrets (JWT secret, API keys, storage credentials) are not included.
func Config(cfg *config.Config) func(http.Handler) http.Handler {
	safe := cfg.Sanitized()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := ctxkeys.WithConfig(r.Context(), safe)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
