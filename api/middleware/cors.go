package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"

	"github.com/angelmondragon/storefront-backend/pkg/config"
)

const (
	tokenHeader   = "X-SF-Token"
	corsPreflight = 5 * time.Minute
)

// CORS applies the configured origin allow-list. Browsers may read the
// rotated token, the request id and the retry/replay hints.
func CORS(cfg config.CORSConfig) func(http.Handler) http.Handler {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept", "Authorization", "Content-Type", "X-Requested-With",
			tokenHeader, idempotencyHeader, requestIDHeader,
		},
		ExposedHeaders:   []string{tokenHeader, requestIDHeader, idempotencyReplayed, "Retry-After"},
		AllowCredentials: true,
		MaxAge:           int(corsPreflight.Seconds()),
	})
}
