package middleware

import (
	"net/http"

	"motoagenda/pkg/logger"

	"github.com/rs/cors"
)

// CORS opens the API to the configured origins. A single "*" allows any
// origin, which is what the booking page served from another host needs.
func CORS(allowedOrigins []string, log *logger.Logger) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", IdempotencyKeyHeader, RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         600,
	})

	log.Debug("CORS configured", "allowed_origins", allowedOrigins)
	return c.Handler
}
