package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
	"github.com/wildhaven/parkops-backend/internal/config"
)

// NewCORSHandler builds the cross-origin middleware from the CORS
// section of the service config. Preflight responses are cached by
// browsers for cfg.MaxAge seconds.
func NewCORSHandler(cfg *config.CORSConfig) func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   cfg.AllowedHeaders,
		ExposedHeaders:   cfg.ExposedHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}
	return cors.Handler(opts)
}
