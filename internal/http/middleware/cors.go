package middleware

import (
	"net/http"

	"github.com/rs/cors"

	"github.com/davidbz/transly/internal/config"
)

// traceHeaders are set by Trace; the desktop UI reads them to correlate
// its own logs with server logs.
var traceHeaders = []string{traceIDHeader, requestIDHeader}

// CORS lets the UI origin call the local API. Trace headers are always
// accepted and exposed, whatever the configured header list says.
func CORS(cfg *config.CORSConfig) Middleware {
	if cfg == nil {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	allowedHeaders := append([]string{}, cfg.AllowedHeaders...)
	allowedHeaders = append(allowedHeaders, traceHeaders[0])

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   allowedHeaders,
		ExposedHeaders:   traceHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	})

	return c.Handler
}
