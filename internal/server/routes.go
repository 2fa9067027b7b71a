// Package server wires HTTP handlers into a ServeMux for the signaling relay
// via routing helpers.
package server

import (
	"net/http"

	"github.com/rs/cors"
)

// SetupRoutes configures and returns the HTTP handler with all application
// routes: health check, Prometheus metrics, and the catch-all WebSocket
// endpoint whose path names the room to join. The mux is wrapped in CORS
// middleware driven by the configured origin allowlist.
func SetupRoutes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", HealthHandler)
	mux.Handle("/metrics", MetricsHandler())
	mux.HandleFunc("/", WebSocketHandler)

	cfg := currentConfig()
	c := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet},
	})
	return c.Handler(mux)
}
