package api

import (
	"nearby-pro-service/internal/api/handlers"
	"nearby-pro-service/internal/platform/metrics"
	"nearby-pro-service/internal/services"
	"net/http"

	"go.uber.org/zap"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(registry *services.SessionRegistry, log *zap.Logger) http.Handler {
	mux := http.NewServeMux()

	sessions := &handlers.SessionHandler{Registry: registry, Log: log}

	mux.HandleFunc("/health", handlers.Health)
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/sessions", sessions.Create)
	mux.HandleFunc("/sessions/{id}", sessions.Item)
	mux.HandleFunc("/sessions/{id}/search", sessions.Search)
	mux.HandleFunc("/sessions/{id}/select", sessions.Select)
	mux.HandleFunc("/sessions/{id}/query", sessions.Query)
	mux.HandleFunc("/sessions/{id}/suggestions", sessions.Suggestions)

	return loggingMiddleware(log, mux)
}
