package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// SetupRoutes configures all API routes. metricsHandler may be nil.
func SetupRoutes(handler *Handler, metricsHandler http.Handler) *mux.Router {
	r := mux.NewRouter()

	// Health checks
	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")
	r.HandleFunc("/health/live", handler.Live).Methods("GET")

	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler).Methods("GET")
	}

	// Feed routes
	r.HandleFunc("/api/v1/feed", handler.GetFeed).Methods("GET")
	r.HandleFunc("/api/v1/risk-state", handler.GetRiskState).Methods("GET")
	r.HandleFunc("/api/v1/dashboard", handler.GetDashboard).Methods("GET")

	return r
}
