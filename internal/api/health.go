package api

import (
	"context"
	"net/http"
	"time"
)

// Pinger is satisfied by the postgres store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// HealthHandler reports healthy while the database answers pings.
func HealthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unhealthy", Version: "1.0.0"})
			return
		}
		respondJSON(w, http.StatusOK, HealthResponse{Status: "healthy", Version: "1.0.0"})
	}
}
