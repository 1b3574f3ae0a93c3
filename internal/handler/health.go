package handler

import (
	"context"
	"log"
	"net/http"
)

// Pinger reports backing store connectivity.
type Pinger interface {
	Health(ctx context.Context) error
}

// healthHandler reports liveness, and database reachability when one is configured.
func healthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.Health(r.Context()); err != nil {
				log.Printf("health check failed: %v", err)
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	}
}
