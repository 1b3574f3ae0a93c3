package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"keyprobe/internal/auth"
	"keyprobe/internal/history"
)

// HistoryLister returns recently recorded probe attempts.
type HistoryLister interface {
	ListRecent(ctx context.Context, limit int) ([]history.Entry, error)
}

// historyHandler handles GET /api/probe-history?limit=N
func historyHandler(lister HistoryLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if lister == nil {
			auth.WriteJSONError(w, http.StatusServiceUnavailable, "probe history is not configured", auth.TypeUnavailable)
			return
		}

		limit := history.DefaultListLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				auth.WriteJSONError(w, http.StatusBadRequest, "limit must be an integer", auth.TypeInvalidRequest)
				return
			}
			limit = n
		}

		entries, err := lister.ListRecent(r.Context(), limit)
		if err != nil {
			if errors.Is(err, history.ErrInvalidLimit) {
				auth.WriteJSONError(w, http.StatusBadRequest, err.Error(), auth.TypeInvalidRequest)
				return
			}
			log.Printf("failed to list probe history: %v", err)
			auth.WriteJSONError(w, http.StatusInternalServerError, "failed to list probe history", auth.TypeServer)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"attempts": entries,
			"count":    len(entries),
		})
	}
}
