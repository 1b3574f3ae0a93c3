package handler

import (
	"log"
	"net/http"

	"keyprobe/internal/middleware"
	"keyprobe/internal/probe"
)

// CredentialProbe validates the configured credential with one live call.
// Upstream failures are reported in the body; the status is always 200.
type CredentialProbe struct {
	diagnostics DiagnosticsSource
	prober      *probe.Prober
}

// NewCredentialProbe creates a credential probe handler.
func NewCredentialProbe(src DiagnosticsSource, prober *probe.Prober) *CredentialProbe {
	return &CredentialProbe{diagnostics: src, prober: prober}
}

func (h *CredentialProbe) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeCORS(w)
	w.Header().Set("Content-Type", "application/json")

	key := h.diagnostics().APIKey
	result := h.prober.Run(r.Context(), key)

	if result.Status == probe.StatusError && result.HasKey {
		log.Printf("credential probe failed key=%s error_type=%s request_id=%s upstream_request_id=%s",
			result.KeyPrefix, result.ErrorType, middleware.GetRequestID(r.Context()), result.UpstreamRequestID)
	}

	writeJSON(w, http.StatusOK, result)
}
