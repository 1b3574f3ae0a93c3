package handler

import (
	"net/http"
	"time"
)

const (
	serviceName    = "keyprobe"
	serviceVersion = "0.1.0"

	statusOK             = "ok"
	messageKeyConfigured = "API key is configured"
	messageKeyMissing    = "API key not found - running in demo mode"
	statusKeyPrefixChars = 15
	timestampLayout      = "2006-01-02T15:04:05.000Z07:00"
)

// StatusResponse is the body returned by the status check.
type StatusResponse struct {
	Status       string `json:"status"`
	HasAPIKey    bool   `json:"hasApiKey"`
	APIKeyFormat string `json:"apiKeyFormat"`
	APIKeyLength int    `json:"apiKeyLength"`
	Message      string `json:"message"`
	Demo         bool   `json:"demo"`
	Timestamp    string `json:"timestamp"`
}

// StatusReporter reports whether a credential is configured and whether the
// deployment runs in demo mode. It cannot fail and always answers 200.
type StatusReporter struct {
	diagnostics DiagnosticsSource
	now         func() time.Time
}

// NewStatusReporter creates a status check handler.
func NewStatusReporter(src DiagnosticsSource) *StatusReporter {
	return &StatusReporter{diagnostics: src, now: time.Now}
}

func (h *StatusReporter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.report())
}

func (h *StatusReporter) report() StatusResponse {
	key := h.diagnostics().APIKey

	message := messageKeyMissing
	if key.Present() {
		message = messageKeyConfigured
	}

	return StatusResponse{
		Status:       statusOK,
		HasAPIKey:    key.Present(),
		APIKeyFormat: key.Masked(statusKeyPrefixChars),
		APIKeyLength: key.Length(),
		Message:      message,
		Demo:         key.IsDemo(),
		Timestamp:    h.now().UTC().Format(timestampLayout),
	}
}

// serviceStatusHandler returns static service information.
func serviceStatusHandler(environment string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service":     serviceName,
			"version":     serviceVersion,
			"status":      "operational",
			"environment": environment,
		})
	}
}
