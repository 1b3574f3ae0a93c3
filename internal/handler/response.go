package handler

import (
	"encoding/json"
	"log"
	"net/http"

	"keyprobe/internal/config"
)

// DiagnosticsSource supplies the configuration a handler reports on.
// Entrypoints pass config.LoadDiagnostics so each request sees the
// current environment.
type DiagnosticsSource func() config.Diagnostics

// StaticDiagnostics returns a source that always yields d.
func StaticDiagnostics(d config.Diagnostics) DiagnosticsSource {
	return func() config.Diagnostics { return d }
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to write JSON response: %v", err)
	}
}

// writeCORS allows the probe to be called from any browser origin.
func writeCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization,Accept")
}
