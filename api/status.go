// Package handler holds the Vercel serverless functions. Each exported
// function serves one route and reads the process environment per request.
package handler

import (
	"net/http"

	"keyprobe/internal/config"
	diag "keyprobe/internal/handler"
)

var statusHandler = diag.NewStatusReporter(config.LoadDiagnostics)

// Status is the entry point for /api/status.
func Status(w http.ResponseWriter, r *http.Request) {
	statusHandler.ServeHTTP(w, r)
}
