package handler

import (
	"net/http"

	"keyprobe/internal/middleware"
	"keyprobe/internal/probe"
)

// Deps holds everything the routes need. Optional fields must be left as
// untyped nil when the feature is disabled.
type Deps struct {
	Diagnostics DiagnosticsSource
	Prober      *probe.Prober
	Environment string

	History  HistoryLister            // optional
	Verifier middleware.TokenVerifier // optional; guards inspection routes
	DB       Pinger                   // optional
}

// RegisterRoutes registers all HTTP routes with the provided mux.
// The three diagnostic routes accept any method.
func RegisterRoutes(mux *http.ServeMux, deps *Deps) {
	guard := middleware.RequireBearer(deps.Verifier)

	mux.HandleFunc("GET /health", healthHandler(deps.DB))
	mux.HandleFunc("GET /api/v1/status", serviceStatusHandler(deps.Environment))

	mux.Handle("/api/status", NewStatusReporter(deps.Diagnostics))
	mux.Handle("/api/test-key", NewCredentialProbe(deps.Diagnostics, deps.Prober))
	mux.Handle("/api/debug-env", guard(NewEnvironmentInspector(deps.Diagnostics)))

	mux.Handle("GET /api/probe-history", guard(historyHandler(deps.History)))
}

// NewRouter returns the full handler tree with request logging.
func NewRouter(deps *Deps) http.Handler {
	mux := http.NewServeMux()
	RegisterRoutes(mux, deps)
	return middleware.RequestLogger(mux)
}
