package handler

import (
	"log"
	"net/http"

	"keyprobe/internal/jwtauth"
)

const envKeyPrefixChars = 15

// EnvironmentResponse is the body returned by the environment inspector.
type EnvironmentResponse struct {
	HasAPIKey    bool     `json:"hasApiKey"`
	APIKeyLength int      `json:"apiKeyLength"`
	APIKeyStart  string   `json:"apiKeyStart"`
	AllEnvKeys   []string `json:"allEnvKeys"`
	NodeEnv      *string  `json:"nodeEnv,omitempty"`
}

// EnvironmentInspector lists which credential-related variables the process
// can see. Variable names matching config.EnvKeyMarker are exposed regardless
// of value; guard the route with RequireBearer where that matters.
type EnvironmentInspector struct {
	diagnostics DiagnosticsSource
}

// NewEnvironmentInspector creates an environment inspection handler.
func NewEnvironmentInspector(src DiagnosticsSource) *EnvironmentInspector {
	return &EnvironmentInspector{diagnostics: src}
}

func (h *EnvironmentInspector) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if claims := jwtauth.GetClaims(r.Context()); claims != nil {
		log.Printf("route=%s environment inspected subject=%s", r.URL.Path, claims.Subject)
	}

	d := h.diagnostics()

	names := make([]string, len(d.EnvNames))
	copy(names, d.EnvNames)

	resp := EnvironmentResponse{
		HasAPIKey:    d.APIKey.Present(),
		APIKeyLength: d.APIKey.Length(),
		APIKeyStart:  d.APIKey.PrefixOrNotFound(envKeyPrefixChars),
		AllEnvKeys:   names,
	}
	if d.NodeEnvSet {
		nodeEnv := d.NodeEnv
		resp.NodeEnv = &nodeEnv
	}

	writeJSON(w, http.StatusOK, resp)
}
