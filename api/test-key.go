package handler

import (
	"log"
	"net/http"

	"keyprobe/internal/config"
	diag "keyprobe/internal/handler"
	"keyprobe/internal/probe"
)

// Probe is the entry point for /api/test-key.
func Probe(w http.ResponseWriter, r *http.Request) {
	upstream, err := config.LoadAnthropic()
	if err != nil {
		log.Printf("route=/api/test-key falling back to default upstream: %v", err)
		upstream = config.AnthropicConfig{Model: config.DefaultProbeModel}
	}

	prober := probe.NewProber(probe.AnthropicClients(upstream.BaseURL, upstream.Timeout), upstream.Model)
	diag.NewCredentialProbe(config.LoadDiagnostics, prober).ServeHTTP(w, r)
}
