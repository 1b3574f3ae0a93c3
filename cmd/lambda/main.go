// Command lambda serves keyprobe from AWS Lambda behind API Gateway.
package main

import (
	"log"

	"keyprobe/internal/config"
	"keyprobe/internal/handler"
	"keyprobe/internal/jwtauth"
	"keyprobe/internal/probe"
	"keyprobe/internal/serverless"

	"github.com/aws/aws-lambda-go/lambda"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	deps := &handler.Deps{
		Diagnostics: config.LoadDiagnostics,
		Prober:      probe.NewProber(probe.AnthropicClients(cfg.Anthropic.BaseURL, cfg.Anthropic.Timeout), cfg.Anthropic.Model),
		Environment: cfg.Environment,
	}

	if cfg.InspectAuth.Enabled() {
		verifier, err := jwtauth.NewVerifier(jwtauth.Config{
			Secret: cfg.InspectAuth.JWTSecret,
			Issuer: cfg.InspectAuth.Issuer,
		})
		if err != nil {
			log.Fatalf("failed to initialize token verifier: %v", err)
		}
		deps.Verifier = verifier
	}

	if cfg.Database.Enabled() {
		log.Println("DATABASE_URL is ignored by the lambda entrypoint; probe history is served by cmd/server")
	}

	adapter := serverless.NewAPIGatewayAdapter(handler.NewRouter(deps))
	lambda.Start(adapter.Handle)
}
