package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"keyprobe/internal/config"
	"keyprobe/internal/database"
	"keyprobe/internal/handler"
	"keyprobe/internal/history"
	"keyprobe/internal/jwtauth"
	"keyprobe/internal/probe"
)

func main() {
	issueToken := flag.String("issue-token", "", "print a bearer token for `subject` and exit (requires INSPECT_JWT_SECRET)")
	tokenTTL := flag.Duration("token-ttl", 24*time.Hour, "lifetime of tokens printed by -issue-token")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	var verifier *jwtauth.Verifier
	if cfg.InspectAuth.Enabled() {
		verifier, err = jwtauth.NewVerifier(jwtauth.Config{
			Secret: cfg.InspectAuth.JWTSecret,
			Issuer: cfg.InspectAuth.Issuer,
		})
		if err != nil {
			log.Fatalf("failed to initialize token verifier: %v", err)
		}
	}

	if *issueToken != "" {
		if verifier == nil {
			log.Fatal("-issue-token requires INSPECT_JWT_SECRET")
		}
		token, err := verifier.Sign(*issueToken, *tokenTTL)
		if err != nil {
			log.Fatalf("failed to sign token: %v", err)
		}
		fmt.Println(token)
		return
	}

	prober := probe.NewProber(probe.AnthropicClients(cfg.Anthropic.BaseURL, cfg.Anthropic.Timeout), cfg.Anthropic.Model)

	deps := &handler.Deps{
		Diagnostics: config.LoadDiagnostics,
		Prober:      prober,
		Environment: cfg.Environment,
	}
	if verifier != nil {
		deps.Verifier = verifier
		log.Println("inspection routes require a bearer token")
	}

	if cfg.Database.Enabled() {
		db, err := database.Connect(cfg.Database)
		if err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
		defer func() {
			if err := db.Close(); err != nil {
				log.Printf("error closing database connection: %v", err)
			}
		}()
		log.Println("database connection established")

		if err := db.MigrateUp(); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
		version, dirty, err := db.MigrateVersion()
		if err != nil {
			log.Printf("WARNING: failed to get migration version: %v", err)
		} else if dirty {
			log.Printf("WARNING: database is in dirty state at version %d - a previous migration failed and manual intervention is required", version)
		} else {
			log.Printf("database migrations complete (version: %d)", version)
		}

		store := history.NewDatastore(db.DB)
		prober.WithRecorder(store)
		deps.History = store
		deps.DB = db
	}

	log.Printf("probe model=%s base_url=%s api_key_configured=%t",
		prober.Model(), cfg.Anthropic.BaseURL, cfg.Diagnostics.APIKey.Present())

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler.NewRouter(deps),
	}

	// Channel to listen for shutdown signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)

	go func() {
		log.Printf("keyprobe server starting on :%s (env: %s)", cfg.Port, cfg.Environment)
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	case sig := <-shutdown:
		log.Printf("received signal %v, initiating graceful shutdown...", sig)

		// Probes can take up to the upstream timeout.
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Anthropic.Timeout+5*time.Second)
		defer cancel()

		log.Println("waiting for in-flight requests to complete...")
		if err := server.Shutdown(ctx); err != nil {
			log.Printf("graceful shutdown failed: %v, forcing shutdown", err)
			if err := server.Close(); err != nil {
				log.Fatalf("forced shutdown failed: %v", err)
			}
		}

		log.Println("server shutdown complete")
	}
}
