package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"keyprobe/internal/credential"
)

const (
	DefaultAnthropicBaseURL = "https://api.anthropic.com/v1"
	DefaultProbeModel       = "claude-3-5-haiku-20241022"
	DefaultProbeTimeout     = 30 * time.Second

	// EnvKeyMarker selects which environment variable names are reported
	// by the environment inspector. Matching is case-sensitive.
	EnvKeyMarker = "ANTHROPIC"

	minJWTSecretLength = 32
)

// Diagnostics is the configuration every diagnostic handler receives.
// It is built from a snapshot of the environment and is never mutated.
type Diagnostics struct {
	APIKey     credential.Credential
	NodeEnv    string
	NodeEnvSet bool
	EnvNames   []string
}

// AnthropicConfig holds settings for the upstream test call.
type AnthropicConfig struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// DatabaseConfig holds PostgreSQL connection configuration.
// An empty URL disables probe history.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // seconds
}

// Enabled reports whether a database has been configured.
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// InspectAuthConfig guards the environment inspector and probe history.
// An empty secret leaves them public.
type InspectAuthConfig struct {
	JWTSecret []byte
	Issuer    string
}

// Enabled reports whether bearer token verification is required.
func (a InspectAuthConfig) Enabled() bool {
	return len(a.JWTSecret) > 0
}

type Config struct {
	Port        string
	Environment string
	Diagnostics Diagnostics
	Anthropic   AnthropicConfig
	Database    DatabaseConfig
	InspectAuth InspectAuthConfig
}

// DiagnosticsFromEnviron builds handler configuration from KEY=VALUE pairs
// as returned by os.Environ. It never fails: a missing API key is a valid state.
func DiagnosticsFromEnviron(environ []string) Diagnostics {
	d := Diagnostics{EnvNames: []string{}}
	for _, kv := range environ {
		name, value, _ := strings.Cut(kv, "=")
		if name == "" {
			continue
		}
		switch name {
		case "ANTHROPIC_API_KEY":
			d.APIKey = credential.Credential(value)
		case "NODE_ENV":
			d.NodeEnv = value
			d.NodeEnvSet = true
		}
		if strings.Contains(name, EnvKeyMarker) {
			d.EnvNames = append(d.EnvNames, name)
		}
	}
	return d
}

// LoadDiagnostics reads handler configuration from the process environment.
func LoadDiagnostics() Diagnostics {
	return DiagnosticsFromEnviron(os.Environ())
}

// Load reads server configuration from environment variables.
// Only optional settings can be invalid; a missing API key is not an error.
func Load() (*Config, error) {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	env := os.Getenv("ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" && env != "staging" && env != "production" {
		return nil, fmt.Errorf("invalid ENV value %q: must be development, staging, or production", env)
	}

	anthropic, err := LoadAnthropic()
	if err != nil {
		return nil, err
	}

	// Database configuration (optional)
	databaseURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if databaseURL != "" {
		if err := validateDatabaseURL(databaseURL); err != nil {
			return nil, fmt.Errorf("invalid DATABASE_URL: %w", err)
		}
	}

	inspectAuth, err := LoadInspectAuth()
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:        port,
		Environment: env,
		Diagnostics: LoadDiagnostics(),
		Anthropic:   anthropic,
		Database: DatabaseConfig{
			URL:             databaseURL,
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvInt("DB_CONN_MAX_LIFETIME", 300),
		},
		InspectAuth: inspectAuth,
	}, nil
}

// LoadAnthropic reads the upstream settings used by the credential probe.
func LoadAnthropic() (AnthropicConfig, error) {
	baseURL := strings.TrimSpace(os.Getenv("ANTHROPIC_BASE_URL"))
	if baseURL == "" {
		baseURL = DefaultAnthropicBaseURL
	}
	if err := validateBaseURL(baseURL); err != nil {
		return AnthropicConfig{}, fmt.Errorf("invalid ANTHROPIC_BASE_URL: %w", err)
	}

	model := strings.TrimSpace(os.Getenv("PROBE_MODEL"))
	if model == "" {
		model = DefaultProbeModel
	}

	timeout := DefaultProbeTimeout
	if secs := getEnvInt("PROBE_TIMEOUT_SECONDS", 0); secs > 0 {
		timeout = time.Duration(secs) * time.Second
	}

	return AnthropicConfig{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		Model:   model,
		Timeout: timeout,
	}, nil
}

// LoadInspectAuth reads the optional bearer-token guard settings. The zero
// value means the inspection routes are public.
func LoadInspectAuth() (InspectAuthConfig, error) {
	secret := os.Getenv("INSPECT_JWT_SECRET")
	if secret == "" {
		return InspectAuthConfig{}, nil
	}
	if len(secret) < minJWTSecretLength {
		return InspectAuthConfig{}, fmt.Errorf("invalid INSPECT_JWT_SECRET: must be at least %d bytes, got %d", minJWTSecretLength, len(secret))
	}
	return InspectAuthConfig{
		JWTSecret: []byte(secret),
		Issuer:    strings.TrimSpace(os.Getenv("INSPECT_JWT_ISSUER")),
	}, nil
}

// validateBaseURL ensures the upstream base URL is an absolute http(s) URL.
func validateBaseURL(baseURL string) error {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("malformed URL: %w", err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("URL must use http or https scheme, got %q", parsed.Scheme)
	}

	if parsed.Host == "" {
		return fmt.Errorf("URL must include a host")
	}

	return nil
}

// validateDatabaseURL ensures the database URL is a valid PostgreSQL connection string.
func validateDatabaseURL(dbURL string) error {
	parsed, err := url.Parse(dbURL)
	if err != nil {
		return fmt.Errorf("malformed URL: %w", err)
	}

	if parsed.Scheme != "postgres" && parsed.Scheme != "postgresql" {
		return fmt.Errorf("URL must use postgres:// or postgresql:// scheme, got %q", parsed.Scheme)
	}

	if parsed.Host == "" {
		return fmt.Errorf("URL must include a host")
	}

	return nil
}

// getEnvInt reads an environment variable as an integer with a default fallback.
func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	intVal, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return intVal
}
