package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"strings"
	"time"
)

const (
	AnthropicBaseURL = "https://api.anthropic.com/v1"
	AnthropicVersion = "2023-06-01"

	defaultTimeout      = 30 * time.Second
	maxErrorBodySize    = 64 * 1024
	maxResponseBodySize = 1024 * 1024
)

// Anthropic is a Messages API client bound to one API key.
type Anthropic struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// Option configures an Anthropic client.
type Option func(*Anthropic)

// WithBaseURL overrides the API base URL (e.g. for a proxy or a test server).
func WithBaseURL(baseURL string) Option {
	return func(a *Anthropic) {
		if baseURL != "" {
			a.baseURL = strings.TrimSuffix(baseURL, "/")
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(a *Anthropic) {
		if client != nil {
			a.client = client
		}
	}
}

// WithTimeout sets the overall request timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(a *Anthropic) {
		if timeout > 0 {
			a.client = &http.Client{Timeout: timeout}
		}
	}
}

// NewAnthropic creates a new Anthropic client for apiKey.
func NewAnthropic(apiKey string, opts ...Option) *Anthropic {
	a := &Anthropic{
		apiKey:  apiKey,
		baseURL: AnthropicBaseURL,
		client: &http.Client{
			Timeout: defaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// CreateMessage sends one non-streaming request to /messages.
func (a *Anthropic) CreateMessage(ctx context.Context, req MessageRequest) (*Message, error) {
	if a.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("x-api-key", a.apiKey)
	httpReq.Header.Set("anthropic-version", AnthropicVersion)

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, &ConnectionError{Timeout: isTimeout(ctx, err), Err: err}
	}
	defer closeBody(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeAPIError(resp)
	}

	var msg Message
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBodySize)).Decode(&msg); err != nil {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("failed to decode response: %v", err),
			RequestID:  resp.Header.Get("request-id"),
		}
	}

	return &msg, nil
}

// errorEnvelope is the body Anthropic returns on failure:
// {"type":"error","error":{"type":"...","message":"..."}}
type errorEnvelope struct {
	Type  string `json:"type"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		RequestID:  resp.Header.Get("request-id"),
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
	if err != nil {
		return apiErr
	}

	var env errorEnvelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Error.Message != "" {
		apiErr.Type = env.Error.Type
		apiErr.Message = env.Error.Message
		return apiErr
	}

	if text := strings.TrimSpace(string(raw)); text != "" {
		apiErr.Message = fmt.Sprintf("%d %s", resp.StatusCode, text)
	}
	return apiErr
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func closeBody(body io.Closer) {
	if err := body.Close(); err != nil {
		log.Printf("failed to close body: %v", err)
	}
}
