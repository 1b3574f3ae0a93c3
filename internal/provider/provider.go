// Package provider is a minimal client for the Anthropic Messages API.
// It covers exactly what the credential probe needs: one non-streaming
// message request and a coarse classification of failures.
package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// MessageCreator sends a single Messages API request.
type MessageCreator interface {
	CreateMessage(ctx context.Context, req MessageRequest) (*Message, error)
}

// MessageParam is one turn of a conversation.
type MessageParam struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// MessageRequest is the body of POST /v1/messages.
type MessageRequest struct {
	Model     string         `json:"model"`
	MaxTokens int            `json:"max_tokens"`
	Messages  []MessageParam `json:"messages"`
}

// NewUserMessage returns a single user turn with text content.
func NewUserMessage(text string) MessageParam {
	return MessageParam{Role: "user", Content: text}
}

// ContentBlock is one element of a message's content array.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// Usage reports token counts for a response.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Message is the response body of a successful Messages API call.
type Message struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Role       string         `json:"role"`
	Model      string         `json:"model"`
	Content    []ContentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
	Usage      Usage          `json:"usage"`
}

// FirstText returns the text of the first text block, if any.
func (m *Message) FirstText() (string, bool) {
	if m == nil {
		return "", false
	}
	for _, block := range m.Content {
		if block.Type == "text" {
			return block.Text, true
		}
	}
	return "", false
}

// Common errors
var (
	ErrMissingAPIKey = errors.New("API key is required")
	ErrEmptyResponse = errors.New("response contained no text content")
)

// APIError is returned when the upstream service answers with a non-2xx
// status or a body that cannot be decoded.
type APIError struct {
	StatusCode int
	Type       string // upstream error type, e.g. "rate_limit_error"
	Message    string
	RequestID  string // upstream "request-id" header, for support tickets
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return "invalid response from upstream"
}

// ConnectionError is returned when the request never produced a response.
type ConnectionError struct {
	Timeout bool
	Err     error
}

func (e *ConnectionError) Error() string {
	if e.Timeout {
		return "request timed out"
	}
	return "connection error: " + e.Err.Error()
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// Error kinds reported alongside failure messages.
const (
	KindBadRequest          = "BadRequestError"
	KindAuthentication      = "AuthenticationError"
	KindPermissionDenied    = "PermissionDeniedError"
	KindNotFound            = "NotFoundError"
	KindUnprocessableEntity = "UnprocessableEntityError"
	KindRateLimit           = "RateLimitError"
	KindInternalServer      = "InternalServerError"
	KindAPI                 = "APIError"
	KindConnection          = "APIConnectionError"
	KindConnectionTimeout   = "APIConnectionTimeoutError"
	KindGeneric             = "Error"
)

// RequestID returns the upstream request id carried by err, if any.
func RequestID(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.RequestID
	}
	return ""
}

// ErrorKind maps an error to a coarse category name.
// Transient and permanent failures are not distinguished.
func ErrorKind(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusBadRequest:
			return KindBadRequest
		case apiErr.StatusCode == http.StatusUnauthorized:
			return KindAuthentication
		case apiErr.StatusCode == http.StatusForbidden:
			return KindPermissionDenied
		case apiErr.StatusCode == http.StatusNotFound:
			return KindNotFound
		case apiErr.StatusCode == http.StatusUnprocessableEntity:
			return KindUnprocessableEntity
		case apiErr.StatusCode == http.StatusTooManyRequests:
			return KindRateLimit
		case apiErr.StatusCode >= http.StatusInternalServerError:
			return KindInternalServer
		default:
			return KindAPI
		}
	}

	var connErr *ConnectionError
	if errors.As(err, &connErr) {
		if connErr.Timeout {
			return KindConnectionTimeout
		}
		return KindConnection
	}

	return KindGeneric
}

// ErrorMessage returns the human-readable text of a failure.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	return err.Error()
}
