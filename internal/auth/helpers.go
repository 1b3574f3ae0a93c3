// Package auth parses bearer credentials for the guarded inspection routes
// and writes the JSON error bodies keyprobe returns outside the diagnostics.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
)

const realm = "keyprobe"

// ErrorType classifies a keyprobe error body.
type ErrorType string

const (
	TypeAuthentication ErrorType = "authentication_error"
	TypeInvalidRequest ErrorType = "invalid_request_error"
	TypeUnavailable    ErrorType = "unavailable_error"
	TypeServer         ErrorType = "server_error"
)

// Reasons a request carried no usable bearer token. Only the distinction
// between a missing and a bad token reaches the client.
var (
	ErrMissingAuthHeader = errors.New("missing authorization header")
	ErrInvalidAuthScheme = errors.New("authorization scheme is not Bearer")
	ErrEmptyToken        = errors.New("empty bearer token")
)

// ExtractBearerToken returns the token of an "Authorization: Bearer <token>"
// header. The scheme name is matched case-insensitively.
func ExtractBearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", ErrMissingAuthHeader
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrInvalidAuthScheme
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrEmptyToken
	}
	return token, nil
}

// ErrorResponse is the body of every non-diagnostic failure.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody describes one failure.
type ErrorBody struct {
	Message string    `json:"message"`
	Type    ErrorType `json:"type"`
}

// WriteJSONError writes {"error":{"message":...,"type":...}} with status.
func WriteJSONError(w http.ResponseWriter, status int, message string, errType ErrorType) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body := ErrorResponse{Error: ErrorBody{Message: message, Type: errType}}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("failed to write error body status=%d: %v", status, err)
	}
}

// WriteUnauthorized answers 401 with an RFC 6750 challenge. A request with
// no Authorization header gets a bare challenge; anything else is reported
// as invalid_token. The cause itself is not disclosed.
func WriteUnauthorized(w http.ResponseWriter, cause error) {
	challenge := fmt.Sprintf("Bearer realm=%q", realm)
	message := "bearer token required"
	if !errors.Is(cause, ErrMissingAuthHeader) {
		challenge += `, error="invalid_token"`
		message = "invalid bearer token"
	}

	w.Header().Set("WWW-Authenticate", challenge)
	WriteJSONError(w, http.StatusUnauthorized, message, TypeAuthentication)
}
