package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name       string
		authHeader string
		wantToken  string
		wantErr    error
	}{
		{name: "missing header", authHeader: "", wantErr: ErrMissingAuthHeader},
		{name: "basic scheme", authHeader: "Basic dXNlcjpwYXNz", wantErr: ErrInvalidAuthScheme},
		{name: "scheme only", authHeader: "Bearer", wantErr: ErrInvalidAuthScheme},
		{name: "scheme as prefix of another word", authHeader: "Bearerabc def", wantErr: ErrInvalidAuthScheme},
		{name: "empty token", authHeader: "Bearer ", wantErr: ErrEmptyToken},
		{name: "whitespace token", authHeader: "Bearer    ", wantErr: ErrEmptyToken},
		{name: "jwt", authHeader: "Bearer eyJhbGciOiJIUzI1NiJ9.e30.sig", wantToken: "eyJhbGciOiJIUzI1NiJ9.e30.sig"},
		{name: "lowercase scheme", authHeader: "bearer some-token", wantToken: "some-token"},
		{name: "uppercase scheme", authHeader: "BEARER some-token", wantToken: "some-token"},
		{name: "surrounding space trimmed", authHeader: "Bearer  abc ", wantToken: "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			token, err := ExtractBearerToken(req)

			if err != tt.wantErr {
				t.Errorf("expected error %v, got %v", tt.wantErr, err)
			}
			if token != tt.wantToken {
				t.Errorf("expected token %q, got %q", tt.wantToken, token)
			}
		})
	}
}

func TestWriteJSONError(t *testing.T) {
	rec := httptest.NewRecorder()

	WriteJSONError(rec, http.StatusServiceUnavailable, "probe history is not configured", TypeUnavailable)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type 'application/json', got %q", ct)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse JSON response: %v", err)
	}
	if resp.Error.Message != "probe history is not configured" {
		t.Errorf("unexpected message %q", resp.Error.Message)
	}
	if resp.Error.Type != TypeUnavailable {
		t.Errorf("unexpected type %q", resp.Error.Type)
	}
}

func TestWriteUnauthorized(t *testing.T) {
	tests := []struct {
		name          string
		cause         error
		wantChallenge string
		wantMessage   string
	}{
		{
			name:          "no header",
			cause:         ErrMissingAuthHeader,
			wantChallenge: `Bearer realm="keyprobe"`,
			wantMessage:   "bearer token required",
		},
		{
			name:          "wrong scheme",
			cause:         ErrInvalidAuthScheme,
			wantChallenge: `Bearer realm="keyprobe", error="invalid_token"`,
			wantMessage:   "invalid bearer token",
		},
		{
			name:          "rejected token",
			cause:         errors.New("token is expired"),
			wantChallenge: `Bearer realm="keyprobe", error="invalid_token"`,
			wantMessage:   "invalid bearer token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()

			WriteUnauthorized(rec, tt.cause)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("expected status 401, got %d", rec.Code)
			}
			if got := rec.Header().Get("WWW-Authenticate"); got != tt.wantChallenge {
				t.Errorf("expected challenge %q, got %q", tt.wantChallenge, got)
			}

			var resp ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to parse JSON response: %v", err)
			}
			if resp.Error.Message != tt.wantMessage || resp.Error.Type != TypeAuthentication {
				t.Errorf("unexpected error body: %+v", resp.Error)
			}
			if tt.cause != nil && resp.Error.Message == tt.cause.Error() {
				t.Error("cause leaked into response body")
			}
		})
	}
}
