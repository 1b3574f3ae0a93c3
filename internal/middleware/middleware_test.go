package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"keyprobe/internal/jwtauth"

	"github.com/google/uuid"
)

// mockVerifier implements TokenVerifier for testing.
type mockVerifier struct {
	verifyFunc func(ctx context.Context, token string) (*jwtauth.Claims, error)
	calls      int
}

func (m *mockVerifier) Verify(ctx context.Context, token string) (*jwtauth.Claims, error) {
	m.calls++
	if m.verifyFunc != nil {
		return m.verifyFunc(ctx, token)
	}
	return nil, jwtauth.ErrInvalidToken
}

// claimsHandler echoes the subject of the claims attached to the request.
func claimsHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject := ""
		if claims := jwtauth.GetClaims(r.Context()); claims != nil {
			subject = claims.Subject
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"subject": subject})
	})
}

func TestRequireBearer_NilVerifierPassesThrough(t *testing.T) {
	handler := RequireBearer(nil)(claimsHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/debug-env", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
}

func TestRequireBearer_MissingHeader(t *testing.T) {
	v := &mockVerifier{}
	handler := RequireBearer(v)(claimsHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/debug-env", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rec.Code)
	}
	if rec.Header().Get("Content-Type") != "application/json" {
		t.Errorf("expected JSON content type, got %q", rec.Header().Get("Content-Type"))
	}
	if v.calls != 0 {
		t.Errorf("verifier should not be called without a token, got %d calls", v.calls)
	}
	if got := rec.Header().Get("WWW-Authenticate"); got != `Bearer realm="keyprobe"` {
		t.Errorf("unexpected challenge %q", got)
	}
}

func TestRequireBearer_RejectedToken(t *testing.T) {
	v := &mockVerifier{verifyFunc: func(ctx context.Context, token string) (*jwtauth.Claims, error) {
		return nil, errors.New("signature is invalid")
	}}
	handler := RequireBearer(v)(claimsHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/debug-env", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rec.Code)
	}
	if got := rec.Header().Get("WWW-Authenticate"); got != `Bearer realm="keyprobe", error="invalid_token"` {
		t.Errorf("unexpected challenge %q", got)
	}
	if strings.Contains(rec.Body.String(), "signature is invalid") {
		t.Error("verification error leaked into response body")
	}
}

func TestRequireBearer_ValidToken(t *testing.T) {
	v := &mockVerifier{verifyFunc: func(ctx context.Context, token string) (*jwtauth.Claims, error) {
		if token != "good-token" {
			return nil, jwtauth.ErrInvalidToken
		}
		c := &jwtauth.Claims{}
		c.Subject = "oncall"
		return c, nil
	}}
	handler := RequireBearer(v)(claimsHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/debug-env", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["subject"] != "oncall" {
		t.Errorf("expected subject 'oncall', got %q", resp["subject"])
	}
}

func TestRequestLogger_AssignsRequestID(t *testing.T) {
	var seen string
	handler := RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if _, err := uuid.Parse(seen); err != nil {
		t.Errorf("expected generated uuid request ID, got %q", seen)
	}
	if rec.Header().Get(RequestIDHeader) != seen {
		t.Errorf("expected response header %q, got %q", seen, rec.Header().Get(RequestIDHeader))
	}
	if rec.Code != http.StatusTeapot {
		t.Errorf("expected status to pass through, got %d", rec.Code)
	}
}

func TestRequestLogger_PropagatesValidRequestID(t *testing.T) {
	id := uuid.NewString()
	var seen string
	handler := RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	req.Header.Set(RequestIDHeader, id)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if seen != id {
		t.Errorf("expected request ID %q, got %q", id, seen)
	}
}

func TestRequestLogger_ReplacesInvalidRequestID(t *testing.T) {
	var seen string
	handler := RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	req.Header.Set(RequestIDHeader, "not a uuid\r\n")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if seen == "not a uuid\r\n" {
		t.Error("expected invalid request ID to be replaced")
	}
}
