package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mediafeed/service/internal/config"
	"github.com/mediafeed/service/internal/identity"
	"github.com/mediafeed/service/internal/middleware"
)

func TestIssuedTokenIsAcceptedByMiddleware(t *testing.T) {
	cfg := &config.Config{JWTSecret: "s3cret", JWTTTL: time.Hour}
	svc := NewService(nil, cfg)

	token, err := svc.issueToken("user-1", "alice@example.com", time.Now())
	if err != nil {
		t.Fatalf("issueToken: %v", err)
	}

	var got identity.Identity
	h := middleware.RequireAuth(cfg.JWTSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = identity.FromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/feed", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got.ID != "user-1" || got.Email != "alice@example.com" {
		t.Errorf("identity = %+v", got)
	}
}

func TestExpiredTokenIsRejected(t *testing.T) {
	cfg := &config.Config{JWTSecret: "s3cret", JWTTTL: time.Minute}
	svc := NewService(nil, cfg)

	token, err := svc.issueToken("user-1", "alice@example.com", time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatal(err)
	}

	h := middleware.RequireAuth(cfg.JWTSecret)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("handler reached with an expired token")
	}))
	req := httptest.NewRequest(http.MethodGet, "/feed", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestCredentialsValidate(t *testing.T) {
	tests := []struct {
		req  credentialsRequest
		want string
	}{
		{credentialsRequest{Email: "alice@example.com", Password: "longenough"}, ""},
		{credentialsRequest{Email: "not-an-email", Password: "longenough"}, "invalid email address"},
		{credentialsRequest{Email: "alice@example.com", Password: "short"}, "password must be at least 8 characters"},
	}
	for _, tt := range tests {
		if got := tt.req.validate(); got != tt.want {
			t.Errorf("validate(%+v) = %q, want %q", tt.req, got, tt.want)
		}
	}
}
