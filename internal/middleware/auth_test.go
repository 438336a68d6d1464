package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mediafeed/service/internal/identity"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret, sub string, exp time.Time) string {
	t.Helper()
	claims := Claims{
		Email: "a@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func TestRequireAuth(t *testing.T) {
	var got identity.Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = identity.FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	h := RequireAuth(testSecret)(next)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"bad signature", "Bearer " + signToken(t, "other", "u1", time.Now().Add(time.Hour)), http.StatusUnauthorized},
		{"expired", "Bearer " + signToken(t, testSecret, "u1", time.Now().Add(-time.Hour)), http.StatusUnauthorized},
		{"no subject", "Bearer " + signToken(t, testSecret, "", time.Now().Add(time.Hour)), http.StatusUnauthorized},
		{"valid", "Bearer " + signToken(t, testSecret, "u1", time.Now().Add(time.Hour)), http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got = identity.Identity{}
			req := httptest.NewRequest(http.MethodGet, "/feed", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
			if tt.want == http.StatusNoContent && (got.ID != "u1" || got.Email != "a@example.com") {
				t.Errorf("identity = %+v", got)
			}
		})
	}
}
