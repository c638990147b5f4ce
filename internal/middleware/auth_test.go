package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"eclat-backend/internal/auth"
)

func testTokens() *auth.Manager {
	return &auth.Manager{
		Secret: []byte("test-secret"),
		TTL:    time.Hour,
		Issuer: "eclat-backend",
	}
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuthMissingHeader(t *testing.T) {
	handler := RequireAuth(testTokens())(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequireAuthMalformedHeader(t *testing.T) {
	handler := RequireAuth(testTokens())(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Basic abc123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequireAuthInvalidToken(t *testing.T) {
	handler := RequireAuth(testTokens())(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequireAuthInjectsClaims(t *testing.T) {
	tokens := testTokens()
	token, err := tokens.Issue("user-1", "anna@example.com", "user")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	var got *auth.Claims
	handler := RequireAuth(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = auth.ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got == nil || got.UserID() != "user-1" {
		t.Fatalf("expected claims for user-1, got %+v", got)
	}
}

func TestRequireAdminRejectsNonAdmin(t *testing.T) {
	tokens := testTokens()
	token, err := tokens.Issue("user-1", "anna@example.com", "user")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	handler := RequireAuth(tokens)(RequireAdmin(okHandler()))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/clients", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRequireAdminAllowsAdmin(t *testing.T) {
	tokens := testTokens()
	token, err := tokens.Issue("admin-1", "admin@example.com", "admin")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	handler := RequireAuth(tokens)(RequireAdmin(okHandler()))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/clients", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequireAdminWithoutClaims(t *testing.T) {
	handler := RequireAdmin(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/admin/clients", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}
