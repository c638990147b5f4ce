package auth

import (
	"testing"
	"time"
)

func testManager() *Manager {
	return &Manager{
		Secret: []byte("test-secret"),
		TTL:    time.Hour,
		Issuer: "eclat-backend",
	}
}

func TestIssueParseRoundTrip(t *testing.T) {
	m := testManager()
	token, err := m.Issue("user-1", "anna@example.com", "admin")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	claims, err := m.Parse(token)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if claims.UserID() != "user-1" {
		t.Fatalf("expected subject user-1, got %q", claims.UserID())
	}
	if claims.Email != "anna@example.com" {
		t.Fatalf("unexpected email: %q", claims.Email)
	}
	if claims.Role != "admin" {
		t.Fatalf("unexpected role: %q", claims.Role)
	}
}

func TestParseExpiredToken(t *testing.T) {
	m := testManager()
	m.TTL = -time.Minute

	token, err := m.Issue("user-1", "anna@example.com", "user")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if _, err := m.Parse(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseWrongSecret(t *testing.T) {
	m := testManager()
	token, err := m.Issue("user-1", "anna@example.com", "user")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	other := testManager()
	other.Secret = []byte("another-secret")
	if _, err := other.Parse(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseGarbage(t *testing.T) {
	m := testManager()
	if _, err := m.Parse("not-a-token"); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
