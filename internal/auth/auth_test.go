package auth

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signToken(t *testing.T, subject, email string, expiresAt time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{}
	if subject != "" {
		claims["sub"] = subject
	}
	if email != "" {
		claims["email"] = email
	}
	if !expiresAt.IsZero() {
		claims["exp"] = expiresAt.Unix()
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return token
}

func TestSessionFromToken(t *testing.T) {
	token := signToken(t, "user-1", "dev@example.com", time.Now().Add(time.Hour))

	session, err := SessionFromToken(token)
	if err != nil {
		t.Fatalf("SessionFromToken failed: %v", err)
	}

	if session.User.ID != "user-1" {
		t.Errorf("expected user id user-1, got %q", session.User.ID)
	}
	if session.User.Email != "dev@example.com" {
		t.Errorf("expected email claim, got %q", session.User.Email)
	}
	if session.Token != token {
		t.Error("expected the raw token retained for the Authorization header")
	}
}

func TestSessionFromTokenRejections(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"Malformed token", "not-a-jwt"},
		{"Empty token", ""},
		{"Missing subject", signTokenNoSub(t)},
		{"Expired token", signToken(t, "user-1", "", time.Now().Add(-time.Hour))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SessionFromToken(tt.token)
			if !errors.Is(err, ErrNotAuthenticated) {
				t.Errorf("expected ErrNotAuthenticated, got %v", err)
			}
		})
	}
}

func signTokenNoSub(t *testing.T) string {
	t.Helper()
	return signToken(t, "", "dev@example.com", time.Now().Add(time.Hour))
}

func TestLoadSessionMissingFile(t *testing.T) {
	_, err := LoadSession(filepath.Join(t.TempDir(), "credentials"))
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("expected ErrNotAuthenticated for a missing file, got %v", err)
	}
}

func TestLoadSessionEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials")
	if err := os.WriteFile(path, []byte("  \n"), 0600); err != nil {
		t.Fatalf("Failed to write credentials file: %v", err)
	}

	_, err := LoadSession(path)
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("expected ErrNotAuthenticated for an empty file, got %v", err)
	}
}

func TestLoadSessionTrimsWhitespace(t *testing.T) {
	token := signToken(t, "user-1", "", time.Now().Add(time.Hour))
	path := filepath.Join(t.TempDir(), "credentials")
	if err := os.WriteFile(path, []byte(token+"\n"), 0600); err != nil {
		t.Fatalf("Failed to write credentials file: %v", err)
	}

	session, err := LoadSession(path)
	if err != nil {
		t.Fatalf("LoadSession failed: %v", err)
	}
	if session.Token != token {
		t.Error("expected the trailing newline stripped from the token")
	}
}
