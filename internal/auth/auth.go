package auth

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNotAuthenticated is returned when no usable credential is present.
// Controller operations surface it as a notice and mutate nothing.
var ErrNotAuthenticated = errors.New("not authenticated")

// User identifies the logged-in owner of the widget's sessions.
type User struct {
	ID    string
	Email string
}

// Session is the authenticated state the widget operates under. The auth
// provider itself is external; we only hold the bearer token it issued.
type Session struct {
	User  User
	Token string
}

type claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// LoadSession reads a bearer token from the credentials file and extracts
// the user identity from its claims. The token is validated server-side on
// every call; here we only reject tokens that are plainly unusable.
func LoadSession(credentialsPath string) (*Session, error) {
	data, err := os.ReadFile(credentialsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotAuthenticated
		}
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return nil, ErrNotAuthenticated
	}

	return SessionFromToken(token)
}

// SessionFromToken builds an authenticated session from a raw JWT.
func SessionFromToken(token string) (*Session, error) {
	var c claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &c); err != nil {
		return nil, fmt.Errorf("%w: malformed token: %v", ErrNotAuthenticated, err)
	}

	if c.Subject == "" {
		return nil, fmt.Errorf("%w: token has no subject", ErrNotAuthenticated)
	}

	if c.ExpiresAt != nil && c.ExpiresAt.Before(time.Now()) {
		return nil, fmt.Errorf("%w: token expired", ErrNotAuthenticated)
	}

	return &Session{
		User: User{
			ID:    c.Subject,
			Email: c.Email,
		},
		Token: token,
	}, nil
}
