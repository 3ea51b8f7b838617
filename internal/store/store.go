package store

import (
	"context"
	"errors"

	"policy-chat/internal/models"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionStore is the widget's view of the session/message store.
type SessionStore interface {
	// ListSessions retrieves all sessions owned by a user, newest first.
	ListSessions(ctx context.Context, userID string) ([]models.ChatSession, error)

	// GetSession retrieves one session by id.
	GetSession(ctx context.Context, userID, sessionID string) (*models.ChatSession, error)

	// InsertSession persists session metadata.
	InsertSession(ctx context.Context, session models.ChatSession) error

	// DeleteSession removes a session and all its messages.
	DeleteSession(ctx context.Context, userID, sessionID string) error

	// Messages retrieves all messages for a session in ascending timestamp order.
	Messages(ctx context.Context, sessionID string) ([]models.Message, error)

	// LatestMessage retrieves the most recent message for a session, or nil
	// when the session has none.
	LatestMessage(ctx context.Context, sessionID string) (*models.Message, error)

	// AppendMessage persists a message for a session.
	AppendMessage(ctx context.Context, message models.Message) error

	// Close closes the database connection.
	Close() error
}
