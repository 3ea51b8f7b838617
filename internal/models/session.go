package models

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

const (
	// DefaultTitle is given to sessions created explicitly, before any
	// message arrives.
	DefaultTitle = "New conversation"

	// PreviewLimit is the maximum number of characters shown for a
	// session's last message in the history list.
	PreviewLimit = 30
)

// ChatSession is one conversation thread owned by a single user.
// LastMessage and IsActive are UI projections, not stored fields.
type ChatSession struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	LastMessage string    `json:"-"`
	Timestamp   time.Time `json:"timestamp"`
	IsActive    bool      `json:"-"`
}

// NewSession creates a session with a client-generated id. The id is
// provisional until the store acknowledges the insert.
func NewSession(userID, title string) ChatSession {
	if title == "" {
		title = DefaultTitle
	}
	return ChatSession{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		Timestamp: time.Now(),
	}
}

// PreviewText reduces message content to a single-line preview, truncated
// to PreviewLimit characters with an ellipsis appended only when the
// original is longer.
func PreviewText(content string) string {
	content = strings.Join(strings.Fields(content), " ")
	content = norm.NFC.String(content)

	if utf8.RuneCountInString(content) <= PreviewLimit {
		return content
	}

	runes := []rune(content)
	return string(runes[:PreviewLimit]) + "…"
}
