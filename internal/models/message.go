package models

import (
	"fmt"
	"time"
)

// Message senders. The widget only ever shows these two.
const (
	SenderUser = "user"
	SenderBot  = "bot"
)

// Message is a single turn in a session. Messages live in widget memory
// for the active session and are rebuilt from the store on load.
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

func NewMessage(sessionID, sender, content string) Message {
	return Message{
		ID:        generateMessageID(),
		SessionID: sessionID,
		Sender:    sender,
		Content:   content,
		Timestamp: time.Now(),
	}
}

func generateMessageID() string {
	return fmt.Sprintf("msg-%d", time.Now().UnixNano())
}
