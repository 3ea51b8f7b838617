package widget

import "policy-chat/internal/models"

// Event is the result of an asynchronous Task, folded into State by
// Controller.Apply on the UI event loop.
type Event interface {
	isEvent()
}

// SessionsLoaded replaces the session list after a refresh.
type SessionsLoaded struct {
	Sessions []models.ChatSession
}

// SessionsLoadFailed leaves the prior list unchanged.
type SessionsLoadFailed struct {
	Err error
}

// SessionCreated acknowledges that the store accepted a provisional session.
type SessionCreated struct {
	SessionID string
}

// SessionInsertFailed rolls a provisional session id back out of UI state.
type SessionInsertFailed struct {
	SessionID string
	Err       error
}

// MessagesLoaded carries the id of the session it was fetched for, so a
// stale response can be discarded once the active pointer has moved on.
type MessagesLoaded struct {
	SessionID string
	Messages  []models.Message
}

type MessagesLoadFailed struct {
	SessionID string
	Err       error
}

// ReplyReceived delivers the answering service's reply along with the
// refreshed session list. Sessions is nil when the refresh itself failed.
type ReplyReceived struct {
	SessionID string
	Reply     models.Message
	Sessions  []models.ChatSession
}

// SendFailed keeps the optimistic user message visible; no rollback. It
// carries the session id it was issued for so a stale failure cannot clear
// the loading flag of a newer in-flight operation.
type SendFailed struct {
	SessionID string
	Err       error
}

// DeleteCompleted reconciles the list after a delete attempt, successful
// or not. Sessions holds the authoritative re-fetched list when ListErr
// is nil.
type DeleteCompleted struct {
	SessionID string
	Err       error
	Sessions  []models.ChatSession
	ListErr   error
}

func (SessionsLoaded) isEvent()      {}
func (SessionsLoadFailed) isEvent()  {}
func (SessionCreated) isEvent()      {}
func (SessionInsertFailed) isEvent() {}
func (MessagesLoaded) isEvent()      {}
func (MessagesLoadFailed) isEvent()  {}
func (ReplyReceived) isEvent()       {}
func (SendFailed) isEvent()          {}
func (DeleteCompleted) isEvent()     {}
