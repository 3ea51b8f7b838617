package widget

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"policy-chat/internal/assist"
	"policy-chat/internal/auth"
	"policy-chat/internal/logging"
	"policy-chat/internal/models"
	"policy-chat/internal/store"
)

// User-visible notices for the failure taxonomy: auth-required,
// store-access, service-call.
const (
	noticeSignIn      = "Sign in to use the policy assistant."
	noticeListFailed  = "Couldn't load your conversations."
	noticeLoadFailed  = "Couldn't load that conversation."
	noticeSaveFailed  = "Couldn't start a new conversation."
	noticeSendFailed  = "The assistant couldn't answer. Please try again."
	noticeDeleteError = "Couldn't delete that conversation."
)

// Task performs the network/store work behind an operation. The UI layer
// runs it off the event loop and feeds the resulting Event back into Apply.
// A nil Task means the operation completed (or was refused) synchronously.
type Task func(ctx context.Context) Event

// Controller holds the widget state and mediates between user actions and
// the session store and answering service. All methods including Apply
// must be called from a single goroutine; Tasks are safe to run elsewhere
// because they never touch State.
type Controller struct {
	state State
	store store.SessionStore
	svc   assist.Answerer
	sess  *auth.Session
}

// NewController builds a controller. sess may be nil when no user is
// signed in; operations that require auth then surface a notice and
// mutate nothing.
func NewController(st store.SessionStore, svc assist.Answerer, sess *auth.Session) *Controller {
	return &Controller{
		store: st,
		svc:   svc,
		sess:  sess,
	}
}

// State returns a snapshot for rendering.
func (c *Controller) State() State {
	return c.state
}

func (c *Controller) Authenticated() bool {
	return c.sess != nil
}

// View-state transitions (pure local flips).

func (c *Controller) Open()           { c.state.Open() }
func (c *Controller) CloseWidget()    { c.state.Close() }
func (c *Controller) ToggleMaximize() { c.state.ToggleMaximize() }
func (c *Controller) ToggleHistory()  { c.state.ToggleHistory() }
func (c *Controller) ClearNotice()    { c.state.ClearNotice() }

// RefreshSessions fetches the user's sessions newest-first, with a preview
// built from each session's most recent message. On failure the prior list
// is left unchanged.
func (c *Controller) RefreshSessions() Task {
	if c.sess == nil {
		return nil
	}

	userID := c.sess.User.ID
	return func(ctx context.Context) Event {
		sessions, err := c.fetchSessions(ctx, userID)
		if err != nil {
			logging.Error("Failed to list sessions: %v", err)
			return SessionsLoadFailed{Err: err}
		}
		return SessionsLoaded{Sessions: sessions}
	}
}

// CreateSession starts a fresh conversation with a client-generated id.
// The id is provisional until the insert is acknowledged; on failure it is
// rolled back out of UI state.
func (c *Controller) CreateSession() Task {
	if c.sess == nil {
		c.state.Notice = noticeSignIn
		return nil
	}

	c.state.ClearNotice()

	session := models.NewSession(c.sess.User.ID, models.DefaultTitle)
	c.state.Sessions = append([]models.ChatSession{session}, c.state.Sessions...)
	c.state.ActiveSessionID = session.ID
	c.state.markActive()
	c.state.Messages = nil

	return func(ctx context.Context) Event {
		if err := c.store.InsertSession(ctx, session); err != nil {
			logging.Error("Failed to insert session %s: %v", session.ID, err)
			return SessionInsertFailed{SessionID: session.ID, Err: err}
		}
		return SessionCreated{SessionID: session.ID}
	}
}

// LoadSession optimistically marks the session active and fetches its
// messages oldest-first. Switching is allowed while another load is in
// flight; the response is tagged with the session id so a stale reply is
// discarded if the user has moved on.
func (c *Controller) LoadSession(sessionID string) Task {
	c.state.ClearNotice()
	c.state.ActiveSessionID = sessionID
	c.state.markActive()
	c.state.Loading = true

	return func(ctx context.Context) Event {
		messages, err := c.store.Messages(ctx, sessionID)
		if err != nil {
			logging.Error("Failed to load messages for session %s: %v", sessionID, err)
			return MessagesLoadFailed{SessionID: sessionID, Err: err}
		}
		return MessagesLoaded{SessionID: sessionID, Messages: messages}
	}
}

// DeleteSession optimistically removes the session, issues the answering
// service's delete command, and re-fetches the authoritative list either
// way to reconcile.
func (c *Controller) DeleteSession(sessionID string) Task {
	if c.sess == nil {
		c.state.Notice = noticeSignIn
		return nil
	}
	if c.state.Loading {
		return nil
	}

	c.state.ClearNotice()

	kept := make([]models.ChatSession, 0, len(c.state.Sessions))
	for _, s := range c.state.Sessions {
		if s.ID != sessionID {
			kept = append(kept, s)
		}
	}
	c.state.Sessions = kept

	if c.state.ActiveSessionID == sessionID {
		c.state.ActiveSessionID = ""
		c.state.Messages = nil
	}

	userID := c.sess.User.ID
	return func(ctx context.Context) Event {
		err := c.svc.DeleteSession(ctx, sessionID)
		if err != nil {
			logging.Error("Delete command failed for session %s: %v", sessionID, err)
		} else if serr := c.store.DeleteSession(ctx, userID, sessionID); serr != nil {
			logging.Error("Failed to delete session %s rows: %v", sessionID, serr)
			// The re-fetched list will resurrect the session; surface
			// the failure rather than pretend the delete stuck.
			err = serr
		}

		sessions, lerr := c.fetchSessions(ctx, userID)
		if lerr != nil {
			logging.Error("Failed to re-fetch sessions after delete: %v", lerr)
		}
		return DeleteCompleted{SessionID: sessionID, Err: err, Sessions: sessions, ListErr: lerr}
	}
}

// Send submits trimmed user input to the answering service along with the
// full prior conversation. The user message is appended optimistically and
// stays visible on failure. Blank input is a no-op.
func (c *Controller) Send(text string) Task {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if c.sess == nil {
		c.state.Notice = noticeSignIn
		return nil
	}
	if c.state.Loading {
		return nil
	}

	c.state.ClearNotice()

	sessionID := c.state.ActiveSessionID
	firstSend := false
	if sessionID == "" {
		// Adopt a provisional session; it is persisted once the
		// service answers.
		sessionID = uuid.NewString()
		c.state.ActiveSessionID = sessionID
		firstSend = true
	} else {
		firstSend = len(c.state.Messages) == 0
	}

	userMsg := models.NewMessage(sessionID, models.SenderUser, text)
	c.state.Messages = append(c.state.Messages, userMsg)
	c.state.Loading = true

	turns := make([]assist.TurnPayload, 0, len(c.state.Messages))
	for _, m := range c.state.Messages {
		turns = append(turns, assist.TurnPayload{
			ID:        m.ID,
			Text:      m.Content,
			Sender:    m.Sender,
			Timestamp: m.Timestamp,
		})
	}

	userID := c.sess.User.ID
	return func(ctx context.Context) Event {
		answer, err := c.svc.Ask(ctx, assist.AskRequest{
			Messages:  turns,
			SessionID: sessionID,
			UserID:    userID,
		})
		if err != nil {
			logging.Error("Ask failed for session %s: %v", sessionID, err)
			return SendFailed{SessionID: sessionID, Err: err}
		}

		reply := models.NewMessage(sessionID, models.SenderBot, answer)
		c.persistTurns(ctx, userID, sessionID, firstSend, userMsg, reply)

		sessions, lerr := c.fetchSessions(ctx, userID)
		if lerr != nil {
			logging.Error("Failed to refresh sessions after reply: %v", lerr)
			sessions = nil
		}
		return ReplyReceived{SessionID: sessionID, Reply: reply, Sessions: sessions}
	}
}

// Apply folds a Task's Event into state. Stale responses carrying a
// session id that no longer matches the active pointer are discarded.
func (c *Controller) Apply(ev Event) {
	switch ev := ev.(type) {
	case SessionsLoaded:
		c.state.Sessions = ev.Sessions
		c.state.markActive()

	case SessionsLoadFailed:
		c.state.Notice = noticeListFailed

	case SessionCreated:
		// Insert acknowledged; the optimistic state already matches.

	case SessionInsertFailed:
		kept := make([]models.ChatSession, 0, len(c.state.Sessions))
		for _, s := range c.state.Sessions {
			if s.ID != ev.SessionID {
				kept = append(kept, s)
			}
		}
		c.state.Sessions = kept
		if c.state.ActiveSessionID == ev.SessionID {
			c.state.ActiveSessionID = ""
			c.state.Messages = nil
		}
		c.state.Notice = noticeSaveFailed

	case MessagesLoaded:
		if ev.SessionID != c.state.ActiveSessionID {
			logging.Debug("Discarding stale message load for session %s", ev.SessionID)
			return
		}
		c.state.Messages = ev.Messages
		c.state.Loading = false

	case MessagesLoadFailed:
		if ev.SessionID == c.state.ActiveSessionID {
			c.state.Loading = false
		}
		c.state.Notice = noticeLoadFailed

	case ReplyReceived:
		// The loading flag may belong to a newer operation by now; only
		// the event matching the active pointer clears it.
		if ev.SessionID == c.state.ActiveSessionID {
			c.state.Loading = false
			c.state.Messages = append(c.state.Messages, ev.Reply)
		}
		if ev.Sessions != nil {
			c.state.Sessions = ev.Sessions
			c.state.markActive()
		}

	case SendFailed:
		if ev.SessionID == c.state.ActiveSessionID {
			c.state.Loading = false
		}
		c.state.Notice = noticeSendFailed

	case DeleteCompleted:
		if ev.Err != nil {
			c.state.Notice = noticeDeleteError
		}
		if ev.ListErr == nil {
			c.state.Sessions = ev.Sessions
			c.state.markActive()
		}
	}
}

// fetchSessions lists the user's sessions newest-first and attaches the
// last-message preview to each.
func (c *Controller) fetchSessions(ctx context.Context, userID string) ([]models.ChatSession, error) {
	sessions, err := c.store.ListSessions(ctx, userID)
	if err != nil {
		return nil, err
	}

	for i := range sessions {
		latest, err := c.store.LatestMessage(ctx, sessions[i].ID)
		if err != nil {
			return nil, err
		}
		if latest != nil {
			sessions[i].LastMessage = models.PreviewText(latest.Content)
		}
	}

	return sessions, nil
}

// persistTurns mirrors what the answering backend records: the session on
// its first turn, then both sides of the exchange. Store failures are
// logged; the reply has already been produced and stays visible.
func (c *Controller) persistTurns(ctx context.Context, userID, sessionID string, firstSend bool, userMsg, reply models.Message) {
	existing, err := c.store.GetSession(ctx, userID, sessionID)
	switch {
	case errors.Is(err, store.ErrSessionNotFound):
		session := models.ChatSession{
			ID:        sessionID,
			UserID:    userID,
			Title:     models.PreviewText(userMsg.Content),
			Timestamp: userMsg.Timestamp,
		}
		if ierr := c.store.InsertSession(ctx, session); ierr != nil {
			logging.Error("Failed to persist session %s: %v", sessionID, ierr)
		}
	case err != nil:
		logging.Error("Failed to look up session %s: %v", sessionID, err)
	case firstSend && existing.Title == models.DefaultTitle:
		existing.Title = models.PreviewText(userMsg.Content)
		if ierr := c.store.InsertSession(ctx, *existing); ierr != nil {
			logging.Error("Failed to retitle session %s: %v", sessionID, ierr)
		}
	}

	if err := c.store.AppendMessage(ctx, userMsg); err != nil {
		logging.Error("Failed to persist user message: %v", err)
	}
	if err := c.store.AppendMessage(ctx, reply); err != nil {
		logging.Error("Failed to persist reply: %v", err)
	}
}
