package widget

import "policy-chat/internal/models"

// ViewMode is the widget's top-level display state.
type ViewMode int

const (
	ModeClosed ViewMode = iota
	ModeNormal
	ModeMaximized
)

// State is everything the widget renders. It is mutated only by Controller
// methods and Apply, all called from the UI event loop.
type State struct {
	Mode        ViewMode
	HistoryOpen bool

	Sessions        []models.ChatSession
	Messages        []models.Message
	ActiveSessionID string

	// Loading is set for the duration of a send or session load and
	// disables resend and delete actions.
	Loading bool

	// Notice is a transient user-visible error notification.
	Notice string
}

// Open expands the widget. Maximize and history-panel state reset to
// collapsed on every open.
func (s *State) Open() {
	s.Mode = ModeNormal
	s.HistoryOpen = false
}

// Close collapses the widget. In-memory conversation state is preserved.
func (s *State) Close() {
	s.Mode = ModeClosed
}

// ToggleMaximize flips between normal and maximized while open.
func (s *State) ToggleMaximize() {
	switch s.Mode {
	case ModeNormal:
		s.Mode = ModeMaximized
	case ModeMaximized:
		s.Mode = ModeNormal
	}
}

// ToggleHistory flips the history panel while open.
func (s *State) ToggleHistory() {
	if s.Mode == ModeClosed {
		return
	}
	s.HistoryOpen = !s.HistoryOpen
}

// ClearNotice dismisses the transient notification.
func (s *State) ClearNotice() {
	s.Notice = ""
}

// markActive flags the session matching the active pointer and no other.
func (s *State) markActive() {
	for i := range s.Sessions {
		s.Sessions[i].IsActive = s.Sessions[i].ID == s.ActiveSessionID && s.ActiveSessionID != ""
	}
}
