package widget

import "testing"

func TestOpenResetsMaximizeAndHistory(t *testing.T) {
	var s State
	s.Open()
	s.ToggleMaximize()
	s.ToggleHistory()

	if s.Mode != ModeMaximized || !s.HistoryOpen {
		t.Fatalf("setup failed: mode=%v historyOpen=%v", s.Mode, s.HistoryOpen)
	}

	s.Close()
	s.Open()

	if s.Mode != ModeNormal {
		t.Errorf("expected normal mode after reopen, got %v", s.Mode)
	}
	if s.HistoryOpen {
		t.Error("expected history panel collapsed after reopen")
	}
}

func TestToggleMaximize(t *testing.T) {
	tests := []struct {
		name     string
		initial  ViewMode
		expected ViewMode
	}{
		{"Normal to maximized", ModeNormal, ModeMaximized},
		{"Maximized to normal", ModeMaximized, ModeNormal},
		{"Closed is unaffected", ModeClosed, ModeClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := State{Mode: tt.initial}
			s.ToggleMaximize()
			if s.Mode != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, s.Mode)
			}
		})
	}
}

func TestToggleHistoryWhileClosed(t *testing.T) {
	var s State
	s.ToggleHistory()
	if s.HistoryOpen {
		t.Error("history panel must not open while the widget is closed")
	}
}

func TestClosePreservesConversation(t *testing.T) {
	var s State
	s.Open()
	s.ActiveSessionID = "s1"
	s.Close()

	if s.Mode != ModeClosed {
		t.Errorf("expected closed mode, got %v", s.Mode)
	}
	if s.ActiveSessionID != "s1" {
		t.Error("closing must not drop the active session pointer")
	}
}
