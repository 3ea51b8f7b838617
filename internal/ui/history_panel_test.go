package ui

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"policy-chat/internal/models"
)

func TestHistoryPanelTruncatesTitlesOnRuneBoundaries(t *testing.T) {
	// A 3-byte rune offset by one ASCII char forces any byte-indexed
	// truncation to split mid-rune.
	title := "a" + strings.Repeat("€", 40)

	panel := NewHistoryPanelModel()
	panel.SetSessions([]models.ChatSession{
		{ID: "s1", Title: title, LastMessage: "preview", Timestamp: time.Now()},
	})
	panel.UpdateSize(80, 24)

	view := panel.ViewSidePanel(40)
	if !utf8.ValidString(view) {
		t.Error("panel output contains invalid UTF-8 from a split rune")
	}
	if strings.Contains(view, string(utf8.RuneError)) {
		t.Error("panel output contains a replacement character")
	}
}

func TestHistoryPanelShortTitleUnchanged(t *testing.T) {
	panel := NewHistoryPanelModel()
	panel.SetSessions([]models.ChatSession{
		{ID: "s1", Title: "Refunds", LastMessage: "preview", Timestamp: time.Now()},
	})
	panel.UpdateSize(80, 24)

	view := panel.ViewSidePanel(40)
	if !strings.Contains(view, "Refunds") {
		t.Error("expected the full title in the panel output")
	}
}
