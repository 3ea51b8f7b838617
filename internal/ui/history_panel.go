package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	overlay "github.com/rmhubbert/bubbletea-overlay"

	"policy-chat/internal/models"
)

// HistoryPanelModel lists past sessions. It renders as a dropdown overlay
// in normal mode and as a side panel in maximized mode.
type HistoryPanelModel struct {
	sessions      []models.ChatSession
	selectedIndex int
	width         int
	height        int
}

// SessionChosen is sent when the user opens a session from the panel.
type SessionChosen struct {
	SessionID string
}

// SessionDeleteRequested is sent when the user deletes a session from the panel.
type SessionDeleteRequested struct {
	SessionID string
}

// NewSessionRequested is sent when the user starts a fresh conversation.
type NewSessionRequested struct{}

// HistoryClosed is sent when the panel is dismissed without selection.
type HistoryClosed struct{}

func NewHistoryPanelModel() HistoryPanelModel {
	return HistoryPanelModel{}
}

func (m *HistoryPanelModel) SetSessions(sessions []models.ChatSession) {
	m.sessions = sessions
	if m.selectedIndex >= len(sessions) {
		m.selectedIndex = 0
	}
}

func (m *HistoryPanelModel) UpdateSize(width, height int) {
	m.width = width
	m.height = height
}

func (m HistoryPanelModel) Init() tea.Cmd {
	return nil
}

func (m HistoryPanelModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, key.NewBinding(key.WithKeys("up"))):
			if m.selectedIndex > 0 {
				m.selectedIndex--
			}
			return m, nil

		case key.Matches(msg, key.NewBinding(key.WithKeys("down"))):
			if m.selectedIndex < len(m.sessions)-1 {
				m.selectedIndex++
			}
			return m, nil

		case key.Matches(msg, key.NewBinding(key.WithKeys("enter"))):
			if len(m.sessions) > 0 {
				chosen := m.sessions[m.selectedIndex]
				return m, func() tea.Msg {
					return SessionChosen{SessionID: chosen.ID}
				}
			}
			return m, nil

		case key.Matches(msg, key.NewBinding(key.WithKeys("ctrl+n"))):
			return m, func() tea.Msg {
				return NewSessionRequested{}
			}

		case key.Matches(msg, key.NewBinding(key.WithKeys("ctrl+d"))):
			if len(m.sessions) > 0 {
				chosen := m.sessions[m.selectedIndex]
				return m, func() tea.Msg {
					return SessionDeleteRequested{SessionID: chosen.ID}
				}
			}
			return m, nil

		case key.Matches(msg, key.NewBinding(key.WithKeys("esc"))):
			return m, func() tea.Msg {
				return HistoryClosed{}
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	return m, nil
}

func (m HistoryPanelModel) View() string {
	return m.render(m.panelWidth())
}

// ViewSidePanel renders the panel at a fixed width for the maximized layout.
func (m HistoryPanelModel) ViewSidePanel(width int) string {
	return m.render(width)
}

func (m HistoryPanelModel) panelWidth() int {
	w := m.width / 2
	if w < 44 {
		w = 44
	}
	return w
}

func (m HistoryPanelModel) render(panelWidth int) string {
	var content strings.Builder

	content.WriteString(HistoryTitleStyle.Render(fmt.Sprintf("Conversations (%d)", len(m.sessions))))
	content.WriteString("\n\n")

	if len(m.sessions) == 0 {
		content.WriteString(PlaceholderStyle.Width(panelWidth - 8).Render("No conversation history yet"))
		content.WriteString("\n\n")
		content.WriteString(HelpTextSimpleStyle.Render("Ctrl+N: New • Esc: Close"))
		return GetHistoryBorderStyle(panelWidth - 4).Render(content.String())
	}

	maxVisible := 8
	visibleStart := 0
	visibleEnd := len(m.sessions)
	if len(m.sessions) > maxVisible {
		visibleStart = m.selectedIndex - maxVisible/2
		if visibleStart < 0 {
			visibleStart = 0
		}
		visibleEnd = visibleStart + maxVisible
		if visibleEnd > len(m.sessions) {
			visibleEnd = len(m.sessions)
			visibleStart = visibleEnd - maxVisible
			if visibleStart < 0 {
				visibleStart = 0
			}
		}
	}

	itemWidth := panelWidth - 8
	for i := visibleStart; i < visibleEnd; i++ {
		session := m.sessions[i]

		marker := "  "
		if session.IsActive {
			marker = HistoryActiveMarkStyle.Render("● ")
		}

		// Truncate on rune boundaries; titles carry multibyte content
		title := session.Title
		if runes := []rune(title); len(runes) > itemWidth-4 && itemWidth > 8 {
			title = string(runes[:itemWidth-8]) + "..."
		}

		line := marker + title
		detail := fmt.Sprintf("  %s  %s", session.Timestamp.Format("2006-01-02 15:04"), session.LastMessage)

		if i == m.selectedIndex {
			content.WriteString(GetHistoryItemStyle(itemWidth, "selected").Render("▶ " + line))
			content.WriteString("\n")
			content.WriteString(GetHistoryItemStyle(itemWidth, "dimmed").Render(detail))
		} else {
			content.WriteString(GetHistoryItemStyle(itemWidth, "normal").Render("  " + line))
			content.WriteString("\n")
			content.WriteString(GetHistoryItemStyle(itemWidth, "dimmed").Render(detail))
		}
		content.WriteString("\n")
	}

	if len(m.sessions) > maxVisible {
		content.WriteString("\n")
		content.WriteString(GetHistoryItemStyle(itemWidth, "dimmed").Render(
			fmt.Sprintf("Showing %d-%d of %d", visibleStart+1, visibleEnd, len(m.sessions)),
		))
	}

	content.WriteString("\n")
	content.WriteString(HelpTextSimpleStyle.Render("↑/↓: Navigate • Enter: Open • Ctrl+N: New • Ctrl+D: Delete • Esc: Close"))

	return GetHistoryBorderStyle(panelWidth - 4).Render(content.String())
}

// RenderDropdown overlays the panel under the widget header in normal mode.
func (m HistoryPanelModel) RenderDropdown(backgroundView string) string {
	overlayModel := overlay.New(
		m,
		&staticViewModel{content: backgroundView},
		overlay.Center, // horizontal position
		overlay.Top,    // vertical position
		0,              // x offset
		2,              // y offset, below the header line
	)

	return overlayModel.View()
}

// staticViewModel is a simple model that renders static content (background)
type staticViewModel struct {
	content string
}

func (m staticViewModel) Init() tea.Cmd {
	return nil
}

func (m staticViewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m, nil
}

func (m staticViewModel) View() string {
	return m.content
}
