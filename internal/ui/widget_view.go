package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"policy-chat/internal/logging"
	"policy-chat/internal/models"
	"policy-chat/internal/widget"
)

const (
	headerHeight   = 3
	textareaHeight = 5
	helpHeight     = 2
	framePadding   = 2

	normalWidth    = 72
	sidePanelWidth = 40
)

// WidgetClosed is sent when the user collapses the widget.
type WidgetClosed struct{}

// WidgetModel renders the open chat widget and feeds user actions into the
// controller. All state transitions live in the controller; this model only
// projects them.
type WidgetModel struct {
	controller *widget.Controller

	viewport   viewport.Model
	textarea   textarea.Model
	spinner    spinner.Model
	history    HistoryPanelModel
	mdRenderer *glamour.TermRenderer

	width  int
	height int
}

// runTask wraps a controller task as a bubbletea command.
func runTask(task widget.Task) tea.Cmd {
	if task == nil {
		return nil
	}
	return func() tea.Msg {
		return task(context.Background())
	}
}

// createMarkdownRenderer creates a markdown renderer with fallback handling
func createMarkdownRenderer(width int) *glamour.TermRenderer {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width-10),
	)
	if err == nil {
		return renderer
	}

	logging.Error("Failed to create markdown renderer with auto style: %v, trying fallback", err)

	renderer, err = glamour.NewTermRenderer(
		glamour.WithWordWrap(width - 10),
	)
	if err == nil {
		return renderer
	}

	logging.Error("Failed to create markdown renderer with basic style: %v, using no style", err)

	renderer, err = glamour.NewTermRenderer()
	if err != nil {
		logging.Error("Critical: Failed to create basic markdown renderer: %v", err)
		return nil
	}

	return renderer
}

func NewWidgetModel(controller *widget.Controller, width, height int) WidgetModel {
	ta := textarea.New()
	ta.Placeholder = "Ask about a policy..."
	ta.Focus()
	ta.CharLimit = 2000
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	// Keep only essential editing keys
	ta.KeyMap.CharacterForward = key.NewBinding(key.WithKeys("right"))
	ta.KeyMap.CharacterBackward = key.NewBinding(key.WithKeys("left"))
	ta.KeyMap.LineStart = key.NewBinding(key.WithKeys("home"))
	ta.KeyMap.LineEnd = key.NewBinding(key.WithKeys("end"))
	ta.KeyMap.DeleteCharacterBackward = key.NewBinding(key.WithKeys("backspace"))
	ta.KeyMap.DeleteCharacterForward = key.NewBinding(key.WithKeys("delete"))
	ta.KeyMap.LineNext = key.NewBinding()
	ta.KeyMap.LinePrevious = key.NewBinding()
	ta.KeyMap.InsertNewline = key.NewBinding()

	vp := viewport.New(width-6, height-headerHeight-textareaHeight-helpHeight-framePadding)
	vp.SetContent("")
	vp.MouseWheelDelta = 2
	vp.KeyMap.Down = key.NewBinding(key.WithKeys("down"))
	vp.KeyMap.Up = key.NewBinding(key.WithKeys("up"))
	vp.KeyMap.PageDown = key.NewBinding(key.WithKeys("pgdown"))
	vp.KeyMap.PageUp = key.NewBinding(key.WithKeys("pgup"))
	vp.KeyMap.HalfPageDown = key.NewBinding()
	vp.KeyMap.HalfPageUp = key.NewBinding()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = SpinnerStyle

	m := WidgetModel{
		controller: controller,
		viewport:   vp,
		textarea:   ta,
		spinner:    sp,
		history:    NewHistoryPanelModel(),
		width:      width,
		height:     height,
	}
	m.resize()
	return m
}

func (m WidgetModel) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
		runTask(m.controller.RefreshSessions()),
	)
}

// contentWidth is the width of the conversation column for the current mode.
func (m WidgetModel) contentWidth() int {
	state := m.controller.State()
	if state.Mode == widget.ModeMaximized {
		w := m.width - sidePanelWidth
		if w < normalWidth {
			w = normalWidth
		}
		return w
	}
	if m.width < normalWidth {
		return m.width
	}
	return normalWidth
}

func (m *WidgetModel) resize() {
	contentWidth := m.contentWidth()
	m.viewport.Width = contentWidth - 6
	m.viewport.Height = m.height - headerHeight - textareaHeight - helpHeight - framePadding
	m.textarea.SetWidth(contentWidth - 4)
	m.history.UpdateSize(m.width, m.height)
	m.mdRenderer = createMarkdownRenderer(contentWidth)
	m.syncViewport()
}

func (m WidgetModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	state := m.controller.State()

	// Panel intents arrive regardless of focus
	switch msg := msg.(type) {
	case SessionChosen:
		cmd := runTask(m.controller.LoadSession(msg.SessionID))
		if m.controller.State().Mode == widget.ModeNormal {
			m.controller.ToggleHistory()
		}
		m.syncViewport()
		return m, cmd

	case SessionDeleteRequested:
		cmd := runTask(m.controller.DeleteSession(msg.SessionID))
		m.history.SetSessions(m.controller.State().Sessions)
		m.syncViewport()
		return m, cmd

	case NewSessionRequested:
		cmd := runTask(m.controller.CreateSession())
		st := m.controller.State()
		m.history.SetSessions(st.Sessions)
		if st.Mode == widget.ModeNormal && st.HistoryOpen {
			m.controller.ToggleHistory()
		}
		m.syncViewport()
		m.textarea.Focus()
		return m, cmd

	case HistoryClosed:
		if state.HistoryOpen {
			m.controller.ToggleHistory()
		}
		m.textarea.Focus()
		return m, nil
	}

	// While the panel is open it owns navigation keys
	if state.HistoryOpen {
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			newPanel, cmd := m.history.Update(keyMsg)
			m.history = newPanel.(HistoryPanelModel)
			return m, cmd
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			m.controller.CloseWidget()
			return m, func() tea.Msg {
				return WidgetClosed{}
			}

		case "ctrl+o":
			m.controller.ToggleMaximize()
			m.resize()
			return m, nil

		case "ctrl+l":
			m.controller.ToggleHistory()
			m.history.SetSessions(m.controller.State().Sessions)
			if m.controller.State().HistoryOpen {
				m.textarea.Blur()
			} else {
				m.textarea.Focus()
			}
			return m, nil

		case "ctrl+n":
			cmd := runTask(m.controller.CreateSession())
			m.history.SetSessions(m.controller.State().Sessions)
			m.syncViewport()
			return m, cmd

		case "enter":
			if !state.Loading && strings.TrimSpace(m.textarea.Value()) != "" {
				text := m.textarea.Value()
				m.textarea.Reset()
				cmd := runTask(m.controller.Send(text))
				m.syncViewport()
				m.viewport.GotoBottom()
				return m, cmd
			}
		}

	case widget.Event:
		m.controller.Apply(msg)
		m.history.SetSessions(m.controller.State().Sessions)
		m.syncViewport()
		switch msg.(type) {
		case widget.MessagesLoaded, widget.ReplyReceived:
			m.viewport.GotoBottom()
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmds []tea.Cmd
	if !state.Loading {
		var cmd tea.Cmd
		m.textarea, cmd = m.textarea.Update(msg)
		cmds = append(cmds, cmd)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m WidgetModel) View() string {
	state := m.controller.State()

	main := m.renderConversation(state)

	if state.Mode == widget.ModeMaximized {
		if state.HistoryOpen {
			side := m.history.ViewSidePanel(sidePanelWidth)
			return lipgloss.JoinHorizontal(lipgloss.Top, side, main)
		}
		return main
	}

	if state.HistoryOpen {
		return m.history.RenderDropdown(main)
	}
	return main
}

func (m WidgetModel) renderConversation(state widget.State) string {
	var b strings.Builder

	title := "Policy Assistant"
	if session := activeSession(state); session != nil {
		title = session.Title
	}
	b.WriteString(TitleBarStyle.Render(title) + "\n")

	statusLine := "Ctrl+L: History"
	switch {
	case state.Loading:
		statusLine = m.spinner.View() + " Thinking..."
	case state.Notice != "":
		statusLine = ""
	}
	if state.Notice != "" {
		b.WriteString(NoticeStyle.Render("✗ "+state.Notice) + "\n")
	} else {
		b.WriteString(statusBarStyle.Render(statusLine) + "\n")
	}

	b.WriteString(RenderViewportWithBorder(m.viewport.View()))
	b.WriteString("\n")

	if scrollInfo := m.renderScrollIndicator(); scrollInfo != "" {
		b.WriteString(scrollInfo)
	}
	b.WriteString("\n")

	b.WriteString(m.textarea.View() + "\n")

	helpText := "Enter: Send • Ctrl+L: History • Ctrl+N: New • Ctrl+O: Maximize • Esc: Close • Ctrl+X: Exit"
	b.WriteString(helpStyle.Render(helpText))

	return b.String()
}

func activeSession(state widget.State) *models.ChatSession {
	for i := range state.Sessions {
		if state.Sessions[i].IsActive {
			return &state.Sessions[i]
		}
	}
	return nil
}

// safeRenderMarkdown safely renders markdown with panic recovery and fallback
func (m *WidgetModel) safeRenderMarkdown(content string) string {
	defer func() {
		if r := recover(); r != nil {
			logging.Error("Panic in markdown rendering: %v", r)
		}
	}()

	if m.mdRenderer == nil {
		logging.Error("Markdown renderer is nil, falling back to plain text")
		return content
	}

	if content == "" {
		return content
	}

	rendered, err := m.mdRenderer.Render(content)
	if err != nil {
		logging.Error("Markdown rendering error: %v, falling back to plain text", err)
		return content
	}

	return strings.TrimRight(rendered, "\n")
}

// syncViewport re-renders the conversation from controller state.
func (m *WidgetModel) syncViewport() {
	state := m.controller.State()
	width := m.contentWidth()

	if len(state.Messages) == 0 {
		placeholder := "Ask anything about your policies."
		if !m.controller.Authenticated() {
			placeholder = "Sign in to start a conversation."
		}
		m.viewport.SetContent(PlaceholderStyle.Width(width - 8).Render("\n" + placeholder))
		return
	}

	var b strings.Builder
	for _, msg := range state.Messages {
		if msg.Sender == models.SenderUser {
			label := UserMessageLabelStyle.Render("You:")
			b.WriteString(GetUserMessageContentStyle(width).Render(label + "\n" + msg.Content))
		} else {
			label := AssistantMessageLabelStyle.Render("Assistant:")
			rendered := m.safeRenderMarkdown(msg.Content)
			b.WriteString(GetAssistantMessageContentStyle(width).Render(label + "\n" + rendered))
		}
		b.WriteString("\n\n")
	}

	m.viewport.SetContent(b.String())
}

func (m WidgetModel) renderScrollIndicator() string {
	if m.viewport.TotalLineCount() <= m.viewport.Height {
		return ""
	}

	scrollPercent := int(m.viewport.ScrollPercent() * 100)
	indicator := fmt.Sprintf("Scroll: %d%% ↕", scrollPercent)

	return ScrollIndicatorStyle.Render(indicator)
}
