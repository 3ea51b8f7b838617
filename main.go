package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"policy-chat/internal/assist"
	"policy-chat/internal/auth"
	"policy-chat/internal/config"
	"policy-chat/internal/logging"
	"policy-chat/internal/store"
	"policy-chat/internal/ui"
	"policy-chat/internal/widget"
)

type appState int

const (
	stateClosed appState = iota
	stateWidget
)

type model struct {
	state      appState
	controller *widget.Controller

	widgetModel ui.WidgetModel

	// Screen size
	width  int
	height int

	// Error state
	err error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logging.InitLogger(); err != nil {
		log.Printf("Failed to initialize logger: %v", err)
	}
	defer logging.Close()

	// A missing or expired credential is not fatal; the widget opens
	// signed out and every action that needs auth reports it.
	session, err := auth.LoadSession(cfg.CredentialsPath)
	if err != nil && !errors.Is(err, auth.ErrNotAuthenticated) {
		log.Fatalf("Failed to load credentials: %v", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	sessionStore, err := store.NewBadgerStore(cfg.DataDir)
	if err != nil {
		log.Fatalf("Failed to open session store: %v", err)
	}
	defer sessionStore.Close()

	token := ""
	if session != nil {
		token = session.Token
	}
	assistClient := assist.NewClient(cfg.BackendURL, token)

	controller := widget.NewController(sessionStore, assistClient, session)

	initialModel := model{
		state:      stateClosed,
		controller: controller,
		width:      80,
		height:     24,
	}

	p := tea.NewProgram(initialModel, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("Error running program: %v", err)
	}
}

func (m model) Init() tea.Cmd {
	if m.state == stateWidget {
		return m.widgetModel.Init()
	}
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		if m.state == stateWidget {
			newModel, cmd := m.widgetModel.Update(msg)
			m.widgetModel = newModel.(ui.WidgetModel)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "ctrl+x" {
			return m, tea.Quit
		}

		if m.state == stateClosed {
			switch msg.String() {
			case "enter", "o":
				// Opening resets maximize and history state
				m.controller.Open()
				m.state = stateWidget
				m.widgetModel = ui.NewWidgetModel(m.controller, m.width, m.height)
				return m, m.widgetModel.Init()
			}
			return m, nil
		}

	case ui.WidgetClosed:
		m.state = stateClosed
		return m, nil
	}

	if m.state == stateWidget {
		newModel, cmd := m.widgetModel.Update(msg)
		m.widgetModel = newModel.(ui.WidgetModel)
		return m, cmd
	}

	return m, nil
}

func (m model) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n\nPress Ctrl+C to quit", m.err)
	}

	switch m.state {
	case stateClosed:
		bar := ui.ClosedBarStyle.Render("💬 Policy Assistant")
		hint := ui.HelpTextSimpleStyle.Render("  Enter: Open • Ctrl+X: Exit")
		return "\n" + bar + "\n" + hint + "\n"
	case stateWidget:
		return m.widgetModel.View()
	}

	return "Loading..."
}
