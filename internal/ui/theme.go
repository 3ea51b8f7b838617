package ui

import (
	"github.com/charmbracelet/lipgloss"
	tint "github.com/lrstanley/bubbletint"
)

// Theme registry for the application
var Theme *tint.Registry

// Common style elements used across all views
var (
	TitleStyle                   lipgloss.Style
	TitleBarStyle                lipgloss.Style
	errorStyle                   lipgloss.Style
	NoticeStyle                  lipgloss.Style
	statusBarStyle               lipgloss.Style
	helpStyle                    lipgloss.Style
	HelpTextSimpleStyle          lipgloss.Style
	UserMessageLabelStyle        lipgloss.Style
	AssistantMessageLabelStyle   lipgloss.Style
	UserMessageContentStyle      lipgloss.Style
	AssistantMessageContentStyle lipgloss.Style
	TimestampStyle               lipgloss.Style
	SpinnerStyle                 lipgloss.Style
	ViewportBorderStyle          lipgloss.Style
	ScrollIndicatorStyle         lipgloss.Style
	ClosedBarStyle               lipgloss.Style
	PlaceholderStyle             lipgloss.Style

	// History panel styles
	HistoryBorderStyle       lipgloss.Style
	HistoryTitleStyle        lipgloss.Style
	HistorySelectedItemStyle lipgloss.Style
	HistoryNormalItemStyle   lipgloss.Style
	HistoryDimmedItemStyle   lipgloss.Style
	HistoryActiveMarkStyle   lipgloss.Style
)

func init() {
	// Initialize with Tint theme
	tint.NewDefaultRegistry()
	tint.SetTint(tint.TintChalk)
	Theme = tint.DefaultRegistry

	TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(tint.Purple())

	TitleBarStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(tint.Purple()).
		Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
		Foreground(tint.Red()).
		Bold(true).
		Padding(1)

	NoticeStyle = lipgloss.NewStyle().
		Foreground(tint.Red()).
		Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
		Foreground(tint.BrightBlack()).
		Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
		Foreground(tint.BrightBlack()).
		Padding(1, 0, 0, 1)

	HelpTextSimpleStyle = lipgloss.NewStyle().
		Foreground(tint.BrightBlack())

	UserMessageLabelStyle = lipgloss.NewStyle().
		Foreground(tint.White()).
		Bold(true)

	AssistantMessageLabelStyle = lipgloss.NewStyle().
		Foreground(tint.Purple()).
		Bold(true)

	UserMessageContentStyle = lipgloss.NewStyle().
		Foreground(tint.Fg()).
		Padding(0, 1).
		MarginBottom(1)

	AssistantMessageContentStyle = lipgloss.NewStyle().
		Foreground(tint.Fg()).
		Padding(0, 1).
		MarginBottom(1)

	TimestampStyle = lipgloss.NewStyle().
		Foreground(tint.BrightBlack())

	SpinnerStyle = lipgloss.NewStyle().
		Foreground(tint.Purple())

	ViewportBorderStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(tint.White()).
		Padding(0, 1)

	ScrollIndicatorStyle = lipgloss.NewStyle().
		Foreground(tint.White()).
		Bold(false)

	ClosedBarStyle = lipgloss.NewStyle().
		Foreground(tint.Bg()).
		Background(tint.Purple()).
		Bold(true).
		Padding(0, 2)

	PlaceholderStyle = lipgloss.NewStyle().
		Foreground(tint.BrightBlack()).
		Align(lipgloss.Center)

	HistoryBorderStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(tint.Yellow()).
		Padding(1, 2)

	HistoryTitleStyle = lipgloss.NewStyle().
		Foreground(tint.Yellow()).
		Bold(true)

	HistorySelectedItemStyle = lipgloss.NewStyle().
		Foreground(tint.Purple()).
		Background(tint.BrightBlack()).
		Bold(true)

	HistoryNormalItemStyle = lipgloss.NewStyle().
		Foreground(tint.Fg())

	HistoryDimmedItemStyle = lipgloss.NewStyle().
		Foreground(tint.BrightBlack())

	HistoryActiveMarkStyle = lipgloss.NewStyle().
		Foreground(tint.Green()).
		Bold(true)
}

// GetUserMessageContentStyle returns a style for user message content with given width
func GetUserMessageContentStyle(width int) lipgloss.Style {
	return UserMessageContentStyle.
		Width(width - 10).
		Align(lipgloss.Right)
}

// GetAssistantMessageContentStyle returns a style for assistant message content with given width
func GetAssistantMessageContentStyle(width int) lipgloss.Style {
	return AssistantMessageContentStyle.
		Width(width - 10)
}

// GetHistoryBorderStyle returns the panel border style with dynamic width
func GetHistoryBorderStyle(width int) lipgloss.Style {
	return HistoryBorderStyle.Width(width)
}

// GetHistoryItemStyle returns item style with dynamic width
func GetHistoryItemStyle(width int, state string) lipgloss.Style {
	switch state {
	case "selected":
		return HistorySelectedItemStyle.Width(width)
	case "dimmed":
		return HistoryDimmedItemStyle.Width(width)
	default:
		return HistoryNormalItemStyle.Width(width)
	}
}

// RenderViewportWithBorder renders content with a viewport border style
func RenderViewportWithBorder(content string) string {
	return ViewportBorderStyle.Render(content)
}
