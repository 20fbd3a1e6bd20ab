package statusbar

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/joacominatel/minasql/internal/tui/theme"
)

const hints = "Enter: Execute │ Tab: Complete │ Ctrl+L: Format │ Ctrl+D: Quit"

// Model is the status bar component.
type Model struct {
	width     int
	connected bool
	connName  string
	message   string
}

// New creates a new status bar model.
func New() Model {
	return Model{}
}

// SetWidth updates the component width.
func (m *Model) SetWidth(w int) {
	m.width = w
}

// SetConnected updates the connection status display.
func (m *Model) SetConnected(connected bool, name string) {
	m.connected = connected
	m.connName = name
}

// SetMessage sets the status of the last statement. Empty shows key hints.
func (m *Model) SetMessage(msg string) {
	m.message = msg
}

// Message returns the current status message.
func (m Model) Message() string {
	return m.message
}

// View renders the status bar.
func (m Model) View() string {
	style := theme.StyleStatusBar
	if m.width > 0 {
		style = style.Width(m.width)
	}

	// Connection indicator
	var connIndicator string
	if m.connected {
		connIndicator = lipgloss.NewStyle().
			Foreground(theme.ColorSuccess).
			Render("●") + " " + m.connName
	} else {
		connIndicator = lipgloss.NewStyle().
			Foreground(theme.ColorError).
			Render("●") + " disconnected"
	}

	right := hints
	if m.message != "" {
		right = m.message
	}

	padding := m.width - lipgloss.Width(connIndicator) - lipgloss.Width(right) - 2 // horizontal padding
	if padding < 1 {
		padding = 1
	}

	return style.Render(connIndicator + strings.Repeat(" ", padding) + right)
}
