package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joacominatel/minasql/internal/app"
	"github.com/joacominatel/minasql/internal/database"
	"github.com/joacominatel/minasql/internal/render"
	"github.com/joacominatel/minasql/internal/tui/prompt"
	"github.com/joacominatel/minasql/internal/tui/statusbar"
	"github.com/joacominatel/minasql/internal/tui/theme"
)

// quitCommand ends the session when typed at the prompt.
const quitCommand = `\q`

type queryExecutedMsg struct {
	statement string
	result    *database.QueryResult
	err       error
}

// Model is the interactive session: a prompt with a status bar under it.
// Finished tables are printed above the program so they stay in scrollback.
type Model struct {
	ctx       context.Context
	cancel    context.CancelFunc
	service   *app.Service
	prompt    prompt.Model
	statusbar statusbar.Model
	running   bool
	width     int
}

// NewModel creates the top-level model. Quitting cancels the statement
// in flight so the connection can be released.
func NewModel(ctx context.Context, service *app.Service) Model {
	sb := statusbar.New()
	sb.SetConnected(true, connectionLabel(service))

	ctx, cancel := context.WithCancel(ctx)
	return Model{
		ctx:       ctx,
		cancel:    cancel,
		service:   service,
		prompt:    prompt.New(),
		statusbar: sb,
	}
}

// Run starts the interactive session and blocks until the user quits.
func Run(ctx context.Context, service *app.Service) error {
	m := NewModel(ctx, service)
	defer m.cancel()

	_, err := tea.NewProgram(m, tea.WithContext(ctx)).Run()
	return err
}

func connectionLabel(service *app.Service) string {
	name := service.DatabaseName()
	if target := service.Target(); target != "" && target != name {
		return fmt.Sprintf("%s (%s)", name, target)
	}
	return name
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return m.prompt.Init()
}

// Update handles all messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.prompt.SetWidth(msg.Width)
		m.statusbar.SetWidth(msg.Width)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "ctrl+d":
			return m, m.quit()
		}
		if m.running {
			return m, nil
		}

	case prompt.SubmitMsg:
		if strings.TrimSpace(msg.Statement) == quitCommand {
			return m, m.quit()
		}
		m.running = true
		m.statusbar.SetMessage("Executing...")
		return m, tea.Batch(
			tea.Println(theme.StyleMuted.Render("> "+msg.Statement)),
			m.executeQueryCmd(msg.Statement),
		)

	case queryExecutedMsg:
		m.running = false
		return m, m.report(msg)
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

// quit aborts any running statement and ends the program.
func (m Model) quit() tea.Cmd {
	m.cancel()
	return tea.Quit
}

// report turns a finished statement into status text and scrollback output.
func (m *Model) report(msg queryExecutedMsg) tea.Cmd {
	if msg.err != nil {
		m.statusbar.SetMessage(theme.StyleError.Render("Error"))
		return tea.Println(theme.StyleError.Render(app.Diagnose(msg.err)))
	}

	res := msg.result
	if !res.HasRows {
		m.statusbar.SetMessage(theme.StyleSuccess.Render("OK") + " │ " + res.Duration.String())
		return nil
	}

	m.statusbar.SetMessage(fmt.Sprintf("%d row(s) │ %s", res.RowCount, res.Duration))
	table := render.String(res.Columns, res.Rows)
	return tea.Println(strings.TrimSuffix(table, "\n"))
}

func (m Model) executeQueryCmd(query string) tea.Cmd {
	ctx, service := m.ctx, m.service
	return func() tea.Msg {
		result, err := service.ExecuteQuery(ctx, query)
		return queryExecutedMsg{statement: query, result: result, err: err}
	}
}

// View renders the prompt and status bar.
func (m Model) View() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		m.prompt.View(),
		m.statusbar.View(),
	)
}
