package prompt

import (
	"slices"
	"strings"
	"unicode"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joacominatel/minasql/internal/tui/theme"
)

// SubmitMsg is sent when the user enters a statement.
type SubmitMsg struct {
	Statement string
}

// SQL keywords for formatting and completion.
var sqlKeywords = map[string]bool{
	"select": true, "from": true, "where": true, "and": true, "or": true,
	"insert": true, "into": true, "update": true, "delete": true,
	"create": true, "drop": true, "alter": true, "table": true,
	"index": true, "join": true, "inner": true, "outer": true,
	"left": true, "right": true, "cross": true, "on": true,
	"not": true, "in": true, "is": true, "null": true, "like": true,
	"order": true, "by": true, "group": true, "having": true,
	"limit": true, "offset": true, "as": true, "distinct": true,
	"count": true, "sum": true, "avg": true, "min": true, "max": true,
	"between": true, "exists": true, "case": true, "when": true,
	"then": true, "else": true, "end": true, "values": true,
	"set": true, "begin": true, "commit": true, "rollback": true,
	"union": true, "all": true, "asc": true, "desc": true,
	"primary": true, "key": true, "foreign": true, "references": true,
	"cascade": true, "restrict": true, "default": true,
	"true": true, "false": true, "ilike": true, "returning": true,
}

// Model is the single-line statement prompt.
type Model struct {
	input textinput.Model
	width int

	history []string
	histPos int    // len(history) means "not browsing"
	draft   string // what was typed before browsing started

	// Completion state
	completions []string
	compIndex   int
}

// New creates a new prompt model.
func New() Model {
	ti := textinput.New()
	ti.Placeholder = "Enter SQL statement..."
	ti.Prompt = "sql> "
	ti.CharLimit = 0
	ti.PromptStyle = lipgloss.NewStyle().Foreground(theme.ColorPrimary)
	ti.PlaceholderStyle = lipgloss.NewStyle().Foreground(theme.ColorMuted)
	ti.Focus()

	return Model{input: ti}
}

// SetWidth updates the component width.
func (m *Model) SetWidth(w int) {
	m.width = w
	m.input.Width = w - lipgloss.Width(m.input.Prompt) - 1
}

// Value returns the current prompt content.
func (m Model) Value() string {
	return m.input.Value()
}

// SetValue replaces the prompt content.
func (m *Model) SetValue(s string) {
	m.input.SetValue(s)
	m.input.CursorEnd()
}

// History returns the statements entered so far, oldest first.
func (m Model) History() []string {
	return m.history
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the prompt.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		key := msg.String()

		if key != "tab" {
			m.cancelCompletion()
		}

		switch key {
		case "enter":
			stmt := m.input.Value()
			if strings.TrimSpace(stmt) == "" {
				return m, nil
			}
			m.remember(stmt)
			m.input.Reset()
			return m, func() tea.Msg {
				return SubmitMsg{Statement: stmt}
			}

		case "up":
			m.browse(-1)
			return m, nil

		case "down":
			m.browse(1)
			return m, nil

		case "ctrl+l":
			m.SetValue(FormatKeywords(m.input.Value()))
			return m, nil

		case "ctrl+k":
			m.input.Reset()
			return m, nil

		case "tab":
			m.complete()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) remember(stmt string) {
	if n := len(m.history); n == 0 || m.history[n-1] != stmt {
		m.history = append(m.history, stmt)
	}
	m.histPos = len(m.history)
	m.draft = ""
}

func (m *Model) browse(step int) {
	if len(m.history) == 0 {
		return
	}
	if m.histPos == len(m.history) {
		m.draft = m.input.Value()
	}

	pos := m.histPos + step
	if pos < 0 {
		pos = 0
	}
	if pos > len(m.history) {
		pos = len(m.history)
	}
	m.histPos = pos

	if pos == len(m.history) {
		m.SetValue(m.draft)
		return
	}
	m.SetValue(m.history[pos])
}

// complete cycles through keywords matching the word being typed.
func (m *Model) complete() {
	val := m.input.Value()

	if len(m.completions) > 0 {
		m.compIndex = (m.compIndex + 1) % len(m.completions)
		m.applyCompletion()
		return
	}

	partial := extractLastWord(val)
	if partial == "" {
		return
	}

	m.completions = Completions(partial)
	m.compIndex = 0
	m.applyCompletion()
}

// applyCompletion replaces the partial word with the current completion candidate.
func (m *Model) applyCompletion() {
	if len(m.completions) == 0 {
		return
	}
	val := m.input.Value()
	base := strings.TrimSuffix(val, extractLastWord(val))
	m.SetValue(base + m.completions[m.compIndex])
}

func (m *Model) cancelCompletion() {
	m.completions = nil
	m.compIndex = 0
}

// Completions returns the upper-case keywords starting with partial, sorted.
func Completions(partial string) []string {
	lower := strings.ToLower(partial)
	var matches []string
	for kw := range sqlKeywords {
		if strings.HasPrefix(kw, lower) && kw != lower {
			matches = append(matches, strings.ToUpper(kw))
		}
	}
	slices.Sort(matches)
	return matches
}

// FormatKeywords uppercases SQL keywords outside string literals.
func FormatKeywords(val string) string {
	if val == "" {
		return val
	}

	var result strings.Builder
	word := strings.Builder{}
	inString := false
	quote := rune(0)

	for _, ch := range val {
		// Track string literals
		if (ch == '\'' || ch == '"') && !inString {
			inString = true
			quote = ch
			flushWord(&word, &result)
			result.WriteRune(ch)
			continue
		}
		if inString && ch == quote {
			inString = false
			result.WriteRune(ch)
			continue
		}
		if inString {
			result.WriteRune(ch)
			continue
		}

		// Word boundary
		if !unicode.IsLetter(ch) && ch != '_' {
			flushWord(&word, &result)
			result.WriteRune(ch)
		} else {
			word.WriteRune(ch)
		}
	}
	flushWord(&word, &result)

	return result.String()
}

func flushWord(word *strings.Builder, result *strings.Builder) {
	if word.Len() == 0 {
		return
	}
	w := word.String()
	if sqlKeywords[strings.ToLower(w)] {
		result.WriteString(strings.ToUpper(w))
	} else {
		result.WriteString(w)
	}
	word.Reset()
}

// extractLastWord returns the last word-like token from the text.
func extractLastWord(s string) string {
	if s == "" {
		return ""
	}
	i := len(s) - 1
	for i >= 0 && isIdentChar(rune(s[i])) {
		i--
	}
	return s[i+1:]
}

func isIdentChar(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

// View renders the prompt.
func (m Model) View() string {
	view := m.input.View()
	if len(m.completions) > 1 {
		hint := make([]string, 0, len(m.completions))
		for i, c := range m.completions {
			if i == m.compIndex {
				hint = append(hint, lipgloss.NewStyle().Foreground(theme.ColorHighlight).Bold(true).Render(c))
			} else {
				hint = append(hint, theme.StyleMuted.Render(c))
			}
		}
		view += "\n" + theme.StyleMuted.Render("Tab: ") + strings.Join(hint, " │ ")
	}
	return view
}
