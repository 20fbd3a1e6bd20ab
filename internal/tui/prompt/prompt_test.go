package prompt

import (
	"reflect"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestFormatKeywords(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"select * from users", "SELECT * FROM users"},
		{"select 'from where' as x", "SELECT 'from where' AS x"},
		{`select "order" from t`, `SELECT "order" FROM t`},
		{"select user_id from t", "SELECT user_id FROM t"},
		{"Select count(*) From t Where id is not null", "SELECT COUNT(*) FROM t WHERE id IS NOT NULL"},
	}

	for _, tt := range tests {
		if got := FormatKeywords(tt.in); got != tt.want {
			t.Errorf("FormatKeywords(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCompletions(t *testing.T) {
	got := Completions("de")
	want := []string{"DEFAULT", "DELETE", "DESC"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Completions(de) = %v, want %v", got, want)
	}

	if got := Completions("select"); len(got) != 0 {
		t.Errorf("exact keyword should not complete, got %v", got)
	}
}

func TestTabCompletesLastWord(t *testing.T) {
	m := New()
	m.SetValue("sel")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.Value() != "SELECT" {
		t.Errorf("after tab got %q, want %q", m.Value(), "SELECT")
	}
}

func submit(t *testing.T, m Model, stmt string) Model {
	t.Helper()
	m.SetValue(stmt)
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatalf("enter on %q produced no command", stmt)
	}
	msg, ok := cmd().(SubmitMsg)
	if !ok || msg.Statement != stmt {
		t.Fatalf("expected SubmitMsg{%q}, got %#v", stmt, msg)
	}
	if m.Value() != "" {
		t.Errorf("prompt not cleared after submit: %q", m.Value())
	}
	return m
}

func TestEnterSubmitsAndRecordsHistory(t *testing.T) {
	m := New()
	m = submit(t, m, "SELECT 1")
	m = submit(t, m, "SELECT 2")
	m = submit(t, m, "SELECT 2")

	want := []string{"SELECT 1", "SELECT 2"}
	if !reflect.DeepEqual(m.History(), want) {
		t.Errorf("history = %v, want %v", m.History(), want)
	}
}

func TestEnterIgnoresBlankInput(t *testing.T) {
	m := New()
	m.SetValue("   ")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Errorf("blank input should not submit")
	}
}

func TestHistoryBrowsing(t *testing.T) {
	m := New()
	m = submit(t, m, "SELECT 1")
	m = submit(t, m, "SELECT 2")
	m.SetValue("draft")

	up := tea.KeyMsg{Type: tea.KeyUp}
	down := tea.KeyMsg{Type: tea.KeyDown}

	steps := []struct {
		key  tea.KeyMsg
		want string
	}{
		{up, "SELECT 2"},
		{up, "SELECT 1"},
		{up, "SELECT 1"},
		{down, "SELECT 2"},
		{down, "draft"},
		{down, "draft"},
	}
	for i, s := range steps {
		m, _ = m.Update(s.key)
		if m.Value() != s.want {
			t.Fatalf("step %d: got %q, want %q", i, m.Value(), s.want)
		}
	}
}
