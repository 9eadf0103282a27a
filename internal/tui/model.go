// Package tui is an interactive terminal host for a tag session.
package tui

import (
	"strings"

	"github.com/bastiangx/tagserve/pkg/manager"
	"github.com/bastiangx/tagserve/pkg/session"
	"github.com/bastiangx/tagserve/pkg/suggest"
	"github.com/bastiangx/tagserve/pkg/tags"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	chipStyle = lipgloss.NewStyle().Padding(0, 1).MarginRight(1).
			Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
			Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})
	promptStyle   = lipgloss.NewStyle().Bold(true)
	activeStyle   = lipgloss.NewStyle().Reverse(true)
	matchStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("75")).Bold(true)
	disabledStyle = lipgloss.NewStyle().Faint(true)
	sentinelStyle = lipgloss.NewStyle().Italic(true)
	statusStyle   = lipgloss.NewStyle().Faint(true).Italic(true)
)

// Model is the Bubble Tea model around one session.
type Model struct {
	sess *session.Session
	keys KeyMap
	last session.Result
}

// New builds a model; the session should manage its own selection.
func New(sess *session.Session) Model {
	m := Model{sess: sess, keys: DefaultKeyMap()}
	m.last = sess.Run(func(*manager.Manager) {})
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

// State is the snapshot after the last handled key.
func (m Model) State() manager.State {
	return m.last.State
}

// Announcements are the messages produced by the last handled key.
func (m Model) Announcements() []string {
	return m.last.Announcements
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if key.Matches(keyMsg, m.keys.Quit) {
		return m, tea.Quit
	}
	if cmd := m.command(keyMsg); cmd != nil {
		m.last = m.sess.Run(cmd)
	}
	return m, nil
}

// command maps a key to a manager command, or nil for keys it ignores.
func (m Model) command(msg tea.KeyMsg) func(*manager.Manager) {
	keys := m.keys
	switch {
	case key.Matches(msg, keys.Up):
		return arrow(-1)
	case key.Matches(msg, keys.Down):
		return arrow(1)
	case key.Matches(msg, keys.Confirm):
		return func(mg *manager.Manager) { mg.SelectTag() }
	case key.Matches(msg, keys.Escape):
		return func(mg *manager.Manager) {
			if mg.State().IsExpanded {
				mg.Collapse()
				return
			}
			mg.SetQueryText("")
		}
	case key.Matches(msg, keys.Backspace):
		return func(mg *manager.Manager) {
			query := []rune(mg.State().QueryText)
			if len(query) == 0 {
				mg.DeleteLast()
				return
			}
			mg.HandleInput(string(query[:len(query)-1]))
		}
	}

	if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
		text := string(msg.Runes)
		if msg.Type == tea.KeySpace && text == "" {
			text = " "
		}
		return func(mg *manager.Manager) { mg.HandleInput(mg.State().QueryText + text) }
	}
	return nil
}

// arrow opens a collapsed list, and moves the active row of an open one.
func arrow(delta int) func(*manager.Manager) {
	return func(mg *manager.Manager) {
		if !mg.State().IsExpanded {
			mg.Expand()
			return
		}
		mg.MoveActive(delta)
	}
}

func (m Model) View() string {
	st := m.last.State
	var b strings.Builder

	for _, t := range st.Selection {
		b.WriteString(chipStyle.Render(t.Label))
	}
	b.WriteString("\n")
	b.WriteString(promptStyle.Render("> "))
	b.WriteString(st.QueryText)
	b.WriteString("█\n")

	if st.IsExpanded {
		for i, c := range st.Candidates {
			row := renderCandidate(c, st.QueryText)
			if i == st.ActiveIndex {
				row = activeStyle.Render(row)
			}
			b.WriteString("  " + row + "\n")
		}
	}

	if len(m.last.Announcements) > 0 {
		b.WriteString(statusStyle.Render(strings.Join(m.last.Announcements, ". ")))
		b.WriteString("\n")
	}
	b.WriteString(helpLine(m.keys))
	return b.String()
}

func renderCandidate(c tags.Candidate, query string) string {
	if c.IsSentinel() {
		return sentinelStyle.Render(suggest.DisplayLabel(c, query))
	}
	var b strings.Builder
	for _, s := range suggest.HighlightCandidate(c, query) {
		if s.Match {
			b.WriteString(matchStyle.Render(s.Text))
		} else {
			b.WriteString(s.Text)
		}
	}
	if c.Disabled {
		return disabledStyle.Render(b.String())
	}
	return b.String()
}

func helpLine(k KeyMap) string {
	parts := make([]string, 0, len(k.ShortHelp()))
	for _, binding := range k.ShortHelp() {
		h := binding.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return statusStyle.Render(strings.Join(parts, " • "))
}
