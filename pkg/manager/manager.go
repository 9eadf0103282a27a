// Package manager implements the headless state machine behind a tag input
// with autocomplete.
//
// A Manager owns the query text, the expanded/collapsed state and the active
// candidate. The candidate list is recomputed from the query and the catalog
// on every command, and the active candidate is tracked by identity across
// recomputes. The selection list belongs to the host: the manager only asks
// for changes through Callbacks.OnAdd and Callbacks.OnDelete and expects the
// new list back through SetSelected.
//
// Every command leaves the manager with one fully recomputed State before any
// callback runs, so callbacks may read State or call back into the manager.
// A Manager is not safe for concurrent use.
package manager

import (
	"strings"

	"github.com/bastiangx/tagserve/pkg/suggest"
	"github.com/bastiangx/tagserve/pkg/tags"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// State is one consistent snapshot of the manager.
type State struct {
	QueryText       string
	IsExpanded      bool
	ActiveIndex     int
	ActiveCandidate *tags.Candidate
	Candidates      []tags.Candidate
	Selection       []tags.Tag
}

// Manager is the tag input state machine.
type Manager struct {
	cfg Config
	cb  Callbacks
	log *log.Logger

	suggestions []tags.Suggestion
	selected    []tags.Tag
	query       string
	expanded    bool
	tracker     tracker

	state  State
	flags  Flags
	cycled bool
}

// New validates cfg and returns a collapsed manager with an empty query.
func New(cfg Config) (*Manager, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	m := &Manager{
		cfg:         cfg,
		cb:          cfg.Callbacks,
		log:         cfg.Logger,
		suggestions: cloneSuggestions(cfg.Suggestions),
		selected:    tags.Clone(cfg.Selected),
	}
	m.tracker.clear()
	m.recompute()
	return m, nil
}

// State returns a copy of the current snapshot.
func (m *Manager) State() State {
	s := m.state
	s.Candidates = append([]tags.Candidate(nil), m.state.Candidates...)
	s.Selection = tags.Clone(m.state.Selection)
	if m.state.ActiveCandidate != nil {
		c := *m.state.ActiveCandidate
		s.ActiveCandidate = &c
	}
	return s
}

// Flags returns the selection changes made by the last command.
func (m *Manager) Flags() Flags {
	return Flags{
		Added:   tags.Clone(m.flags.Added),
		Removed: tags.Clone(m.flags.Removed),
	}
}

// Expand opens the candidate list and remembers the current active candidate.
// It does nothing when already expanded.
func (m *Manager) Expand() {
	if m.expanded {
		return
	}
	m.expanded = true
	m.tracker.remember(m.state.ActiveCandidate)
	m.recompute()
	m.log.Debug("expanded", "active", m.state.ActiveIndex)

	if m.cb.OnExpand != nil {
		m.cb.OnExpand()
	}
}

// Collapse closes the candidate list and forgets the active candidate.
// It does nothing when already collapsed.
func (m *Manager) Collapse() {
	if !m.expanded {
		return
	}
	m.expanded = false
	m.tracker.clear()
	m.recompute()
	m.log.Debug("collapsed")

	if m.cb.OnCollapse != nil {
		m.cb.OnCollapse()
	}
}

// MoveActive moves the active candidate by delta, wrapping around the list.
func (m *Manager) MoveActive(delta int) {
	next := LoopIndex(m.state.ActiveIndex, delta, len(m.state.Candidates), m.cfg.floor())
	m.tracker.remember(candidateAt(m.state.Candidates, next))
	m.recompute()
	m.log.Debug("moved", "delta", delta, "active", m.state.ActiveIndex)
}

// SetActive makes c the active candidate, as on pointer hover.
func (m *Manager) SetActive(c tags.Candidate) {
	m.tracker.remember(&c)
	m.recompute()
}

// SetActiveIndex makes the candidate at i active. Out of range clears it.
func (m *Manager) SetActiveIndex(i int) {
	m.tracker.remember(candidateAt(m.state.Candidates, i))
	m.recompute()
}

// SetQueryText replaces the query and notifies OnInput when it changed.
func (m *Manager) SetQueryText(text string) {
	if text == m.query {
		return
	}
	m.query = text
	m.recompute()
	m.log.Debug("query", "text", text, "candidates", len(m.state.Candidates))

	if m.cb.OnInput != nil {
		m.cb.OnInput(text)
	}
}

// HandleInput is typing: it sets the query and expands the list.
func (m *Manager) HandleInput(text string) {
	m.SetQueryText(text)
	m.Expand()
}

// SetSuggestions replaces the catalog.
func (m *Manager) SetSuggestions(list []tags.Suggestion) {
	m.suggestions = cloneSuggestions(list)
	m.recompute()
}

// SetSelected hands the manager the host's current selection.
func (m *Manager) SetSelected(list []tags.Tag) {
	m.selected = tags.Clone(list)
	m.recompute()
	if !m.flags.Empty() {
		m.log.Debug("selection", "added", len(m.flags.Added), "removed", len(m.flags.Removed))
	}
}

// SelectTag confirms the active candidate, as on enter. Without an active
// candidate a candidate whose label equals the query is used.
// It reports whether a callback was invoked.
func (m *Manager) SelectTag() bool {
	return m.selectTag(nil)
}

// SelectCandidate selects c explicitly, as on a pointer click.
func (m *Manager) SelectCandidate(c tags.Candidate) bool {
	return m.selectTag(&c)
}

// SelectIndex clicks the candidate at position i of the current list.
func (m *Manager) SelectIndex(i int) bool {
	c := candidateAt(m.state.Candidates, i)
	if c == nil {
		return false
	}
	return m.selectTag(c)
}

// DeleteLast asks the host to remove the last selected tag, as on backspace
// in an empty input. It needs AllowBackspace and an empty query.
func (m *Manager) DeleteLast() bool {
	if !m.cfg.AllowBackspace || m.query != "" || len(m.selected) == 0 {
		return false
	}
	index := len(m.selected) - 1
	m.log.Debug("delete last", "index", index)
	m.cb.OnDelete(index)
	return true
}

func (m *Manager) selectTag(explicit *tags.Candidate) bool {
	target, ok := m.resolveTarget(explicit)
	if !ok {
		return false
	}

	toggle := m.cfg.AllowDuplicates && !m.cfg.AllowNew
	index := tags.IndexOf(target, m.selected)

	switch {
	case toggle && explicit != nil && index > -1:
		m.log.Debug("select toggles off", "tag", target, "index", index)
		m.cb.OnDelete(index)
	case m.cfg.AllowDuplicates:
		clone := target
		clone.Value = tags.StringValue(m.cfg.NewID())
		m.log.Debug("select duplicate", "tag", clone)
		m.cb.OnAdd(clone)
	default:
		m.log.Debug("select", "tag", target)
		m.cb.OnAdd(target)
	}

	if m.cfg.CloseOnSelect {
		m.Collapse()
	}
	m.SetQueryText("")
	return true
}

// resolveTarget turns a candidate into the tag to add. Sentinel and disabled
// rows resolve to nothing, except the new tag row which becomes the query.
func (m *Manager) resolveTarget(explicit *tags.Candidate) (tags.Tag, bool) {
	var c *tags.Candidate
	if explicit != nil {
		c = explicit
		if i := tags.CandidateIndex(explicit.Tag, m.state.Candidates); i > -1 {
			c = candidateAt(m.state.Candidates, i)
		}
	} else {
		c = m.state.ActiveCandidate
		if c == nil {
			c = m.exactMatch()
		}
	}

	if c == nil || c.Disabled || c.IsNoOptions() {
		return tags.Tag{}, false
	}
	if c.IsNewOption() {
		if m.query == "" {
			return tags.Tag{}, false
		}
		return tags.NewTag(m.query), true
	}
	return c.Tag, true
}

// exactMatch finds the first enabled candidate whose label equals the query.
func (m *Manager) exactMatch() *tags.Candidate {
	if m.query == "" {
		return nil
	}
	for i, c := range m.state.Candidates {
		if !c.IsSentinel() && !c.Disabled && strings.EqualFold(c.Label, m.query) {
			return candidateAt(m.state.Candidates, i)
		}
	}
	return nil
}

// recompute derives the next snapshot from the current inputs.
func (m *Manager) recompute() {
	list := suggest.Filter(m.query, m.suggestions, m.cfg.filterOptions())
	index := m.tracker.index(list, m.cfg.floor())

	next := State{
		QueryText:       m.query,
		IsExpanded:      m.expanded,
		ActiveIndex:     index,
		ActiveCandidate: candidateAt(list, index),
		Candidates:      list,
		Selection:       m.selected,
	}

	if m.cycled {
		m.flags = Diff(m.state.Selection, next.Selection)
	}
	m.state = next
	m.cycled = true
}

func cloneSuggestions(list []tags.Suggestion) []tags.Suggestion {
	if len(list) == 0 {
		return nil
	}
	return append([]tags.Suggestion(nil), list...)
}

func newUUID() string {
	return uuid.NewString()
}
