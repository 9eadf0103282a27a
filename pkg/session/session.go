// Package session is a reference host for the manager. It owns the selection
// list, records every callback as an Event and produces announcements for
// each command it runs.
package session

import (
	"io"

	"github.com/bastiangx/tagserve/pkg/announce"
	"github.com/bastiangx/tagserve/pkg/manager"
	"github.com/bastiangx/tagserve/pkg/tags"
	"github.com/charmbracelet/log"
)

type EventKind string

const (
	EventAdd      EventKind = "add"
	EventDelete   EventKind = "delete"
	EventInput    EventKind = "input"
	EventExpand   EventKind = "expand"
	EventCollapse EventKind = "collapse"
)

// Event is one callback the manager fired. Tag is set for add, Index for
// delete and Text for input.
type Event struct {
	Kind  EventKind
	Tag   tags.Tag
	Index int
	Text  string
}

// Options configures a Session.
type Options struct {
	// Manager is used as is, except for its Callbacks which the session owns.
	Manager manager.Config
	// ManageSelection applies add and delete to the session's own selection.
	// Without it the caller is expected to echo the selection back through
	// SetSelected.
	ManageSelection bool
	Announcer       *announce.Announcer
	Logger          *log.Logger
}

// Result is what one command produced.
type Result struct {
	State         manager.State
	Events        []Event
	Announcements []string
}

type Session struct {
	m        *manager.Manager
	manage   bool
	selected []tags.Tag
	events   []Event
	ann      *announce.Announcer
	log      *log.Logger
}

// New builds the manager behind a session.
func New(opts Options) (*Session, error) {
	s := &Session{
		manage:   opts.ManageSelection,
		selected: tags.Clone(opts.Manager.Selected),
		ann:      opts.Announcer,
		log:      opts.Logger,
	}
	if s.ann == nil {
		s.ann = announce.New("", "")
	}
	if s.log == nil {
		s.log = log.New(io.Discard)
	}

	cfg := opts.Manager
	cfg.Callbacks = manager.Callbacks{
		OnAdd:      s.onAdd,
		OnDelete:   s.onDelete,
		OnInput:    func(text string) { s.record(Event{Kind: EventInput, Text: text}) },
		OnExpand:   func() { s.record(Event{Kind: EventExpand}) },
		OnCollapse: func() { s.record(Event{Kind: EventCollapse}) },
	}

	m, err := manager.New(cfg)
	if err != nil {
		return nil, err
	}
	s.m = m
	return s, nil
}

// Manager exposes the underlying manager for read access.
func (s *Session) Manager() *manager.Manager {
	return s.m
}

// Selected returns a copy of the selection the session currently knows about.
func (s *Session) Selected() []tags.Tag {
	return tags.Clone(s.m.State().Selection)
}

// Run executes one command against the manager and collects what it caused.
func (s *Session) Run(cmd func(m *manager.Manager)) Result {
	before := s.m.State().Selection
	cmd(s.m)
	after := s.m.State()

	res := Result{
		State:         after,
		Events:        s.events,
		Announcements: s.ann.Messages(manager.Diff(before, after.Selection)),
	}
	s.events = nil
	for _, msg := range res.Announcements {
		s.log.Info(msg)
	}
	return res
}

// SetSelected is the echo path for callers that own the selection.
func (s *Session) SetSelected(list []tags.Tag) Result {
	return s.Run(func(m *manager.Manager) {
		s.selected = tags.Clone(list)
		m.SetSelected(list)
	})
}

func (s *Session) record(e Event) {
	s.log.Debug("event", "kind", e.Kind, "tag", e.Tag, "index", e.Index, "text", e.Text)
	s.events = append(s.events, e)
}

func (s *Session) onAdd(t tags.Tag) {
	s.record(Event{Kind: EventAdd, Tag: t, Index: len(s.selected)})
	if !s.manage {
		return
	}
	s.selected = append(s.selected, t)
	s.m.SetSelected(s.selected)
}

func (s *Session) onDelete(i int) {
	s.record(Event{Kind: EventDelete, Index: i, Tag: s.tagAt(i)})
	if !s.manage || i < 0 || i >= len(s.selected) {
		return
	}
	s.selected = append(s.selected[:i:i], s.selected[i+1:]...)
	s.m.SetSelected(s.selected)
}

func (s *Session) tagAt(i int) tags.Tag {
	if i < 0 || i >= len(s.selected) {
		return tags.Tag{}
	}
	return s.selected[i]
}
