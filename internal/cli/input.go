// Package cli drives a tag session from plain text lines, for DBG and testing.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/bastiangx/tagserve/pkg/manager"
	"github.com/bastiangx/tagserve/pkg/session"
	"github.com/bastiangx/tagserve/pkg/suggest"
	"github.com/charmbracelet/log"
)

const usage = `:down :up move, :enter select, :click N select row N, :esc close or clear,
:open :close expand or collapse, :back delete last tag, :state print, :quit exit.
Anything else replaces the query.`

// ErrQuit is returned by Exec for :quit.
var ErrQuit = errors.New("quit")

// InputHandler reads lines and turns them into manager commands. Each line
// prints the resulting snapshot.
type InputHandler struct {
	sess         *session.Session
	in           io.Reader
	out          *log.Logger
	requestCount int
}

// NewInputHandler wires a session to a line source and an output.
func NewInputHandler(sess *session.Session, in io.Reader, out io.Writer) *InputHandler {
	return &InputHandler{
		sess: sess,
		in:   in,
		out: log.NewWithOptions(out, log.Options{
			ReportCaller:    false,
			ReportTimestamp: false,
		}),
	}
}

// Start runs the prompt loop until EOF or :quit.
func (h *InputHandler) Start() error {
	h.out.Print("tagserve CLI [DBG]")
	h.out.Print(usage)

	scanner := bufio.NewScanner(h.in)
	for {
		h.out.Print("> ")
		if !scanner.Scan() {
			log.Debugf("Input closed after %d lines", h.requestCount)
			return scanner.Err()
		}
		line := strings.TrimRight(scanner.Text(), "\r\n")

		res, err := h.Exec(line)
		if errors.Is(err, ErrQuit) {
			log.Debugf("Quit after %d lines", h.requestCount)
			return nil
		}
		if err != nil {
			h.out.Errorf("%v", err)
			continue
		}
		h.print(res)
	}
}

// Lines reports how many lines Exec has run.
func (h *InputHandler) Lines() int {
	return h.requestCount
}

// Exec runs one line.
func (h *InputHandler) Exec(line string) (session.Result, error) {
	h.requestCount++
	start := time.Now()
	defer func() {
		log.Debugf("Took [ %v ] for line %q", time.Since(start), line)
	}()

	if !strings.HasPrefix(line, ":") {
		return h.sess.Run(func(m *manager.Manager) { m.HandleInput(line) }), nil
	}

	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	switch cmd {
	case ":down":
		return h.sess.Run(func(m *manager.Manager) { h.move(m, 1) }), nil
	case ":up":
		return h.sess.Run(func(m *manager.Manager) { h.move(m, -1) }), nil
	case ":enter":
		return h.sess.Run(func(m *manager.Manager) { m.SelectTag() }), nil
	case ":click":
		i, err := strconv.Atoi(strings.TrimSpace(arg))
		if err != nil {
			return session.Result{}, fmt.Errorf(":click needs a row number: %w", err)
		}
		return h.sess.Run(func(m *manager.Manager) { m.SelectIndex(i) }), nil
	case ":esc":
		return h.sess.Run(escape), nil
	case ":open":
		return h.sess.Run((*manager.Manager).Expand), nil
	case ":close":
		return h.sess.Run((*manager.Manager).Collapse), nil
	case ":back":
		return h.sess.Run(func(m *manager.Manager) { m.DeleteLast() }), nil
	case ":state":
		return h.sess.Run(func(*manager.Manager) {}), nil
	case ":quit", ":q":
		return session.Result{}, ErrQuit
	default:
		return session.Result{}, fmt.Errorf("unknown command %s\n%s", cmd, usage)
	}
}

// move expands a collapsed list before moving, the way arrow keys do.
func (h *InputHandler) move(m *manager.Manager, delta int) {
	if !m.State().IsExpanded {
		m.Expand()
		return
	}
	m.MoveActive(delta)
}

// escape collapses an open list, or clears the query of a closed one.
func escape(m *manager.Manager) {
	if m.State().IsExpanded {
		m.Collapse()
		return
	}
	m.SetQueryText("")
}

func (h *InputHandler) print(res session.Result) {
	st := res.State
	for _, e := range res.Events {
		log.Debug("event", "kind", e.Kind, "tag", e.Tag, "index", e.Index, "text", e.Text)
	}
	for _, msg := range res.Announcements {
		h.out.Info(msg)
	}

	selected := make([]string, len(st.Selection))
	for i, t := range st.Selection {
		selected[i] = t.Label
	}
	h.out.Printf("query %q, selected [%s]", st.QueryText, strings.Join(selected, ", "))

	if !st.IsExpanded {
		return
	}
	for i, c := range st.Candidates {
		marker := " "
		if i == st.ActiveIndex {
			marker = ">"
		}
		label := colorize(suggest.HighlightCandidate(c, st.QueryText))
		if c.Disabled {
			label += " (disabled)"
		}
		h.out.Printf("%s %2d. %s", marker, i, label)
	}
}

func colorize(segments []suggest.Segment) string {
	var b strings.Builder
	for _, s := range segments {
		if s.Match {
			fmt.Fprintf(&b, "\033[38;5;75m%s\033[0m", s.Text)
		} else {
			b.WriteString(s.Text)
		}
	}
	return b.String()
}
