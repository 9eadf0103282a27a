package server

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/bastiangx/tagserve/internal/logger"
	"github.com/bastiangx/tagserve/pkg/catalog"
	"github.com/bastiangx/tagserve/pkg/manager"
	"github.com/bastiangx/tagserve/pkg/session"
	"github.com/bastiangx/tagserve/pkg/suggest"
	"github.com/bastiangx/tagserve/pkg/tags"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// RequestError is a request the server refused. Code is sent to the client.
type RequestError struct {
	Code int
	Msg  string
}

func (e *RequestError) Error() string {
	return e.Msg
}

func badRequest(format string, args ...any) *RequestError {
	return &RequestError{Code: CodeBadRequest, Msg: fmt.Sprintf(format, args...)}
}

// Server handles the msgpack IPC for one session.
type Server struct {
	sess    *session.Session
	dec     *msgpack.Decoder
	enc     *msgpack.Encoder
	log     *log.Logger
	handled int
}

// NewServer creates a server speaking over stdin/stdout.
func NewServer(sess *session.Session) *Server {
	return NewServerWithIO(sess, os.Stdin, os.Stdout)
}

// NewServerWithIO creates a server reading requests from r and writing
// responses to w.
func NewServerWithIO(sess *session.Session, r io.Reader, w io.Writer) *Server {
	return &Server{
		sess: sess,
		dec:  msgpack.NewDecoder(bufio.NewReader(r)),
		enc:  msgpack.NewEncoder(w),
		log:  logger.New("server"),
	}
}

// SetLogger replaces the server logger.
func (s *Server) SetLogger(l *log.Logger) {
	s.log = l
}

// Start serves requests until the input is closed.
// It returns nil on a clean EOF.
func (s *Server) Start() error {
	s.log.Debug("Starting server")

	for {
		raw, err := s.dec.DecodeRaw()
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.log.Debugf("Input closed after %d requests", s.handled)
				return nil
			}
			s.log.Errorf("Reading request: %v", err)
			return err
		}

		req, err := decodeRequest(raw)
		if err != nil {
			s.log.Warnf("Invalid request: %v", err)
			if err := s.sendError(req.ID, fmt.Sprintf("invalid request: %v", err), CodeBadRequest); err != nil {
				return err
			}
			continue
		}

		if err := s.dispatch(req); err != nil {
			s.log.Errorf("Writing response: %v", err)
			return err
		}
	}
}

func decodeRequest(raw msgpack.RawMessage) (Request, error) {
	var req Request
	dec := msgpack.NewDecoder(bytes.NewReader(raw))
	dec.UseLooseInterfaceDecoding(true)
	err := dec.Decode(&req)
	return req, err
}

func (s *Server) dispatch(req Request) error {
	resp, err := s.Handle(req)
	if err != nil {
		var reqErr *RequestError
		if errors.As(err, &reqErr) {
			s.log.Debug("Rejected request", "id", req.ID, "op", req.Op, "err", reqErr.Msg)
			return s.sendError(req.ID, reqErr.Msg, reqErr.Code)
		}
		return s.sendError(req.ID, err.Error(), CodeInternal)
	}
	return s.enc.Encode(resp)
}

func (s *Server) sendError(id, message string, code int) error {
	return s.enc.Encode(ErrorResponse{ID: id, Error: message, Code: code})
}

// Handle applies one request to the session.
func (s *Server) Handle(req Request) (*Response, error) {
	start := time.Now()

	var res session.Result
	switch req.Op {
	case OpState:
		res = s.sess.Run(func(*manager.Manager) {})
	case OpExpand:
		res = s.sess.Run((*manager.Manager).Expand)
	case OpCollapse:
		res = s.sess.Run((*manager.Manager).Collapse)
	case OpMove:
		res = s.sess.Run(func(m *manager.Manager) { m.MoveActive(req.Delta) })
	case OpActive:
		if req.Index == nil {
			return nil, badRequest("op %s needs i", req.Op)
		}
		res = s.sess.Run(func(m *manager.Manager) { m.SetActiveIndex(*req.Index) })
	case OpInput:
		res = s.sess.Run(func(m *manager.Manager) { m.HandleInput(req.Query) })
	case OpQuery:
		res = s.sess.Run(func(m *manager.Manager) { m.SetQueryText(req.Query) })
	case OpSelect:
		res = s.sess.Run(func(m *manager.Manager) { m.SelectTag() })
	case OpClick:
		if req.Index == nil {
			return nil, badRequest("op %s needs i", req.Op)
		}
		n := len(s.sess.Manager().State().Candidates)
		if *req.Index < 0 || *req.Index >= n {
			return nil, badRequest("index %d out of range [0, %d)", *req.Index, n)
		}
		res = s.sess.Run(func(m *manager.Manager) { m.SelectIndex(*req.Index) })
	case OpDeleteLast:
		res = s.sess.Run(func(m *manager.Manager) { m.DeleteLast() })
	case OpSelected:
		list, err := fromWireTags(req.Tags)
		if err != nil {
			return nil, err
		}
		res = s.sess.SetSelected(list)
	case OpSuggestions:
		list, err := fromWireSuggestions(req.Suggestions)
		if err != nil {
			return nil, err
		}
		res = s.sess.Run(func(m *manager.Manager) { m.SetSuggestions(list) })
	case "":
		return nil, badRequest("missing op")
	default:
		return nil, badRequest("unknown op: %s", req.Op)
	}

	s.handled++
	resp := &Response{
		ID:            req.ID,
		State:         wireState(res.State),
		Events:        wireEvents(res.Events),
		Announcements: res.Announcements,
		TimeTaken:     time.Since(start).Microseconds(),
	}
	s.log.Debug("Handled", "id", req.ID, "op", req.Op, "events", len(resp.Events), "us", resp.TimeTaken)
	return resp, nil
}

func wireTag(t tags.Tag) WireTag {
	return WireTag{Label: t.Label, Value: t.Value.Any()}
}

func wireTags(list []tags.Tag) []WireTag {
	out := make([]WireTag, len(list))
	for i, t := range list {
		out[i] = wireTag(t)
	}
	return out
}

func wireState(st manager.State) WireState {
	cands := make([]WireCandidate, len(st.Candidates))
	for i, c := range st.Candidates {
		wc := WireCandidate{Disabled: c.Disabled, Text: suggest.DisplayLabel(c, st.QueryText)}
		switch {
		case c.IsNewOption():
			wc.Kind = "new"
		case c.IsNoOptions():
			wc.Kind = "none"
		default:
			wc.Label, wc.Value = c.Label, c.Value.Any()
		}
		cands[i] = wc
	}
	return WireState{
		Query:      st.QueryText,
		Expanded:   st.IsExpanded,
		Active:     st.ActiveIndex,
		Candidates: cands,
		Selection:  wireTags(st.Selection),
	}
}

func wireEvents(events []session.Event) []WireEvent {
	if len(events) == 0 {
		return nil
	}
	out := make([]WireEvent, len(events))
	for i, e := range events {
		we := WireEvent{Kind: string(e.Kind), Index: e.Index, Text: e.Text}
		if e.Kind == session.EventAdd || e.Kind == session.EventDelete {
			t := wireTag(e.Tag)
			we.Tag = &t
		}
		out[i] = we
	}
	return out
}

func fromWireTags(list []WireTag) ([]tags.Tag, error) {
	out := make([]tags.Tag, 0, len(list))
	for i, wt := range list {
		v, err := catalog.ValueOf(wt.Value)
		if err != nil {
			return nil, badRequest("tags[%d]: %v", i, err)
		}
		out = append(out, tags.Tag{Label: wt.Label, Value: v})
	}
	return out, nil
}

func fromWireSuggestions(list []WireSuggestion) ([]tags.Suggestion, error) {
	out := make([]tags.Suggestion, 0, len(list))
	for i, ws := range list {
		if ws.Label == "" {
			return nil, badRequest("suggestions[%d]: empty label", i)
		}
		v, err := catalog.ValueOf(ws.Value)
		if err != nil {
			return nil, badRequest("suggestions[%d]: %v", i, err)
		}
		out = append(out, tags.Suggestion{Tag: tags.Tag{Label: ws.Label, Value: v}, Disabled: ws.Disabled})
	}
	return out, nil
}
