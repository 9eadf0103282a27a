/*
Package server implements msgpack IPC for a headless tag input.

The server drives one session over stdin/stdout. Clients send a request per
user gesture and receive the full recomputed state after it, together with
the callbacks the gesture caused and the announcements for the selection
changes.

# IPC

Every message carries an ID and an op. Other fields depend on the op:

	{"id": "1", "op": "input", "q": "aus"}
	{"id": "2", "op": "move", "d": 1}
	{"id": "3", "op": "select"}
	{"id": "4", "op": "click", "i": 0}

The response holds the state snapshot and what happened:

	{"id": "3", "state": {"q": "", "e": true, "a": 0, "c": [...], "s": [{"l": "Australia", "v": 10}]},
	 "events": [{"k": "add", "tag": {"l": "Australia", "v": 10}}, {"k": "input"}],
	 "announcements": ["Added tag Australia"], "t": 85}

Supported ops: state, expand, collapse, move (d), active (i), input (q),
query (q), select, click (i), delete_last, selected (tags) and
suggestions (suggestions).

When the server does not manage the selection itself, add and delete events
are requests: the client applies them and echoes the new list with the
selected op. Failures come back as {"id", "e", "c"} with an HTTP-like code.

Values travel as msgpack nil, string or integer.
*/
package server

// Request is one client gesture.
type Request struct {
	ID          string           `msgpack:"id"`
	Op          string           `msgpack:"op"`
	Delta       int              `msgpack:"d,omitempty"`
	Query       string           `msgpack:"q,omitempty"`
	Index       *int             `msgpack:"i,omitempty"`
	Tags        []WireTag        `msgpack:"tags,omitempty"`
	Suggestions []WireSuggestion `msgpack:"suggestions,omitempty"`
}

const (
	OpState       = "state"
	OpExpand      = "expand"
	OpCollapse    = "collapse"
	OpMove        = "move"
	OpActive      = "active"
	OpInput       = "input"
	OpQuery       = "query"
	OpSelect      = "select"
	OpClick       = "click"
	OpDeleteLast  = "delete_last"
	OpSelected    = "selected"
	OpSuggestions = "suggestions"
)

// WireTag - tag identity
type WireTag struct {
	Label string `msgpack:"l"`
	Value any    `msgpack:"v"`
}

// WireSuggestion - catalog entry
type WireSuggestion struct {
	Label    string `msgpack:"l"`
	Value    any    `msgpack:"v"`
	Disabled bool   `msgpack:"x,omitempty"`
}

// WireCandidate - one row of the candidate list. Kind is "new" or "none"
// for the sentinel rows, whose Text is the formatted template.
type WireCandidate struct {
	Label    string `msgpack:"l"`
	Value    any    `msgpack:"v"`
	Disabled bool   `msgpack:"x,omitempty"`
	Kind     string `msgpack:"k,omitempty"`
	Text     string `msgpack:"s"`
}

// WireState - state snapshot
type WireState struct {
	Query      string          `msgpack:"q"`
	Expanded   bool            `msgpack:"e"`
	Active     int             `msgpack:"a"`
	Candidates []WireCandidate `msgpack:"c"`
	Selection  []WireTag       `msgpack:"s"`
}

// WireEvent - a callback the command fired
type WireEvent struct {
	Kind  string   `msgpack:"k"`
	Tag   *WireTag `msgpack:"tag,omitempty"`
	Index int      `msgpack:"i"`
	Text  string   `msgpack:"q,omitempty"`
}

// Response - reply to a successful request; TimeTaken is in microseconds
type Response struct {
	ID            string      `msgpack:"id"`
	State         WireState   `msgpack:"state"`
	Events        []WireEvent `msgpack:"events,omitempty"`
	Announcements []string    `msgpack:"announcements,omitempty"`
	TimeTaken     int64       `msgpack:"t"`
}

// ErrorResponse holds basic error information for failed requests
type ErrorResponse struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}

const (
	CodeBadRequest = 400
	CodeInternal   = 500
)
