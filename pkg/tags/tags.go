// Package tags holds the value types shared by the filter, the manager and every host:
// tag identity, catalog suggestions, decorated candidates and the sentinel rows.
package tags

import (
	"strconv"
	"strings"
)

// Kind identifies what a Value carries.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindNumber

	// sentinel kinds are unexported so host values can never collide with them
	kindNewOption
	kindNoOptions
)

// Value is the identity half of a Tag: null, a string or a number.
// Values are comparable with ==.
type Value struct {
	kind Kind
	str  string
	num  int64
}

var (
	// NullValue marks a freshly created tag that is not in any catalog yet.
	NullValue = Value{}

	// NewOptionValue identifies the synthetic "create new tag" row.
	NewOptionValue = Value{kind: kindNewOption}

	// NoOptionsValue identifies the synthetic "no options found" row.
	NoOptionsValue = Value{kind: kindNoOptions}
)

// StringValue wraps s as a tag value.
func StringValue(s string) Value {
	return Value{kind: KindString, str: s}
}

// NumberValue wraps n as a tag value.
func NumberValue(n int64) Value {
	return Value{kind: KindNumber, num: n}
}

// Kind reports the kind of v. Sentinel values report KindNull.
func (v Value) Kind() Kind {
	if v.IsSentinel() {
		return KindNull
	}
	return v.kind
}

func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// IsSentinel reports whether v is one of the reserved placeholder values.
func (v Value) IsSentinel() bool {
	return v.kind == kindNewOption || v.kind == kindNoOptions
}

// Str returns the string payload and whether v holds a string.
func (v Value) Str() (string, bool) {
	return v.str, v.kind == KindString
}

// Number returns the numeric payload and whether v holds a number.
func (v Value) Number() (int64, bool) {
	return v.num, v.kind == KindNumber
}

// Any returns v as nil, string or int64. Sentinels map to nil.
func (v Value) Any() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	default:
		return nil
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindString:
		return strconv.Quote(v.str)
	case KindNumber:
		return strconv.FormatInt(v.num, 10)
	case kindNewOption:
		return "<new-option>"
	case kindNoOptions:
		return "<no-options>"
	default:
		return "null"
	}
}

// Tag is a selectable item. Label and Value together form its identity.
type Tag struct {
	Label string
	Value Value
}

// NewTag returns a tag that has not been catalogued yet.
func NewTag(label string) Tag {
	return Tag{Label: label, Value: NullValue}
}

// Equal reports identity equality.
func (t Tag) Equal(o Tag) bool {
	return t == o
}

func (t Tag) IsSentinel() bool {
	return t.Value.IsSentinel()
}

func (t Tag) String() string {
	return t.Label + "(" + t.Value.String() + ")"
}

// Suggestion is a catalog entry supplied by the host.
type Suggestion struct {
	Tag
	Disabled bool
}

// Candidate is a suggestion decorated for one recompute of the list.
type Candidate struct {
	Tag
	Disabled bool
	Index    int
}

// IsNewOption reports whether c is the "create new tag" row.
func (c Candidate) IsNewOption() bool {
	return c.Value == NewOptionValue
}

// IsNoOptions reports whether c is the "no options found" row.
func (c Candidate) IsNoOptions() bool {
	return c.Value == NoOptionsValue
}

// IndexOf returns the position of the first identity-equal tag in list, or -1.
func IndexOf(t Tag, list []Tag) int {
	for i := range list {
		if list[i] == t {
			return i
		}
	}
	return -1
}

// CandidateIndex returns the position of the candidate identity-equal to t, or -1.
func CandidateIndex(t Tag, list []Candidate) int {
	for i := range list {
		if list[i].Tag == t {
			return i
		}
	}
	return -1
}

// Clone returns a copy of list that shares nothing with it.
func Clone(list []Tag) []Tag {
	if len(list) == 0 {
		return nil
	}
	out := make([]Tag, len(list))
	copy(out, list)
	return out
}

// ValueToken is the placeholder substituted by Template.Format.
const ValueToken = "%value%"

// Template is a display string with at most one ValueToken.
type Template string

// Format substitutes the first ValueToken with label.
func (t Template) Format(label string) string {
	return strings.Replace(string(t), ValueToken, label, 1)
}

// Tokens counts ValueToken occurrences.
func (t Template) Tokens() int {
	return strings.Count(string(t), ValueToken)
}
