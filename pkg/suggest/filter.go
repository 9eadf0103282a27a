// Package suggest builds the candidate list shown under the tag input.
//
// Filter is a pure function of the query text, the host catalog and the
// filter options: the same inputs always produce the same list, in the same
// order. Matching itself is pluggable through a Transform; MatchPartial,
// MatchPrefix and MatchFuzzy are provided.
package suggest

import "github.com/bastiangx/tagserve/pkg/tags"

const (
	DefaultNewOptionText = tags.Template("Add %value%")
	DefaultNoOptionsText = tags.Template("No options found for %value%")
)

// Transform selects and orders the catalog entries matching query.
// Implementations must not modify catalog.
type Transform func(query string, catalog []tags.Suggestion) []tags.Suggestion

// Validator decides whether query may become a new tag.
type Validator func(query string) bool

// Options controls the synthetic rows appended by Filter.
type Options struct {
	AllowNew      bool
	NewOptionText tags.Template
	NoOptionsText tags.Template
	Validate      Validator
	Transform     Transform
}

// Filter returns the decorated candidate list for query.
//
// With a non-empty query a "create new tag" row is appended when AllowNew is
// set, and a disabled "no options" row is appended if the list would
// otherwise be empty. An empty query returns the transform output unchanged.
func Filter(query string, catalog []tags.Suggestion, opts Options) []tags.Candidate {
	transform := opts.Transform
	if transform == nil {
		transform = MatchPartial
	}
	matches := transform(query, catalog)

	out := make([]tags.Candidate, 0, len(matches)+1)
	for _, s := range matches {
		out = append(out, tags.Candidate{Tag: s.Tag, Disabled: s.Disabled, Index: len(out)})
	}

	if query == "" {
		return out
	}

	if opts.AllowNew {
		out = append(out, tags.Candidate{
			Tag:      tags.Tag{Label: string(opts.NewOptionText), Value: tags.NewOptionValue},
			Disabled: opts.Validate != nil && !opts.Validate(query),
			Index:    len(out),
		})
	}

	if len(out) == 0 {
		out = append(out, tags.Candidate{
			Tag:      tags.Tag{Label: string(opts.NoOptionsText), Value: tags.NoOptionsValue},
			Disabled: true,
			Index:    0,
		})
	}

	return out
}
