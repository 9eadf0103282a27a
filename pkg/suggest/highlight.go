package suggest

import (
	"github.com/bastiangx/tagserve/internal/utils"
	"github.com/bastiangx/tagserve/pkg/tags"
)

// Segment is a run of label text, marked when it matched the query.
type Segment struct {
	Text  string
	Match bool
}

// Highlight splits label around every case-insensitive occurrence of query.
func Highlight(label, query string) []Segment {
	ranges := utils.FoldRanges(label, query)
	if len(ranges) == 0 {
		return []Segment{{Text: label}}
	}

	var out []Segment
	pos := 0
	for _, r := range ranges {
		if r[0] > pos {
			out = append(out, Segment{Text: label[pos:r[0]]})
		}
		out = append(out, Segment{Text: label[r[0]:r[1]], Match: true})
		pos = r[1]
	}
	if pos < len(label) {
		out = append(out, Segment{Text: label[pos:]})
	}
	return out
}

// HighlightCandidate renders the display label of c. Sentinel rows get their
// template filled with query and are never highlighted.
func HighlightCandidate(c tags.Candidate, query string) []Segment {
	if c.IsSentinel() {
		return []Segment{{Text: tags.Template(c.Label).Format(query)}}
	}
	return Highlight(c.Label, query)
}

// DisplayLabel is the plain text of HighlightCandidate.
func DisplayLabel(c tags.Candidate, query string) string {
	if c.IsSentinel() {
		return tags.Template(c.Label).Format(query)
	}
	return c.Label
}
