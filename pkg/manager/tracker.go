package manager

import "github.com/bastiangx/tagserve/pkg/tags"

// tracker remembers the active candidate by identity so it survives the list
// being recomputed, reordered or narrowed.
type tracker struct {
	active tags.Tag
	ok     bool
	// hint is the position the identity was last seen at; it picks between
	// identity-equal duplicates in the catalog.
	hint int
}

func (t *tracker) remember(c *tags.Candidate) {
	if c == nil {
		t.clear()
		return
	}
	t.active, t.ok, t.hint = c.Tag, true, c.Index
}

func (t *tracker) clear() {
	t.active, t.ok, t.hint = tags.Tag{}, false, -1
}

// index resolves the remembered identity against list, falling back to floor.
func (t *tracker) index(list []tags.Candidate, floor int) int {
	if !t.ok {
		return floor
	}
	if t.hint >= 0 && t.hint < len(list) && list[t.hint].Tag == t.active {
		return t.hint
	}
	if i := tags.CandidateIndex(t.active, list); i > -1 {
		return i
	}
	return floor
}

// LoopIndex moves index by delta over the closed range [floor, length-1],
// wrapping around at both ends. An empty list always yields floor.
//
// With floor -1 the extra slot below the first candidate is the "nothing
// active" resting state, so repeated +1 steps visit every candidate once
// before coming back to it.
func LoopIndex(index, delta, length, floor int) int {
	if length <= 0 {
		return floor
	}
	span := length - floor
	offset := (index + delta - floor) % span
	if offset < 0 {
		offset += span
	}
	return floor + offset
}

// candidateAt returns a copy of list[i], or nil when i is out of range.
func candidateAt(list []tags.Candidate, i int) *tags.Candidate {
	if i < 0 || i >= len(list) {
		return nil
	}
	c := list[i]
	return &c
}
