package manager

import "github.com/bastiangx/tagserve/pkg/tags"

// Flags reports how the selection changed between the previous snapshot and
// the current one. It only drives notifications such as announcements.
type Flags struct {
	Added   []tags.Tag
	Removed []tags.Tag
}

// Empty reports whether nothing was added or removed.
func (f Flags) Empty() bool {
	return len(f.Added) == 0 && len(f.Removed) == 0
}

// Diff compares two selection snapshots by identity.
func Diff(previous, current []tags.Tag) Flags {
	return Flags{
		Added:   missingFrom(current, previous),
		Removed: missingFrom(previous, current),
	}
}

// missingFrom returns the entries of a that have no identity-equal entry in b.
func missingFrom(a, b []tags.Tag) []tags.Tag {
	var out []tags.Tag
	for _, t := range a {
		if tags.IndexOf(t, b) == -1 {
			out = append(out, t)
		}
	}
	return out
}
