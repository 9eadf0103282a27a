// Package announce turns selection changes into short human readable
// messages, the kind a screen reader live region would speak.
package announce

import (
	"github.com/bastiangx/tagserve/pkg/manager"
	"github.com/bastiangx/tagserve/pkg/tags"
)

const (
	DefaultAddedText   tags.Template = "Added tag %value%"
	DefaultDeletedText tags.Template = "Removed tag %value%"
)

// Announcer formats Flags with its two templates.
type Announcer struct {
	Added   tags.Template
	Deleted tags.Template
}

// New returns an Announcer, filling empty templates with the defaults.
func New(added, deleted tags.Template) *Announcer {
	if added == "" {
		added = DefaultAddedText
	}
	if deleted == "" {
		deleted = DefaultDeletedText
	}
	return &Announcer{Added: added, Deleted: deleted}
}

// Messages lists one message per added tag followed by one per removed tag.
func (a *Announcer) Messages(f manager.Flags) []string {
	if f.Empty() {
		return nil
	}
	out := make([]string, 0, len(f.Added)+len(f.Removed))
	for _, t := range f.Added {
		out = append(out, a.Added.Format(t.Label))
	}
	for _, t := range f.Removed {
		out = append(out, a.Deleted.Format(t.Label))
	}
	return out
}
