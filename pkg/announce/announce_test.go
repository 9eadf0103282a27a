package announce

import (
	"testing"

	"github.com/bastiangx/tagserve/pkg/manager"
	"github.com/bastiangx/tagserve/pkg/tags"
	"github.com/stretchr/testify/assert"
)

func TestMessages(t *testing.T) {
	a := New("", "")
	f := manager.Flags{
		Added:   []tags.Tag{tags.NewTag("Tunisia"), tags.NewTag("France")},
		Removed: []tags.Tag{tags.NewTag("Bahrain")},
	}

	assert.Equal(t, []string{"Added tag Tunisia", "Added tag France", "Removed tag Bahrain"}, a.Messages(f))
	assert.Nil(t, a.Messages(manager.Flags{}))
}

func TestCustomTemplates(t *testing.T) {
	a := New("+ %value%", "%value% gone")
	f := manager.Flags{
		Added:   []tags.Tag{tags.NewTag("Reunion")},
		Removed: []tags.Tag{tags.NewTag("Austria")},
	}
	assert.Equal(t, []string{"+ Reunion", "Austria gone"}, a.Messages(f))
}
