package manager

import (
	"errors"
	"testing"

	"github.com/bastiangx/tagserve/pkg/tags"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func sug(label string, value int64) tags.Suggestion {
	return tags.Suggestion{Tag: tags.Tag{Label: label, Value: tags.NumberValue(value)}}
}

func tag(label string, value int64) tags.Tag {
	return tags.Tag{Label: label, Value: tags.NumberValue(value)}
}

var countries = []tags.Suggestion{
	sug("Australia", 10),
	sug("Austria", 11),
	sug("Bahrain", 13),
	sug("British Virgin Islands", 28),
	sug("France", 63),
	sug("Guinea-Bissau", 79),
	sug("Mauritius", 121),
	sug("Reunion", 150),
	sug("Tunisia", 186),
	sug("United Arab Emirates", 193),
	sug("United Kingdom", 194),
	sug("United States", 195),
}

// host owns the selection the way a real embedding would and echoes every
// change straight back into the manager from inside the callback.
type host struct {
	m        *Manager
	selected []tags.Tag

	added     []tags.Tag
	deleted   []int
	inputs    []string
	expands   int
	collapses int
}

func newHost(t *testing.T, cfg Config) *host {
	t.Helper()
	h := &host{selected: tags.Clone(cfg.Selected)}
	cfg.Callbacks = Callbacks{
		OnAdd: func(tg tags.Tag) {
			h.added = append(h.added, tg)
			h.selected = append(h.selected, tg)
			h.m.SetSelected(h.selected)
		},
		OnDelete: func(i int) {
			h.deleted = append(h.deleted, i)
			h.selected = append(h.selected[:i:i], h.selected[i+1:]...)
			h.m.SetSelected(h.selected)
		},
		OnInput:    func(text string) { h.inputs = append(h.inputs, text) },
		OnExpand:   func() { h.expands++ },
		OnCollapse: func() { h.collapses++ },
	}
	m, err := New(cfg)
	require.NoError(t, err)
	h.m = m
	return h
}

func activeLabel(m *Manager) string {
	c := m.State().ActiveCandidate
	if c == nil {
		return ""
	}
	return c.Label
}

func TestNewStartsCollapsed(t *testing.T) {
	h := newHost(t, Config{Suggestions: countries})
	s := h.m.State()

	assert.False(t, s.IsExpanded)
	assert.Empty(t, s.QueryText)
	assert.Equal(t, -1, s.ActiveIndex)
	assert.Nil(t, s.ActiveCandidate)
	assert.Len(t, s.Candidates, len(countries))
	assert.True(t, h.m.Flags().Empty())
}

func TestSelectActiveOptionEndToEnd(t *testing.T) {
	h := newHost(t, Config{Suggestions: []tags.Suggestion{sug("Australia", 10), sug("Austria", 11)}})

	h.m.HandleInput("aus")
	h.m.MoveActive(1)
	require.Equal(t, "Australia", activeLabel(h.m))

	assert.True(t, h.m.SelectTag())
	assert.Equal(t, []tags.Tag{tag("Australia", 10)}, h.added)
	assert.Equal(t, "", h.m.State().QueryText)
	assert.Equal(t, []string{"aus", ""}, h.inputs)
	assert.Equal(t, []tags.Tag{tag("Australia", 10)}, h.m.State().Selection)
}

func TestRepeatedSelectWithoutEcho(t *testing.T) {
	var added []tags.Tag
	m, err := New(Config{
		Suggestions: []tags.Suggestion{sug("Australia", 10), sug("Austria", 11)},
		Callbacks: Callbacks{
			OnAdd:    func(tg tags.Tag) { added = append(added, tg) },
			OnDelete: func(int) {},
		},
	})
	require.NoError(t, err)

	m.HandleInput("aus")
	m.MoveActive(1)
	require.Equal(t, "Australia", activeLabel(m))

	assert.True(t, m.SelectTag())
	assert.True(t, m.SelectTag())

	assert.Equal(t, []tags.Tag{tag("Australia", 10), tag("Australia", 10)}, added)
	s := m.State()
	assert.Equal(t, "", s.QueryText)
	assert.Empty(t, s.Selection)
	require.NotNil(t, s.ActiveCandidate)
	assert.Equal(t, tag("Australia", 10), s.ActiveCandidate.Tag)
	assert.Equal(t, 0, s.ActiveIndex)
	assert.Equal(t, s.Candidates[s.ActiveIndex], *s.ActiveCandidate)
}

func TestActiveIdentitySurvivesNarrowing(t *testing.T) {
	h := newHost(t, Config{Suggestions: countries})

	h.m.HandleInput("in")
	h.m.MoveActive(2)
	require.Equal(t, "British Virgin Islands", activeLabel(h.m))
	require.Equal(t, 1, h.m.State().ActiveIndex)

	h.m.HandleInput("gin")
	assert.Equal(t, "British Virgin Islands", activeLabel(h.m))
	assert.Equal(t, 0, h.m.State().ActiveIndex)

	h.m.HandleInput("ging")
	assert.Equal(t, -1, h.m.State().ActiveIndex)
	assert.Nil(t, h.m.State().ActiveCandidate)
}

func TestActiveIdentitySurvivesReorder(t *testing.T) {
	h := newHost(t, Config{Suggestions: countries})
	h.m.Expand()
	h.m.SetActiveIndex(2)
	require.Equal(t, "Bahrain", activeLabel(h.m))

	reversed := make([]tags.Suggestion, len(countries))
	for i, s := range countries {
		reversed[len(countries)-1-i] = s
	}
	h.m.SetSuggestions(reversed)

	assert.Equal(t, "Bahrain", activeLabel(h.m))
	assert.Equal(t, len(countries)-3, h.m.State().ActiveIndex)
}

func TestMoveActiveWrapsThroughRestingSlot(t *testing.T) {
	h := newHost(t, Config{Suggestions: []tags.Suggestion{sug("Australia", 10), sug("Austria", 11)}})
	h.m.Expand()

	var seen []int
	for range 4 {
		h.m.MoveActive(1)
		seen = append(seen, h.m.State().ActiveIndex)
	}
	assert.Equal(t, []int{0, 1, -1, 0}, seen)

	h.m.MoveActive(-1)
	h.m.MoveActive(-1)
	assert.Equal(t, 1, h.m.State().ActiveIndex)
}

func TestStartWithFirstOption(t *testing.T) {
	h := newHost(t, Config{Suggestions: countries, StartWithFirstOption: true})

	h.m.HandleInput("uni")
	assert.Equal(t, 0, h.m.State().ActiveIndex)
	assert.Equal(t, "Reunion", activeLabel(h.m))

	h.m.MoveActive(-1)
	assert.Equal(t, "United States", activeLabel(h.m))

	h.m.HandleInput("zzz")
	s := h.m.State()
	require.Len(t, s.Candidates, 1)
	assert.True(t, s.Candidates[0].IsNoOptions())
	assert.False(t, h.m.SelectTag())
	assert.Empty(t, h.added)
}

func TestDuplicateToggle(t *testing.T) {
	ids := 0
	cfg := Config{
		Suggestions:     countries,
		Selected:        []tags.Tag{tag("France", 63)},
		AllowDuplicates: true,
		NewID: func() string {
			ids++
			return "clone-" + string(rune('0'+ids))
		},
	}

	t.Run("pointer selection deletes", func(t *testing.T) {
		h := newHost(t, cfg)
		h.m.HandleInput("fra")
		france := h.m.State().Candidates[0]

		assert.True(t, h.m.SelectCandidate(france))
		assert.Equal(t, []int{0}, h.deleted)
		assert.Empty(t, h.added)
		assert.Empty(t, h.m.State().Selection)
	})

	t.Run("keyboard confirm adds clone", func(t *testing.T) {
		h := newHost(t, cfg)
		h.m.HandleInput("fra")
		h.m.MoveActive(1)

		assert.True(t, h.m.SelectTag())
		assert.Empty(t, h.deleted)
		require.Len(t, h.added, 1)
		assert.Equal(t, "France", h.added[0].Label)
		id, ok := h.added[0].Value.Str()
		assert.True(t, ok)
		assert.Equal(t, "clone-1", id)
		assert.Len(t, h.m.State().Selection, 2)
	})
}

func TestDuplicateClonesGetUUIDs(t *testing.T) {
	h := newHost(t, Config{Suggestions: countries, AllowDuplicates: true})
	h.m.HandleInput("fra")
	h.m.MoveActive(1)
	h.m.SelectTag()
	h.m.HandleInput("fra")
	h.m.MoveActive(1)
	h.m.SelectTag()

	require.Len(t, h.added, 2)
	first, _ := h.added[0].Value.Str()
	second, _ := h.added[1].Value.Str()
	assert.Len(t, first, 36)
	assert.NotEqual(t, first, second)
}

func TestCloseOnSelect(t *testing.T) {
	for _, closeOnSelect := range []bool{true, false} {
		h := newHost(t, Config{Suggestions: countries, CloseOnSelect: closeOnSelect})
		h.m.HandleInput("fra")
		h.m.MoveActive(1)
		require.True(t, h.m.SelectTag())

		assert.Equal(t, !closeOnSelect, h.m.State().IsExpanded)
		if closeOnSelect {
			assert.Equal(t, 1, h.collapses)
		}
	}
}

func TestExpandCollapseIdempotent(t *testing.T) {
	h := newHost(t, Config{Suggestions: countries})

	h.m.Expand()
	h.m.Expand()
	h.m.HandleInput("a")
	assert.Equal(t, 1, h.expands)

	h.m.Collapse()
	h.m.Collapse()
	assert.Equal(t, 1, h.collapses)
	assert.False(t, h.m.State().IsExpanded)
}

func TestCollapseForgetsActive(t *testing.T) {
	h := newHost(t, Config{Suggestions: countries})
	h.m.Expand()
	h.m.MoveActive(4)
	require.Equal(t, "British Virgin Islands", activeLabel(h.m))

	h.m.Collapse()
	h.m.Expand()
	assert.Equal(t, -1, h.m.State().ActiveIndex)
}

func TestSetQueryTextOnlyNotifiesOnChange(t *testing.T) {
	h := newHost(t, Config{Suggestions: countries})
	h.m.SetQueryText("fr")
	h.m.SetQueryText("fr")
	h.m.SetQueryText("")
	assert.Equal(t, []string{"fr", ""}, h.inputs)
}

func TestNewOptionRow(t *testing.T) {
	h := newHost(t, Config{Suggestions: countries, AllowNew: true})

	h.m.HandleInput("Atlantis")
	s := h.m.State()
	require.Len(t, s.Candidates, 1)
	assert.True(t, s.Candidates[0].IsNewOption())

	h.m.MoveActive(1)
	assert.True(t, h.m.SelectTag())
	assert.Equal(t, []tags.Tag{tags.NewTag("Atlantis")}, h.added)
	assert.True(t, h.added[0].Value.IsNull())
}

func TestNewOptionRejectedByValidator(t *testing.T) {
	h := newHost(t, Config{
		Suggestions: countries,
		AllowNew:    true,
		Validate:    func(s string) bool { return len(s) >= 3 },
	})

	h.m.HandleInput("xy")
	h.m.MoveActive(1)
	require.True(t, h.m.State().ActiveCandidate.Disabled)
	assert.False(t, h.m.SelectTag())

	h.m.HandleInput("xyz")
	assert.True(t, h.m.State().ActiveCandidate.IsNewOption(), "new row identity survives typing")
	assert.False(t, h.m.State().ActiveCandidate.Disabled)
	assert.True(t, h.m.SelectTag())
	assert.Equal(t, "xyz", h.added[0].Label)
}

func TestSelectTagFallsBackToExactLabel(t *testing.T) {
	h := newHost(t, Config{Suggestions: countries})
	h.m.HandleInput("france")
	require.Nil(t, h.m.State().ActiveCandidate)

	assert.True(t, h.m.SelectTag())
	assert.Equal(t, []tags.Tag{tag("France", 63)}, h.added)

	h.m.HandleInput("fran")
	assert.False(t, h.m.SelectTag())
}

func TestSelectIndex(t *testing.T) {
	h := newHost(t, Config{Suggestions: countries})
	h.m.HandleInput("united")

	assert.False(t, h.m.SelectIndex(7))
	assert.True(t, h.m.SelectIndex(1))
	assert.Equal(t, []tags.Tag{tag("United Kingdom", 194)}, h.added)
}

func TestDeleteLast(t *testing.T) {
	selected := []tags.Tag{tag("France", 63), tag("Tunisia", 186)}

	h := newHost(t, Config{Suggestions: countries, Selected: selected, AllowBackspace: true})
	h.m.SetQueryText("t")
	assert.False(t, h.m.DeleteLast())

	h.m.SetQueryText("")
	assert.True(t, h.m.DeleteLast())
	assert.Equal(t, []int{1}, h.deleted)
	assert.Equal(t, []tags.Tag{tag("Tunisia", 186)}, h.m.Flags().Removed)

	off := newHost(t, Config{Suggestions: countries, Selected: selected})
	assert.False(t, off.m.DeleteLast())
}

func TestCallbacksSeeConsistentState(t *testing.T) {
	var m *Manager
	var during []State
	cfg := Config{
		Suggestions: countries,
		Callbacks: Callbacks{
			OnAdd:    func(tags.Tag) {},
			OnDelete: func(int) {},
			OnInput: func(string) {
				during = append(during, m.State())
			},
			OnExpand: func() {
				during = append(during, m.State())
				// re-entrant commands run against the already recomputed snapshot
				m.MoveActive(1)
			},
		},
	}
	m, err := New(cfg)
	require.NoError(t, err)

	m.HandleInput("tun")

	require.Len(t, during, 2)
	assert.Equal(t, "tun", during[0].QueryText)
	assert.False(t, during[0].IsExpanded)
	assert.Equal(t, "Tunisia", during[0].Candidates[0].Label)
	assert.True(t, during[1].IsExpanded)
	assert.Equal(t, "Tunisia", activeLabel(m))
}

func TestHostEchoUpdatesFlags(t *testing.T) {
	h := newHost(t, Config{Suggestions: countries})
	h.m.HandleInput("bah")
	h.m.MoveActive(1)
	h.m.SelectTag()

	// the query reset after the echo recomputes again with an unchanged selection
	assert.True(t, h.m.Flags().Empty())

	h.m.SetSelected(nil)
	assert.Equal(t, []tags.Tag{tag("Bahrain", 13)}, h.m.Flags().Removed)
	h.m.SetSelected([]tags.Tag{tag("Bahrain", 13)})
	assert.Equal(t, []tags.Tag{tag("Bahrain", 13)}, h.m.Flags().Added)
}

func TestStateIsACopy(t *testing.T) {
	h := newHost(t, Config{Suggestions: countries, Selected: []tags.Tag{tag("France", 63)}})
	s := h.m.State()
	s.Candidates[0].Label = "changed"
	s.Selection[0].Label = "changed"

	assert.Equal(t, "Australia", h.m.State().Candidates[0].Label)
	assert.Equal(t, "France", h.m.State().Selection[0].Label)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	_, err := New(Config{
		NewOptionText: "%value% or %value%",
		Validate:      func(string) bool { return true },
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	errs := multierr.Errors(err)
	fields := make([]string, 0, len(errs))
	for _, e := range errs {
		var ce *ConfigError
		require.True(t, errors.As(e, &ce))
		fields = append(fields, ce.Field)
	}
	assert.Equal(t, []string{"Callbacks.OnAdd", "Callbacks.OnDelete", "NewOptionText", "Validate"}, fields)
}

func TestNewAcceptsMinimalConfig(t *testing.T) {
	m, err := New(Config{Callbacks: Callbacks{OnAdd: func(tags.Tag) {}, OnDelete: func(int) {}}})
	require.NoError(t, err)
	s := m.State()
	assert.Empty(t, s.Candidates)
	assert.Equal(t, -1, s.ActiveIndex)

	m.HandleInput("x")
	require.Len(t, m.State().Candidates, 1)
	assert.True(t, m.State().Candidates[0].IsNoOptions())
}
