package tags

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValueIdentity(t *testing.T) {
	cases := []struct {
		a, b  Value
		equal bool
	}{
		{StringValue("10"), StringValue("10"), true},
		{StringValue("10"), NumberValue(10), false},
		{NumberValue(10), NumberValue(10), true},
		{NullValue, Value{}, true},
		{NullValue, StringValue(""), false},
		{NewOptionValue, NoOptionsValue, false},
		{NewOptionValue, NullValue, false},
	}

	for _, tc := range cases {
		t.Run(tc.a.String()+"=="+tc.b.String(), func(t *testing.T) {
			assert.Equal(t, tc.equal, tc.a == tc.b)
		})
	}
}

func TestTagEqualNeedsLabelAndValue(t *testing.T) {
	a := Tag{Label: "Australia", Value: NumberValue(10)}

	assert.True(t, a.Equal(Tag{Label: "Australia", Value: NumberValue(10)}))
	assert.False(t, a.Equal(Tag{Label: "Australia", Value: NumberValue(11)}))
	assert.False(t, a.Equal(Tag{Label: "australia", Value: NumberValue(10)}))
}

func TestSentinelValues(t *testing.T) {
	assert.True(t, NewOptionValue.IsSentinel())
	assert.True(t, NoOptionsValue.IsSentinel())
	assert.False(t, NullValue.IsSentinel())
	assert.Equal(t, KindNull, NewOptionValue.Kind())
	assert.Nil(t, NoOptionsValue.Any())

	c := Candidate{Tag: Tag{Label: "Add %value%", Value: NewOptionValue}}
	assert.True(t, c.IsNewOption())
	assert.False(t, c.IsNoOptions())
}

func TestValueAccessors(t *testing.T) {
	s, ok := StringValue("x").Str()
	assert.True(t, ok)
	assert.Equal(t, "x", s)

	_, ok = NumberValue(3).Str()
	assert.False(t, ok)

	n, ok := NumberValue(3).Number()
	assert.True(t, ok)
	assert.Equal(t, int64(3), n)
	assert.Equal(t, int64(3), NumberValue(3).Any())
}

func TestIndexOf(t *testing.T) {
	list := []Tag{
		{Label: "a", Value: NumberValue(1)},
		{Label: "b", Value: NumberValue(2)},
		{Label: "b", Value: NumberValue(2)},
	}

	assert.Equal(t, 1, IndexOf(Tag{Label: "b", Value: NumberValue(2)}, list))
	assert.Equal(t, -1, IndexOf(Tag{Label: "b", Value: StringValue("2")}, list))
	assert.Equal(t, -1, IndexOf(NewTag("a"), nil))
}

func TestCloneDoesNotAlias(t *testing.T) {
	list := []Tag{NewTag("a")}
	out := Clone(list)
	out[0].Label = "b"

	assert.Equal(t, "a", list[0].Label)
	assert.Nil(t, Clone(nil))
}

func TestTemplateFormat(t *testing.T) {
	assert.Equal(t, "Add boop", Template("Add %value%").Format("boop"))
	assert.Equal(t, "No options", Template("No options").Format("boop"))
	assert.Equal(t, 2, Template("%value% and %value%").Tokens())
	assert.Equal(t, "boop and %value%", Template("%value% and %value%").Format("boop"))
}
