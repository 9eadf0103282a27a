package catalog

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bastiangx/tagserve/pkg/tags"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func TestSample(t *testing.T) {
	list := Sample()
	require.NotEmpty(t, list)

	byLabel := map[string]tags.Value{}
	for _, s := range list {
		byLabel[s.Label] = s.Value
	}
	assert.Equal(t, tags.NumberValue(10), byLabel["Australia"])
	assert.Equal(t, tags.NumberValue(11), byLabel["Austria"])
	assert.Equal(t, tags.NumberValue(13), byLabel["Bahrain"])
}

func TestReadText(t *testing.T) {
	input := `
# comment
Jersey
42	Guernsey
gg	Sark
	Alderney
`
	list, err := ReadText(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []tags.Suggestion{
		{Tag: tags.NewTag("Jersey")},
		{Tag: tags.Tag{Label: "Guernsey", Value: tags.NumberValue(42)}},
		{Tag: tags.Tag{Label: "Sark", Value: tags.StringValue("gg")}},
		{Tag: tags.NewTag("Alderney")},
	}, list)

	_, err = ReadText(strings.NewReader("7\t \n"))
	assert.ErrorContains(t, err, "line 1")
}

func TestReadTOML(t *testing.T) {
	input := `
[[suggestion]]
label = "France"
value = 63

[[suggestion]]
label = "Reunion"
value = "re"
disabled = true

[[suggestion]]
label = "Mayotte"
`
	list, err := ReadTOML(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []tags.Suggestion{
		{Tag: tags.Tag{Label: "France", Value: tags.NumberValue(63)}},
		{Tag: tags.Tag{Label: "Reunion", Value: tags.StringValue("re")}, Disabled: true},
		{Tag: tags.NewTag("Mayotte")},
	}, list)

	_, err = ReadTOML(strings.NewReader("[[suggestion]]\nvalue = 1\n"))
	assert.ErrorContains(t, err, "empty label")

	_, err = ReadTOML(strings.NewReader("[[suggestion]]\nlabel = \"x\"\nvalue = 1.5\n"))
	assert.ErrorContains(t, err, "not an integer")
}

func TestMsgpackRoundTrip(t *testing.T) {
	list := []tags.Suggestion{
		{Tag: tags.Tag{Label: "Tunisia", Value: tags.NumberValue(186)}},
		{Tag: tags.Tag{Label: "Mauritius", Value: tags.StringValue("mu")}, Disabled: true},
		{Tag: tags.NewTag("Atlantis")},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteMsgpack(&buf, list))

	got, err := ReadMsgpack(&buf)
	require.NoError(t, err)
	assert.Equal(t, list, got)
}

func TestReadMsgpackSmallIntegers(t *testing.T) {
	b, err := msgpack.Marshal([]map[string]any{{"label": "Oman", "value": uint8(7)}})
	require.NoError(t, err)

	got, err := ReadMsgpack(bytes.NewReader(b))
	require.NoError(t, err)
	assert.Equal(t, []tags.Suggestion{{Tag: tags.Tag{Label: "Oman", Value: tags.NumberValue(7)}}}, got)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "tags.txt")
	require.NoError(t, os.WriteFile(txt, []byte("1\tGo\n2\tRust\n"), 0644))

	list, err := Load(txt)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	sample, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Sample(), sample)

	_, err = Load(filepath.Join(dir, "tags.csv"))
	assert.ErrorContains(t, err, "unsupported extension")

	_, err = Load(filepath.Join(dir, "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, FormatText, DetectFormat("a/B.TXT"))
	assert.Equal(t, FormatTOML, DetectFormat("x.toml"))
	assert.Equal(t, FormatMsgpack, DetectFormat("x.mpk"))
	assert.Equal(t, FormatUnknown, DetectFormat("x"))
	assert.Equal(t, "msgpack", FormatMsgpack.String())
}

func TestValueOf(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want tags.Value
		err  string
	}{
		{"nil", nil, tags.NullValue, ""},
		{"string", "gg", tags.StringValue("gg"), ""},
		{"int64", int64(42), tags.NumberValue(42), ""},
		{"int", 7, tags.NumberValue(7), ""},
		{"integral float", float64(63), tags.NumberValue(63), ""},
		{"min int64 float", float64(math.MinInt64), tags.NumberValue(math.MinInt64), ""},
		{"fractional float", 1.5, tags.Value{}, "not an integer"},
		{"float at 2^63", math.Exp2(63), tags.Value{}, "not an integer"},
		{"float below min int64", -math.Exp2(64), tags.Value{}, "not an integer"},
		{"uint64 overflow", uint64(math.MaxUint64), tags.Value{}, "overflows int64"},
		{"bool", true, tags.Value{}, "unsupported value type bool"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ValueOf(tc.in)
			if tc.err != "" {
				assert.ErrorContains(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
