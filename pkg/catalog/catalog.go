// Package catalog loads suggestion catalogs from disk.
//
// Three formats are understood, picked by file extension:
//
//	.txt      one label per line, or value<TAB>label; # starts a comment
//	.toml     [[suggestion]] tables with label, value and disabled keys
//	.msgpack  an array of {label, value, disabled} maps
//
// Values that look like integers become number values, everything else a
// string value. An entry without a value gets the null value.
package catalog

import (
	"bufio"
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bastiangx/tagserve/pkg/tags"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

//go:embed countries.txt
var countries []byte

// FileFormat represents the supported catalog encodings.
type FileFormat int

const (
	FormatUnknown FileFormat = iota
	FormatText
	FormatTOML
	FormatMsgpack
)

func (f FileFormat) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatTOML:
		return "toml"
	case FormatMsgpack:
		return "msgpack"
	default:
		return "unknown"
	}
}

var extensions = map[string]FileFormat{
	".txt":     FormatText,
	".toml":    FormatTOML,
	".msgpack": FormatMsgpack,
	".mpk":     FormatMsgpack,
}

// DetectFormat picks the format from the file extension.
func DetectFormat(path string) FileFormat {
	return extensions[strings.ToLower(filepath.Ext(path))]
}

// Record is the on-disk shape of one suggestion in the toml and msgpack formats.
type Record struct {
	Label    string `toml:"label" msgpack:"label"`
	Value    any    `toml:"value" msgpack:"value"`
	Disabled bool   `toml:"disabled" msgpack:"disabled,omitempty"`
}

type tomlFile struct {
	Suggestion []Record `toml:"suggestion"`
}

// Sample returns the builtin country catalog.
func Sample() []tags.Suggestion {
	list, err := ReadText(bytes.NewReader(countries))
	if err != nil {
		panic(fmt.Sprintf("catalog: builtin sample: %v", err))
	}
	return list
}

// Load reads the catalog at path. An empty path returns the builtin sample.
func Load(path string) ([]tags.Suggestion, error) {
	if path == "" {
		return Sample(), nil
	}

	format := DetectFormat(path)
	if format == FormatUnknown {
		return nil, fmt.Errorf("catalog %s: unsupported extension %q", path, filepath.Ext(path))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog %s: %w", path, err)
	}
	defer f.Close()

	var list []tags.Suggestion
	switch format {
	case FormatText:
		list, err = ReadText(f)
	case FormatTOML:
		list, err = ReadTOML(f)
	case FormatMsgpack:
		list, err = ReadMsgpack(f)
	}
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	log.Debugf("Loaded %d suggestions from %s (%s)", len(list), path, format)
	return list, nil
}

// ReadText parses the line format.
func ReadText(r io.Reader) ([]tags.Suggestion, error) {
	var list []tags.Suggestion
	scanner := bufio.NewScanner(r)
	for line := 1; scanner.Scan(); line++ {
		raw := scanner.Text()
		text := strings.TrimSpace(raw)
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		value, label, ok := strings.Cut(raw, "\t")
		if !ok {
			list = append(list, tags.Suggestion{Tag: tags.NewTag(text)})
			continue
		}
		label = strings.TrimSpace(label)
		if label == "" {
			return nil, fmt.Errorf("line %d: empty label", line)
		}
		list = append(list, tags.Suggestion{Tag: tags.Tag{Label: label, Value: parseValue(strings.TrimSpace(value))}})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

// ReadTOML parses [[suggestion]] tables.
func ReadTOML(r io.Reader) ([]tags.Suggestion, error) {
	var file tomlFile
	if _, err := toml.NewDecoder(r).Decode(&file); err != nil {
		return nil, err
	}
	return fromRecords(file.Suggestion)
}

// ReadMsgpack parses an array of records.
func ReadMsgpack(r io.Reader) ([]tags.Suggestion, error) {
	dec := msgpack.NewDecoder(r)
	dec.UseLooseInterfaceDecoding(true)

	var records []Record
	if err := dec.Decode(&records); err != nil {
		return nil, err
	}
	return fromRecords(records)
}

// WriteMsgpack encodes list in the format ReadMsgpack understands.
func WriteMsgpack(w io.Writer, list []tags.Suggestion) error {
	records := make([]Record, len(list))
	for i, s := range list {
		records[i] = Record{Label: s.Label, Value: s.Value.Any(), Disabled: s.Disabled}
	}
	return msgpack.NewEncoder(w).Encode(records)
}

func fromRecords(records []Record) ([]tags.Suggestion, error) {
	list := make([]tags.Suggestion, 0, len(records))
	for i, rec := range records {
		if rec.Label == "" {
			return nil, fmt.Errorf("entry %d: empty label", i)
		}
		value, err := ValueOf(rec.Value)
		if err != nil {
			return nil, fmt.Errorf("entry %d (%s): %w", i, rec.Label, err)
		}
		list = append(list, tags.Suggestion{Tag: tags.Tag{Label: rec.Label, Value: value}, Disabled: rec.Disabled})
	}
	return list, nil
}

// ValueOf converts a decoded toml or msgpack scalar into a tag value.
func ValueOf(v any) (tags.Value, error) {
	switch v := v.(type) {
	case nil:
		return tags.NullValue, nil
	case string:
		return tags.StringValue(v), nil
	case int64:
		return tags.NumberValue(v), nil
	case int:
		return tags.NumberValue(int64(v)), nil
	case uint64:
		if v > math.MaxInt64 {
			return tags.Value{}, fmt.Errorf("value %d overflows int64", v)
		}
		return tags.NumberValue(int64(v)), nil
	case float64:
		// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold
		if v != math.Trunc(v) || v >= math.MaxInt64 || v < math.MinInt64 {
			return tags.Value{}, fmt.Errorf("value %v is not an integer", v)
		}
		return tags.NumberValue(int64(v)), nil
	default:
		return tags.Value{}, fmt.Errorf("unsupported value type %T", v)
	}
}

func parseValue(s string) tags.Value {
	if s == "" {
		return tags.NullValue
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return tags.NumberValue(n)
	}
	return tags.StringValue(s)
}
