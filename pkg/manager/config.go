package manager

import (
	"errors"
	"fmt"
	"io"

	"github.com/bastiangx/tagserve/pkg/suggest"
	"github.com/bastiangx/tagserve/pkg/tags"
	"github.com/charmbracelet/log"
	"go.uber.org/multierr"
)

// ErrInvalidConfig is matched by every error returned from New.
var ErrInvalidConfig = errors.New("invalid manager config")

// ConfigError describes one rejected setting.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// Callbacks are the notifications the manager sends to its host.
// OnAdd and OnDelete are required; the host applies them to the selection it
// owns and hands the result back through SetSelected.
type Callbacks struct {
	OnAdd      func(tags.Tag)
	OnDelete   func(index int)
	OnInput    func(text string)
	OnExpand   func()
	OnCollapse func()
}

// Config configures a Manager.
type Config struct {
	AllowNew             bool
	AllowDuplicates      bool
	AllowBackspace       bool
	CloseOnSelect        bool
	StartWithFirstOption bool

	// Zero values fall back to suggest.DefaultNewOptionText and
	// suggest.DefaultNoOptionsText.
	NewOptionText tags.Template
	NoOptionsText tags.Template

	Suggestions []tags.Suggestion
	Selected    []tags.Tag

	// Transform defaults to suggest.MatchPartial.
	Transform suggest.Transform
	// Validate is consulted for the new tag row only, so it requires AllowNew.
	Validate suggest.Validator

	Callbacks Callbacks

	// Logger receives debug traces of every transition. Nil discards them.
	Logger *log.Logger

	// NewID generates the value given to duplicate clones. Defaults to UUIDv4.
	NewID func() string
}

// validate returns every configuration problem at once.
func (c Config) validate() error {
	var err error
	if c.Callbacks.OnAdd == nil {
		err = multierr.Append(err, &ConfigError{Field: "Callbacks.OnAdd", Reason: "is required"})
	}
	if c.Callbacks.OnDelete == nil {
		err = multierr.Append(err, &ConfigError{Field: "Callbacks.OnDelete", Reason: "is required"})
	}
	if n := c.NewOptionText.Tokens(); n > 1 {
		err = multierr.Append(err, &ConfigError{Field: "NewOptionText", Reason: fmt.Sprintf("has %d %s tokens, want at most 1", n, tags.ValueToken)})
	}
	if n := c.NoOptionsText.Tokens(); n > 1 {
		err = multierr.Append(err, &ConfigError{Field: "NoOptionsText", Reason: fmt.Sprintf("has %d %s tokens, want at most 1", n, tags.ValueToken)})
	}
	if c.Validate != nil && !c.AllowNew {
		err = multierr.Append(err, &ConfigError{Field: "Validate", Reason: "set without AllowNew"})
	}
	return err
}

func (c Config) withDefaults() Config {
	if c.NewOptionText == "" {
		c.NewOptionText = suggest.DefaultNewOptionText
	}
	if c.NoOptionsText == "" {
		c.NoOptionsText = suggest.DefaultNoOptionsText
	}
	if c.Transform == nil {
		c.Transform = suggest.MatchPartial
	}
	if c.Logger == nil {
		c.Logger = log.New(io.Discard)
	}
	if c.NewID == nil {
		c.NewID = newUUID
	}
	return c
}

func (c Config) floor() int {
	if c.StartWithFirstOption {
		return 0
	}
	return -1
}

func (c Config) filterOptions() suggest.Options {
	return suggest.Options{
		AllowNew:      c.AllowNew,
		NewOptionText: c.NewOptionText,
		NoOptionsText: c.NoOptionsText,
		Validate:      c.Validate,
		Transform:     c.Transform,
	}
}
