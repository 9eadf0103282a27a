/*
Package config manages the TOML config for tagserve hosts.
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/bastiangx/tagserve/internal/utils"
	"github.com/bastiangx/tagserve/pkg/announce"
	"github.com/bastiangx/tagserve/pkg/manager"
	"github.com/bastiangx/tagserve/pkg/suggest"
	"github.com/bastiangx/tagserve/pkg/tags"
	"github.com/charmbracelet/log"
)

// Config holds the entire config structure
type Config struct {
	Manager  ManagerConfig  `toml:"manager"`
	Filter   FilterConfig   `toml:"filter"`
	Announce AnnounceConfig `toml:"announce"`
	Server   ServerConfig   `toml:"server"`
	Catalog  CatalogConfig  `toml:"catalog"`
}

// ManagerConfig mirrors the manager behaviour flags.
type ManagerConfig struct {
	AllowNew             bool   `toml:"allow_new"`
	AllowDuplicates      bool   `toml:"allow_duplicates"`
	AllowBackspace       bool   `toml:"allow_backspace"`
	CloseOnSelect        bool   `toml:"close_on_select"`
	StartWithFirstOption bool   `toml:"start_with_first_option"`
	NewOptionText        string `toml:"new_option_text"`
	NoOptionsText        string `toml:"no_options_text"`
}

// FilterConfig picks the transform and the new tag validator.
type FilterConfig struct {
	// Mode is one of partial, prefix or fuzzy.
	Mode string `toml:"mode"`
	// ValidatePattern, when set, must match the query for a new tag to be offered enabled.
	ValidatePattern string `toml:"validate_pattern"`
}

type AnnounceConfig struct {
	AddedText   string `toml:"added_text"`
	DeletedText string `toml:"deleted_text"`
}

// ServerConfig has server related options.
type ServerConfig struct {
	ManageSelection bool `toml:"manage_selection"`
}

type CatalogConfig struct {
	// Path to a .txt, .toml or .msgpack catalog. Empty uses the builtin sample.
	Path string `toml:"path"`
}

const (
	ModePartial = "partial"
	ModePrefix  = "prefix"
	ModeFuzzy   = "fuzzy"
)

// GetConfigDir returns the config directory with fallback priority:
// 1. ~/.config/
// 2. ~/Library/Application Support/ (macOS)
// 3. Current executable dir
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		return utils.GetExecutableDir()
	}
	primaryPath := filepath.Join(homeDir, ".config", "tagserve")
	if result := utils.CheckDirStatus(primaryPath); result.Writable {
		return primaryPath, nil
	}
	macOSPath := filepath.Join(homeDir, "Library", "Application Support", "tagserve")
	if result := utils.CheckDirStatus(macOSPath); result.Writable {
		return macOSPath, nil
	}
	execDir, err := utils.GetExecutableDir()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return execDir, nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/tagserve/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}

	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Manager: ManagerConfig{
			AllowBackspace: true,
			NewOptionText:  string(suggest.DefaultNewOptionText),
			NoOptionsText:  string(suggest.DefaultNoOptionsText),
		},
		Filter: FilterConfig{
			Mode: ModePartial,
		},
		Announce: AnnounceConfig{
			AddedText:   string(announce.DefaultAddedText),
			DeletedText: string(announce.DefaultDeletedText),
		},
		Server: ServerConfig{
			ManageSelection: true,
		},
	}
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config from %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}
	return config, nil
}

// LoadConfig loads from a TOML file. Missing keys keep their defaults.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	return config, nil
}

// tryPartialParse keeps every well typed key of a file the strict decoder rejected.
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	raw, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if section, ok := utils.ExtractSection(raw, "manager"); ok {
		extractManagerConfig(section, &config.Manager)
	}
	if section, ok := utils.ExtractSection(raw, "filter"); ok {
		extractFilterConfig(section, &config.Filter)
	}
	if section, ok := utils.ExtractSection(raw, "announce"); ok {
		extractAnnounceConfig(section, &config.Announce)
	}
	if section, ok := utils.ExtractSection(raw, "server"); ok {
		if val, ok := utils.ExtractBool(section, "manage_selection"); ok {
			config.Server.ManageSelection = val
		}
	}
	if section, ok := utils.ExtractSection(raw, "catalog"); ok {
		if val, ok := utils.ExtractString(section, "path"); ok {
			config.Catalog.Path = val
		}
	}
	return config, nil
}

func extractManagerConfig(data map[string]any, m *ManagerConfig) {
	flags := map[string]*bool{
		"allow_new":               &m.AllowNew,
		"allow_duplicates":        &m.AllowDuplicates,
		"allow_backspace":         &m.AllowBackspace,
		"close_on_select":         &m.CloseOnSelect,
		"start_with_first_option": &m.StartWithFirstOption,
	}
	for key, dst := range flags {
		if val, ok := utils.ExtractBool(data, key); ok {
			*dst = val
		}
	}
	if val, ok := utils.ExtractString(data, "new_option_text"); ok {
		m.NewOptionText = val
	}
	if val, ok := utils.ExtractString(data, "no_options_text"); ok {
		m.NoOptionsText = val
	}
}

func extractFilterConfig(data map[string]any, f *FilterConfig) {
	if val, ok := utils.ExtractString(data, "mode"); ok {
		f.Mode = val
	}
	if val, ok := utils.ExtractString(data, "validate_pattern"); ok {
		f.ValidatePattern = val
	}
}

func extractAnnounceConfig(data map[string]any, a *AnnounceConfig) {
	if val, ok := utils.ExtractString(data, "added_text"); ok {
		a.AddedText = val
	}
	if val, ok := utils.ExtractString(data, "deleted_text"); ok {
		a.DeletedText = val
	}
}

// RebuildConfigFile force creates a new config.toml at default
func RebuildConfigFile() error {
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		return err
	}
	if err := utils.EnsureDir(filepath.Dir(defaultPath)); err != nil {
		return err
	}
	return utils.SaveTOMLFile(DefaultConfig(), defaultPath)
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		if defaultPath, err := GetDefaultConfigPath(); err == nil {
			return defaultPath
		}
		return "unknown"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}

// Transform maps Filter.Mode to a suggest transform.
func (c *Config) Transform() (suggest.Transform, error) {
	switch c.Filter.Mode {
	case "", ModePartial:
		return suggest.MatchPartial, nil
	case ModePrefix:
		return suggest.MatchPrefix, nil
	case ModeFuzzy:
		return suggest.MatchFuzzy, nil
	default:
		return nil, fmt.Errorf("filter.mode %q: want %s, %s or %s", c.Filter.Mode, ModePartial, ModePrefix, ModeFuzzy)
	}
}

// Validator compiles Filter.ValidatePattern. It returns nil when no pattern is set.
func (c *Config) Validator() (suggest.Validator, error) {
	if c.Filter.ValidatePattern == "" {
		return nil, nil
	}
	re, err := regexp.Compile(c.Filter.ValidatePattern)
	if err != nil {
		return nil, fmt.Errorf("filter.validate_pattern: %w", err)
	}
	return re.MatchString, nil
}

// Announcer builds the announcer from the [announce] section.
func (c *Config) Announcer() *announce.Announcer {
	return announce.New(tags.Template(c.Announce.AddedText), tags.Template(c.Announce.DeletedText))
}

// ManagerConfig builds the manager config for the given catalog. Callbacks
// are left for the host to fill in.
func (c *Config) ManagerConfig(suggestions []tags.Suggestion) (manager.Config, error) {
	transform, err := c.Transform()
	if err != nil {
		return manager.Config{}, err
	}
	validate, err := c.Validator()
	if err != nil {
		return manager.Config{}, err
	}
	m := c.Manager
	if validate != nil && !m.AllowNew {
		log.Warnf("filter.validate_pattern is ignored without manager.allow_new")
		validate = nil
	}
	return manager.Config{
		AllowNew:             m.AllowNew,
		AllowDuplicates:      m.AllowDuplicates,
		AllowBackspace:       m.AllowBackspace,
		CloseOnSelect:        m.CloseOnSelect,
		StartWithFirstOption: m.StartWithFirstOption,
		NewOptionText:        tags.Template(m.NewOptionText),
		NoOptionsText:        tags.Template(m.NoOptionsText),
		Suggestions:          suggestions,
		Transform:            transform,
		Validate:             validate,
	}, nil
}
