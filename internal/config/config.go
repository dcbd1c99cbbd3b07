// Package config handles library and global configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/matsen/bibclique/internal/dedupe"
	"github.com/matsen/bibclique/internal/idsuggest"
	"github.com/matsen/bibclique/internal/reference"
)

// Config represents library configuration stored in .bibclique/config.yml.
type Config struct {
	Sensitivity      int      `yaml:"sensitivity"`
	PersonNameFormat string   `yaml:"person_name_format"`
	BeautifyMonth    bool     `yaml:"beautify_month"`
	IDFormats        []string `yaml:"id_formats"`
	DefaultIDFormat  string   `yaml:"default_id_format"`
	UnionFields      []string `yaml:"union_fields"`
}

const (
	LibraryDir  = ".bibclique"
	ConfigFile  = "config.yml"
	EntriesFile = "entries.jsonl"
	CacheDir    = "cache"
	DBFile      = "entries.db"
)

// Environment variables that override values from config.yml.
const (
	EnvSensitivity = "BIBCLIQUE_SENSITIVITY"
	EnvIDFormat    = "BIBCLIQUE_ID_FORMAT"
)

// ErrNotLibrary is returned when no .bibclique directory can be found.
var ErrNotLibrary = errors.New("not in a bibclique library (no .bibclique directory found)")

// Default returns the configuration written by init and used to fill
// missing values.
func Default() *Config {
	return &Config{
		Sensitivity:      dedupe.DefaultSensitivity,
		PersonNameFormat: reference.PersonNameFormatLastFirst,
		BeautifyMonth:    false,
		IDFormats: []string{
			`A2|y`,
			`al|Y`,
			`A3l|"_|Y|"_|T3l"_`,
			`a|"_|Y|"_|T1`,
		},
		DefaultIDFormat: `al|Y`,
		UnionFields:     []string{reference.FieldKeywords, reference.FieldURL},
	}
}

// LibraryPath returns the path to the .bibclique directory from a root path.
func LibraryPath(root string) string {
	return filepath.Join(root, LibraryDir)
}

// ConfigPath returns the path to config.yml from a root path.
func ConfigPath(root string) string {
	return filepath.Join(root, LibraryDir, ConfigFile)
}

// EntriesPath returns the path to entries.jsonl from a root path.
func EntriesPath(root string) string {
	return filepath.Join(root, LibraryDir, EntriesFile)
}

// CachePath returns the path to the cache directory from a root path.
func CachePath(root string) string {
	return filepath.Join(root, LibraryDir, CacheDir)
}

// DBPath returns the path to entries.db from a root path.
func DBPath(root string) string {
	return filepath.Join(root, LibraryDir, CacheDir, DBFile)
}

// IsLibrary checks if the given path contains a bibclique library.
func IsLibrary(root string) bool {
	info, err := os.Stat(LibraryPath(root))
	return err == nil && info.IsDir()
}

// FindLibrary walks up from the given path to find a library root.
func FindLibrary(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	for {
		if IsLibrary(abs) {
			return abs, nil
		}

		parent := filepath.Dir(abs)
		if parent == abs {
			return "", ErrNotLibrary
		}
		abs = parent
	}
}

// Load reads configuration from the library at the given root. A missing
// config.yml yields the defaults; values absent from the file are filled
// from the defaults too. Environment overrides are applied last.
func Load(root string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(ConfigPath(root))
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("reading config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides values from BIBCLIQUE_* environment variables.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvSensitivity); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvSensitivity, err)
		}
		c.Sensitivity = n
	}
	c.DefaultIDFormat = GetConfigValue(EnvIDFormat, c.DefaultIDFormat)
	return nil
}

// Validate checks values that cannot be repaired by defaults.
func (c *Config) Validate() error {
	if c.Sensitivity < 0 {
		return fmt.Errorf("invalid sensitivity: %d (must not be negative)", c.Sensitivity)
	}
	if c.PersonNameFormat == "" {
		return fmt.Errorf("person_name_format must not be empty")
	}
	return nil
}

// Save writes configuration to the library at the given root.
func (c *Config) Save(root string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(ConfigPath(root), data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// Renderer returns the plain-text renderer described by the configuration.
func (c *Config) Renderer() reference.Renderer {
	return reference.Renderer{
		PersonNameFormat: c.PersonNameFormat,
		BeautifyMonth:    c.BeautifyMonth,
	}
}

// Suggester returns the id suggester for the configured formats.
func (c *Config) Suggester() idsuggest.Suggester {
	return idsuggest.Suggester{
		Formats:       c.IDFormats,
		DefaultFormat: c.DefaultIDFormat,
	}
}

// GetConfigValue returns the environment variable's value if set, otherwise
// fallback.
func GetConfigValue(envKey, fallback string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	return fallback
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, path[1:])
}
