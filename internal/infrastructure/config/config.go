// Package config provides configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigDir is the directory name for etov configuration.
	DefaultConfigDir = ".etov"
	// DefaultConfigFile is the default config file name.
	DefaultConfigFile = "config.yaml"
	// DefaultHistoryFile is the run history database file name.
	DefaultHistoryFile = "history.db"
)

// Variants of the note format.
const (
	VariantExtended = "extended"
	VariantSimple   = "simple"
)

// ErrNotFound is returned by Load when no config file exists.
var ErrNotFound = errors.New("config file not found")

// Config holds the settings of one vault.
type Config struct {
	Source  SourceConfig  `yaml:"source"`
	Output  OutputConfig  `yaml:"output"`
	Variant string        `yaml:"variant,omitempty"`
	Labels  LabelsConfig  `yaml:"labels,omitempty"`
	Columns ColumnsConfig `yaml:"columns,omitempty"`
	Accords AccordsConfig `yaml:"accords,omitempty"`
	Log     LogConfig     `yaml:"log,omitempty"`
	History HistoryConfig `yaml:"history,omitempty"`
}

// SourceConfig names the workbook and its sheets. Values are used as given.
type SourceConfig struct {
	Path         string `yaml:"path"`
	KeywordSheet string `yaml:"keyword_sheet"`
	AccordSheet  string `yaml:"accord_sheet"`
	Format       string `yaml:"format,omitempty"`
}

// OutputConfig controls where notes are written, relative to the vault root.
type OutputConfig struct {
	Directory     string `yaml:"directory"`
	Layout        string `yaml:"layout,omitempty"`
	PerfumeFolder string `yaml:"perfume_folder,omitempty"`
	AccordFolder  string `yaml:"accord_folder,omitempty"`
}

// LabelsConfig holds the headings of perfume notes.
type LabelsConfig struct {
	Title   string `yaml:"title,omitempty"`
	Brand   string `yaml:"brand,omitempty"`
	Keyword string `yaml:"keyword,omitempty"`
	Accord  string `yaml:"accord,omitempty"`
}

// ColumnsConfig holds 0-indexed column positions for both sheets.
type ColumnsConfig struct {
	Keyword KeywordColumnsConfig `yaml:"keyword"`
	Accord  AccordColumnsConfig  `yaml:"accord"`
}

// KeywordColumnsConfig positions keyword-sheet fields.
type KeywordColumnsConfig struct {
	Key     int `yaml:"key"`
	Brand   int `yaml:"brand"`
	Name    int `yaml:"name"`
	Keyword int `yaml:"keyword"`
}

// AccordColumnsConfig positions accord-sheet fields.
type AccordColumnsConfig struct {
	Key     int `yaml:"key"`
	Name    int `yaml:"name"`
	Accords int `yaml:"accords"`
}

// AccordsConfig controls accord parsing and accord notes.
type AccordsConfig struct {
	DropEmpty  bool   `yaml:"drop_empty"`
	FilePolicy string `yaml:"file_policy,omitempty"`
}

// LogConfig controls the logger.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// HistoryConfig controls the run history database.
type HistoryConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Output: OutputConfig{
			Layout:        "nested",
			PerfumeFolder: "perfume",
			AccordFolder:  "accord",
		},
		Variant: VariantExtended,
		Labels: LabelsConfig{
			Title:   "향수명",
			Brand:   "브랜드",
			Keyword: "키워드",
			Accord:  "어코드",
		},
		Columns: ColumnsConfig{
			Keyword: KeywordColumnsConfig{Key: 0, Brand: 1, Name: 2, Keyword: 3},
			Accord:  AccordColumnsConfig{Key: 0, Name: 2, Accords: 3},
		},
		Accords: AccordsConfig{
			FilePolicy: "create",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		History: HistoryConfig{
			Enabled: true,
		},
	}
}

// Load loads configuration from the .etov directory in the given path and
// applies environment overrides.
func Load(basePath string) (*Config, error) {
	cfg, err := readFile(basePath)
	if err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// LoadFile loads the config file as written, without environment overrides.
func LoadFile(basePath string) (*Config, error) {
	cfg, err := readFile(basePath)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func readFile(basePath string) (*Config, error) {
	configFile := ConfigFilePath(basePath)

	data, err := os.ReadFile(configFile)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s (run 'etov init' first)", ErrNotFound, configFile)
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Start with defaults
	cfg := Default()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("ETOV_SOURCE"); v != "" {
		c.Source.Path = v
	}
	if v := os.Getenv("ETOV_OUTPUT"); v != "" {
		c.Output.Directory = v
	}
}

// Validate checks the structural settings. Source and output strings are
// not checked.
func (c *Config) Validate() error {
	if c.Source.Format != "" {
		if err := oneOf("source.format", c.Source.Format, "xlsx", "csv", "json"); err != nil {
			return err
		}
	}
	if err := oneOf("output.layout", c.Output.Layout, "nested", "flat"); err != nil {
		return err
	}
	if err := oneOf("variant", c.Variant, VariantExtended, VariantSimple); err != nil {
		return err
	}
	if err := oneOf("accords.file_policy", c.Accords.FilePolicy, "create", "skip", "reset"); err != nil {
		return err
	}
	if err := oneOf("log.level", c.Log.Level, "debug", "info", "warn", "error"); err != nil {
		return err
	}
	return oneOf("log.format", c.Log.Format, "console", "json")
}

func oneOf(field, value string, valid ...string) error {
	for _, v := range valid {
		if value == v {
			return nil
		}
	}
	return fmt.Errorf("%s: invalid value %q (valid: %v)", field, value, valid)
}

// ConfigDir returns the path to the .etov config directory.
func ConfigDir(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir)
}

// ConfigFilePath returns the path to the config file.
func ConfigFilePath(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir, DefaultConfigFile)
}

// HistoryPath returns the path to the run history database.
func HistoryPath(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir, DefaultHistoryFile)
}
