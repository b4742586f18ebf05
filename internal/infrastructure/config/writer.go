package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// DefaultConfigYAML is the default configuration content.
const DefaultConfigYAML = `# etov configuration

source:
  path: ""           # workbook (.xlsx, .json, or a folder of <sheet>.csv files)
  keyword_sheet: ""
  accord_sheet: ""
  format: ""         # xlsx | csv | json; empty picks the reader from the path

output:
  directory: ""      # relative to this vault
  layout: nested     # nested | flat
  perfume_folder: perfume
  accord_folder: accord

variant: extended    # extended | simple (no accords)

accords:
  drop_empty: false
  file_policy: create  # create | skip | reset

log:
  level: info
  format: console

history:
  enabled: true
`

// settableKeys maps `etov config set` keys to the fields they update.
var settableKeys = map[string]func(*Config, string){
	"source.path":          func(c *Config, v string) { c.Source.Path = v },
	"source.keyword_sheet": func(c *Config, v string) { c.Source.KeywordSheet = v },
	"source.accord_sheet":  func(c *Config, v string) { c.Source.AccordSheet = v },
	"source.format":        func(c *Config, v string) { c.Source.Format = v },
	"output.directory":     func(c *Config, v string) { c.Output.Directory = v },
}

// SettableKeys returns the keys accepted by Set, sorted.
func SettableKeys() []string {
	keys := make([]string, 0, len(settableKeys))
	for k := range settableKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set updates one plain setting.
func (c *Config) Set(key, value string) error {
	fn, ok := settableKeys[key]
	if !ok {
		return fmt.Errorf("unknown setting %q (valid: %v)", key, SettableKeys())
	}
	fn(c, value)
	return nil
}

// WriteDefault creates the .etov directory and writes a default config file.
func WriteDefault(basePath string) error {
	configDir := ConfigDir(basePath)
	configFile := ConfigFilePath(basePath)

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists: %s", configFile)
	}

	if err := os.WriteFile(configFile, []byte(DefaultConfigYAML), 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// Write writes the given config to the config file.
func Write(basePath string, cfg *Config) error {
	configDir := filepath.Join(basePath, DefaultConfigDir)

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(ConfigFilePath(basePath), data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// Exists checks if an etov config exists in the given path.
func Exists(basePath string) bool {
	_, err := os.Stat(ConfigFilePath(basePath))
	return err == nil
}
