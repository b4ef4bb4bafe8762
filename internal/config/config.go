package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Default config file path.
const DefaultConfigPath = "~/.config/punch/config.yaml"

// Config holds all punch configuration.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Display DisplayConfig `yaml:"display"`
}

type StorageConfig struct {
	Path       string `yaml:"path"`
	SQLiteFile string `yaml:"sqlite_file"`
}

type DisplayConfig struct {
	// DatetimeFormat is a Go reference-time layout used when printing
	// absolute timestamps and when parsing --at/--from/--to arguments.
	DatetimeFormat string `yaml:"datetime_format"`
}

// Load reads a YAML config file at path and merges it with defaults.
// Returns an error if the file cannot be read or contains invalid YAML.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// A config file may clear individual fields; fall back to defaults so
	// the rest of the program never sees empty layout strings.
	if cfg.Display.DatetimeFormat == "" {
		cfg.Display.DatetimeFormat = DefaultConfig().Display.DatetimeFormat
	}
	if cfg.Storage.SQLiteFile == "" {
		cfg.Storage.SQLiteFile = DefaultConfig().Storage.SQLiteFile
	}

	return cfg, nil
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) (string, error) {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

// LoadOrCreate loads the config from the default path. If the file does
// not exist, it creates the directory structure and writes defaults.
func LoadOrCreate() (*Config, error) {
	path, err := expandPath(DefaultConfigPath)
	if err != nil {
		return nil, err
	}
	return LoadOrCreateAt(path)
}

// LoadOrCreateAt loads the config from the given path. If the file does
// not exist, it creates the directory structure and writes defaults.
func LoadOrCreateAt(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()

		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating config directory: %w", err)
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("marshaling default config: %w", err)
		}

		if err := os.WriteFile(path, data, 0644); err != nil {
			return nil, fmt.Errorf("writing default config: %w", err)
		}

		return cfg, nil
	}

	return Load(path)
}

// DatabasePath resolves the full path of the SQLite database file.
func (c *Config) DatabasePath() (string, error) {
	dir, err := expandPath(c.Storage.Path)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, c.Storage.SQLiteFile), nil
}
