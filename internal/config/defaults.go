package config

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Path:       "~/.config/punch",
			SQLiteFile: "punch.db",
		},
		Display: DisplayConfig{
			DatetimeFormat: "2006-01-02 15:04",
		},
	}
}
