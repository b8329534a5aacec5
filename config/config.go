// Package config loads the nanoform configuration through Viper: defaults,
// then TOML files (system, user, project — found by walking up from the
// working directory), then NANOFORM_* environment variables.
package config

// Config is the full nanoform configuration.
type Config struct {
	Database Database `mapstructure:"database"`
	Batch    Batch    `mapstructure:"batch"`
	KB       KB       `mapstructure:"kb"`
	Output   Output   `mapstructure:"output"`
}

// Database configures the SQLite store.
type Database struct {
	Path string `mapstructure:"path"`
}

// Batch configures the JSONL evaluation pipeline.
type Batch struct {
	Workers int `mapstructure:"workers"` // bounded worker pool size (default: 4)
	Limit   int `mapstructure:"limit"`   // 0 = process every input record
}

// KB points at external rule tables. Empty paths fall back to the embedded
// knowledge bases.
type KB struct {
	TablePath string `mapstructure:"table_path"`
	Watch     bool   `mapstructure:"watch"` // hot-rebuild on table edits
}

// Output configures report rendering.
type Output struct {
	JSON  bool   `mapstructure:"json"`  // machine-readable logs and results
	Theme string `mapstructure:"theme"` // terminal color theme
}
