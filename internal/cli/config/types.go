// Package config provides the process-wide configuration: theme, locale,
// directories, and query limits. It is loaded once at startup and saved
// back when a persisted setting (theme) changes; the session core never
// depends on it.
package config

// Default configuration values.
const (
	DefaultTheme        = "dark"
	DefaultLocale       = "en"
	DefaultMaxRows      = 1000
	DefaultExportFormat = "csv"
)

// Config holds the resolved configuration.
type Config struct {
	// Theme selects the color theme ("dark" or "light"). Persisted when
	// toggled in the TUI.
	Theme string `koanf:"theme"`

	// Locale is the BCP 47 tag used for result collation.
	Locale string `koanf:"locale"`

	// SamplesDir holds the bundled sample files.
	SamplesDir string `koanf:"samples_dir"`

	// DropDir is the inbox directory watched for dropped files. Empty
	// disables the watcher.
	DropDir string `koanf:"drop_dir"`

	// MaxRows caps how many rows a query materializes for display.
	MaxRows int `koanf:"max_rows"`

	// ExportFormat is the default export format ("csv" or "xlsx").
	ExportFormat string `koanf:"export_format"`

	// Database is the DuckDB database path; empty means in-memory.
	Database string `koanf:"database"`

	// Verbose enables debug logging.
	Verbose bool `koanf:"verbose"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Theme == "" {
		c.Theme = DefaultTheme
	}
	if c.Locale == "" {
		c.Locale = DefaultLocale
	}
	if c.MaxRows <= 0 {
		c.MaxRows = DefaultMaxRows
	}
	if c.ExportFormat == "" {
		c.ExportFormat = DefaultExportFormat
	}
}
