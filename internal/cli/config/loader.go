package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// ConfigFileName is the primary config file name.
const ConfigFileName = "peek.yaml"

// ConfigFileNameAlt is the alternate config file name.
const ConfigFileNameAlt = "peek.yml"

// envPrefix namespaces environment overrides, e.g. PEEK_THEME=light.
const envPrefix = "PEEK_"

// Package-level config tracking, set by Load.
var (
	currentConfig  *Config
	configFileUsed string
)

// loggerKey stores the logger in command contexts.
type loggerKey struct{}

// Current returns the most recently loaded configuration, or defaults when
// Load has not run.
func Current() *Config {
	if currentConfig != nil {
		return currentConfig
	}
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// FileUsed returns the path of the config file Load read, if any.
func FileUsed() string { return configFileUsed }

// WithLogger stores the logger in ctx.
func WithLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, log)
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}

// findConfigFile finds the config file to use.
// Priority: explicit path > ./peek.yaml > ./peek.yml > user config dir.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{ConfigFileName, ConfigFileNameAlt} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	if dir, err := os.UserConfigDir(); err == nil {
		candidate := filepath.Join(dir, "peek", ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// DefaultConfigPath is where Save writes when no config file was loaded.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "peek", ConfigFileName), nil
}

// Load resolves configuration from file, environment, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults.
// The returned path is the config file used, empty when none was found.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, string, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]interface{}{
		"theme":         DefaultTheme,
		"locale":        DefaultLocale,
		"max_rows":      DefaultMaxRows,
		"export_format": DefaultExportFormat,
		"verbose":       false,
	}, "."), nil); err != nil {
		return nil, "", fmt.Errorf("failed to load defaults: %w", err)
	}

	used := findConfigFile(cfgFile)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, "", fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// PEEK_MAX_ROWS -> max_rows
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, "", fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			// kebab-case flags map to snake_case config keys
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, "", fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, "", fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.ApplyDefaults()

	currentConfig = &cfg
	configFileUsed = used
	return &cfg, used, nil
}

// Save writes cfg back to path, creating parent directories as needed.
// Pass the path returned by Load, or empty to use the default location.
func Save(cfg *Config, path string) error {
	if path == "" {
		var err error
		path, err = DefaultConfigPath()
		if err != nil {
			return fmt.Errorf("cannot determine config path: %w", err)
		}
	}

	out, err := yaml.Parser().Marshal(map[string]interface{}{
		"theme":         cfg.Theme,
		"locale":        cfg.Locale,
		"samples_dir":   cfg.SamplesDir,
		"drop_dir":      cfg.DropDir,
		"max_rows":      cfg.MaxRows,
		"export_format": cfg.ExportFormat,
		"database":      cfg.Database,
		"verbose":       cfg.Verbose,
	})
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return os.WriteFile(path, out, 0o600)
}
