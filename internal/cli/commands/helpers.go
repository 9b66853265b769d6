// Package commands implements the peek subcommands.
package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/peekdb/peek/internal/cli/config"
	"github.com/peekdb/peek/internal/engine"
	"github.com/peekdb/peek/internal/notify"
	"github.com/peekdb/peek/internal/session"
)

// resolveSamplesDir returns the configured samples directory, defaulting to
// a peek subdirectory of the user config dir.
func resolveSamplesDir(cfg *config.Config) (string, error) {
	if cfg.SamplesDir != "" {
		return cfg.SamplesDir, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine samples directory: %w", err)
	}
	return filepath.Join(dir, "peek", "samples"), nil
}

// newEngine opens the DuckDB client for the current configuration.
func newEngine(cmd *cobra.Command, cfg *config.Config) (*engine.Client, error) {
	samplesDir, err := resolveSamplesDir(cfg)
	if err != nil {
		return nil, err
	}
	return engine.NewClient(cfg.Database,
		engine.WithLogger(config.GetLogger(cmd.Context())),
		engine.WithSamplesDir(samplesDir),
	)
}

// newController wires a session controller over eng for one-shot commands.
// Notifications go to the hub; CLI paths drain it into stderr as they run.
func newController(cmd *cobra.Command, cfg *config.Config, eng engine.Engine, hub *notify.Hub) *session.Controller {
	return session.NewController(eng, hub,
		session.WithLogger(config.GetLogger(cmd.Context())),
		session.WithMaxRows(cfg.MaxRows),
	)
}
