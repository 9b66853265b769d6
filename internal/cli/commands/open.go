package commands

import (
	"github.com/spf13/cobra"

	"github.com/peekdb/peek/internal/cli/config"
	"github.com/peekdb/peek/internal/dropzone"
	"github.com/peekdb/peek/internal/grid"
	"github.com/peekdb/peek/internal/notify"
	"github.com/peekdb/peek/internal/tui"
)

// NewOpenCommand creates the open command, the interactive viewer. Running
// peek with a bare file argument does the same thing.
func NewOpenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "open [file]",
		Short: "Open the interactive data viewer",
		Long: `Open the interactive viewer. With a file argument the file is loaded
immediately; without one, drop a file into the drop directory or pick a
bundled sample to get started.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) > 0 {
				path = args[0]
			}
			return RunOpen(cmd, path)
		},
	}
}

// RunOpen launches the TUI, optionally loading path first.
func RunOpen(cmd *cobra.Command, path string) error {
	cfg := config.Current()
	log := config.GetLogger(cmd.Context())

	eng, err := newEngine(cmd, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	hub := notify.NewHub()
	ctrl := newController(cmd, cfg, eng, hub)
	gridModel := grid.NewModel(cfg.Locale)

	bridge, err := dropzone.New(cfg.DropDir, dropzone.WithLogger(log))
	if err != nil {
		return err
	}
	defer func() { _ = bridge.Close() }()

	return tui.Run(cmd.Context(), tui.Options{
		Controller:  ctrl,
		Grid:        gridModel,
		Hub:         hub,
		Bridge:      bridge,
		Config:      cfg,
		ConfigPath:  config.FileUsed(),
		Logger:      log,
		InitialPath: path,
	})
}
