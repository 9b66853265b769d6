// Package cli provides the command-line interface for peek.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/peekdb/peek/internal/cli/commands"
	"github.com/peekdb/peek/internal/cli/config"
)

var cfgFile string

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "peek [file]",
		Short: "peek - explore structured data files with SQL",
		Long: `peek opens large structured data files (Parquet, CSV, JSON, Arrow,
spreadsheets) and explores them with SQL against a single active dataset
named "source".

Run with a file argument to open the interactive viewer, or use the
subcommands for one-shot queries and a REPL.`,
		Version: Version,
		Args:    cobra.MaximumNArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, used, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			level := slog.LevelWarn
			if cfg.Verbose {
				level = slog.LevelDebug
			}
			log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			cmd.SetContext(config.WithLogger(cmd.Context(), log))

			if cfg.Verbose && used != "" {
				fmt.Fprintf(os.Stderr, "Using config file: %s\n", used)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) > 0 {
				path = args[0]
			}
			return commands.RunOpen(cmd, path)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
Built with Go and DuckDB
`)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./peek.yaml)")
	rootCmd.PersistentFlags().String("theme", "", "color theme (dark|light)")
	rootCmd.PersistentFlags().String("locale", "", "locale for result collation (BCP 47 tag)")
	rootCmd.PersistentFlags().String("samples-dir", "", "directory holding bundled sample files")
	rootCmd.PersistentFlags().String("drop-dir", "", "inbox directory watched for dropped files")
	rootCmd.PersistentFlags().Int("max-rows", config.DefaultMaxRows, "rows materialized per query")
	rootCmd.PersistentFlags().String("database", "", "DuckDB database path (empty for in-memory)")
	rootCmd.PersistentFlags().String("export-format", "", "default export format (csv|xlsx)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")

	_ = rootCmd.RegisterFlagCompletionFunc("theme", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"dark", "light"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("export-format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"csv", "xlsx"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(commands.NewOpenCommand())
	rootCmd.AddCommand(commands.NewQueryCommand())
	rootCmd.AddCommand(commands.NewReplCommand())
	rootCmd.AddCommand(commands.NewExportCommand())
	rootCmd.AddCommand(commands.NewSamplesCommand())
	rootCmd.AddCommand(commands.NewVersionCommand(Version))

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
