package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/peekdb/peek/internal/cli/config"
	"github.com/peekdb/peek/internal/engine"
)

// NewSamplesCommand creates the samples command group.
func NewSamplesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "samples",
		Short: "Manage bundled sample files",
	}
	cmd.AddCommand(newSamplesInitCommand())
	cmd.AddCommand(newSamplesListCommand())
	return cmd
}

func newSamplesInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init [dir]",
		Short: "Write the bundled sample files",
		Long: `Write the demo dataset in every supported format (CSV, gzip CSV,
JSON, JSONL, Arrow, XLSX) into the samples directory, or into dir when
given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) > 0 {
				dir = args[0]
			} else {
				var err error
				dir, err = resolveSamplesDir(config.Current())
				if err != nil {
					return err
				}
			}

			names, err := engine.WriteSamples(dir)
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", name)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d sample files to %s\n", len(names), dir)
			return nil
		},
	}
}

func newSamplesListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available sample files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, err := resolveSamplesDir(config.Current())
			if err != nil {
				return err
			}

			names, err := engine.ListSamples(dir)
			if err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "No samples found; run \"peek samples init\" first\n")
				return nil
			}
			for _, name := range names {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", name)
			}
			return nil
		},
	}
}
