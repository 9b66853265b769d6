package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/peekdb/peek/internal/cli/config"
	"github.com/peekdb/peek/internal/session"
)

// QueryOptions holds query command flags.
type QueryOptions struct {
	SQL    string
	Format string
	Sheet  string
}

// NewQueryCommand creates the query command: load a file, run one SQL
// statement, and print the result.
func NewQueryCommand() *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query <file>",
		Short: "Run a one-shot SQL query against a data file",
		Long: `Load a data file as the "source" dataset and run a single SQL query
against it, printing the result to stdout.

Examples:
  peek query data.parquet
  peek query data.csv --sql "SELECT count(*) FROM source"
  peek query book.xlsx --sheet Expenses --sql "SELECT * FROM source LIMIT 10" --format csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.SQL, "sql", "q", session.DefaultQueryText, "SQL to execute")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "table", "output format (table|csv|json|markdown)")
	cmd.Flags().StringVar(&opts.Sheet, "sheet", "", "workbook sheet to select before querying")
	return cmd
}

func runQuery(cmd *cobra.Command, path string, opts *QueryOptions) error {
	cfg := config.Current()
	eng, err := newEngine(cmd, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	ctrl := newController(cmd, cfg, eng, nil)
	ctx := cmd.Context()

	if err := ctrl.LoadFile(ctx, path); err != nil {
		return err
	}
	if opts.Sheet != "" {
		if err := ctrl.SelectSheet(ctx, opts.Sheet); err != nil {
			return err
		}
	}
	if err := ctrl.Query(ctx, opts.SQL); err != nil {
		return err
	}

	state := ctrl.State()
	if err := RenderResult(cmd.OutOrStdout(), state.Result, opts.Format); err != nil {
		return err
	}
	if cfg.Verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "query took %s\n", state.LastQueryDuration)
	}
	return nil
}
