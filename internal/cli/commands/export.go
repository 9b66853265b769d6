package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/peekdb/peek/internal/cli/config"
	"github.com/peekdb/peek/internal/engine"
	"github.com/peekdb/peek/internal/errs"
	"github.com/peekdb/peek/internal/session"
)

// NewExportCommand creates the export command: load a file, run a query,
// and write the full (uncapped) result to disk.
func NewExportCommand() *cobra.Command {
	var (
		sqlText string
		format  string
		sheet   string
	)

	cmd := &cobra.Command{
		Use:   "export <file> <dest>",
		Short: "Export a query result to CSV or XLSX",
		Long: `Load a data file, run a SQL query against it, and write the complete
result to dest. The format is taken from --format, or inferred from the
destination extension when unset.

Examples:
  peek export data.parquet out.csv --sql "SELECT * FROM source WHERE score > 90"
  peek export book.xlsx report.xlsx --sheet Expenses`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Current()
			eng, err := newEngine(cmd, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = eng.Close() }()

			ctrl := newController(cmd, cfg, eng, nil)
			ctx := cmd.Context()

			if err := ctrl.LoadFile(ctx, args[0]); err != nil {
				return err
			}
			if sheet != "" {
				if err := ctrl.SelectSheet(ctx, sheet); err != nil {
					return err
				}
			}
			ctrl.SetQueryText(sqlText)

			exportFormat, err := resolveExportFormat(format, args[1], cfg)
			if err != nil {
				return err
			}
			if err := ctrl.Export(ctx, args[1], exportFormat); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", args[1])
			return nil
		},
	}

	cmd.Flags().StringVarP(&sqlText, "sql", "q", session.DefaultQueryText, "SQL to export")
	cmd.Flags().StringVarP(&format, "format", "f", "", "export format (csv|xlsx)")
	cmd.Flags().StringVar(&sheet, "sheet", "", "workbook sheet to select before exporting")
	return cmd
}

// resolveExportFormat picks the format from the flag, the destination
// extension, or the configured default, in that order.
func resolveExportFormat(flag, dest string, cfg *config.Config) (engine.ExportFormat, error) {
	name := flag
	if name == "" {
		switch strings.ToLower(filepath.Ext(dest)) {
		case ".csv":
			name = "csv"
		case ".xlsx":
			name = "xlsx"
		default:
			name = cfg.ExportFormat
		}
	}

	switch name {
	case "csv":
		return engine.ExportCSV, nil
	case "xlsx":
		return engine.ExportXLSX, nil
	default:
		return "", errs.Newf(errs.KindExport, "unsupported export format %q", name)
	}
}
