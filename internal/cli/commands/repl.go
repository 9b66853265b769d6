package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/peekdb/peek/internal/cli/config"
	"github.com/peekdb/peek/internal/session"
)

// NewReplCommand creates the repl command: an interactive SQL prompt over
// a loaded data file.
func NewReplCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "repl [file]",
		Short: "Interactive SQL prompt over a data file",
		Long: `Start an interactive prompt. With a file argument the file is loaded
immediately; otherwise use .open or .sample to load one.

SQL statements end with a semicolon. Dot-commands control the session:
type .help at the prompt for the list.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) > 0 {
				path = args[0]
			}
			return runRepl(cmd, path, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format (table|csv|json|markdown)")
	return cmd
}

func runRepl(cmd *cobra.Command, path, format string) error {
	cfg := config.Current()
	eng, err := newEngine(cmd, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	ctrl := newController(cmd, cfg, eng, nil)
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if path != "" {
		if err := ctrl.LoadFile(ctx, path); err != nil {
			return err
		}
		printFileBanner(out, ctrl)
	}

	historyFile := ""
	if dir, err := os.UserConfigDir(); err == nil {
		historyFile = filepath.Join(dir, "peek", "repl_history")
		_ = os.MkdirAll(filepath.Dir(historyFile), 0o750)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "peek> ",
		HistoryFile:     historyFile,
		AutoComplete:    replCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintln(out, "peek SQL REPL; the active file is queryable as \"source\"")
	_, _ = fmt.Fprintln(out, "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(out)

	var buf strings.Builder
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			buf.Reset()
			rl.SetPrompt("peek> ")
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ".") {
			if quit := handleDotCommand(cmd, ctrl, line, format); quit {
				break
			}
			continue
		}

		buf.WriteString(line)
		if !strings.HasSuffix(line, ";") {
			buf.WriteString(" ")
			rl.SetPrompt("  ...> ")
			continue
		}
		rl.SetPrompt("peek> ")

		query := strings.TrimSuffix(strings.TrimSpace(buf.String()), ";")
		buf.Reset()

		if err := ctrl.Query(ctx, query); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			continue
		}
		state := ctrl.State()
		if err := RenderResult(out, state.Result, format); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
		_, _ = fmt.Fprintln(out)
	}

	return nil
}

// handleDotCommand executes one dot-command; reports whether to quit.
func handleDotCommand(cmd *cobra.Command, ctrl *session.Controller, line, format string) bool {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	errw := cmd.ErrOrStderr()

	parts := strings.Fields(line)
	switch strings.ToLower(parts[0]) {
	case ".quit", ".exit":
		return true

	case ".help":
		printReplHelp(out)

	case ".open":
		if len(parts) < 2 {
			_, _ = fmt.Fprintln(errw, "Usage: .open <path>")
			return false
		}
		if err := ctrl.LoadFile(ctx, parts[1]); err != nil {
			_, _ = fmt.Fprintf(errw, "Error: %v\n", err)
			return false
		}
		printFileBanner(out, ctrl)

	case ".sample":
		if len(parts) < 2 {
			_, _ = fmt.Fprintln(errw, "Usage: .sample <name>")
			return false
		}
		if err := ctrl.LoadSample(ctx, parts[1]); err != nil {
			_, _ = fmt.Fprintf(errw, "Error: %v\n", err)
			return false
		}
		printFileBanner(out, ctrl)

	case ".schema":
		meta := ctrl.State().FileMeta
		if meta == nil {
			_, _ = fmt.Fprintln(errw, "No file loaded")
			return false
		}
		for _, field := range meta.Schema {
			_, _ = fmt.Fprintf(out, "  %-24s %s\n", field.Name, field.DType)
		}

	case ".sheets":
		meta := ctrl.State().FileMeta
		if meta == nil || len(meta.Sheets) == 0 {
			_, _ = fmt.Fprintln(out, "(no sheets)")
			return false
		}
		for _, sheet := range meta.Sheets {
			marker := " "
			if sheet == meta.ActiveSheet {
				marker = "*"
			}
			_, _ = fmt.Fprintf(out, "%s %s\n", marker, sheet)
		}

	case ".sheet":
		if len(parts) < 2 {
			_, _ = fmt.Fprintln(errw, "Usage: .sheet <name>")
			return false
		}
		if err := ctrl.SelectSheet(ctx, parts[1]); err != nil {
			_, _ = fmt.Fprintf(errw, "Error: %v\n", err)
			return false
		}
		// Sheet switch clears the result; re-run a preview explicitly.
		if err := ctrl.Query(ctx, session.DefaultQueryText); err != nil {
			_, _ = fmt.Fprintf(errw, "Error: %v\n", err)
			return false
		}
		_ = RenderResult(out, ctrl.State().Result, format)

	case ".export":
		if len(parts) < 2 {
			_, _ = fmt.Fprintln(errw, "Usage: .export <dest>")
			return false
		}
		exportFormat, err := resolveExportFormat("", parts[1], config.Current())
		if err != nil {
			_, _ = fmt.Fprintf(errw, "Error: %v\n", err)
			return false
		}
		if err := ctrl.Export(ctx, parts[1], exportFormat); err != nil {
			_, _ = fmt.Fprintf(errw, "Error: %v\n", err)
			return false
		}
		_, _ = fmt.Fprintf(out, "Exported to %s\n", parts[1])

	default:
		_, _ = fmt.Fprintf(errw, "Unknown command: %s (type .help for commands)\n", parts[0])
	}
	return false
}

func printFileBanner(w io.Writer, ctrl *session.Controller) {
	meta := ctrl.State().FileMeta
	if meta == nil {
		return
	}
	_, _ = fmt.Fprintf(w, "Loaded %s (%d rows, %d columns)\n", meta.FileName, meta.RowCount, len(meta.Schema))
	if len(meta.Sheets) > 0 {
		_, _ = fmt.Fprintf(w, "Sheets: %s (active: %s)\n", strings.Join(meta.Sheets, ", "), meta.ActiveSheet)
	}
}

func printReplHelp(w io.Writer) {
	help := `
Commands:
  .help           Show this help message
  .open <path>    Load a data file as the active source
  .sample <name>  Load a bundled sample file
  .schema         Show the active file's schema
  .sheets         List workbook sheets
  .sheet <name>   Switch the active sheet
  .export <dest>  Export the current query's result (format from extension)
  .quit / .exit   Exit the REPL

Tips:
  - SQL statements must end with a semicolon (;)
  - The active file is always queryable as "source"
  - Use arrow keys to navigate history
`
	_, _ = fmt.Fprintln(w, help)
}

func replCompleter() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("SELECT"),
		readline.PcItem("FROM"),
		readline.PcItem("source"),
		readline.PcItem(".help"),
		readline.PcItem(".open"),
		readline.PcItem(".sample"),
		readline.PcItem(".schema"),
		readline.PcItem(".sheets"),
		readline.PcItem(".sheet"),
		readline.PcItem(".export"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
}
