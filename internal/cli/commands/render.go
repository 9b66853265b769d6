package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/peekdb/peek/internal/engine"
)

// nullMarker is how NULL cells render in text output.
const nullMarker = "NULL"

// RenderResult writes res to w in the requested format: table (default),
// csv, json, or markdown.
func RenderResult(w io.Writer, res *engine.QueryResult, format string) error {
	switch format {
	case "json":
		return renderJSON(w, res)
	case "csv":
		return renderCSV(w, res)
	case "md", "markdown":
		return renderMarkdown(w, res)
	default:
		return renderTable(w, res)
	}
}

func renderTable(w io.Writer, res *engine.QueryResult) error {
	if len(res.Rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	headerRow := make(table.Row, len(res.Columns))
	for i, col := range res.Columns {
		headerRow[i] = col.Name
	}
	t.AppendHeader(headerRow)

	for _, row := range res.Rows {
		out := make(table.Row, len(row))
		for i, v := range row {
			out[i] = v.DisplayOr(nullMarker)
		}
		t.AppendRow(out)
	}

	t.Render()
	_, _ = fmt.Fprintln(w, rowSummary(res))
	return nil
}

func renderJSON(w io.Writer, res *engine.QueryResult) error {
	out := make([]map[string]any, len(res.Rows))
	for i, row := range res.Rows {
		obj := make(map[string]any, len(res.Columns))
		for j, col := range res.Columns {
			obj[col.Name] = row[j].JSON()
		}
		out[i] = obj
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func renderCSV(w io.Writer, res *engine.QueryResult) error {
	names := make([]string, len(res.Columns))
	for i, col := range res.Columns {
		names[i] = col.Name
	}
	_, _ = fmt.Fprintln(w, strings.Join(names, ","))

	for _, row := range res.Rows {
		values := make([]string, len(row))
		for i, v := range row {
			values[i] = escapeCSV(v.Display())
		}
		_, _ = fmt.Fprintln(w, strings.Join(values, ","))
	}
	return nil
}

func renderMarkdown(w io.Writer, res *engine.QueryResult) error {
	if len(res.Rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	names := make([]string, len(res.Columns))
	seps := make([]string, len(res.Columns))
	for i, col := range res.Columns {
		names[i] = col.Name
		seps[i] = "---"
	}
	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(names, " | "))
	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(seps, " | "))

	for _, row := range res.Rows {
		values := make([]string, len(row))
		for i, v := range row {
			values[i] = v.DisplayOr(nullMarker)
		}
		_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(values, " | "))
	}
	return nil
}

// rowSummary notes when the engine-side total exceeds what was materialized.
func rowSummary(res *engine.QueryResult) string {
	if int64(len(res.Rows)) < res.RowCount {
		return fmt.Sprintf("(%d of %d rows)", len(res.Rows), res.RowCount)
	}
	return fmt.Sprintf("(%d rows)", len(res.Rows))
}

func escapeCSV(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
