package commands

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peekdb/peek/internal/cli/config"
	"github.com/peekdb/peek/internal/engine"
)

func renderFixture() *engine.QueryResult {
	return &engine.QueryResult{
		Columns: []engine.ColumnInfo{
			{Name: "id", DType: "BIGINT"},
			{Name: "name", DType: "VARCHAR"},
		},
		Rows: [][]engine.Value{
			{engine.Number(1), engine.Text("alpha")},
			{engine.Number(2), engine.Null()},
		},
		RowCount: 2,
	}
}

func TestRenderResult_Table(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, RenderResult(&sb, renderFixture(), "table"))

	out := sb.String()
	assert.Contains(t, out, "id")
	assert.Contains(t, out, "alpha")
	assert.Contains(t, out, "NULL")
	assert.Contains(t, out, "(2 rows)")
}

func TestRenderResult_TableCapped(t *testing.T) {
	res := renderFixture()
	res.RowCount = 5000

	var sb strings.Builder
	require.NoError(t, RenderResult(&sb, res, "table"))
	assert.Contains(t, sb.String(), "(2 of 5000 rows)")
}

func TestRenderResult_CSV(t *testing.T) {
	res := renderFixture()
	res.Rows = append(res.Rows, []engine.Value{engine.Number(3), engine.Text(`say "hi", bye`)})

	var sb strings.Builder
	require.NoError(t, RenderResult(&sb, res, "csv"))

	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "id,name", lines[0])
	assert.Equal(t, "1,alpha", lines[1])
	assert.Equal(t, "2,", lines[2])
	assert.Equal(t, `3,"say ""hi"", bye"`, lines[3])
}

func TestRenderResult_JSON(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, RenderResult(&sb, renderFixture(), "json"))

	out := sb.String()
	assert.Contains(t, out, `"id": 1`)
	assert.Contains(t, out, `"name": "alpha"`)
	assert.Contains(t, out, `"name": null`)
}

func TestRenderResult_Markdown(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, RenderResult(&sb, renderFixture(), "markdown"))

	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	require.GreaterOrEqual(t, len(lines), 4)
	assert.Equal(t, "| id | name |", lines[0])
	assert.Equal(t, "| --- | --- |", lines[1])
	assert.Equal(t, "| 1 | alpha |", lines[2])
	assert.Equal(t, "| 2 | NULL |", lines[3])
}

func TestRenderResult_EmptyTable(t *testing.T) {
	res := &engine.QueryResult{Columns: []engine.ColumnInfo{{Name: "id"}}}

	var sb strings.Builder
	require.NoError(t, RenderResult(&sb, res, "table"))
	assert.Equal(t, "(0 rows)\n", sb.String())
}

func TestResolveExportFormat(t *testing.T) {
	cfg := &config.Config{ExportFormat: "csv"}

	format, err := resolveExportFormat("xlsx", "out.bin", cfg)
	require.NoError(t, err)
	assert.Equal(t, engine.ExportXLSX, format)

	format, err = resolveExportFormat("", "out.csv", cfg)
	require.NoError(t, err)
	assert.Equal(t, engine.ExportCSV, format)

	format, err = resolveExportFormat("", "out.XLSX", cfg)
	require.NoError(t, err)
	assert.Equal(t, engine.ExportXLSX, format)

	// No flag, unknown extension: configured default wins.
	format, err = resolveExportFormat("", "out.dat", cfg)
	require.NoError(t, err)
	assert.Equal(t, engine.ExportCSV, format)

	_, err = resolveExportFormat("parquet", "out.parquet", cfg)
	require.Error(t, err)
}
