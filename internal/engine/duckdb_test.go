package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peekdb/peek/internal/errs"
)

// newTestClient opens an in-memory client with the bundled samples
// written into a temp directory.
func newTestClient(t *testing.T) (*Client, string) {
	t.Helper()

	dir := t.TempDir()
	_, err := WriteSamples(dir)
	require.NoError(t, err)

	client, err := NewClient("", WithSamplesDir(dir))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return client, dir
}

func TestClient_ScanMetadata_CSV(t *testing.T) {
	client, dir := newTestClient(t)
	ctx := context.Background()

	meta, err := client.ScanMetadata(ctx, filepath.Join(dir, "sample.csv"))
	require.NoError(t, err)

	assert.Equal(t, "sample.csv", meta.FileName)
	assert.EqualValues(t, 5, meta.RowCount)
	assert.Positive(t, meta.FileSize)
	assert.Empty(t, meta.Sheets)
	require.Len(t, meta.Schema, 5)
	assert.Equal(t, "id", meta.Schema[0].Name)
	assert.Equal(t, "name", meta.Schema[1].Name)
}

func TestClient_ScanMetadata_CompressedCSV(t *testing.T) {
	client, dir := newTestClient(t)

	meta, err := client.ScanMetadata(context.Background(), filepath.Join(dir, "sample.csv.gz"))
	require.NoError(t, err)
	assert.EqualValues(t, 5, meta.RowCount)
	require.Len(t, meta.Schema, 5)
}

func TestClient_ScanMetadata_JSONFlavors(t *testing.T) {
	client, dir := newTestClient(t)
	ctx := context.Background()

	for _, name := range []string{"sample.jsonl", "sample.json"} {
		meta, err := client.ScanMetadata(ctx, filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.EqualValues(t, 5, meta.RowCount, name)
		assert.Len(t, meta.Schema, 5, name)
	}
}

func TestClient_ScanMetadata_Arrow(t *testing.T) {
	client, dir := newTestClient(t)

	meta, err := client.ScanMetadata(context.Background(), filepath.Join(dir, "sample.arrow"))
	require.NoError(t, err)
	assert.EqualValues(t, 5, meta.RowCount)
	require.Len(t, meta.Schema, 5)
	assert.Equal(t, "id", meta.Schema[0].Name)
}

func TestClient_ScanMetadata_Unsupported(t *testing.T) {
	client, dir := newTestClient(t)

	path := filepath.Join(dir, "notes.docx")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	_, err := client.ScanMetadata(context.Background(), path)
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindScan))
}

func TestClient_ScanMetadata_MissingFile(t *testing.T) {
	client, dir := newTestClient(t)

	_, err := client.ScanMetadata(context.Background(), filepath.Join(dir, "gone.csv"))
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindScan))
}

func TestClient_Execute(t *testing.T) {
	client, dir := newTestClient(t)
	ctx := context.Background()

	_, err := client.ScanMetadata(ctx, filepath.Join(dir, "sample.csv"))
	require.NoError(t, err)

	result, err := client.Execute(ctx, "SELECT * FROM source ORDER BY id", 1000)
	require.NoError(t, err)

	require.Len(t, result.Columns, 5)
	require.Len(t, result.Rows, 5)
	assert.EqualValues(t, 5, result.RowCount)
	for _, row := range result.Rows {
		assert.Len(t, row, len(result.Columns))
	}
	assert.Equal(t, "alpha", result.Rows[0][1].Display())
}

func TestClient_Execute_CapsMaterializedRows(t *testing.T) {
	client, dir := newTestClient(t)
	ctx := context.Background()

	_, err := client.ScanMetadata(ctx, filepath.Join(dir, "sample.csv"))
	require.NoError(t, err)

	result, err := client.Execute(ctx, "SELECT * FROM source", 2)
	require.NoError(t, err)

	assert.Len(t, result.Rows, 2)
	assert.EqualValues(t, 5, result.RowCount)
}

func TestClient_Execute_BadSQL(t *testing.T) {
	client, dir := newTestClient(t)
	ctx := context.Background()

	_, err := client.ScanMetadata(ctx, filepath.Join(dir, "sample.csv"))
	require.NoError(t, err)

	_, err = client.Execute(ctx, "SELEKT nope", 10)
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindQuery))
}

func TestClient_Workbook_ScanAndSelectSheet(t *testing.T) {
	client, dir := newTestClient(t)
	ctx := context.Background()

	meta, err := client.ScanMetadata(ctx, filepath.Join(dir, "sample.xlsx"))
	require.NoError(t, err)
	require.Equal(t, []string{"Sheet1"}, meta.Sheets)
	assert.Equal(t, "Sheet1", meta.ActiveSheet)
	assert.EqualValues(t, 5, meta.RowCount)

	// Reselecting the active sheet reloads it.
	meta, err = client.SelectSheet(ctx, "Sheet1")
	require.NoError(t, err)
	assert.Equal(t, "Sheet1", meta.ActiveSheet)
	assert.EqualValues(t, 5, meta.RowCount)

	_, err = client.SelectSheet(ctx, "NoSuchSheet")
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindSheet))
}

func TestClient_SelectSheet_NotAWorkbook(t *testing.T) {
	client, dir := newTestClient(t)
	ctx := context.Background()

	_, err := client.ScanMetadata(ctx, filepath.Join(dir, "sample.csv"))
	require.NoError(t, err)

	_, err = client.SelectSheet(ctx, "Sheet1")
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindSheet))
}

func TestClient_SelectSheet_NoFile(t *testing.T) {
	client, _ := newTestClient(t)

	_, err := client.SelectSheet(context.Background(), "Sheet1")
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindSheet))
}

func TestClient_ExportQuery_CSV(t *testing.T) {
	client, dir := newTestClient(t)
	ctx := context.Background()

	_, err := client.ScanMetadata(ctx, filepath.Join(dir, "sample.csv"))
	require.NoError(t, err)

	dest := filepath.Join(t.TempDir(), "out.csv")
	err = client.ExportQuery(ctx, "SELECT id, name FROM source ORDER BY id", dest, ExportCSV)
	require.NoError(t, err)

	raw, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "id,name")
	assert.Contains(t, string(raw), "alpha")
}

func TestClient_ExportQuery_XLSX(t *testing.T) {
	client, dir := newTestClient(t)
	ctx := context.Background()

	_, err := client.ScanMetadata(ctx, filepath.Join(dir, "sample.csv"))
	require.NoError(t, err)

	dest := filepath.Join(t.TempDir(), "out.xlsx")
	err = client.ExportQuery(ctx, "SELECT * FROM source", dest, ExportXLSX)
	require.NoError(t, err)

	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestClient_ExportQuery_UnsupportedFormat(t *testing.T) {
	client, _ := newTestClient(t)

	err := client.ExportQuery(context.Background(), "SELECT 1", "out.bin", ExportFormat("bin"))
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindExport))
}

func TestClient_ResolveSamplePath(t *testing.T) {
	client, dir := newTestClient(t)
	ctx := context.Background()

	path, err := client.ResolveSamplePath(ctx, "sample.csv")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "sample.csv"), path)

	_, err = client.ResolveSamplePath(ctx, "missing.csv")
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindSample))
}

func TestWriteSamples_ListSamples(t *testing.T) {
	dir := t.TempDir()
	written, err := WriteSamples(dir)
	require.NoError(t, err)

	listed, err := ListSamples(dir)
	require.NoError(t, err)
	assert.Equal(t, written, listed)
	assert.Contains(t, listed, "sample.csv")
	assert.Contains(t, listed, "sample.arrow")
	assert.Contains(t, listed, "sample.xlsx")
}
