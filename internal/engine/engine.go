// Package engine provides the data engine boundary: scanning files into a
// queryable `source` dataset, executing SQL against it, and exporting
// results. The DuckDB-backed Client is the production implementation; the
// session layer depends only on the Engine interface.
package engine

import "context"

// ExportFormat selects the output format for ExportQuery.
type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportXLSX ExportFormat = "xlsx"
)

// FieldInfo describes one schema column.
type FieldInfo struct {
	Name  string `json:"name"`
	DType string `json:"dtype"`
}

// FileMetadata describes the active source file. It is replaced wholesale
// by each successful scan or sheet selection.
type FileMetadata struct {
	FileName    string      `json:"file_name"`
	FilePath    string      `json:"file_path"`
	FileSize    int64       `json:"file_size"`
	RowCount    int64       `json:"row_count"`
	Schema      []FieldInfo `json:"schema"`
	Sheets      []string    `json:"sheets"`
	ActiveSheet string      `json:"active_sheet,omitempty"`
}

// ColumnInfo describes one result column; slice order defines grid order.
type ColumnInfo struct {
	Name  string `json:"name"`
	DType string `json:"dtype"`
}

// QueryResult holds an executed query's columns and materialized rows.
// Every row has exactly len(Columns) values. RowCount is the engine-side
// total and may exceed len(Rows) when the materialization cap applied.
type QueryResult struct {
	Columns  []ColumnInfo `json:"columns"`
	Rows     [][]Value    `json:"rows"`
	RowCount int64        `json:"row_count"`
}

// Engine is the abstract command interface to the data engine. All calls
// are fallible and respect ctx; none are cancelled once issued by the core.
type Engine interface {
	// ScanMetadata loads the file at path as the active `source` dataset
	// and returns its metadata. Fails with a scan error for unreadable or
	// unsupported files.
	ScanMetadata(ctx context.Context, path string) (*FileMetadata, error)

	// Execute runs sql against the active dataset, materializing at most
	// maxRows rows (maxRows <= 0 means no cap). The returned RowCount is
	// the uncapped total.
	Execute(ctx context.Context, sql string, maxRows int) (*QueryResult, error)

	// SelectSheet switches the active workbook sheet and returns fresh
	// metadata. Fails with a sheet error when no workbook is active or the
	// sheet name is unknown.
	SelectSheet(ctx context.Context, sheet string) (*FileMetadata, error)

	// ExportQuery runs sql and writes the full result to destPath.
	ExportQuery(ctx context.Context, sql, destPath string, format ExportFormat) error

	// ResolveSamplePath resolves a bundled sample name to a loadable path.
	ResolveSamplePath(ctx context.Context, name string) (string, error)

	// Close releases the underlying database.
	Close() error
}
