package engine

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver

	"github.com/peekdb/peek/internal/errs"
)

// SourceName is the table name every loaded file is queryable under.
const SourceName = "source"

// Client is the DuckDB-backed Engine implementation. A single in-memory
// database holds the active `source` dataset; each scan replaces it.
type Client struct {
	db         *sql.DB
	log        *slog.Logger
	samplesDir string

	mu          sync.Mutex
	filePath    string
	spec        FileSpec
	sheets      []string
	activeSheet string
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the client logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithSamplesDir sets the directory sample names resolve against.
func WithSamplesDir(dir string) Option {
	return func(c *Client) { c.samplesDir = dir }
}

// NewClient opens a DuckDB database. An empty path opens an in-memory
// database, which is the normal mode for interactive sessions.
func NewClient(dbPath string, opts ...Option) (*Client, error) {
	if dbPath == "" {
		dbPath = ":memory:"
	}
	db, err := sql.Open("duckdb", dbPathArg(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping duckdb: %w", err)
	}

	c := &Client{
		db:  db,
		log: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func dbPathArg(p string) string {
	if p == ":memory:" {
		return ""
	}
	return p
}

// Close releases the database.
func (c *Client) Close() error {
	return c.db.Close()
}

// ScanMetadata implements Engine.
func (c *Client) ScanMetadata(ctx context.Context, path string) (*FileMetadata, error) {
	spec, err := DetectFileKind(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, errs.Wrapf(err, errs.KindScan, "cannot read %s", filepath.Base(path))
	}

	var sheets []string
	activeSheet := ""

	switch spec.Kind {
	case KindWorkbook:
		sheets, activeSheet, err = c.loadWorkbook(ctx, path, "")
	case KindArrow:
		err = c.loadArrow(ctx, path)
	default:
		err = c.registerScanView(ctx, path, spec)
	}
	if err != nil {
		return nil, err
	}

	meta, err := c.describeSource(ctx, path, info.Size())
	if err != nil {
		return nil, err
	}
	meta.Sheets = sheets
	meta.ActiveSheet = activeSheet

	c.mu.Lock()
	c.filePath = path
	c.spec = spec
	c.sheets = sheets
	c.activeSheet = activeSheet
	c.mu.Unlock()

	c.log.Debug("scanned source file",
		"path", path, "kind", spec.Kind.String(), "rows", meta.RowCount)
	return meta, nil
}

// registerScanView points the source view at one of DuckDB's file readers.
// DuckDB decompresses gzip itself, so compressed variants only need the
// compression hint when the .gz suffix is missing.
func (c *Client) registerScanView(ctx context.Context, path string, spec FileSpec) error {
	compression := ""
	if spec.Compressed && !strings.HasSuffix(strings.ToLower(path), ".gz") {
		compression = ", compression='gzip'"
	}

	var reader string
	switch spec.Kind {
	case KindParquet:
		reader = fmt.Sprintf("read_parquet(%s)", sqlString(path))
	case KindCSV:
		delim := ""
		if spec.Extension == "tsv" {
			delim = ", delim='\t'"
		}
		reader = fmt.Sprintf("read_csv_auto(%s, header=true%s%s)", sqlString(path), delim, compression)
	case KindJSONLines:
		reader = fmt.Sprintf("read_json_auto(%s, format='newline_delimited'%s)", sqlString(path), compression)
	case KindJSON:
		reader = fmt.Sprintf("read_json_auto(%s, format='array'%s)", sqlString(path), compression)
	default:
		return errs.Newf(errs.KindScan, "no reader for %s files", spec.Kind)
	}

	// A previous workbook/arrow scan may have left a table behind.
	if err := c.dropSource(ctx); err != nil {
		return errs.Wrap(err, errs.KindScan, "failed to reset source")
	}
	stmt := fmt.Sprintf("CREATE VIEW %s AS SELECT * FROM %s", SourceName, reader)
	if _, err := c.db.ExecContext(ctx, stmt); err != nil {
		return errs.Wrapf(err, errs.KindScan, "failed to scan %s", filepath.Base(path))
	}
	return nil
}

// describeSource reads the source schema and row count into FileMetadata.
func (c *Client) describeSource(ctx context.Context, path string, size int64) (*FileMetadata, error) {
	rows, err := c.db.QueryContext(ctx, fmt.Sprintf("DESCRIBE %s", SourceName))
	if err != nil {
		return nil, errs.Wrap(err, errs.KindScan, "failed to describe source")
	}
	defer func() { _ = rows.Close() }()

	var schema []FieldInfo
	for rows.Next() {
		var name, dtype string
		var null, key, dflt, extra sql.NullString
		if err := rows.Scan(&name, &dtype, &null, &key, &dflt, &extra); err != nil {
			return nil, errs.Wrap(err, errs.KindScan, "failed to read source schema")
		}
		schema = append(schema, FieldInfo{Name: name, DType: dtype})
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(err, errs.KindScan, "failed to read source schema")
	}

	var rowCount int64
	countStmt := fmt.Sprintf("SELECT count(*) FROM %s", SourceName)
	if err := c.db.QueryRowContext(ctx, countStmt).Scan(&rowCount); err != nil {
		// Row count is informational; a failed count does not fail the scan.
		rowCount = 0
	}

	return &FileMetadata{
		FileName: filepath.Base(path),
		FilePath: path,
		FileSize: size,
		RowCount: rowCount,
		Schema:   schema,
	}, nil
}

// Execute implements Engine. At most maxRows rows are materialized; the
// remainder is drained so RowCount still reports the uncapped total.
func (c *Client) Execute(ctx context.Context, query string, maxRows int) (*QueryResult, error) {
	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errs.Wrap(err, errs.KindQuery, "query failed")
	}
	defer func() { _ = rows.Close() }()

	names, err := rows.Columns()
	if err != nil {
		return nil, errs.Wrap(err, errs.KindQuery, "failed to read result columns")
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, errs.Wrap(err, errs.KindQuery, "failed to read result column types")
	}

	columns := make([]ColumnInfo, len(names))
	for i, name := range names {
		columns[i] = ColumnInfo{Name: name, DType: types[i].DatabaseTypeName()}
	}

	result := &QueryResult{Columns: columns}
	raw := make([]any, len(names))
	ptrs := make([]any, len(names))
	for i := range raw {
		ptrs[i] = &raw[i]
	}

	for rows.Next() {
		result.RowCount++
		if maxRows > 0 && len(result.Rows) >= maxRows {
			// Keep counting without materializing.
			continue
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, errs.Wrap(err, errs.KindQuery, "failed to scan result row")
		}
		row := make([]Value, len(names))
		for i, v := range raw {
			row[i] = FromDriver(v)
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(err, errs.KindQuery, "query failed")
	}

	return result, nil
}

// SelectSheet implements Engine. Only workbook sources have sheets.
func (c *Client) SelectSheet(ctx context.Context, sheet string) (*FileMetadata, error) {
	c.mu.Lock()
	path := c.filePath
	kind := c.spec.Kind
	c.mu.Unlock()

	if path == "" {
		return nil, errs.New(errs.KindSheet, "no file loaded")
	}
	if kind != KindWorkbook {
		return nil, errs.New(errs.KindSheet, "current file is not a workbook")
	}

	sheets, active, err := c.loadWorkbook(ctx, path, sheet)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, errs.Wrapf(err, errs.KindSheet, "cannot read %s", filepath.Base(path))
	}
	meta, err := c.describeSource(ctx, path, info.Size())
	if err != nil {
		return nil, err
	}
	meta.Sheets = sheets
	meta.ActiveSheet = active

	c.mu.Lock()
	c.sheets = sheets
	c.activeSheet = active
	c.mu.Unlock()

	return meta, nil
}

// ExportQuery implements Engine.
func (c *Client) ExportQuery(ctx context.Context, query, destPath string, format ExportFormat) error {
	switch format {
	case ExportCSV:
		stmt := fmt.Sprintf("COPY (%s) TO %s (FORMAT CSV, HEADER)", query, sqlString(destPath))
		if _, err := c.db.ExecContext(ctx, stmt); err != nil {
			return errs.Wrapf(err, errs.KindExport, "csv export to %s failed", filepath.Base(destPath))
		}
		return nil
	case ExportXLSX:
		result, err := c.Execute(ctx, query, 0)
		if err != nil {
			return errs.Wrap(err, errs.KindExport, "export query failed")
		}
		if err := writeWorkbook(destPath, result); err != nil {
			return errs.Wrapf(err, errs.KindExport, "xlsx export to %s failed", filepath.Base(destPath))
		}
		return nil
	default:
		return errs.Newf(errs.KindExport, "unsupported export format: %s", format)
	}
}

// ResolveSamplePath implements Engine.
func (c *Client) ResolveSamplePath(_ context.Context, name string) (string, error) {
	if c.samplesDir == "" {
		return "", errs.New(errs.KindSample, "no samples directory configured")
	}
	// Sample names never carry directory components.
	candidate := filepath.Join(c.samplesDir, filepath.Base(name))
	if _, err := os.Stat(candidate); err != nil {
		return "", errs.Newf(errs.KindSample, "sample file not found: %s", name)
	}
	return candidate, nil
}

// sqlString quotes s as a SQL string literal.
func sqlString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

var _ Engine = (*Client)(nil)
