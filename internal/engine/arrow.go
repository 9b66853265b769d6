package engine

import (
	"context"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/peekdb/peek/internal/errs"
)

// loadArrow materializes an Arrow IPC (feather v2) file as the source
// table. DuckDB has no built-in IPC reader, so records are decoded here
// and inserted through the normal ingestion path.
func (c *Client) loadArrow(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errs.Wrap(err, errs.KindScan, "failed to open arrow file")
	}
	defer func() { _ = f.Close() }()

	r, err := ipc.NewFileReader(f, ipc.WithAllocator(memory.DefaultAllocator))
	if err != nil {
		return errs.Wrap(err, errs.KindScan, "failed to read arrow file")
	}
	defer func() { _ = r.Close() }()

	schema := r.Schema()
	cols := make([]columnDef, len(schema.Fields()))
	for i, field := range schema.Fields() {
		cols[i] = columnDef{Name: field.Name, Type: duckdbTypeFor(field.Type)}
	}

	var data [][]any
	for i := 0; i < r.NumRecords(); i++ {
		rec, err := r.Record(i)
		if err != nil {
			return errs.Wrap(err, errs.KindScan, "failed to decode arrow record")
		}
		for rowIdx := 0; rowIdx < int(rec.NumRows()); rowIdx++ {
			row := make([]any, len(cols))
			for colIdx := 0; colIdx < int(rec.NumCols()); colIdx++ {
				row[colIdx] = arrowCell(rec.Column(colIdx), rowIdx)
			}
			data = append(data, row)
		}
	}

	if err := c.replaceSourceTable(ctx, cols, data); err != nil {
		return errs.Wrap(err, errs.KindScan, "failed to load arrow file")
	}
	return nil
}

// duckdbTypeFor maps an arrow field type to the column type the source
// table is created with. Anything without a clean mapping loads as text.
func duckdbTypeFor(t arrow.DataType) string {
	switch t.ID() {
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64,
		arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64:
		return "BIGINT"
	case arrow.FLOAT16, arrow.FLOAT32, arrow.FLOAT64:
		return "DOUBLE"
	case arrow.BOOL:
		return "BOOLEAN"
	default:
		return "VARCHAR"
	}
}

// arrowCell extracts one cell as a driver-friendly value.
func arrowCell(col arrow.Array, i int) any {
	if col.IsNull(i) {
		return nil
	}
	switch a := col.(type) {
	case *array.Int8:
		return int64(a.Value(i))
	case *array.Int16:
		return int64(a.Value(i))
	case *array.Int32:
		return int64(a.Value(i))
	case *array.Int64:
		return a.Value(i)
	case *array.Uint8:
		return int64(a.Value(i))
	case *array.Uint16:
		return int64(a.Value(i))
	case *array.Uint32:
		return int64(a.Value(i))
	case *array.Uint64:
		return int64(a.Value(i))
	case *array.Float32:
		return float64(a.Value(i))
	case *array.Float64:
		return a.Value(i)
	case *array.Boolean:
		return a.Value(i)
	case *array.String:
		return a.Value(i)
	case *array.LargeString:
		return a.Value(i)
	default:
		return col.ValueStr(i)
	}
}
