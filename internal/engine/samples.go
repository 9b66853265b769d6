package engine

import (
	"compress/gzip"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/xuri/excelize/v2"
)

// The bundled demo dataset, written in every supported flavor so the
// sample picker always has one file per reader path.
type sampleRow struct {
	ID     int64
	Name   string
	Score  float64
	Active bool
	Group  string
}

var sampleHeader = []string{"id", "name", "score", "active", "group"}

var sampleRows = []sampleRow{
	{1, "alpha", 98.5, true, "A"},
	{2, "bravo", 76.2, false, "B"},
	{3, "charlie", 88.0, true, "A"},
	{4, "delta", 91.4, true, "B"},
	{5, "echo", 69.0, false, "C"},
}

// WriteSamples writes the bundled sample files into dir, creating it if
// needed. Returns the file names written, sorted.
func WriteSamples(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create samples directory: %w", err)
	}

	writers := map[string]func(io.Writer) error{
		"sample.csv":    writeSampleCSV,
		"sample.csv.gz": writeSampleCSVGz,
		"sample.jsonl":  writeSampleJSONL,
		"sample.json":   writeSampleJSON,
		"sample.arrow":  writeSampleArrow,
		"sample.xlsx":   writeSampleXLSX,
	}

	names := make([]string, 0, len(writers))
	for name, write := range writers {
		f, err := os.Create(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", name, err)
		}
		werr := write(f)
		cerr := f.Close()
		if werr != nil {
			return nil, fmt.Errorf("failed to write %s: %w", name, werr)
		}
		if cerr != nil {
			return nil, fmt.Errorf("failed to write %s: %w", name, cerr)
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// ListSamples returns the sample file names present in dir, sorted.
func ListSamples(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func writeSampleCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(sampleHeader); err != nil {
		return err
	}
	for _, r := range sampleRows {
		rec := []string{
			fmt.Sprintf("%d", r.ID),
			r.Name,
			fmt.Sprintf("%g", r.Score),
			fmt.Sprintf("%t", r.Active),
			r.Group,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeSampleCSVGz(w io.Writer) error {
	gz := gzip.NewWriter(w)
	if err := writeSampleCSV(gz); err != nil {
		return err
	}
	return gz.Close()
}

func sampleObjects() []map[string]any {
	out := make([]map[string]any, len(sampleRows))
	for i, r := range sampleRows {
		out[i] = map[string]any{
			"id": r.ID, "name": r.Name, "score": r.Score,
			"active": r.Active, "group": r.Group,
		}
	}
	return out
}

func writeSampleJSONL(w io.Writer) error {
	enc := json.NewEncoder(w)
	for _, obj := range sampleObjects() {
		if err := enc.Encode(obj); err != nil {
			return err
		}
	}
	return nil
}

func writeSampleJSON(w io.Writer) error {
	return json.NewEncoder(w).Encode(sampleObjects())
}

func writeSampleArrow(w io.Writer) error {
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int64},
		{Name: "name", Type: arrow.BinaryTypes.String},
		{Name: "score", Type: arrow.PrimitiveTypes.Float64},
		{Name: "active", Type: arrow.FixedWidthTypes.Boolean},
		{Name: "group", Type: arrow.BinaryTypes.String},
	}, nil)

	b := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer b.Release()
	for _, r := range sampleRows {
		b.Field(0).(*array.Int64Builder).Append(r.ID)
		b.Field(1).(*array.StringBuilder).Append(r.Name)
		b.Field(2).(*array.Float64Builder).Append(r.Score)
		b.Field(3).(*array.BooleanBuilder).Append(r.Active)
		b.Field(4).(*array.StringBuilder).Append(r.Group)
	}
	rec := b.NewRecord()
	defer rec.Release()

	fw, err := ipc.NewFileWriter(w, ipc.WithSchema(schema))
	if err != nil {
		return err
	}
	if err := fw.Write(rec); err != nil {
		_ = fw.Close()
		return err
	}
	return fw.Close()
}

func writeSampleXLSX(w io.Writer) error {
	wb := excelize.NewFile()
	defer func() { _ = wb.Close() }()

	const sheet = "Sheet1"
	header := make([]any, len(sampleHeader))
	for i, h := range sampleHeader {
		header[i] = h
	}
	if err := wb.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, r := range sampleRows {
		cells := []any{r.ID, r.Name, r.Score, r.Active, r.Group}
		addr, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := wb.SetSheetRow(sheet, addr, &cells); err != nil {
			return err
		}
	}
	return wb.Write(w)
}
