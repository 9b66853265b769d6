package engine

import (
	"context"
	"fmt"
	"slices"

	"github.com/xuri/excelize/v2"

	"github.com/peekdb/peek/internal/errs"
)

// loadWorkbook reads one sheet of a spreadsheet into the source table.
// An empty sheet name selects the first sheet. Returns the full sheet list
// and the sheet actually loaded.
func (c *Client) loadWorkbook(ctx context.Context, path, sheet string) ([]string, string, error) {
	kind := errs.KindScan
	if sheet != "" {
		kind = errs.KindSheet
	}

	wb, err := excelize.OpenFile(path)
	if err != nil {
		return nil, "", errs.Wrap(err, kind, "failed to open workbook")
	}
	defer func() { _ = wb.Close() }()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, "", errs.New(kind, "no sheets found in workbook")
	}

	active := sheet
	if active == "" {
		active = sheets[0]
	} else if !slices.Contains(sheets, active) {
		return nil, "", errs.Newf(errs.KindSheet, "unknown sheet: %s", sheet)
	}

	raw, err := wb.GetRows(active)
	if err != nil {
		return nil, "", errs.Wrapf(err, kind, "failed to read sheet %s", active)
	}

	headers, data := tableFromSheet(raw)
	cols := make([]columnDef, len(headers))
	for i, h := range headers {
		cols[i] = columnDef{Name: h, Type: "VARCHAR"}
	}
	if err := c.replaceSourceTable(ctx, cols, data); err != nil {
		return nil, "", errs.Wrapf(err, kind, "failed to load sheet %s", active)
	}

	return sheets, active, nil
}

// tableFromSheet turns raw sheet cells into headers and data rows. The
// first row provides headers; blank or missing header cells become col_N
// (1-based). Rows wider than the header extend it; short rows pad with
// nulls; empty cells load as nulls.
func tableFromSheet(raw [][]string) ([]string, [][]any) {
	if len(raw) == 0 {
		return nil, nil
	}

	headers := make([]string, 0, len(raw[0]))
	for i, cell := range raw[0] {
		name := cell
		if name == "" {
			name = fmt.Sprintf("col_%d", i+1)
		}
		headers = append(headers, name)
	}

	width := len(headers)
	for _, row := range raw[1:] {
		for width < len(row) {
			headers = append(headers, fmt.Sprintf("col_%d", width+1))
			width++
		}
	}
	headers = dedupeHeaders(headers)

	data := make([][]any, 0, len(raw)-1)
	for _, row := range raw[1:] {
		out := make([]any, width)
		for i := 0; i < width; i++ {
			if i < len(row) && row[i] != "" {
				out[i] = row[i]
			}
		}
		data = append(data, out)
	}
	return headers, data
}

// dedupeHeaders disambiguates repeated column names so the table can be
// created.
func dedupeHeaders(headers []string) []string {
	seen := make(map[string]int, len(headers))
	out := make([]string, len(headers))
	for i, h := range headers {
		if n := seen[h]; n > 0 {
			out[i] = fmt.Sprintf("%s_%d", h, n+1)
		} else {
			out[i] = h
		}
		seen[h]++
	}
	return out
}

// writeWorkbook writes a query result as a single-sheet xlsx file.
func writeWorkbook(path string, result *QueryResult) error {
	wb := excelize.NewFile()
	defer func() { _ = wb.Close() }()

	const sheet = "Sheet1"

	header := make([]any, len(result.Columns))
	for i, col := range result.Columns {
		header[i] = col.Name
	}
	if err := wb.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i, row := range result.Rows {
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = workbookCell(v)
		}
		addr, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := wb.SetSheetRow(sheet, addr, &cells); err != nil {
			return err
		}
	}

	return wb.SaveAs(path)
}

// workbookCell maps a Value to the native cell type where one exists.
func workbookCell(v Value) any {
	switch v.Kind() {
	case KindNull:
		return nil
	case KindBool:
		return v.Display() == "true"
	case KindNumber:
		return v.Num()
	default:
		return v.Display()
	}
}
