package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peekdb/peek/internal/engine"
)

func resultOf(columns []string, rows ...[]engine.Value) *engine.QueryResult {
	cols := make([]engine.ColumnInfo, len(columns))
	for i, name := range columns {
		cols[i] = engine.ColumnInfo{Name: name, DType: "varchar"}
	}
	return &engine.QueryResult{Columns: cols, Rows: rows, RowCount: int64(len(rows))}
}

func viewColumn(m *Model, col int) []string {
	out := make([]string, m.RowCount())
	for i := range out {
		out[i] = m.RowAt(i)[col].Display()
	}
	return out
}

func TestModel_SortCycle(t *testing.T) {
	m := NewModel("en")
	m.SetResult(resultOf([]string{"a"},
		[]engine.Value{engine.Text("b")},
		[]engine.Value{engine.Text("a")},
	))

	m.SetSort(0)
	col, dir := m.Sort()
	assert.Equal(t, 0, col)
	assert.Equal(t, SortAsc, dir)

	m.SetSort(0)
	_, dir = m.Sort()
	assert.Equal(t, SortDesc, dir)

	// Third application returns to unsorted.
	m.SetSort(0)
	col, dir = m.Sort()
	assert.Equal(t, -1, col)
	assert.Equal(t, SortNone, dir)
	assert.Equal(t, []string{"b", "a"}, viewColumn(m, 0))

	// Fourth application reproduces the first exactly.
	m.SetSort(0)
	col, dir = m.Sort()
	assert.Equal(t, 0, col)
	assert.Equal(t, SortAsc, dir)
}

func TestModel_SortDifferentColumnEntersAscending(t *testing.T) {
	m := NewModel("en")
	m.SetResult(resultOf([]string{"a", "b"},
		[]engine.Value{engine.Text("x"), engine.Text("y")},
	))

	m.SetSort(0)
	m.SetSort(0) // descending on 0
	m.SetSort(1)
	col, dir := m.Sort()
	assert.Equal(t, 1, col)
	assert.Equal(t, SortAsc, dir)
}

func TestModel_SortStability(t *testing.T) {
	m := NewModel("en")
	m.SetResult(resultOf([]string{"name", "n"},
		[]engine.Value{engine.Text("A"), engine.Number(1)},
		[]engine.Value{engine.Text("B"), engine.Number(1)},
		[]engine.Value{engine.Text("C"), engine.Number(2)},
	))

	m.SetSort(1)
	assert.Equal(t, []string{"A", "B", "C"}, viewColumn(m, 0))

	// Ties retain original relative order under descending as well.
	m.SetSort(1)
	assert.Equal(t, []string{"C", "A", "B"}, viewColumn(m, 0))
}

func TestModel_SortNumericStrings(t *testing.T) {
	m := NewModel("en")
	m.SetResult(resultOf([]string{"f"},
		[]engine.Value{engine.Text("file10")},
		[]engine.Value{engine.Text("file2")},
	))

	m.SetSort(0)
	assert.Equal(t, []string{"file2", "file10"}, viewColumn(m, 0))
}

func TestModel_SortNullsLastBothDirections(t *testing.T) {
	m := NewModel("en")
	m.SetResult(resultOf([]string{"n"},
		[]engine.Value{engine.Null()},
		[]engine.Value{engine.Number(2)},
		[]engine.Value{engine.Number(1)},
	))

	m.SetSort(0)
	assert.Equal(t, []string{"1", "2", ""}, viewColumn(m, 0))

	m.SetSort(0)
	assert.Equal(t, []string{"2", "1", ""}, viewColumn(m, 0))
}

func TestModel_SortNumbersNumerically(t *testing.T) {
	m := NewModel("en")
	m.SetResult(resultOf([]string{"n"},
		[]engine.Value{engine.Number(10)},
		[]engine.Value{engine.Number(9)},
		[]engine.Value{engine.Number(100)},
	))

	m.SetSort(0)
	assert.Equal(t, []string{"9", "10", "100"}, viewColumn(m, 0))
}

func TestModel_SortResetOnNewResult(t *testing.T) {
	m := NewModel("en")
	res := resultOf([]string{"a"},
		[]engine.Value{engine.Text("b")},
		[]engine.Value{engine.Text("a")},
	)
	m.SetResult(res)
	m.SetSort(0)

	// Even an identically-shaped replacement clears the sort.
	m.SetResult(resultOf([]string{"a"},
		[]engine.Value{engine.Text("d")},
		[]engine.Value{engine.Text("c")},
	))
	col, dir := m.Sort()
	assert.Equal(t, -1, col)
	assert.Equal(t, SortNone, dir)
	assert.Equal(t, []string{"d", "c"}, viewColumn(m, 0))
}

func TestModel_WidthReinitOnColumnCountChange(t *testing.T) {
	m := NewModel("en")
	m.SetResult(resultOf([]string{"a", "b"}))
	m.SetColumnWidth(0, 300)

	// Same column count keeps widths.
	m.SetResult(resultOf([]string{"a", "b"}))
	assert.Equal(t, 300, m.ColumnWidth(0))

	// Different column count resets every width to the default.
	m.SetResult(resultOf([]string{"a", "b", "c"}))
	assert.Equal(t, DefaultColumnWidth, m.ColumnWidth(0))
	assert.Equal(t, DefaultColumnWidth, m.ColumnWidth(2))
}

func TestModel_ResizeClamp(t *testing.T) {
	m := NewModel("en")
	m.SetResult(resultOf([]string{"a"}))

	m.SetColumnWidth(0, 40)
	assert.Equal(t, MinColumnWidth, m.ColumnWidth(0))

	m.SetColumnWidth(0, 250)
	assert.Equal(t, 250, m.ColumnWidth(0))
}

func TestModel_ComputeWindow(t *testing.T) {
	m := NewModel("en")
	rows := make([][]engine.Value, 200000)
	for i := range rows {
		rows[i] = []engine.Value{engine.Number(float64(i))}
	}
	m.SetResult(resultOf([]string{"n"}, rows...))

	tests := []struct {
		name                                          string
		viewportHeight, scrollOffset, rowHeight, over int
		want                                          Window
	}{
		{"top", 400, 0, 20, 5, Window{Start: 0, End: 26, Extent: 4000000}},
		{"mid", 400, 100000, 20, 5, Window{Start: 4995, End: 5026, Extent: 4000000}},
		{"bottom", 400, 3999980, 20, 5, Window{Start: 199994, End: 200000, Extent: 4000000}},
		{"negative offset", 400, -50, 20, 5, Window{Start: 0, End: 26, Extent: 4000000}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.ComputeWindow(tt.viewportHeight, tt.scrollOffset, tt.rowHeight, tt.over)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, got.End-got.Start, 400/20+1+2*tt.over)
		})
	}
}

func TestModel_ComputeWindowEmpty(t *testing.T) {
	m := NewModel("en")
	assert.Equal(t, Window{}, m.ComputeWindow(400, 0, 20, 5))
}

func TestModel_RowShapeInvariant(t *testing.T) {
	m := NewModel("en")
	res := resultOf([]string{"a", "b"},
		[]engine.Value{engine.Number(1), engine.Text("x")},
		[]engine.Value{engine.Number(2), engine.Text("y")},
	)
	m.SetResult(res)

	require.Equal(t, 2, m.RowCount())
	for i := 0; i < m.RowCount(); i++ {
		assert.Len(t, m.RowAt(i), len(m.Columns()))
	}
}
