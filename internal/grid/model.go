// Package grid derives the rendered row order and the visible window from
// a query result, independent of any particular rendering technology. It
// owns sort state and column widths; the session layer never writes here.
package grid

import (
	"github.com/peekdb/peek/internal/engine"
)

const (
	// MinColumnWidth is the hard lower bound a resize can reach.
	MinColumnWidth = 120
	// DefaultColumnWidth is the uniform width installed when a result with
	// a new column count arrives.
	DefaultColumnWidth = 180
)

// SortDirection is the tri-state sort mode of a column.
type SortDirection int

const (
	SortNone SortDirection = iota
	SortAsc
	SortDesc
)

// Window is the contiguous row range to materialize for rendering plus the
// total scrollable extent.
type Window struct {
	Start  int // inclusive
	End    int // exclusive
	Extent int // row count times row height
}

// Model holds the grid's derived view state over the current result.
type Model struct {
	result  *engine.QueryResult
	order   []int // permutation of result row indices
	sortCol int   // -1 when unsorted
	sortDir SortDirection
	widths  []int
	cmp     *comparer
}

// NewModel creates an empty grid model. locale selects the collation used
// for non-numeric cell ordering; an unrecognized tag falls back to a
// neutral root collation.
func NewModel(locale string) *Model {
	return &Model{sortCol: -1, cmp: newComparer(locale)}
}

// SetResult installs a new result, clearing the sort. Column widths are
// kept only when the column count is unchanged; a differently-shaped
// result reinitializes every width to the default.
func (m *Model) SetResult(res *engine.QueryResult) {
	m.result = res
	m.sortCol = -1
	m.sortDir = SortNone
	m.order = nil

	n := 0
	if res != nil {
		n = len(res.Columns)
		m.order = make([]int, len(res.Rows))
		for i := range m.order {
			m.order[i] = i
		}
	}
	if len(m.widths) != n {
		m.widths = make([]int, n)
		for i := range m.widths {
			m.widths[i] = DefaultColumnWidth
		}
	}
}

// Result returns the current result, which may be nil.
func (m *Model) Result() *engine.QueryResult { return m.result }

// Columns returns the result columns in grid order.
func (m *Model) Columns() []engine.ColumnInfo {
	if m.result == nil {
		return nil
	}
	return m.result.Columns
}

// RowCount is the number of materialized rows in the current view.
func (m *Model) RowCount() int { return len(m.order) }

// RowAt returns row i of the sorted view.
func (m *Model) RowAt(i int) []engine.Value {
	return m.result.Rows[m.order[i]]
}

// Sort returns the sorted column index (-1 when unsorted) and direction.
func (m *Model) Sort() (int, SortDirection) { return m.sortCol, m.sortDir }

// SetSort advances the tri-state cycle for col: unsorted, ascending,
// descending, unsorted. Selecting a different column enters ascending
// directly.
func (m *Model) SetSort(col int) {
	if m.result == nil || col < 0 || col >= len(m.result.Columns) {
		return
	}

	switch {
	case m.sortCol != col:
		m.sortCol = col
		m.sortDir = SortAsc
	case m.sortDir == SortAsc:
		m.sortDir = SortDesc
	default:
		m.sortCol = -1
		m.sortDir = SortNone
	}
	m.resort()
}

// resort recomputes the row permutation for the current sort state.
func (m *Model) resort() {
	for i := range m.order {
		m.order[i] = i
	}
	if m.sortCol < 0 || m.sortDir == SortNone {
		return
	}
	m.cmp.sortRows(m.order, m.result.Rows, m.sortCol, m.sortDir == SortDesc)
}

// ColumnWidth returns the width of column i.
func (m *Model) ColumnWidth(i int) int {
	if i < 0 || i >= len(m.widths) {
		return DefaultColumnWidth
	}
	return m.widths[i]
}

// SetColumnWidth sets column i's width, clamped to the minimum.
func (m *Model) SetColumnWidth(i, width int) {
	if i < 0 || i >= len(m.widths) {
		return
	}
	if width < MinColumnWidth {
		width = MinColumnWidth
	}
	m.widths[i] = width
}

// ComputeWindow returns the row range to materialize for a viewport,
// expanded by overscan rows on each side, together with the scrollable
// extent. Constant-time regardless of row count; rowHeight is a layout
// estimate, not an exactness requirement.
func (m *Model) ComputeWindow(viewportHeight, scrollOffset, rowHeight, overscan int) Window {
	n := m.RowCount()
	if n == 0 || rowHeight <= 0 {
		return Window{}
	}
	if scrollOffset < 0 {
		scrollOffset = 0
	}

	first := scrollOffset / rowHeight
	visible := viewportHeight/rowHeight + 1

	start := first - overscan
	if start < 0 {
		start = 0
	}
	end := first + visible + overscan
	if end > n {
		end = n
	}
	if start > end {
		start = end
	}
	return Window{Start: start, End: end, Extent: n * rowHeight}
}
