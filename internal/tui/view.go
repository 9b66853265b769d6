package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/peekdb/peek/internal/engine"
	"github.com/peekdb/peek/internal/grid"
	"github.com/peekdb/peek/internal/notify"
)

func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return "loading..."
	}

	var b strings.Builder
	b.WriteString(m.viewTitle())
	b.WriteString("\n")
	b.WriteString(m.st.editor.Render(m.editor.View()))
	b.WriteString("\n")
	b.WriteString(m.viewHeader())
	b.WriteString("\n")
	b.WriteString(m.viewGrid())
	b.WriteString(m.viewStatus())
	b.WriteString("\n")
	b.WriteString(m.viewBottom())
	return b.String()
}

func (m model) viewTitle() string {
	state := m.ctrl.State()
	if state.FileMeta == nil {
		hint := "no file loaded"
		if m.dropArmed {
			return padLine(m.st.dropHint.Render("drop the file to load it"), m.width)
		}
		return padLine(m.st.title.Render("peek")+"  "+m.st.titleDim.Render(hint+"  (ctrl+o to open)"), m.width)
	}

	meta := state.FileMeta
	line := m.st.title.Render(meta.FileName) +
		m.st.titleDim.Render(fmt.Sprintf("  %d rows, %d columns", meta.RowCount, len(meta.Schema)))
	if len(meta.Sheets) > 0 {
		line += m.st.titleDim.Render(fmt.Sprintf("  sheet: %s (s to switch)", meta.ActiveSheet))
	}
	if m.dropArmed {
		line += "  " + m.st.dropHint.Render("drop to load")
	}
	return padLine(line, m.width)
}

func (m model) viewHeader() string {
	cols := m.grid.Columns()
	if len(cols) == 0 {
		return padLine(m.st.titleDim.Render(""), m.width)
	}

	cells := m.columnCells()
	sortCol, sortDir := m.grid.Sort()

	var parts []string
	for _, c := range visibleColumns(cells, m.colOffset, m.width) {
		label := cols[c].Name + sortIndicator(sortDir, c == sortCol)
		st := m.st.header
		if c == sortCol {
			st = m.st.sorted
		}
		parts = append(parts, st.Render(padCell(label, cells[c], false)))
	}
	return padLine(strings.Join(parts, m.st.titleDim.Render("│")), m.width)
}

func (m model) viewGrid() string {
	rows := m.gridRows()
	if rows <= 0 {
		return ""
	}
	if m.sheetPicker {
		return m.viewSheetPicker(rows)
	}
	if m.schemaOpen {
		return m.viewSchema(rows)
	}

	var b strings.Builder
	n := m.grid.RowCount()
	window := m.grid.ComputeWindow(rows, m.scrollY, 1, 0)

	cells := m.columnCells()
	visible := visibleColumns(cells, m.colOffset, m.width)

	line := 0
	for i := window.Start; i < window.End && line < rows; i++ {
		b.WriteString(padLine(m.viewRow(i, cells, visible), m.width))
		b.WriteString("\n")
		line++
	}
	for ; line < rows; line++ {
		if line == 0 && n == 0 {
			b.WriteString(padLine(m.st.titleDim.Render("  (no rows)"), m.width))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m model) viewRow(row int, cells []int, visible []int) string {
	values := m.grid.RowAt(row)

	var parts []string
	for _, c := range visible {
		v := values[c]
		text := padCell(v.Display(), cells[c], v.Kind() == engine.KindNumber)

		st := m.st.cell
		switch {
		case row == m.cursorRow && c == m.cursorCol && m.focus == focusGrid:
			st = m.st.selected
		case v.IsNull():
			st = m.st.nullCell
		}
		parts = append(parts, st.Render(text))
	}
	return strings.Join(parts, m.st.titleDim.Render("│"))
}

func (m model) viewSheetPicker(rows int) string {
	meta := m.ctrl.State().FileMeta

	var b strings.Builder
	b.WriteString(padLine(m.st.title.Render("  select sheet"), m.width))
	b.WriteString("\n")
	line := 1
	for i, sheet := range meta.Sheets {
		if line >= rows {
			break
		}
		st := m.st.picker
		if i == m.sheetIdx {
			st = m.st.pickerOn
		}
		marker := "   "
		if sheet == meta.ActiveSheet {
			marker = " * "
		}
		b.WriteString(padLine(st.Render(marker+sheet), m.width))
		b.WriteString("\n")
		line++
	}
	for ; line < rows; line++ {
		b.WriteString("\n")
	}
	return b.String()
}

func (m model) viewSchema(rows int) string {
	meta := m.ctrl.State().FileMeta

	var b strings.Builder
	b.WriteString(padLine(m.st.title.Render("  schema"), m.width))
	b.WriteString("\n")
	line := 1
	for _, field := range meta.Schema {
		if line >= rows {
			break
		}
		entry := fmt.Sprintf("   %-24s ", field.Name)
		b.WriteString(padLine(m.st.picker.Render(entry)+m.st.titleDim.Render(field.DType), m.width))
		b.WriteString("\n")
		line++
	}
	for ; line < rows; line++ {
		b.WriteString("\n")
	}
	return b.String()
}

func (m model) viewStatus() string {
	state := m.ctrl.State()

	var left string
	switch {
	case state.IsLoadingFile:
		left = "loading..."
	case state.IsRunningQuery:
		left = "running query..."
	case state.Result != nil:
		left = fmt.Sprintf("%d of %d rows", len(state.Result.Rows), state.Result.RowCount)
		if state.LastQueryDuration > 0 {
			left += fmt.Sprintf("  (%s)", state.LastQueryDuration.Round(time.Millisecond))
		}
	}

	right := ""
	if m.toast != nil {
		right = m.renderToast(*m.toast)
	} else if state.LastError != nil {
		right = m.st.errmsg.Render(state.LastError.Error())
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return m.st.status.Render(padLine(left+strings.Repeat(" ", gap)+right, m.width))
}

func (m model) renderToast(msg notify.Message) string {
	switch msg.Level {
	case notify.LevelSuccess:
		return m.st.success.Render(msg.Text)
	case notify.LevelError:
		return m.st.errmsg.Render(msg.Text)
	default:
		return m.st.info.Render(msg.Text)
	}
}

func (m model) viewBottom() string {
	if m.prompting != promptNone {
		return padLine(m.prompt.View(), m.width)
	}
	if m.it.Menu() != nil {
		return padLine(m.st.menu.Render(" copy: [c] cell  [r] row  [esc] dismiss "), m.width)
	}

	var help string
	if m.focus == focusEditor {
		help = "ctrl+r run  tab grid  ctrl+o open  ctrl+e export  ctrl+t theme  ctrl+c quit"
	} else {
		help = "j/k scroll  h/l column  enter sort  y copy  d schema  s sheets  i edit  tab editor  q quit"
	}
	return padLine(m.st.help.Render(help), m.width)
}

// cellWidth converts a model column width into terminal cells.
func cellWidth(units int) int {
	w := units / columnUnit
	if w < 6 {
		w = 6
	}
	return w
}

// visibleColumns returns the column indices that fit in width cells,
// starting at offset, each followed by a one-cell separator.
func visibleColumns(cells []int, offset, width int) []int {
	var out []int
	pos := 0
	for c := offset; c < len(cells); c++ {
		if pos >= width {
			break
		}
		out = append(out, c)
		pos += cells[c] + 1
	}
	return out
}

// columnAtX hit-tests a pointer column position. Reports the column under
// x and whether x sits on the separator to its right, the resize handle.
func columnAtX(x int, cells []int, offset int) (int, bool) {
	pos := 0
	for c := offset; c < len(cells); c++ {
		if x < pos+cells[c] {
			return c, false
		}
		if x == pos+cells[c] {
			return c, true
		}
		pos += cells[c] + 1
	}
	return -1, false
}

// padCell fits s into exactly w cells, truncating with an ellipsis.
// Numbers are right-aligned.
func padCell(s string, w int, rightAlign bool) string {
	r := []rune(s)
	if len(r) > w {
		if w <= 1 {
			return strings.Repeat(".", w)
		}
		return string(r[:w-1]) + "…"
	}
	pad := strings.Repeat(" ", w-len(r))
	if rightAlign {
		return pad + s
	}
	return s + pad
}

// sortIndicator marks the sorted header column.
func sortIndicator(dir grid.SortDirection, active bool) string {
	if !active {
		return ""
	}
	switch dir {
	case grid.SortAsc:
		return " ▲"
	case grid.SortDesc:
		return " ▼"
	}
	return ""
}

// padLine right-pads a rendered line to the viewport width.
func padLine(s string, width int) string {
	if gap := width - lipgloss.Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}
