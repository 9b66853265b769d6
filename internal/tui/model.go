package tui

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/peekdb/peek/internal/cli/config"
	"github.com/peekdb/peek/internal/dropzone"
	"github.com/peekdb/peek/internal/engine"
	"github.com/peekdb/peek/internal/grid"
	"github.com/peekdb/peek/internal/notify"
	"github.com/peekdb/peek/internal/session"
)

const (
	editorHeight = 3
	// columnUnit converts the grid model's column widths into terminal
	// cells: the default width of 180 renders as 15 cells.
	columnUnit = 12
	// doubleClickWindow is how close two presses on the same cell must be
	// to count as a double click.
	doubleClickWindow = 400 * time.Millisecond
	toastLifetime     = 3 * time.Second
)

type focusArea int

const (
	focusEditor focusArea = iota
	focusGrid
)

type promptKind int

const (
	promptNone promptKind = iota
	promptOpen
	promptExport
)

// Messages folding async outcomes back into the Update loop.
type (
	loadDoneMsg   struct{ res session.LoadResponse }
	queryDoneMsg  struct{ res session.QueryResponse }
	sheetDoneMsg  struct{ res session.SheetResponse }
	exportDoneMsg struct{ res session.ExportResponse }
	notifyMsg     notify.Message
	dropMsg       dropzone.Event
	toastTickMsg  struct{ seq int }
	hubClosedMsg  struct{}
)

type model struct {
	ctx         context.Context
	ctrl        *session.Controller
	grid        *grid.Model
	it          *grid.Interaction
	hub         *notify.Hub
	bridge      *dropzone.Bridge
	cfg         *config.Config
	cfgPath     string
	log         *slog.Logger
	initialPath string

	st            styles
	width, height int

	editor textarea.Model
	focus  focusArea

	prompt    textinput.Model
	prompting promptKind

	scrollY   int
	cursorRow int
	cursorCol int
	colOffset int

	sheetPicker bool
	sheetIdx    int
	schemaOpen  bool

	dropArmed bool

	toast    *notify.Message
	toastSeq int

	notifyCh chan notify.Message

	// lastResult tracks which result the grid has been fed, so a state
	// snapshot with a new result swaps the grid exactly once.
	lastResult *engine.QueryResult

	lastClickAt  time.Time
	lastClickRow int
	lastClickCol int
}

func newModel(ctx context.Context, opts Options) model {
	ed := textarea.New()
	ed.Placeholder = "SQL over the active file; it is queryable as \"source\""
	ed.SetValue(opts.Controller.State().QueryText)
	ed.SetHeight(editorHeight)
	ed.ShowLineNumbers = false
	ed.CharLimit = 0
	ed.Focus()

	prompt := textinput.New()
	prompt.CharLimit = 512

	clip := newClipboard()

	m := model{
		ctx:         ctx,
		ctrl:        opts.Controller,
		grid:        opts.Grid,
		it:          grid.NewInteraction(opts.Grid, clip, opts.Hub),
		hub:         opts.Hub,
		bridge:      opts.Bridge,
		cfg:         opts.Config,
		cfgPath:     opts.ConfigPath,
		log:         opts.Logger,
		initialPath: opts.InitialPath,
		st:          newStyles(opts.Config.Theme),
		editor:      ed,
		prompt:      prompt,
		cursorCol:   -1,
	}
	if opts.Hub != nil {
		m.notifyCh = opts.Hub.Subscribe()
	}
	return m
}

func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink}
	if m.notifyCh != nil {
		cmds = append(cmds, listenHub(m.notifyCh))
	}
	if m.bridge != nil {
		cmds = append(cmds, listenBridge(m.bridge))
	}
	if m.initialPath != "" {
		if cmd := m.startLoadCmd(m.initialPath); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return tea.Batch(cmds...)
}

// startLoadCmd begins a load on the control thread and returns the Run
// phase as a command. Returns nil when validation rejected the path.
func (m *model) startLoadCmd(path string) tea.Cmd {
	req, err := m.ctrl.BeginLoad(path)
	if err != nil {
		return nil
	}
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg { return loadDoneMsg{res: ctrl.RunLoad(ctx, req)} }
}

func (m *model) startQueryCmd(text string) tea.Cmd {
	req, err := m.ctrl.BeginQuery(text)
	if err != nil {
		return nil
	}
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg { return queryDoneMsg{res: ctrl.RunQuery(ctx, req)} }
}

func (m *model) startSheetCmd(sheet string) tea.Cmd {
	req, err := m.ctrl.BeginSheet(sheet)
	if err != nil {
		return nil
	}
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg { return sheetDoneMsg{res: ctrl.RunSheet(ctx, req)} }
}

func queryRunCmd(ctx context.Context, ctrl *session.Controller, req session.QueryRequest) tea.Cmd {
	return func() tea.Msg { return queryDoneMsg{res: ctrl.RunQuery(ctx, req)} }
}

func (m *model) startExportCmd(dest string, format engine.ExportFormat) tea.Cmd {
	req, err := m.ctrl.BeginExport(dest, format)
	if err != nil {
		return nil
	}
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg { return exportDoneMsg{res: ctrl.RunExport(ctx, req)} }
}

func listenHub(ch chan notify.Message) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return hubClosedMsg{}
		}
		return notifyMsg(msg)
	}
}

func listenBridge(b *dropzone.Bridge) tea.Cmd {
	return func() tea.Msg { return dropMsg(<-b.Events()) }
}

func toastTick(seq int) tea.Cmd {
	return tea.Tick(toastLifetime, func(time.Time) tea.Msg { return toastTickMsg{seq: seq} })
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.editor.SetWidth(msg.Width - 2)
		m.prompt.Width = msg.Width - 20
		m.clampScroll()
		return m, nil

	case loadDoneMsg:
		queryReq, err := m.ctrl.ApplyLoad(msg.res)
		m.syncGrid()
		if err != nil {
			return m, nil
		}
		m.editor.SetValue(m.ctrl.State().QueryText)
		m.sheetPicker = false
		m.sheetIdx = 0
		m.schemaOpen = false
		if queryReq != nil {
			return m, queryRunCmd(m.ctx, m.ctrl, *queryReq)
		}
		return m, nil

	case queryDoneMsg:
		_ = m.ctrl.ApplyQuery(msg.res)
		m.syncGrid()
		return m, nil

	case sheetDoneMsg:
		_ = m.ctrl.ApplySheet(msg.res)
		m.syncGrid()
		return m, nil

	case exportDoneMsg:
		// Success and failure both surface through the hub.
		_ = m.ctrl.ApplyExport(msg.res)
		return m, nil

	case notifyMsg:
		m.toastSeq++
		toast := notify.Message(msg)
		m.toast = &toast
		return m, tea.Batch(listenHub(m.notifyCh), toastTick(m.toastSeq))

	case hubClosedMsg:
		m.notifyCh = nil
		return m, nil

	case toastTickMsg:
		if msg.seq == m.toastSeq {
			m.toast = nil
		}
		return m, nil

	case dropMsg:
		cmd := m.handleDrop(dropzone.Event(msg))
		return m, tea.Batch(listenBridge(m.bridge), cmd)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.focus == focusEditor && m.prompting == promptNone {
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *model) handleDrop(ev dropzone.Event) tea.Cmd {
	switch ev.Kind {
	case dropzone.DragEnter:
		m.dropArmed = true
	case dropzone.DragCancelled:
		m.dropArmed = false
	case dropzone.FileDropped:
		m.dropArmed = false
		return m.startLoadCmd(ev.Path)
	}
	return nil
}

// syncGrid feeds the grid whenever the session snapshot carries a result
// the grid has not seen, including the nil result after a sheet switch.
func (m *model) syncGrid() {
	state := m.ctrl.State()
	if state.Result == m.lastResult {
		return
	}
	m.lastResult = state.Result
	m.grid.SetResult(state.Result)
	m.scrollY = 0
	m.cursorRow = 0
	m.colOffset = 0
	if m.grid.RowCount() > 0 && len(m.grid.Columns()) > 0 {
		m.cursorCol = 0
	} else {
		m.cursorCol = -1
	}
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Prompt and picker overlays capture the keyboard first.
	if m.prompting != promptNone {
		return m.handlePromptKey(msg)
	}
	if m.sheetPicker {
		return m.handlePickerKey(msg)
	}
	if m.schemaOpen {
		switch msg.String() {
		case "esc", "q", "d":
			m.schemaOpen = false
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "tab":
		m.it.PrimaryClick()
		if m.focus == focusEditor {
			m.focus = focusGrid
			m.editor.Blur()
		} else {
			m.focus = focusEditor
			m.editor.Focus()
			return m, textarea.Blink
		}
		return m, nil
	case "ctrl+r":
		return m, m.startQueryCmd(m.editor.Value())
	case "ctrl+o":
		m.prompting = promptOpen
		m.prompt.Prompt = "open: "
		m.prompt.Placeholder = "path/to/data.parquet"
		m.prompt.SetValue("")
		m.prompt.Focus()
		return m, textinput.Blink
	case "ctrl+e":
		m.prompting = promptExport
		m.prompt.Prompt = "export to: "
		m.prompt.Placeholder = "result." + m.cfg.ExportFormat
		m.prompt.SetValue("")
		m.prompt.Focus()
		return m, textinput.Blink
	case "ctrl+t":
		return m.toggleTheme()
	}

	if m.focus == focusGrid {
		return m.handleGridKey(msg)
	}

	if msg.String() == "esc" {
		m.focus = focusGrid
		m.editor.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

func (m model) toggleTheme() (tea.Model, tea.Cmd) {
	if m.cfg.Theme == "light" {
		m.cfg.Theme = "dark"
	} else {
		m.cfg.Theme = "light"
	}
	m.st = newStyles(m.cfg.Theme)
	if err := config.Save(m.cfg, m.cfgPath); err != nil {
		m.log.Warn("failed to persist theme", "error", err)
	} else if m.hub != nil {
		m.hub.Infof("theme: %s", m.cfg.Theme)
	}
	return m, nil
}

func (m model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+c":
		m.prompting = promptNone
		m.prompt.Blur()
		return m, nil
	case "enter":
		value := strings.TrimSpace(m.prompt.Value())
		kind := m.prompting
		m.prompting = promptNone
		m.prompt.Blur()
		if value == "" {
			return m, nil
		}
		switch kind {
		case promptOpen:
			return m, m.startLoadCmd(value)
		case promptExport:
			return m, m.startExportCmd(value, exportFormatFor(value, m.cfg.ExportFormat))
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

func (m model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	meta := m.ctrl.State().FileMeta
	if meta == nil || len(meta.Sheets) == 0 {
		m.sheetPicker = false
		return m, nil
	}

	switch msg.String() {
	case "esc", "q", "s":
		m.sheetPicker = false
		return m, nil
	case "up", "k":
		if m.sheetIdx > 0 {
			m.sheetIdx--
		}
		return m, nil
	case "down", "j":
		if m.sheetIdx < len(meta.Sheets)-1 {
			m.sheetIdx++
		}
		return m, nil
	case "enter":
		m.sheetPicker = false
		sheet := meta.Sheets[m.sheetIdx]
		if sheet == meta.ActiveSheet {
			return m, nil
		}
		return m, m.startSheetCmd(sheet)
	}
	return m, nil
}

func (m model) handleGridKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if menu := m.it.Menu(); menu != nil {
		switch msg.String() {
		case "c":
			m.it.CopyCell()
			return m, nil
		case "r":
			m.it.CopyRow()
			return m, nil
		case "esc":
			m.it.PrimaryClick()
			return m, nil
		}
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		m.moveCursor(-1)
	case "down", "j":
		m.moveCursor(1)
	case "pgup":
		m.moveCursor(-m.gridRows())
	case "pgdown":
		m.moveCursor(m.gridRows())
	case "g", "home":
		m.cursorRow = 0
		m.scrollY = 0
	case "G", "end":
		if n := m.grid.RowCount(); n > 0 {
			m.cursorRow = n - 1
		}
		m.clampScroll()
	case "left", "h":
		if m.cursorCol > 0 {
			m.cursorCol--
			m.ensureColumnVisible()
		}
	case "right", "l":
		if m.cursorCol >= 0 && m.cursorCol < len(m.grid.Columns())-1 {
			m.cursorCol++
			m.ensureColumnVisible()
		}
	case "enter", "o":
		if m.cursorCol >= 0 {
			m.it.HeaderClick(m.cursorCol)
		}
	case "y":
		m.it.CellDoubleClick(m.cursorRow, m.cursorCol)
	case "Y":
		// Row copy goes through the context menu actions.
		m.it.CellRightClick(m.cursorRow, m.cursorCol, 0, 0)
		m.it.CopyRow()
	case "s":
		meta := m.ctrl.State().FileMeta
		if meta != nil && len(meta.Sheets) > 0 {
			m.sheetPicker = true
			m.sheetIdx = sheetIndex(meta.Sheets, meta.ActiveSheet)
		}
	case "d":
		if m.ctrl.State().FileMeta != nil {
			m.schemaOpen = true
		}
	case "i":
		m.focus = focusEditor
		m.editor.Focus()
		return m, textarea.Blink
	}
	return m, nil
}

func (m *model) moveCursor(delta int) {
	n := m.grid.RowCount()
	if n == 0 {
		return
	}
	m.cursorRow += delta
	if m.cursorRow < 0 {
		m.cursorRow = 0
	}
	if m.cursorRow >= n {
		m.cursorRow = n - 1
	}
	m.clampScroll()
}

// clampScroll keeps the cursor row inside the visible band.
func (m *model) clampScroll() {
	rows := m.gridRows()
	if rows <= 0 {
		return
	}
	if m.cursorRow < m.scrollY {
		m.scrollY = m.cursorRow
	}
	if m.cursorRow >= m.scrollY+rows {
		m.scrollY = m.cursorRow - rows + 1
	}
	if m.scrollY < 0 {
		m.scrollY = 0
	}
}

func (m *model) ensureColumnVisible() {
	if m.cursorCol < m.colOffset {
		m.colOffset = m.cursorCol
		return
	}
	for !m.columnVisible(m.cursorCol) && m.colOffset < m.cursorCol {
		m.colOffset++
	}
}

func (m *model) columnVisible(col int) bool {
	cells := m.columnCells()
	for _, vc := range visibleColumns(cells, m.colOffset, m.width) {
		if vc == col {
			return true
		}
	}
	return false
}

// columnCells is each column's rendered width in terminal cells.
func (m *model) columnCells() []int {
	cols := m.grid.Columns()
	cells := make([]int, len(cols))
	for i := range cols {
		cells[i] = cellWidth(m.grid.ColumnWidth(i))
	}
	return cells
}

func (m *model) gridRows() int {
	// title + editor + header + status + help
	rows := m.height - editorHeight - 4
	if rows < 0 {
		return 0
	}
	return rows
}

func (m model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	headerY := 1 + editorHeight
	dataY := headerY + 1

	switch msg.Action {
	case tea.MouseActionMotion:
		if m.it.Resizing() {
			m.it.DragResize(msg.X * columnUnit)
		}
		return m, nil

	case tea.MouseActionRelease:
		if msg.Button == tea.MouseButtonLeft && m.it.Resizing() {
			m.it.EndResize()
		}
		return m, nil

	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.scrollY -= 3
			if m.scrollY < 0 {
				m.scrollY = 0
			}
			return m, nil
		case tea.MouseButtonWheelDown:
			maxScroll := m.grid.RowCount() - m.gridRows()
			if maxScroll < 0 {
				maxScroll = 0
			}
			m.scrollY += 3
			if m.scrollY > maxScroll {
				m.scrollY = maxScroll
			}
			return m, nil

		case tea.MouseButtonLeft:
			cells := m.columnCells()
			if msg.Y == headerY {
				col, boundary := columnAtX(msg.X, cells, m.colOffset)
				if boundary {
					m.it.StartResize(col, msg.X*columnUnit)
				} else if col >= 0 {
					m.it.HeaderClick(col)
				}
				return m, nil
			}
			if msg.Y >= dataY && msg.Y < dataY+m.gridRows() {
				row := m.scrollY + (msg.Y - dataY)
				col, _ := columnAtX(msg.X, cells, m.colOffset)
				if row < m.grid.RowCount() && col >= 0 {
					now := time.Now()
					if now.Sub(m.lastClickAt) < doubleClickWindow &&
						row == m.lastClickRow && col == m.lastClickCol {
						m.it.CellDoubleClick(row, col)
						m.lastClickAt = time.Time{}
						return m, nil
					}
					m.lastClickAt = now
					m.lastClickRow = row
					m.lastClickCol = col
					m.it.PrimaryClick()
					m.cursorRow = row
					m.cursorCol = col
					m.focus = focusGrid
					m.editor.Blur()
					return m, nil
				}
			}
			m.it.PrimaryClick()
			return m, nil

		case tea.MouseButtonRight:
			if msg.Y >= dataY && msg.Y < dataY+m.gridRows() {
				row := m.scrollY + (msg.Y - dataY)
				col, _ := columnAtX(msg.X, m.columnCells(), m.colOffset)
				m.it.CellRightClick(row, col, msg.X, msg.Y)
			}
			return m, nil
		}
	}
	return m, nil
}

// exportFormatFor picks the export format from the destination extension,
// falling back to the configured default.
func exportFormatFor(dest, fallback string) engine.ExportFormat {
	switch strings.ToLower(filepath.Ext(dest)) {
	case ".xlsx":
		return engine.ExportXLSX
	case ".csv":
		return engine.ExportCSV
	}
	if strings.EqualFold(fallback, "xlsx") {
		return engine.ExportXLSX
	}
	return engine.ExportCSV
}

func sheetIndex(sheets []string, active string) int {
	for i, s := range sheets {
		if s == active {
			return i
		}
	}
	return 0
}
