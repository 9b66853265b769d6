package grid

import (
	"github.com/peekdb/peek/internal/engine"
	"github.com/peekdb/peek/internal/notify"
)

// Clipboard writes text to the system clipboard.
type Clipboard interface {
	Write(text string) error
}

// ContextMenu is a transient menu anchored at a pointer position, offering
// copy actions on the clicked cell and its row.
type ContextMenu struct {
	Row, Col int
	X, Y     int
}

// Interaction translates pointer gestures into model mutations and
// clipboard writes. It holds transient gesture state only; nothing here is
// persisted.
type Interaction struct {
	model *Model
	clip  Clipboard
	hub   *notify.Hub

	drag *dragState
	menu *ContextMenu
}

// dragState captures one in-progress column resize. At most one resize can
// be active at a time.
type dragState struct {
	col        int
	startX     int
	startWidth int
}

// NewInteraction wires an interaction controller to its grid model.
// clip and hub may be nil; copies then fail silently.
func NewInteraction(model *Model, clip Clipboard, hub *notify.Hub) *Interaction {
	return &Interaction{model: model, clip: clip, hub: hub}
}

// HeaderClick advances the sort cycle for col and dismisses any open menu.
func (it *Interaction) HeaderClick(col int) {
	it.menu = nil
	it.model.SetSort(col)
}

// StartResize begins a column-resize drag at pointerX.
func (it *Interaction) StartResize(col, pointerX int) {
	if col < 0 || col >= len(it.model.Columns()) {
		return
	}
	it.menu = nil
	it.drag = &dragState{col: col, startX: pointerX, startWidth: it.model.ColumnWidth(col)}
}

// DragResize updates the dragged column's width from the current pointer
// position. No-op when no drag is active.
func (it *Interaction) DragResize(pointerX int) {
	if it.drag == nil {
		return
	}
	it.model.SetColumnWidth(it.drag.col, it.drag.startWidth+(pointerX-it.drag.startX))
}

// EndResize discards the drag capture.
func (it *Interaction) EndResize() { it.drag = nil }

// Resizing reports whether a resize drag is in progress.
func (it *Interaction) Resizing() bool { return it.drag != nil }

// CellDoubleClick copies the cell's display string to the clipboard.
func (it *Interaction) CellDoubleClick(row, col int) {
	it.menu = nil
	if !it.inRange(row, col) {
		return
	}
	it.copyText(it.model.RowAt(row)[col].Display(), "cell copied")
}

// CellRightClick opens the context menu anchored at the pointer position.
func (it *Interaction) CellRightClick(row, col, x, y int) {
	if !it.inRange(row, col) {
		return
	}
	it.menu = &ContextMenu{Row: row, Col: col, X: x, Y: y}
}

// Menu returns the open context menu, or nil.
func (it *Interaction) Menu() *ContextMenu { return it.menu }

// PrimaryClick dismisses the context menu; any primary click anywhere
// closes it.
func (it *Interaction) PrimaryClick() { it.menu = nil }

// CopyCell copies the menu cell's display string and closes the menu.
func (it *Interaction) CopyCell() {
	if it.menu == nil {
		return
	}
	row, col := it.menu.Row, it.menu.Col
	it.menu = nil
	if !it.inRange(row, col) {
		return
	}
	it.copyText(it.model.RowAt(row)[col].Display(), "cell copied")
}

// CopyRow copies the menu row serialized as structured text, all columns
// included, and closes the menu.
func (it *Interaction) CopyRow() {
	if it.menu == nil {
		return
	}
	row := it.menu.Row
	it.menu = nil
	if row < 0 || row >= it.model.RowCount() {
		return
	}
	it.copyText(engine.SerializeRow(it.model.RowAt(row)), "row copied")
}

func (it *Interaction) inRange(row, col int) bool {
	return row >= 0 && row < it.model.RowCount() && col >= 0 && col < len(it.model.Columns())
}

func (it *Interaction) copyText(text, okMsg string) {
	if it.clip == nil {
		return
	}
	if err := it.clip.Write(text); err != nil {
		if it.hub != nil {
			it.hub.Errorf("clipboard write failed: %v", err)
		}
		return
	}
	if it.hub != nil {
		it.hub.Successf("%s", okMsg)
	}
}
