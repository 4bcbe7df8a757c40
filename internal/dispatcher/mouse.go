package dispatcher

import (
	"github.com/bethropolis/easel/internal/document"
	"github.com/bethropolis/easel/internal/logger"
)

// MouseInput is a pointer event already mapped to canvas coordinates.
type MouseInput struct {
	X, Y    float64
	Pressed bool // primary button held
}

type dragState struct {
	active       bool
	lastX, lastY float64
}

// HandleMouse selects on press and moves the selection while dragging.
// Pointer input is ignored while a text field has focus.
func (d *Dispatcher) HandleMouse(m MouseInput) bool {
	if d.mode != ModeCanvas {
		return false
	}

	switch {
	case m.Pressed && !d.drag.active:
		return d.press(m.X, m.Y)
	case m.Pressed && d.drag.active:
		return d.dragTo(m.X, m.Y)
	case !m.Pressed && d.drag.active:
		d.drag = dragState{}
	}
	return false
}

func (d *Dispatcher) press(x, y float64) bool {
	hit, ok := d.doc.ObjectAt(x, y)
	if !ok {
		d.doc.ClearSelection()
		return true
	}
	selected := false
	for _, id := range d.doc.SelectedIDs() {
		if id == hit.ID {
			selected = true
			break
		}
	}
	if !selected {
		if err := d.doc.Select(hit.ID); err != nil {
			logger.Debugf("dispatcher: select %s: %v", hit.ID, err)
			return false
		}
	}
	d.drag = dragState{active: true, lastX: x, lastY: y}
	return true
}

func (d *Dispatcher) dragTo(x, y float64) bool {
	dx, dy := x-d.drag.lastX, y-d.drag.lastY
	if dx == 0 && dy == 0 {
		return false
	}
	ids := d.doc.SelectedIDs()
	if len(ids) == 0 {
		return false
	}
	if err := d.target.Edit(document.MoveObjects{IDs: ids, DX: dx, DY: dy}); err != nil {
		d.messages.SetTemporaryMessage("Move failed: %v", err)
		d.drag = dragState{}
		return true
	}
	d.drag.lastX, d.drag.lastY = x, y
	return true
}
