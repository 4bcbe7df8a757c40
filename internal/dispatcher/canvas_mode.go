package dispatcher

import (
	"github.com/bethropolis/easel/internal/document"
	"github.com/bethropolis/easel/internal/input"
	"github.com/bethropolis/easel/internal/logger"
)

// handleActionCanvas runs actions while focus is on the canvas.
func (d *Dispatcher) handleActionCanvas(ae input.ActionEvent) bool {
	switch ae.Action {
	// --- Quit/Save ---
	case input.ActionQuit:
		d.quit()
		return false
	case input.ActionSave:
		d.target.Save()
		d.messages.SetTemporaryMessage("Saving...")
		return true

	// --- History ---
	case input.ActionUndo:
		return d.run("Undo", d.target.Undo, "Nothing to undo")
	case input.ActionRedo:
		return d.run("Redo", d.target.Redo, "Nothing to redo")

	// --- Clipboard ---
	case input.ActionCopy:
		return d.run("Copy", d.target.Copy, "Nothing selected to copy")
	case input.ActionCut:
		return d.run("Cut", d.target.Cut, "Nothing selected to cut")
	case input.ActionPaste:
		return d.run("Paste", d.target.Paste, "Clipboard empty")

	// --- Selection ---
	case input.ActionSelectAll:
		n := d.target.SelectAll()
		d.messages.SetTemporaryMessage("%d object(s) selected", n)
		return true
	case input.ActionDeleteForward, input.ActionDeleteBackward:
		return d.run("Delete", d.target.DeleteSelection, "")
	case input.ActionEscape:
		d.doc.ClearSelection()
		return true
	case input.ActionCycleSelection:
		return d.cycleSelection(ae.Step)
	case input.ActionEnter:
		ids := d.doc.SelectedIDs()
		if len(ids) != 1 || !d.BeginTextEntry(ids[0]) {
			d.messages.SetTemporaryMessage("Select a single text object to edit")
			return true
		}
		return true

	// --- Movement ---
	case input.ActionMoveUp:
		return d.moveSelection(0, -ae.Step)
	case input.ActionMoveDown:
		return d.moveSelection(0, ae.Step)
	case input.ActionMoveLeft:
		return d.moveSelection(-ae.Step, 0)
	case input.ActionMoveRight:
		return d.moveSelection(ae.Step, 0)

	case input.ActionInsertRune:
		return d.handleCanvasRune(ae.Rune)

	default:
		return false
	}
}

// run executes a no-op-capable operation and reports failures.
func (d *Dispatcher) run(name string, op func() (bool, error), noop string) bool {
	done, err := op()
	if err != nil {
		d.messages.SetTemporaryMessage("%s failed: %v", name, err)
		logger.Debugf("dispatcher: %s error: %v", name, err)
		return true
	}
	if !done {
		if noop != "" {
			d.messages.SetTemporaryMessage("%s", noop)
		}
		return noop != ""
	}
	return true
}

func (d *Dispatcher) moveSelection(dx, dy int) bool {
	ids := d.doc.SelectedIDs()
	if len(ids) == 0 {
		return false
	}
	op := document.MoveObjects{IDs: ids, DX: float64(dx) * d.moveStep, DY: float64(dy) * d.moveStep}
	if err := d.target.Edit(op); err != nil {
		d.messages.SetTemporaryMessage("Move failed: %v", err)
	}
	return true
}

func (d *Dispatcher) cycleSelection(step int) bool {
	var ids []string
	for _, o := range d.doc.Objects() {
		if o.IsSelectable() {
			ids = append(ids, o.ID)
		}
	}
	if len(ids) == 0 {
		return false
	}
	if step == 0 {
		step = 1
	}

	next := 0
	if step < 0 {
		next = len(ids) - 1
	}
	if current := d.doc.SelectedIDs(); len(current) > 0 {
		for i, id := range ids {
			if id == current[len(current)-1] {
				next = ((i+step)%len(ids) + len(ids)) % len(ids)
				break
			}
		}
	}
	if err := d.doc.Select(ids[next]); err != nil {
		logger.Debugf("dispatcher: cycle selection: %v", err)
		return false
	}
	return true
}

// handleCanvasRune interprets unmodified letters as canvas tools.
func (d *Dispatcher) handleCanvasRune(r rune) bool {
	switch r {
	case 'r':
		return d.addShape(document.TypeRect)
	case 'e':
		return d.addShape(document.TypeEllipse)
	case 't':
		return d.addShape(document.TypeText)
	case 'l':
		return d.addShape(document.TypeLine)
	case ']':
		return d.reorder(document.BringForward)
	case '[':
		return d.reorder(document.SendBackward)
	case '}':
		return d.reorder(document.BringToFront)
	case '{':
		return d.reorder(document.SendToBack)
	}
	return false
}

// newObject returns a default object of the given type centred on the canvas.
func (d *Dispatcher) newObject(kind document.ObjectType) *document.Object {
	cw, ch := d.doc.Size()
	o := &document.Object{ID: d.newID(), Type: kind, Width: 120, Height: 80, Opacity: 1}
	switch kind {
	case document.TypeRect:
		o.Fill = "#4f46e5"
	case document.TypeEllipse:
		o.Fill = "#f59e0b"
	case document.TypeText:
		o.Width, o.Height = 200, 40
		o.Text = "Text"
		o.Fill = "#111827"
		o.FontSize = 24
		o.FontFamily = "Inter"
	case document.TypeLine:
		o.Height = 0
		o.Stroke = "#111827"
		o.StrokeWidth = 2
	}
	o.Left = (cw - o.Width) / 2
	o.Top = (ch - o.Height) / 2
	return o
}

func (d *Dispatcher) addShape(kind document.ObjectType) bool {
	o := d.newObject(kind)
	if err := d.target.Edit(document.AddObjects{Objects: []*document.Object{o}}); err != nil {
		d.messages.SetTemporaryMessage("Add %s failed: %v", kind, err)
		return true
	}
	if err := d.doc.Select(o.ID); err != nil {
		logger.Debugf("dispatcher: select new %s: %v", kind, err)
	}
	if kind == document.TypeText {
		d.BeginTextEntry(o.ID)
	}
	return true
}

func (d *Dispatcher) reorder(dir document.ReorderDirection) bool {
	ids := d.doc.SelectedIDs()
	if len(ids) != 1 {
		if len(ids) > 1 {
			d.messages.SetTemporaryMessage("Select a single object to reorder")
		}
		return len(ids) > 1
	}
	if err := d.target.Edit(document.Reorder{ID: ids[0], Direction: dir}); err != nil {
		d.messages.SetTemporaryMessage("Reorder failed: %v", err)
	}
	return true
}
