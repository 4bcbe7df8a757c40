package dispatcher

import (
	"github.com/rivo/uniseg"

	"github.com/bethropolis/easel/internal/document"
	"github.com/bethropolis/easel/internal/input"
	"github.com/bethropolis/easel/internal/logger"
)

// textField is the uncommitted content of a text object under edit.
type textField struct {
	id       string
	original string
	value    []byte
}

func (f *textField) reset(id, text string) {
	f.id = id
	f.original = text
	f.value = append(f.value[:0], text...)
}

func (f *textField) String() string { return string(f.value) }

func (f *textField) insert(r rune) {
	f.value = append(f.value, string(r)...)
}

// backspace removes the last grapheme cluster.
func (f *textField) backspace() bool {
	if len(f.value) == 0 {
		return false
	}
	rest := f.value
	state := -1
	last, pos := 0, 0
	for len(rest) > 0 {
		var cluster []byte
		cluster, rest, _, state = uniseg.FirstGraphemeCluster(rest, state)
		last = pos
		pos += len(cluster)
	}
	f.value = f.value[:last]
	return true
}

// handleActionText runs actions while focus is inside a text field. Every
// shortcut is ignored; keys edit the field.
func (d *Dispatcher) handleActionText(ae input.ActionEvent) bool {
	switch ae.Action {
	case input.ActionInsertRune:
		d.text.insert(ae.Rune)
		return true
	case input.ActionDeleteBackward:
		return d.text.backspace()
	case input.ActionEnter:
		d.commitText()
		return true
	case input.ActionEscape:
		logger.DebugTagf("dispatcher", "Text entry for %s cancelled", d.text.id)
		d.mode = ModeCanvas
		return true
	default:
		if ae.Action.IsShortcut() {
			logger.DebugTagf("dispatcher", "Ignoring %v during text entry", ae.Action)
		}
		return false
	}
}

func (d *Dispatcher) commitText() {
	d.mode = ModeCanvas
	value := d.text.String()
	if value == d.text.original {
		return
	}
	if err := d.target.Edit(document.SetText{ID: d.text.id, Text: value}); err != nil {
		d.messages.SetTemporaryMessage("Edit text failed: %v", err)
	}
}
