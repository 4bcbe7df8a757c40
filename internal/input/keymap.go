// internal/input/keymap.go
package input

import (
	"unicode"

	"github.com/gdamore/tcell/v2"
)

// ShiftStep is the movement multiplier applied by Shift+Arrow.
const ShiftStep = 10

// Keymap maps special keys pressed without the primary modifier to actions.
type Keymap map[tcell.Key]Action

// ChordKeymap maps the letter of a primary-modifier chord to an action.
type ChordKeymap map[rune]Action

// PrimaryMods are the modifiers treated as the platform's primary shortcut
// modifier: Ctrl everywhere, and Meta/Cmd, which terminals report as Meta or Alt.
const PrimaryMods = tcell.ModCtrl | tcell.ModMeta | tcell.ModAlt

// Processor translates tcell key events into ActionEvents.
type Processor struct {
	keymap      Keymap
	chords      ChordKeymap // primary+letter
	shiftChords ChordKeymap // primary+Shift+letter, checked first
}

// NewProcessor creates a processor with the default bindings.
func NewProcessor() *Processor {
	p := &Processor{
		keymap:      make(Keymap),
		chords:      make(ChordKeymap),
		shiftChords: make(ChordKeymap),
	}
	p.loadDefaultBindings()
	return p
}

func (p *Processor) loadDefaultBindings() {
	// --- Simple Keys ---
	p.keymap[tcell.KeyUp] = ActionMoveUp
	p.keymap[tcell.KeyDown] = ActionMoveDown
	p.keymap[tcell.KeyLeft] = ActionMoveLeft
	p.keymap[tcell.KeyRight] = ActionMoveRight
	p.keymap[tcell.KeyTab] = ActionCycleSelection
	p.keymap[tcell.KeyBacktab] = ActionCycleSelection
	p.keymap[tcell.KeyBackspace] = ActionDeleteBackward
	p.keymap[tcell.KeyBackspace2] = ActionDeleteBackward // Often used for Backspace
	p.keymap[tcell.KeyDelete] = ActionDeleteForward
	p.keymap[tcell.KeyEnter] = ActionEnter
	p.keymap[tcell.KeyEscape] = ActionEscape

	// --- Primary modifier chords ---
	p.chords['z'] = ActionUndo
	p.chords['y'] = ActionRedo
	p.chords['c'] = ActionCopy
	p.chords['x'] = ActionCut
	p.chords['v'] = ActionPaste
	p.chords['a'] = ActionSelectAll
	p.chords['s'] = ActionSave
	p.chords['q'] = ActionQuit

	p.shiftChords['z'] = ActionRedo
}

// ProcessEvent takes a tcell key event and returns the corresponding ActionEvent.
// Modes are not handled here; the dispatcher interprets plain keys.
func (p *Processor) ProcessEvent(ev *tcell.EventKey) ActionEvent {
	key := ev.Key()
	mod := ev.Modifiers()

	// 1. Primary-modifier chords are the most specific bindings. A chord with
	// no binding never falls through to a plain key.
	if letter, shift, ok := chord(key, mod, ev.Rune()); ok {
		if shift {
			if action, found := p.shiftChords[letter]; found {
				return ActionEvent{Action: action}
			}
		}
		if action, found := p.chords[letter]; found {
			return ActionEvent{Action: action}
		}
		return ActionEvent{Action: ActionUnknown}
	}

	// 2. Plain keys, with Shift allowed for movement.
	if mod&PrimaryMods != 0 {
		return ActionEvent{Action: ActionUnknown}
	}
	if action, ok := p.keymap[key]; ok {
		step := 1
		switch {
		case key == tcell.KeyBacktab:
			step = -1
		case action == ActionCycleSelection && mod&tcell.ModShift != 0:
			step = -1
		case mod&tcell.ModShift != 0:
			step = ShiftStep
		}
		return ActionEvent{Action: action, Step: step}
	}

	// 3. Printable runes
	if key == tcell.KeyRune {
		return ActionEvent{Action: ActionInsertRune, Rune: ev.Rune()}
	}

	return ActionEvent{Action: ActionUnknown}
}

// chord extracts the letter of a primary-modifier chord from the several
// shapes terminals deliver them in.
func chord(key tcell.Key, mod tcell.ModMask, r rune) (letter rune, shift, ok bool) {
	shift = mod&tcell.ModShift != 0
	if key >= tcell.KeyCtrlA && key <= tcell.KeyCtrlZ {
		// Backspace, Tab and Enter share codes with Ctrl+H, Ctrl+I and Ctrl+M.
		switch key {
		case tcell.KeyBackspace, tcell.KeyTab, tcell.KeyEnter:
			if mod&tcell.ModCtrl == 0 {
				return 0, false, false
			}
		}
		return 'a' + rune(key-tcell.KeyCtrlA), shift, true
	}
	if key == tcell.KeyRune && mod&PrimaryMods != 0 && unicode.IsLetter(r) {
		return unicode.ToLower(r), shift || unicode.IsUpper(r), true
	}
	return 0, false, false
}
