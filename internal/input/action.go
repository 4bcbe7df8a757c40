// internal/input/action.go
package input

// Action represents a command or operation requested by a key press.
type Action int

// Define the set of possible editor actions.
const (
	// --- Meta Actions ---
	ActionUnknown Action = iota // Default/invalid action
	ActionQuit
	ActionSave

	// --- History / Clipboard ---
	ActionUndo
	ActionRedo
	ActionCopy
	ActionCut
	ActionPaste
	ActionSelectAll

	// --- Selection Movement ---
	ActionMoveUp
	ActionMoveDown
	ActionMoveLeft
	ActionMoveRight
	ActionCycleSelection // Tab / Shift+Tab

	// --- Plain keys, interpreted by the dispatcher's current mode ---
	ActionInsertRune     // Requires Rune argument
	ActionDeleteBackward // Backspace
	ActionDeleteForward  // Delete
	ActionEnter
	ActionEscape
)

var actionNames = map[Action]string{
	ActionUnknown:        "unknown",
	ActionQuit:           "quit",
	ActionSave:           "save",
	ActionUndo:           "undo",
	ActionRedo:           "redo",
	ActionCopy:           "copy",
	ActionCut:            "cut",
	ActionPaste:          "paste",
	ActionSelectAll:      "select-all",
	ActionMoveUp:         "move-up",
	ActionMoveDown:       "move-down",
	ActionMoveLeft:       "move-left",
	ActionMoveRight:      "move-right",
	ActionCycleSelection: "cycle-selection",
	ActionInsertRune:     "insert-rune",
	ActionDeleteBackward: "delete-backward",
	ActionDeleteForward:  "delete-forward",
	ActionEnter:          "enter",
	ActionEscape:         "escape",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "unknown"
}

// IsShortcut reports whether the action came from a primary-modifier chord.
func (a Action) IsShortcut() bool {
	switch a {
	case ActionQuit, ActionSave, ActionUndo, ActionRedo, ActionCopy, ActionCut, ActionPaste, ActionSelectAll:
		return true
	}
	return false
}

// ActionEvent represents a decoded input event resulting in an action.
type ActionEvent struct {
	Action Action
	Rune   rune // Used for ActionInsertRune
	Step   int  // Repeat count for movement; negative reverses ActionCycleSelection
}
