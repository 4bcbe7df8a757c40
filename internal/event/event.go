// internal/event/event.go
package event

// Type identifies the kind of event.
type Type int

const (
	TypeUnknown Type = iota

	// Document events. Payloads are defined by the document package.
	TypeDocumentLoaded   // A project's snapshot replaced the canvas on open
	TypeDocumentEdited   // A user operation changed the canvas
	TypeDocumentRestored // Undo or redo replaced the canvas
	TypeSelectionChanged // The selected object set changed

	// Autosave events. Payloads are defined by the autosave package.
	TypeSaveStarted
	TypeSaveSucceeded
	TypeSaveFailed

	// Input and lifecycle
	TypeKeyPressed
	TypeAppReady
	TypeAppQuit
)

var typeNames = map[Type]string{
	TypeUnknown:          "unknown",
	TypeDocumentLoaded:   "document.loaded",
	TypeDocumentEdited:   "document.edited",
	TypeDocumentRestored: "document.restored",
	TypeSelectionChanged: "selection.changed",
	TypeSaveStarted:      "save.started",
	TypeSaveSucceeded:    "save.succeeded",
	TypeSaveFailed:       "save.failed",
	TypeKeyPressed:       "key.pressed",
	TypeAppReady:         "app.ready",
	TypeAppQuit:          "app.quit",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "unknown"
}

// Event is the structure passed through the event bus.
type Event struct {
	Type Type
	Data any
}
