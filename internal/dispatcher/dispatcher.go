// internal/dispatcher/dispatcher.go
package dispatcher

import (
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"

	"github.com/bethropolis/easel/internal/document"
	"github.com/bethropolis/easel/internal/event"
	"github.com/bethropolis/easel/internal/input"
	"github.com/bethropolis/easel/internal/logger"
)

// Mode is where keyboard focus currently sits.
type Mode int

const (
	ModeCanvas    Mode = iota
	ModeTextEntry // Focus is inside a text field; shortcuts are ignored
)

func (m Mode) String() string {
	if m == ModeTextEntry {
		return "TEXT"
	}
	return "CANVAS"
}

// Target is the set of session operations the dispatcher drives.
type Target interface {
	Undo() (bool, error)
	Redo() (bool, error)
	Copy() (bool, error)
	Cut() (bool, error)
	Paste() (bool, error)
	DeleteSelection() (bool, error)
	SelectAll() int
	Save()
	Edit(op document.Operation) error
}

// Document is the read side of the live canvas plus selection control.
type Document interface {
	SelectedIDs() []string
	Objects() []*document.Object
	Object(id string) (*document.Object, bool)
	ObjectAt(x, y float64) (*document.Object, bool)
	Select(ids ...string) error
	ClearSelection()
	Size() (width, height float64)
}

// Messenger shows transient feedback, like the status bar.
type Messenger interface {
	SetTemporaryMessage(format string, args ...interface{})
}

// KeyPressedData is the payload of event.TypeKeyPressed.
type KeyPressedData struct {
	KeyEvent *tcell.EventKey
	Mode     Mode
}

// Config holds dependencies for the Dispatcher.
type Config struct {
	Target         Target
	Document       Document
	InputProcessor *input.Processor
	EventManager   *event.Manager
	Messages       Messenger
	QuitSignal     chan<- struct{} // Closed on quit
	MoveStep       float64         // Canvas units per arrow press
}

// Dispatcher maps input to session operations, honouring the focus mode.
type Dispatcher struct {
	target     Target
	doc        Document
	processor  *input.Processor
	events     *event.Manager
	messages   Messenger
	quitSignal chan<- struct{}
	quitOnce   sync.Once
	moveStep   float64
	newID      func() string

	mode Mode
	text textField
	drag dragState
}

// New creates a Dispatcher. Missing dependencies are a programming error.
func New(cfg Config) *Dispatcher {
	if cfg.Target == nil || cfg.Document == nil || cfg.InputProcessor == nil || cfg.QuitSignal == nil {
		panic("dispatcher.New: Missing required dependencies in Config")
	}
	if cfg.MoveStep <= 0 {
		cfg.MoveStep = 1
	}
	if cfg.Messages == nil {
		cfg.Messages = discardMessages{}
	}
	return &Dispatcher{
		target:     cfg.Target,
		doc:        cfg.Document,
		processor:  cfg.InputProcessor,
		events:     cfg.EventManager,
		messages:   cfg.Messages,
		quitSignal: cfg.QuitSignal,
		moveStep:   cfg.MoveStep,
		newID:      uuid.NewString,
	}
}

// Mode returns the current focus mode.
func (d *Dispatcher) Mode() Mode { return d.mode }

// TextEntry returns the object being edited and the uncommitted text.
func (d *Dispatcher) TextEntry() (id, text string, ok bool) {
	if d.mode != ModeTextEntry {
		return "", "", false
	}
	return d.text.id, d.text.String(), true
}

// HandleKeyEvent decodes ev and runs it in the current mode.
// Returns true if the event resulted in an action requiring redraw.
func (d *Dispatcher) HandleKeyEvent(ev *tcell.EventKey) bool {
	d.events.Dispatch(event.TypeKeyPressed, KeyPressedData{KeyEvent: ev, Mode: d.mode})

	actionEvent := d.processor.ProcessEvent(ev)
	switch d.mode {
	case ModeCanvas:
		return d.handleActionCanvas(actionEvent)
	case ModeTextEntry:
		return d.handleActionText(actionEvent)
	default:
		logger.Warnf("dispatcher: unknown input mode %v", d.mode)
		return false
	}
}

// BeginTextEntry moves focus into the text field of a text object.
func (d *Dispatcher) BeginTextEntry(id string) bool {
	obj, ok := d.doc.Object(id)
	if !ok || obj.Type != document.TypeText {
		return false
	}
	d.mode = ModeTextEntry
	d.text.reset(id, obj.Text)
	d.drag = dragState{}
	logger.DebugTagf("dispatcher", "Entering text entry for %s", id)
	return true
}

func (d *Dispatcher) quit() {
	d.quitOnce.Do(func() { close(d.quitSignal) })
}

type discardMessages struct{}

func (discardMessages) SetTemporaryMessage(string, ...interface{}) {}
