package document

import (
	"fmt"
	"sync"

	"github.com/bethropolis/easel/internal/event"
	"github.com/bethropolis/easel/internal/logger"
)

// EditedData is the payload of event.TypeDocumentEdited.
type EditedData struct {
	Operation string   // Operation name
	Key       string   // Coalesce key, empty if the edit never merges
	Before    Snapshot // Canvas state immediately before the edit
}

// LoadedData is the payload of event.TypeDocumentLoaded.
type LoadedData struct {
	Snapshot Snapshot
}

// RestoredData is the payload of event.TypeDocumentRestored.
type RestoredData struct {
	Snapshot Snapshot
}

// SelectionChangedData is the payload of event.TypeSelectionChanged.
type SelectionChangedData struct {
	IDs []string
}

// Document owns the live canvas and its selection. All mutation goes through
// Load, Restore, Mutate and the selection methods; events are dispatched after
// the lock is released, so handlers may read the document freely.
type Document struct {
	mu        sync.RWMutex
	canvas    *Canvas
	selection selection
	events    *event.Manager
}

// New creates a document holding an empty canvas of the given size.
// events may be nil.
func New(events *event.Manager, width, height float64) *Document {
	return &Document{
		canvas: NewCanvas(width, height, ""),
		events: events,
	}
}

// Serialize captures the current canvas.
func (d *Document) Serialize() Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.serializeLocked()
}

func (d *Document) serializeLocked() Snapshot {
	snap, err := encode(d.canvas)
	if err != nil {
		// The canvas is validated on every swap; encoding it cannot fail.
		panic(fmt.Sprintf("document: encode live canvas: %v", err))
	}
	return snap
}

// Load replaces the canvas with snap and clears the selection. An invalid
// snapshot leaves the document untouched.
func (d *Document) Load(snap Snapshot) error {
	if err := d.replace(snap); err != nil {
		return fmt.Errorf("load document: %w", err)
	}
	logger.DebugTagf("document", "Loaded snapshot (%d bytes)", len(snap.raw))
	d.events.Dispatch(event.TypeDocumentLoaded, LoadedData{Snapshot: snap})
	return nil
}

// Restore is Load for undo and redo: it announces TypeDocumentRestored once the
// canvas and selection reset are complete.
func (d *Document) Restore(snap Snapshot) error {
	if err := d.replace(snap); err != nil {
		return fmt.Errorf("restore document: %w", err)
	}
	logger.DebugTagf("document", "Restored snapshot (%d bytes)", len(snap.raw))
	d.events.Dispatch(event.TypeDocumentRestored, RestoredData{Snapshot: snap})
	return nil
}

func (d *Document) replace(snap Snapshot) error {
	c, err := snap.Decode()
	if err != nil {
		return err
	}
	d.mu.Lock()
	d.canvas = c
	cleared := d.selection.clear()
	d.mu.Unlock()

	if cleared {
		d.events.Dispatch(event.TypeSelectionChanged, SelectionChangedData{})
	}
	return nil
}

// Mutate applies op atomically. On success exactly one TypeDocumentEdited event
// is dispatched before Mutate returns; on failure nothing changes.
func (d *Document) Mutate(op Operation) error {
	d.mu.Lock()
	before := d.serializeLocked()
	work := d.canvas.Clone()
	if err := op.Apply(work); err != nil {
		d.mu.Unlock()
		return fmt.Errorf("%s: %w", op.Name(), err)
	}
	if err := work.Validate(); err != nil {
		d.mu.Unlock()
		return fmt.Errorf("%s: %w", op.Name(), err)
	}
	d.canvas = work
	pruned := d.selection.prune(work)
	ids := d.selection.list()
	d.mu.Unlock()

	logger.DebugTagf("document", "Applied %s", op.Name())
	d.events.Dispatch(event.TypeDocumentEdited, EditedData{
		Operation: op.Name(),
		Key:       op.CoalesceKey(),
		Before:    before,
	})
	if pruned {
		d.events.Dispatch(event.TypeSelectionChanged, SelectionChangedData{IDs: ids})
	}
	return nil
}

// Select replaces the selection with ids. Non-selectable objects are skipped.
func (d *Document) Select(ids ...string) error {
	d.mu.Lock()
	keep := make([]string, 0, len(ids))
	for _, id := range ids {
		i := d.canvas.index(id)
		if i < 0 {
			d.mu.Unlock()
			return fmt.Errorf("select: %w: %q", ErrObjectNotFound, id)
		}
		if d.canvas.Objects[i].IsSelectable() {
			keep = append(keep, id)
		}
	}
	changed := d.selection.set(keep)
	current := d.selection.list()
	d.mu.Unlock()

	if changed {
		d.events.Dispatch(event.TypeSelectionChanged, SelectionChangedData{IDs: current})
	}
	return nil
}

// SelectAll selects every selectable object in z-order and returns the count.
func (d *Document) SelectAll() int {
	d.mu.Lock()
	var ids []string
	for _, o := range d.canvas.Objects {
		if o.IsSelectable() {
			ids = append(ids, o.ID)
		}
	}
	changed := d.selection.set(ids)
	current := d.selection.list()
	d.mu.Unlock()

	if changed {
		d.events.Dispatch(event.TypeSelectionChanged, SelectionChangedData{IDs: current})
	}
	return len(current)
}

// ClearSelection empties the selection.
func (d *Document) ClearSelection() {
	d.mu.Lock()
	changed := d.selection.clear()
	d.mu.Unlock()

	if changed {
		d.events.Dispatch(event.TypeSelectionChanged, SelectionChangedData{})
	}
}

// SelectedIDs returns the selection in selection order.
func (d *Document) SelectedIDs() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.selection.list()
}

// Selected returns deep copies of the selected objects in z-order.
func (d *Document) Selected() []*Object {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []*Object
	for _, o := range d.canvas.Objects {
		if d.selection.has(o.ID) {
			out = append(out, o.Clone())
		}
	}
	return out
}

// IsSelected reports whether id is in the selection.
func (d *Document) IsSelected(id string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.selection.has(id)
}

// Objects returns deep copies of every top-level object, bottom first.
func (d *Document) Objects() []*Object {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]*Object, len(d.canvas.Objects))
	for i, o := range d.canvas.Objects {
		out[i] = o.Clone()
	}
	return out
}

// Object returns a copy of the top-level object with the given id.
func (d *Document) Object(id string) (*Object, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if i := d.canvas.index(id); i >= 0 {
		return d.canvas.Objects[i].Clone(), true
	}
	return nil, false
}

// ObjectAt returns the topmost selectable object containing the point.
func (d *Document) ObjectAt(x, y float64) (*Object, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for i := len(d.canvas.Objects) - 1; i >= 0; i-- {
		o := d.canvas.Objects[i]
		if o.IsSelectable() && o.Contains(x, y) {
			return o.Clone(), true
		}
	}
	return nil, false
}

// Size returns the canvas dimensions.
func (d *Document) Size() (width, height float64) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.canvas.Width, d.canvas.Height
}

// Background returns the canvas background colour.
func (d *Document) Background() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.canvas.Background
}

// Len returns the number of top-level objects.
func (d *Document) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.canvas.Objects)
}
