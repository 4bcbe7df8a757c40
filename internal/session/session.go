// Package session composes the document, history, clipboard and autosave
// of one open project.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bethropolis/easel/internal/clock"
	"github.com/bethropolis/easel/internal/core/autosave"
	"github.com/bethropolis/easel/internal/core/clipboard"
	"github.com/bethropolis/easel/internal/core/history"
	"github.com/bethropolis/easel/internal/document"
	"github.com/bethropolis/easel/internal/event"
	"github.com/bethropolis/easel/internal/logger"
	"github.com/bethropolis/easel/internal/store"
)

// ErrNotOpen is returned by operations that need an open project.
var ErrNotOpen = errors.New("no project open")

// ProjectStore loads and persists projects.
type ProjectStore interface {
	Get(ctx context.Context, id string) (*store.Project, error)
	Save(ctx context.Context, id string, snap document.Snapshot) error
}

// Options configure a Session. Zero values select the package defaults,
// except CoalesceWindow and the paste offsets, which are used as given: a zero
// window disables coalescing and a zero offset pastes in place. Start from
// DefaultOptions to get the usual values.
type Options struct {
	Events          *event.Manager
	Clock           clock.Clock
	HistoryDepth    int
	CoalesceWindow  time.Duration
	PasteOffsetX    float64
	PasteOffsetY    float64
	SystemClipboard clipboard.SystemClipboard // nil disables mirroring
	Debounce        time.Duration
	SaveTimeout     time.Duration
	Notifier        autosave.Notifier
}

// Session is the editing session of one project at a time.
type Session struct {
	store   ProjectStore
	events  *event.Manager
	clk     clock.Clock
	opts    Options
	doc     *document.Document
	history *history.Manager
	clip    *clipboard.Manager

	mu       sync.Mutex
	project  *store.Project
	autosave *autosave.Coordinator
}

// DefaultOptions returns the options used by the editor out of the box.
func DefaultOptions() Options {
	return Options{
		HistoryDepth:   history.DefaultMaxHistory,
		CoalesceWindow: history.DefaultCoalesceWindow,
		PasteOffsetX:   clipboard.DefaultOffsetX,
		PasteOffsetY:   clipboard.DefaultOffsetY,
		Debounce:       autosave.DefaultDebounce,
		SaveTimeout:    autosave.DefaultTimeout,
	}
}

// New wires a session over st. No project is open until Open succeeds.
func New(st ProjectStore, opts Options) *Session {
	if st == nil {
		panic("session.New: store is required")
	}
	if opts.Events == nil {
		opts.Events = event.NewManager()
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.HistoryDepth <= 0 {
		opts.HistoryDepth = history.DefaultMaxHistory
	}

	s := &Session{
		store:  st,
		events: opts.Events,
		clk:    opts.Clock,
		opts:   opts,
	}
	s.doc = document.New(s.events, store.DefaultWidth, store.DefaultHeight)
	s.history = history.NewManager(s.clk, opts.HistoryDepth, opts.CoalesceWindow)
	s.clip = clipboard.NewManager(s.doc, opts.PasteOffsetX, opts.PasteOffsetY, opts.SystemClipboard)

	// History records before autosave hears about the change.
	s.history.Subscribe(s.events)
	forward := func(event.Event) bool {
		if c := s.coordinator(); c != nil {
			c.NotifyEdit()
		}
		return false
	}
	s.events.Subscribe(event.TypeDocumentEdited, forward)
	s.events.Subscribe(event.TypeDocumentRestored, forward)
	return s
}

func (s *Session) coordinator() *autosave.Coordinator {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.autosave
}

// Open loads projectID into the document, replacing any open project. The
// previous project is flushed first; a flush error is logged, not returned.
func (s *Session) Open(ctx context.Context, projectID string) error {
	p, err := s.store.Get(ctx, projectID)
	if err != nil {
		return fmt.Errorf("open project %s: %w", projectID, err)
	}
	// Reject an unloadable project while the current one is still attached.
	if _, err := p.Snapshot.Decode(); err != nil {
		return fmt.Errorf("open project %s: %w", projectID, err)
	}

	if err := s.closeCurrent(ctx); err != nil {
		logger.Warnf("session: flushing previous project: %v", err)
	}

	if err := s.doc.Load(p.Snapshot); err != nil {
		return fmt.Errorf("open project %s: %w", projectID, err)
	}
	s.history.Clear()

	coord := autosave.New(p.ID, s.doc, s.store, autosave.Options{
		Debounce: s.opts.Debounce,
		Timeout:  s.opts.SaveTimeout,
		Clock:    s.clk,
		Events:   s.events,
		Notifier: s.opts.Notifier,
	})

	s.mu.Lock()
	s.project = p
	s.autosave = coord
	s.mu.Unlock()

	logger.Infof("session: opened project %s (%q, %d objects)", p.ID, p.Name, s.doc.Len())
	return nil
}

// Close flushes unsaved changes and detaches the project.
func (s *Session) Close(ctx context.Context) error {
	return s.closeCurrent(ctx)
}

func (s *Session) closeCurrent(ctx context.Context) error {
	s.mu.Lock()
	coord := s.autosave
	s.autosave = nil
	s.project = nil
	s.mu.Unlock()

	if coord == nil {
		return nil
	}
	err := coord.Flush(ctx)
	coord.Stop()
	return err
}

// Document returns the live document.
func (s *Session) Document() *document.Document { return s.doc }

// History returns the undo/redo stacks.
func (s *Session) History() *history.Manager { return s.history }

// Project returns the open project's ID and name.
func (s *Session) Project() (id, name string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.project == nil {
		return "", "", false
	}
	return s.project.ID, s.project.Name, true
}

// SaveState reports the autosave state of the open project.
func (s *Session) SaveState() autosave.State {
	if c := s.coordinator(); c != nil {
		return c.State()
	}
	return autosave.StateIdle
}

// HasUnsavedChanges reports whether an edit has not reached the store.
func (s *Session) HasUnsavedChanges() bool {
	if c := s.coordinator(); c != nil {
		return c.HasUnsavedChanges()
	}
	return false
}

// Edit applies a user operation to the document.
func (s *Session) Edit(op document.Operation) error {
	if s.coordinator() == nil {
		return ErrNotOpen
	}
	return s.doc.Mutate(op)
}

// Undo restores the previous history entry. It returns false when there is
// nothing to undo.
func (s *Session) Undo() (bool, error) {
	if s.coordinator() == nil {
		return false, ErrNotOpen
	}
	snap, ok := s.history.Undo(s.doc.Serialize())
	if !ok {
		return false, nil
	}
	if err := s.doc.Restore(snap); err != nil {
		return false, fmt.Errorf("undo: %w", err)
	}
	return true, nil
}

// Redo re-applies the most recently undone entry.
func (s *Session) Redo() (bool, error) {
	if s.coordinator() == nil {
		return false, ErrNotOpen
	}
	snap, ok := s.history.Redo(s.doc.Serialize())
	if !ok {
		return false, nil
	}
	if err := s.doc.Restore(snap); err != nil {
		return false, fmt.Errorf("redo: %w", err)
	}
	return true, nil
}

func (s *Session) Copy() (bool, error) { return s.clip.Copy() }

func (s *Session) Cut() (bool, error) {
	if s.coordinator() == nil {
		return false, ErrNotOpen
	}
	return s.clip.Cut()
}

func (s *Session) Paste() (bool, error) {
	if s.coordinator() == nil {
		return false, ErrNotOpen
	}
	return s.clip.Paste()
}

// DeleteSelection removes the selected objects. An empty selection is a no-op.
func (s *Session) DeleteSelection() (bool, error) {
	ids := s.doc.SelectedIDs()
	if len(ids) == 0 {
		return false, nil
	}
	if err := s.Edit(document.RemoveObjects{IDs: ids}); err != nil {
		return false, err
	}
	return true, nil
}

// SelectAll selects every selectable object and returns how many. Nothing is
// selected while no project is open.
func (s *Session) SelectAll() int {
	if s.coordinator() == nil {
		return 0
	}
	return s.doc.SelectAll()
}

// Select replaces the selection.
func (s *Session) Select(ids ...string) error {
	if s.coordinator() == nil {
		return ErrNotOpen
	}
	return s.doc.Select(ids...)
}

// Save requests an immediate save of the open project.
func (s *Session) Save() {
	if c := s.coordinator(); c != nil {
		c.SaveNow()
	}
}
