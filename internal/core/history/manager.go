// Package history provides undo/redo over document snapshots.
package history

import (
	"sync"
	"time"

	"github.com/bethropolis/easel/internal/clock"
	"github.com/bethropolis/easel/internal/document"
	"github.com/bethropolis/easel/internal/event"
	"github.com/bethropolis/easel/internal/logger"
)

const (
	DefaultMaxHistory     = 100
	DefaultCoalesceWindow = 400 * time.Millisecond
)

// Manager handles the undo and redo stacks. The top of the undo stack is
// always the state immediately before the live document.
type Manager struct {
	clk        clock.Clock
	undo       []document.Snapshot // oldest first
	redo       []document.Snapshot // most recently undone last
	maxHistory int
	window     time.Duration

	// Current coalescing run
	lastKey string
	lastAt  time.Time

	mutex sync.Mutex
}

// NewManager creates a history manager. A non-positive maxHistory selects
// DefaultMaxHistory; a non-positive window disables coalescing.
func NewManager(clk clock.Clock, maxHistory int, window time.Duration) *Manager {
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}
	if clk == nil {
		clk = clock.Real()
	}
	return &Manager{
		clk:        clk,
		undo:       make([]document.Snapshot, 0, maxHistory),
		maxHistory: maxHistory,
		window:     window,
	}
}

// Subscribe records every document edit announced on events.
func (m *Manager) Subscribe(events *event.Manager) {
	events.Subscribe(event.TypeDocumentEdited, func(e event.Event) bool {
		if data, ok := e.Data.(document.EditedData); ok {
			m.Record(data.Before, data.Key)
		}
		return false
	})
}

// Record pushes the state that preceded an edit and clears the redo stack.
// An edit with the same non-empty key as the previous one, arriving within
// the coalescing window of it, extends that entry instead of adding one.
func (m *Manager) Record(before document.Snapshot, key string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	now := m.clk.Now()
	coalesce := key != "" && key == m.lastKey && len(m.undo) > 0 &&
		m.window > 0 && now.Sub(m.lastAt) <= m.window

	m.redo = m.redo[:0]
	m.lastKey = key
	m.lastAt = now

	if coalesce {
		logger.DebugTagf("history", "Coalesced edit %q into entry %d", key, len(m.undo))
		return
	}

	m.undo = append(m.undo, before)
	if len(m.undo) > m.maxHistory {
		// Simple FIFO eviction of the oldest state
		m.undo = append(m.undo[:0], m.undo[len(m.undo)-m.maxHistory:]...)
	}
	logger.DebugTagf("history", "Recorded edit %q. Undo: %d", key, len(m.undo))
}

// Undo pops the most recent past state, pushing current onto the redo stack.
// It reports false, leaving both stacks alone, when there is nothing to undo.
func (m *Manager) Undo(current document.Snapshot) (document.Snapshot, bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if len(m.undo) == 0 {
		logger.DebugTagf("history", "Nothing to undo")
		return current, false
	}
	prev := m.undo[len(m.undo)-1]
	m.undo = m.undo[:len(m.undo)-1]
	m.redo = append(m.redo, current)
	m.lastKey = ""

	logger.DebugTagf("history", "Undo. Undo: %d, Redo: %d", len(m.undo), len(m.redo))
	return prev, true
}

// Redo is the mirror of Undo.
func (m *Manager) Redo(current document.Snapshot) (document.Snapshot, bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if len(m.redo) == 0 {
		logger.DebugTagf("history", "Nothing to redo")
		return current, false
	}
	next := m.redo[len(m.redo)-1]
	m.redo = m.redo[:len(m.redo)-1]
	m.undo = append(m.undo, current)
	if len(m.undo) > m.maxHistory {
		m.undo = append(m.undo[:0], m.undo[len(m.undo)-m.maxHistory:]...)
	}
	m.lastKey = ""

	logger.DebugTagf("history", "Redo. Undo: %d, Redo: %d", len(m.undo), len(m.redo))
	return next, true
}

// Clear resets both stacks. Call this when a project is opened.
func (m *Manager) Clear() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.undo = m.undo[:0]
	m.redo = m.redo[:0]
	m.lastKey = ""
	logger.DebugTagf("history", "Cleared")
}

// CanUndo returns true if there are states to go back to.
func (m *Manager) CanUndo() bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return len(m.undo) > 0
}

// CanRedo returns true if there are undone states to replay.
func (m *Manager) CanRedo() bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return len(m.redo) > 0
}

func (m *Manager) UndoDepth() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return len(m.undo)
}

func (m *Manager) RedoDepth() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return len(m.redo)
}
