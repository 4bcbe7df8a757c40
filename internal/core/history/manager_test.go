package history

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bethropolis/easel/internal/clock"
	"github.com/bethropolis/easel/internal/document"
	"github.com/bethropolis/easel/internal/event"
)

type fixture struct {
	clk  *clock.Fake
	doc  *document.Document
	hist *Manager
}

func newFixture(t *testing.T, maxHistory int) *fixture {
	t.Helper()
	events := event.NewManager()
	clk := clock.NewFake(time.Unix(0, 0))
	f := &fixture{
		clk:  clk,
		doc:  document.New(events, 800, 600),
		hist: NewManager(clk, maxHistory, DefaultCoalesceWindow),
	}
	f.hist.Subscribe(events)
	return f
}

func (f *fixture) add(t *testing.T, id string) {
	t.Helper()
	obj := &document.Object{ID: id, Type: document.TypeRect, Width: 10, Height: 10}
	require.NoError(t, f.doc.Mutate(document.AddObjects{Objects: []*document.Object{obj}}))
}

func (f *fixture) undo(t *testing.T) bool {
	t.Helper()
	prev, ok := f.hist.Undo(f.doc.Serialize())
	if ok {
		require.NoError(t, f.doc.Restore(prev))
	}
	return ok
}

func (f *fixture) redo(t *testing.T) bool {
	t.Helper()
	next, ok := f.hist.Redo(f.doc.Serialize())
	if ok {
		require.NoError(t, f.doc.Restore(next))
	}
	return ok
}

func TestUndoAllThenRedoAll(t *testing.T) {
	f := newFixture(t, 0)
	var states []document.Snapshot
	states = append(states, f.doc.Serialize())
	for i := 0; i < 5; i++ {
		f.add(t, fmt.Sprintf("o%d", i))
		states = append(states, f.doc.Serialize())
	}

	for i := 4; i >= 0; i-- {
		require.True(t, f.undo(t))
		assert.True(t, f.doc.Serialize().Equal(states[i]), "after undo to state %d", i)
	}
	assert.False(t, f.hist.CanUndo())

	for i := 1; i <= 5; i++ {
		require.True(t, f.redo(t))
		assert.True(t, f.doc.Serialize().Equal(states[i]), "after redo to state %d", i)
	}
	assert.False(t, f.hist.CanRedo())
}

func TestUndoOnEmptyStackKeepsRedo(t *testing.T) {
	f := newFixture(t, 0)
	f.add(t, "a")
	require.True(t, f.undo(t))
	require.Equal(t, 1, f.hist.RedoDepth())

	before := f.doc.Serialize()
	assert.False(t, f.undo(t))
	assert.Equal(t, 1, f.hist.RedoDepth())
	assert.True(t, f.doc.Serialize().Equal(before))

	_, ok := f.hist.Redo(before)
	assert.True(t, ok)
}

func TestEditAfterUndoClearsRedo(t *testing.T) {
	f := newFixture(t, 0)
	f.add(t, "a")
	f.add(t, "b")
	require.True(t, f.undo(t))
	require.True(t, f.undo(t))
	require.Equal(t, 2, f.hist.RedoDepth())

	f.add(t, "c")
	assert.Zero(t, f.hist.RedoDepth())
	assert.False(t, f.redo(t))
}

func TestDepthCapEvictsOldest(t *testing.T) {
	f := newFixture(t, 3)
	var states []document.Snapshot
	for i := 0; i < 6; i++ {
		states = append(states, f.doc.Serialize())
		f.add(t, fmt.Sprintf("o%d", i))
	}
	assert.Equal(t, 3, f.hist.UndoDepth())

	for i := 5; i >= 3; i-- {
		require.True(t, f.undo(t))
		assert.True(t, f.doc.Serialize().Equal(states[i]))
	}
	assert.False(t, f.undo(t), "older states were evicted")
}

func TestCoalescingWithinWindow(t *testing.T) {
	f := newFixture(t, 0)
	f.add(t, "a")
	start := f.doc.Serialize()

	move := document.MoveObjects{IDs: []string{"a"}, DX: 1}
	for i := 0; i < 10; i++ {
		require.NoError(t, f.doc.Mutate(move))
		f.clk.Advance(100 * time.Millisecond)
	}
	assert.Equal(t, 2, f.hist.UndoDepth(), "one entry for add, one for the whole drag")

	require.True(t, f.undo(t))
	assert.True(t, f.doc.Serialize().Equal(start))
}

func TestZeroWindowDisablesCoalescing(t *testing.T) {
	events := event.NewManager()
	clk := clock.NewFake(time.Unix(0, 0))
	doc := document.New(events, 800, 600)
	hist := NewManager(clk, 0, 0)
	hist.Subscribe(events)

	require.NoError(t, doc.Mutate(document.AddObjects{Objects: []*document.Object{
		{ID: "a", Type: document.TypeRect, Width: 10, Height: 10},
	}}))
	move := document.MoveObjects{IDs: []string{"a"}, DX: 1}
	require.NoError(t, doc.Mutate(move))
	require.NoError(t, doc.Mutate(move), "same instant, same key")
	clk.Advance(100 * time.Millisecond)
	require.NoError(t, doc.Mutate(move))

	assert.Equal(t, 4, hist.UndoDepth())
}

func TestCoalescingBreaksOnPauseKeyOrUndo(t *testing.T) {
	f := newFixture(t, 0)
	f.add(t, "a")
	f.add(t, "b")
	moveA := document.MoveObjects{IDs: []string{"a"}, DX: 1}
	moveB := document.MoveObjects{IDs: []string{"b"}, DX: 1}

	require.NoError(t, f.doc.Mutate(moveA))
	f.clk.Advance(DefaultCoalesceWindow + time.Millisecond)
	require.NoError(t, f.doc.Mutate(moveA))
	assert.Equal(t, 4, f.hist.UndoDepth(), "a pause starts a new entry")

	require.NoError(t, f.doc.Mutate(moveB))
	assert.Equal(t, 5, f.hist.UndoDepth(), "a different target starts a new entry")

	require.True(t, f.undo(t))
	require.NoError(t, f.doc.Mutate(moveB))
	assert.Equal(t, 5, f.hist.UndoDepth(), "undo ends the run")
}

func TestClear(t *testing.T) {
	f := newFixture(t, 0)
	f.add(t, "a")
	f.undo(t)
	f.hist.Clear()
	assert.False(t, f.hist.CanUndo())
	assert.False(t, f.hist.CanRedo())
}
