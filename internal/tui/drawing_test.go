package tui

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bethropolis/easel/internal/document"
	"github.com/bethropolis/easel/internal/theme"
)

func simScreen(t *testing.T, w, h int) tcell.SimulationScreen {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, s.Init())
	s.SetSize(w, h)
	t.Cleanup(s.Fini)
	return s
}

func runeAt(s tcell.SimulationScreen, x, y int) rune {
	cells, w, _ := s.GetContents()
	c := cells[y*w+x]
	if len(c.Runes) == 0 {
		return 0
	}
	return c.Runes[0]
}

func newDoc(t *testing.T, objs ...*document.Object) *document.Document {
	t.Helper()
	doc := document.New(nil, 100, 100)
	if len(objs) > 0 {
		require.NoError(t, doc.Mutate(document.AddObjects{Objects: objs}))
	}
	return doc
}

var view = Viewport{Left: 1, Top: 1, CellWidth: 10, CellHeight: 20}

func TestViewportRoundTrip(t *testing.T) {
	col, row := view.ToCell(25, 45)
	assert.Equal(t, 3, col)
	assert.Equal(t, 3, row)

	x, y := view.ToCanvas(col, row)
	assert.Equal(t, 25.0, x)
	assert.Equal(t, 50.0, y)
	c2, r2 := view.ToCell(x, y)
	assert.Equal(t, col, c2)
	assert.Equal(t, row, r2)
}

func TestDrawCanvasBorderAndRect(t *testing.T) {
	s := simScreen(t, 20, 10)
	doc := newDoc(t, &document.Object{ID: "a", Type: document.TypeRect, Left: 10, Top: 20, Width: 30, Height: 40})
	th := theme.EaselDark

	DrawCanvas(s, doc, view, &th, TextEntry{})
	s.Show()

	// Canvas 100x100 covers cells (1,1)-(10,5); border one cell outside.
	assert.Equal(t, '┌', runeAt(s, 0, 0))
	assert.Equal(t, '┘', runeAt(s, 11, 6))

	// Rect spans cells (2,2)-(4,3).
	assert.Equal(t, '┌', runeAt(s, 2, 2))
	assert.Equal(t, '┐', runeAt(s, 4, 2))
	assert.Equal(t, '└', runeAt(s, 2, 3))
	assert.Equal(t, '┘', runeAt(s, 4, 3))
}

func TestDrawTextUsesEntryWhileEditing(t *testing.T) {
	s := simScreen(t, 20, 10)
	doc := newDoc(t, &document.Object{ID: "t", Type: document.TypeText, Text: "old", Width: 60, Height: 20})
	th := theme.EaselDark

	DrawCanvas(s, doc, view, &th, TextEntry{ID: "t", Text: "new", Active: true})
	s.Show()
	assert.Equal(t, 'n', runeAt(s, 1, 1))
	assert.Equal(t, 'w', runeAt(s, 3, 1))
}

func TestDrawClipsToCanvas(t *testing.T) {
	s := simScreen(t, 20, 10)
	doc := newDoc(t, &document.Object{ID: "a", Type: document.TypeRect, Left: 80, Top: 0, Width: 100, Height: 30})
	th := theme.EaselDark

	DrawCanvas(s, doc, view, &th, TextEntry{})
	s.Show()
	assert.Equal(t, '[', runeAt(s, 9, 1))
	assert.Equal(t, '─', runeAt(s, 10, 1))
	// Column 11 is the canvas border, not the rect.
	assert.Equal(t, '│', runeAt(s, 11, 1))
	assert.NotEqual(t, '─', runeAt(s, 13, 1))
}

func TestObjectStyleUsesFill(t *testing.T) {
	th := theme.EaselDark
	fg, _, _ := th.ObjectStyle("rect", "#ff0000").Decompose()
	assert.Equal(t, tcell.NewHexColor(0xff0000), fg)

	fg, _, _ = th.ObjectStyle("rect", "not-a-colour").Decompose()
	want, _, _ := th.GetStyle("Object").Decompose()
	assert.Equal(t, want, fg)
}
