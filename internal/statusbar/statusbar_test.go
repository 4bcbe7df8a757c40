package statusbar

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBar() (*StatusBar, *time.Time) {
	now := time.Unix(1_700_000_000, 0)
	sb := New(DefaultConfig())
	sb.now = func() time.Time { return now }
	return sb, &now
}

func TestDefaultLine(t *testing.T) {
	sb, _ := newBar()
	sb.SetProject("Poster")
	sb.SetCounts(2, 5)
	text, style := sb.Text()
	assert.Equal(t, "Poster -- Saved -- 2 of 5 selected", text)
	assert.Equal(t, DefaultConfig().StyleDefault, style)

	sb.SetSaveIndicator(SaveDirty)
	text, style = sb.Text()
	assert.Contains(t, text, "Unsaved")
	assert.Equal(t, DefaultConfig().StyleModified, style)
}

func TestHistoryAvailability(t *testing.T) {
	sb, _ := newBar()
	sb.SetProject("Poster")
	sb.SetCounts(0, 1)

	sb.SetHistory(true, false)
	text, _ := sb.Text()
	assert.Equal(t, "Poster -- Saved -- 0 of 1 selected -- undo", text)

	sb.SetHistory(true, true)
	text, _ = sb.Text()
	assert.True(t, strings.HasSuffix(text, " -- undo/redo"))

	sb.SetHistory(false, true)
	text, _ = sb.Text()
	assert.True(t, strings.HasSuffix(text, " -- redo"))

	sb.SetHistory(false, false)
	text, _ = sb.Text()
	assert.Equal(t, "Poster -- Saved -- 0 of 1 selected", text)
}

func TestTemporaryMessageExpires(t *testing.T) {
	sb, now := newBar()
	sb.SetTemporaryMessage("%d object(s) selected", 3)
	text, _ := sb.Text()
	assert.Equal(t, "3 object(s) selected", text)

	*now = now.Add(5 * time.Second)
	text, _ = sb.Text()
	assert.True(t, strings.HasPrefix(text, "[No Project]"))
}

func TestSaveOutcomes(t *testing.T) {
	sb, now := newBar()
	sb.SetSaveIndicator(SaveSaving)
	sb.SaveSucceeded("p")
	assert.Equal(t, SaveClean, sb.SaveIndicator())

	sb.SaveFailed("p", errors.New("network down"))
	assert.Equal(t, SaveFailed, sb.SaveIndicator())
	text, style := sb.Text()
	assert.Equal(t, "Save failed: network down", text)
	assert.Equal(t, DefaultConfig().StyleError, style)

	*now = now.Add(time.Minute)
	text, _ = sb.Text()
	assert.Contains(t, text, "Save failed")
}

func TestSucceededDoesNotHideNewerEdits(t *testing.T) {
	sb, _ := newBar()
	sb.SetSaveIndicator(SaveDirty)
	sb.SaveSucceeded("p")
	assert.Equal(t, SaveDirty, sb.SaveIndicator())
}

func TestDrawClipsToWidth(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	defer screen.Fini()
	screen.SetSize(12, 3)

	sb, _ := newBar()
	sb.SetMode("CANVAS")
	sb.SetProject("A very long project name")
	sb.Draw(screen, 12, 3)
	screen.Show()

	cells, w, _ := screen.GetContents()
	var line strings.Builder
	for x := 0; x < w; x++ {
		c := cells[2*w+x]
		if len(c.Runes) > 0 {
			line.WriteRune(c.Runes[0])
		}
	}
	assert.Equal(t, " CANVAS  A v", line.String())
}
