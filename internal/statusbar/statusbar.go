// internal/statusbar/statusbar.go
package statusbar

import (
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"
)

// Config defines the appearance and behavior of the status bar.
type Config struct {
	StyleDefault   tcell.Style
	StyleModified  tcell.Style // Unsaved changes indicator
	StyleSaved     tcell.Style // Shown briefly after a successful save
	StyleError     tcell.Style // Failed saves
	StyleMessage   tcell.Style // Temporary messages
	StyleMode      tcell.Style // Focus mode badge
	MessageTimeout time.Duration
}

// DefaultConfig provides sensible defaults.
func DefaultConfig() Config {
	return Config{
		StyleDefault:   tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorBlue),
		StyleModified:  tcell.StyleDefault.Foreground(tcell.ColorYellow).Background(tcell.ColorBlue).Bold(true),
		StyleSaved:     tcell.StyleDefault.Foreground(tcell.ColorGreen).Background(tcell.ColorBlue),
		StyleError:     tcell.StyleDefault.Foreground(tcell.ColorRed).Background(tcell.ColorBlue).Bold(true),
		StyleMessage:   tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlue).Bold(true),
		StyleMode:      tcell.StyleDefault.Foreground(tcell.ColorBlue).Background(tcell.ColorWhite).Bold(true),
		MessageTimeout: 4 * time.Second,
	}
}

// SaveIndicator is the persistence state shown to the user.
type SaveIndicator int

const (
	SaveClean SaveIndicator = iota
	SaveDirty
	SaveSaving
	SaveFailed
)

func (s SaveIndicator) String() string {
	switch s {
	case SaveDirty:
		return "Unsaved"
	case SaveSaving:
		return "Saving..."
	case SaveFailed:
		return "Save failed"
	default:
		return "Saved"
	}
}

// StatusBar is the bottom line: mode, project, save state and selection, or
// a temporary message. It doubles as the save outcome notifier.
type StatusBar struct {
	config Config
	now    func() time.Time
	mu     sync.RWMutex

	project   string
	mode      string
	save      SaveIndicator
	selected  int
	objects   int
	canUndo   bool
	canRedo   bool
	lastError string

	tempMessage     string
	tempIsError     bool
	tempMessageTime time.Time
}

// New creates a new StatusBar with the given configuration.
func New(config Config) *StatusBar {
	return &StatusBar{config: config, now: time.Now}
}

// SetProject updates the project name.
func (sb *StatusBar) SetProject(name string) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.project = name
}

// SetMode updates the focus mode badge.
func (sb *StatusBar) SetMode(mode string) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.mode = mode
}

// SetCounts updates the selection and object counts.
func (sb *StatusBar) SetCounts(selected, objects int) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.selected = selected
	sb.objects = objects
}

// SetHistory records whether undo and redo are available.
func (sb *StatusBar) SetHistory(canUndo, canRedo bool) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.canUndo = canUndo
	sb.canRedo = canRedo
}

// SetSaveIndicator updates the persistence state.
func (sb *StatusBar) SetSaveIndicator(s SaveIndicator) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	// A failure stays visible until the next save attempt or edit.
	sb.save = s
	if s != SaveFailed {
		sb.lastError = ""
	}
}

// SaveIndicator returns the current persistence state.
func (sb *StatusBar) SaveIndicator() SaveIndicator {
	sb.mu.RLock()
	defer sb.mu.RUnlock()
	return sb.save
}

// SaveSucceeded is called from the autosave goroutine.
func (sb *StatusBar) SaveSucceeded(projectID string) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	if sb.save == SaveSaving {
		sb.save = SaveClean
	}
	sb.lastError = ""
}

// SaveFailed is called from the autosave goroutine.
func (sb *StatusBar) SaveFailed(projectID string, err error) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.save = SaveFailed
	sb.lastError = err.Error()
	sb.tempMessage = "Save failed: " + err.Error()
	sb.tempIsError = true
	sb.tempMessageTime = sb.now()
}

// SetTemporaryMessage displays a message for a configured duration.
func (sb *StatusBar) SetTemporaryMessage(format string, args ...interface{}) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.tempMessage = fmt.Sprintf(format, args...)
	sb.tempIsError = false
	sb.tempMessageTime = sb.now()
}

// Text returns the line Draw would render, and its style. Exposed for tests.
func (sb *StatusBar) Text() (string, tcell.Style) {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	if !sb.tempMessageTime.IsZero() {
		if sb.now().Sub(sb.tempMessageTime) <= sb.config.MessageTimeout {
			if sb.tempIsError {
				return sb.tempMessage, sb.config.StyleError
			}
			return sb.tempMessage, sb.config.StyleMessage
		}
		sb.tempMessage = ""
		sb.tempMessageTime = time.Time{}
	}

	project := sb.project
	if project == "" {
		project = "[No Project]"
	}
	text := fmt.Sprintf("%s -- %s -- %d of %d selected", project, sb.save, sb.selected, sb.objects)
	switch {
	case sb.canUndo && sb.canRedo:
		text += " -- undo/redo"
	case sb.canUndo:
		text += " -- undo"
	case sb.canRedo:
		text += " -- redo"
	}

	style := sb.config.StyleDefault
	switch sb.save {
	case SaveDirty, SaveSaving:
		style = sb.config.StyleModified
	case SaveFailed:
		style = sb.config.StyleError
	}
	return text, style
}

// Draw renders the status bar on the last screen line.
func (sb *StatusBar) Draw(screen tcell.Screen, width, height int) {
	if height <= 0 || width <= 0 {
		return
	}
	y := height - 1

	sb.mu.RLock()
	mode := sb.mode
	sb.mu.RUnlock()
	text, style := sb.Text()

	for x := 0; x < width; x++ {
		screen.SetContent(x, y, ' ', nil, style)
	}

	x := 0
	if mode != "" {
		x = drawString(screen, x, y, width, " "+mode+" ", sb.config.StyleMode)
		x++
	}
	drawString(screen, x, y, width, text, style)
}

// drawString draws text grapheme by grapheme and returns the next column.
func drawString(screen tcell.Screen, x, y, maxX int, text string, style tcell.Style) int {
	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		w := gr.Width()
		if x+w > maxX {
			break
		}
		runes := gr.Runes()
		if len(runes) > 0 {
			screen.SetContent(x, y, runes[0], runes[1:], style)
		}
		x += w
	}
	return x
}
