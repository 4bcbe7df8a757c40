// internal/app/app.go
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gdamore/tcell/v2"

	"github.com/bethropolis/easel/internal/config"
	"github.com/bethropolis/easel/internal/core/clipboard"
	"github.com/bethropolis/easel/internal/dispatcher"
	"github.com/bethropolis/easel/internal/event"
	"github.com/bethropolis/easel/internal/input"
	"github.com/bethropolis/easel/internal/logger"
	"github.com/bethropolis/easel/internal/session"
	"github.com/bethropolis/easel/internal/statusbar"
	"github.com/bethropolis/easel/internal/store"
	"github.com/bethropolis/easel/internal/theme"
	"github.com/bethropolis/easel/internal/tui"
)

// Options configure an App.
type Options struct {
	Config    *config.Config
	Store     store.Store
	ProjectID string       // Empty opens the most recent project, or a new one
	Screen    tcell.Screen // Nil uses the terminal
}

// App encapsulates the core components and main loop of the editor.
type App struct {
	cfg          *config.Config
	tuiManager   *tui.TUI
	session      *session.Session
	dispatcher   *dispatcher.Dispatcher
	statusBar    *statusbar.StatusBar
	eventManager *event.Manager
	themeManager *theme.Manager
	view         tui.Viewport

	// Channels managed by the App
	quit          chan struct{}
	redrawRequest chan struct{}
}

// NewApp creates the editing session, opens a project and takes over the screen.
func NewApp(ctx context.Context, opts Options) (*App, error) {
	if opts.Config == nil || opts.Store == nil {
		panic("app.NewApp: Config and Store are required")
	}
	cfg := opts.Config

	themeManager := theme.NewManager(themesDir())
	if cfg.Editor.Theme != "" {
		if err := themeManager.SetTheme(cfg.Editor.Theme); err != nil {
			logger.Warnf("App: %v, using %s", err, theme.DefaultThemeName)
		}
	}
	activeTheme := themeManager.Current()

	eventManager := event.NewManager()
	statusBar := statusbar.New(statusBarConfig(activeTheme))

	var system clipboard.SystemClipboard
	if cfg.Editor.SystemClipboard {
		if system = clipboard.System(); system == nil {
			logger.Warnf("App: system clipboard unavailable on this platform")
		}
	}

	sess := session.New(opts.Store, session.Options{
		Events:          eventManager,
		HistoryDepth:    cfg.Editor.HistoryDepth,
		CoalesceWindow:  cfg.Editor.CoalesceWindow,
		PasteOffsetX:    cfg.Editor.PasteOffset,
		PasteOffsetY:    cfg.Editor.PasteOffset,
		SystemClipboard: system,
		Debounce:        cfg.Autosave.Debounce,
		SaveTimeout:     cfg.Autosave.Timeout,
		Notifier:        statusBar,
	})

	projectID, err := resolveProject(ctx, opts.Store, opts.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := sess.Open(ctx, projectID); err != nil {
		return nil, err
	}

	quitChan := make(chan struct{})
	disp := dispatcher.New(dispatcher.Config{
		Target:         sess,
		Document:       sess.Document(),
		InputProcessor: input.NewProcessor(),
		EventManager:   eventManager,
		Messages:       statusBar,
		QuitSignal:     quitChan,
		MoveStep:       cfg.Editor.MoveStep,
	})

	var tuiManager *tui.TUI
	if opts.Screen != nil {
		tuiManager, err = tui.NewWithScreen(opts.Screen, activeTheme)
	} else {
		tuiManager, err = tui.New(activeTheme)
	}
	if err != nil {
		_ = sess.Close(ctx)
		return nil, fmt.Errorf("TUI initialization failed: %w", err)
	}

	a := &App{
		cfg:          cfg,
		tuiManager:   tuiManager,
		session:      sess,
		dispatcher:   disp,
		statusBar:    statusBar,
		eventManager: eventManager,
		themeManager: themeManager,
		view: tui.Viewport{
			Left:       1,
			Top:        1,
			CellWidth:  cfg.Editor.CellWidth,
			CellHeight: cfg.Editor.CellHeight,
		},
		quit:          quitChan,
		redrawRequest: make(chan struct{}, 1),
	}
	a.subscribe()

	_, name, _ := sess.Project()
	statusBar.SetProject(name)
	return a, nil
}

// resolveProject picks the project to open: the requested one, else the most
// recently updated, else a fresh one.
func resolveProject(ctx context.Context, st store.Store, id string) (string, error) {
	if id != "" {
		return id, nil
	}
	page, err := st.List(ctx, store.Page{Page: 1, Limit: 1})
	if err != nil {
		return "", fmt.Errorf("listing projects: %w", err)
	}
	if len(page.Data) > 0 {
		return page.Data[0].ID, nil
	}
	p, err := st.Create(ctx, store.CreateParams{Name: "Untitled"})
	if err != nil {
		return "", fmt.Errorf("creating project: %w", err)
	}
	logger.Infof("App: created project %s", p.ID)
	return p.ID, nil
}

func themesDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, config.AppName, config.ThemesDirName)
}

// Run starts the application's main event and drawing loop. It returns after
// a quit request or ctx cancellation, once unsaved changes are flushed.
func (a *App) Run(ctx context.Context) error {
	defer a.tuiManager.Close()

	events := make(chan tcell.Event)
	stop := make(chan struct{})
	defer close(stop)
	go a.pollEvents(events, stop)

	a.eventManager.Dispatch(event.TypeAppReady, nil)
	a.statusBar.SetTemporaryMessage("r/e/t/l add shapes | Ctrl+S Save | Ctrl+Q Quit")
	a.drawCanvas()

	for {
		select {
		case <-a.quit:
			return a.shutdown()
		case <-ctx.Done():
			return a.shutdown()
		case ev := <-events:
			if a.handleEvent(ev) {
				a.drawCanvas()
			}
		case <-a.redrawRequest:
			a.drawCanvas()
		}
	}
}

// pollEvents forwards terminal events until the screen is finalized.
func (a *App) pollEvents(out chan<- tcell.Event, stop <-chan struct{}) {
	for {
		ev := a.tuiManager.PollEvent()
		if ev == nil {
			return
		}
		select {
		case out <- ev:
		case <-stop:
			return
		}
	}
}

func (a *App) shutdown() error {
	a.eventManager.Dispatch(event.TypeAppQuit, nil)

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Autosave.Timeout)
	defer cancel()
	if err := a.session.Close(ctx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			logger.Warnf("App: timed out flushing unsaved changes")
		}
		return fmt.Errorf("saving on exit: %w", err)
	}
	logger.Infof("Exiting application.")
	return nil
}

// handleEvent routes one terminal event. Returns true if a redraw is needed.
func (a *App) handleEvent(ev tcell.Event) bool {
	switch e := ev.(type) {
	case *tcell.EventResize:
		a.tuiManager.GetScreen().Sync()
		return true
	case *tcell.EventKey:
		return a.dispatcher.HandleKeyEvent(e)
	case *tcell.EventMouse:
		col, row := e.Position()
		_, height := a.tuiManager.Size()
		if row >= height-config.StatusBarHeight {
			return false
		}
		x, y := a.view.ToCanvas(col, row)
		return a.dispatcher.HandleMouse(dispatcher.MouseInput{
			X:       x,
			Y:       y,
			Pressed: e.Buttons()&tcell.Button1 != 0,
		})
	}
	return false
}

// requestRedraw sends a redraw signal non-blockingly. Safe from any goroutine.
func (a *App) requestRedraw() {
	select {
	case a.redrawRequest <- struct{}{}:
	default: // Don't block if a redraw is already pending
	}
}

// drawCanvas clears the screen and redraws all components.
func (a *App) drawCanvas() {
	a.updateStatusBarContent()

	activeTheme := a.themeManager.Current()
	screen := a.tuiManager.GetScreen()
	width, height := a.tuiManager.Size()

	var entry tui.TextEntry
	if id, text, ok := a.dispatcher.TextEntry(); ok {
		entry = tui.TextEntry{ID: id, Text: text, Active: true}
	}

	a.tuiManager.Clear()
	tui.DrawCanvas(screen, a.session.Document(), a.view, activeTheme, entry)
	a.statusBar.Draw(screen, width, height)
	a.tuiManager.Show()
}

// updateStatusBarContent pushes current session state to the status bar.
func (a *App) updateStatusBarContent() {
	doc := a.session.Document()
	a.statusBar.SetMode(a.dispatcher.Mode().String())
	a.statusBar.SetCounts(len(doc.SelectedIDs()), doc.Len())
	hist := a.session.History()
	a.statusBar.SetHistory(hist.CanUndo(), hist.CanRedo())
}

func statusBarConfig(th *theme.Theme) statusbar.Config {
	c := statusbar.DefaultConfig()
	c.StyleDefault = th.GetStyle("StatusBar")
	c.StyleModified = th.GetStyle("StatusBarModified")
	c.StyleSaved = th.GetStyle("StatusBarSaved")
	c.StyleError = th.GetStyle("StatusBarError")
	c.StyleMessage = th.GetStyle("StatusBarMessage")
	c.StyleMode = th.GetStyle("StatusBarMode")
	c.MessageTimeout = config.MessageTimeout
	return c
}
