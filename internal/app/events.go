package app

import (
	"github.com/bethropolis/easel/internal/core/autosave"
	"github.com/bethropolis/easel/internal/event"
	"github.com/bethropolis/easel/internal/statusbar"
)

// subscribe wires the status bar to document and save events. Save events
// arrive on autosave goroutines, so handlers only touch the status bar and
// request a redraw.
func (a *App) subscribe() {
	a.eventManager.Subscribe(event.TypeDocumentEdited, a.handleDocumentChangedForStatus)
	a.eventManager.Subscribe(event.TypeDocumentRestored, a.handleDocumentChangedForStatus)
	a.eventManager.Subscribe(event.TypeSaveStarted, a.handleSaveStartedForStatus)
	a.eventManager.Subscribe(event.TypeSaveSucceeded, a.handleSaveFinished)
	a.eventManager.Subscribe(event.TypeSaveFailed, a.handleSaveFinished)
}

// handleDocumentChangedForStatus marks the project as having unsaved edits.
func (a *App) handleDocumentChangedForStatus(e event.Event) bool {
	a.statusBar.SetSaveIndicator(statusbar.SaveDirty)
	return false // Not consumed
}

// handleSaveStartedForStatus may run after later edits, since save events are
// dispatched off the coordinator lock, so it reads the session state instead
// of assuming a save is in flight.
func (a *App) handleSaveStartedForStatus(e event.Event) bool {
	a.refreshSaveIndicator()
	a.requestRedraw()
	return false
}

// handleSaveFinished redraws after the status bar, acting as the autosave
// notifier, has recorded the outcome. Edits made during a successful call
// are still unsaved; a failure stays on display.
func (a *App) handleSaveFinished(e event.Event) bool {
	if e.Type == event.TypeSaveSucceeded {
		a.refreshSaveIndicator()
	}
	a.requestRedraw()
	return false
}

func (a *App) refreshSaveIndicator() {
	switch {
	case a.session.SaveState() == autosave.StateInFlight:
		a.statusBar.SetSaveIndicator(statusbar.SaveSaving)
	case a.session.HasUnsavedChanges():
		a.statusBar.SetSaveIndicator(statusbar.SaveDirty)
	default:
		a.statusBar.SetSaveIndicator(statusbar.SaveClean)
	}
}
