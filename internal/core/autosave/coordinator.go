// Package autosave debounces document edits into project save calls, keeping
// at most one call outstanding.
package autosave

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bethropolis/easel/internal/clock"
	"github.com/bethropolis/easel/internal/document"
	"github.com/bethropolis/easel/internal/event"
	"github.com/bethropolis/easel/internal/logger"
	"github.com/bethropolis/easel/internal/metrics"
)

const (
	DefaultDebounce = 500 * time.Millisecond
	DefaultTimeout  = 15 * time.Second
)

// State is the coordinator's pending-save state.
type State int

const (
	StateIdle State = iota
	StateDebouncing
	StateInFlight
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDebouncing:
		return "debouncing"
	case StateInFlight:
		return "in-flight"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Saver persists a project snapshot.
type Saver interface {
	Save(ctx context.Context, projectID string, snap document.Snapshot) error
}

// Source supplies the freshest document state at send time.
type Source interface {
	Serialize() document.Snapshot
}

// Notifier shows transient save outcomes to the user.
type Notifier interface {
	SaveSucceeded(projectID string)
	SaveFailed(projectID string, err error)
}

// SaveData is the payload of the save lifecycle events.
type SaveData struct {
	ProjectID string
	Err       error // set for event.TypeSaveFailed
	Manual    bool  // the call was requested explicitly
}

// Options configure a Coordinator. Zero values select the defaults.
type Options struct {
	Debounce time.Duration
	Timeout  time.Duration
	Clock    clock.Clock
	Events   *event.Manager
	Notifier Notifier
}

// Coordinator drives the idle -> debouncing -> in-flight -> idle cycle.
type Coordinator struct {
	projectID string
	source    Source
	saver     Saver
	notifier  Notifier
	events    *event.Manager
	clk       clock.Clock
	debounce  time.Duration
	timeout   time.Duration

	mu         sync.Mutex // Protects everything below
	task       *clock.Task
	state      State
	dirty      bool          // edits not yet carried by a successful save
	dirtyAgain bool          // an edit arrived while in flight
	queued     bool          // a manual save arrived while in flight
	done       chan struct{} // closed when the current flight resolves
	notified   chan struct{} // closed once the current flight's outcome is reported
	lastErr    error
	stopped    bool
}

// New creates a coordinator saving projectID's state from source through saver.
func New(projectID string, source Source, saver Saver, opts Options) *Coordinator {
	if source == nil || saver == nil {
		panic("autosave.New: source and saver are required")
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	c := &Coordinator{
		projectID: projectID,
		source:    source,
		saver:     saver,
		notifier:  opts.Notifier,
		events:    opts.Events,
		clk:       opts.Clock,
		debounce:  opts.Debounce,
		timeout:   opts.Timeout,
	}
	c.task = clock.NewTask(c.clk, &c.mu, c.timerFired)
	return c
}

// NotifyEdit reports that the document changed.
func (c *Coordinator) NotifyEdit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	c.dirty = true
	if c.state == StateInFlight {
		c.dirtyAgain = true
		logger.DebugTagf("autosave", "Edit during in-flight save, marked dirty again")
		return
	}
	c.task.Arm(c.debounce)
	c.state = StateDebouncing
}

// SaveNow saves immediately, cancelling any pending debounce. If a call is
// already in flight, one follow-up save is queued instead.
func (c *Coordinator) SaveNow() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	if c.state == StateInFlight {
		c.queued = true
		logger.DebugTagf("autosave", "Manual save queued behind in-flight call")
		return
	}
	c.task.Cancel()
	c.startLocked(true)
}

// State returns the current pending-save state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// HasUnsavedChanges reports whether some edit has not landed in the store yet.
func (c *Coordinator) HasUnsavedChanges() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dirty || c.state == StateInFlight
}

// Flush waits for any in-flight call, then saves synchronously if unsaved
// changes remain. It returns the error of the last call it waited on.
func (c *Coordinator) Flush(ctx context.Context) error {
	c.mu.Lock()
	if err := c.waitLocked(ctx); err != nil {
		c.mu.Unlock()
		return err
	}
	if c.dirty {
		c.task.Cancel()
		c.startLocked(true)
		if err := c.waitLocked(ctx); err != nil {
			c.mu.Unlock()
			return err
		}
	}
	err := c.lastErr
	c.mu.Unlock()
	return err
}

// Stop cancels the pending debounce and ignores further edits. A call already
// in flight still completes.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped = true
	c.task.Cancel()
	if c.state == StateDebouncing {
		c.state = StateIdle
	}
}

// waitLocked blocks until no call is in flight. Follow-up calls started by
// the completion handler are waited on too.
func (c *Coordinator) waitLocked(ctx context.Context) error {
	for c.state == StateInFlight {
		done := c.done
		c.mu.Unlock()
		select {
		case <-done:
		case <-ctx.Done():
			c.mu.Lock()
			return ctx.Err()
		}
		c.mu.Lock()
	}
	return nil
}

// timerFired runs with c.mu held.
func (c *Coordinator) timerFired() {
	if c.state != StateDebouncing {
		return
	}
	logger.DebugTagf("autosave", "Debounce elapsed, saving")
	c.startLocked(false)
}

// startLocked moves to in-flight and issues one call carrying the current
// document state.
func (c *Coordinator) startLocked(manual bool) {
	snap := c.source.Serialize()
	c.state = StateInFlight
	c.dirty = false
	c.dirtyAgain = false
	prev := c.notified
	c.done = make(chan struct{})
	c.notified = make(chan struct{})
	go c.run(snap, manual, prev, c.done, c.notified)
}

// run performs one save call. prev, when set, is the previous flight's
// notified channel, so outcomes are reported in call order.
func (c *Coordinator) run(snap document.Snapshot, manual bool, prev, done, notified chan struct{}) {
	defer close(notified)
	if prev != nil {
		<-prev
	}
	c.events.Dispatch(event.TypeSaveStarted, SaveData{ProjectID: c.projectID, Manual: manual})

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	start := c.clk.Now()
	err := c.saver.Save(ctx, c.projectID, snap)
	cancel()
	metrics.RecordSave(err == nil, c.clk.Now().Sub(start))

	c.mu.Lock()
	c.state = StateIdle
	c.lastErr = err
	if err != nil {
		// The failed payload is not retried on its own. Edits made during
		// the call still get their debounce cycle; a queued manual save is
		// dropped.
		c.dirty = true
		c.queued = false
		if c.dirtyAgain && !c.stopped {
			c.task.Arm(c.debounce)
			c.state = StateDebouncing
		}
		c.dirtyAgain = false
		logger.Warnf("autosave: save of project %s failed: %v", c.projectID, err)
	} else {
		logger.DebugTagf("autosave", "Saved project %s (%d bytes)", c.projectID, len(snap.Bytes()))
		switch {
		case c.queued && !c.stopped:
			c.queued = false
			c.startLocked(true)
		case c.dirtyAgain && !c.stopped:
			c.dirtyAgain = false
			c.task.Arm(c.debounce)
			c.state = StateDebouncing
		}
	}
	close(done)
	c.mu.Unlock()

	if err != nil {
		if c.notifier != nil {
			c.notifier.SaveFailed(c.projectID, err)
		}
		c.events.Dispatch(event.TypeSaveFailed, SaveData{ProjectID: c.projectID, Err: err, Manual: manual})
		return
	}
	if c.notifier != nil {
		c.notifier.SaveSucceeded(c.projectID)
	}
	c.events.Dispatch(event.TypeSaveSucceeded, SaveData{ProjectID: c.projectID, Manual: manual})
}
