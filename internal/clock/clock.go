// Package clock abstracts wall-clock time and scheduled callbacks so that
// debounce and coalescing behaviour can be driven by a virtual clock in tests.
package clock

import (
	"sync"
	"time"
)

// Timer is a scheduled callback that can be cancelled.
type Timer interface {
	// Stop prevents the callback from firing. It reports false if the callback
	// already fired or the timer was already stopped.
	Stop() bool
}

// Clock supplies the current time and one-shot timers.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

// Real returns a Clock backed by the time package.
func Real() Clock { return realClock{} }

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Task is a cancellable scheduled task bound to its owner's lock.
//
// Arm and Cancel must be called with the owner's lock held. When the timer
// fires, Task acquires the same lock and runs fn only if the arming that
// scheduled it is still current, so a callback racing with Cancel or a
// re-Arm is discarded. fn runs with the lock held.
type Task struct {
	clk   Clock
	lock  sync.Locker
	fn    func()
	timer Timer
	gen   uint64
	armed bool
}

// NewTask creates an unarmed task.
func NewTask(clk Clock, lock sync.Locker, fn func()) *Task {
	return &Task{clk: clk, lock: lock, fn: fn}
}

// Arm schedules fn after d, replacing any pending arming.
func (t *Task) Arm(d time.Duration) {
	t.Cancel()
	t.gen++
	gen := t.gen
	t.armed = true
	t.timer = t.clk.AfterFunc(d, func() { t.fire(gen) })
}

// Cancel discards the pending arming, if any.
func (t *Task) Cancel() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.armed = false
}

// Armed reports whether a firing is pending.
func (t *Task) Armed() bool { return t.armed }

func (t *Task) fire(gen uint64) {
	t.lock.Lock()
	defer t.lock.Unlock()
	if !t.armed || gen != t.gen {
		return
	}
	t.armed = false
	t.timer = nil
	t.fn()
}
