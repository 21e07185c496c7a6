// Package debounce coalesces bursts of events into a single deferred callback.
//
// A Controller owns at most one pending handle. Every Schedule call cancels
// the previous handle before arming a new one, so for a burst of calls that
// arrive faster than the delay only the last one ever fires.
//
// Controllers are not safe for concurrent use. They are meant to be driven
// from a single logical thread (see engine.Loop), and the Scheduler they are
// given must deliver timer callbacks on that same thread.
package debounce

import "time"

// DefaultDelay is the quiet period used by the login form.
const DefaultDelay = 500 * time.Millisecond

// Timer is a cancellable pending callback returned by a Scheduler.
type Timer interface {
	// Stop prevents the callback from firing. It returns false if the
	// callback already fired or was already stopped.
	Stop() bool
}

// Scheduler arranges for f to run once after d.
//
// Implementations must run f on the caller's logical thread; engine.Loop
// posts fires back into its queue and testutil.ManualClock runs them inside
// Advance.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// Controller is a single-slot debouncer.
type Controller struct {
	sched Scheduler

	// gen identifies the live handle. A fire whose generation is stale was
	// cancelled after its timer had already been delivered and is dropped.
	gen   uint64
	timer Timer
}

// New creates a Controller on top of sched.
func New(sched Scheduler) *Controller {
	return &Controller{sched: sched}
}

// Schedule cancels any pending callback and arranges for cb to run once
// after delay, unless Schedule or Cancel is called again first.
func (c *Controller) Schedule(cb func(), delay time.Duration) {
	c.Cancel()

	c.gen++
	gen := c.gen
	c.timer = c.sched.AfterFunc(delay, func() {
		if c.timer == nil || gen != c.gen {
			return
		}
		c.timer = nil
		cb()
	})
}

// Cancel stops the pending callback, if any. After Cancel returns the
// callback is guaranteed never to run. Cancel is idempotent.
func (c *Controller) Cancel() {
	if c.timer == nil {
		return
	}
	c.timer.Stop()
	c.timer = nil
	c.gen++
}

// Pending reports whether a callback is scheduled and has not yet fired.
func (c *Controller) Pending() bool {
	return c.timer != nil
}
