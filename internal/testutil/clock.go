// Package testutil holds deterministic stand-ins for time and identity so
// that form runs produce byte-identical traces.
package testutil

import (
	"sort"
	"sync"
	"time"

	"github.com/roach88/authform/internal/debounce"
)

// SeqClock is a resettable logical clock for trace sequence numbers.
//
// It satisfies trace.Sequencer. The first call to Next returns 1.
type SeqClock struct {
	mu  sync.Mutex
	seq int64
}

// NewSeqClock creates a clock starting at 0.
func NewSeqClock() *SeqClock {
	return &SeqClock{}
}

// Next increments and returns the sequence number.
func (c *SeqClock) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return c.seq
}

// Current returns the sequence number without incrementing.
func (c *SeqClock) Current() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}

// Reset rewinds the clock so the next call to Next returns 1 again.
func (c *SeqClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq = 0
}

// ManualClock is a virtual-time debounce.Scheduler.
//
// Timers never fire on their own. Advance moves virtual time forward and
// runs every due callback on the calling goroutine, in due-time order with
// ties broken by scheduling order. Callbacks may schedule new timers; those
// fire within the same Advance if they fall due before its end.
type ManualClock struct {
	mu     sync.Mutex
	now    time.Duration
	nextID uint64
	timers []*manualTimer
}

type manualTimer struct {
	clock *ManualClock
	id    uint64
	at    time.Duration
	f     func()
	done  bool
}

// NewManualClock creates a clock at virtual time zero.
func NewManualClock() *ManualClock {
	return &ManualClock{}
}

// AfterFunc implements debounce.Scheduler.
func (c *ManualClock) AfterFunc(d time.Duration, f func()) debounce.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	if d < 0 {
		d = 0
	}
	c.nextID++
	t := &manualTimer{clock: c, id: c.nextID, at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

// Stop implements debounce.Timer.
func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	if t.done {
		return false
	}
	t.done = true
	t.clock.prune()
	return true
}

// Advance moves virtual time forward by d and returns how many callbacks ran.
func (c *ManualClock) Advance(d time.Duration) int {
	c.mu.Lock()
	target := c.now + d
	c.mu.Unlock()

	fired := 0
	for {
		c.mu.Lock()
		t := c.nextDue(target)
		if t == nil {
			c.now = target
			c.mu.Unlock()
			return fired
		}
		t.done = true
		c.now = t.at
		c.prune()
		c.mu.Unlock()

		t.f()
		fired++
	}
}

// Now returns the elapsed virtual time.
func (c *ManualClock) Now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Pending returns the number of timers that have neither fired nor been stopped.
func (c *ManualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

// nextDue returns the earliest live timer due at or before target. Caller holds mu.
func (c *ManualClock) nextDue(target time.Duration) *manualTimer {
	sort.SliceStable(c.timers, func(i, j int) bool {
		if c.timers[i].at != c.timers[j].at {
			return c.timers[i].at < c.timers[j].at
		}
		return c.timers[i].id < c.timers[j].id
	})
	for _, t := range c.timers {
		if !t.done && t.at <= target {
			return t
		}
	}
	return nil
}

// prune drops finished timers. Caller holds mu.
func (c *ManualClock) prune() {
	live := c.timers[:0]
	for _, t := range c.timers {
		if !t.done {
			live = append(live, t)
		}
	}
	for i := len(live); i < len(c.timers); i++ {
		c.timers[i] = nil
	}
	c.timers = live
}
