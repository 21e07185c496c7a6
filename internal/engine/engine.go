package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/authform/internal/debounce"
)

// Loop is the single-writer event loop.
//
// CRITICAL: Run must be called from exactly ONE goroutine. All form and
// session mutations happen in handlers executed by Run.
//
// Thread-safety model:
//   - Post(), Do(), AfterFunc(): safe from any goroutine
//   - Run(): must be called from exactly one goroutine
//   - Do() must not be called from inside a handler (it would wait on itself)
type Loop struct {
	queue  *eventQueue
	clock  *Clock
	logger *slog.Logger
}

// Option configures a Loop.
type Option func(*Loop)

// WithClock sets the logical clock used to stamp events.
func WithClock(c *Clock) Option {
	return func(l *Loop) {
		l.clock = c
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) {
		l.logger = logger
	}
}

// New creates a Loop. It does nothing until Run is called.
func New(opts ...Option) *Loop {
	l := &Loop{
		queue:  newEventQueue(),
		clock:  NewClock(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Clock returns the loop's logical clock.
func (l *Loop) Clock() *Clock {
	return l.clock
}

// Post enqueues fn to run on the loop goroutine.
// Returns false if the loop has stopped.
func (l *Loop) Post(name string, fn func() error) bool {
	return l.queue.Enqueue(Event{Name: name, Seq: l.clock.Next(), Fn: fn})
}

// Do enqueues fn and blocks until it has run, returning its error.
func (l *Loop) Do(ctx context.Context, name string, fn func() error) error {
	done := make(chan error, 1)
	if !l.queue.Enqueue(Event{Name: name, Seq: l.clock.Next(), Fn: fn, done: done}) {
		return ErrLoopClosed
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AfterFunc implements debounce.Scheduler. The callback is posted to the
// loop when the timer fires, so it never runs concurrently with a handler.
func (l *Loop) AfterFunc(d time.Duration, f func()) debounce.Timer {
	return &loopTimer{t: time.AfterFunc(d, func() {
		l.Post("timer.fire", func() error {
			f()
			return nil
		})
	})}
}

type loopTimer struct {
	t *time.Timer
}

// Stop stops the wall-clock timer. A fire that was already posted still
// runs; debounce.Controller drops it by generation.
func (t *loopTimer) Stop() bool {
	return t.t.Stop()
}

// Len returns the number of queued events.
func (l *Loop) Len() int {
	return l.queue.Len()
}

// Run processes events until ctx is cancelled or Stop is called.
//
// ERROR HANDLING: handler errors and panics are logged with the event name
// and seq, and processing continues. Waiters in Do receive them instead.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Debug("event loop starting")

	for {
		if ev, ok := l.queue.TryDequeue(); ok {
			l.process(ev)
			continue
		}

		select {
		case <-ctx.Done():
			l.logger.Debug("event loop stopping: context cancelled")
			l.abandon(l.queue.Close())
			return ctx.Err()

		case _, open := <-l.queue.Wait():
			if !open {
				l.logger.Debug("event loop stopped")
				return nil
			}
		}
	}
}

// Stop closes the queue. Events still queued are abandoned and their
// waiters receive ErrLoopClosed. Run returns nil once it notices.
func (l *Loop) Stop() {
	l.abandon(l.queue.Close())
}

func (l *Loop) abandon(events []Event) {
	for _, ev := range events {
		if ev.done != nil {
			ev.done <- ErrLoopClosed
		}
	}
	if len(events) > 0 {
		l.logger.Warn("abandoned queued events", "count", len(events))
	}
}

// process runs a single event. Called only from Run.
func (l *Loop) process(ev Event) {
	err := l.invoke(ev)
	if ev.done != nil {
		ev.done <- err
		return
	}
	if err != nil {
		l.logger.Error("event processing failed",
			"error", err,
			"event", ev.Name,
			"seq", ev.Seq,
		)
	}
}

func (l *Loop) invoke(ev Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			perr, ok := r.(error)
			if !ok {
				perr = fmt.Errorf("%v", r)
			}
			err = &RuntimeError{Code: ErrCodeHandlerPanic, Event: ev.Name, Seq: ev.Seq, Err: perr}
		}
	}()

	if ev.Fn == nil {
		return nil
	}
	if herr := ev.Fn(); herr != nil {
		return &RuntimeError{Code: ErrCodeHandlerFailed, Event: ev.Name, Seq: ev.Seq, Err: herr}
	}
	return nil
}
