// Package engine implements the single-threaded event loop that drives the
// login form.
//
// ARCHITECTURE:
//
// Single-Writer Event Loop:
// Every external stimulus (keystroke, blur, submit, debounce timer fire,
// logout) is posted to a FIFO queue as an Event and executed by exactly one
// goroutine in Loop.Run. Handlers therefore never interleave, and the form
// and session state they touch need no locks.
//
// Timers:
// Loop implements debounce.Scheduler. AfterFunc arms a wall-clock timer whose
// fire is posted back into the queue rather than run on the timer goroutine,
// so debounce callbacks are ordinary loop events.
//
// CRITICAL PATTERNS:
//
// Logical Clock:
// Every posted event is stamped with a monotonic seq from Clock.Next().
// Traces order by seq, never by wall-clock time.
//
// Log and Continue:
// A handler error is logged with the event's name and seq and the loop moves
// on. Callers that need the error use Do, which hands it back.
package engine
