// Package form implements the login form controller.
//
// A Controller owns the email and password field states, one debounce
// controller, and a reference to the session store it was given. Field
// validity updates eagerly on every edit; the aggregate FormValid flag is
// recomputed only after input has been quiet for the debounce delay, so it
// reflects the last settled check and may lag the fields while the user is
// typing. That lag is intended.
//
// A Controller is not safe for concurrent use. Drive it from one goroutine
// and give it a Scheduler that fires on that goroutine (engine.Loop, or
// testutil.ManualClock in tests). Close must be called before the Controller
// is discarded.
package form
