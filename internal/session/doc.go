// Package session holds the client-side "is logged in" flag.
//
// Store is a two-state machine (LoggedOut, LoggedIn). The in-memory flag is
// the source of truth; durable Storage mirrors it under a single marker key
// and is read only once, by Restore, at startup. Login writes the marker
// before flipping the flag and Logout deletes it before clearing the flag,
// so the two never disagree outside the write itself.
//
// Listeners are notified synchronously on every transition, in subscription
// order, with no buffering or coalescing.
//
// A Store is constructed once per process and handed to whatever needs it;
// there is no package-level instance.
package session
