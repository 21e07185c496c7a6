package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/authform/internal/trace"
)

// Durable marker written on login and removed on logout.
const (
	MarkerKey   = "isLoggedIn"
	MarkerValue = "1"
)

var (
	// ErrAlreadyRestored is returned by a second call to Restore.
	ErrAlreadyRestored = errors.New("session already restored")

	// ErrInvalidCredentials is returned by Login when the authenticator rejects the credentials.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Storage is the durable key-value collaborator. See package store.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// State is the observable session state.
type State struct {
	IsLoggedIn bool `json:"logged_in" yaml:"logged_in"`
}

// Listener receives the new State after every transition.
type Listener func(State)

// Authenticator decides whether credentials may log in.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) error
}

// StubAuthenticator accepts any credentials. There is no real credential
// check; callers that need one inject it with WithAuthenticator.
type StubAuthenticator struct{}

// Authenticate implements Authenticator.
func (StubAuthenticator) Authenticate(context.Context, string, string) error {
	return nil
}

// Store is the session state machine. It is not safe for concurrent use;
// drive it from one goroutine (the event loop).
type Store struct {
	storage Storage
	auth    Authenticator
	logger  *slog.Logger
	trace   *trace.Recorder

	state    State
	restored bool

	nextID    int
	listeners []subscription
}

type subscription struct {
	id int
	fn Listener
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithAuthenticator replaces the stub authenticator.
func WithAuthenticator(a Authenticator) Option {
	return func(s *Store) {
		s.auth = a
	}
}

// WithTrace records transitions to r.
func WithTrace(r *trace.Recorder) Option {
	return func(s *Store) {
		s.trace = r
	}
}

// New creates a LoggedOut store over storage. Call Restore once before use.
func New(storage Storage, opts ...Option) *Store {
	s := &Store{
		storage: storage,
		auth:    StubAuthenticator{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current session state.
func (s *Store) State() State {
	return s.state
}

// Restore reads the durable marker and enters LoggedIn if it is present.
// It must be called exactly once, at startup.
func (s *Store) Restore(ctx context.Context) (State, error) {
	if s.restored {
		return s.state, ErrAlreadyRestored
	}

	value, ok, err := s.storage.Get(ctx, MarkerKey)
	if err != nil {
		return s.state, fmt.Errorf("restore session: %w", err)
	}
	s.restored = true
	s.state = State{IsLoggedIn: ok && value == MarkerValue}

	s.logger.Debug("session restored", "logged_in", s.state.IsLoggedIn)
	s.trace.Record("", trace.KindRestore, map[string]any{"logged_in": s.state.IsLoggedIn})
	return s.state, nil
}

// Login authenticates the credentials, writes the marker, enters LoggedIn
// and notifies listeners. The state is unchanged if any step fails.
func (s *Store) Login(ctx context.Context, email, password string) error {
	if err := s.auth.Authenticate(ctx, email, password); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if err := s.storage.Set(ctx, MarkerKey, MarkerValue); err != nil {
		return fmt.Errorf("login: write marker: %w", err)
	}

	s.logger.Info("logged in")
	s.trace.Record("", trace.KindLogin, map[string]any{"email": email})
	s.transition(State{IsLoggedIn: true})
	return nil
}

// Logout removes the marker, enters LoggedOut and notifies listeners.
// Logging out while logged out is allowed and still notifies.
func (s *Store) Logout(ctx context.Context) error {
	if err := s.storage.Delete(ctx, MarkerKey); err != nil {
		return fmt.Errorf("logout: remove marker: %w", err)
	}

	s.logger.Info("logged out")
	s.trace.Record("", trace.KindLogout, nil)
	s.transition(State{IsLoggedIn: false})
	return nil
}

// Subscribe registers l and returns an id for Unsubscribe.
func (s *Store) Subscribe(l Listener) int {
	s.nextID++
	s.listeners = append(s.listeners, subscription{id: s.nextID, fn: l})
	return s.nextID
}

// Unsubscribe removes the listener registered under id. Unknown ids are ignored.
func (s *Store) Unsubscribe(id int) {
	for i, sub := range s.listeners {
		if sub.id == id {
			s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
			return
		}
	}
}

func (s *Store) transition(next State) {
	s.state = next

	// Snapshot so a listener that unsubscribes itself does not skip its neighbour.
	subs := make([]subscription, len(s.listeners))
	copy(subs, s.listeners)
	for _, sub := range subs {
		sub.fn(next)
	}
}
