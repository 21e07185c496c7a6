package form

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/authform/internal/debounce"
	"github.com/roach88/authform/internal/field"
	"github.com/roach88/authform/internal/session"
	"github.com/roach88/authform/internal/trace"
)

// ErrDisposed is the panic value raised when a recompute runs on a closed
// Controller. Reaching it means a debounce callback escaped cancellation.
var ErrDisposed = errors.New("form controller used after Close")

// Focus names the field that should receive input focus.
type Focus int

const (
	FocusNone Focus = iota
	FocusEmail
	FocusPassword
)

// String returns "none", "email" or "password".
func (f Focus) String() string {
	switch f {
	case FocusEmail:
		return "email"
	case FocusPassword:
		return "password"
	default:
		return "none"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (f Focus) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Focus) UnmarshalText(text []byte) error {
	switch string(text) {
	case "none", "":
		*f = FocusNone
	case "email":
		*f = FocusEmail
	case "password":
		*f = FocusPassword
	default:
		return fmt.Errorf("unknown focus %q: must be one of none, email, password", text)
	}
	return nil
}

// Snapshot is a copy of the form state for presentation.
type Snapshot struct {
	Email     field.State `json:"email" yaml:"email"`
	Password  field.State `json:"password" yaml:"password"`
	FormValid bool        `json:"form_valid" yaml:"form_valid"`
}

// SubmitResult reports the outcome of Submit.
// Exactly one of Success or a non-None Focus is set.
type SubmitResult struct {
	Success bool  `json:"success"`
	Focus   Focus `json:"focus"`
}

// Controller is the login form.
type Controller struct {
	sessions *session.Store
	debounce *debounce.Controller
	delay    time.Duration
	logger   *slog.Logger
	trace    *trace.Recorder
	flow     string

	email     field.State
	password  field.State
	formValid bool
	focus     Focus
	disposed  bool
}

// Option configures a Controller.
type Option func(*config)

type config struct {
	sched  debounce.Scheduler
	delay  time.Duration
	logger *slog.Logger
	trace  *trace.Recorder
	flow   string
}

// WithScheduler sets the timer source for the debounce. Required unless the
// Controller never receives input.
func WithScheduler(s debounce.Scheduler) Option {
	return func(c *config) {
		c.sched = s
	}
}

// WithDelay overrides debounce.DefaultDelay.
func WithDelay(d time.Duration) Option {
	return func(c *config) {
		c.delay = d
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithTrace records every transition to r.
func WithTrace(r *trace.Recorder) Option {
	return func(c *config) {
		c.trace = r
	}
}

// WithFlowToken tags log lines and trace entries with token.
func WithFlowToken(token string) Option {
	return func(c *config) {
		c.flow = token
	}
}

// New mounts a form that logs in through sessions.
func New(sessions *session.Store, opts ...Option) *Controller {
	cfg := config{
		delay:  debounce.DefaultDelay,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.sched == nil {
		cfg.sched = unscheduled{}
	}

	logger := cfg.logger
	if cfg.flow != "" {
		logger = logger.With("flow", cfg.flow)
	}

	return &Controller{
		sessions: sessions,
		debounce: debounce.New(cfg.sched),
		delay:    cfg.delay,
		logger:   logger,
		trace:    cfg.trace,
		flow:     cfg.flow,
	}
}

// Snapshot returns the current form state.
func (c *Controller) Snapshot() Snapshot {
	return Snapshot{Email: c.email, Password: c.password, FormValid: c.formValid}
}

// FocusRequest returns the field the last failed Submit asked to focus.
// Any subsequent input clears it.
func (c *Controller) FocusRequest() Focus {
	return c.focus
}

// RecheckPending reports whether a debounced validity check is scheduled.
func (c *Controller) RecheckPending() bool {
	return c.debounce.Pending()
}

// OnEmailInput handles an edit of the email field.
func (c *Controller) OnEmailInput(text string) {
	c.input(field.KindEmail, text)
}

// OnPasswordInput handles an edit of the password field.
func (c *Controller) OnPasswordInput(text string) {
	c.input(field.KindPassword, text)
}

// OnEmailBlur handles the email field losing focus.
func (c *Controller) OnEmailBlur() {
	c.blur(field.KindEmail)
}

// OnPasswordBlur handles the password field losing focus.
func (c *Controller) OnPasswordBlur() {
	c.blur(field.KindPassword)
}

func (c *Controller) input(kind field.Kind, text string) {
	if c.disposed {
		c.logger.Warn("input after close ignored", "field", kind)
		return
	}

	next := c.reduce(kind, field.UserInput{Value: text})
	c.focus = FocusNone
	data := map[string]any{
		"field":    kind.String(),
		"validity": next.Validity,
	}
	// Password text never reaches the trace.
	if kind != field.KindPassword {
		data["value"] = next.Value
	}
	c.trace.Record(c.flow, trace.KindInput, data)

	c.debounce.Schedule(c.recomputeFormValidity, c.delay)
}

func (c *Controller) blur(kind field.Kind) {
	if c.disposed {
		c.logger.Warn("blur after close ignored", "field", kind)
		return
	}

	next := c.reduce(kind, field.Blur{})
	c.trace.Record(c.flow, trace.KindBlur, map[string]any{
		"field":    kind.String(),
		"validity": next.Validity,
	})
}

func (c *Controller) reduce(kind field.Kind, action field.Action) field.State {
	switch kind {
	case field.KindEmail:
		c.email = field.Reduce(kind, c.email, action)
		return c.email
	default:
		c.password = field.Reduce(kind, c.password, action)
		return c.password
	}
}

// recomputeFormValidity is the debounced aggregate check.
func (c *Controller) recomputeFormValidity() {
	if c.disposed {
		panic(ErrDisposed)
	}

	c.formValid = c.email.Validity == field.Valid && c.password.Validity == field.Valid
	c.logger.Debug("checking form validity", "form_valid", c.formValid)
	c.trace.Record(c.flow, trace.KindRecompute, map[string]any{
		"email":      c.email.Value,
		"password":   c.password.Validity,
		"form_valid": c.formValid,
	})
}

// Submit logs in if the last settled check found the form valid. Otherwise
// it asks for focus on the first invalid field, email before password.
// The only error is a session store failure.
func (c *Controller) Submit(ctx context.Context) (SubmitResult, error) {
	if c.disposed {
		return SubmitResult{}, ErrDisposed
	}

	var result SubmitResult
	if c.formValid {
		// FormValid can lag the fields by up to one debounce window.
		// Submit trusts it as is.
		if err := c.sessions.Login(ctx, c.email.Value, c.password.Value); err != nil {
			return SubmitResult{}, fmt.Errorf("submit: %w", err)
		}
		result = SubmitResult{Success: true}
	} else {
		result = SubmitResult{Focus: c.firstInvalid()}
	}

	c.focus = result.Focus
	c.logger.Info("form submitted", "success", result.Success, "focus", result.Focus)
	c.trace.Record(c.flow, trace.KindSubmit, map[string]any{
		"success": result.Success,
		"focus":   result.Focus,
	})
	return result, nil
}

func (c *Controller) firstInvalid() Focus {
	if c.email.Validity != field.Valid {
		return FocusEmail
	}
	return FocusPassword
}

// Reset clears both fields back to their mount state and drops any
// pending validity check.
func (c *Controller) Reset() {
	if c.disposed {
		return
	}
	c.debounce.Cancel()
	c.email = field.Reduce(field.KindEmail, c.email, field.Reset{})
	c.password = field.Reduce(field.KindPassword, c.password, field.Reset{})
	c.formValid = false
	c.focus = FocusNone
	c.trace.Record(c.flow, trace.KindReset, nil)
}

// Close tears the form down. The pending validity check, if any, is
// cancelled and will never run. Close is idempotent.
func (c *Controller) Close() {
	if c.disposed {
		return
	}
	c.debounce.Cancel()
	c.email = field.State{}
	c.password = field.State{}
	c.formValid = false
	c.disposed = true
	c.trace.Record(c.flow, trace.KindTeardown, nil)
}

// unscheduled panics on use; a Controller built without WithScheduler
// cannot debounce.
type unscheduled struct{}

func (unscheduled) AfterFunc(time.Duration, func()) debounce.Timer {
	panic("form: no scheduler configured (use WithScheduler)")
}
