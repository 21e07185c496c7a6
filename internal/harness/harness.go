package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/authform/internal/engine"
	"github.com/roach88/authform/internal/form"
	"github.com/roach88/authform/internal/session"
	"github.com/roach88/authform/internal/store"
	"github.com/roach88/authform/internal/testutil"
	"github.com/roach88/authform/internal/trace"
)

// Harness drives one scenario. It owns the virtual clock, the trace and the
// currently mounted form.
type Harness struct {
	storage  *store.SQLite
	clock    *testutil.ManualClock
	flowGen  engine.FlowTokenGenerator
	logger   *slog.Logger
	recorder *trace.Recorder

	sessions   *session.Store
	form       *form.Controller
	lastSubmit *form.SubmitResult
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh in-memory SQLite database. Failed
// expectations are reported in the result; the error return is reserved
// for steps that could not execute at all.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	ctx := context.Background()
	if scenario.Restored {
		if err := st.Set(ctx, session.MarkerKey, session.MarkerValue); err != nil {
			return nil, fmt.Errorf("failed to seed marker: %w", err)
		}
	}

	h := &Harness{
		storage:  st,
		clock:    testutil.NewManualClock(),
		flowGen:  testutil.NewFixedFlowGenerator(scenario.FlowToken),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		recorder: trace.NewRecorder(testutil.NewSeqClock()),
	}
	if err := h.mount(ctx); err != nil {
		return nil, err
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		if err := h.execute(ctx, step); err != nil {
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}
		if step.Expect != nil {
			obs, err := h.observe(ctx)
			if err != nil {
				return nil, fmt.Errorf("steps[%d]: %w", i, err)
			}
			for _, msg := range Check(fmt.Sprintf("steps[%d]", i), step.Expect, obs) {
				result.AddError(msg)
			}
		}
	}

	obs, err := h.observe(ctx)
	if err != nil {
		return nil, err
	}
	if scenario.Expect != nil {
		for _, msg := range Check("expect", scenario.Expect, obs) {
			result.AddError(msg)
		}
	}

	result.Final = obs
	result.Trace = h.recorder.Entries()
	return result, nil
}

// mount restores a session store over the harness storage and mounts a
// form on it, as process startup does.
func (h *Harness) mount(ctx context.Context) error {
	h.sessions = session.New(h.storage,
		session.WithLogger(h.logger),
		session.WithTrace(h.recorder),
	)
	if _, err := h.sessions.Restore(ctx); err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}
	h.form = form.New(h.sessions,
		form.WithScheduler(h.clock),
		form.WithLogger(h.logger),
		form.WithTrace(h.recorder),
		form.WithFlowToken(h.flowGen.Generate()),
	)
	return nil
}

func (h *Harness) execute(ctx context.Context, step Step) error {
	switch {
	case step.Email != nil:
		h.form.OnEmailInput(*step.Email)
	case step.Password != nil:
		h.form.OnPasswordInput(*step.Password)
	case step.TypeEmail != nil:
		typeInto(h.form.OnEmailInput, *step.TypeEmail)
	case step.TypePassword != nil:
		typeInto(h.form.OnPasswordInput, *step.TypePassword)
	case step.Blur == ActionEmail:
		h.form.OnEmailBlur()
	case step.Blur == ActionPassword:
		h.form.OnPasswordBlur()
	case step.Wait != "":
		d, err := step.waitDuration()
		if err != nil {
			return fmt.Errorf("invalid wait: %w", err)
		}
		h.clock.Advance(d)
	case step.Submit != nil:
		res, err := h.form.Submit(ctx)
		if err != nil {
			return err
		}
		h.lastSubmit = &res
	case step.Logout != nil:
		if err := h.sessions.Logout(ctx); err != nil {
			return err
		}
	case step.Reset != nil:
		h.form.Reset()
	case step.Restart != nil:
		h.form.Close()
		h.lastSubmit = nil
		return h.mount(ctx)
	default:
		return fmt.Errorf("step has no action")
	}
	return nil
}

// typeInto delivers text one character at a time, each keystroke carrying
// the whole prefix typed so far.
func typeInto(input func(string), text string) {
	runes := []rune(text)
	for i := range runes {
		input(string(runes[:i+1]))
	}
}

func (h *Harness) observe(ctx context.Context) (Observed, error) {
	_, marker, err := h.storage.Get(ctx, session.MarkerKey)
	if err != nil {
		return Observed{}, fmt.Errorf("failed to read marker: %w", err)
	}
	return Observed{
		Form:       h.form.Snapshot(),
		LoggedIn:   h.sessions.State().IsLoggedIn,
		Marker:     marker,
		Recomputes: h.recorder.Count(trace.KindRecompute),
		LastSubmit: h.lastSubmit,
	}, nil
}
