package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/authform/internal/engine"
	"github.com/roach88/authform/internal/field"
	"github.com/roach88/authform/internal/form"
	"github.com/roach88/authform/internal/session"
	"github.com/roach88/authform/internal/trace"
)

// LoginOptions holds flags for the login command.
type LoginOptions struct {
	*RootOptions
	Email    string
	Password string
}

// LoginResult is the output of login. The password value is never echoed.
type LoginResult struct {
	FlowToken        string         `json:"flow_token"`
	Email            string         `json:"email"`
	EmailValidity    field.Validity `json:"email_validity"`
	PasswordValidity field.Validity `json:"password_validity"`
	FormValid        bool           `json:"form_valid"`
	Success          bool           `json:"success"`
	Focus            form.Focus     `json:"focus"`
	LoggedIn         bool           `json:"logged_in"`
}

func (r LoginResult) String() string {
	if r.Success {
		return fmt.Sprintf("logged in as %s", r.Email)
	}
	return fmt.Sprintf("login rejected: email=%s password=%s (focus %s)", r.EmailValidity, r.PasswordValidity, r.Focus)
}

// NewLoginCommand creates the login command.
func NewLoginCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LoginOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Fill in and submit the login form",
		Long: `Mount the login form, type the credentials one character at a time,
leave both fields, wait for the validity check to settle and submit.

The session is persisted on success, so a later "authform status" reports it.

Exit codes:
  0 - Logged in
  1 - Form rejected the credentials (the output names the field to fix)
  2 - Command error (storage unavailable, etc.)

Examples:
  authform login --email user@test.com --password abcdefg
  authform login --email user@test.com --password abcdefg --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Email, "email", "", "email address")
	cmd.Flags().StringVar(&opts.Password, "password", "", "password")

	return cmd
}

// flowTokens correlates the trace of one login run.
var flowTokens engine.FlowTokenGenerator = engine.UUIDv7Generator{}

func runLogin(cmd *cobra.Command, opts *LoginOptions) error {
	ctx := cmd.Context()
	logger := opts.Logger()

	st, err := openStorage(ctx, opts.RootOptions)
	if err != nil {
		return err
	}
	defer st.Close()

	loop := engine.New(engine.WithLogger(logger))
	loopCtx, cancel := context.WithCancel(ctx)
	loopDone := make(chan error, 1)
	go func() {
		loopDone <- loop.Run(loopCtx)
	}()
	defer func() {
		cancel()
		<-loopDone
	}()

	var (
		sessions *session.Store
		f        *form.Controller
		flow     = flowTokens.Generate()
		rec      = trace.NewRecorder(loop.Clock())
	)
	out := formatter(cmd, opts.RootOptions)
	defer func() {
		for _, e := range rec.Entries() {
			out.VerboseLog("%s", e)
		}
	}()

	err = loop.Do(ctx, "form.mount", func() error {
		sessions = session.New(st, session.WithLogger(logger), session.WithTrace(rec))
		if _, err := sessions.Restore(ctx); err != nil {
			return err
		}
		f = form.New(sessions,
			form.WithScheduler(loop),
			form.WithDelay(opts.Debounce),
			form.WithLogger(logger),
			form.WithFlowToken(flow),
			form.WithTrace(rec),
		)
		return nil
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to mount form", err)
	}
	defer loop.Do(context.Background(), "form.close", func() error {
		f.Close()
		return nil
	})

	if err := typeInto(ctx, loop, "input.email", f.OnEmailInput, opts.Email); err != nil {
		return WrapExitError(ExitCommandError, "typing email failed", err)
	}
	if err := typeInto(ctx, loop, "input.password", f.OnPasswordInput, opts.Password); err != nil {
		return WrapExitError(ExitCommandError, "typing password failed", err)
	}
	err = loop.Do(ctx, "input.blur", func() error {
		f.OnEmailBlur()
		f.OnPasswordBlur()
		return nil
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "blur failed", err)
	}

	if err := awaitSettled(ctx, loop, f, opts.Debounce); err != nil {
		return WrapExitError(ExitCommandError, "waiting for validity check failed", err)
	}

	var result LoginResult
	err = loop.Do(ctx, "form.submit", func() error {
		res, err := f.Submit(ctx)
		if err != nil {
			return err
		}
		snap := f.Snapshot()
		result = LoginResult{
			FlowToken:        flow,
			Email:            snap.Email.Value,
			EmailValidity:    snap.Email.Validity,
			PasswordValidity: snap.Password.Validity,
			FormValid:        snap.FormValid,
			Success:          res.Success,
			Focus:            res.Focus,
			LoggedIn:         sessions.State().IsLoggedIn,
		}
		return nil
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "submit failed", err)
	}

	if !result.Success {
		if opts.Format == "json" {
			out.Error(ErrCodeLoginRejected, fmt.Sprintf("fix the %s field", result.Focus), result)
		} else {
			out.Success(result)
		}
		return NewExitError(ExitFailure, fmt.Sprintf("login rejected: fix the %s field", result.Focus))
	}
	return out.Success(result)
}

// typeInto posts one input event per character, each carrying the prefix
// typed so far, the way a keyboard would.
func typeInto(ctx context.Context, loop *engine.Loop, name string, input func(string), text string) error {
	runes := []rune(text)
	for i := range runes {
		prefix := string(runes[:i+1])
		err := loop.Do(ctx, name, func() error {
			input(prefix)
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// awaitSettled blocks until the debounced validity check has run.
func awaitSettled(ctx context.Context, loop *engine.Loop, f *form.Controller, delay time.Duration) error {
	poll := delay / 10
	if poll <= 0 {
		poll = time.Millisecond
	}
	for {
		var pending bool
		err := loop.Do(ctx, "form.settled", func() error {
			pending = f.RecheckPending()
			return nil
		})
		if err != nil {
			return err
		}
		if !pending {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(poll):
		}
	}
}
