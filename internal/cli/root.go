package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/authform/internal/config"
	"github.com/roach88/authform/internal/session"
	"github.com/roach88/authform/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose     bool
	Format      string // "json" | "text"
	Database    string
	Backend     string
	RedisAddr   string
	RedisPrefix string
	Debounce    time.Duration
	LogLevel    string

	logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the authform CLI.
// Flag defaults come from the environment (see package config).
func NewRootCommand() *cobra.Command {
	cfg, cfgErr := config.Load()
	if cfgErr != nil {
		// Fall back to built-in defaults so --help still works; the error
		// is reported before any command runs.
		_ = config.ParseEnv(&cfg)
	}

	opts := &RootOptions{
		Debounce: cfg.Debounce,
		LogLevel: cfg.LogLevel,
	}

	cmd := &cobra.Command{
		Use:   "authform",
		Short: "authform - login form with a persisted session",
		Long:  "Drive the login form and its persisted session from the terminal or from YAML scenarios.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfgErr != nil {
				return WrapExitError(ExitCommandError, "invalid environment", cfgErr)
			}
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if !isValidBackend(opts.Backend) {
				return fmt.Errorf("invalid backend %q: must be one of %v", opts.Backend, config.Backends)
			}
			logger, err := newLogger(cmd, opts)
			if err != nil {
				return err
			}
			opts.logger = logger
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", cfg.Database, "SQLite database path")
	cmd.PersistentFlags().StringVar(&opts.Backend, "backend", cfg.Backend, "session storage backend (sqlite|redis|memory)")
	cmd.PersistentFlags().StringVar(&opts.RedisAddr, "redis-addr", cfg.RedisAddr, "Redis address for the redis backend")
	cmd.PersistentFlags().StringVar(&opts.RedisPrefix, "redis-prefix", cfg.RedisPrefix, "key prefix for the redis backend")

	// Add subcommands
	cmd.AddCommand(NewStatusCommand(opts))
	cmd.AddCommand(NewLoginCommand(opts))
	cmd.AddCommand(NewLogoutCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewTraceCommand(opts))

	return cmd
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

// newLogger builds the text logger on stderr. --verbose forces debug.
func newLogger(cmd *cobra.Command, opts *RootOptions) (*slog.Logger, error) {
	level, err := config.ParseLevel(opts.LogLevel)
	if err != nil {
		return nil, err
	}
	if opts.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})), nil
}

// Logger returns the logger set up for the running command.
func (o *RootOptions) Logger() *slog.Logger {
	if o.logger == nil {
		return slog.Default()
	}
	return o.logger
}

// storage is what the CLI needs from a backend.
type storage interface {
	session.Storage
	Close() error
}

// openStorage opens the configured backend.
func openStorage(ctx context.Context, opts *RootOptions) (storage, error) {
	switch opts.Backend {
	case config.BackendSQLite:
		st, err := store.Open(opts.Database)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to open database", err)
		}
		return st, nil
	case config.BackendRedis:
		st, err := store.DialRedis(ctx, opts.RedisAddr, opts.RedisPrefix)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to connect to redis", err)
		}
		return st, nil
	case config.BackendMemory:
		return store.NewMemory(), nil
	default:
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("invalid backend %q", opts.Backend))
	}
}

// restoreSession opens storage and restores a session store over it.
// The caller closes the returned storage.
func restoreSession(ctx context.Context, opts *RootOptions) (*session.Store, storage, error) {
	st, err := openStorage(ctx, opts)
	if err != nil {
		return nil, nil, err
	}
	sessions := session.New(st, session.WithLogger(opts.Logger()))
	if _, err := sessions.Restore(ctx); err != nil {
		st.Close()
		return nil, nil, WrapExitError(ExitCommandError, "failed to restore session", err)
	}
	return sessions, st, nil
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

func isValidBackend(backend string) bool {
	for _, b := range config.Backends {
		if b == backend {
			return true
		}
	}
	return false
}
