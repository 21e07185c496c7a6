package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/authform/internal/session"
)

// StatusResult is the output of status and logout.
type StatusResult struct {
	LoggedIn bool `json:"logged_in"`
}

func (r StatusResult) String() string {
	if r.LoggedIn {
		return "logged in"
	}
	return "logged out"
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether a session is persisted",
		Long: `Restore the session from storage and report it.

Examples:
  authform status
  authform status --backend redis --redis-addr localhost:6379
  authform status --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, st, err := restoreSession(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer st.Close()

			return formatter(cmd, rootOpts).Success(statusOf(sessions.State()))
		},
	}
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the persisted session",
		Long: `Restore the session, log out and remove the persisted marker.

Logging out while logged out succeeds.

Examples:
  authform logout
  authform logout --db ./authform.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, st, err := restoreSession(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := sessions.Logout(cmd.Context()); err != nil {
				return WrapExitError(ExitCommandError, "logout failed", err)
			}
			return formatter(cmd, rootOpts).Success(statusOf(sessions.State()))
		},
	}
}

func statusOf(s session.State) StatusResult {
	return StatusResult{LoggedIn: s.IsLoggedIn}
}

func formatter(cmd *cobra.Command, opts *RootOptions) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}
