package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/authform/internal/harness"
)

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trace <scenario-file>",
		Short: "Print the transition trace of a scenario",
		Long: `Run one scenario and print every recorded transition in order.

Text output is one line per transition. JSON output is the canonical
snapshot that golden files store.

Examples:
  authform trace ./scenarios/scenario_d.yaml
  authform trace ./scenarios/scenario_d.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(cmd, rootOpts, args[0])
		},
	}
	return cmd
}

func runTrace(cmd *cobra.Command, opts *RootOptions, path string) error {
	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}

	result, err := harness.Run(scenario)
	if err != nil {
		return WrapExitError(ExitCommandError, "scenario execution failed", err)
	}

	w := cmd.OutOrStdout()
	if opts.Format == "json" {
		snapshot := harness.TraceSnapshot{
			ScenarioName: scenario.Name,
			FlowToken:    scenario.FlowToken,
			Trace:        result.Trace,
		}
		data, err := snapshot.Canonical()
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to marshal trace", err)
		}
		fmt.Fprintln(w, string(data))
	} else {
		fmt.Fprintf(w, "Scenario: %s\n", scenario.Name)
		for _, e := range result.Trace {
			fmt.Fprintln(w, e.String())
		}
		fmt.Fprintf(w, "\n%d transitions\n", len(result.Trace))
	}

	if !result.Pass {
		for _, e := range result.Errors {
			fmt.Fprintf(cmd.ErrOrStderr(), "expectation failed: %s\n", e)
		}
		return NewExitError(ExitFailure, fmt.Sprintf("%d expectation(s) failed", len(result.Errors)))
	}
	return nil
}
