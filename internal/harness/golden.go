package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/authform/internal/trace"
)

// TraceSnapshot captures the complete trace for a scenario execution.
type TraceSnapshot struct {
	ScenarioName string        `json:"scenario_name"`
	FlowToken    string        `json:"flow_token,omitempty"`
	Trace        []trace.Entry `json:"trace"`
}

// Canonical returns the snapshot as canonical JSON.
func (s *TraceSnapshot) Canonical() ([]byte, error) {
	rec := make([]any, len(s.Trace))
	for i, e := range s.Trace {
		rec[i] = e.Map()
	}
	m := map[string]any{
		"scenario_name": s.ScenarioName,
		"trace":         rec,
	}
	if s.FlowToken != "" {
		m["flow_token"] = s.FlowToken
	}
	return trace.MarshalCanonical(m)
}

// RunWithGolden executes a scenario and compares the trace against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	snapshot := TraceSnapshot{
		ScenarioName: scenario.Name,
		FlowToken:    scenario.FlowToken,
		Trace:        result.Trace,
	}
	return result, assertSnapshot(t, &snapshot)
}

// AssertGolden compares an existing result's trace against a golden file
// without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()
	return assertSnapshot(t, &TraceSnapshot{ScenarioName: scenarioName, Trace: result.Trace})
}

func assertSnapshot(t *testing.T, snapshot *TraceSnapshot) error {
	t.Helper()

	data, err := snapshot.Canonical()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, snapshot.ScenarioName, data)
	return nil
}
