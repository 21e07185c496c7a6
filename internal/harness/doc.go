// Package harness runs scripted login-form scenarios deterministically.
//
// # Scenario Format
//
// Scenarios are YAML files. Each step holds exactly one action and may carry
// an expect block checked right after it runs:
//
//	name: scenario_b
//	description: "email without @ keeps the form invalid"
//	flow_token: "scenario-b"
//	steps:
//	  - email: "usertest.com"
//	  - password: "abcdefg"
//	  - wait: 500ms
//	  - submit: {}
//	    expect:
//	      success: false
//	      focus: email
//	expect:
//	  form_valid: false
//	  logged_in: false
//
// # Step Types
//
//   - email / password: one UserInput with the whole value
//   - type_email / type_password: one UserInput per character, no delay between keys
//   - blur: email | password
//   - wait: a Go duration; advances the virtual clock and fires due timers
//   - submit: {}
//   - logout: {}
//   - reset: {}
//   - restart: {} closes the form and restores a new session store over the
//     same storage, as a process restart would
//
// # Determinism
//
// Time is a testutil.ManualClock, sequence numbers come from a
// testutil.SeqClock and every form shares the scenario's fixed flow token.
// Storage is an in-memory SQLite database, isolated per run. Two runs of the
// same scenario produce byte-identical traces, which RunWithGolden compares
// against testdata/golden/<name>.golden.
//
// Documents are decoded strictly (unknown fields are rejected) and checked
// against an embedded CUE schema before they run.
package harness
