package harness

import (
	"github.com/roach88/authform/internal/form"
	"github.com/roach88/authform/internal/trace"
)

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every expectation matched.
	Pass bool `json:"pass"`

	// Trace holds every recorded transition in sequence order.
	Trace []trace.Entry `json:"trace"`

	// Errors holds one message per failed expectation.
	Errors []string `json:"errors,omitempty"`

	// Final is the observable state after the last step.
	Final Observed `json:"final"`
}

// Observed is the state expectations are matched against.
type Observed struct {
	Form       form.Snapshot      `json:"form"`
	LoggedIn   bool               `json:"logged_in"`
	Marker     bool               `json:"marker"`
	Recomputes int                `json:"recomputes"`
	LastSubmit *form.SubmitResult `json:"last_submit,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []trace.Entry{},
		Errors: []string{},
	}
}

// AddError adds a failed expectation and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
