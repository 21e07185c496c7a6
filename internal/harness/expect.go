package harness

import (
	"fmt"

	"github.com/roach88/authform/internal/field"
)

// Check matches an expectation against observed state and returns one
// message per mismatch. Unset fields are not checked.
func Check(at string, want *Expectation, got Observed) []string {
	var errs []string
	mismatch := func(name string, expected, actual any) {
		errs = append(errs, fmt.Sprintf("%s: %s: expected %v, got %v", at, name, expected, actual))
	}

	if want.FormValid != nil && *want.FormValid != got.Form.FormValid {
		mismatch("form_valid", *want.FormValid, got.Form.FormValid)
	}
	errs = append(errs, checkField(at, "email", want.Email, got.Form.Email)...)
	errs = append(errs, checkField(at, "password", want.Password, got.Form.Password)...)

	if want.LoggedIn != nil && *want.LoggedIn != got.LoggedIn {
		mismatch("logged_in", *want.LoggedIn, got.LoggedIn)
	}
	if want.Marker != nil && *want.Marker != got.Marker {
		mismatch("marker", *want.Marker, got.Marker)
	}
	if want.Recomputes != nil && *want.Recomputes != got.Recomputes {
		mismatch("recomputes", *want.Recomputes, got.Recomputes)
	}

	if want.Success != nil || want.Focus != nil {
		if got.LastSubmit == nil {
			errs = append(errs, fmt.Sprintf("%s: no submit has run", at))
			return errs
		}
		if want.Success != nil && *want.Success != got.LastSubmit.Success {
			mismatch("success", *want.Success, got.LastSubmit.Success)
		}
		if want.Focus != nil && *want.Focus != got.LastSubmit.Focus {
			mismatch("focus", *want.Focus, got.LastSubmit.Focus)
		}
	}

	return errs
}

func checkField(at, name string, want *FieldExpect, got field.State) []string {
	if want == nil {
		return nil
	}
	var errs []string
	if want.Value != nil && *want.Value != got.Value {
		errs = append(errs, fmt.Sprintf("%s: %s.value: expected %q, got %q", at, name, *want.Value, got.Value))
	}
	if want.Validity != nil && *want.Validity != got.Validity {
		errs = append(errs, fmt.Sprintf("%s: %s.validity: expected %v, got %v", at, name, *want.Validity, got.Validity))
	}
	return errs
}
