package harness

import (
	"fmt"
	"strings"
)

// Validation error codes.
const (
	ErrNameRequired        = "E201" // name is required
	ErrDescriptionRequired = "E202" // description is required
	ErrNoSteps             = "E203" // at least one step required
	ErrStepNoAction        = "E204" // step has no action
	ErrStepManyActions     = "E205" // step has more than one action
	ErrInvalidBlurField    = "E206" // blur names an unknown field
	ErrInvalidWait         = "E207" // wait is not a valid duration
	ErrSchema              = "E210" // document does not match the CUE schema
)

// ValidationError is a scenario definition error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a decoded scenario. Returns all errors found.
func Validate(s *Scenario) []ValidationError {
	var errs []ValidationError

	if strings.TrimSpace(s.Name) == "" {
		errs = append(errs, ValidationError{Field: "name", Message: "name is required", Code: ErrNameRequired})
	}
	if strings.TrimSpace(s.Description) == "" {
		errs = append(errs, ValidationError{Field: "description", Message: "description is required", Code: ErrDescriptionRequired})
	}
	if len(s.Steps) == 0 {
		errs = append(errs, ValidationError{Field: "steps", Message: "steps list is required and must be non-empty", Code: ErrNoSteps})
	}

	for i, step := range s.Steps {
		path := fmt.Sprintf("steps[%d]", i)

		switch actions := step.Actions(); len(actions) {
		case 0:
			errs = append(errs, ValidationError{Field: path, Message: "step has no action", Code: ErrStepNoAction})
		case 1:
		default:
			errs = append(errs, ValidationError{
				Field:   path,
				Message: fmt.Sprintf("step has %d actions (%s), expected exactly one", len(actions), strings.Join(actions, ", ")),
				Code:    ErrStepManyActions,
			})
		}

		if step.Blur != "" && step.Blur != ActionEmail && step.Blur != ActionPassword {
			errs = append(errs, ValidationError{
				Field:   path + ".blur",
				Message: fmt.Sprintf("unknown field %q: must be email or password", step.Blur),
				Code:    ErrInvalidBlurField,
			})
		}

		if step.Wait != "" {
			if _, err := step.waitDuration(); err != nil {
				errs = append(errs, ValidationError{Field: path + ".wait", Message: err.Error(), Code: ErrInvalidWait})
			}
		}
	}

	return errs
}
