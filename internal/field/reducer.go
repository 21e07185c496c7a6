package field

// State is the value and validity of one form field.
type State struct {
	Value    string   `json:"value" yaml:"value"`
	Validity Validity `json:"validity" yaml:"validity"`
}

// Action is a field transition input. The set is closed: UserInput, Blur, Reset.
type Action interface {
	fieldAction()
}

// UserInput replaces the field value, as on every keystroke.
type UserInput struct {
	Value string
}

// Blur re-derives validity from the current value when the field loses focus.
type Blur struct{}

// Reset clears the field back to its mount state.
type Reset struct{}

func (UserInput) fieldAction() {}
func (Blur) fieldAction()      {}
func (Reset) fieldAction()     {}

// Reduce returns the next state for a field of the given kind.
//
// Reduce is pure: the same (kind, state, action) always yields the same
// State. Validity is recomputed eagerly on every UserInput; only the
// aggregate form check is debounced.
func Reduce(kind Kind, state State, action Action) State {
	switch a := action.(type) {
	case UserInput:
		return State{Value: a.Value, Validity: ValidityOf(kind.Validate(a.Value))}
	case Blur:
		return State{Value: state.Value, Validity: ValidityOf(kind.Validate(state.Value))}
	case Reset:
		return State{}
	default:
		return state
	}
}
