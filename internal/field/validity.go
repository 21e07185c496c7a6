package field

import "fmt"

// Validity is the tri-state validity of a single field.
//
// The zero value is Unknown, which is the state of every field at mount
// before the first edit or blur.
type Validity int

const (
	Unknown Validity = iota
	Valid
	Invalid
)

// ValidityOf maps a predicate result to Valid or Invalid.
func ValidityOf(ok bool) Validity {
	if ok {
		return Valid
	}
	return Invalid
}

// String returns the lowercase name used in traces and scenario files.
func (v Validity) String() string {
	switch v {
	case Unknown:
		return "unknown"
	case Valid:
		return "valid"
	case Invalid:
		return "invalid"
	default:
		return fmt.Sprintf("validity(%d)", int(v))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (v Validity) MarshalText() ([]byte, error) {
	switch v {
	case Unknown, Valid, Invalid:
		return []byte(v.String()), nil
	default:
		return nil, fmt.Errorf("invalid validity value %d", int(v))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
// yaml.v3 and encoding/json both fall back to it for scalar decoding.
func (v *Validity) UnmarshalText(text []byte) error {
	parsed, err := ParseValidity(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// ParseValidity parses "unknown", "valid" or "invalid".
func ParseValidity(s string) (Validity, error) {
	switch s {
	case "unknown", "":
		return Unknown, nil
	case "valid":
		return Valid, nil
	case "invalid":
		return Invalid, nil
	default:
		return Unknown, fmt.Errorf("unknown validity %q: must be one of unknown, valid, invalid", s)
	}
}
