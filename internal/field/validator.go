package field

import (
	"strings"
	"unicode"
	"unicode/utf16"
)

// MinPasswordLength is the smallest trimmed password length that validates.
const MinPasswordLength = 7

// IsValidEmail reports whether value contains '@'.
// This is a deliberate simplification, not RFC 5322 validation.
func IsValidEmail(value string) bool {
	return strings.Contains(value, "@")
}

// IsValidPassword reports whether the trimmed value is longer than six characters.
// Trimming and length follow the browser: the ECMAScript whitespace set is
// stripped and length is counted in UTF-16 code units, so an emoji counts two.
func IsValidPassword(value string) bool {
	n := 0
	for _, r := range strings.TrimFunc(value, isTrimSpace) {
		n += utf16.RuneLen(r)
	}
	return n >= MinPasswordLength
}

// isTrimSpace is the ECMAScript WhiteSpace and LineTerminator set. Unlike
// unicode.IsSpace it includes U+FEFF and excludes U+0085.
func isTrimSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ', '\u00a0', '\ufeff', '\u2028', '\u2029':
		return true
	}
	return unicode.Is(unicode.Zs, r)
}

// Kind identifies which validator a field uses.
type Kind int

const (
	KindEmail Kind = iota + 1
	KindPassword
)

// String returns "email" or "password".
func (k Kind) String() string {
	switch k {
	case KindEmail:
		return "email"
	case KindPassword:
		return "password"
	default:
		return "unknown"
	}
}

// Validate applies the kind's predicate. Unknown kinds never validate.
func (k Kind) Validate(value string) bool {
	switch k {
	case KindEmail:
		return IsValidEmail(value)
	case KindPassword:
		return IsValidPassword(value)
	default:
		return false
	}
}
