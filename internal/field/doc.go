// Package field implements per-field validation for the login form.
//
// Each input (email, password) is tracked as a State of {Value, Validity}.
// States are only ever produced by Reduce, a pure transition function that
// folds an Action into the previous State. Validity is a tri-state enum so
// that "not yet checked" is a first-class case rather than a nil bool.
//
// The validators are intentionally permissive: an email is anything that
// contains '@', a password is anything whose trimmed length exceeds six
// characters.
package field
