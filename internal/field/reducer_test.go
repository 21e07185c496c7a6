package field

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReduce_UserInput(t *testing.T) {
	var s State
	assert.Equal(t, Unknown, s.Validity, "zero state must be Unknown")

	s = Reduce(KindEmail, s, UserInput{Value: "a"})
	assert.Equal(t, State{Value: "a", Validity: Invalid}, s)

	s = Reduce(KindEmail, s, UserInput{Value: "a@"})
	assert.Equal(t, State{Value: "a@", Validity: Valid}, s)

	s = Reduce(KindEmail, s, UserInput{Value: "a"})
	assert.Equal(t, Invalid, s.Validity, "validity follows the latest value")
}

func TestReduce_BlurFromUnknown(t *testing.T) {
	s := Reduce(KindPassword, State{}, Blur{})
	assert.Equal(t, State{Value: "", Validity: Invalid}, s)

	s = Reduce(KindPassword, State{Value: "abcdefg"}, Blur{})
	assert.Equal(t, Valid, s.Validity)
	assert.Equal(t, "abcdefg", s.Value)
}

func TestReduce_BlurIdempotent(t *testing.T) {
	start := State{Value: "user@test.com"}
	once := Reduce(KindEmail, start, Blur{})
	twice := Reduce(KindEmail, once, Blur{})
	thrice := Reduce(KindEmail, twice, Blur{})

	assert.Equal(t, once, twice)
	assert.Equal(t, twice, thrice)
}

func TestReduce_Reset(t *testing.T) {
	s := State{Value: "abcdefg", Validity: Valid}
	assert.Equal(t, State{}, Reduce(KindPassword, s, Reset{}))
}

func TestReduce_Deterministic(t *testing.T) {
	states := []State{
		{},
		{Value: "x", Validity: Invalid},
		{Value: "x@y", Validity: Unknown},
		{Value: "abcdefgh", Validity: Valid},
	}
	actions := []Action{UserInput{Value: "q@"}, UserInput{Value: "1234567"}, Blur{}, Reset{}}

	for _, kind := range []Kind{KindEmail, KindPassword} {
		for _, s := range states {
			for _, a := range actions {
				first := Reduce(kind, s, a)
				for i := 0; i < 3; i++ {
					require.Equal(t, first, Reduce(kind, s, a))
				}
			}
		}
	}
}

func TestReduce_DoesNotMutateInput(t *testing.T) {
	s := State{Value: "abc", Validity: Unknown}
	_ = Reduce(KindEmail, s, UserInput{Value: "new@value"})
	assert.Equal(t, State{Value: "abc", Validity: Unknown}, s)
}

func TestValidityText(t *testing.T) {
	for _, v := range []Validity{Unknown, Valid, Invalid} {
		text, err := v.MarshalText()
		require.NoError(t, err)

		var got Validity
		require.NoError(t, got.UnmarshalText(text))
		assert.Equal(t, v, got)
	}

	_, err := Validity(42).MarshalText()
	assert.Error(t, err)

	_, err = ParseValidity("maybe")
	assert.Error(t, err)
}
