package actor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAtomInterning(t *testing.T) {
	a, err := NewAtom("take")
	require.NoError(t, err)

	b, err := NewAtom("take")
	require.NoError(t, err)

	require.Equal(t, a, b)
	require.Equal(t, "take", a.String())

	c := MustAtom("put")
	require.NotEqual(t, a, c)
}

func TestAtomValidation(t *testing.T) {
	_, err := NewAtom("")
	require.ErrorIs(t, err, ErrAtomEmpty)

	_, err = NewAtom("waytoolongatom")
	require.ErrorIs(t, err, ErrAtomTooLong)

	_, err = NewAtom("Take")
	require.ErrorIs(t, err, ErrAtomInvalidChar)

	_, err = NewAtom("take-5")
	require.ErrorIs(t, err, ErrAtomInvalidChar)
}

func TestAtomZeroValue(t *testing.T) {
	var z Atom
	require.True(t, z.IsZero())
	require.Equal(t, "", z.String())
}
