package actor

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestMessageEqual(t *testing.T) {
	a := NewMessage(MustAtom("take"), 5)
	b := NewMessage(MustAtom("take"), 5)
	c := NewMessage(MustAtom("take"), 6)

	require.True(t, a.Equal(b))
	require.False(t, a.Equal(c))
}

func TestMessageHasReqID(t *testing.T) {
	m := NewMessage(1)
	require.False(t, m.HasReqID())

	m.ReqID = uuid.New()
	require.True(t, m.HasReqID())
}

func TestMessageAt(t *testing.T) {
	m := NewMessage("a", "b")
	require.Equal(t, "a", m.At(0))
	require.Equal(t, "b", m.At(1))
	require.Nil(t, m.At(2))
	require.Nil(t, m.At(-1))
}
