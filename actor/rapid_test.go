package actor

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// TestAtomInterningIsConsistent checks the quantified invariant behind
// Atom: for any valid atom text, repeated interning always yields the same
// value, and distinct texts always yield distinct values.
func TestAtomInterningIsConsistent(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		gen := rapid.StringMatching(`[a-z0-9_]{1,10}`)
		s1 := gen.Draw(rt, "s1")
		s2 := gen.Draw(rt, "s2")

		a1, err := NewAtom(s1)
		require.NoError(rt, err)
		a2, err := NewAtom(s2)
		require.NoError(rt, err)

		if s1 == s2 {
			require.Equal(rt, a1, a2)
		} else {
			require.NotEqual(rt, a1, a2)
		}
		require.Equal(rt, s1, a1.String())
	})
}

// TestMailboxSkipReplayIsOrderPreserving checks that for any sequence of
// skip/resume operations, messages never skipped come out in FIFO order and
// messages that were skipped and then replayed retain their original
// relative order - the invariant the sync_send await mechanism in sync.go
// leans on to avoid reordering unrelated traffic.
func TestMailboxSkipReplayIsOrderPreserving(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 20).Draw(rt, "n")
		skipCount := rapid.IntRange(0, n).Draw(rt, "skipCount")

		mb := newMailbox(0)
		for i := 0; i < n; i++ {
			mb.push(NewMessage(i))
		}

		var skipped []int
		for i := 0; i < skipCount; i++ {
			msg, ok := mb.tryPop()
			require.True(rt, ok)
			skipped = append(skipped, msg.At(0).(int))
			mb.skipMsg(msg)
		}
		mb.resetSkip()

		var got []int
		for {
			msg, ok := mb.tryPop()
			if !ok {
				break
			}
			got = append(got, msg.At(0).(int))
		}

		want := make([]int, n)
		for i := range want {
			want[i] = i
		}
		require.Equal(rt, want, got)
	})
}
