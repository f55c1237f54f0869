package actorutil

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/roasbeef/actoria/actor"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *actor.Engine {
	e := actor.NewEngine(actor.EngineConfig{Workers: 2})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = e.Shutdown(ctx)
	})
	return e
}

var errDoubleFailed = errors.New("doubler: asked to fail")

// spawnDoubler spawns an actor that replies with v*2 for any int it
// receives, or exits with an error when sent the "fail" atom.
func spawnDoubler(t *testing.T, e *actor.Engine, name string) actor.PID {
	t.Helper()
	return actor.Spawn(e, name, actor.NewBehavior(name,
		actor.On[int](func(s *actor.Self, v int) { s.Reply(v * 2) }),
		actor.OnAtom(actor.MustAtom("fail"), func(s *actor.Self) {
			s.Quit(actor.ExitWithError(errDoubleFailed))
		}),
	))
}

func TestAskAwait(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	pid := spawnDoubler(t, e, "ask-await")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	val, err := AskAwait[int](ctx, e, pid, 21)
	require.NoError(t, err)
	require.Equal(t, 42, val)
}

func TestAskAwaitError(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	pid := spawnDoubler(t, e, "ask-await-error")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := AskAwait[int](ctx, e, pid, actor.MustAtom("fail"))
	require.Error(t, err)
}

func TestAskAwaitContextCancelled(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	// Nothing ever replies, so the ask can only resolve via cancellation.
	silent := actor.Spawn(e, "silent", actor.NewBehavior("", actor.OnOthers(func(*actor.Self) {})))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := AskAwait[int](ctx, e, silent, 1)
	require.Error(t, err)
}

func TestTellAll(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	const numActors = 3

	received := make(chan int, numActors)
	targets := make([]actor.PID, numActors)
	for i := 0; i < numActors; i++ {
		targets[i] = actor.Spawn(e, "telled", actor.NewBehavior("",
			actor.On[int](func(_ *actor.Self, v int) { received <- v }),
		))
	}

	TellAll(targets, 100)

	for i := 0; i < numActors; i++ {
		select {
		case v := <-received:
			require.Equal(t, 100, v)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for TellAll delivery")
		}
	}
}

func TestParallelAsk(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	const numActors = 3

	targets := make([]actor.PID, numActors)
	requests := make([][]any, numActors)
	for i := 0; i < numActors; i++ {
		targets[i] = spawnDoubler(t, e, "parallel-ask")
		requests[i] = []any{(i + 1) * 10}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	results := ParallelAsk[int](ctx, e, targets, requests)
	require.Len(t, results, numActors)

	for i, r := range results {
		val, err := r.Unpack()
		require.NoError(t, err)
		require.Equal(t, (i+1)*20, val)
	}
}

func TestParallelAskPanicsOnMismatchedLengths(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	pid := spawnDoubler(t, e, "parallel-ask-panic")

	require.Panics(t, func() {
		ParallelAsk[int](
			context.Background(), e,
			[]actor.PID{pid},
			[][]any{{1}, {2}},
		)
	})
}

func TestParallelAskSame(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	const numActors = 3

	targets := make([]actor.PID, numActors)
	for i := 0; i < numActors; i++ {
		targets[i] = spawnDoubler(t, e, "parallel-ask-same")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	results := ParallelAskSame[int](ctx, e, targets, 50)
	require.Len(t, results, numActors)

	for _, r := range results {
		val, err := r.Unpack()
		require.NoError(t, err)
		require.Equal(t, 100, val)
	}
}

func TestFirstSuccess(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)

	fail1 := actor.Spawn(e, "fail-1", actor.NewBehavior("", actor.On[int](func(s *actor.Self, _ int) {
		s.Quit(actor.ExitWithError(errDoubleFailed))
	})))
	fail2 := actor.Spawn(e, "fail-2", actor.NewBehavior("", actor.On[int](func(s *actor.Self, _ int) {
		s.Quit(actor.ExitWithError(errDoubleFailed))
	})))
	ok := spawnDoubler(t, e, "succeed")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	val, err := FirstSuccess[int](ctx, e, []actor.PID{fail1, fail2, ok}, 25)
	require.NoError(t, err)
	require.Equal(t, 50, val)
}

func TestFirstSuccessAllFail(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)

	fail1 := actor.Spawn(e, "fail-all-1", actor.NewBehavior("", actor.On[int](func(s *actor.Self, _ int) {
		s.Quit(actor.ExitWithError(errDoubleFailed))
	})))
	fail2 := actor.Spawn(e, "fail-all-2", actor.NewBehavior("", actor.On[int](func(s *actor.Self, _ int) {
		s.Quit(actor.ExitWithError(errDoubleFailed))
	})))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := FirstSuccess[int](ctx, e, []actor.PID{fail1, fail2}, 10)
	require.Error(t, err)
}

func TestFirstSuccessNoTargets(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := FirstSuccess[int](ctx, e, nil, 10)
	require.Error(t, err)
}

func TestMapResponses(t *testing.T) {
	t.Parallel()

	testErr := errors.New("test error")
	results := []fn.Result[int]{
		fn.Ok(10),
		fn.Err[int](testErr),
		fn.Ok(20),
	}

	mapped := MapResponses(results, func(v int) int { return v * 2 })
	require.Len(t, mapped, 3)

	v0, err := mapped[0].Unpack()
	require.NoError(t, err)
	require.Equal(t, 20, v0)

	_, err = mapped[1].Unpack()
	require.ErrorIs(t, err, testErr)

	v2, err := mapped[2].Unpack()
	require.NoError(t, err)
	require.Equal(t, 40, v2)
}

func TestCollectSuccesses(t *testing.T) {
	t.Parallel()

	testErr := errors.New("test error")
	results := []fn.Result[int]{
		fn.Ok(10), fn.Err[int](testErr), fn.Ok(20), fn.Err[int](testErr), fn.Ok(30),
	}

	require.Equal(t, []int{10, 20, 30}, CollectSuccesses(results))
}

func TestAllSucceeded(t *testing.T) {
	t.Parallel()

	testErr := errors.New("test error")

	tests := []struct {
		name     string
		results  []fn.Result[int]
		expected bool
	}{
		{"all success", []fn.Result[int]{fn.Ok(1), fn.Ok(2), fn.Ok(3)}, true},
		{"one failure", []fn.Result[int]{fn.Ok(1), fn.Err[int](testErr), fn.Ok(3)}, false},
		{"all failures", []fn.Result[int]{fn.Err[int](testErr), fn.Err[int](testErr)}, false},
		{"empty", []fn.Result[int]{}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, AllSucceeded(tc.results))
		})
	}
}

func TestFirstError(t *testing.T) {
	t.Parallel()

	err1 := errors.New("error 1")
	err2 := errors.New("error 2")

	tests := []struct {
		name     string
		results  []fn.Result[int]
		expected error
	}{
		{"all success", []fn.Result[int]{fn.Ok(1), fn.Ok(2)}, nil},
		{"first is error", []fn.Result[int]{fn.Err[int](err1), fn.Ok(2)}, err1},
		{"second is error", []fn.Result[int]{fn.Ok(1), fn.Err[int](err2)}, err2},
		{"empty", []fn.Result[int]{}, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := FirstError(tc.results)
			if tc.expected == nil {
				require.NoError(t, got)
			} else {
				require.ErrorIs(t, got, tc.expected)
			}
		})
	}
}
