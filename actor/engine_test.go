package actor

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *Engine {
	e := NewEngine(EngineConfig{Workers: 2})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = e.Shutdown(ctx)
	})
	return e
}

func TestSendAndReply(t *testing.T) {
	e := newTestEngine(t)

	echo := Spawn(e, "echo", NewBehavior("echo",
		On[string](func(s *Self, v string) {
			s.Reply("echoed:" + v)
		}),
	))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	result := Ask[string](ctx, e, echo, "hi").Await(ctx)
	val, err := result.Unpack()
	require.NoError(t, err)
	require.Equal(t, "echoed:hi", val)
}

func TestBecomeSwitchesBehavior(t *testing.T) {
	e := newTestEngine(t)

	var counting *Behavior
	idle := NewBehavior("idle",
		OnAtom(MustAtom("start"), func(s *Self) { s.Become(counting, false) }),
	)
	counting = NewBehavior("counting",
		On[int](func(s *Self, v int) { s.Reply(v * 2) }),
		OnAtom(MustAtom("stop"), func(s *Self) { s.Become(idle, false) }),
	)

	pid := Spawn(e, "toggle", idle)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	Send(pid, MustAtom("start"))

	res, err := Ask[int](ctx, e, pid, 21).Await(ctx).Unpack()
	require.NoError(t, err)
	require.Equal(t, 42, res)
}

func TestSyncSendAwaitIgnoresUnrelatedMessages(t *testing.T) {
	e := newTestEngine(t)

	responder := Spawn(e, "responder", NewBehavior("",
		On[int](func(s *Self, v int) { s.Reply(v + 1) }),
	))

	var seenOrder []int
	doneCh := make(chan struct{})

	requester := Spawn(e, "requester", NewBehavior("await",
		OnAtom(MustAtom("go"), func(s *Self) {
			h := s.SyncSend(responder, 41)
			s.Await(h, On[int](func(_ *Self, v int) {
				seenOrder = append(seenOrder, -v) // negative marks the sync reply
			}))
		}),
		On[int](func(_ *Self, v int) { seenOrder = append(seenOrder, v) }),
		OnAtom(MustAtom("done"), func(*Self) { close(doneCh) }),
	))

	// 100 and 200 are handled before "go". "done" is queued behind "go",
	// so it is popped while the await is pending and must be preserved
	// (skipped, not dropped) until the sync reply resolves the await.
	Send(requester, 100)
	Send(requester, 200)
	Send(requester, MustAtom("go"))
	Send(requester, MustAtom("done"))

	select {
	case <-doneCh:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for requester to finish")
	}

	require.Equal(t, []int{100, 200, -42}, seenOrder)
}

func TestLinkPropagatesTermination(t *testing.T) {
	e := newTestEngine(t)

	downCh := make(chan string, 1)

	killable := Spawn(e, "killable", NewBehavior("", OnAtom(MustAtom("die"), func(s *Self) {
		s.Quit(ExitWithError(errBoom))
	})))
	SpawnBlocking(e, "watcher", func(ctx *BlockingContext) {
		ctx.TrapExit(true)
		ctx.LinkTo(killable)
		ctx.Receive(OnAtomAnd[string](AtomExited, func(_ *Self, reason string) {
			downCh <- reason
		}))
	})

	Send(killable, MustAtom("die"))

	select {
	case reason := <-downCh:
		require.Equal(t, errBoom.Error(), reason)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for EXITED notification")
	}
}

func TestMonitorDeliversDown(t *testing.T) {
	e := newTestEngine(t)

	target := Spawn(e, "target", NewBehavior("", OnAtom(MustAtom("die"), func(s *Self) {
		s.Quit(ExitNormal)
	})))

	downCh := make(chan struct{})
	SpawnBlocking(e, "watcher", func(ctx *BlockingContext) {
		ctx.Monitor(target)
		ctx.Receive(OnOthers(func(s *Self) {
			msg := s.LastDequeued()
			if len(msg.Elems) > 0 {
				if a, ok := msg.Elems[0].(Atom); ok && a == AtomDown {
					close(downCh)
				}
			}
		}))
	})

	Send(target, MustAtom("die"))

	select {
	case <-downCh:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for DOWN notification")
	}
}

func TestSendToDeadPIDIsNoOp(t *testing.T) {
	e := newTestEngine(t)
	pid := Spawn(e, "short", NewBehavior("", OnAtom(MustAtom("die"), func(s *Self) {
		s.Quit(ExitNormal)
	})))
	Send(pid, MustAtom("die"))
	require.Eventually(t, func() bool { return !pid.IsAlive() }, time.Second, time.Millisecond)

	require.NotPanics(t, func() {
		Send(pid, "hello")
	})
}

func TestDelayedSendOrdering(t *testing.T) {
	e := newTestEngine(t)

	var order []string
	doneCh := make(chan struct{})

	recipient := Spawn(e, "recipient", NewBehavior("",
		On[string](func(s *Self, v string) {
			order = append(order, v)
			if len(order) == 2 {
				close(doneCh)
			}
		}),
	))

	DelayedSend(e, recipient, time.Second, "a")
	DelayedSend(e, recipient, 50*time.Millisecond, "b")

	select {
	case <-doneCh:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for both delayed sends")
	}

	require.Equal(t, []string{"b", "a"}, order)
}

func TestSelfTerminationByReceiveTimeout(t *testing.T) {
	e := newTestEngine(t)

	var countdown *Behavior
	remaining := 5

	countdown = NewBehavior("countdown").WithTimeout(50*time.Millisecond, func(s *Self) {
		remaining--
		if remaining == 0 {
			s.Quit(ExitNormal)
			return
		}
		s.Become(countdown, false)
	})

	pid := Spawn(e, "countdown", countdown)

	require.Eventually(t, func() bool { return !pid.IsAlive() }, 500*time.Millisecond, 5*time.Millisecond)
	require.Equal(t, 0, remaining)
}

func TestStateMachineTesteeLiteralScenario(t *testing.T) {
	e := newTestEngine(t)

	getState := MustAtom("get_state")

	var wait4string, wait4float, wait4int *Behavior
	wait4string = NewBehavior("wait4string",
		On[string](func(s *Self, _ string) { s.Become(wait4int, false) }),
		OnAtom(getState, func(s *Self) { s.Reply("wait4string") }),
	)
	wait4float = NewBehavior("wait4float",
		On[float64](func(s *Self, _ float64) { s.Become(wait4string, false) }),
		OnAtom(getState, func(s *Self) { s.Reply("wait4float") }),
	)
	wait4int = NewBehavior("wait4int",
		On[int](func(s *Self, _ int) { s.Become(wait4float, false) }),
		OnAtom(getState, func(s *Self) { s.Reply("wait4int") }),
	)

	testee := Spawn(e, "testee", wait4int)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	for _, v := range []any{1, 2, 3, 0.1, "a", 0.2, 0.3, "b", "c"} {
		Send(testee, v)
		time.Sleep(5 * time.Millisecond)
	}

	state, err := Ask[string](ctx, e, testee, getState).Await(ctx).Unpack()
	require.NoError(t, err)
	require.Equal(t, "wait4int", state)
}

func TestFixedStackLiteralScenario(t *testing.T) {
	e := newTestEngine(t)

	const capacity = 10
	push, pop, ok, failure := MustAtom("push"), MustAtom("pop"), MustAtom("ok"), MustAtom("failure")

	var empty, filled, full *Behavior
	var data []int

	full = NewBehavior("full",
		OnAtomAnd[int](push, func(*Self, int) {}),
		OnAtom(pop, func(s *Self) {
			v := data[len(data)-1]
			data = data[:len(data)-1]
			s.Reply(ok, v)
			s.Become(filled, false)
		}),
	)
	filled = NewBehavior("filled",
		OnAtomAnd[int](push, func(s *Self, v int) {
			data = append(data, v)
			if len(data) == capacity {
				s.Become(full, false)
			}
		}),
		OnAtom(pop, func(s *Self) {
			v := data[len(data)-1]
			data = data[:len(data)-1]
			s.Reply(ok, v)
			if len(data) == 0 {
				s.Become(empty, false)
			}
		}),
	)
	empty = NewBehavior("empty",
		OnAtomAnd[int](push, func(s *Self, v int) {
			data = append(data, v)
			s.Become(filled, false)
		}),
		OnAtom(pop, func(s *Self) { s.Reply(failure) }),
	)

	stack := Spawn(e, "fixed-stack", empty)

	for i := 0; i < 20; i++ {
		Send(stack, push, i)
	}

	type popResult struct {
		status Atom
		value  int
	}
	results := make([]popResult, 20)
	driverDone := make(chan struct{})

	SpawnBlocking(e, "stack-driver", func(ctx *BlockingContext) {
		defer close(driverDone)
		for i := 0; i < 20; i++ {
			ctx.Send(stack, pop)
			ctx.Receive(
				OnAtomAnd[int](ok, func(_ *Self, v int) {
					results[i] = popResult{ok, v}
				}),
				OnAtom(failure, func(*Self) {
					results[i] = popResult{status: failure}
				}),
			)
		}
	})

	select {
	case <-driverDone:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for 20 pops")
	}

	// All 20 pushes were enqueued - and so, per FIFO-per-sender delivery,
	// are necessarily dequeued - before the driver's first pop: 10 of
	// them fill the stack to capacity (values 0..9, the rest dropped by
	// the "full" behavior), so the first 10 pops drain that data LIFO
	// (9,8,...,0) and only the last 10 pops find the stack empty.
	for i := 0; i < 10; i++ {
		require.Equalf(t, ok, results[i].status, "pop %d expected ok", i)
		require.Equalf(t, 9-i, results[i].value, "pop %d expected value %d", i, 9-i)
	}
	for i := 10; i < 20; i++ {
		require.Equalf(t, failure, results[i].status, "pop %d expected failure", i)
	}
}

func TestHandlerPanicTerminatesWithUnhandledException(t *testing.T) {
	e := newTestEngine(t)

	downCh := make(chan string, 1)

	boomer := Spawn(e, "boomer", NewBehavior("",
		OnAtom(MustAtom("boom"), func(*Self) {
			panic("kaboom")
		}),
	))
	SpawnBlocking(e, "watcher", func(ctx *BlockingContext) {
		ctx.Monitor(boomer)
		ctx.Receive(OnOthers(func(s *Self) {
			msg := s.LastDequeued()
			if len(msg.Elems) >= 4 {
				if a, ok := msg.Elems[0].(Atom); ok && a == AtomDown {
					downCh <- msg.Elems[3].(string)
				}
			}
		}))
	})

	Send(boomer, MustAtom("boom"))

	select {
	case reason := <-downCh:
		require.Contains(t, reason, "kaboom")
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for DOWN after handler panic")
	}
	require.Eventually(t, func() bool { return !boomer.IsAlive() }, time.Second, time.Millisecond)
}

func TestHandlerPanicInBlockingStyleTerminatesActor(t *testing.T) {
	e := newTestEngine(t)

	boomer := SpawnBlocking(e, "boomer", func(ctx *BlockingContext) {
		ctx.Receive(OnAtom(MustAtom("boom"), func(*Self) {
			panic(fmt.Errorf("blocking kaboom"))
		}))
	})

	Send(boomer, MustAtom("boom"))

	require.Eventually(t, func() bool { return !boomer.IsAlive() }, time.Second, time.Millisecond)
}

func TestSpawnFactoryRunsInitAndExitHooks(t *testing.T) {
	e := newTestEngine(t)

	var initPID PID
	exitCh := make(chan ExitReason, 1)

	pid := SpawnFactory(e, "hooked", func(self PID) *Behavior {
		return NewBehavior("", OnAtom(MustAtom("die"), func(s *Self) {
			s.Quit(ExitNormal)
		}))
	},
		WithInitHook(func(self PID) { initPID = self }),
		WithExitHook(func(_ context.Context, reason ExitReason) error {
			exitCh <- reason
			return nil
		}),
	)

	require.Equal(t, pid, initPID)

	Send(pid, MustAtom("die"))

	select {
	case reason := <-exitCh:
		require.True(t, reason.IsNormal())
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for exit hook to run")
	}
}

func TestTrySendReportsMailboxFull(t *testing.T) {
	e := NewEngine(EngineConfig{Workers: 1, MailboxCapacity: 1})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = e.Shutdown(ctx)
	})

	startedCh := make(chan struct{})
	releaseCh := make(chan struct{})
	pid := SpawnBlocking(e, "slow", func(ctx *BlockingContext) {
		close(startedCh)
		<-releaseCh
		ctx.Receive(OnOthers(func(*Self) {}))
	})
	<-startedCh // goroutine running but hasn't touched its mailbox yet

	require.NoError(t, TrySend(pid, 1))
	require.ErrorIs(t, TrySend(pid, 2), ErrMailboxFull)

	close(releaseCh)
}

var errBoom = boomErr("boom")

type boomErr string

func (e boomErr) Error() string { return string(e) }
