package actor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTimerServiceDeliversAfterDelay(t *testing.T) {
	e := newTestEngine(t)

	got := make(chan string, 1)
	pid := Spawn(e, "timed", NewBehavior("", On[string](func(_ *Self, v string) {
		got <- v
	})))

	start := time.Now()
	e.timers.schedule(pid, NewMessage("fired"), 30*time.Millisecond)

	select {
	case v := <-got:
		require.Equal(t, "fired", v)
		require.GreaterOrEqual(t, time.Since(start), 25*time.Millisecond)
	case <-time.After(time.Second):
		t.Fatal("timer never fired")
	}
}

func TestTimerCancel(t *testing.T) {
	e := newTestEngine(t)

	got := make(chan string, 1)
	pid := Spawn(e, "timed", NewBehavior("", On[string](func(_ *Self, v string) {
		got <- v
	})))

	cancel := e.timers.schedule(pid, NewMessage("fired"), 30*time.Millisecond)
	cancel()

	select {
	case <-got:
		t.Fatal("canceled timer must not fire")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestReceiveTimeoutFiresWhenIdle(t *testing.T) {
	e := newTestEngine(t)

	timedOut := make(chan struct{})
	b := NewBehavior("wait", OnAtom(MustAtom("ping"), func(*Self) {})).
		WithTimeout(30*time.Millisecond, func(*Self) { close(timedOut) })

	Spawn(e, "waiter", b)

	select {
	case <-timedOut:
	case <-time.After(time.Second):
		t.Fatal("receive timeout never fired")
	}
}

func TestReceiveTimeoutResetsOnActivity(t *testing.T) {
	e := newTestEngine(t)

	timedOut := make(chan struct{})
	pinged := make(chan struct{}, 10)
	b := NewBehavior("wait", OnAtom(MustAtom("ping"), func(*Self) { pinged <- struct{}{} })).
		WithTimeout(60*time.Millisecond, func(*Self) { close(timedOut) })

	pid := Spawn(e, "waiter", b)

	for i := 0; i < 3; i++ {
		Send(pid, MustAtom("ping"))
		time.Sleep(20 * time.Millisecond)
	}

	select {
	case <-timedOut:
		t.Fatal("timeout fired despite ongoing activity")
	default:
	}
}
