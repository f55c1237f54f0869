package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/roasbeef/actoria/actor"
	"github.com/spf13/cobra"
)

var statemachineCmd = &cobra.Command{
	Use:   "statemachine",
	Short: "Cycle an actor through become-driven wait4int/float/string states",
	RunE:  runStatemachine,
}

var atomGetState = actor.MustAtom("get_state")

// newEventTestee builds the three-state cycle wait4int -> wait4float ->
// wait4string -> wait4int, CAF's event_testee sb_actor.
func newEventTestee(e *actor.Engine) actor.PID {
	var wait4string, wait4float, wait4int *actor.Behavior

	wait4string = actor.NewBehavior("wait4string",
		actor.On[string](func(s *actor.Self, _ string) { s.Become(wait4int, false) }),
		actor.OnAtom(atomGetState, func(s *actor.Self) { s.Reply("wait4string") }),
	)
	wait4float = actor.NewBehavior("wait4float",
		actor.On[float64](func(s *actor.Self, _ float64) { s.Become(wait4string, false) }),
		actor.OnAtom(atomGetState, func(s *actor.Self) { s.Reply("wait4float") }),
	)
	wait4int = actor.NewBehavior("wait4int",
		actor.On[int](func(s *actor.Self, _ int) { s.Become(wait4float, false) }),
		actor.OnAtom(atomGetState, func(s *actor.Self) { s.Reply("wait4int") }),
	)

	return actor.Spawn(e, "event-testee", wait4int)
}

func runStatemachine(_ *cobra.Command, _ []string) error {
	e, err := newEngine("FSM")
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = e.Shutdown(ctx)
	}()

	testee := newEventTestee(e)

	askCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	printState := func() error {
		state, err := actor.Ask[string](askCtx, e, testee, atomGetState).Await(askCtx).Unpack()
		if err != nil {
			return err
		}
		fmt.Println("state:", state)
		return nil
	}

	transitions := []any{42, 3.14, "done"}

	if err := printState(); err != nil {
		return err
	}
	for _, v := range transitions {
		actor.Send(testee, v)
		time.Sleep(10 * time.Millisecond)
		if err := printState(); err != nil {
			return err
		}
	}
	return nil
}
