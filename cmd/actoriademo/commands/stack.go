package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/roasbeef/actoria/actor"
	"github.com/spf13/cobra"
)

var stackMaxSize int

var stackCmd = &cobra.Command{
	Use:   "stack",
	Short: "Drive a fixed-size stack actor through its empty/filled/full become cycle",
	RunE:  runStack,
}

func init() {
	stackCmd.Flags().IntVar(&stackMaxSize, "max-size", 3, "Capacity of the stack actor before it becomes full")
}

var (
	atomPush    = actor.MustAtom("push")
	atomPop     = actor.MustAtom("pop")
	atomOK      = actor.MustAtom("ok")
	atomFailure = actor.MustAtom("failure")
)

// newFixedStack builds the three-state full/filled/empty cycle, CAF's
// fixed_stack sb_actor.
func newFixedStack(e *actor.Engine, maxSize int) actor.PID {
	var empty, filled, full *actor.Behavior
	var data []int

	full = actor.NewBehavior("full",
		actor.OnAtomAnd[int](atomPush, func(*actor.Self, int) {}),
		actor.OnAtom(atomPop, func(s *actor.Self) {
			v := data[len(data)-1]
			data = data[:len(data)-1]
			s.Reply(atomOK, v)
			s.Become(filled, false)
		}),
	)

	filled = actor.NewBehavior("filled",
		actor.OnAtomAnd[int](atomPush, func(s *actor.Self, v int) {
			data = append(data, v)
			if len(data) == maxSize {
				s.Become(full, false)
			}
		}),
		actor.OnAtom(atomPop, func(s *actor.Self) {
			v := data[len(data)-1]
			data = data[:len(data)-1]
			s.Reply(atomOK, v)
			if len(data) == 0 {
				s.Become(empty, false)
			}
		}),
	)

	empty = actor.NewBehavior("empty",
		actor.OnAtomAnd[int](atomPush, func(s *actor.Self, v int) {
			data = append(data, v)
			s.Become(filled, false)
		}),
		actor.OnAtom(atomPop, func(s *actor.Self) {
			s.Reply(atomFailure)
		}),
	)

	return actor.Spawn(e, "fixed-stack", empty)
}

func runStack(_ *cobra.Command, _ []string) error {
	e, err := newEngine("STCK")
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = e.Shutdown(ctx)
	}()

	st := newFixedStack(e, stackMaxSize)
	done := make(chan struct{})

	actor.SpawnBlocking(e, "stack-driver", func(ctx *actor.BlockingContext) {
		defer close(done)

		pop := func() {
			ctx.Send(st, atomPop)
			ctx.Receive(
				actor.OnAtomAnd[int](atomOK, func(_ *actor.Self, v int) {
					fmt.Printf("pop -> ok %d\n", v)
				}),
				actor.OnAtom(atomFailure, func(*actor.Self) {
					fmt.Println("pop -> failure (empty)")
				}),
			)
		}

		pop()
		for i := 1; i <= stackMaxSize+1; i++ {
			ctx.Send(st, atomPush, i)
			fmt.Printf("push %d\n", i)
		}
		for i := 0; i < stackMaxSize; i++ {
			pop()
		}
		pop()
	})

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		return fmt.Errorf("stack: timed out waiting for driver to finish")
	}
	return nil
}
