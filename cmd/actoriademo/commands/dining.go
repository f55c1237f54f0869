package commands

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/roasbeef/actoria/actor"
	"github.com/spf13/cobra"
)

var (
	diningPhilosophers int
	diningRounds       int
)

var diningCmd = &cobra.Command{
	Use:   "dining",
	Short: "Run dining philosophers over chopstick actors guarded by take/put/busy",
	RunE:  runDining,
}

func init() {
	diningCmd.Flags().IntVar(&diningPhilosophers, "philosophers", 5, "Number of philosophers (and chopsticks) in the ring")
	diningCmd.Flags().IntVar(&diningRounds, "rounds", 3, "Number of eat rounds per philosopher")
}

var (
	atomTake  = actor.MustAtom("take")
	atomPut   = actor.MustAtom("put")
	atomTaken = actor.MustAtom("taken")
	atomBusy  = actor.MustAtom("busy")
)

// newChopstick spawns one chopstick, CAF's chopstick sb_actor: available
// until taken, then refuses further takes (replying busy) until put by the
// same philosopher that took it.
func newChopstick(e *actor.Engine, name string) actor.PID {
	return actor.SpawnFactory(e, name, func(actor.PID) *actor.Behavior {
		var available *actor.Behavior
		var takenBy func(whom actor.PID) *actor.Behavior

		takenBy = func(whom actor.PID) *actor.Behavior {
			return actor.NewBehavior("taken",
				actor.OnAtomAnd[actor.PID](atomTake, func(s *actor.Self, _ actor.PID) {
					s.Reply(atomBusy)
				}),
				actor.OnPair(atomPut, whom, func(s *actor.Self) {
					s.Become(available, false)
				}),
			)
		}

		available = actor.NewBehavior("available",
			actor.OnAtomAnd[actor.PID](atomTake, func(s *actor.Self, whom actor.PID) {
				s.Become(takenBy(whom), false)
				s.Reply(atomTaken)
			}),
		)

		return available
	})
}

// takeChopstick retries take/busy until the chopstick grants it.
func takeChopstick(ctx *actor.BlockingContext, cs actor.PID) {
	for {
		ctx.Send(cs, atomTake, ctx.PID())
		granted := false
		ctx.Receive(actor.On[actor.Atom](func(_ *actor.Self, a actor.Atom) {
			granted = a == atomTaken
		}))
		if granted {
			return
		}
		time.Sleep(time.Millisecond)
	}
}

func runDining(_ *cobra.Command, _ []string) error {
	e, err := newEngine("DINE")
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = e.Shutdown(ctx)
	}()

	n := diningPhilosophers
	if n < 2 {
		n = 2
	}

	chopsticks := make([]actor.PID, n)
	for i := 0; i < n; i++ {
		chopsticks[i] = newChopstick(e, fmt.Sprintf("chopstick-%d", i))
	}

	var wg sync.WaitGroup
	wg.Add(n)

	for i := 0; i < n; i++ {
		idx := i
		left := chopsticks[idx]
		right := chopsticks[(idx+1)%n]
		// The last philosopher picks up in the opposite order, the
		// textbook fix that breaks the circular wait otherwise
		// possible if every philosopher reaches for its left first.
		if idx == n-1 {
			left, right = right, left
		}

		actor.SpawnBlocking(e, fmt.Sprintf("philosopher-%d", idx), func(ctx *actor.BlockingContext) {
			defer wg.Done()
			for round := 0; round < diningRounds; round++ {
				takeChopstick(ctx, left)
				takeChopstick(ctx, right)

				fmt.Printf("philosopher-%d is eating (round %d/%d)\n", idx, round+1, diningRounds)
				time.Sleep(5 * time.Millisecond)

				ctx.Send(left, atomPut, ctx.PID())
				ctx.Send(right, atomPut, ctx.PID())
			}
		})
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		fmt.Println("all philosophers finished eating")
	case <-time.After(30 * time.Second):
		return fmt.Errorf("dining: timed out, possible deadlock")
	}
	return nil
}
