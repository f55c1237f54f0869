package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/roasbeef/actoria/actor"
	"github.com/spf13/cobra"
)

var pingPongRounds int

var pingpongCmd = &cobra.Command{
	Use:   "pingpong",
	Short: "Link a ping/pong actor pair and show exit-reason propagation",
	RunE:  runPingPong,
}

func init() {
	pingpongCmd.Flags().IntVar(
		&pingPongRounds, "rounds", 5,
		"Number of ping/pong round trips before ping quits",
	)
}

func runPingPong(_ *cobra.Command, _ []string) error {
	e, err := newEngine("PING")
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = e.Shutdown(ctx)
	}()

	done := make(chan string, 1)

	pong := actor.SpawnBlocking(e, "pong", func(ctx *actor.BlockingContext) {
		ctx.TrapExit(true)

		var exited bool
		var reason string
		ctx.ReceiveUntil(func() bool { return exited },
			actor.On[int](func(s *actor.Self, v int) {
				fmt.Printf("pong: received %d, replying %d\n", v, v+1)
				s.Reply(v + 1)
			}),
			actor.OnAtomAnd[string](actor.AtomExited, func(_ *actor.Self, r string) {
				exited, reason = true, r
			}),
		)
		done <- reason
	})

	actor.SpawnBlocking(e, "ping", func(ctx *actor.BlockingContext) {
		ctx.LinkTo(pong)

		next := 0
		for i := 0; i < pingPongRounds; i++ {
			ctx.Send(pong, next)
			ctx.Receive(actor.On[int](func(_ *actor.Self, v int) {
				fmt.Printf("ping: received %d\n", v)
				next = v
			}))
		}
		ctx.Quit(actor.UserDefined(1))
	})

	select {
	case reason := <-done:
		fmt.Printf("pong observed ping's exit: %s\n", reason)
	case <-time.After(10 * time.Second):
		return fmt.Errorf("pingpong: timed out waiting for linked exit propagation")
	}
	return nil
}
