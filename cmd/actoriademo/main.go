// Command actoriademo runs the literal end-to-end scenarios the actor
// runtime is built against, live against a real Engine: ping-pong with
// linked exit-reason propagation, dining-philosophers-style mutual
// exclusion over chopstick actors, a become-driven state machine,
// and a gref-style until-predicate blocking receive.
package main

import (
	"fmt"
	"os"

	"github.com/roasbeef/actoria/cmd/actoriademo/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
