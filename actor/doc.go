// Package actor implements an in-process actor runtime: mailboxes,
// pattern-matching behaviors with become/unbecome, a fixed worker-pool
// scheduler, link/monitor supervision, and a synchronous request/reply
// protocol layered on top of ordinary asynchronous sends.
//
// Three conventions are provided for building an actor's initial behavior -
// Spawn (a ready-made Behavior), SpawnFactory (a closure given the actor's
// own PID up front), and SpawnBlocking (an imperative body on its own
// goroutine) - but all three share the same dispatch, scheduling and
// supervision machinery underneath.
package actor
