package actor

import (
	"context"
	"sync"

	"github.com/lightningnetwork/lnd/fn/v2"
)

// Future is a write-once, read-many handle to the eventual result of an Ask
// call placed from outside the actor runtime (tests, the demo CLI, a pool's
// caller). It complements, rather than replaces, the in-actor sync_send/
// await/handle_response protocol in sync.go: Future is for callers that are
// not themselves actors and so have nowhere to stash a one-shot behavior.
type Future[T any] struct {
	done chan struct{}
	mu   *sync.Mutex
	val  *fn.Result[T]
	set  *bool
}

// Promise is the write side of a Future.
type Promise[T any] struct {
	f *Future[T]
}

// NewPromise creates a linked Promise/Future pair. The Promise is resolved
// exactly once by the actor-system machinery driving the Ask; the Future is
// handed back to the caller.
func NewPromise[T any]() Promise[T] {
	return Promise[T]{f: &Future[T]{
		done: make(chan struct{}),
		mu:   &sync.Mutex{},
		val:  new(fn.Result[T]),
		set:  new(bool),
	}}
}

// Future returns the read side of this promise.
func (p Promise[T]) Future() Future[T] {
	return *p.f
}

// Resolve fulfills the promise with a value. Only the first call has any
// effect; later calls are ignored, matching the "reply after reply" no-op
// the behavior-dispatch layer already guarantees for normal sends.
func (p Promise[T]) Resolve(v T) {
	p.resolve(fn.Ok(v))
}

// Reject fulfills the promise with an error.
func (p Promise[T]) Reject(err error) {
	p.resolve(fn.Err[T](err))
}

func (p Promise[T]) resolve(r fn.Result[T]) {
	p.f.mu.Lock()
	defer p.f.mu.Unlock()
	if *p.f.set {
		return
	}
	*p.f.val = r
	*p.f.set = true
	close(p.f.done)
}

// Await blocks until the promise is resolved or ctx is done, whichever
// happens first.
func (f Future[T]) Await(ctx context.Context) fn.Result[T] {
	select {
	case <-f.done:
		f.mu.Lock()
		defer f.mu.Unlock()
		return *f.val
	case <-ctx.Done():
		return fn.Err[T](ctx.Err())
	}
}
