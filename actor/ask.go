package actor

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Ask sends elems to target and returns a Future resolved with the single
// reply value, type-asserted to T. Unlike Self.SyncSend/Await, which relies
// on the calling actor's own mailbox and behavior stack, Ask is for callers
// that are not actors - tests, the demo CLI, actorutil's pool helpers - and
// so blocks a plain goroutine instead of installing a continuation.
//
// Canceling ctx unblocks the Future's Await immediately; the small internal
// waiter goroutine is itself bounded by ctx (or by the reply/EXITED
// arriving), so it never outlives this call.
func Ask[T any](ctx context.Context, e *Engine, target PID, elems ...any) Future[T] {
	pr := NewPromise[T]()
	p := newProcess(e, "ask", styleBlocking, nil)
	done := make(chan struct{})

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer close(done)
		defer p.terminate(ExitNormal)

		msg, ok := p.mailbox.popBlocking()
		if !ok {
			pr.Reject(context.Canceled)
			return
		}
		resolveAsk(pr, msg)
	}()

	go func() {
		select {
		case <-ctx.Done():
			p.mailbox.close()
		case <-done:
		}
	}()

	target.send(Message{Elems: elems, Sender: p.pid, ReqID: uuid.New()})
	return pr.Future()
}

func resolveAsk[T any](pr Promise[T], msg Message) {
	if len(msg.Elems) >= 1 {
		if a, isAtom := msg.Elems[0].(Atom); isAtom && a == AtomExited {
			reason := "unknown"
			if len(msg.Elems) > 1 {
				if s, ok := msg.Elems[1].(string); ok {
					reason = s
				}
			}
			pr.Reject(fmt.Errorf("actor: target exited before replying: %s", reason))
			return
		}
	}
	if len(msg.Elems) == 0 {
		var zero T
		pr.Resolve(zero)
		return
	}
	v, ok := msg.Elems[0].(T)
	if !ok {
		pr.Reject(fmt.Errorf("actor: unexpected reply type %T", msg.Elems[0]))
		return
	}
	pr.Resolve(v)
}
