package actor

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// defaultExitHookTimeout bounds how long terminate will wait on a process's
// ExitHook before moving on with teardown regardless.
const defaultExitHookTimeout = 5 * time.Second

// ExitHook is a teardown callback invoked as the first step of terminate,
// before the mailbox is drained or any EXITED/DOWN notification goes out -
// the actor equivalent of a destructor. Modeled on the teacher's
// Stoppable.OnStop(ctx) pattern. A returned error is logged but never
// changes the reason the process is already terminating with.
type ExitHook func(ctx context.Context, reason ExitReason) error

// link establishes a symmetric relationship between a and b: whichever
// terminates first causes the other to receive an EXITED notification if it
// traps exits, or otherwise to itself terminate with the same reason unless
// that reason is normal.
func link(a, b PID) {
	if a.IsZero() || b.IsZero() || a.Equal(b) {
		return
	}
	if !a.proc.isTerminated() {
		a.proc.mu.Lock()
		a.proc.links.Add(b)
		a.proc.mu.Unlock()
	}
	if !b.proc.isTerminated() {
		b.proc.mu.Lock()
		b.proc.links.Add(a)
		b.proc.mu.Unlock()
	}
	a.proc.engine.logf("actor: link a=%s b=%s", a, b)
}

// unlink removes a previously established link in both directions.
func unlink(a, b PID) {
	if a.IsZero() || b.IsZero() {
		return
	}
	if a.proc != nil {
		a.proc.mu.Lock()
		a.proc.links.Remove(b)
		a.proc.mu.Unlock()
	}
	if b.proc != nil {
		b.proc.mu.Lock()
		b.proc.links.Remove(a)
		b.proc.mu.Unlock()
	}
}

// monitor registers watcher as a directed, one-shot observer of target: only
// watcher is notified (with a DOWN message) when target terminates.
func monitor(watcher, target PID) uuid.UUID {
	ref := uuid.New()
	if target.IsZero() || target.proc.isTerminated() {
		// Already dead: notify immediately so the caller never waits
		// forever on a monitor it installed too late.
		watcher.send(Message{Elems: []any{AtomDown, target, ref, ExitNormal.String()}})
		return ref
	}
	target.proc.mu.Lock()
	target.proc.monitors[watcher] = ref
	target.proc.mu.Unlock()
	target.proc.engine.logf("actor: monitor watcher=%s target=%s ref=%s", watcher, target, ref)
	return ref
}

// demonitor cancels a monitor registered against target with the given
// reference.
func demonitor(target PID, ref uuid.UUID) {
	if target.proc == nil {
		return
	}
	target.proc.mu.Lock()
	for w, r := range target.proc.monitors {
		if r == ref {
			delete(target.proc.monitors, w)
			break
		}
	}
	target.proc.mu.Unlock()
}

// terminate runs the teardown sequence exactly once for p. It first marks p
// terminated, so no further scheduling claim can succeed and new sends
// become no-ops, and then:
//
//	(a) run the exit hook, if any;
//	(b) close the mailbox;
//	(c) drain the mailbox, synthesizing an (AtomExited, reason) reply -
//	    carrying the original ReqID - for every drained message that was
//	    part of a synchronous exchange, plus the in-flight request (if
//	    any) that was being handled when termination was requested;
//	(d) notify every monitor with a DOWN message;
//	(e) notify every linked peer: deliver an EXITED message if it traps
//	    exits, otherwise terminate it too with the same reason;
//	(f) drop this process from the engine's registry.
func (p *process) terminate(reason ExitReason) {
	if !p.terminated.CompareAndSwap(false, true) {
		return
	}
	p.exitReason = reason

	p.mu.Lock()
	hook := p.exitHook
	p.mu.Unlock()
	if hook != nil {
		ctx, cancel := context.WithTimeout(
			context.Background(), defaultExitHookTimeout,
		)
		if err := hook(ctx, reason); err != nil {
			p.engine.logf(
				"actor: exit hook error pid=%s name=%q: %v",
				p.pid, p.name, err,
			)
		}
		cancel()
	}

	p.engine.logf(
		"actor: terminating pid=%s name=%q reason=%s", p.pid, p.name,
		reason,
	)

	p.mailbox.close()

	if active := p.activeReq; active != nil {
		active.sender.send(Message{
			Elems:  []any{AtomExited, reason.String()},
			Sender: p.pid,
			ReqID:  active.reqID,
		})
	}
	for _, msg := range p.mailbox.drain() {
		if !msg.HasReqID() || msg.Sender.IsZero() {
			continue
		}
		msg.Sender.send(Message{
			Elems:  []any{AtomExited, reason.String()},
			Sender: p.pid,
			ReqID:  msg.ReqID,
		})
	}

	p.mu.Lock()
	monitors := p.monitors
	p.monitors = nil
	links := p.links.Values()
	p.mu.Unlock()

	for watcher, ref := range monitors {
		watcher.send(Message{Elems: []any{AtomDown, p.pid, ref, reason.String()}})
	}

	for _, v := range links {
		peer, ok := v.(PID)
		if !ok || peer.IsZero() || peer.proc == nil {
			continue
		}
		unlink(p.pid, peer)
		if peer.proc.isTerminated() {
			continue
		}
		if peer.proc.isTrapExit() {
			peer.send(Message{
				Elems:  []any{AtomExited, reason.String()},
				Sender: p.pid,
			})
			continue
		}
		if reason.IsNormal() {
			continue
		}
		peer.proc.terminate(reason)
	}

	p.engine.unregister(p)
}
