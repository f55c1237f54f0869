package actor

import "fmt"

var receiveTimeoutAtom = MustAtom("_rtmo")

func timeoutSentinel(gen uint64) Message {
	return Message{Elems: []any{receiveTimeoutAtom, gen}}
}

func isTimeoutSentinel(msg Message) (uint64, bool) {
	if len(msg.Elems) != 2 {
		return 0, false
	}
	a, ok := msg.Elems[0].(Atom)
	if !ok || a != receiveTimeoutAtom {
		return 0, false
	}
	gen, ok := msg.Elems[1].(uint64)
	return gen, ok
}

// start arms the initial behavior's receive timeout, if any. Called once
// right after a process is constructed and registered with the engine.
func (p *process) start() {
	top := p.top()
	if top == nil {
		p.terminate(ExitNormal)
		return
	}
	p.lastSeenBehavior = top
	p.armTimeout(top)
}

// armTimeout schedules a fresh timeout sentinel for b, invalidating any
// previously scheduled one via the generation bump.
func (p *process) armTimeout(b *Behavior) {
	gen := p.bumpTimeoutGeneration()
	if b == nil || b.timeout == nil {
		return
	}
	p.engine.timers.schedule(p.pid, timeoutSentinel(gen), b.timeout.after)
}

// handlerPanic turns a recovered panic value into an error suitable for
// ExitWithError, preserving an already-error value via %w.
func handlerPanic(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("actor: handler panic: %w", err)
	}
	return fmt.Errorf("actor: handler panic: %v", r)
}

// runTimeoutHandler invokes a TimeoutClause's handler, recovering any panic
// and terminating p with ExitKindUnhandledException instead of letting it
// unwind into the engine's worker goroutine (or, for blocking-style actors,
// crash the dedicated goroutine outright). Spec's handler_exception policy:
// surfaces as actor termination, propagates through links/monitors normally.
// It reports whether the handler panicked, so the caller can skip any
// post-handler bookkeeping on an already-terminated process.
func (p *process) runTimeoutHandler(fn func()) (panicked bool) {
	defer func() {
		if r := recover(); r != nil {
			panicked = true
			p.terminate(ExitWithError(handlerPanic(r)))
		}
	}()
	fn()
	return false
}

// runBehaviorDispatch invokes b.dispatch, recovering any panic escaping a
// clause handler the same way runTimeoutHandler does.
func (p *process) runBehaviorDispatch(b *Behavior, self *Self, msg Message) (handled, panicked bool) {
	defer func() {
		if r := recover(); r != nil {
			panicked = true
			p.terminate(ExitWithError(handlerPanic(r)))
		}
	}()
	return b.dispatch(self, msg), false
}

// runDispatchClauses is runBehaviorDispatch's counterpart for a one-shot
// handle_response continuation's clause list.
func (p *process) runDispatchClauses(self *Self, clauses []Clause, msg Message) (handled, panicked bool) {
	defer func() {
		if r := recover(); r != nil {
			panicked = true
			p.terminate(ExitWithError(handlerPanic(r)))
		}
	}()
	return dispatchClauses(self, clauses, msg), false
}

// receiveStep performs one unit of the central dispatch algorithm: replay
// the skip buffer if the behavior just changed, pop the next message,
// resolve it against any pending handle_response continuation and then the
// active behavior's clauses top-to-bottom, and apply the unmatched-message
// policy if nothing claims it. It reports whether it made progress, which
// the worker quantum loop uses to decide whether to keep running this actor
// or move on.
func (p *process) receiveStep() bool {
	top := p.top()
	if top == nil {
		p.terminate(ExitNormal)
		return false
	}

	if top != p.lastSeenBehavior {
		p.mailbox.resetSkip()
		p.lastSeenBehavior = top
		p.armTimeout(top)
	}

	msg, ok := p.mailbox.tryPop()
	if !ok {
		return false
	}

	if gen, isTimeout := isTimeoutSentinel(msg); isTimeout {
		if gen != p.currentTimeoutGeneration() {
			return true
		}
		if top.timeout != nil {
			self := &Self{pid: p.pid, proc: p}
			p.setLastDequeued(msg)
			if !p.runTimeoutHandler(func() { top.timeout.handler(self) }) {
				p.afterHandlerRan(top)
			}
		}
		return true
	}

	p.armTimeout(p.top())
	p.setLastDequeued(msg)
	p.setActiveRequest(requestFromMessage(msg))

	self := &Self{pid: p.pid, proc: p}

	if msg.HasReqID() {
		if clauses, ok := p.takePendingReply(msg.ReqID); ok {
			handled, panicked := p.runDispatchClauses(self, clauses, msg)
			if panicked {
				return true
			}
			if handled {
				p.setActiveRequest(nil)
				p.afterHandlerRan(top)
				return true
			}
		}
	}

	handled, panicked := p.runBehaviorDispatch(top, self, msg)
	if panicked {
		return true
	}
	p.setActiveRequest(nil)

	if handled && self.skipRequested {
		p.mailbox.skipMsg(msg)
		return true
	}

	if handled {
		p.afterHandlerRan(top)
		return true
	}

	if top.reqFilter != nil {
		// A one-shot sync continuation in progress: a message with a
		// different shape (but matching ReqID already filtered at the
		// Behavior level) is simply not ours yet, preserve order.
		p.mailbox.skipMsg(msg)
		return true
	}

	p.handleUnmatched(msg)
	return true
}

// afterHandlerRan applies the post-dispatch bookkeeping common to both a
// matched clause and a fired timeout clause: pop the behavior if it was a
// one-shot, and honor a Quit requested from inside the handler.
func (p *process) afterHandlerRan(ranOn *Behavior) {
	if ranOn.oneShot {
		p.popOneShot(ranOn)
	}

	if !p.checkQuit() {
		return
	}

	if newTop := p.top(); newTop == nil {
		p.terminate(ExitNormal)
	}
}

// handleUnmatched applies the configured policy for a message that matched
// no clause of the active behavior (no OnOthers present): forward to the
// dead-letter office if one is configured, else escalate to a terminating
// error if StrictUnknown is set, else drop it.
func (p *process) handleUnmatched(msg Message) {
	if !p.engine.cfg.DLO.IsZero() {
		p.engine.cfg.DLO.send(msg)
		return
	}
	if p.engine.cfg.StrictUnknown {
		p.terminate(ExitUnknownMessage())
		return
	}
	// Default: drop.
}

func requestFromMessage(msg Message) *pendingRequest {
	if !msg.HasReqID() || msg.Sender.IsZero() {
		return nil
	}
	return &pendingRequest{sender: msg.Sender, reqID: msg.ReqID}
}
