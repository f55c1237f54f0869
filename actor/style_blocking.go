package actor

import "time"

// BlockingBody is the imperative body of a blocking-style actor: it runs on
// its own dedicated goroutine and drives its own receive loop explicitly,
// CAF's plain event-based actor written as straight-line code with
// receive(...)/receive_loop/do_receive(...).until(...) instead of a
// become-driven state machine. Useful for actors whose control flow reads
// more naturally top-to-bottom than as a set of named states (the
// ping/pong demo's pinger).
type BlockingBody func(ctx *BlockingContext)

// BlockingContext is the handle a BlockingBody uses to address itself and
// block for its next message.
type BlockingContext struct {
	pid  PID
	proc *process
}

// PID returns this actor's own address.
func (c *BlockingContext) PID() PID {
	return c.pid
}

// Send delivers elems to target with this actor set as the reply-to
// address.
func (c *BlockingContext) Send(target PID, elems ...any) {
	target.send(Message{Elems: elems, Sender: c.pid})
}

// DelayedSend schedules elems for delivery to target after d elapses.
func (c *BlockingContext) DelayedSend(target PID, d time.Duration, elems ...any) func() {
	return c.proc.engine.timers.schedule(target, Message{Elems: elems, Sender: c.pid}, d)
}

// LinkTo establishes a symmetric link with other.
func (c *BlockingContext) LinkTo(other PID) {
	link(c.pid, other)
}

// Monitor registers a directed, one-shot watch on other.
func (c *BlockingContext) Monitor(other PID) {
	monitor(c.pid, other)
}

// TrapExit controls whether a linked peer's termination arrives as an
// ordinary EXITED message instead of bringing this actor down too.
func (c *BlockingContext) TrapExit(v bool) {
	c.proc.setTrapExit(v)
}

// Quit terminates this actor immediately with the given reason; later
// receives in the BlockingBody return at once.
func (c *BlockingContext) Quit(reason ExitReason) {
	c.proc.terminate(reason)
}

// Receive blocks until exactly one message matches one of clauses
// (top-to-bottom priority, same as an event-based Behavior), then returns.
// A message that matches no clause is dropped (or forwarded to the DLO,
// per EngineConfig) and Receive keeps waiting.
func (c *BlockingContext) Receive(clauses ...Clause) {
	full := &Behavior{clauses: clauses}
	c.loop(full)
}

// ReceiveTimeout is Receive with a receive-timeout clause attached: if no
// message matching clauses (or any message at all) arrives within d,
// onTimeout runs instead and Receive returns, CAF's
// do_receive(...).until(...) paired with after(d).
func (c *BlockingContext) ReceiveTimeout(d time.Duration, onTimeout func(*Self), clauses ...Clause) {
	full := &Behavior{clauses: clauses, timeout: &TimeoutClause{after: d, handler: onTimeout}}
	c.loop(full)
}

// ReceiveUntil repeats Receive until pred reports true, CAF's
// do_receive(...).until(gref(pred)).
func (c *BlockingContext) ReceiveUntil(pred func() bool, clauses ...Clause) {
	for !pred() {
		c.Receive(clauses...)
		if c.proc.isTerminated() {
			return
		}
	}
}

func (c *BlockingContext) loop(full *Behavior) {
	for {
		consumed, alive := c.proc.blockingReceiveOnce(full)
		if consumed || !alive {
			return
		}
	}
}

// blockingReceiveOnce pops exactly one message (blocking if none is
// queued) and resolves it against b. It reports whether b actually consumed
// the message (a real clause or timeout handler ran to completion without
// requesting Skip) and whether the process is still alive afterward.
func (p *process) blockingReceiveOnce(b *Behavior) (consumed, alive bool) {
	if b != p.lastSeenBehavior {
		p.mailbox.resetSkip()
		p.lastSeenBehavior = b
		p.armTimeout(b)
	}

	msg, ok := p.mailbox.popBlocking()
	if !ok {
		return false, false
	}

	if gen, isTimeout := isTimeoutSentinel(msg); isTimeout {
		if gen != p.currentTimeoutGeneration() {
			return false, true
		}
		if b.timeout != nil {
			self := &Self{pid: p.pid, proc: p}
			p.setLastDequeued(msg)
			if p.runTimeoutHandler(func() { b.timeout.handler(self) }) {
				return true, false
			}
			return true, p.checkQuit()
		}
		return false, true
	}

	p.armTimeout(b)
	p.setLastDequeued(msg)
	p.setActiveRequest(requestFromMessage(msg))

	self := &Self{pid: p.pid, proc: p}
	handled, panicked := p.runBehaviorDispatch(b, self, msg)
	p.setActiveRequest(nil)
	if panicked {
		return true, false
	}

	if handled && self.skipRequested {
		p.mailbox.skipMsg(msg)
		return false, true
	}
	if handled {
		return true, p.checkQuit()
	}

	if b.reqFilter != nil {
		p.mailbox.skipMsg(msg)
	} else {
		p.handleUnmatched(msg)
	}
	return false, true
}

// checkQuit terminates p if a handler just called Self.Quit, returning
// whether p is still alive.
func (p *process) checkQuit() bool {
	p.mu.Lock()
	quit := p.quitRequested
	reason := p.exitReason
	p.mu.Unlock()
	if quit {
		p.terminate(reason)
		return false
	}
	return true
}

// SpawnBlocking starts a blocking-style actor on a dedicated goroutine,
// tracked by the Engine's shutdown WaitGroup.
func SpawnBlocking(e *Engine, name string, body BlockingBody) PID {
	p := newProcess(e, name, styleBlocking, nil)
	ctx := &BlockingContext{pid: p.pid, proc: p}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				p.terminate(ExitWithError(handlerPanic(r)))
			}
		}()
		body(ctx)
		if !p.isTerminated() {
			p.terminate(ExitNormal)
		}
	}()

	return p.pid
}
