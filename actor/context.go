package actor

import (
	"time"

	"github.com/google/uuid"
)

// Self is the handle a behavior clause receives to act on its own actor's
// behalf: reply to whoever sent the message being handled, change behavior,
// link or monitor peers, or request termination. A fresh Self is built for
// every dispatched message; it must not be retained past the handler that
// received it.
type Self struct {
	pid  PID
	proc *process

	skipRequested bool
}

// PID returns this actor's own address.
func (s *Self) PID() PID {
	return s.pid
}

// LastDequeued returns the full message currently being handled, including
// its Sender and ReqID - useful from an OnOthers clause that needs more
// than the tuple shape a typed clause would bind.
func (s *Self) LastDequeued() Message {
	return s.proc.getLastDequeued()
}

// LastSender returns the Sender of the message currently being handled, or
// the zero PID if it was sent anonymously.
func (s *Self) LastSender() PID {
	return s.LastDequeued().Sender
}

// Send delivers elems to target with this actor set as the reply-to
// address.
func (s *Self) Send(target PID, elems ...any) {
	target.send(Message{Elems: elems, Sender: s.pid})
}

// DelayedSend schedules elems for delivery to target after d elapses, with
// this actor set as the reply-to address. The returned cancel func stops
// delivery if called before d elapses; it has no effect afterward.
func (s *Self) DelayedSend(target PID, d time.Duration, elems ...any) func() {
	return s.proc.engine.timers.schedule(target, Message{Elems: elems, Sender: s.pid}, d)
}

// Reply sends elems back to whoever sent the message currently being
// handled, preserving its ReqID so a pending sync_send/await resolves.
// Replying when there is no sender (an anonymous send) is a silent no-op.
func (s *Self) Reply(elems ...any) {
	cur := s.LastDequeued()
	if cur.Sender.IsZero() {
		return
	}
	cur.Sender.send(Message{Elems: elems, Sender: s.pid, ReqID: cur.ReqID})
}

// DelayedReply is Reply, delivered after d elapses instead of immediately.
func (s *Self) DelayedReply(d time.Duration, elems ...any) func() {
	cur := s.LastDequeued()
	if cur.Sender.IsZero() {
		return func() {}
	}
	return s.proc.engine.timers.schedule(
		cur.Sender, Message{Elems: elems, Sender: s.pid, ReqID: cur.ReqID}, d,
	)
}

// Become pushes (keep=true) or replaces (keep=false) the active behavior,
// CAF's become(behavior, keep_behavior).
func (s *Self) Become(b *Behavior, keep bool) {
	s.proc.become(b, keep)
}

// Unbecome pops the active behavior, returning to whatever was beneath it.
func (s *Self) Unbecome() {
	s.proc.unbecome()
}

// Quit requests termination with the given reason once the current handler
// returns.
func (s *Self) Quit(reason ExitReason) {
	s.proc.mu.Lock()
	s.proc.quitRequested = true
	s.proc.exitReason = reason
	s.proc.mu.Unlock()
}

// Skip requests that the message currently being handled be treated as
// unmatched even though a clause fired for it: it is set aside in the skip
// buffer instead of being considered consumed, CAF's explicit
// skip_message()/skip_behavior action inside an others() clause used for
// deliberate selective receive (e.g. "I can't grant this request yet").
func (s *Self) Skip() {
	s.skipRequested = true
}

// LinkTo establishes a symmetric link with other: if either actor
// terminates, the other receives an EXITED notification when it traps
// exits, or otherwise is itself brought down with the same reason unless
// that reason is normal.
func (s *Self) LinkTo(other PID) {
	link(s.pid, other)
}

// Unlink removes a previously established link.
func (s *Self) Unlink(other PID) {
	unlink(s.pid, other)
}

// Monitor registers a one-shot, directed watch on other: only this actor is
// notified (with a DOWN message) when other terminates; other is not
// notified about this actor's own termination.
func (s *Self) Monitor(other PID) uuid.UUID {
	return monitor(s.pid, other)
}

// Demonitor cancels a monitor registered with the given reference.
func (s *Self) Demonitor(other PID, ref uuid.UUID) {
	demonitor(other, ref)
}

// TrapExit controls whether an EXITED notification from a linked peer is
// delivered as an ordinary message (true) or converted into this actor's
// own termination with the peer's reason (false, the default).
func (s *Self) TrapExit(v bool) {
	s.proc.setTrapExit(v)
}

// SyncSend sends elems to target as a synchronous request and returns a
// handle to correlate the eventual response with Await or HandleResponse.
// It does not block: the calling convention is
//
//	h := self.SyncSend(target, atom("get"))
//	self.Await(h, actor.On(func(self *Self, v int) { ... }))
//
// with Await as the last statement of the handler, mirroring CAF's
// sync_send(...).await(...) chain - Go has no continuations, so the
// behavior-stack push Await performs is what actually "waits": the handler
// returns normally and the runtime's next receive step evaluates the
// one-shot continuation behavior Await installed.
func (s *Self) SyncSend(target PID, elems ...any) *ResponseHandle {
	reqID := uuid.New()
	target.send(Message{Elems: elems, Sender: s.pid, ReqID: reqID})
	return &ResponseHandle{reqID: reqID, target: target}
}
