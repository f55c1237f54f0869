package actor

import "time"

// Send delivers elems as a tuple message to target with no reply-to address
// set, as if sent from outside the actor system (e.g. a test driver or the
// demo CLI's command layer). From inside a behavior handler, prefer
// Self.Send so replies can find their way back.
func Send(target PID, elems ...any) {
	target.send(Message{Elems: elems})
}

// TrySend behaves like Send, but reports ErrMailboxFull instead of silently
// dropping the message when target was spawned on an Engine configured
// with EngineConfig.MailboxCapacity and its mailbox is currently full. With
// the default unbounded mailbox (MailboxCapacity == 0) it never fails.
func TrySend(target PID, elems ...any) error {
	return target.trySend(Message{Elems: elems})
}

// DelayedSend schedules elems for delivery to target after d elapses. The
// send is anonymous (no sender); see Self.DelayedSend for the in-actor form.
// Cancellation is only available through the Self-scoped variant, since an
// anonymous caller has no actor identity to cancel against.
func DelayedSend(eng *Engine, target PID, d time.Duration, elems ...any) {
	eng.timers.schedule(target, Message{Elems: elems}, d)
}
