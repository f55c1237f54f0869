package actor

import (
	"time"

	"github.com/google/uuid"
)

// ResponseHandle correlates a sync_send with the reply it expects. It is
// opaque; callers only ever pass it to Self.Await or Self.HandleResponse.
type ResponseHandle struct {
	reqID  uuid.UUID
	target PID
}

// uuidFilter restricts a Behavior to messages carrying a specific ReqID.
type uuidFilter uuid.UUID

func (f *uuidFilter) accepts(id uuid.UUID) bool {
	return uuid.UUID(*f) == id
}

// Await installs a one-shot behavior that only considers messages whose
// ReqID matches h, trying clauses top-to-bottom exactly like an ordinary
// Behavior. Any message that doesn't carry a matching ReqID fails to match
// this behavior entirely and is skipped - left in the mailbox, in order -
// so a later plain receive still sees it.
//
// If the target terminates before replying, the runtime synthesizes an
// (AtomExited, reason) message carrying h's ReqID; include an
// OnAtomAnd(AtomExited, ...) clause to observe it explicitly, or rely on
// the implicit catch-all this method appends, which simply lets the
// one-shot behavior complete without taking any other action.
//
// Await must be the last meaningful statement of the handler that issued
// the SyncSend: it does not block the calling goroutine, it arranges for
// the next receive step to evaluate these clauses instead of (or ahead of)
// whatever behavior was active before.
func (s *Self) Await(h *ResponseHandle, clauses ...Clause) {
	filter := uuidFilter(h.reqID)
	full := append(append([]Clause{}, clauses...), OnOthers(func(*Self) {}))
	b := &Behavior{
		name:      "await:" + h.reqID.String(),
		clauses:   full,
		reqFilter: &filter,
	}
	s.proc.pushOneShot(b)
}

// AwaitTimeout is Await with a receive-timeout clause, CAF's sync_timeout:
// fired if no reply (matching or not) arrives within d.
func (s *Self) AwaitTimeout(h *ResponseHandle, d time.Duration, onTimeout func(*Self), clauses ...Clause) {
	filter := uuidFilter(h.reqID)
	full := append(append([]Clause{}, clauses...), OnOthers(func(*Self) {}))
	b := &Behavior{
		name:      "await:" + h.reqID.String(),
		clauses:   full,
		reqFilter: &filter,
		timeout:   &TimeoutClause{after: d, handler: onTimeout},
	}
	s.proc.pushOneShot(b)
}

// HandleResponse registers clauses as a standing continuation for h's
// ReqID: unlike Await, it does not disturb the current behavior stack. The
// continuation is tried, ahead of the active behavior, against every
// message until one carries h's ReqID, at which point the first matching
// clause runs and the continuation is consumed. This is the right tool when
// a handler issues a sync_send but still needs to keep handling unrelated
// messages with its normal behavior in the meantime (CAF's
// sync_send(...).then(...) form).
func (s *Self) HandleResponse(h *ResponseHandle, clauses ...Clause) {
	s.proc.registerPendingReply(h.reqID, clauses)
}

func dispatchClauses(self *Self, clauses []Clause, msg Message) bool {
	for _, c := range clauses {
		bound, ok := c.matches(msg)
		if !ok {
			continue
		}
		c.handler(self, bound)
		return true
	}
	return false
}
