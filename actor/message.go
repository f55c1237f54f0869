package actor

import (
	"reflect"

	"github.com/google/uuid"
)

// Message is the single wire type exchanged between actors: an ordered tuple
// of arbitrary values, addressed with an optional reply-to PID and an
// optional sync correlation id.
//
// This generalizes the teacher's single-typed envelope[M, R] (one M per
// actor) into the heterogeneous tuples CAF's on<T1, T2, ...>() matches
// against: a behavior is not fixed to one message type, it is a stack of
// clauses each matching a distinct shape.
type Message struct {
	// Elems holds the tuple's positional values, e.g. {atom("take"), who}.
	Elems []any

	// Sender is the PID to reply to, or the zero PID if the message was
	// sent anonymously (e.g. from outside any actor).
	Sender PID

	// ReqID correlates a sync_send with its response. uuid.Nil means
	// "not part of a synchronous exchange".
	ReqID uuid.UUID
}

// NewMessage builds a tuple message with no sender and no correlation id.
// Send/Self.Send/SyncSend fill in Sender and ReqID as appropriate.
func NewMessage(elems ...any) Message {
	return Message{Elems: elems}
}

// Arity returns the number of positional elements in the tuple.
func (m Message) Arity() int {
	return len(m.Elems)
}

// HasReqID reports whether this message is part of a synchronous exchange.
func (m Message) HasReqID() bool {
	return m.ReqID != uuid.Nil
}

// Equal performs a deep, order-sensitive comparison of the tuple elements.
// Sender and ReqID are not compared; Equal answers "do these carry the same
// payload", which is what pattern-matching and tests care about.
func (m Message) Equal(other Message) bool {
	if len(m.Elems) != len(other.Elems) {
		return false
	}
	for i := range m.Elems {
		if !reflect.DeepEqual(m.Elems[i], other.Elems[i]) {
			return false
		}
	}
	return true
}

// At returns the i'th element, or nil if out of range.
func (m Message) At(i int) any {
	if i < 0 || i >= len(m.Elems) {
		return nil
	}
	return m.Elems[i]
}
