package actor

import (
	"container/list"
	"sync"

	"github.com/emirpasic/gods/stacks/linkedliststack"
)

// mailbox is the per-actor FIFO queue plus the "skip buffer" CAF and
// protoactor-go both use to implement selective receive: a message that
// doesn't match any clause of the current behavior is set aside instead of
// being lost, and is replayed - in its original relative order - the next
// time the behavior changes or a receive step explicitly resets the skip.
//
// The skip buffer itself is a LIFO stack (github.com/emirpasic/gods), the
// same structure protoactor-go's actor context uses for its "stash". FIFO
// replay order falls out of pairing a LIFO pop with a push-to-front of the
// main queue: popping c, b, a (most-recently-skipped first) and prepending
// each to the queue's head yields a, b, c - the original order.
type mailbox struct {
	mu       sync.Mutex
	cond     *sync.Cond
	queue    *list.List
	skip     *linkedliststack.Stack
	closed   bool
	capacity int // 0 means unbounded
}

func newMailbox(capacity int) *mailbox {
	mb := &mailbox{
		queue:    list.New(),
		skip:     linkedliststack.New(),
		capacity: capacity,
	}
	mb.cond = sync.NewCond(&mb.mu)
	return mb
}

// push enqueues msg at the back of the main queue. It reports whether the
// mailbox transitioned from empty to non-empty, which the caller (process.
// enqueue) uses to decide whether this actor needs to be (re)scheduled. If
// the mailbox was constructed with a positive capacity and is already full,
// it rejects msg with ErrMailboxFull instead of growing unboundedly.
func (mb *mailbox) push(msg Message) (wasEmpty bool, err error) {
	mb.mu.Lock()
	defer mb.mu.Unlock()

	if mb.closed {
		return false, nil
	}
	if mb.capacity > 0 && mb.queue.Len() >= mb.capacity {
		return false, ErrMailboxFull
	}

	wasEmpty = mb.queue.Len() == 0
	mb.queue.PushBack(msg)
	mb.cond.Signal()
	return wasEmpty, nil
}

// tryPop removes and returns the front message, non-blocking. Used by the
// event-based dispatch loop running inside a pooled worker, which must never
// block the worker goroutine on an empty mailbox.
func (mb *mailbox) tryPop() (Message, bool) {
	mb.mu.Lock()
	defer mb.mu.Unlock()

	front := mb.queue.Front()
	if front == nil {
		return Message{}, false
	}
	mb.queue.Remove(front)
	return front.Value.(Message), true
}

// popBlocking waits until a message is available (or the mailbox is closed)
// and removes it. Used by blocking-style actors, which own a dedicated
// goroutine and may legitimately park on an empty mailbox.
func (mb *mailbox) popBlocking() (Message, bool) {
	mb.mu.Lock()
	defer mb.mu.Unlock()

	for mb.queue.Len() == 0 && !mb.closed {
		mb.cond.Wait()
	}
	front := mb.queue.Front()
	if front == nil {
		return Message{}, false
	}
	mb.queue.Remove(front)
	return front.Value.(Message), true
}

// skipMsg sets msg aside so a later message can be tried against the current
// behavior without losing msg's place in line.
func (mb *mailbox) skipMsg(msg Message) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.skip.Push(msg)
}

// resetSkip replays every skipped message back onto the front of the main
// queue, restoring their original relative order, and reports whether
// anything was replayed.
func (mb *mailbox) resetSkip() bool {
	mb.mu.Lock()
	defer mb.mu.Unlock()

	if mb.skip.Empty() {
		return false
	}
	for {
		v, ok := mb.skip.Pop()
		if !ok {
			break
		}
		mb.queue.PushFront(v.(Message))
	}
	mb.cond.Signal()
	return true
}

func (mb *mailbox) len() int {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	return mb.queue.Len() + mb.skip.Size()
}

// close marks the mailbox closed and wakes any blocked popper. Further
// pushes are rejected (the spec's dead-actor no-op rule); queued messages
// remain available to drain via tryPop/popBlocking until they're exhausted.
func (mb *mailbox) close() {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.closed = true
	mb.cond.Broadcast()
}

// drain removes and returns every message still held, skipped messages
// first (most recently skipped first), then the main queue in order. Used
// by supervision teardown to find pending sync_send requests that need an
// EXITED reply synthesized.
func (mb *mailbox) drain() []Message {
	mb.mu.Lock()
	defer mb.mu.Unlock()

	out := make([]Message, 0, mb.queue.Len()+mb.skip.Size())
	for {
		v, ok := mb.skip.Pop()
		if !ok {
			break
		}
		out = append(out, v.(Message))
	}
	for e := mb.queue.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(Message))
	}
	mb.queue.Init()
	return out
}
