package actor

import (
	"container/heap"
	"sync"
	"time"
)

// timerEntry is one scheduled delivery: deliver msg to target at fireAt,
// unless canceled first. index is maintained by container/heap.
type timerEntry struct {
	fireAt   time.Time
	target   PID
	msg      Message
	canceled bool
	index    int
}

// timerHeap is a min-heap ordered by fireAt, giving the timer service
// goroutine O(log n) insert and "next to fire" lookup. No library in the
// retrieved examples offers a timer wheel or priority queue; container/heap
// is the standard, idiomatic way to build one directly on a slice.
type timerHeap []*timerEntry

func (h timerHeap) Len() int           { return len(h) }
func (h timerHeap) Less(i, j int) bool { return h[i].fireAt.Before(h[j].fireAt) }
func (h timerHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *timerHeap) Push(x interface{}) {
	e := x.(*timerEntry)
	e.index = len(*h)
	*h = append(*h, e)
}
func (h *timerHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}

// timerService is a single goroutine serving both receive-timeouts and
// delayed-send/delayed-reply: one shared clock instead of a goroutine (and a
// time.Timer) per pending delay, which is what a naive per-actor
// implementation would cost.
type timerService struct {
	mu      sync.Mutex
	h       timerHeap
	wake    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

func newTimerService(e *Engine) *timerService {
	t := &timerService{
		wake:    make(chan struct{}, 1),
		stopped: make(chan struct{}),
	}
	go t.run()
	return t
}

// schedule arranges for msg to be delivered to target after d elapses,
// returning a cancel func that prevents delivery if called before then.
func (t *timerService) schedule(target PID, msg Message, d time.Duration) func() {
	e := &timerEntry{fireAt: time.Now().Add(d), target: target, msg: msg}

	t.mu.Lock()
	heap.Push(&t.h, e)
	t.mu.Unlock()

	select {
	case t.wake <- struct{}{}:
	default:
	}

	return func() {
		t.mu.Lock()
		e.canceled = true
		t.mu.Unlock()
	}
}

func (t *timerService) run() {
	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	for {
		t.mu.Lock()
		var wait time.Duration
		if len(t.h) == 0 {
			wait = time.Hour
		} else {
			wait = time.Until(t.h[0].fireAt)
			if wait < 0 {
				wait = 0
			}
		}
		t.mu.Unlock()

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(wait)

		select {
		case <-t.stopped:
			return
		case <-t.wake:
			continue
		case <-timer.C:
			t.fireDue()
		}
	}
}

func (t *timerService) fireDue() {
	now := time.Now()
	for {
		t.mu.Lock()
		if len(t.h) == 0 || t.h[0].fireAt.After(now) {
			t.mu.Unlock()
			return
		}
		e := heap.Pop(&t.h).(*timerEntry)
		t.mu.Unlock()

		if !e.canceled {
			if e.target.proc != nil {
				e.target.proc.engine.logf(
					"actor: timer fired target=%s", e.target,
				)
			}
			e.target.send(e.msg)
		}
	}
}

func (t *timerService) stop() {
	t.once.Do(func() {
		close(t.stopped)
	})
}
