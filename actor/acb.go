package actor

import (
	"sync"
	"sync/atomic"

	"github.com/emirpasic/gods/sets/hashset"
	"github.com/google/uuid"
)

// style records which of the three spawning conventions created a process.
// It is used for logging, and enqueueErr uses it to skip scheduler
// submission for blocking-style processes, which wait on their own mailbox.
type style int

const (
	styleEventBased style = iota
	styleBlocking
	styleFactory
)

func (s style) String() string {
	switch s {
	case styleBlocking:
		return "blocking"
	case styleFactory:
		return "factory"
	default:
		return "event-based"
	}
}

// pendingRequest identifies an in-flight sync_send whose reply has not yet
// been sent, so supervision teardown can synthesize an EXITED notification
// if this actor dies before replying to it.
type pendingRequest struct {
	sender PID
	reqID  uuid.UUID
}

// process is the actor control block: identity, mailbox, behavior stack,
// and the supervision bookkeeping (links, monitors, trap-exit) the teardown
// sequence in supervision.go consumes.
type process struct {
	pid    PID
	engine *Engine
	name   string
	style  style

	mailbox *mailbox

	// mu guards every field below that mutates after construction.
	mu            sync.Mutex
	behaviorStack []*Behavior
	trapExit      bool
	links         *hashset.Set // symmetric peers, PID
	monitors      map[PID]uuid.UUID
	activeReq     *pendingRequest
	pendingReply  map[uuid.UUID][]Clause
	lastDequeued  Message

	terminated       atomic.Bool
	scheduled        atomic.Bool
	exitReason       ExitReason
	timeoutGen       uint64
	quitRequested    bool
	lastSeenBehavior *Behavior
	exitHook         ExitHook
}

func newProcess(e *Engine, name string, st style, initial *Behavior) *process {
	p := &process{
		engine:       e,
		name:         name,
		style:        st,
		mailbox:      newMailbox(e.cfg.MailboxCapacity),
		links:        hashset.New(),
		monitors:     make(map[PID]uuid.UUID),
		pendingReply: make(map[uuid.UUID][]Clause),
	}
	p.pid = newPID(p)
	if initial != nil {
		p.behaviorStack = []*Behavior{initial}
	}
	e.register(p)
	e.logf("actor: spawned pid=%s name=%q style=%s", p.pid, name, st)
	return p
}

// setExitHook installs the teardown hook terminate runs as step (a), before
// any mailbox draining or link/monitor notification. Only SpawnFactory
// exposes this to callers today, via WithExitHook.
func (p *process) setExitHook(h ExitHook) {
	p.mu.Lock()
	p.exitHook = h
	p.mu.Unlock()
}

func (p *process) isTerminated() bool {
	return p.terminated.Load()
}

func (p *process) top() *Behavior {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.behaviorStack) == 0 {
		return nil
	}
	return p.behaviorStack[len(p.behaviorStack)-1]
}

// become pushes a new behavior (keep=true) or replaces the top of the stack
// (keep=false), CAF's become(..., keep_behavior) flag.
func (p *process) become(b *Behavior, keep bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.engine.logf("actor: become pid=%s name=%s keep=%t", p.pid, b.name, keep)
	// Force the next receive step to treat the top as newly installed
	// (skip replay, fresh receive timeout) even if b is the same value.
	p.lastSeenBehavior = nil
	if !keep && len(p.behaviorStack) > 0 {
		p.behaviorStack[len(p.behaviorStack)-1] = b
		return
	}
	p.behaviorStack = append(p.behaviorStack, b)
}

// unbecome pops the active behavior, returning to whatever was beneath it.
// Popping the last behavior on the stack leaves the actor with none, which
// the dispatch loop treats as a request to terminate normally.
func (p *process) unbecome() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.behaviorStack) == 0 {
		return
	}
	p.engine.logf("actor: unbecome pid=%s", p.pid)
	p.behaviorStack = p.behaviorStack[:len(p.behaviorStack)-1]
}

func (p *process) pushOneShot(b *Behavior) {
	b.oneShot = true
	p.mu.Lock()
	p.behaviorStack = append(p.behaviorStack, b)
	p.mu.Unlock()
}

func (p *process) popOneShot(b *Behavior) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n := len(p.behaviorStack); n > 0 && p.behaviorStack[n-1] == b {
		p.behaviorStack = p.behaviorStack[:n-1]
	}
}

func (p *process) setTrapExit(v bool) {
	p.mu.Lock()
	p.trapExit = v
	p.mu.Unlock()
}

func (p *process) isTrapExit() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.trapExit
}

func (p *process) setActiveRequest(r *pendingRequest) {
	p.mu.Lock()
	p.activeReq = r
	p.mu.Unlock()
}

func (p *process) registerPendingReply(reqID uuid.UUID, clauses []Clause) {
	p.mu.Lock()
	p.pendingReply[reqID] = clauses
	p.mu.Unlock()
}

func (p *process) takePendingReply(reqID uuid.UUID) ([]Clause, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.pendingReply[reqID]
	if ok {
		delete(p.pendingReply, reqID)
	}
	return c, ok
}

func (p *process) setLastDequeued(m Message) {
	p.mu.Lock()
	p.lastDequeued = m
	p.mu.Unlock()
}

func (p *process) getLastDequeued() Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastDequeued
}

// enqueue delivers msg, dropping it silently if the mailbox is full (same
// fire-and-forget contract as sending to a dead PID). Use enqueueErr via
// TrySend when the caller needs to know a bounded mailbox rejected it.
func (p *process) enqueue(msg Message) {
	_ = p.enqueueErr(msg)
}

// enqueueErr is enqueue's error-reporting form: delivers msg and, if this is
// the first message on an idle mailbox, claims the scheduling flag and hands
// the process to the engine. The CAS here is the "atomic claim flag with
// publication fence" the scheduler relies on to guarantee a process is never
// running on two workers at once: only the goroutine whose CAS succeeds may
// submit it. Returns ErrMailboxFull if the target's mailbox has a configured
// capacity (EngineConfig.MailboxCapacity) and is full.
func (p *process) enqueueErr(msg Message) error {
	if p.isTerminated() {
		return nil
	}
	wasEmpty, err := p.mailbox.push(msg)
	if err != nil {
		p.engine.logf(
			"actor: mailbox full, dropping message pid=%s name=%q",
			p.pid, p.name,
		)
		return err
	}

	switch p.style {
	case styleBlocking:
		// Dedicated-goroutine actors block on their own mailbox; no
		// scheduler claim needed, the cond var wakes them directly.
		return nil
	}

	if wasEmpty && p.scheduled.CompareAndSwap(false, true) {
		p.engine.schedule(p)
	}
	return nil
}

func (p *process) bumpTimeoutGeneration() uint64 {
	return atomic.AddUint64(&p.timeoutGen, 1)
}

func (p *process) currentTimeoutGeneration() uint64 {
	return atomic.LoadUint64(&p.timeoutGen)
}
