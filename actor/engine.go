package actor

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/btcsuite/btclog"
	"golang.org/x/sync/errgroup"
)

// defaultQuantum is the maximum number of messages a worker processes for
// one actor before yielding it back to the run queue, bounding how long a
// chatty actor can monopolize a worker and starve its neighbors.
const defaultQuantum = 8

// EngineConfig configures a scheduler instance.
type EngineConfig struct {
	// Workers is the fixed size of the worker pool. Defaults to 1 if <= 0.
	Workers int

	// Quantum overrides defaultQuantum.
	Quantum int

	// DLO, when set, receives a copy of every message that ran off the
	// end of its target's active Behavior with no clause (including no
	// OnOthers) matching. The message is delivered as-is, with Sender
	// left untouched, so the DLO can itself reply if it wants to.
	DLO PID

	// StrictUnknown, when true and no DLO is set, makes an unmatched
	// message fatal to its recipient: the actor is terminated with
	// ExitUnknownMessage (whose Err is ErrNoClauseMatched) instead of the
	// message being silently dropped. A configured DLO takes precedence.
	StrictUnknown bool

	// MailboxCapacity bounds every actor spawned on this engine to at most
	// this many queued messages. Zero (the default) leaves mailboxes
	// unbounded. A full mailbox silently drops messages sent via Send,
	// and returns ErrMailboxFull from TrySend.
	MailboxCapacity int

	// Log receives structured scheduler and lifecycle events. A nil
	// logger disables logging.
	Log btclog.Logger
}

// Engine is the worker-pool scheduler: a fixed number of goroutines pull
// runnable actors (ACBs with non-empty mailboxes) off per-worker local
// queues, falling back to a shared overflow queue, and run each for up to
// Quantum messages before yielding it.
type Engine struct {
	cfg EngineConfig

	mu    sync.Mutex
	procs map[uint64]*process

	registryMu sync.RWMutex
	registry   map[string]PID

	local    []chan *process
	overflow chan *process
	next     atomic.Uint64

	timers *timerService

	wg     sync.WaitGroup // dedicated goroutines (blocking-style actors, Ask waiters)
	eg     *errgroup.Group
	egCtx  context.Context
	cancel context.CancelFunc

	shutdown atomic.Bool
}

// NewEngine starts a worker pool and its timer service. Call Shutdown to
// stop both and wait for in-flight actors to finish their termination
// sequence.
func NewEngine(cfg EngineConfig) *Engine {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Quantum <= 0 {
		cfg.Quantum = defaultQuantum
	}

	egCtx, cancel := context.WithCancel(context.Background())
	eg, egCtx := errgroup.WithContext(egCtx)

	e := &Engine{
		cfg:      cfg,
		procs:    make(map[uint64]*process),
		registry: make(map[string]PID),
		local:    make([]chan *process, cfg.Workers),
		overflow: make(chan *process, 4096),
		eg:       eg,
		egCtx:    egCtx,
		cancel:   cancel,
	}
	e.timers = newTimerService(e)

	for i := 0; i < cfg.Workers; i++ {
		e.local[i] = make(chan *process, 256)
		idx := i
		e.eg.Go(func() error {
			e.runWorker(idx)
			return nil
		})
	}

	return e
}

func (e *Engine) logf(format string, args ...any) {
	if e.cfg.Log != nil {
		e.cfg.Log.Debugf(format, args...)
	}
}

// Register publishes pid under name so it can be discovered with Lookup.
// This is the engine's receptionist: a flat, process-wide name service used
// by the demo scenarios to find well-known actors (e.g. a DLO or a named
// philosopher) without threading PIDs through every constructor.
func (e *Engine) Register(name string, pid PID) {
	e.registryMu.Lock()
	defer e.registryMu.Unlock()
	e.registry[name] = pid
}

// Deregister removes name from the registry.
func (e *Engine) Deregister(name string) {
	e.registryMu.Lock()
	defer e.registryMu.Unlock()
	delete(e.registry, name)
}

// Lookup resolves a name published with Register.
func (e *Engine) Lookup(name string) (PID, bool) {
	e.registryMu.RLock()
	defer e.registryMu.RUnlock()
	pid, ok := e.registry[name]
	return pid, ok
}

// schedule submits proc to a worker. Called from process.enqueue when the
// mailbox transitions empty -> non-empty and the process successfully
// claims the scheduling flag, and again by the worker loop itself when a
// process still has work left after exhausting its quantum.
func (e *Engine) schedule(p *process) {
	idx := e.next.Add(1) % uint64(len(e.local))
	select {
	case e.local[idx] <- p:
		return
	default:
	}
	select {
	case e.overflow <- p:
	default:
		// Both the chosen local queue and the overflow queue are full;
		// block on the overflow queue rather than drop a runnable
		// actor. This only applies backpressure to whichever goroutine
		// is submitting work (a sender or another worker), never to
		// actors that are merely waiting in a queue.
		e.overflow <- p
	}
}

func (e *Engine) runWorker(idx int) {
	local := e.local[idx]
	for {
		var p *process
		select {
		case p = <-local:
		default:
			select {
			case p = <-local:
			case p = <-e.overflow:
			case <-e.egCtx.Done():
				return
			}
		}
		if p == nil {
			return
		}
		e.runQuantum(p)
	}
}

// runQuantum processes up to Quantum messages for p, then decides whether to
// re-submit it (more work queued) or release its scheduling claim.
func (e *Engine) runQuantum(p *process) {
	for i := 0; i < e.cfg.Quantum; i++ {
		if p.isTerminated() {
			break
		}
		handled := p.receiveStep()
		if !handled {
			break
		}
	}

	if p.isTerminated() {
		p.scheduled.Store(false)
		return
	}

	if p.mailbox.len() > 0 {
		e.schedule(p)
		return
	}

	// Release the claim, then re-check: a message may have arrived
	// between the emptiness check above and clearing the flag, in which
	// case the sender's CAS in process.enqueue will have lost the race
	// (scheduled was still true) and done nothing, so we must re-submit
	// ourselves to avoid stranding that message.
	p.scheduled.Store(false)
	if p.mailbox.len() > 0 && p.scheduled.CompareAndSwap(false, true) {
		e.schedule(p)
	}
}

func (e *Engine) register(p *process) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.procs[p.pid.id] = p
}

func (e *Engine) unregister(p *process) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.procs, p.pid.id)
}

// Shutdown cancels the worker pool and timer service and waits for every
// dedicated-goroutine actor (blocking style, and Ask's waiters) to return. It does not
// forcibly terminate event-based actors still mid-quantum; callers that need
// a clean stop should Quit every actor first.
func (e *Engine) Shutdown(ctx context.Context) error {
	if !e.shutdown.CompareAndSwap(false, true) {
		return nil
	}
	e.timers.stop()
	e.cancel()

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return fmt.Errorf("actor: shutdown timed out waiting for actors: %w", ctx.Err())
	}

	return e.eg.Wait()
}
