package actor

import "fmt"

// BehaviorFactory builds the initial Behavior for a newly allocated process,
// given that process's own PID. Receiving self up front is what
// distinguishes factory style from plain Spawn: it lets the behavior's
// closures reference the actor's own address (to reply to itself, to
// register under a name, to hand its PID to peers it is about to link to)
// without a separate "tell me who I am" message round-trip after spawn.
//
// The dining-philosophers demo spawns its chopsticks in this style, though
// their behaviors do not use the PID argument: they answer "busy" with a
// plain Reply.
type BehaviorFactory func(self PID) *Behavior

// FactoryOption configures the optional init and exit hooks a SpawnFactory
// call carries alongside its BehaviorFactory.
type FactoryOption func(*factoryOptions)

type factoryOptions struct {
	onInit func(PID)
	onExit ExitHook
}

// WithInitHook runs fn with the new process's own PID once its initial
// behavior has been installed but before it can receive any message. Use it
// for setup that itself needs the actor's address, such as registering with
// a name service or announcing itself to peers it didn't get to link to
// from inside the factory closure.
func WithInitHook(fn func(self PID)) FactoryOption {
	return func(o *factoryOptions) { o.onInit = fn }
}

// WithExitHook installs the hook terminate runs as teardown step (a), before
// the mailbox is drained or any link/monitor is notified - the
// Stoppable.OnStop pattern, scoped to the factory spawn style.
func WithExitHook(fn ExitHook) FactoryOption {
	return func(o *factoryOptions) { o.onExit = fn }
}

// SpawnFactory allocates a PID, runs factory to build its initial behavior,
// and starts the process.
func SpawnFactory(e *Engine, name string, factory BehaviorFactory, opts ...FactoryOption) PID {
	var cfg factoryOptions
	for _, opt := range opts {
		opt(&cfg)
	}

	p := newProcess(e, name, styleFactory, nil)
	if cfg.onExit != nil {
		p.setExitHook(cfg.onExit)
	}

	initial := factory(p.pid)
	p.mu.Lock()
	p.behaviorStack = []*Behavior{initial}
	p.mu.Unlock()

	if cfg.onInit != nil {
		cfg.onInit(p.pid)
	}

	p.start()
	return p.pid
}

// SpawnFactoryN spawns n instances from the same factory, useful for
// homogeneous pools (a chopstick ring, a worker pool) where each instance
// otherwise needs only its index to differentiate itself.
func SpawnFactoryN(e *Engine, namePrefix string, n int, factory func(idx int) BehaviorFactory, opts ...FactoryOption) []PID {
	pids := make([]PID, n)
	for i := 0; i < n; i++ {
		pids[i] = SpawnFactory(e, fmt.Sprintf("%s-%d", namePrefix, i), factory(i), opts...)
	}
	return pids
}
