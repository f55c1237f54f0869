package actorutil

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/roasbeef/actoria/actor"
)

// Pool distributes requests across a fixed set of homogeneous actor
// instances using round-robin scheduling, spreading load across a set of
// worker actors built from the same BehaviorFactory.
type Pool struct {
	id      string
	members []actor.PID
	next    atomic.Uint64
	stopped chan struct{}
}

// PoolConfig configures a new Pool.
type PoolConfig struct {
	// ID names the pool; member actors are spawned as "<ID>-<index>".
	ID string

	// Size is the number of actor instances to spawn.
	Size int

	// Factory builds the behavior for the idx'th member, actor.
	// SpawnFactory's own convention of receiving the member's PID up
	// front.
	Factory func(idx int) actor.BehaviorFactory

	// Engine is the scheduler new pool members are spawned onto.
	Engine *actor.Engine
}

// NewPool spawns Size actor instances from Factory and starts them
// immediately.
func NewPool(cfg PoolConfig) *Pool {
	if cfg.Size <= 0 {
		cfg.Size = 1
	}

	p := &Pool{
		id:      cfg.ID,
		members: make([]actor.PID, cfg.Size),
		stopped: make(chan struct{}),
	}
	for i := 0; i < cfg.Size; i++ {
		name := fmt.Sprintf("%s-%d", cfg.ID, i)
		p.members[i] = actor.SpawnFactory(cfg.Engine, name, cfg.Factory(i))
	}
	return p
}

// ID returns the pool's identifier.
func (p *Pool) ID() string {
	return p.id
}

func (p *Pool) pick() actor.PID {
	idx := p.next.Add(1) % uint64(len(p.members))
	return p.members[idx]
}

// Ask sends elems to the next member in round-robin order.
func (p *Pool) Ask(ctx context.Context, e *actor.Engine, elems ...any) actor.Future[any] {
	return actor.Ask[any](ctx, e, p.pick(), elems...)
}

// Tell sends elems to the next member in round-robin order, fire-and-forget.
func (p *Pool) Tell(elems ...any) {
	actor.Send(p.pick(), elems...)
}

// Broadcast sends elems to every member in the pool.
func (p *Pool) Broadcast(elems ...any) {
	for _, m := range p.members {
		actor.Send(m, elems...)
	}
}

// BroadcastAsk sends elems to every member and returns one Future per
// member, in member order.
func BroadcastAsk[T any](ctx context.Context, e *actor.Engine, p *Pool, elems ...any) []actor.Future[T] {
	futures := make([]actor.Future[T], len(p.members))
	for i, m := range p.members {
		futures[i] = actor.Ask[T](ctx, e, m, elems...)
	}
	return futures
}

// Stopped returns a channel closed once Stop has finished waiting for every
// member to terminate.
func (p *Pool) Stopped() <-chan struct{} {
	return p.stopped
}

// Size returns the number of actors in the pool.
func (p *Pool) Size() int {
	return len(p.members)
}

// Members returns a copy of the pool's member PIDs.
func (p *Pool) Members() []actor.PID {
	out := make([]actor.PID, len(p.members))
	copy(out, p.members)
	return out
}

// Stop broadcasts a stop signal every member's behavior is expected to
// recognize by calling Self.Quit, then blocks until every member has
// terminated or timeout elapses. It monitors every member directly rather
// than relying on the members to report back, so it works even if a
// member's behavior ignores the stop signal's exact shape.
func (p *Pool) Stop(e *actor.Engine, timeout time.Duration, stopElems ...any) {
	remaining := int64(len(p.members))
	done := make(chan struct{})

	actor.SpawnBlocking(e, p.id+"-stop-coordinator", func(ctx *actor.BlockingContext) {
		for _, m := range p.members {
			ctx.Monitor(m)
		}
		for atomic.LoadInt64(&remaining) > 0 {
			ctx.ReceiveTimeout(timeout, func(*actor.Self) {
				atomic.StoreInt64(&remaining, 0)
			}, actor.OnOthers(func(s *actor.Self) {
				msg := s.LastDequeued()
				if len(msg.Elems) > 0 {
					if a, ok := msg.Elems[0].(actor.Atom); ok && a == actor.AtomDown {
						atomic.AddInt64(&remaining, -1)
					}
				}
			}))
		}
		close(done)
	})

	p.Broadcast(stopElems...)
	<-done
	close(p.stopped)
}
