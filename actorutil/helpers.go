// Package actorutil provides ergonomic helpers for callers that are not
// themselves actors - tests, CLI commands, HTTP handlers - layered on top
// of the actor package's core Send/Ask primitives.
package actorutil

import (
	"context"
	"fmt"

	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/roasbeef/actoria/actor"
)

// AskAwait sends elems to target and blocks until the reply is available,
// unpacking the Result into a plain (value, error) pair.
func AskAwait[T any](
	ctx context.Context, e *actor.Engine, target actor.PID, elems ...any,
) (T, error) {

	return actor.Ask[T](ctx, e, target, elems...).Await(ctx).Unpack()
}

// TellAll sends elems to every target using fire-and-forget semantics.
func TellAll(targets []actor.PID, elems ...any) {
	for _, t := range targets {
		actor.Send(t, elems...)
	}
}

// ParallelAsk sends a distinct request to each target concurrently and
// collects all results in the same order as targets. requests must have the
// same length as targets.
func ParallelAsk[T any](
	ctx context.Context, e *actor.Engine, targets []actor.PID, requests [][]any,
) []fn.Result[T] {

	if len(targets) != len(requests) {
		panic("actorutil: targets and requests must have the same length")
	}

	futures := make([]actor.Future[T], len(targets))
	for i, t := range targets {
		futures[i] = actor.Ask[T](ctx, e, t, requests[i]...)
	}

	results := make([]fn.Result[T], len(futures))
	for i, f := range futures {
		results[i] = f.Await(ctx)
	}
	return results
}

// ParallelAskSame sends the same request to every target concurrently and
// collects all results in the same order as targets.
func ParallelAskSame[T any](
	ctx context.Context, e *actor.Engine, targets []actor.PID, elems ...any,
) []fn.Result[T] {

	futures := make([]actor.Future[T], len(targets))
	for i, t := range targets {
		futures[i] = actor.Ask[T](ctx, e, t, elems...)
	}

	results := make([]fn.Result[T], len(futures))
	for i, f := range futures {
		results[i] = f.Await(ctx)
	}
	return results
}

// FirstSuccess sends the same request to every target concurrently and
// returns the first successful reply. If every target fails, the last
// observed error is returned.
func FirstSuccess[T any](
	ctx context.Context, e *actor.Engine, targets []actor.PID, elems ...any,
) (T, error) {

	if len(targets) == 0 {
		var zero T
		return zero, fmt.Errorf("actorutil: no targets provided")
	}

	type indexed struct {
		result fn.Result[T]
		idx    int
	}
	resultCh := make(chan indexed, len(targets))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	for i, t := range targets {
		go func(idx int, target actor.PID) {
			r := actor.Ask[T](ctx, e, target, elems...).Await(ctx)
			select {
			case resultCh <- indexed{result: r, idx: idx}:
			case <-ctx.Done():
			}
		}(i, t)
	}

	var lastErr error
	for received := 0; received < len(targets); received++ {
		select {
		case res := <-resultCh:
			val, err := res.result.Unpack()
			if err == nil {
				cancel()
				return val, nil
			}
			lastErr = err
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}

	var zero T
	return zero, lastErr
}

// MapResponses transforms every successful result with mapFn, passing
// errors through unchanged.
func MapResponses[R any, T any](results []fn.Result[R], mapFn func(R) T) []fn.Result[T] {
	mapped := make([]fn.Result[T], len(results))
	for i, r := range results {
		val, err := r.Unpack()
		if err != nil {
			mapped[i] = fn.Err[T](err)
		} else {
			mapped[i] = fn.Ok(mapFn(val))
		}
	}
	return mapped
}

// CollectSuccesses returns only the successful values from results.
func CollectSuccesses[R any](results []fn.Result[R]) []R {
	var out []R
	for _, r := range results {
		if val, err := r.Unpack(); err == nil {
			out = append(out, val)
		}
	}
	return out
}

// AllSucceeded reports whether every result in results is successful.
func AllSucceeded[R any](results []fn.Result[R]) bool {
	for _, r := range results {
		if _, err := r.Unpack(); err != nil {
			return false
		}
	}
	return true
}

// FirstError returns the first error found in results, or nil if every
// result succeeded.
func FirstError[R any](results []fn.Result[R]) error {
	for _, r := range results {
		if _, err := r.Unpack(); err != nil {
			return err
		}
	}
	return nil
}
