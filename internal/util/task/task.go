// Package task runs a single delayed computation and hands out its one outcome.
package task

import (
	"context"
	"time"
)

// Task is a computation scheduled to run once after a delay.
// It cannot be cancelled once started and completes with exactly one outcome.
type Task[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// After schedules fn to run on its own goroutine once delay has elapsed.
func After[T any](delay time.Duration, fn func() (T, error)) *Task[T] {
	t := &Task[T]{done: make(chan struct{})}

	go func() {
		defer close(t.done)

		if delay > 0 {
			timer := time.NewTimer(delay)
			<-timer.C
		}

		t.value, t.err = fn()
	}()

	return t
}

// Done is closed when the outcome is available.
func (t *Task[T]) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the outcome is available or ctx ends.
// An ended ctx only stops the wait; the task still completes.
func (t *Task[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-t.done:
		return t.value, t.err
	case <-ctx.Done():
		var zero T

		return zero, ctx.Err()
	}
}

// Result returns the outcome without blocking. ok is false while the task is pending.
func (t *Task[T]) Result() (value T, ok bool, err error) {
	select {
	case <-t.done:
		return t.value, true, t.err
	default:
		var zero T

		return zero, false, nil
	}
}
