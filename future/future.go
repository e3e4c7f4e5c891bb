package future

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/hostbridge/hostbridge/errors"
)

// State is the observable lifecycle of a pending computation.
type State uint8

const (
	StatePending State = iota
	StateResolved
	StateRejected
)

var stateNames = [...]string{
	StatePending:  "pending",
	StateResolved: "resolved",
	StateRejected: "rejected",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// ErrPending is returned by Result while the computation is in flight.
var ErrPending = errors.New(errors.PhaseAsync, errors.KindInvalidInput).
	Detail("computation still pending").
	Build()

// Future is a single-resolution placeholder for the eventual result of a
// native asynchronous computation.
type Future struct {
	done  chan struct{}
	once  sync.Once
	state atomic.Uint32
	value any
	err   error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Spawn starts fn on its own goroutine and returns the pending handle
// immediately. The computation is decoupled from the caller's context:
// once spawned it runs to completion, there is no cancellation. A panic
// in fn rejects the future instead of crashing the scheduler.
func Spawn(ctx context.Context, fn func(context.Context) (any, error)) *Future {
	f := newFuture()
	runCtx := context.WithoutCancel(ctx)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				f.reject(errors.New(errors.PhaseAsync, errors.KindInvalidInput).
					Detail("computation panicked: %v", r).
					Build())
			}
		}()

		value, err := fn(runCtx)
		if err != nil {
			f.reject(err)
			return
		}
		f.resolve(value)
	}()

	return f
}

// resolve settles the future with a value. Only the first settlement has
// effect; the once makes a second transition impossible by construction.
func (f *Future) resolve(value any) {
	f.once.Do(func() {
		f.value = value
		f.state.Store(uint32(StateResolved))
		close(f.done)
	})
}

func (f *Future) reject(err error) {
	f.once.Do(func() {
		f.err = err
		f.state.Store(uint32(StateRejected))
		close(f.done)
	})
}

// State returns the current lifecycle state.
func (f *Future) State() State {
	return State(f.state.Load())
}

// Settled reports whether the future has resolved or rejected.
func (f *Future) Settled() bool {
	return f.State() != StatePending
}

// Done returns the one-time completion notification channel. It is closed
// exactly once, after the terminal state and payload are visible.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Result returns the settled outcome, or ErrPending while in flight.
// After settlement the returned pair never changes.
func (f *Future) Result() (any, error) {
	select {
	case <-f.done:
		return f.value, f.err
	default:
		return nil, ErrPending
	}
}

// Await blocks until settlement or until ctx expires. The context only
// bounds the wait; the underlying computation keeps running.
func (f *Future) Await(ctx context.Context) (any, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
