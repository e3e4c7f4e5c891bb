package callback

import (
	"sync"

	"github.com/hostbridge/hostbridge/errors"
)

// HostFunc is a host-supplied function value. Arguments arrive in host
// representation; the returned error models a host-side throw.
type HostFunc func(args []any) (any, error)

// Ref is a reference-counted capability over a host function. The wrapped
// function stays callable while the count is above zero; the last Unref
// releases it for good.
type Ref struct {
	mu   sync.Mutex
	fn   HostFunc
	refs int
}

// NewRef wraps fn with an initial reference count of one.
func NewRef(fn HostFunc) *Ref {
	return &Ref{fn: fn, refs: 1}
}

// Ref increments the reference count.
func (r *Ref) Ref() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fn != nil {
		r.refs++
	}
}

// Unref decrements the reference count, releasing the host function when
// it reaches zero. Unref on a released capability is a no-op.
func (r *Ref) Unref() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fn == nil {
		return
	}
	r.refs--
	if r.refs <= 0 {
		r.fn = nil
		r.refs = 0
	}
}

// Released reports whether the capability has been dropped.
func (r *Ref) Released() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fn == nil
}

// invoke runs the host function under the capability lock. Holding the
// lock for the whole round trip keeps sequential calls strictly ordered:
// each call completes before the next begins.
func (r *Ref) invoke(args []any) (any, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fn == nil {
		return nil, errors.Released("callback")
	}
	return r.fn(args)
}
