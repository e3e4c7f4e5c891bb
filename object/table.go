package object

import (
	"github.com/hostbridge/hostbridge/errors"
)

// Table is a typed view over an Arena for objects of a single kind.
// Lookups through a Table reject handles that resolve to a different
// object type, which matters when several resource kinds share one arena.
type Table[T any] struct {
	arena *Arena
	kind  string
}

// NewTable creates a typed view over arena. kind names the resource in
// error messages, e.g. "counter".
func NewTable[T any](arena *Arena, kind string) *Table[T] {
	return &Table[T]{arena: arena, kind: kind}
}

// Arena returns the backing arena.
func (t *Table[T]) Arena() *Arena {
	return t.arena
}

// Create stores a value and returns its handle.
func (t *Table[T]) Create(value T) (Handle, error) {
	return t.arena.Create(value)
}

// Get resolves a handle to its object, failing on stale, foreign, or
// zero handles.
func (t *Table[T]) Get(handle Handle) (T, error) {
	var zero T
	v, ok := t.arena.Get(handle)
	if !ok {
		return zero, errors.New(errors.PhaseRuntime, errors.KindNotFound).
			Detail("%s handle %d is not live", t.kind, handle).
			Build()
	}
	typed, ok := v.(T)
	if !ok {
		return zero, errors.New(errors.PhaseRuntime, errors.KindTypeMismatch).
			Detail("handle %d does not refer to a %s", handle, t.kind).
			Build()
	}
	return typed, nil
}

// Drop removes the object behind handle. Dropping a handle that is not
// live is a no-op so double drops stay harmless.
func (t *Table[T]) Drop(handle Handle) {
	t.arena.Remove(handle)
}

// Len returns the number of live objects of this kind.
func (t *Table[T]) Len() int {
	n := 0
	t.arena.Each(func(_ Handle, v any) bool {
		if _, ok := v.(T); ok {
			n++
		}
		return true
	})
	return n
}
