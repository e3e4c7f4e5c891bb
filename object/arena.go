package object

import (
	"sync"

	"github.com/hostbridge/hostbridge"
	"github.com/hostbridge/hostbridge/errors"
)

// Handle is an opaque reference to an object in an arena.
// Handle 0 is reserved and always invalid.
type Handle uint32

// EventType identifies a lifecycle notification.
type EventType uint8

const (
	EventCreated EventType = iota
	EventDropped
)

// Event describes one object lifecycle transition.
type Event struct {
	Value  any
	Handle Handle
	Type   EventType
}

// Observer receives object lifecycle events.
type Observer interface {
	OnObjectEvent(Event)
}

// Arena is an in-memory store of native objects with free-slot reuse.
type Arena struct {
	entries   []entry
	freeList  []Handle
	observers []Observer
	mu        sync.RWMutex
	closed    bool
}

type entry struct {
	value any
	valid bool
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{
		entries:  make([]entry, 0, 16),
		freeList: make([]Handle, 0, 4),
	}
}

// Create stores a value and returns its handle.
func (a *Arena) Create(value any) (Handle, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return 0, errors.InvalidInput(errors.PhaseRuntime, "arena closed")
	}

	e := entry{value: value, valid: true}

	var handle Handle
	if len(a.freeList) > 0 {
		handle = a.freeList[len(a.freeList)-1]
		a.freeList = a.freeList[:len(a.freeList)-1]
		a.entries[handle-1] = e
	} else {
		a.entries = append(a.entries, e)
		handle = Handle(len(a.entries))
	}

	a.notifyLocked(Event{Type: EventCreated, Handle: handle, Value: value})
	return handle, nil
}

// Get retrieves a value by handle.
func (a *Arena) Get(handle Handle) (any, bool) {
	if handle == 0 {
		return nil, false
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	idx := handle - 1
	if int(idx) >= len(a.entries) {
		return nil, false
	}

	e := a.entries[idx]
	if !e.valid {
		return nil, false
	}
	return e.value, true
}

// Remove drops an object, releasing it if it implements Releaser.
// Removing an already-removed or invalid handle is a harmless no-op.
func (a *Arena) Remove(handle Handle) (any, bool) {
	if handle == 0 {
		return nil, false
	}

	a.mu.Lock()

	idx := handle - 1
	if int(idx) >= len(a.entries) {
		a.mu.Unlock()
		return nil, false
	}

	e := &a.entries[idx]
	if !e.valid {
		a.mu.Unlock()
		return nil, false
	}

	value := e.value
	e.valid = false
	e.value = nil
	a.freeList = append(a.freeList, handle)
	a.notifyLocked(Event{Type: EventDropped, Handle: handle, Value: value})
	a.mu.Unlock()

	if r, ok := value.(hostbridge.Releaser); ok {
		r.Release()
	}

	return value, true
}

// Len returns the number of live objects.
func (a *Arena) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()

	count := 0
	for _, e := range a.entries {
		if e.valid {
			count++
		}
	}
	return count
}

// Each iterates over live objects until fn returns false.
func (a *Arena) Each(fn func(Handle, any) bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	for i, e := range a.entries {
		if e.valid {
			if !fn(Handle(i+1), e.value) {
				break
			}
		}
	}
}

// Subscribe adds an observer for lifecycle events.
func (a *Arena) Subscribe(o Observer) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.observers = append(a.observers, o)
}

// Unsubscribe removes an observer.
func (a *Arena) Unsubscribe(o Observer) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i, obs := range a.observers {
		if obs == o {
			a.observers = append(a.observers[:i], a.observers[i+1:]...)
			return
		}
	}
}

// Close releases all live objects and rejects further Creates.
// Closing twice is safe.
func (a *Arena) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil
	}
	a.closed = true

	for i := range a.entries {
		if a.entries[i].valid {
			if r, ok := a.entries[i].value.(hostbridge.Releaser); ok {
				r.Release()
			}
			a.entries[i].valid = false
			a.entries[i].value = nil
		}
	}

	a.entries = nil
	a.freeList = nil
	return nil
}

func (a *Arena) notifyLocked(e Event) {
	for _, o := range a.observers {
		o.OnObjectEvent(e)
	}
}
