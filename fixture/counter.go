package fixture

import (
	"sync"

	"github.com/hostbridge/hostbridge/object"
)

// CounterNamespace is the namespace of the stateful object host.
const CounterNamespace = "demo:fixture/counter@1.0.0"

// Counter is a native-owned mutable object. The host only ever holds a
// handle to it; all mutation happens on this side of the boundary.
type Counter struct {
	mu    sync.Mutex
	value int32
}

// NewCounter creates a counter starting at initial.
func NewCounter(initial int32) *Counter {
	return &Counter{value: initial}
}

func (c *Counter) Increment() int32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value++
	return c.value
}

func (c *Counter) Decrement() int32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value--
	return c.value
}

func (c *Counter) Add(delta int32) int32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value += delta
	return c.value
}

func (c *Counter) Value() int32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

func (c *Counter) SetValue(v int32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = v
}

func (c *Counter) Reset() {
	c.SetValue(0)
}

// CounterHost exposes Counter as a resource-style class. Function names
// follow the resource convention, so registration is explicit.
type CounterHost struct {
	counters *object.Table[*Counter]
}

// NewCounterHost creates a counter host backed by its own arena.
func NewCounterHost() *CounterHost {
	return &CounterHost{
		counters: object.NewTable[*Counter](object.NewArena(), "counter"),
	}
}

func (h *CounterHost) Namespace() string { return CounterNamespace }

// Register maps resource-style names onto handlers.
func (h *CounterHost) Register() map[string]any {
	return map[string]any{
		"[constructor]counter":       h.construct,
		"[method]counter.increment":  h.increment,
		"[method]counter.decrement":  h.decrement,
		"[method]counter.add":        h.add,
		"[method]counter.value":      h.value,
		"[method]counter.set-value":  h.setValue,
		"[method]counter.reset":      h.reset,
		"[resource-drop]counter":     h.drop,
		"[static]counter.live-count": h.liveCount,
	}
}

// Live returns the number of counters the host currently owns.
func (h *CounterHost) Live() int {
	return h.counters.Len()
}

// Close drops every live counter.
func (h *CounterHost) Close() error {
	return h.counters.Arena().Close()
}

func (h *CounterHost) construct(initial *int32) (object.Handle, error) {
	start := int32(0)
	if initial != nil {
		start = *initial
	}
	return h.counters.Create(NewCounter(start))
}

func (h *CounterHost) increment(handle object.Handle) (int32, error) {
	c, err := h.counters.Get(handle)
	if err != nil {
		return 0, err
	}
	return c.Increment(), nil
}

func (h *CounterHost) decrement(handle object.Handle) (int32, error) {
	c, err := h.counters.Get(handle)
	if err != nil {
		return 0, err
	}
	return c.Decrement(), nil
}

func (h *CounterHost) add(handle object.Handle, delta int32) (int32, error) {
	c, err := h.counters.Get(handle)
	if err != nil {
		return 0, err
	}
	return c.Add(delta), nil
}

func (h *CounterHost) value(handle object.Handle) (int32, error) {
	c, err := h.counters.Get(handle)
	if err != nil {
		return 0, err
	}
	return c.Value(), nil
}

func (h *CounterHost) setValue(handle object.Handle, v int32) error {
	c, err := h.counters.Get(handle)
	if err != nil {
		return err
	}
	c.SetValue(v)
	return nil
}

func (h *CounterHost) reset(handle object.Handle) error {
	c, err := h.counters.Get(handle)
	if err != nil {
		return err
	}
	c.Reset()
	return nil
}

// drop is idempotent: dropping a stale handle is a no-op.
func (h *CounterHost) drop(handle object.Handle) {
	h.counters.Drop(handle)
}

func (h *CounterHost) liveCount() uint32 {
	return uint32(h.counters.Len())
}
