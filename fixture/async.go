package fixture

import (
	"context"
	"time"

	"github.com/hostbridge/hostbridge/errors"
)

// AsyncNamespace is the namespace of the asynchronous host.
const AsyncNamespace = "demo:fixture/async@1.0.0"

// AsyncFixtureHost demonstrates async dispatch: every function here
// returns a *future.Future from registry.Call and settles off the
// caller's goroutine.
type AsyncFixtureHost struct{}

func (h *AsyncFixtureHost) Namespace() string { return AsyncNamespace }

func (h *AsyncFixtureHost) AsyncFunctions() []string {
	return []string{"async-add", "delayed-value", "async-divide", "async-sum"}
}

// AsyncAdd returns a + b.
func (h *AsyncFixtureHost) AsyncAdd(a, b int32) int32 { return a + b }

// DelayedValue resolves with v after ms milliseconds.
func (h *AsyncFixtureHost) DelayedValue(ctx context.Context, v int32, ms uint32) (int32, error) {
	timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
	defer timer.Stop()
	select {
	case <-timer.C:
		return v, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// AsyncDivide behaves exactly like the synchronous divide, including its
// failure message.
func (h *AsyncFixtureHost) AsyncDivide(a, b int32) (int32, error) {
	if b == 0 {
		return 0, errors.InvalidArgument("Division by zero")
	}
	return a / b, nil
}

// AsyncSum sums a list of numbers.
func (h *AsyncFixtureHost) AsyncSum(nums []int32) int64 {
	var sum int64
	for _, n := range nums {
		sum += int64(n)
	}
	return sum
}
