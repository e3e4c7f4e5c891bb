package fixture

import (
	"github.com/hostbridge/hostbridge/errors"
)

// MathNamespace is the namespace of the arithmetic host.
const MathNamespace = "demo:fixture/math@1.0.0"

// MathHost demonstrates scalar crossings, failable calls, and optional
// results.
type MathHost struct{}

func (h *MathHost) Namespace() string { return MathNamespace }

// Add returns a + b.
func (h *MathHost) Add(a, b int32) int32 { return a + b }

// GetMagicNumber returns the fixture's well-known constant.
func (h *MathHost) GetMagicNumber() int32 { return 42 }

// Divide returns the truncated quotient a / b, rejecting a zero divisor.
func (h *MathHost) Divide(a, b int32) (int32, error) {
	if b == 0 {
		return 0, errors.InvalidArgument("Division by zero")
	}
	return a / b, nil
}

// MaybeDouble doubles non-negative values and returns absent otherwise.
func (h *MathHost) MaybeDouble(v int32) *int32 {
	if v < 0 {
		return nil
	}
	doubled := v * 2
	return &doubled
}
