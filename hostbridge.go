package hostbridge

// HostValue documents the dynamic representation host values take on
// this side of the boundary: nil, bool, int64, uint64, float64, string,
// []any, or map[string]any.
type HostValue = any

// Releaser is optionally implemented by native objects that need teardown
// when the host drops its last handle to them.
type Releaser interface {
	Release()
}
