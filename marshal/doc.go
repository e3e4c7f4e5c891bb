// Package marshal converts values between their native Go representation
// and the dynamic host representation used across the binding boundary.
//
// Host values are plain Go interface trees:
//
//	nil          absent optional
//	bool         bool
//	int64        all signed integers
//	uint64       all unsigned integers
//	float64      all floats
//	string       string
//	[]any        list
//	map[string]any  record, keyed by kebab-case field name
//
// Native types are described by compiled descriptors produced once per
// reflect.Type and cached. Conversions are pure: the same inputs always
// produce the same output or the same error, and nothing is mutated.
package marshal
