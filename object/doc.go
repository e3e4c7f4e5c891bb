// Package object manages native-owned mutable objects exposed to the
// host by opaque handles.
//
// Objects live in an arena; the host only ever sees a Handle, never a
// pointer. The arena reuses freed slots, handle 0 is always invalid, and
// teardown is idempotent. Values implementing hostbridge.Releaser are
// released when their handle is removed or the arena closes.
package object
