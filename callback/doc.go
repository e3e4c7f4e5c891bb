// Package callback lets native code invoke host-supplied function values.
//
// A host function crosses the boundary as a HostFunc. Native code never
// holds it directly: it is wrapped in a reference-counted Ref capability,
// and Bind turns the capability into a typed Go func whose calls round-trip
// arguments and results through the marshaller. Each call is a single
// synchronous round trip; sequential calls happen strictly in order.
package callback
