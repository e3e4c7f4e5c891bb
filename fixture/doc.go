// Package fixture is the demonstration surface of the boundary: a small
// set of hosts whose functions exercise every crossing the library
// supports: scalar and string arguments, records, lists, optionals,
// failable calls, host callbacks, handle-backed objects, and async
// dispatch.
//
// RegisterAll wires the whole surface into a registry:
//
//	reg := registry.New()
//	if err := fixture.RegisterAll(reg); err != nil { ... }
package fixture
