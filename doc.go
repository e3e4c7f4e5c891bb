// Package hostbridge exposes native Go functions, objects, and
// asynchronous computations to a managed host runtime across an explicit
// binding boundary.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct
// responsibilities:
//
//	hostbridge/          Root package with shared boundary contracts
//	├── registry/        Call surface: host struct registration and dispatch
//	├── marshal/         Value conversion between native and host form
//	├── callback/        Invoking host-supplied function values from native code
//	├── future/          Single-resolution pending computations (async bridge)
//	├── object/          Arena-managed handles for native-owned mutable objects
//	├── errors/          Structured errors and the host exception bridge
//	├── fixture/         The demonstration surface exercising every crossing
//	└── wasmhost/        wazero adapter exposing natives to a WASM guest
//
// # Quick Start
//
// Register a host and call it through the boundary:
//
//	reg := registry.New()
//	if err := fixture.RegisterAll(reg); err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := reg.Call(ctx, fixture.MathNamespace, "add", []any{int64(2), int64(3)})
//	fmt.Println(result) // 5
//
// Asynchronous functions return a *future.Future immediately:
//
//	pending, _ := reg.Call(ctx, fixture.AsyncNamespace, "async-add", []any{int64(2), int64(3)})
//	value, err := pending.(*future.Future).Await(ctx)
//
// # Boundary Model
//
// Host values are dynamic interface trees (see package marshal). Values
// cross by copy; the only state shared across the boundary is reached
// through explicit handles (package object) and pending-computation
// handles (package future). Failures cross as *errors.HostException on
// the sync path and as future rejections on the async path, carrying the
// original message text.
//
// # Thread Safety
//
// Registries, marshallers, and arenas are safe for concurrent use. A
// callback capability serializes its calls: each round trip completes
// before the next begins.
package hostbridge
