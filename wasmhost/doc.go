// Package wasmhost lets a WebAssembly guest play the host runtime:
// functions registered in a registry namespace are exposed as a wazero
// host module the guest can import and call.
//
// Only signatures that flatten onto the wasm core stack bind: scalar
// parameters and results map to i32/i64/f32/f64, bools to i32, and
// string parameters to a (ptr, len) pair read from the guest's linear
// memory. Functions outside this subset are skipped at bind time.
// A native failure traps the guest with the bridged message; async
// functions are awaited before their result returns to the guest.
package wasmhost
