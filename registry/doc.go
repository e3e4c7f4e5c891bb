// Package registry is the call surface of the boundary: native functions
// are registered under versioned namespaces and dispatched by host-side
// name.
//
// Hosts are plain structs. Exported methods register automatically under
// their kebab-case names (GetMagicNumber -> get-magic-number); hosts with
// resource-style names implement ExplicitRegistrar instead. Functions
// listed by AsyncFunctions() dispatch onto their own goroutine and return
// a *future.Future immediately.
//
// Dispatch converts host arguments to native form, reflect-calls the
// handler, and converts the result back. Native failures reach the caller
// as *errors.HostException; only the message crosses.
package registry
