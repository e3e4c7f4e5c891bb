// Package future bridges native asynchronous computations to the host as
// single-resolution pending values.
//
// A Future settles exactly once: Pending -> Resolved or Pending ->
// Rejected, both terminal. The single-shot guarantee is structural (a
// sync.Once guards settlement), not a runtime check. Completion is
// observed through the one-time Done channel rather than polling.
package future
