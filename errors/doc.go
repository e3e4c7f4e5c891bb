// Package errors provides the structured error types used across the
// binding boundary, and the bridge that converts native errors into
// host-observable exceptions and back.
//
// Every error carries a Phase (where in processing it occurred) and a
// Kind (what went wrong), plus an optional field path for marshalling
// failures inside nested values.
package errors
