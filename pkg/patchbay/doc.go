// Package patchbay provides the public façade for building and running
// node graphs without importing internal packages. It re-exports the core
// handle and value types for convenience and exposes a Patch whose methods
// mirror the engine operations: topology edits, control writes, evaluation
// triggers, the interactive wiring protocol, and snapshot save/load.
//
// A Patch serializes every trigger behind one mutex, so concurrent callers
// (an HTTP handler per request, for example) observe the same one-at-a-time
// semantics as a single-threaded editor loop.
package patchbay
