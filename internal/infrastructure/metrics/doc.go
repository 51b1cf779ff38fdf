// Package metrics exposes expvar-published counters and gauges used by the
// patchbay engine (evaluator, wiring, snapshots). It intentionally avoids
// external dependencies and is consumed by the optional HTTP server for
// /debug/vars and /metrics endpoints.
package metrics
