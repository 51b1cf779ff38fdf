// Package packs ships the builtin node types: ready-made math, logic,
// list, and text nodes, plus the coercion helpers their evaluate funcs
// share. Every port value is dynamically typed; evaluate funcs coerce
// defensively and return safe defaults instead of errors for arithmetic
// edge cases.
// PRINCIPLES:
// - KISS: Plain pack functions registering plain types
// - DRY: Shared unary/binary builders and coercion helpers
// - OCP: New packs extend the catalog without touching the core
package packs

import "github.com/patchbay/patchbay/internal/core/catalog"

// Default returns every builtin pack in registration order.
func Default() []catalog.Pack {
	return []catalog.Pack{Math, Logic, List, Text}
}

// result builds a single-output value map.
func result(name string, v catalog.Value) map[string]catalog.Value {
	return map[string]catalog.Value{name: v}
}
