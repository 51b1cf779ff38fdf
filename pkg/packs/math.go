package packs

import (
	"math"

	"github.com/patchbay/patchbay/internal/core/catalog"
)

// binary builds an A,B -> Result node over coerced numbers.
func binary(category string, fn func(a, b float64) float64) catalog.NodeType {
	return catalog.NodeType{
		Category: category,
		Inputs:   []string{"A", "B"},
		Outputs:  []string{"Result"},
		Evaluate: func(in map[string]catalog.Value, _ catalog.Value) (map[string]catalog.Value, error) {
			return result("Result", fn(AsNumber(in["A"]), AsNumber(in["B"]))), nil
		},
	}
}

// unary builds an In -> Result node over a coerced number.
func unary(category string, fn func(v float64) float64) catalog.NodeType {
	return catalog.NodeType{
		Category: category,
		Inputs:   []string{"In"},
		Outputs:  []string{"Result"},
		Evaluate: func(in map[string]catalog.Value, _ catalog.Value) (map[string]catalog.Value, error) {
			return result("Result", fn(AsNumber(in["In"]))), nil
		},
	}
}

// Math registers the arithmetic node types. Division and modulo by zero,
// and square roots of negatives, yield 0 rather than errors.
func Math(c *catalog.Catalog) {
	c.Register(map[string]catalog.NodeType{
		"Number": {
			Category:    "math",
			Outputs:     []string{"Value"},
			ControlName: "Value",
			Evaluate: func(_ map[string]catalog.Value, control catalog.Value) (map[string]catalog.Value, error) {
				return result("Value", AsNumber(control)), nil
			},
		},
		"Add":      binary("math", func(a, b float64) float64 { return a + b }),
		"Subtract": binary("math", func(a, b float64) float64 { return a - b }),
		"Multiply": binary("math", func(a, b float64) float64 { return a * b }),
		"Divide": binary("math", func(a, b float64) float64 {
			if b == 0 {
				return 0
			}
			return a / b
		}),
		"Modulo": binary("math", func(a, b float64) float64 {
			if b == 0 {
				return 0
			}
			return math.Mod(a, b)
		}),
		"Power": binary("math", math.Pow),
		"Min":   binary("math", math.Min),
		"Max":   binary("math", math.Max),
		"Sqrt": unary("math", func(v float64) float64 {
			if v < 0 {
				return 0
			}
			return math.Sqrt(v)
		}),
		"Abs":    unary("math", math.Abs),
		"Negate": unary("math", func(v float64) float64 { return -v }),
		"Round":  unary("math", math.Round),
		"Clamp": {
			Category: "math",
			Inputs:   []string{"In", "Min", "Max"},
			Outputs:  []string{"Result"},
			Evaluate: func(in map[string]catalog.Value, _ catalog.Value) (map[string]catalog.Value, error) {
				v := AsNumber(in["In"])
				lo, hi := AsNumber(in["Min"]), AsNumber(in["Max"])
				if lo > hi {
					lo, hi = hi, lo
				}
				return result("Result", math.Min(math.Max(v, lo), hi)), nil
			},
		},
	})
}
