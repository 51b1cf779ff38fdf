package packs

import (
	"reflect"

	"github.com/patchbay/patchbay/internal/core/catalog"
)

// predicate builds an A,B -> Result node producing a bool.
func predicate(fn func(a, b catalog.Value) bool) catalog.NodeType {
	return catalog.NodeType{
		Category: "logic",
		Inputs:   []string{"A", "B"},
		Outputs:  []string{"Result"},
		Evaluate: func(in map[string]catalog.Value, _ catalog.Value) (map[string]catalog.Value, error) {
			return result("Result", fn(in["A"], in["B"])), nil
		},
	}
}

// Logic registers boolean and comparison node types. Equals compares
// numerically when both sides are numbers, structurally otherwise.
func Logic(c *catalog.Catalog) {
	c.Register(map[string]catalog.NodeType{
		"Toggle": {
			Category:    "logic",
			Outputs:     []string{"Value"},
			ControlName: "Value",
			Evaluate: func(_ map[string]catalog.Value, control catalog.Value) (map[string]catalog.Value, error) {
				return result("Value", AsBool(control)), nil
			},
		},
		"Not": {
			Category: "logic",
			Inputs:   []string{"In"},
			Outputs:  []string{"Result"},
			Evaluate: func(in map[string]catalog.Value, _ catalog.Value) (map[string]catalog.Value, error) {
				return result("Result", !AsBool(in["In"])), nil
			},
		},
		"And": predicate(func(a, b catalog.Value) bool { return AsBool(a) && AsBool(b) }),
		"Or":  predicate(func(a, b catalog.Value) bool { return AsBool(a) || AsBool(b) }),
		"Equals": predicate(func(a, b catalog.Value) bool {
			if isNumber(a) && isNumber(b) {
				return AsNumber(a) == AsNumber(b)
			}
			return reflect.DeepEqual(a, b)
		}),
		"Greater": predicate(func(a, b catalog.Value) bool { return AsNumber(a) > AsNumber(b) }),
		"Less":    predicate(func(a, b catalog.Value) bool { return AsNumber(a) < AsNumber(b) }),
		"Switch": {
			Category: "logic",
			Inputs:   []string{"Index", "A", "B", "C"},
			Outputs:  []string{"Result"},
			Evaluate: func(in map[string]catalog.Value, _ catalog.Value) (map[string]catalog.Value, error) {
				var out catalog.Value
				switch int(AsNumber(in["Index"])) {
				case 0:
					out = in["A"]
				case 1:
					out = in["B"]
				case 2:
					out = in["C"]
				}
				return result("Result", out), nil
			},
		},
		"Gate": {
			Category: "logic",
			Inputs:   []string{"Open", "Value"},
			Outputs:  []string{"Result"},
			Evaluate: func(in map[string]catalog.Value, _ catalog.Value) (map[string]catalog.Value, error) {
				if !AsBool(in["Open"]) {
					return result("Result", nil), nil
				}
				return result("Result", in["Value"]), nil
			},
		},
	})
}
