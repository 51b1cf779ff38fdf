package packs

import (
	"strings"

	"github.com/patchbay/patchbay/internal/core/catalog"
)

// text builds an In -> Result node over a coerced string.
func text(fn func(s string) catalog.Value) catalog.NodeType {
	return catalog.NodeType{
		Category: "text",
		Inputs:   []string{"In"},
		Outputs:  []string{"Result"},
		Evaluate: func(in map[string]catalog.Value, _ catalog.Value) (map[string]catalog.Value, error) {
			return result("Result", fn(AsString(in["In"]))), nil
		},
	}
}

// Text registers the string node types.
func Text(c *catalog.Catalog) {
	c.Register(map[string]catalog.NodeType{
		"Text": {
			Category:    "text",
			Outputs:     []string{"Value"},
			ControlName: "Value",
			Evaluate: func(_ map[string]catalog.Value, control catalog.Value) (map[string]catalog.Value, error) {
				return result("Value", AsString(control)), nil
			},
		},
		"Upper": text(func(s string) catalog.Value { return strings.ToUpper(s) }),
		"Lower": text(func(s string) catalog.Value { return strings.ToLower(s) }),
		"Join": {
			Category: "text",
			Inputs:   []string{"List", "Sep"},
			Outputs:  []string{"Result"},
			Evaluate: func(in map[string]catalog.Value, _ catalog.Value) (map[string]catalog.Value, error) {
				l := AsList(in["List"])
				parts := make([]string, len(l))
				for i, v := range l {
					parts[i] = AsString(v)
				}
				return result("Result", strings.Join(parts, AsString(in["Sep"]))), nil
			},
		},
		"Split": {
			Category: "text",
			Inputs:   []string{"In", "Sep"},
			Outputs:  []string{"List"},
			Evaluate: func(in map[string]catalog.Value, _ catalog.Value) (map[string]catalog.Value, error) {
				parts := strings.Split(AsString(in["In"]), AsString(in["Sep"]))
				out := make([]catalog.Value, len(parts))
				for i, p := range parts {
					out[i] = p
				}
				return result("List", out), nil
			},
		},
		"Contains": {
			Category: "text",
			Inputs:   []string{"In", "Sub"},
			Outputs:  []string{"Result"},
			Evaluate: func(in map[string]catalog.Value, _ catalog.Value) (map[string]catalog.Value, error) {
				return result("Result", strings.Contains(AsString(in["In"]), AsString(in["Sub"]))), nil
			},
		},
	})
}
