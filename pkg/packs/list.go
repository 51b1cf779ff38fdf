package packs

import (
	"unicode/utf8"

	"github.com/patchbay/patchbay/internal/core/catalog"
)

// maxRangeLen bounds a runaway Range so a bad step cannot exhaust memory.
const maxRangeLen = 1 << 20

// List registers the list node types. Length and Concat are polymorphic:
// they operate on lists when given lists and fall back to text semantics
// otherwise.
func List(c *catalog.Catalog) {
	c.Register(map[string]catalog.NodeType{
		"Range": {
			Category: "list",
			Inputs:   []string{"Start", "End", "Step"},
			Outputs:  []string{"List"},
			Evaluate: func(in map[string]catalog.Value, _ catalog.Value) (map[string]catalog.Value, error) {
				start := AsNumber(in["Start"])
				end := AsNumber(in["End"])
				step := AsNumber(in["Step"])

				out := []catalog.Value{}
				switch {
				case step > 0:
					for v := start; v < end && len(out) < maxRangeLen; v += step {
						out = append(out, v)
					}
				case step < 0:
					for v := start; v > end && len(out) < maxRangeLen; v += step {
						out = append(out, v)
					}
				}
				return result("List", out), nil
			},
		},
		"Length": {
			Category: "list",
			Inputs:   []string{"In"},
			Outputs:  []string{"Result"},
			Evaluate: func(in map[string]catalog.Value, _ catalog.Value) (map[string]catalog.Value, error) {
				if l := AsList(in["In"]); l != nil {
					return result("Result", float64(len(l))), nil
				}
				return result("Result", float64(utf8.RuneCountInString(AsString(in["In"])))), nil
			},
		},
		"Index": {
			Category: "list",
			Inputs:   []string{"List", "Index"},
			Outputs:  []string{"Result"},
			Evaluate: func(in map[string]catalog.Value, _ catalog.Value) (map[string]catalog.Value, error) {
				l := AsList(in["List"])
				i := int(AsNumber(in["Index"]))
				if i < 0 || i >= len(l) {
					return result("Result", nil), nil
				}
				return result("Result", l[i]), nil
			},
		},
		"Sum": {
			Category: "list",
			Inputs:   []string{"In"},
			Outputs:  []string{"Result"},
			Evaluate: func(in map[string]catalog.Value, _ catalog.Value) (map[string]catalog.Value, error) {
				var sum float64
				for _, v := range AsList(in["In"]) {
					sum += AsNumber(v)
				}
				return result("Result", sum), nil
			},
		},
		"Reverse": {
			Category: "list",
			Inputs:   []string{"In"},
			Outputs:  []string{"List"},
			Evaluate: func(in map[string]catalog.Value, _ catalog.Value) (map[string]catalog.Value, error) {
				l := AsList(in["In"])
				out := make([]catalog.Value, len(l))
				for i, v := range l {
					out[len(l)-1-i] = v
				}
				return result("List", out), nil
			},
		},
		"Concat": {
			Category: "list",
			Inputs:   []string{"A", "B"},
			Outputs:  []string{"Result"},
			Evaluate: func(in map[string]catalog.Value, _ catalog.Value) (map[string]catalog.Value, error) {
				la, lb := AsList(in["A"]), AsList(in["B"])
				if la != nil || lb != nil {
					out := make([]catalog.Value, 0, len(la)+len(lb))
					out = append(out, la...)
					out = append(out, lb...)
					return result("Result", out), nil
				}
				return result("Result", AsString(in["A"])+AsString(in["B"])), nil
			},
		},
	})
}
