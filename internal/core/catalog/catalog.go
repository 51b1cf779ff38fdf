// Package catalog provides the node type registry
// following Clean Architecture principles with zero external dependencies.
package catalog

import "sort"

// Value is a dynamically typed port value: a number (float64 or int), a
// string, a bool, a []Value list, or nil. There is no static type system;
// evaluate functions coerce their inputs defensively.
type Value = any

// EvalFunc computes a node's outputs from its current input values and its
// control value. Output names absent from the returned map leave the
// corresponding ports untouched.
type EvalFunc func(inputs map[string]Value, control Value) (map[string]Value, error)

// Pack registers a group of node types into a catalog. Feature modules
// expose one Pack each and are applied at construction time.
type Pack func(c *Catalog)

// NodeType describes a registered node kind
// PRINCIPLES:
// - KISS: Declaration plus evaluation function, nothing else
// - SRP: Only responsible for type metadata
type NodeType struct {
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Inputs      []string `json:"inputs"`
	Outputs     []string `json:"outputs"`
	ControlName string   `json:"control,omitempty"`
	Evaluate    EvalFunc `json:"-"`
}

// HasControl checks if nodes of this type carry a control widget value
func (t *NodeType) HasControl() bool {
	return t.ControlName != ""
}

// HasInputs checks if the type declares at least one input port
func (t *NodeType) HasInputs() bool {
	return len(t.Inputs) > 0
}

// HasOutputs checks if the type declares at least one output port
func (t *NodeType) HasOutputs() bool {
	return len(t.Outputs) > 0
}

// Catalog is an explicit, injectable registry of node types. There is no
// package-level registry; construct one and pass it by reference to the
// graph store and the wiring protocol.
// PRINCIPLES:
// - SRP: Only responsible for name -> NodeType resolution
// - No ambient global state
type Catalog struct {
	types map[string]*NodeType
}

// New creates an empty catalog
func New() *Catalog {
	return &Catalog{types: make(map[string]*NodeType)}
}

// Register merges a pack of node types into the catalog. Later
// registrations with the same name replace earlier ones; nodes that
// already resolved the previous definition keep it. The map key is the
// authoritative name. Declared port names are not validated.
func (c *Catalog) Register(pack map[string]NodeType) {
	for name, t := range pack {
		t.Name = name
		entry := t
		c.types[name] = &entry
	}
}

// Apply runs each pack against the catalog in order
func (c *Catalog) Apply(packs ...Pack) {
	for _, p := range packs {
		p(c)
	}
}

// Lookup resolves a type name, returning ErrTypeNotFound on a miss.
// The returned pointer is stable until the name is re-registered.
func (c *Catalog) Lookup(name string) (*NodeType, error) {
	t, ok := c.types[name]
	if !ok {
		return nil, ErrTypeNotFound
	}
	return t, nil
}

// Names returns all registered type names, sorted
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.types))
	for name := range c.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Types returns all registered types, sorted by name
func (c *Catalog) Types() []*NodeType {
	out := make([]*NodeType, 0, len(c.types))
	for _, name := range c.Names() {
		out = append(out, c.types[name])
	}
	return out
}

// Len returns the number of registered types
func (c *Catalog) Len() int {
	return len(c.types)
}

// Categories groups registered type names by category for browse UIs.
// Purely presentational; has no effect on evaluation. Types without a
// category land under "general".
func (c *Catalog) Categories() map[string][]string {
	out := make(map[string][]string)
	for name, t := range c.types {
		cat := t.Category
		if cat == "" {
			cat = "general"
		}
		out[cat] = append(out[cat], name)
	}
	for _, names := range out {
		sort.Strings(names)
	}
	return out
}
