// Package graph provides node and port definitions
package graph

import "github.com/patchbay/patchbay/internal/core/catalog"

// NodeID addresses a node record in the graph's node arena
type NodeID int32

// PortID addresses a port record in the graph's port arena
type PortID int32

// None marks the absence of a handle of any kind
const None = -1

// Direction distinguishes input ports from output ports
type Direction string

const (
	// DirectionInput marks a port that receives values over an edge
	DirectionInput Direction = "input"
	// DirectionOutput marks a port that produces values for edges
	DirectionOutput Direction = "output"
)

// Node represents an instance of a catalog type
// PRINCIPLES:
// - KISS: Flat record addressed by an integer handle
// - SRP: Only responsible for topology data; evaluation lives in the app layer
type Node struct {
	ID       NodeID        `json:"id"`
	TypeName string        `json:"type"`
	Inputs   []PortID      `json:"inputs"`
	Outputs  []PortID      `json:"outputs"`
	Control  catalog.Value `json:"control,omitempty"`
	X        float64       `json:"x"`
	Y        float64       `json:"y"`

	// Type is resolved once at creation; evaluation never dispatches on
	// the name string.
	Type *catalog.NodeType `json:"-"`

	dead bool
}

// IsSource checks if the node has no input ports (a pure source)
func (n *Node) IsSource() bool {
	return len(n.Inputs) == 0
}

// Port represents a named, directioned value slot on a node
// PRINCIPLES:
// - KISS: Simple port representation
// - SRP: Only responsible for port data
type Port struct {
	ID    PortID        `json:"id"`
	Node  NodeID        `json:"node"`
	Dir   Direction     `json:"dir"`
	Name  string        `json:"name"`
	Index int           `json:"index"`
	Value catalog.Value `json:"value,omitempty"`

	dead bool
}

// IsInput checks if the port receives values
func (p *Port) IsInput() bool {
	return p.Dir == DirectionInput
}

// IsOutput checks if the port produces values
func (p *Port) IsOutput() bool {
	return p.Dir == DirectionOutput
}
