// Package graph provides edge definitions
package graph

// EdgeID addresses an edge record in the graph's edge arena
type EdgeID int32

// Edge represents a directed connection from an output port to an input port
// PRINCIPLES:
// - KISS: Simple edge representation, handle pairs instead of references
// - SRP: Only responsible for edge data
type Edge struct {
	ID  EdgeID `json:"id"`
	Src PortID `json:"src"` // must be an output port
	Dst PortID `json:"dst"` // must be an input port

	dead bool
}

// Incident checks if the edge touches the given port at either end
func (e *Edge) Incident(p PortID) bool {
	return e.Src == p || e.Dst == p
}
