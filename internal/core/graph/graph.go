// Package graph provides the core graph store
// following Clean Architecture principles with no dependencies outside the core.
package graph

import (
	"github.com/patchbay/patchbay/internal/core/catalog"
)

// Graph owns all node, port, and edge records in flat arenas addressed by
// integer handles. Handles are never reused within a graph's lifetime;
// deleted records leave tombstones so a stale handle fails lookup instead
// of aliasing a newer record.
// PRINCIPLES:
// - KISS: Three slices and a catalog reference, no object graphs
// - SRP: Only responsible for topology and cached values, not evaluation
type Graph struct {
	catalog *catalog.Catalog
	nodes   []Node
	ports   []Port
	edges   []Edge
}

// New creates an empty graph bound to the given catalog
func New(c *catalog.Catalog) *Graph {
	return &Graph{catalog: c}
}

// AddNode instantiates a catalog type at the given position, allocating one
// port per declared input and output name in declaration order. All port
// values start nil. Returns catalog.ErrTypeNotFound for unknown types; no
// node is created in that case.
func (g *Graph) AddNode(typeName string, x, y float64) (NodeID, error) {
	typ, err := g.catalog.Lookup(typeName)
	if err != nil {
		return None, err
	}
	id := NodeID(len(g.nodes))
	node := Node{ID: id, TypeName: typ.Name, Type: typ, X: x, Y: y}
	for i, name := range typ.Inputs {
		node.Inputs = append(node.Inputs, g.addPort(id, DirectionInput, name, i))
	}
	for i, name := range typ.Outputs {
		node.Outputs = append(node.Outputs, g.addPort(id, DirectionOutput, name, i))
	}
	g.nodes = append(g.nodes, node)
	return id, nil
}

func (g *Graph) addPort(owner NodeID, dir Direction, name string, index int) PortID {
	id := PortID(len(g.ports))
	g.ports = append(g.ports, Port{ID: id, Node: owner, Dir: dir, Name: name, Index: index})
	return id
}

// RemoveNode deletes the node and cascades removal of every edge incident
// to any of its ports
func (g *Graph) RemoveNode(id NodeID) error {
	n, err := g.Node(id)
	if err != nil {
		return err
	}
	for _, pid := range n.Inputs {
		g.removeEdgesAt(pid)
		g.ports[pid].dead = true
	}
	for _, pid := range n.Outputs {
		g.removeEdgesAt(pid)
		g.ports[pid].dead = true
	}
	g.nodes[id].dead = true
	return nil
}

func (g *Graph) removeEdgesAt(p PortID) {
	for i := range g.edges {
		if !g.edges[i].dead && g.edges[i].Incident(p) {
			g.edges[i].dead = true
		}
	}
}

// Connect creates an edge from an output port to an input port on a
// different node. If the destination already has an incoming edge, that
// edge is removed first (the old source detaches). On success the
// destination port immediately receives the source port's cached value;
// scheduling the destination node for evaluation is the caller's concern.
// No value-type compatibility check exists - the check is direction-only.
func (g *Graph) Connect(src, dst PortID) (EdgeID, error) {
	sp, err := g.Port(src)
	if err != nil {
		return None, err
	}
	dp, err := g.Port(dst)
	if err != nil {
		return None, err
	}
	if !sp.IsOutput() || !dp.IsInput() {
		return None, ErrDirectionMismatch
	}
	if sp.Node == dp.Node {
		return None, ErrSameNode
	}
	if prev, ok := g.IncomingEdge(dst); ok {
		g.edges[prev.ID].dead = true
	}
	id := EdgeID(len(g.edges))
	g.edges = append(g.edges, Edge{ID: id, Src: src, Dst: dst})
	dp.Value = sp.Value
	return id, nil
}

// Disconnect removes the edge. The destination port keeps the last value
// it held - deliberate last-known-good policy, not a bug.
func (g *Graph) Disconnect(id EdgeID) error {
	e, err := g.Edge(id)
	if err != nil {
		return err
	}
	e.dead = true
	return nil
}

// RewireFromInput detaches the incoming edge of an input port, if any, and
// returns its source port so the caller can continue a drag as if it
// originated there. Returns (None, false) when the input has no edge.
func (g *Graph) RewireFromInput(dst PortID) (PortID, bool) {
	e, ok := g.IncomingEdge(dst)
	if !ok {
		return None, false
	}
	e.dead = true
	return e.Src, true
}

// Node resolves a node handle
func (g *Graph) Node(id NodeID) (*Node, error) {
	if id < 0 || int(id) >= len(g.nodes) || g.nodes[id].dead {
		return nil, ErrNodeNotFound
	}
	return &g.nodes[id], nil
}

// Port resolves a port handle
func (g *Graph) Port(id PortID) (*Port, error) {
	if id < 0 || int(id) >= len(g.ports) || g.ports[id].dead {
		return nil, ErrPortNotFound
	}
	return &g.ports[id], nil
}

// Edge resolves an edge handle
func (g *Graph) Edge(id EdgeID) (*Edge, error) {
	if id < 0 || int(id) >= len(g.edges) || g.edges[id].dead {
		return nil, ErrEdgeNotFound
	}
	return &g.edges[id], nil
}

// IncomingEdge returns the edge targeting an input port. At most one such
// edge exists at any time.
func (g *Graph) IncomingEdge(dst PortID) (*Edge, bool) {
	for i := range g.edges {
		if !g.edges[i].dead && g.edges[i].Dst == dst {
			return &g.edges[i], true
		}
	}
	return nil, false
}

// OutgoingEdges returns the edges sourced at an output port, in creation
// order (fan-out)
func (g *Graph) OutgoingEdges(src PortID) []*Edge {
	var out []*Edge
	for i := range g.edges {
		if !g.edges[i].dead && g.edges[i].Src == src {
			out = append(out, &g.edges[i])
		}
	}
	return out
}

// Nodes returns all live nodes in creation order
func (g *Graph) Nodes() []*Node {
	var out []*Node
	for i := range g.nodes {
		if !g.nodes[i].dead {
			out = append(out, &g.nodes[i])
		}
	}
	return out
}

// Edges returns all live edges in creation order
func (g *Graph) Edges() []*Edge {
	var out []*Edge
	for i := range g.edges {
		if !g.edges[i].dead {
			out = append(out, &g.edges[i])
		}
	}
	return out
}

// SourceNodes returns the handles of all live nodes with zero input ports,
// in creation order. These are the roots of a full refresh.
func (g *Graph) SourceNodes() []NodeID {
	var out []NodeID
	for i := range g.nodes {
		if !g.nodes[i].dead && g.nodes[i].IsSource() {
			out = append(out, g.nodes[i].ID)
		}
	}
	return out
}

// NodeCount returns the number of live nodes
func (g *Graph) NodeCount() int {
	count := 0
	for i := range g.nodes {
		if !g.nodes[i].dead {
			count++
		}
	}
	return count
}

// EdgeCount returns the number of live edges
func (g *Graph) EdgeCount() int {
	count := 0
	for i := range g.edges {
		if !g.edges[i].dead {
			count++
		}
	}
	return count
}
