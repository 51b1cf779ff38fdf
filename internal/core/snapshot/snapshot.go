// Package snapshot provides the persistence documents for graphs: plain
// records capturing nodes, ports, edges, and control values. The engine
// itself never serializes; stores and codecs consume these documents.
package snapshot

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/patchbay/patchbay/internal/core/catalog"
	"github.com/patchbay/patchbay/internal/core/graph"
)

// DocumentVersion tags captured documents for forward compatibility
const DocumentVersion = "1"

// Document represents a captured graph
// PRINCIPLES:
// - KISS: Simple struct with clear fields
// - SRP: Only responsible for snapshot data structure
type Document struct {
	ID        string       `json:"id" validate:"required,uuid4"`
	Name      string       `json:"name" validate:"required,max=128"`
	Nodes     []NodeRecord `json:"nodes"`
	Edges     []EdgeRecord `json:"edges"`
	CreatedAt time.Time    `json:"created_at"`
	Version   string       `json:"version" validate:"omitempty,doc_version"`
}

// NodeRecord captures one node with its control and port values
type NodeRecord struct {
	ID      int32         `json:"id"`
	Type    string        `json:"type" validate:"required"`
	X       float64       `json:"x"`
	Y       float64       `json:"y"`
	Control catalog.Value `json:"control,omitempty"`
	Inputs  []PortRecord  `json:"inputs,omitempty"`
	Outputs []PortRecord  `json:"outputs,omitempty"`
}

// PortRecord captures one port's identity and cached value
type PortRecord struct {
	ID    int32         `json:"id"`
	Name  string        `json:"name"`
	Value catalog.Value `json:"value,omitempty"`
}

// EdgeRecord captures one edge as a pair of captured port ids
type EdgeRecord struct {
	Src int32 `json:"src"`
	Dst int32 `json:"dst"`
}

// Validate ensures document integrity
// PRINCIPLES:
// - SRP: Single responsibility - validation only
// - KISS: Simple validation rules, easy to understand
func (d *Document) Validate() error {
	if d.ID == "" {
		return ErrInvalidSnapshotID
	}
	if d.Name == "" {
		return ErrInvalidSnapshotName
	}
	return nil
}

// Capture copies the live graph into a fresh document. Cached port values
// and control values are captured as-is; nothing is recomputed.
func Capture(g *graph.Graph, name string) *Document {
	doc := &Document{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
		Version:   DocumentVersion,
	}
	for _, n := range g.Nodes() {
		rec := NodeRecord{
			ID:      int32(n.ID),
			Type:    n.TypeName,
			X:       n.X,
			Y:       n.Y,
			Control: n.Control,
		}
		rec.Inputs = capturePorts(g, n.Inputs)
		rec.Outputs = capturePorts(g, n.Outputs)
		doc.Nodes = append(doc.Nodes, rec)
	}
	for _, e := range g.Edges() {
		doc.Edges = append(doc.Edges, EdgeRecord{Src: int32(e.Src), Dst: int32(e.Dst)})
	}
	return doc
}

func capturePorts(g *graph.Graph, ids []graph.PortID) []PortRecord {
	var out []PortRecord
	for _, pid := range ids {
		p, err := g.Port(pid)
		if err != nil {
			continue
		}
		out = append(out, PortRecord{ID: int32(p.ID), Name: p.Name, Value: p.Value})
	}
	return out
}

// Restore rebuilds a live graph from a document against the given catalog.
// Node types are resolved through the catalog, so a document referencing an
// unregistered type fails with catalog.ErrTypeNotFound. Restored port
// values are cached values, not recomputed; captured ports are matched to
// the current type definition by position, and ports beyond the current
// declaration are dropped.
func Restore(doc *Document, c *catalog.Catalog) (*graph.Graph, error) {
	g := graph.New(c)
	portMap := make(map[int32]graph.PortID)

	for _, rec := range doc.Nodes {
		id, err := g.AddNode(rec.Type, rec.X, rec.Y)
		if err != nil {
			return nil, fmt.Errorf("restore node %d (%s): %w", rec.ID, rec.Type, err)
		}
		n, _ := g.Node(id)
		n.Control = rec.Control
		restorePorts(g, portMap, rec.Inputs, n.Inputs)
		restorePorts(g, portMap, rec.Outputs, n.Outputs)
	}

	for _, er := range doc.Edges {
		src, okSrc := portMap[er.Src]
		dst, okDst := portMap[er.Dst]
		if !okSrc || !okDst {
			return nil, fmt.Errorf("restore edge %d->%d: %w", er.Src, er.Dst, ErrDanglingEdge)
		}
		if _, err := g.Connect(src, dst); err != nil {
			return nil, fmt.Errorf("restore edge %d->%d: %w", er.Src, er.Dst, err)
		}
	}
	return g, nil
}

func restorePorts(g *graph.Graph, portMap map[int32]graph.PortID, records []PortRecord, ids []graph.PortID) {
	for i, pr := range records {
		if i >= len(ids) {
			break
		}
		portMap[pr.ID] = ids[i]
		if p, err := g.Port(ids[i]); err == nil {
			p.Value = pr.Value
		}
	}
}
