package patchbay

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/patchbay/patchbay/internal/app/usecases"
	"github.com/patchbay/patchbay/internal/core/catalog"
	"github.com/patchbay/patchbay/internal/core/graph"
	"github.com/patchbay/patchbay/internal/core/snapshot"
	"github.com/patchbay/patchbay/internal/infrastructure/metrics"
	"github.com/patchbay/patchbay/internal/logging"
	"github.com/patchbay/patchbay/pkg/packs"
)

// Re-export core types for convenience
type (
	// NodeID addresses a node in the patch
	NodeID = graph.NodeID
	// PortID addresses a port in the patch
	PortID = graph.PortID
	// EdgeID addresses an edge in the patch
	EdgeID = graph.EdgeID
	// Value is a dynamically typed port value
	Value = catalog.Value
	// NodeType describes a registered node kind
	NodeType = catalog.NodeType
	// Pack registers a group of node types
	Pack = catalog.Pack
	// Document is a captured patch ready for persistence
	Document = snapshot.Document
	// Store persists captured documents
	Store = snapshot.Store
	// DragState identifies the wiring protocol state
	DragState = usecases.DragState
	// ControlSource supplies control values to the evaluator
	ControlSource = usecases.ControlSource
	// RefreshNotifier receives display-refresh signals
	RefreshNotifier = usecases.RefreshNotifier
	// ControlFunc adapts a plain function to ControlSource
	ControlFunc = usecases.ControlFunc
	// NotifyFunc adapts a plain function to RefreshNotifier
	NotifyFunc = usecases.NotifyFunc
)

// None marks the absence of a handle
const None = graph.None

// Wiring protocol states
const (
	DragIdle     = usecases.DragIdle
	DragWiring   = usecases.DragWiring
	DragChoosing = usecases.DragChoosing
)

// PortInfo is a read-only view of one port
type PortInfo struct {
	ID    PortID `json:"id"`
	Name  string `json:"name"`
	Value Value  `json:"value,omitempty"`
}

// NodeInfo is a read-only view of one node with its cached port values
type NodeInfo struct {
	ID      NodeID     `json:"id"`
	Type    string     `json:"type"`
	X       float64    `json:"x"`
	Y       float64    `json:"y"`
	Control Value      `json:"control,omitempty"`
	Inputs  []PortInfo `json:"inputs"`
	Outputs []PortInfo `json:"outputs"`
}

// EdgeInfo is a read-only view of one edge
type EdgeInfo struct {
	ID  EdgeID `json:"id"`
	Src PortID `json:"src"`
	Dst PortID `json:"dst"`
}

// Patch is the façade over one graph, its catalog, and its evaluator
// PRINCIPLES:
// - KISS: One mutex, one graph, plain methods
// - DIP: Stores, control sources, and notifiers arrive as interfaces
type Patch struct {
	mu      sync.Mutex
	catalog *catalog.Catalog
	graph   *graph.Graph
	eval    *usecases.Evaluator
	wiring  *usecases.Wiring

	log      *slog.Logger
	controls usecases.ControlSource
	notifier usecases.RefreshNotifier
	packs    []Pack
}

// Option configures a Patch at construction time
type Option func(*Patch)

// WithLogger supplies the logger used by the evaluator and the wiring
// protocol. The default is a no-op logger.
func WithLogger(log *slog.Logger) Option {
	return func(p *Patch) { p.log = log }
}

// WithPacks replaces the default builtin packs with the given ones. Passing
// no packs yields an empty catalog.
func WithPacks(ps ...Pack) Option {
	return func(p *Patch) { p.packs = append([]Pack{}, ps...) }
}

// WithControlSource overrides where the evaluator pulls control values
// from. The default reads the control stored on the node record, which is
// what SetControl writes.
func WithControlSource(cs ControlSource) Option {
	return func(p *Patch) { p.controls = cs }
}

// WithNotifier supplies the refresh notifier invoked for inspected nodes
// after each pass.
func WithNotifier(n RefreshNotifier) Option {
	return func(p *Patch) { p.notifier = n }
}

// New constructs an empty patch. Unless WithPacks overrides them, the
// builtin math, logic, list, and text packs are registered.
func New(opts ...Option) *Patch {
	p := &Patch{packs: nil}
	for _, opt := range opts {
		opt(p)
	}
	if p.log == nil {
		p.log = logging.NewNop()
	}
	if p.packs == nil {
		p.packs = packs.Default()
	}

	p.catalog = catalog.New()
	p.catalog.Apply(p.packs...)
	p.swapGraph(graph.New(p.catalog))
	return p
}

// swapGraph rebinds the evaluator and wiring protocol to g. Inspection
// flags are handle-based and do not survive the swap.
func (p *Patch) swapGraph(g *graph.Graph) {
	p.graph = g
	p.eval = usecases.NewEvaluator(g, p.controls, p.notifier, p.log)
	p.wiring = usecases.NewWiring(g, p.catalog, p.eval, p.log)
	metrics.SetGraphSize(g.NodeCount(), g.EdgeCount())
}

// Types returns all registered node types, sorted by name
func (p *Patch) Types() []*NodeType {
	return p.catalog.Types()
}

// Categories groups registered type names by category
func (p *Patch) Categories() map[string][]string {
	return p.catalog.Categories()
}

// AddNode instantiates a catalog type at the given position
func (p *Patch) AddNode(typeName string, x, y float64) (NodeID, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	id, err := p.graph.AddNode(typeName, x, y)
	if err != nil {
		return None, err
	}
	metrics.NodeCreated(typeName)
	metrics.SetGraphSize(p.graph.NodeCount(), p.graph.EdgeCount())
	p.log.Debug("node added", "node", id, "type", typeName)
	return id, nil
}

// RemoveNode deletes a node and every edge incident to its ports
func (p *Patch) RemoveNode(id NodeID) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.graph.RemoveNode(id); err != nil {
		return err
	}
	p.eval.SetInspected(id, false)
	metrics.NodeRemoved()
	metrics.SetGraphSize(p.graph.NodeCount(), p.graph.EdgeCount())
	p.log.Debug("node removed", "node", id)
	return nil
}

// Connect wires an output port to an input port, displacing any previous
// incoming edge, and evaluates the destination node.
func (p *Patch) Connect(src, dst PortID) (EdgeID, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	edge, err := p.graph.Connect(src, dst)
	if err != nil {
		return None, err
	}
	metrics.Connected()
	metrics.SetGraphSize(p.graph.NodeCount(), p.graph.EdgeCount())

	if dp, err := p.graph.Port(dst); err == nil {
		if err := p.eval.Evaluate(dp.Node); err != nil {
			p.log.Warn("post-connect evaluation failed", "node", dp.Node, "error", err)
		}
	}
	return edge, nil
}

// Disconnect removes an edge. The destination port keeps its last value.
func (p *Patch) Disconnect(id EdgeID) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.graph.Disconnect(id); err != nil {
		return err
	}
	metrics.Disconnected()
	metrics.SetGraphSize(p.graph.NodeCount(), p.graph.EdgeCount())
	return nil
}

// SetControl writes a node's stored control value and evaluates the node,
// propagating downstream. With a custom ControlSource installed the stored
// value is still written but the evaluator reads from that source instead.
func (p *Patch) SetControl(id NodeID, v Value) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	n, err := p.graph.Node(id)
	if err != nil {
		return err
	}
	n.Control = v
	return p.eval.Evaluate(id)
}

// Evaluate runs one propagation pass from the given node
func (p *Patch) Evaluate(id NodeID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.eval.Evaluate(id)
}

// EvaluateAll refreshes the whole patch from its source nodes
func (p *Patch) EvaluateAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.eval.EvaluateAll()
}

// Inspect flags or clears a node as currently inspected. Refresh
// notifications fire only for inspected nodes.
func (p *Patch) Inspect(id NodeID, on bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.eval.SetInspected(id, on)
}

// Describe returns a read-only view of one node
func (p *Patch) Describe(id NodeID) (NodeInfo, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	n, err := p.graph.Node(id)
	if err != nil {
		return NodeInfo{}, err
	}
	return p.nodeInfo(n), nil
}

// Nodes returns read-only views of all live nodes in creation order
func (p *Patch) Nodes() []NodeInfo {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]NodeInfo, 0, p.graph.NodeCount())
	for _, n := range p.graph.Nodes() {
		out = append(out, p.nodeInfo(n))
	}
	return out
}

// Edges returns read-only views of all live edges in creation order
func (p *Patch) Edges() []EdgeInfo {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]EdgeInfo, 0, p.graph.EdgeCount())
	for _, e := range p.graph.Edges() {
		out = append(out, EdgeInfo{ID: e.ID, Src: e.Src, Dst: e.Dst})
	}
	return out
}

// Stats returns the live node and edge counts
func (p *Patch) Stats() (nodes, edges int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.graph.NodeCount(), p.graph.EdgeCount()
}

func (p *Patch) nodeInfo(n *graph.Node) NodeInfo {
	return NodeInfo{
		ID:      n.ID,
		Type:    n.TypeName,
		X:       n.X,
		Y:       n.Y,
		Control: n.Control,
		Inputs:  p.portInfos(n.Inputs),
		Outputs: p.portInfos(n.Outputs),
	}
}

func (p *Patch) portInfos(ids []graph.PortID) []PortInfo {
	out := make([]PortInfo, 0, len(ids))
	for _, pid := range ids {
		port, err := p.graph.Port(pid)
		if err != nil {
			continue
		}
		out = append(out, PortInfo{ID: port.ID, Name: port.Name, Value: port.Value})
	}
	return out
}

// BeginDrag starts an interactive wire drag from a port
func (p *Patch) BeginDrag(origin PortID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.wiring.BeginDrag(origin)
}

// DropOnPort completes the active drag on a target port
func (p *Patch) DropOnPort(target PortID) (EdgeID, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.wiring.DropOnPort(target)
}

// DropOnCanvas releases the active drag over empty space and returns the
// names of catalog types that could accept the wire.
func (p *Patch) DropOnCanvas(x, y float64) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.wiring.DropOnCanvas(x, y)
}

// ChooseType resolves a pending canvas-drop suggestion
func (p *Patch) ChooseType(name string) (NodeID, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.wiring.ChooseType(name)
}

// CancelDrag abandons the active drag, if any
func (p *Patch) CancelDrag() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.wiring.Cancel()
}

// DragState returns the wiring protocol's current state
func (p *Patch) DragState() DragState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.wiring.State()
}

// Capture copies the live patch into a document
func (p *Patch) Capture(name string) *Document {
	p.mu.Lock()
	defer p.mu.Unlock()
	return snapshot.Capture(p.graph, name)
}

// Restore replaces the live patch with the document's graph. Types are
// resolved against the patch's catalog; inspection flags reset.
func (p *Patch) Restore(doc *Document) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	g, err := snapshot.Restore(doc, p.catalog)
	if err != nil {
		return err
	}
	p.swapGraph(g)
	p.log.Info("patch restored", "snapshot", doc.ID, "name", doc.Name)
	return nil
}

// Save captures the patch and persists it to the store. The store call
// happens outside the patch lock.
func (p *Patch) Save(ctx context.Context, store Store, name string) (*Document, error) {
	doc := p.Capture(name)
	if err := store.Put(ctx, doc); err != nil {
		return nil, fmt.Errorf("save snapshot: %w", err)
	}
	metrics.SnapshotOp("save")
	p.log.Info("patch saved", "snapshot", doc.ID, "name", name)
	return doc, nil
}

// Load fetches a document from the store and restores it
func (p *Patch) Load(ctx context.Context, store Store, id string) error {
	doc, err := store.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	metrics.SnapshotOp("load")
	return p.Restore(doc)
}
