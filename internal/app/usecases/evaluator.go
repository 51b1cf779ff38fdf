package usecases

import (
	"log/slog"

	"github.com/patchbay/patchbay/internal/core/catalog"
	"github.com/patchbay/patchbay/internal/core/graph"
	"github.com/patchbay/patchbay/internal/infrastructure/metrics"
	"github.com/patchbay/patchbay/internal/logging"
)

// Evaluator implements the value propagation algorithm
// PRINCIPLES:
// - SRP: Recompute and push values; topology mutation lives in the graph store
// - Explicit work-list instead of recursion: stack usage is independent of
//   graph depth, and cycles terminate through the per-pass visited set
type Evaluator struct {
	graph     *graph.Graph
	controls  ControlSource
	notifier  RefreshNotifier
	log       *slog.Logger
	inspected map[graph.NodeID]bool
}

// NewEvaluator creates an evaluator over the given graph. A nil controls
// source defaults to the node records' own stored controls; a nil notifier
// and logger default to no-ops.
func NewEvaluator(g *graph.Graph, controls ControlSource, notifier RefreshNotifier, log *slog.Logger) *Evaluator {
	if controls == nil {
		controls = StoredControls{Graph: g}
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if log == nil {
		log = logging.NewNop()
	}
	return &Evaluator{
		graph:     g,
		controls:  controls,
		notifier:  notifier,
		log:       log,
		inspected: make(map[graph.NodeID]bool),
	}
}

// Evaluate runs one top-level propagation pass from the trigger node with a
// fresh visited set. Within the pass each reachable node is evaluated at
// most once; values are still pushed over edges into already-visited nodes,
// they just do not trigger another evaluation.
func (e *Evaluator) Evaluate(id graph.NodeID) error {
	if _, err := e.graph.Node(id); err != nil {
		return err
	}
	visited := make(map[graph.NodeID]bool)
	order := e.run(id, visited)
	metrics.EvalPass()
	e.notifyInspected(order)
	return nil
}

// EvaluateAll runs a manual full refresh: every node with zero input ports
// is a root, each started with its own fresh visited set.
func (e *Evaluator) EvaluateAll() {
	for _, id := range e.graph.SourceNodes() {
		visited := make(map[graph.NodeID]bool)
		order := e.run(id, visited)
		metrics.EvalPass()
		e.notifyInspected(order)
	}
}

// SetInspected flags or clears a node as currently inspected. Refresh
// notifications fire only for inspected nodes touched by a pass.
func (e *Evaluator) SetInspected(id graph.NodeID, inspected bool) {
	if inspected {
		e.inspected[id] = true
		return
	}
	delete(e.inspected, id)
}

// delivery is one pending value transfer over an edge
type delivery struct {
	src graph.PortID
	dst graph.PortID
}

// run drains the work-list rooted at the trigger node and returns the node
// visit order. The LIFO stack with reverse-order pushes reproduces the
// depth-first order of plain recursion: an edge's value transfer happens
// only after the previous sibling edge's entire subtree completed, and a
// visited source node's outputs cannot change again within the pass, so
// transferring at pop time reads the same value recursion would.
func (e *Evaluator) run(trigger graph.NodeID, visited map[graph.NodeID]bool) []graph.NodeID {
	var order []graph.NodeID
	var stack []delivery

	visit := func(id graph.NodeID) {
		if visited[id] {
			return
		}
		visited[id] = true
		order = append(order, id)
		e.evalNode(id)

		n, err := e.graph.Node(id)
		if err != nil {
			return
		}
		var pending []delivery
		for _, out := range n.Outputs {
			for _, edge := range e.graph.OutgoingEdges(out) {
				pending = append(pending, delivery{src: edge.Src, dst: edge.Dst})
			}
		}
		for i := len(pending) - 1; i >= 0; i-- {
			stack = append(stack, pending[i])
		}
	}

	visit(trigger)
	for len(stack) > 0 {
		d := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		src, err := e.graph.Port(d.src)
		if err != nil {
			continue
		}
		dst, err := e.graph.Port(d.dst)
		if err != nil {
			continue
		}
		dst.Value = src.Value
		visit(dst.Node)
	}
	return order
}

// evalNode recomputes one node: gather inputs from the input ports' cached
// values, pull the control value, call the type's evaluate function, and
// write the returned outputs. Output ports absent from the result keep
// their previous value.
func (e *Evaluator) evalNode(id graph.NodeID) {
	n, err := e.graph.Node(id)
	if err != nil {
		return
	}

	inputs := make(map[string]catalog.Value, len(n.Inputs))
	for _, pid := range n.Inputs {
		if p, err := e.graph.Port(pid); err == nil {
			inputs[p.Name] = p.Value
		}
	}

	var control catalog.Value
	if n.Type != nil && n.Type.HasControl() {
		control = e.controls.ControlValue(id)
	}

	outputs := e.callEvaluate(n, inputs, control)
	for _, pid := range n.Outputs {
		p, err := e.graph.Port(pid)
		if err != nil {
			continue
		}
		if v, ok := outputs[p.Name]; ok {
			p.Value = v
		}
	}
	metrics.NodeEvaluated(n.TypeName)
}

// callEvaluate invokes the evaluate function behind the per-node failure
// boundary: an error return or a panic is logged, counted, and treated as
// an empty output map. The pass continues; the node's stale outputs are
// not cleared.
func (e *Evaluator) callEvaluate(n *graph.Node, inputs map[string]catalog.Value, control catalog.Value) (outputs map[string]catalog.Value) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Warn("node evaluation panicked", "node", n.ID, "type", n.TypeName, "panic", r)
			metrics.EvalFailure(n.TypeName)
			outputs = nil
		}
	}()

	if n.Type == nil || n.Type.Evaluate == nil {
		return nil
	}
	out, err := n.Type.Evaluate(inputs, control)
	if err != nil {
		e.log.Warn("node evaluation failed", "node", n.ID, "type", n.TypeName, "error", err)
		metrics.EvalFailure(n.TypeName)
		return nil
	}
	return out
}

func (e *Evaluator) notifyInspected(order []graph.NodeID) {
	for _, id := range order {
		if e.inspected[id] {
			e.notifier.Refresh(id)
		}
	}
}
