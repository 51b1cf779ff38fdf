package usecases

import (
	"log/slog"

	"github.com/patchbay/patchbay/internal/core/catalog"
	"github.com/patchbay/patchbay/internal/core/graph"
	"github.com/patchbay/patchbay/internal/infrastructure/metrics"
	"github.com/patchbay/patchbay/internal/logging"
)

// DragState identifies the wiring state machine's current state
type DragState string

const (
	// DragIdle means no drag is in progress
	DragIdle DragState = "idle"
	// DragWiring means a wire is being dragged from an origin port
	DragWiring DragState = "wiring"
	// DragChoosing means the wire was dropped on empty canvas and a type
	// suggestion is pending
	DragChoosing DragState = "choosing"
)

// Wiring implements the interactive connection protocol
// PRINCIPLES:
// - SRP: Gesture state only; topology rules live in the graph store
// - State machine: Idle -> Wiring -> {connected | choosing | cancelled}
type Wiring struct {
	graph   *graph.Graph
	catalog *catalog.Catalog
	eval    *Evaluator
	log     *slog.Logger

	state  DragState
	origin graph.PortID
	dropX  float64
	dropY  float64
}

// NewWiring creates the wiring protocol over a graph, its catalog, and the
// evaluator used to schedule the destination node after a connection.
func NewWiring(g *graph.Graph, c *catalog.Catalog, eval *Evaluator, log *slog.Logger) *Wiring {
	if log == nil {
		log = logging.NewNop()
	}
	return &Wiring{
		graph:   g,
		catalog: c,
		eval:    eval,
		log:     log,
		state:   DragIdle,
		origin:  graph.None,
	}
}

// State returns the current protocol state
func (w *Wiring) State() DragState {
	return w.state
}

// Origin returns the port the active drag originates from, or graph.None
func (w *Wiring) Origin() graph.PortID {
	if w.state == DragIdle {
		return graph.None
	}
	return w.origin
}

// BeginDrag starts a drag from a port. Dragging from an input port that
// already has an incoming edge detaches that edge and continues the drag
// from its source port instead: the user is moving the existing wire. The
// detached edge is not restored on cancel.
func (w *Wiring) BeginDrag(origin graph.PortID) error {
	if w.state != DragIdle {
		return ErrDragInProgress
	}
	p, err := w.graph.Port(origin)
	if err != nil {
		return err
	}
	if p.IsInput() {
		if src, ok := w.graph.RewireFromInput(origin); ok {
			w.log.Debug("drag rewired from connected input", "input", origin, "source", src)
			metrics.Disconnected()
			origin = src
		}
	}
	w.state = DragWiring
	w.origin = origin
	return nil
}

// DropOnPort completes the drag on a target port. A compatible target
// (opposite direction, different node) produces a connection and the new
// destination node is evaluated. An incompatible target cancels the drag
// and leaves the topology unchanged; the error reports why.
func (w *Wiring) DropOnPort(target graph.PortID) (graph.EdgeID, error) {
	if w.state != DragWiring {
		return graph.None, ErrNotDragging
	}
	origin := w.origin
	w.reset()

	op, err := w.graph.Port(origin)
	if err != nil {
		metrics.DragFinished("cancelled")
		return graph.None, err
	}
	tp, err := w.graph.Port(target)
	if err != nil {
		metrics.DragFinished("cancelled")
		return graph.None, err
	}

	src, dst := origin, target
	if op.IsInput() && tp.IsOutput() {
		src, dst = target, origin
	}
	edge, err := w.graph.Connect(src, dst)
	if err != nil {
		metrics.DragFinished("cancelled")
		return graph.None, err
	}
	metrics.Connected()
	metrics.DragFinished("connected")

	w.evaluateDestination(dst)
	return edge, nil
}

// DropOnCanvas releases the drag over empty space and returns the sorted
// names of catalog types that could accept the wire: those with at least
// one port of the direction opposite the drag origin. The protocol then
// waits in the choosing state for ChooseType or Cancel.
func (w *Wiring) DropOnCanvas(x, y float64) ([]string, error) {
	if w.state != DragWiring {
		return nil, ErrNotDragging
	}
	op, err := w.graph.Port(w.origin)
	if err != nil {
		w.reset()
		metrics.DragFinished("cancelled")
		return nil, err
	}

	var names []string
	for _, t := range w.catalog.Types() {
		if op.IsOutput() && t.HasInputs() {
			names = append(names, t.Name)
		} else if op.IsInput() && t.HasOutputs() {
			names = append(names, t.Name)
		}
	}

	w.state = DragChoosing
	w.dropX, w.dropY = x, y
	return names, nil
}

// ChooseType resolves a pending suggestion: it instantiates the chosen
// type at the drop position and auto-wires the first port of the
// appropriate direction on the new node to the drag origin, under the
// same single-incoming-edge rule as any connect.
func (w *Wiring) ChooseType(name string) (graph.NodeID, error) {
	if w.state != DragChoosing {
		return graph.None, ErrNoSuggestion
	}
	origin := w.origin
	x, y := w.dropX, w.dropY
	w.reset()

	op, err := w.graph.Port(origin)
	if err != nil {
		metrics.DragFinished("cancelled")
		return graph.None, err
	}
	typ, err := w.catalog.Lookup(name)
	if err != nil {
		metrics.DragFinished("cancelled")
		return graph.None, err
	}
	if op.IsOutput() && !typ.HasInputs() || op.IsInput() && !typ.HasOutputs() {
		metrics.DragFinished("cancelled")
		return graph.None, ErrIncompatibleType
	}

	id, err := w.graph.AddNode(name, x, y)
	if err != nil {
		metrics.DragFinished("cancelled")
		return graph.None, err
	}
	metrics.NodeCreated(name)
	n, _ := w.graph.Node(id)

	var src, dst graph.PortID
	if op.IsOutput() {
		src, dst = origin, n.Inputs[0]
	} else {
		src, dst = n.Outputs[0], origin
	}
	if _, err := w.graph.Connect(src, dst); err != nil {
		// The node was placed but the wire could not land; the drop still
		// counts as finished.
		w.log.Warn("auto-wire failed after type choice", "type", name, "error", err)
		metrics.DragFinished("dropped")
		return id, nil
	}
	metrics.Connected()
	metrics.DragFinished("dropped")

	w.evaluateDestination(dst)
	return id, nil
}

// Cancel abandons the drag in any state. The in-progress edge is
// discarded; no further topology change happens.
func (w *Wiring) Cancel() {
	if w.state != DragIdle {
		metrics.DragFinished("cancelled")
	}
	w.reset()
}

func (w *Wiring) reset() {
	w.state = DragIdle
	w.origin = graph.None
	w.dropX, w.dropY = 0, 0
}

func (w *Wiring) evaluateDestination(dst graph.PortID) {
	p, err := w.graph.Port(dst)
	if err != nil {
		return
	}
	if err := w.eval.Evaluate(p.Node); err != nil {
		w.log.Warn("post-connect evaluation failed", "node", p.Node, "error", err)
	}
}
