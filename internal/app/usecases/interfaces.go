package usecases

import (
	"github.com/patchbay/patchbay/internal/core/catalog"
	"github.com/patchbay/patchbay/internal/core/graph"
)

// ControlSource supplies the control-widget value for a node. The
// evaluator is the active side: it pulls once per node evaluation.
// PRINCIPLES:
// - SRP: Only responsible for control values
// - DIP: Used for dependency injection; the UI binding implements it
type ControlSource interface {
	ControlValue(id graph.NodeID) catalog.Value
}

// RefreshNotifier receives display-refresh signals after a top-level pass.
// Signals fire only for nodes flagged as currently inspected, to avoid
// unnecessary UI churn.
type RefreshNotifier interface {
	Refresh(id graph.NodeID)
}

// ControlFunc adapts a plain function to the ControlSource interface
type ControlFunc func(id graph.NodeID) catalog.Value

// ControlValue calls f
func (f ControlFunc) ControlValue(id graph.NodeID) catalog.Value {
	return f(id)
}

// NotifyFunc adapts a plain function to the RefreshNotifier interface
type NotifyFunc func(id graph.NodeID)

// Refresh calls f
func (f NotifyFunc) Refresh(id graph.NodeID) {
	f(id)
}

// StoredControls is the default ControlSource: it reads the control value
// stored on the node record itself.
type StoredControls struct {
	Graph *graph.Graph
}

// ControlValue returns the node's stored control, or nil for unknown nodes
func (s StoredControls) ControlValue(id graph.NodeID) catalog.Value {
	n, err := s.Graph.Node(id)
	if err != nil {
		return nil
	}
	return n.Control
}

// NopNotifier discards refresh signals
type NopNotifier struct{}

// Refresh does nothing
func (NopNotifier) Refresh(graph.NodeID) {}
