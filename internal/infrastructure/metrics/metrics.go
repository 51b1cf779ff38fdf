package metrics

import (
	"expvar"
)

// Evaluator metrics (counters) using expvar maps keyed by node type name.
var (
	evalNodes    = expvar.NewMap("patchbay_eval_nodes_total")
	evalFailures = expvar.NewMap("patchbay_eval_failures_total")
	nodesCreated = expvar.NewMap("patchbay_nodes_created_total")
	dragsTotal   = expvar.NewMap("patchbay_drags_total")
	snapshotOps  = expvar.NewMap("patchbay_snapshot_ops_total")
)

// Graph / trigger metrics.
var (
	evalPassesTotal   = new(expvar.Int)
	connectsTotal     = new(expvar.Int)
	disconnectsTotal  = new(expvar.Int)
	nodesRemovedTotal = new(expvar.Int)
	graphNodes        = new(expvar.Int)
	graphEdges        = new(expvar.Int)
)

func init() {
	expvar.Publish("patchbay_eval_passes_total", evalPassesTotal)
	expvar.Publish("patchbay_connects_total", connectsTotal)
	expvar.Publish("patchbay_disconnects_total", disconnectsTotal)
	expvar.Publish("patchbay_nodes_removed_total", nodesRemovedTotal)
	expvar.Publish("patchbay_graph_nodes", graphNodes)
	expvar.Publish("patchbay_graph_edges", graphEdges)
}

// Evaluator helpers
func NodeEvaluated(typeName string) { evalNodes.Add(typeName, 1) }
func EvalFailure(typeName string) { evalFailures.Add(typeName, 1) }
func EvalPass() { evalPassesTotal.Add(1) }

// Topology helpers
func NodeCreated(typeName string) { nodesCreated.Add(typeName, 1) }
func NodeRemoved() { nodesRemovedTotal.Add(1) }
func Connected() { connectsTotal.Add(1) }
func Disconnected() { disconnectsTotal.Add(1) }
func SetGraphSize(nodes, edges int) {
	graphNodes.Set(int64(nodes))
	graphEdges.Set(int64(edges))
}

// Wiring / snapshot helpers
func DragFinished(outcome string) { dragsTotal.Add(outcome, 1) }
func SnapshotOp(op string) { snapshotOps.Add(op, 1) }
