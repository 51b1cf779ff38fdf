// Package integration exercises whole-patch scenarios through the public
// facade, driving it the way a canvas client would.
package integration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patchbay/patchbay/pkg/patchbay"
)

// harness wraps a patch with require-on-error builders so scenarios read
// as wiring instructions rather than error plumbing.
type harness struct {
	t     *testing.T
	patch *patchbay.Patch
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return &harness{t: t, patch: patchbay.New()}
}

func (h *harness) node(typeName string, x, y float64) patchbay.NodeID {
	h.t.Helper()
	id, err := h.patch.AddNode(typeName, x, y)
	require.NoError(h.t, err)
	return id
}

func (h *harness) control(id patchbay.NodeID, v patchbay.Value) {
	h.t.Helper()
	require.NoError(h.t, h.patch.SetControl(id, v))
}

func (h *harness) in(id patchbay.NodeID, name string) patchbay.PortID {
	h.t.Helper()
	info, err := h.patch.Describe(id)
	require.NoError(h.t, err)
	for _, p := range info.Inputs {
		if p.Name == name {
			return p.ID
		}
	}
	h.t.Fatalf("node %d has no input %q", id, name)
	return patchbay.None
}

func (h *harness) out(id patchbay.NodeID, name string) patchbay.PortID {
	h.t.Helper()
	info, err := h.patch.Describe(id)
	require.NoError(h.t, err)
	for _, p := range info.Outputs {
		if p.Name == name {
			return p.ID
		}
	}
	h.t.Fatalf("node %d has no output %q", id, name)
	return patchbay.None
}

func (h *harness) wire(src, dst patchbay.PortID) patchbay.EdgeID {
	h.t.Helper()
	id, err := h.patch.Connect(src, dst)
	require.NoError(h.t, err)
	return id
}

// value reads the cached value of a named output port.
func (h *harness) value(id patchbay.NodeID, name string) patchbay.Value {
	h.t.Helper()
	info, err := h.patch.Describe(id)
	require.NoError(h.t, err)
	for _, p := range info.Outputs {
		if p.Name == name {
			return p.Value
		}
	}
	h.t.Fatalf("node %d has no output %q", id, name)
	return nil
}

// number adds a Number source holding v.
func (h *harness) number(v float64, x, y float64) patchbay.NodeID {
	h.t.Helper()
	id := h.node("Number", x, y)
	h.control(id, v)
	return id
}

func TestPatch_AdditionScenario(t *testing.T) {
	h := newHarness(t)

	two := h.number(2, 40, 80)
	three := h.number(3, 40, 200)
	add := h.node("Add", 260, 140)

	h.wire(h.out(two, "Value"), h.in(add, "A"))
	h.wire(h.out(three, "Value"), h.in(add, "B"))
	assert.Equal(t, 5.0, h.value(add, "Result"))

	// Turning either knob refreshes the sum.
	h.control(two, 10.0)
	assert.Equal(t, 13.0, h.value(add, "Result"))
	h.control(three, 4.0)
	assert.Equal(t, 14.0, h.value(add, "Result"))
}

func TestPatch_DivisionByZeroYieldsZero(t *testing.T) {
	h := newHarness(t)

	num := h.number(10, 40, 80)
	den := h.number(0, 40, 200)
	div := h.node("Divide", 260, 140)

	h.wire(h.out(num, "Value"), h.in(div, "A"))
	h.wire(h.out(den, "Value"), h.in(div, "B"))
	assert.Equal(t, 0.0, h.value(div, "Result"))

	h.control(den, 4.0)
	assert.Equal(t, 2.5, h.value(div, "Result"))
}

func TestPatch_FanOut(t *testing.T) {
	h := newHarness(t)

	src := h.number(0, 40, 140)
	neg := h.node("Negate", 260, 40)
	abs := h.node("Abs", 260, 140)
	round := h.node("Round", 260, 240)

	h.wire(h.out(src, "Value"), h.in(neg, "In"))
	h.wire(h.out(src, "Value"), h.in(abs, "In"))
	h.wire(h.out(src, "Value"), h.in(round, "In"))

	// One control change refreshes every branch.
	h.control(src, -7.6)
	assert.Equal(t, 7.6, h.value(neg, "Result"))
	assert.Equal(t, 7.6, h.value(abs, "Result"))
	assert.Equal(t, -8.0, h.value(round, "Result"))
}

func TestPatch_ConnectingOccupiedInputReplacesEdge(t *testing.T) {
	h := newHarness(t)

	first := h.number(1, 40, 80)
	second := h.number(2, 40, 200)
	add := h.node("Add", 260, 140)

	h.wire(h.out(first, "Value"), h.in(add, "A"))
	assert.Equal(t, 1.0, h.value(add, "Result"))

	h.wire(h.out(second, "Value"), h.in(add, "A"))
	assert.Equal(t, 2.0, h.value(add, "Result"))

	// The old edge is gone, not stacked behind the new one.
	_, edges := h.patch.Stats()
	assert.Equal(t, 1, edges)
	h.control(first, 50.0)
	assert.Equal(t, 2.0, h.value(add, "Result"))
}

func TestPatch_ListPipeline(t *testing.T) {
	h := newHarness(t)

	end := h.number(5, 40, 80)
	step := h.number(1, 40, 200)
	rng := h.node("Range", 260, 140)
	sum := h.node("Sum", 480, 80)
	length := h.node("Length", 480, 200)

	h.wire(h.out(end, "Value"), h.in(rng, "End"))
	h.wire(h.out(step, "Value"), h.in(rng, "Step"))
	h.wire(h.out(rng, "List"), h.in(sum, "In"))
	h.wire(h.out(rng, "List"), h.in(length, "In"))

	// Start defaults to 0, so the range is [0 1 2 3 4].
	assert.Equal(t, 10.0, h.value(sum, "Result"))
	assert.Equal(t, 5.0, h.value(length, "Result"))

	// Comparing the sum against an expectation closes the loop in logic.
	expected := h.number(10, 480, 320)
	equals := h.node("Equals", 700, 140)
	h.wire(h.out(sum, "Result"), h.in(equals, "A"))
	h.wire(h.out(expected, "Value"), h.in(equals, "B"))
	assert.Equal(t, true, h.value(equals, "Result"))

	h.control(end, 6.0)
	assert.Equal(t, 15.0, h.value(sum, "Result"))
	assert.Equal(t, false, h.value(equals, "Result"))
}

func TestPatch_TextPipeline(t *testing.T) {
	h := newHarness(t)

	text := h.node("Text", 40, 80)
	h.control(text, "signal,noise")
	sep := h.node("Text", 40, 200)
	h.control(sep, ",")

	split := h.node("Split", 260, 140)
	h.wire(h.out(text, "Value"), h.in(split, "In"))
	h.wire(h.out(sep, "Value"), h.in(split, "Sep"))

	length := h.node("Length", 480, 80)
	h.wire(h.out(split, "List"), h.in(length, "In"))
	assert.Equal(t, 2.0, h.value(length, "Result"))

	pick := h.number(1, 260, 320)
	index := h.node("Index", 480, 200)
	h.wire(h.out(split, "List"), h.in(index, "List"))
	h.wire(h.out(pick, "Value"), h.in(index, "Index"))

	upper := h.node("Upper", 700, 200)
	h.wire(h.out(index, "Result"), h.in(upper, "In"))
	assert.Equal(t, "NOISE", h.value(upper, "Result"))

	h.control(pick, 0.0)
	assert.Equal(t, "SIGNAL", h.value(upper, "Result"))
}

func TestPatch_SwitchRoutes(t *testing.T) {
	h := newHarness(t)

	idx := h.number(2, 40, 80)
	sw := h.node("Switch", 260, 140)
	h.wire(h.out(idx, "Value"), h.in(sw, "Index"))

	for i, s := range []string{"x", "y", "z"} {
		text := h.node("Text", 40, 200+float64(i)*100)
		h.control(text, s)
		h.wire(h.out(text, "Value"), h.in(sw, string(rune('A'+i))))
	}

	assert.Equal(t, "z", h.value(sw, "Result"))

	h.control(idx, 0.0)
	assert.Equal(t, "x", h.value(sw, "Result"))
	h.control(idx, 9.0)
	assert.Nil(t, h.value(sw, "Result"))
}

func TestPatch_GateToggles(t *testing.T) {
	h := newHarness(t)

	open := h.node("Toggle", 40, 80)
	h.control(open, true)
	val := h.number(42, 40, 200)
	gate := h.node("Gate", 260, 140)

	h.wire(h.out(open, "Value"), h.in(gate, "Open"))
	h.wire(h.out(val, "Value"), h.in(gate, "Value"))
	assert.Equal(t, 42.0, h.value(gate, "Result"))

	h.control(open, false)
	assert.Nil(t, h.value(gate, "Result"))

	h.control(open, true)
	assert.Equal(t, 42.0, h.value(gate, "Result"))
}

func TestPatch_CycleTerminates(t *testing.T) {
	h := newHarness(t)

	seed := h.number(0, 40, 140)
	a := h.node("Add", 260, 80)
	b := h.node("Add", 480, 140)
	c := h.node("Add", 260, 240)

	h.wire(h.out(seed, "Value"), h.in(a, "B"))
	h.wire(h.out(a, "Result"), h.in(b, "A"))
	h.wire(h.out(b, "Result"), h.in(c, "A"))
	h.wire(h.out(c, "Result"), h.in(a, "A"))

	// A pass visits each node once, so the wave stops where it started.
	h.control(seed, 1.0)
	assert.Equal(t, 1.0, h.value(a, "Result"))
	assert.Equal(t, 1.0, h.value(b, "Result"))
	assert.Equal(t, 1.0, h.value(c, "Result"))

	// Each further trigger feeds the ring's tail value back into its head,
	// so the accumulator climbs by the seed every time.
	for i := 0; i < 3; i++ {
		require.NoError(t, h.patch.Evaluate(a))
		want := float64(i + 2)
		assert.Equal(t, want, h.value(a, "Result"))
		assert.Equal(t, want, h.value(b, "Result"))
		assert.Equal(t, want, h.value(c, "Result"))
	}
}

func TestPatch_DiamondSettlesOnSecondPass(t *testing.T) {
	h := newHarness(t)

	src := h.number(1, 40, 140)
	neg := h.node("Negate", 260, 80)
	abs := h.node("Abs", 260, 240)
	join := h.node("Add", 480, 140)

	h.wire(h.out(src, "Value"), h.in(neg, "In"))
	h.wire(h.out(src, "Value"), h.in(abs, "In"))
	h.wire(h.out(neg, "Result"), h.in(join, "A"))
	h.wire(h.out(abs, "Result"), h.in(join, "B"))
	assert.Equal(t, 0.0, h.value(join, "Result"))

	// One pass evaluates the join when the first branch reaches it; the
	// second branch delivers afterwards and leaves the sum one pass stale.
	h.control(src, 5.0)
	assert.Equal(t, -4.0, h.value(join, "Result"))

	// A full refresh reads both delivered inputs and settles the sum.
	h.patch.EvaluateAll()
	assert.Equal(t, 0.0, h.value(join, "Result"))
}

func TestPatch_RepeatedEvaluationIsStable(t *testing.T) {
	h := newHarness(t)

	src := h.number(3, 40, 80)
	neg := h.node("Negate", 260, 80)
	abs := h.node("Abs", 480, 80)
	h.wire(h.out(src, "Value"), h.in(neg, "In"))
	h.wire(h.out(neg, "Result"), h.in(abs, "In"))

	for i := 0; i < 3; i++ {
		require.NoError(t, h.patch.Evaluate(src))
		assert.Equal(t, -3.0, h.value(neg, "Result"))
		assert.Equal(t, 3.0, h.value(abs, "Result"))
	}
}

func TestPatch_RemoveNodeMidChain(t *testing.T) {
	h := newHarness(t)

	src := h.number(4, 40, 80)
	neg := h.node("Negate", 260, 80)
	abs := h.node("Abs", 480, 80)
	h.wire(h.out(src, "Value"), h.in(neg, "In"))
	h.wire(h.out(neg, "Result"), h.in(abs, "In"))
	assert.Equal(t, 4.0, h.value(abs, "Result"))

	require.NoError(t, h.patch.RemoveNode(neg))
	nodes, edges := h.patch.Stats()
	assert.Equal(t, 2, nodes)
	assert.Equal(t, 0, edges)

	// The orphaned tail keeps its last value until rewired.
	assert.Equal(t, 4.0, h.value(abs, "Result"))
	h.control(src, -9.0)
	assert.Equal(t, 4.0, h.value(abs, "Result"))

	h.wire(h.out(src, "Value"), h.in(abs, "In"))
	assert.Equal(t, 9.0, h.value(abs, "Result"))
}

func TestPatch_DragWorkflow(t *testing.T) {
	h := newHarness(t)

	first := h.number(6, 40, 80)
	second := h.number(8, 40, 200)
	neg := h.node("Negate", 260, 140)

	h.wire(h.out(first, "Value"), h.in(neg, "In"))
	assert.Equal(t, -6.0, h.value(neg, "Result"))

	// A cancelled drag leaves the patch untouched.
	require.NoError(t, h.patch.BeginDrag(h.out(second, "Value")))
	assert.Equal(t, patchbay.DragWiring, h.patch.DragState())
	h.patch.CancelDrag()
	assert.Equal(t, patchbay.DragIdle, h.patch.DragState())
	assert.Equal(t, -6.0, h.value(neg, "Result"))

	// Dropping on the occupied input replaces the feed.
	require.NoError(t, h.patch.BeginDrag(h.out(second, "Value")))
	_, err := h.patch.DropOnPort(h.in(neg, "In"))
	require.NoError(t, err)
	assert.Equal(t, patchbay.DragIdle, h.patch.DragState())
	assert.Equal(t, -8.0, h.value(neg, "Result"))
	_, edges := h.patch.Stats()
	assert.Equal(t, 1, edges)

	// Dropping on empty canvas offers compatible types; choosing one
	// appends it already wired and evaluated.
	require.NoError(t, h.patch.BeginDrag(h.out(neg, "Result")))
	suggestions, err := h.patch.DropOnCanvas(480, 140)
	require.NoError(t, err)
	assert.Equal(t, patchbay.DragChoosing, h.patch.DragState())
	assert.Contains(t, suggestions, "Abs")

	abs, err := h.patch.ChooseType("Abs")
	require.NoError(t, err)
	assert.Equal(t, patchbay.DragIdle, h.patch.DragState())
	assert.Equal(t, 8.0, h.value(abs, "Result"))

	info, err := h.patch.Describe(abs)
	require.NoError(t, err)
	assert.Equal(t, 480.0, info.X)
	assert.Equal(t, 140.0, info.Y)
}
