/*
=================================================================================
FEED-FORWARD BRAIN
=================================================================================

A small explicit node/connection graph (spec.md §4.7): a node table
{id, kind, bias, activation, ...} and a connection list {from, to, weight}.
The graph must be acyclic; AddConnection rejects any edge that would create
one (spec.md §4.7, §7 "Cyclic brain connection request").

Per-node weighted sums are expressed with gonum's mat.VecDense dot product
rather than a hand-rolled loop — promoting gonum from an indirect dependency
elsewhere in the pack (qubicDB-qubicdb/go.mod) to a direct one here, since
this is the one place in Hidra that is genuinely doing small linear algebra
(see SPEC_FULL.md Domain Stack).
=================================================================================
*/
package brain

import (
	"fmt"
	"math"

	"github.com/hidra-sim/hidra/types"
	"gonum.org/v1/gonum/mat"
)

// NodeKind classifies a FeedForward node.
type NodeKind int

const (
	NodeInput NodeKind = iota
	NodeHidden
	NodeOutput
)

// Node is one unit of the feed-forward graph.
type Node struct {
	ID         int
	Kind       NodeKind
	Bias       float64
	Activation types.ActivationFn

	// Meaningful only for NodeInput: which InputSource feeds this node.
	Source InputSource

	// Meaningful only for NodeOutput: which action consuming its value.
	Action OutputAction
}

// Connection is a directed, weighted edge between two node ids.
type Connection struct {
	From, To int
	Weight   float64
}

// FeedForward is a small explicit-topology feed-forward network.
type FeedForward struct {
	nodes       map[int]*Node
	order       []int // topological order: every node after its predecessors
	connections []Connection
	incoming    map[int][]Connection // to -> incoming edges
}

// NewFeedForward constructs an empty feed-forward brain.
func NewFeedForward() *FeedForward {
	return &FeedForward{
		nodes:    make(map[int]*Node),
		incoming: make(map[int][]Connection),
	}
}

func (f *FeedForward) Kind() types.BrainKind { return types.BrainFeedForward }

// AddNode registers a node. Nodes must be added before any connection
// referencing them.
func (f *FeedForward) AddNode(n Node) {
	f.nodes[n.ID] = &n
	f.order = nil // topology changed; recomputed lazily
}

// AddConnection adds a directed weighted edge, rejecting it if it would
// create a cycle (spec.md §4.7, §7).
func (f *FeedForward) AddConnection(from, to int, weight float64) error {
	if _, ok := f.nodes[from]; !ok {
		return fmt.Errorf("brain: unknown source node %d", from)
	}
	if _, ok := f.nodes[to]; !ok {
		return fmt.Errorf("brain: unknown target node %d", to)
	}
	if f.reachable(to, from) {
		return fmt.Errorf("brain: connection %d->%d would create a cycle", from, to)
	}
	f.connections = append(f.connections, Connection{From: from, To: to, Weight: weight})
	f.incoming[to] = append(f.incoming[to], Connection{From: from, To: to, Weight: weight})
	f.order = nil
	return nil
}

// reachable reports whether `to` can be reached from `from` via existing
// connections (a depth-first walk over the current edge set).
func (f *FeedForward) reachable(from, to int) bool {
	if from == to {
		return true
	}
	visited := make(map[int]bool)
	var walk func(n int) bool
	walk = func(n int) bool {
		if n == to {
			return true
		}
		if visited[n] {
			return false
		}
		visited[n] = true
		for _, c := range f.connections {
			if c.From == n && walk(c.To) {
				return true
			}
		}
		return false
	}
	return walk(from)
}

// topologicalOrder computes (and caches) a valid evaluation order: every
// node after all of its incoming-edge sources.
func (f *FeedForward) topologicalOrder() []int {
	if f.order != nil {
		return f.order
	}
	visited := make(map[int]bool)
	var order []int
	var visit func(id int)
	visit = func(id int) {
		if visited[id] {
			return
		}
		visited[id] = true
		for _, c := range f.incoming[id] {
			visit(c.From)
		}
		order = append(order, id)
	}
	// Deterministic traversal: ascending node id.
	ids := make([]int, 0, len(f.nodes))
	for id := range f.nodes {
		ids = append(ids, id)
	}
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			if ids[j] < ids[i] {
				ids[i], ids[j] = ids[j], ids[i]
			}
		}
	}
	for _, id := range ids {
		visit(id)
	}
	f.order = order
	return order
}

func activate(fn types.ActivationFn, x float64) float64 {
	switch fn {
	case types.ActivationTanh:
		return math.Tanh(x)
	case types.ActivationReLU:
		if x < 0 {
			return 0
		}
		return x
	case types.ActivationSigmoid:
		return 1 / (1 + math.Exp(-x))
	default: // Identity
		return x
	}
}

// Evaluate assigns inputs to NodeInput nodes in topological order (the same
// order InputMap reports), walking that order and computing each hidden/output node's
// weighted sum (via gonum's dot product) plus bias, through its activation.
func (f *FeedForward) Evaluate(inputs []float64) []float64 {
	order := f.topologicalOrder()
	values := make(map[int]float64, len(f.nodes))

	inputIdx := 0
	for _, id := range order {
		n := f.nodes[id]
		if n.Kind == NodeInput {
			var v float64
			if inputIdx < len(inputs) {
				v = inputs[inputIdx]
			}
			inputIdx++
			values[id] = v
			continue
		}

		edges := f.incoming[id]
		if len(edges) == 0 {
			values[id] = activate(n.Activation, n.Bias)
			continue
		}
		weights := make([]float64, len(edges))
		inputsVec := make([]float64, len(edges))
		for i, e := range edges {
			weights[i] = e.Weight
			inputsVec[i] = values[e.From]
		}
		w := mat.NewVecDense(len(weights), weights)
		x := mat.NewVecDense(len(inputsVec), inputsVec)
		sum := mat.Dot(w, x) + n.Bias
		values[id] = activate(n.Activation, sum)
	}

	var outputs []float64
	for _, id := range order {
		if f.nodes[id].Kind == NodeOutput {
			outputs = append(outputs, values[id])
		}
	}
	return outputs
}

// NodeCount reports how many nodes have been added so far, letting a caller
// assign the next node a collision-free sequential id.
func (f *FeedForward) NodeCount() int {
	return len(f.nodes)
}

// snapshotNodes returns every node in ascending id order, for serialization.
func (f *FeedForward) snapshotNodes() []Node {
	ids := make([]int, 0, len(f.nodes))
	for id := range f.nodes {
		ids = append(ids, id)
	}
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			if ids[j] < ids[i] {
				ids[i], ids[j] = ids[j], ids[i]
			}
		}
	}
	nodes := make([]Node, 0, len(ids))
	for _, id := range ids {
		nodes = append(nodes, *f.nodes[id])
	}
	return nodes
}

// InputMap reports the InputSource for every NodeInput, in topological order
// (matching the assignment order Evaluate uses); this is not always
// ascending node-id order.
func (f *FeedForward) InputMap() []InputSource {
	var sources []InputSource
	for _, id := range f.topologicalOrder() {
		if f.nodes[id].Kind == NodeInput {
			sources = append(sources, f.nodes[id].Source)
		}
	}
	return sources
}

// OutputMap reports the OutputAction for every NodeOutput, in the same
// order Evaluate emits outputs.
func (f *FeedForward) OutputMap() []OutputAction {
	var actions []OutputAction
	for _, id := range f.topologicalOrder() {
		if f.nodes[id].Kind == NodeOutput {
			actions = append(actions, f.nodes[id].Action)
		}
	}
	return actions
}
