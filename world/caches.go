/*
=================================================================================
TOPOLOGY CACHES
=================================================================================

caches holds the two transient derived structures the world rebuilds on
topology change (spec.md §4.8): a topological ordering of neurons by
shortest path from any input node (cycles appended by (distance, id)), and
an incoming-synapse map (target id -> synapses) plus an input-driven
synapse map (source id -> synapses). Adapted from
extracellular/astrocyte_network.go's connectivity-map shape, generalized
from per-neuron "territory" bookkeeping to the world's own two caches.
=================================================================================
*/
package world

import (
	"sort"

	"github.com/hidra-sim/hidra/types"
)

type caches struct {
	dirty bool

	order       []types.NeuronID
	distance    map[types.NeuronID]int
	incoming    map[uint64][]*Synapse // target entity id (neuron or output) -> synapses
	fromInputs  map[types.InputID][]*Synapse
}

func (c *caches) invalidate() {
	c.dirty = true
}

// rebuild recomputes both caches from the current neuron/synapse sets. It
// is called lazily at the start of Phase 0 only when dirty.
func (w *World) rebuildCachesLocked() {
	if !w.caches.dirty {
		return
	}

	incoming := make(map[uint64][]*Synapse)
	fromInputs := make(map[types.InputID][]*Synapse)
	for _, s := range w.synapses {
		if !s.Active {
			continue
		}
		incoming[s.Target.ID] = append(incoming[s.Target.ID], s)
		if s.Source.Kind == types.EntityInput {
			fromInputs[types.InputID(s.Source.ID)] = append(fromInputs[types.InputID(s.Source.ID)], s)
		}
	}
	for k := range incoming {
		sort.Slice(incoming[k], func(i, j int) bool { return incoming[k][i].ID < incoming[k][j].ID })
	}
	for k := range fromInputs {
		sort.Slice(fromInputs[k], func(i, j int) bool { return fromInputs[k][i].ID < fromInputs[k][j].ID })
	}

	distance := w.computeShortestPathFromInputsLocked(incoming)

	ids := make([]types.NeuronID, 0, len(w.neurons))
	for id := range w.neurons {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		di, dj := distance[ids[i]], distance[ids[j]]
		if di != dj {
			return di < dj
		}
		return ids[i] < ids[j]
	})

	w.caches = caches{
		dirty:      false,
		order:      ids,
		distance:   distance,
		incoming:   incoming,
		fromInputs: fromInputs,
	}
}

// computeShortestPathFromInputsLocked runs a breadth-first search from every
// input node over the directed synapse graph, recording hop distance.
// Neurons unreachable from any input (including those only in cycles that
// never touch an input) get a distance of 1<<30 so they sort last,
// tie-broken by id (spec.md §4.8, §8 "cyclic neurons appear after all
// acyclic ones, ordered by (distance, id)").
func (w *World) computeShortestPathFromInputsLocked(incoming map[uint64][]*Synapse) map[types.NeuronID]int {
	const unreached = 1 << 30
	dist := make(map[types.NeuronID]int, len(w.neurons))
	for id := range w.neurons {
		dist[id] = unreached
	}

	// Build an adjacency view source->targets restricted to neuron targets,
	// oriented the way BFS needs it (from each entity, who does it feed?).
	type edge struct {
		from uint64
		kind types.EntityKind
		to   types.NeuronID
	}
	var edges []edge
	for _, s := range w.synapses {
		if !s.Active || s.Target.Kind != types.EntityNeuron {
			continue
		}
		edges = append(edges, edge{from: s.Source.ID, kind: s.Source.Kind, to: types.NeuronID(s.Target.ID)})
	}

	frontier := make(map[uint64]bool)
	for id := range w.inputs {
		frontier[uint64(id)] = true
	}
	frontierIsInput := true
	level := 0
	visitedNeurons := make(map[types.NeuronID]bool)

	for len(frontier) > 0 && len(visitedNeurons) < len(w.neurons) {
		next := make(map[uint64]bool)
		for _, e := range edges {
			if frontierIsInput {
				if e.kind != types.EntityInput || !frontier[e.from] {
					continue
				}
			} else {
				if e.kind != types.EntityNeuron || !frontier[e.from] {
					continue
				}
			}
			if !visitedNeurons[e.to] {
				visitedNeurons[e.to] = true
				dist[e.to] = level + 1
				next[uint64(e.to)] = true
			}
		}
		frontier = next
		frontierIsInput = false
		level++
	}
	return dist
}

// TopologicalOrder returns the cached Phase-3 evaluation order.
func (w *World) topologicalOrderLocked() []types.NeuronID {
	w.rebuildCachesLocked()
	return w.caches.order
}

func (w *World) incomingSynapsesLocked(targetID uint64) []*Synapse {
	w.rebuildCachesLocked()
	return w.caches.incoming[targetID]
}

func (w *World) synapsesFromInputLocked(id types.InputID) []*Synapse {
	w.rebuildCachesLocked()
	return w.caches.fromInputs[id]
}
