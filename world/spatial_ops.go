package world

import "github.com/hidra-sim/hidra/types"

// nearestNeighborLocked finds the closest other active neuron to n within
// radius, breaking ties by ascending id for determinism.
func (w *World) nearestNeighborLocked(n *Neuron, radius float64) (*Neuron, bool) {
	candidates := w.spatial.FindNeighbors(n.Position, radius)
	var best *Neuron
	bestDist := -1.0
	for _, c := range candidates {
		if c.ID == uint64(n.ID) {
			continue
		}
		other, ok := w.neurons[types.NeuronID(c.ID)]
		if !ok || !other.Active {
			continue
		}
		d := n.Position.DistanceSquared(other.Position)
		if best == nil || d < bestDist || (d == bestDist && other.ID < best.ID) {
			best = other
			bestDist = d
		}
	}
	return best, best != nil
}

// rebuildSpatialIndexLocked re-inserts every active neuron. Called once per
// tick in Phase 0 when topology changed (spec.md §4.2 "rebuilds the index
// once per tick when topology has changed").
func (w *World) rebuildSpatialIndexLocked() {
	w.spatial.Clear()
	for _, n := range w.neurons {
		if n.Active {
			w.spatial.Insert(uint64(n.ID), n.Position)
		}
	}
}
