/*
=================================================================================
LIFECYCLE
=================================================================================

Construction, neuron creation (direct and via mitosis), and death/Apoptosis
fan-out (spec.md §3 "Lifecycle"). addNeuronAndScheduleLocked schedules a
Gestation event for next tick rather than running Gestation synchronously, matching the spec's
"a neuron is created ... (Gestation event scheduled for next tick)".
=================================================================================
*/
package world

import (
	"sort"

	"github.com/hidra-sim/hidra/event"
	"github.com/hidra-sim/hidra/gene"
	"github.com/hidra-sim/hidra/types"
)

func (w *World) defaults() neuronDefaults {
	return neuronDefaults{
		firingThreshold:           w.cfg.DefaultFiringThreshold,
		decayRate:                 w.cfg.DefaultDecayRate,
		refractoryPeriod:          w.cfg.DefaultRefractoryPeriod,
		thresholdAdaptationFactor: w.cfg.DefaultThresholdAdaptationFactor,
		thresholdRecoveryRate:     w.cfg.DefaultThresholdRecoveryRate,
		initialHealth:             w.cfg.InitialNeuronHealth,
		initialPotential:          w.cfg.InitialPotential,
	}
}

// addNeuronLocked creates a neuron immediately, without scheduling a
// Gestation event. Used directly for the construction-time "no neurons
// survived Genesis" fallback (spec.md §3), and as the shared creation step
// under addNeuronAndScheduleLocked, performMitosisLocked and the bridge's
// API_CREATE_NEURON, each of which schedules its own follow-up event.
func (w *World) addNeuronLocked(pos types.Position3D) types.NeuronID {
	id := types.NeuronID(w.nextNeuron)
	w.nextNeuron++
	w.neurons[id] = newNeuron(id, pos, w.defaults())
	w.spatial.Insert(uint64(id), pos)
	w.caches.invalidate()
	return id
}

// addNeuronAndScheduleLocked creates a neuron and schedules its Gestation
// event for next tick (spec.md §3, §4.9). Returns the assigned id. Exported
// access to this goes through World.AddNeuron in world/control.go, which
// takes the lock this method assumes is already held.
func (w *World) addNeuronAndScheduleLocked(pos types.Position3D) types.NeuronID {
	id := w.addNeuronLocked(pos)
	w.scheduleEvent(w.tick+1, event.ExecuteGene, uint64(id), event.Payload{GeneID: gene.GeneGestation})
	return id
}

// performMitosisLocked creates a child neuron near the parent and schedules
// both parent and child Mitosis/Gestation continuation events (spec.md §3
// "via mitosis (two events scheduled: parent and child)").
func (w *World) performMitosisLocked(parentID types.NeuronID, offset types.Position3D) (types.NeuronID, error) {
	parent, ok := w.neurons[parentID]
	if !ok {
		return 0, ErrUnknownNeuron
	}
	childPos := parent.Position.Add(offset)
	childID := w.addNeuronLocked(childPos)

	w.scheduleEvent(w.tick+1, event.ExecuteGene, uint64(parentID), event.Payload{GeneID: gene.GeneMitosis})
	w.scheduleEvent(w.tick+1, event.ExecuteGene, uint64(childID), event.Payload{GeneID: gene.GeneGestation})
	return childID, nil
}

// nextEventID mints a monotonic event id.
func (w *World) nextEventID() types.EventID {
	id := types.EventID(w.nextEvent)
	w.nextEvent++
	return id
}

// scheduleEvent pushes a new event directly onto the queue. Used for
// lifecycle events (Gestation/Mitosis/Apoptosis) that are not produced by
// the phase pipeline's own next_tick buffer.
func (w *World) scheduleEvent(execTick uint64, kind event.Kind, target uint64, payload event.Payload) {
	w.queue.Push(event.Event{
		ID:            w.nextEventID(),
		ExecutionTick: execTick,
		Kind:          kind,
		TargetID:      target,
		Payload:       payload,
	})
}

// markForDeactivationLocked flags a neuron for retirement; Phase 5 performs
// the actual teardown and Apoptosis fan-out.
func (w *World) markForDeactivationLocked(id types.NeuronID) error {
	n, ok := w.neurons[id]
	if !ok {
		return ErrUnknownNeuron
	}
	n.MarkedForDeactivation = true
	return nil
}

// retireDeadNeuronsLocked is Phase 5: for each neuron marked dead, schedule
// an Apoptosis event for every downstream neuron, deactivate it, and
// invalidate the topology caches (spec.md §4.9 "Phase 5 — Deactivations").
func (w *World) retireDeadNeuronsLocked() {
	ids := make([]types.NeuronID, 0)
	for id, n := range w.neurons {
		if n.MarkedForDeactivation && n.Active {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		n := w.neurons[id]
		for _, downstream := range w.downstreamNeuronsLocked(id) {
			w.scheduleEvent(w.tick+1, event.ExecuteGene, uint64(downstream), event.Payload{GeneID: gene.GeneApoptosis})
		}
		n.Active = false
		for _, sid := range n.OwnedSynapses {
			if s, ok := w.synapseByID(sid); ok {
				s.Active = false
			}
		}
		w.caches.invalidate()
	}
}

// downstreamNeuronsLocked returns every neuron this one has an active
// outgoing synapse to, sorted ascending by id.
func (w *World) downstreamNeuronsLocked(id types.NeuronID) []types.NeuronID {
	n, ok := w.neurons[id]
	if !ok {
		return nil
	}
	var out []types.NeuronID
	for _, sid := range n.OwnedSynapses {
		s, ok := w.synapseByID(sid)
		if !ok || !s.Active || s.Target.Kind != types.EntityNeuron || s.Source.Kind != types.EntityNeuron || s.Source.ID != uint64(id) {
			continue
		}
		out = append(out, types.NeuronID(s.Target.ID))
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (w *World) synapseByID(id types.SynapseID) (*Synapse, bool) {
	idx, ok := w.synapseIndex[id]
	if !ok {
		return nil, false
	}
	return w.synapses[idx], true
}

// addSynapseLocked inserts a new synapse, keeping the global list sorted by
// id and the owning neuron's list sorted by id (spec.md §3, §8, §9).
func (w *World) addSynapseLocked(source, target Endpoint, st types.SignalType, weight, parameter float64) (types.SynapseID, error) {
	if !w.endpointExistsLocked(source) || !w.endpointExistsLocked(target) {
		return 0, ErrInvalidEndpoint
	}
	id := types.SynapseID(w.nextSynapse)
	w.nextSynapse++
	s := newSynapse(id, source, target, st, weight, parameter)

	pos := sort.Search(len(w.synapses), func(i int) bool { return w.synapses[i].ID >= id })
	w.synapses = append(w.synapses, nil)
	copy(w.synapses[pos+1:], w.synapses[pos:])
	w.synapses[pos] = s
	for i := pos + 1; i < len(w.synapses); i++ {
		w.synapseIndex[w.synapses[i].ID] = i
	}
	w.synapseIndex[id] = pos

	owner := source
	if source.Kind != types.EntityNeuron {
		owner = target
	}
	if owner.Kind == types.EntityNeuron {
		if n, ok := w.neurons[types.NeuronID(owner.ID)]; ok {
			n.OwnedSynapses = insertSynapseSorted(n.OwnedSynapses, id)
		}
	}

	w.caches.invalidate()
	return id, nil
}

func (w *World) endpointExistsLocked(e Endpoint) bool {
	switch e.Kind {
	case types.EntityNeuron:
		_, ok := w.neurons[types.NeuronID(e.ID)]
		return ok
	case types.EntityInput:
		_, ok := w.inputs[types.InputID(e.ID)]
		return ok
	case types.EntityOutput:
		_, ok := w.outputs[types.OutputID(e.ID)]
		return ok
	default:
		return false
	}
}

// runGenesis executes gene 0 once, in System context, against neuron id 0
// acting as a placeholder self before any neuron exists. World-creation
// host calls (CreateNeuron) are how Genesis actually populates the world.
func (w *World) runGenesis() error {
	if len(w.genome) == 0 || w.genome[0].ID != gene.GeneGenesis {
		return ErrGenomeMissingGenesis
	}
	bridge := &hostBridge{w: w}
	fuel := gene.DefaultFuel(gene.GeneGenesis)
	res := gene.Run(w.genome[gene.GeneGenesis], fuel, types.ContextSystem, 0, bridge)
	for _, warn := range res.Warnings {
		w.logf("genesis", types.LogWarn, "%s", warn.String())
	}
	if res.Err != nil {
		w.logf("genesis", types.LogWarn, "genesis gene runtime error: %v", res.Err)
	}
	return nil
}
