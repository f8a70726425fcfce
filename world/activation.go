/*
=================================================================================
NEURON ACTIVATION
=================================================================================

processNeuronActivation is spec.md §4.9's ProcessNeuronActivation: once a
neuron's total potential has crossed threshold (detected in Phase 3,
scheduled as an Activate event, run here in Phase 4), its brain is
evaluated and its outgoing synapses are dispatched per signal type. This is
the one place BrainOutputValue changes and the one place a neuron's
refractory/threshold/firing-rate bookkeeping resets after firing.
=================================================================================
*/
package world

import (
	"math"

	"github.com/hidra-sim/hidra/event"
	"github.com/hidra-sim/hidra/types"
)

func (w *World) processNeuronActivation(n *Neuron, activationPotential float64) {
	inputs := w.assembleBrainInputs(n, activationPotential)
	outputs := n.Brain.Evaluate(inputs)
	actions := n.Brain.OutputMap()

	var moveAxis int
	for i, action := range actions {
		if i >= len(outputs) {
			break
		}
		v := outputs[i]
		switch action.Type {
		case types.ActionSetOutputValue:
			n.BrainOutputValue = v
		case types.ActionExecuteGene:
			geneID := uint64(math.Abs(v)) + uint64(w.systemGenes)
			if geneID < uint64(len(w.genome)) {
				w.nextTick = append(w.nextTick, event.Event{
					ID:            w.nextEventID(),
					ExecutionTick: w.tick + 1,
					Kind:          event.ExecuteGeneFromBrain,
					TargetID:      uint64(n.ID),
					Payload:       event.Payload{GeneID: geneID},
				})
			}
		case types.ActionMove:
			switch moveAxis {
			case 0:
				n.Position.X += v
			case 1:
				n.Position.Y += v
			case 2:
				n.Position.Z += v
			}
			moveAxis++
			w.caches.invalidate()
		}
	}

	w.dispatchOutgoingSynapsesLocked(n)

	n.LVars[LVarSomaPotential] = 0
	n.LVars[LVarRefractoryTimeLeft] = n.LVars[LVarRefractoryPeriod]
	n.LVars[LVarAdaptiveThreshold] += n.LVars[LVarThresholdAdaptationFactor]
	n.LVars[LVarFiringRateEMA] += 1 - w.cfg.FiringRateMAWeight
}

// assembleBrainInputs fills one input slot per the brain's InputMap,
// resolving each InputSource against the world and the firing neuron
// (spec.md §4.7).
func (w *World) assembleBrainInputs(n *Neuron, activationPotential float64) []float64 {
	sources := n.Brain.InputMap()
	inputs := make([]float64, len(sources))
	incoming := w.incomingSynapsesLocked(uint64(n.ID))

	for i, src := range sources {
		switch src.Type {
		case types.SourceActivationPotential:
			inputs[i] = activationPotential
		case types.SourceTotalPotential:
			inputs[i] = n.LVars[LVarDendriticPotential] + n.LVars[LVarSomaPotential]
		case types.SourceHealth:
			inputs[i] = n.LVars[LVarHealth]
		case types.SourceAge:
			inputs[i] = n.LVars[LVarAge]
		case types.SourceFiringRate:
			inputs[i] = n.LVars[LVarFiringRateEMA]
		case types.SourceLocalVar:
			if src.Index >= 0 && src.Index < LocalVarCount {
				inputs[i] = n.LVars[src.Index]
			}
		case types.SourceGlobalHormone:
			if src.Index >= 0 && src.Index < LocalVarCount {
				inputs[i] = w.hormones[src.Index]
			}
		case types.SourceIncomingSynapse:
			if src.Index >= 0 && src.Index < len(incoming) {
				s := incoming[src.Index]
				inputs[i] = w.entityCurrentValueLocked(s.Source) * s.Weight
			}
		case types.SourceConstant:
			inputs[i] = src.Constant
		}
	}
	return inputs
}

// dispatchOutgoingSynapsesLocked walks a just-fired neuron's owned synapses
// and, per signal type, either emits a PotentialPulse (Immediate/Delayed),
// arms a one-tick trigger flag (Transient), or records the transmitted
// value for live readback (Persistent) — spec.md §4.9 ProcessNeuronActivation
// step 4. Persistent synapses record PersistentValue for introspection only;
// Phase 3's dendritic sum reads the source's live current value directly,
// not this stored field, per spec.md §9's "source value derived from the
// source entity's current state".
func (w *World) dispatchOutgoingSynapsesLocked(n *Neuron) {
	sourceValue := n.BrainOutputValue
	for _, sid := range n.OwnedSynapses {
		s, ok := w.synapseByID(sid)
		if !ok || !s.Active || s.Source.Kind != types.EntityNeuron || s.Source.ID != uint64(n.ID) {
			continue
		}
		passes := w.evaluateSynapseCondition(s, sourceValue)
		effective := sourceValue * (1 - s.Fatigue)

		switch s.SignalType {
		case types.Persistent:
			if passes {
				s.PersistentValue = effective
				s.PersistentValueSet = true
			}
		case types.Transient:
			if passes {
				s.transientArmed = true
				s.TransientTriggerTick = w.tick + 1
			}
		case types.Immediate, types.Delayed:
			if passes {
				w.emitSynapsePulse(s, effective)
			}
		}

		if passes {
			s.Fatigue = math.Min(1, s.Fatigue+math.Abs(effective)*s.FatigueRate)
		}
		s.PreviousSourceValue = sourceValue
	}
}

func (w *World) emitSynapsePulse(s *Synapse, value float64) {
	pulse := value * s.Weight
	delay := int64(0)
	if s.SignalType == types.Delayed {
		delay = int64(s.Parameter)
		if delay < 0 {
			delay = 0
		}
	}
	execTick := w.tick + 1 + uint64(delay)
	alpha := -1.0
	if s.SignalType == types.Immediate && s.Target.Kind == types.EntityOutput {
		alpha = clamp01(s.Parameter)
	}
	w.nextTick = append(w.nextTick, event.Event{
		ID:            w.nextEventID(),
		ExecutionTick: execTick,
		Kind:          event.PotentialPulse,
		TargetID:      s.Target.ID,
		Payload:       event.Payload{PulseValue: pulse, TargetKind: s.Target.Kind, SmoothingAlpha: alpha},
	})
}
