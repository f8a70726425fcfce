/*
=================================================================================
CONDITION CONTEXT CONSTRUCTION
=================================================================================

buildConditionContext assembles a condition.Context for one synapse
evaluation (spec.md §4.6). The world is the only thing that knows how to
resolve "source value", "local variable on source/target", "global
hormone", and "target potential" into concrete numbers, so condition.go
itself never imports world — it only consumes the accessor closures built
here, following the teacher's callback-decoupling convention.
=================================================================================
*/
package world

import (
	"github.com/hidra-sim/hidra/condition"
	"github.com/hidra-sim/hidra/types"
)

func (w *World) buildConditionContext(s *Synapse, sourceValue float64) condition.Context {
	return condition.Context{
		SourceValue: sourceValue,
		LocalVar: func(sel condition.EndpointSelector, index int) (float64, bool) {
			var id types.NeuronID
			switch sel {
			case condition.EndpointSource:
				if s.Source.Kind != types.EntityNeuron {
					return 0, false
				}
				id = types.NeuronID(s.Source.ID)
			default:
				if s.Target.Kind != types.EntityNeuron {
					return 0, false
				}
				id = types.NeuronID(s.Target.ID)
			}
			n, ok := w.neurons[id]
			if !ok || index < 0 || index >= LocalVarCount {
				return 0, false
			}
			return n.LVars[index], true
		},
		GlobalHormone: func(index int) (float64, bool) {
			if index < 0 || index >= LocalVarCount {
				return 0, false
			}
			return w.hormones[index], true
		},
		TargetPotential: func() (float64, bool) {
			if s.Target.Kind != types.EntityNeuron {
				return 0, false
			}
			n, ok := w.neurons[types.NeuronID(s.Target.ID)]
			if !ok {
				return 0, false
			}
			return n.LVars[LVarDendriticPotential] + n.LVars[LVarSomaPotential], true
		},
		PreviousSourceValue: s.PreviousSourceValue,
		SustainedCounter:    s.SustainedCounter,
		SetSustainedCounter: func(v int) { s.SustainedCounter = v },
	}
}

// evaluateSynapseCondition applies the default test (value > 0) when a
// synapse carries no explicit condition (spec.md §4.9 Phase 2).
func (w *World) evaluateSynapseCondition(s *Synapse, sourceValue float64) bool {
	if s.Condition == nil {
		return sourceValue > 0
	}
	return s.Condition.Evaluate(w.buildConditionContext(s, sourceValue))
}
