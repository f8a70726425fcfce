/*
=================================================================================
SYNAPSE
=================================================================================

Synapse is a directed connection between two entities (spec.md §3). It
replaces the teacher's synapse.EnhancedSynapse (a goroutine-backed STDP
processor) with a passive data record: fatigue and delivery-mode behavior
are folded into the phase pipeline (world/pipeline.go) instead of running
as an independent plasticity loop, since the spec's weights only change via
explicit gene-code writes (SetSynapseProperty), not automatic STDP timing.
=================================================================================
*/
package world

import (
	"github.com/hidra-sim/hidra/condition"
	"github.com/hidra-sim/hidra/types"
)

// Endpoint names one side of a synapse: an entity kind plus its id.
type Endpoint struct {
	Kind types.EntityKind
	ID   uint64
}

// Synapse is one directed, weighted, conditionally-gated connection.
type Synapse struct {
	ID     types.SynapseID
	Active bool

	Source Endpoint
	Target Endpoint

	SignalType types.SignalType
	Weight     float64
	Parameter  float64 // delay ticks (Delayed) or smoothing alpha (Immediate to output)

	PersistentValue    float64
	PersistentValueSet bool

	TransientTriggerTick uint64
	transientArmed       bool

	Fatigue             float64
	FatigueRate         float64
	FatigueRecoveryRate float64

	Condition condition.Condition

	PreviousSourceValue float64
	SustainedCounter    int
}

// newSynapse constructs a Synapse with engine defaults for the fields the
// caller does not set explicitly.
func newSynapse(id types.SynapseID, source, target Endpoint, st types.SignalType, weight, parameter float64) *Synapse {
	return &Synapse{
		ID:                  id,
		Active:              true,
		Source:              source,
		Target:              target,
		SignalType:          st,
		Weight:              weight,
		Parameter:           parameter,
		FatigueRate:         0.05,
		FatigueRecoveryRate: 0.02,
	}
}
