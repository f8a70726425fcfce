/*
=================================================================================
EVENT TYPES
=================================================================================

An Event is the unit of scheduled future work in Hidra: a neuron activation,
a gene invocation, or a potential pulse en route to a neuron or output node.
Events are totally ordered first by ExecutionTick ascending, then by ID
ascending (spec.md §3), which is what lets Phase 0's drain and Phase 4's
intra-tick processing both be deterministic under concurrent producers.
=================================================================================
*/
package event

import "github.com/hidra-sim/hidra/types"

// Kind distinguishes the four event payload shapes the engine schedules.
type Kind int

const (
	// Activate fires ProcessNeuronActivation for the target neuron; the
	// payload is the total potential that crossed threshold.
	Activate Kind = iota
	// ExecuteGene runs a gene directly (Genesis/Gestation/Mitosis/Apoptosis
	// or a user gene invoked by its own id); the payload is the gene id.
	ExecuteGene
	// ExecuteGeneFromBrain runs a gene queued by a brain's ExecuteGene
	// output action, always under General security context.
	ExecuteGeneFromBrain
	// PotentialPulse adds a weighted value to a neuron's soma potential or
	// an output node's value.
	PotentialPulse
)

func (k Kind) String() string {
	switch k {
	case Activate:
		return "Activate"
	case ExecuteGene:
		return "ExecuteGene"
	case ExecuteGeneFromBrain:
		return "ExecuteGeneFromBrain"
	case PotentialPulse:
		return "PotentialPulse"
	default:
		return "Unknown"
	}
}

// Payload is a tagged union carried by an Event. Only the field matching the
// event's Kind is meaningful; Hidra favors an explicit tagged struct over an
// interface{} payload so that snapshot encoding stays a single flat type.
type Payload struct {
	GeneID              uint64           `msgpack:"gene_id,omitempty"`
	PulseValue          float64          `msgpack:"pulse_value,omitempty"`
	ActivationPotential float64          `msgpack:"activation_potential,omitempty"`
	TargetKind          types.EntityKind `msgpack:"target_kind,omitempty"`

	// SmoothingAlpha carries an output node's smoothing coefficient for a
	// PotentialPulse produced by an Immediate synapse (spec.md §9 "Output
	// smoothing"); -1 means "not applicable, add directly" (Delayed and
	// Transient pulses, and any pulse targeting a neuron).
	SmoothingAlpha float64 `msgpack:"smoothing_alpha,omitempty"`
}

// Event is one entry in the world's event queue.
type Event struct {
	ID            types.EventID `msgpack:"id"`
	ExecutionTick uint64        `msgpack:"execution_tick"`
	Kind          Kind          `msgpack:"kind"`
	TargetID      uint64        `msgpack:"target_id"` // interpretation depends on Payload.TargetKind / Kind
	Payload       Payload       `msgpack:"payload"`
}

// Less implements the event total order: (ExecutionTick asc, ID asc).
func Less(a, b Event) bool {
	if a.ExecutionTick != b.ExecutionTick {
		return a.ExecutionTick < b.ExecutionTick
	}
	return a.ID < b.ID
}
