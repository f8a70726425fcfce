/*
=================================================================================
BRAIN ABSTRACTION
=================================================================================

Each neuron holds exactly one Brain variant (spec.md §4.7). Per the teacher's
polymorphism-without-inheritance convention (spec.md §9) and its config-driven
component style (component.Component's interface-plus-variants shape), Brain
is a small interface with three concrete implementations: PassThrough,
LogicGate and FeedForward.

The evaluation contract is fixed by the world, not the brain: the world
assembles an input vector per the brain's InputMap, calls Evaluate, then
reads OutputMap to perform actions (spec.md §4.7, §4.9 ProcessNeuronActivation
step 2-3). A Brain therefore never touches the world directly — it is a pure
function from []float64 to []float64 plus its own variant-local state (the
LogicGate's flip-flop memory).
=================================================================================
*/
package brain

import "github.com/hidra-sim/hidra/types"

// InputSource names where one slot of a brain's input vector is read from.
type InputSource struct {
	Type     types.InputSourceType
	Index    int     // meaning depends on Type (local var index, hormone index, synapse ordinal)
	Constant float64 // used when Type == SourceConstant
}

// OutputAction names what one slot of a brain's output vector does when read.
type OutputAction struct {
	Type types.OutputActionType
}

// Brain is implemented by every decision-module variant a neuron can hold.
type Brain interface {
	// Evaluate computes the brain's output vector from its input vector.
	// Implementations must be side-effect-free with respect to the world;
	// any internal memory (e.g. LogicGate's flip-flop) is brain-local state.
	Evaluate(inputs []float64) []float64

	// InputMap describes what each input slot should be filled with.
	InputMap() []InputSource

	// OutputMap describes what each output slot should do with its value.
	OutputMap() []OutputAction

	// Kind identifies the concrete variant, for serialization.
	Kind() types.BrainKind
}
