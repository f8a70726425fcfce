package brain

import "github.com/hidra-sim/hidra/types"

// PassThrough is the simplest Brain: one input reading the neuron's
// activation potential, one output writing the transmission value
// unchanged (spec.md §4.7). It is the default brain for neurons created
// without an explicit brain construction call.
type PassThrough struct{}

func (PassThrough) Kind() types.BrainKind { return types.BrainPassThrough }

func (PassThrough) InputMap() []InputSource {
	return []InputSource{{Type: types.SourceActivationPotential}}
}

func (PassThrough) OutputMap() []OutputAction {
	return []OutputAction{{Type: types.ActionSetOutputValue}}
}

func (PassThrough) Evaluate(inputs []float64) []float64 {
	if len(inputs) == 0 {
		return []float64{0}
	}
	return []float64{inputs[0]}
}
