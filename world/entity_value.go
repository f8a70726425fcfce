package world

import "github.com/hidra-sim/hidra/types"

// entityCurrentValueLocked resolves "the value currently flowing out of an
// entity" for whichever kind of endpoint it is: an input node's externally
// set value, or a neuron's transmitted brain output value.
func (w *World) entityCurrentValueLocked(e Endpoint) float64 {
	switch e.Kind {
	case types.EntityInput:
		if in, ok := w.inputs[types.InputID(e.ID)]; ok {
			return in.Value
		}
	case types.EntityNeuron:
		if n, ok := w.neurons[types.NeuronID(e.ID)]; ok {
			return n.BrainOutputValue
		}
	}
	return 0
}
