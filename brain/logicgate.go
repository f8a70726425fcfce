package brain

import "github.com/hidra-sim/hidra/types"

// LogicGate thresholds its inputs to booleans, applies a configured gate
// function, and carries one bit of flip-flop memory across evaluations
// (spec.md §4.7).
type LogicGate struct {
	Gate      types.GateType
	Threshold float64
	Inputs    []InputSource
	memory    bool
}

func (g *LogicGate) Kind() types.BrainKind { return types.BrainLogicGate }

func (g *LogicGate) InputMap() []InputSource {
	return g.Inputs
}

func (g *LogicGate) OutputMap() []OutputAction {
	return []OutputAction{{Type: types.ActionSetOutputValue}}
}

func (g *LogicGate) Evaluate(inputs []float64) []float64 {
	a := len(inputs) > 0 && inputs[0] >= g.Threshold
	b := len(inputs) > 1 && inputs[1] >= g.Threshold

	var result bool
	switch g.Gate {
	case types.GateAND:
		result = a && b
	case types.GateOR:
		result = a || b
	case types.GateNAND:
		result = !(a && b)
	case types.GateNOR:
		result = !(a || b)
	case types.GateXOR:
		result = a != b
	default:
		result = a
	}

	g.memory = result
	if result {
		return []float64{1}
	}
	return []float64{0}
}

// Memory returns the gate's current flip-flop state.
func (g *LogicGate) Memory() bool {
	return g.memory
}
