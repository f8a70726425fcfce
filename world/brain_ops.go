/*
=================================================================================
GENE-DRIVEN BRAIN CONSTRUCTION
=================================================================================

Handles API_SET_BRAIN_TYPE / API_ADD_BRAIN_NODE / API_ADD_BRAIN_CONNECTION,
the bridge side of spec.md §4.5 "Brain construction". A gene (typically
Genesis or Gestation) selects a brain kind for its neuron, then — for
FeedForward — incrementally builds the node/connection graph. Each call is
validated independently; a rejected connection (would-be cycle) is refused
with a warning, never corrupting the brain already built (spec.md §7
"Cyclic brain connection request").
=================================================================================
*/
package world

import (
	"github.com/hidra-sim/hidra/brain"
	"github.com/hidra-sim/hidra/gene"
	"github.com/hidra-sim/hidra/types"
)

func (w *World) dispatchBrainConstruction(neuronID uint64, op gene.Opcode, args []float64) ([]float64, error) {
	n, ok := w.neurons[types.NeuronID(neuronID)]
	if !ok {
		return []float64{0}, nil
	}

	switch op {
	case gene.OpAPISetBrainType:
		switch int(args[0]) {
		case 0:
			n.Brain = &brain.PassThrough{}
		case 1:
			n.Brain = &brain.LogicGate{}
		case 2:
			n.Brain = brain.NewFeedForward()
		default:
			w.logf("bridge", types.LogWarn, "API_SET_BRAIN_TYPE unknown kind %v", args[0])
		}
		return nil, nil

	case gene.OpAPIAddBrainNode:
		ff, ok := n.Brain.(*brain.FeedForward)
		if !ok {
			w.logf("bridge", types.LogWarn, "API_ADD_BRAIN_NODE requires a feed-forward brain")
			return []float64{0}, nil
		}
		kind := brain.NodeKind(int(args[0]))
		bias := args[1]
		activation := decodeActivation(int(args[2]))
		node := brain.Node{ID: ff.NodeCount(), Kind: kind, Bias: bias, Activation: activation}
		switch kind {
		case brain.NodeInput:
			node.Source = brain.InputSource{Type: decodeInputSource(int(args[3]))}
		case brain.NodeOutput:
			node.Action = brain.OutputAction{Type: decodeOutputAction(int(args[3]))}
		}
		ff.AddNode(node)
		return []float64{float64(node.ID)}, nil

	case gene.OpAPIAddBrainConnection:
		ff, ok := n.Brain.(*brain.FeedForward)
		if !ok {
			w.logf("bridge", types.LogWarn, "API_ADD_BRAIN_CONNECTION requires a feed-forward brain")
			return nil, nil
		}
		from, to, weight := int(args[0]), int(args[1]), args[2]
		if err := ff.AddConnection(from, to, weight); err != nil {
			w.logf("bridge", types.LogWarn, "API_ADD_BRAIN_CONNECTION refused: %v", err)
		}
		return nil, nil
	}
	return []float64{0}, nil
}

func decodeActivation(v int) types.ActivationFn {
	switch v {
	case 0:
		return types.ActivationTanh
	case 1:
		return types.ActivationReLU
	case 2:
		return types.ActivationSigmoid
	default:
		return types.ActivationIdentity
	}
}

func decodeInputSource(v int) types.InputSourceType {
	sources := []types.InputSourceType{
		types.SourceActivationPotential, types.SourceTotalPotential, types.SourceHealth,
		types.SourceAge, types.SourceFiringRate, types.SourceLocalVar,
		types.SourceGlobalHormone, types.SourceIncomingSynapse, types.SourceConstant,
	}
	if v < 0 || v >= len(sources) {
		return types.SourceConstant
	}
	return sources[v]
}

func decodeOutputAction(v int) types.OutputActionType {
	actions := []types.OutputActionType{types.ActionSetOutputValue, types.ActionExecuteGene, types.ActionMove}
	if v < 0 || v >= len(actions) {
		return types.ActionSetOutputValue
	}
	return actions[v]
}
