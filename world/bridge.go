/*
=================================================================================
HOST API BRIDGE
=================================================================================

hostBridge implements gene.HostAPI: it is the one place that turns a
gene's API_* call into a world mutation or query (spec.md §4.5). Every
invalid-but-survivable request (bad endpoint, out-of-range index) returns a
neutral zero result and logs a warning rather than propagating an error —
only a genuine internal inconsistency reaches gene.Run as an error, and that
terminates just the one gene (spec.md §4.4, §7).

Security-context enforcement itself lives in gene.Run (see gene/vm.go); by
the time Call is reached, the caller is already known to hold at least the
opcode's minimum required context.
=================================================================================
*/
package world

import (
	"github.com/hidra-sim/hidra/event"
	"github.com/hidra-sim/hidra/gene"
	"github.com/hidra-sim/hidra/types"
)

type hostBridge struct {
	w *World
}

func (b *hostBridge) Call(ctx types.SecurityContext, neuronID uint64, op gene.Opcode, args []float64) ([]float64, error) {
	w := b.w
	switch op {
	case gene.OpAPICreateNeuron:
		pos := types.Position3D{X: args[0], Y: args[1], Z: args[2]}
		id := w.addNeuronLocked(pos)
		w.scheduleEvent(w.tick+1, event.ExecuteGene, uint64(id), event.Payload{GeneID: gene.GeneGestation})
		return []float64{float64(id)}, nil

	case gene.OpAPIAddSynapse:
		source := Endpoint{Kind: types.EntityKind(args[0]), ID: uint64(args[1])}
		target := Endpoint{Kind: types.EntityKind(args[2]), ID: uint64(args[3])}
		st := types.SignalType(args[4])
		weight := args[5]
		id, err := w.addSynapseLocked(source, target, st, weight, 0)
		if err != nil {
			w.logf("bridge", types.LogWarn, "API_ADD_SYNAPSE refused: %v", err)
			return []float64{0}, nil
		}
		return []float64{float64(id)}, nil

	case gene.OpAPIMitosis:
		offset := types.Position3D{X: args[0], Y: args[1], Z: args[2]}
		childID, err := w.performMitosisLocked(types.NeuronID(neuronID), offset)
		if err != nil {
			w.logf("bridge", types.LogWarn, "API_MITOSIS refused: %v", err)
			return []float64{0}, nil
		}
		return []float64{float64(childID)}, nil

	case gene.OpAPIGetSelfID:
		return []float64{float64(neuronID)}, nil

	case gene.OpAPIGetPositionX, gene.OpAPIGetPositionY, gene.OpAPIGetPositionZ:
		n, ok := w.neurons[types.NeuronID(neuronID)]
		if !ok {
			return []float64{0}, nil
		}
		switch op {
		case gene.OpAPIGetPositionX:
			return []float64{n.Position.X}, nil
		case gene.OpAPIGetPositionY:
			return []float64{n.Position.Y}, nil
		default:
			return []float64{n.Position.Z}, nil
		}

	case gene.OpAPIGetNeighborCount:
		n, ok := w.neurons[types.NeuronID(neuronID)]
		if !ok {
			return []float64{0}, nil
		}
		neighbors := w.spatial.FindNeighbors(n.Position, args[0])
		return []float64{float64(len(neighbors))}, nil

	case gene.OpAPIGetNearestNeighborID, gene.OpAPIGetNearestNeighborPositionX, gene.OpAPIGetNearestNeighborPositionY, gene.OpAPIGetNearestNeighborPositionZ:
		n, ok := w.neurons[types.NeuronID(neuronID)]
		if !ok {
			return []float64{0}, nil
		}
		nearest, found := w.nearestNeighborLocked(n, args[0])
		if !found {
			return []float64{0}, nil
		}
		switch op {
		case gene.OpAPIGetNearestNeighborID:
			return []float64{float64(nearest.ID)}, nil
		case gene.OpAPIGetNearestNeighborPositionX:
			return []float64{nearest.Position.X}, nil
		case gene.OpAPIGetNearestNeighborPositionY:
			return []float64{nearest.Position.Y}, nil
		default:
			return []float64{nearest.Position.Z}, nil
		}

	case gene.OpAPIGetFiringRate:
		n, ok := w.neurons[types.NeuronID(neuronID)]
		if !ok {
			return []float64{0}, nil
		}
		return []float64{n.LVars[LVarFiringRateEMA]}, nil

	case gene.OpAPILoadLVar:
		n, ok := w.neurons[types.NeuronID(neuronID)]
		idx := int(args[0])
		if !ok || idx < 0 || idx >= LocalVarCount {
			w.logf("bridge", types.LogWarn, "API_LOAD_LVAR out-of-range index %d", idx)
			return []float64{0}, nil
		}
		return []float64{n.LVars[idx]}, nil

	case gene.OpAPIStoreLVar:
		n, ok := w.neurons[types.NeuronID(neuronID)]
		idx := int(args[0])
		if !ok || idx < 0 || idx >= UserWritableLVarBound {
			w.logf("bridge", types.LogWarn, "API_STORE_LVAR refused for index %d", idx)
			return nil, nil
		}
		n.LVars[idx] = args[1]
		return nil, nil

	case gene.OpAPILoadGVar:
		idx := int(args[0])
		if idx < 0 || idx >= LocalVarCount {
			w.logf("bridge", types.LogWarn, "API_LOAD_GVAR out-of-range index %d", idx)
			return []float64{0}, nil
		}
		return []float64{w.hormones[idx]}, nil

	case gene.OpAPIStoreGVar:
		idx := int(args[0])
		if idx < 0 || idx >= LocalVarCount {
			w.logf("bridge", types.LogWarn, "API_STORE_GVAR out-of-range index %d", idx)
			return nil, nil
		}
		w.hormones[idx] = args[1]
		return nil, nil

	case gene.OpAPISetSynapseCondition:
		sid := types.SynapseID(uint64(args[0]))
		s, ok := w.synapseByID(sid)
		if !ok {
			w.logf("bridge", types.LogWarn, "API_SET_SYNAPSE_CONDITION unknown synapse %d", sid)
			return nil, nil
		}
		s.Condition = buildSynapseCondition(int(args[1]), int(args[2]), args[3], args[4], args[5])
		return nil, nil

	case gene.OpAPISetSynapseProperty:
		sid := types.SynapseID(uint64(args[0]))
		s, ok := w.synapseByID(sid)
		if !ok {
			w.logf("bridge", types.LogWarn, "API_SET_SYNAPSE_PROPERTY unknown synapse %d", sid)
			return nil, nil
		}
		applySynapseProperty(s, int(args[1]), args[2])
		return nil, nil

	case gene.OpAPIGetSynapseProperty:
		sid := types.SynapseID(uint64(args[0]))
		s, ok := w.synapseByID(sid)
		if !ok {
			w.logf("bridge", types.LogWarn, "API_GET_SYNAPSE_PROPERTY unknown synapse %d", sid)
			return []float64{0}, nil
		}
		return []float64{readSynapseProperty(s, int(args[1]), w.tick)}, nil

	case gene.OpAPIAddBrainNode, gene.OpAPIAddBrainConnection, gene.OpAPISetBrainType:
		return w.dispatchBrainConstruction(neuronID, op, args)

	case gene.OpAPIComposeFloat16:
		high, low := args[0], args[1]
		return []float64{high + low/255.0}, nil

	default:
		return []float64{0}, nil
	}
}
