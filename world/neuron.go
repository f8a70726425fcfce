/*
=================================================================================
NEURON
=================================================================================

Neuron is the authoritative record for one simulated cell: identity,
position, a fixed-length local-variable vector, a brain, and its owned
synapse ids (spec.md §3 "Neuron"). Unlike the teacher's neuron.Neuron, which
runs its own goroutine and communicates over channels, a world.Neuron is
inert data: every field is read and mutated exclusively by the world's
phase pipeline under the world's single lock.

Local variables are partitioned per spec.md §3: indices 0-238 are
user-writable (gene code may read and write them freely), 239-245 are
system-owned and read-only to gene code — the engine is the only writer.
=================================================================================
*/
package world

import (
	"github.com/hidra-sim/hidra/brain"
	"github.com/hidra-sim/hidra/types"
)

// LocalVarCount is the fixed length of every neuron's local-variable vector
// and the global hormone vector (spec.md §3).
const LocalVarCount = 256

// User-writable local variable indices (0-238). Only the first six are
// named by the engine; the remainder are free slots a genome may use
// however it likes.
const (
	LVarFiringThreshold             = 0
	LVarDecayRate                   = 1
	LVarRefractoryPeriod            = 2
	LVarThresholdAdaptationFactor   = 3
	LVarThresholdRecoveryRate       = 4
	LVarGeneExecutionFuel           = 5
)

// System read-only local variable indices (239-245). Gene code may read
// these via API_LOAD_LVAR but StoreLVar on these indices is refused.
const (
	LVarRefractoryTimeLeft = 239
	LVarFiringRateEMA      = 240
	LVarDendriticPotential = 241
	LVarSomaPotential      = 242
	LVarHealth             = 243
	LVarAge                = 244
	LVarAdaptiveThreshold  = 245
)

// UserWritableLVarBound is the exclusive upper bound of the user-writable
// local-variable region; indices >= this are system-owned.
const UserWritableLVarBound = 239

// Neuron is one cell in the world.
type Neuron struct {
	ID       types.NeuronID
	Active   bool
	Position types.Position3D

	LVars []float64

	Brain brain.Brain

	// OwnedSynapses is sorted ascending by id (spec.md §9 "Ownership of
	// synapses": a sorted vector of ids, not object references).
	OwnedSynapses []types.SynapseID

	// BrainOutputValue is the value transmitted by this neuron's outgoing
	// synapses, set by ProcessNeuronActivation's SetOutputValue action and
	// otherwise carried over unchanged from the previous activation.
	BrainOutputValue float64

	// MarkedForDeactivation is set by mark_neuron_for_deactivation or by
	// Phase 1's health check; Phase 5 retires neurons with this flag set.
	MarkedForDeactivation bool
}

func newNeuron(id types.NeuronID, pos types.Position3D, cfg neuronDefaults) *Neuron {
	lvars := make([]float64, LocalVarCount)
	lvars[LVarFiringThreshold] = cfg.firingThreshold
	lvars[LVarDecayRate] = cfg.decayRate
	lvars[LVarRefractoryPeriod] = float64(cfg.refractoryPeriod)
	lvars[LVarThresholdAdaptationFactor] = cfg.thresholdAdaptationFactor
	lvars[LVarThresholdRecoveryRate] = cfg.thresholdRecoveryRate
	lvars[LVarGeneExecutionFuel] = 0 // 0 means "use the system default for the executing gene"
	lvars[LVarHealth] = cfg.initialHealth
	lvars[LVarSomaPotential] = cfg.initialPotential

	return &Neuron{
		ID:       id,
		Active:   true,
		Position: pos,
		LVars:    lvars,
		Brain:    &brain.PassThrough{},
	}
}

type neuronDefaults struct {
	firingThreshold           float64
	decayRate                 float64
	refractoryPeriod          int
	thresholdAdaptationFactor float64
	thresholdRecoveryRate     float64
	initialHealth             float64
	initialPotential          float64
}

// insertSynapseSorted inserts id into a sorted-ascending slice, preserving
// the order invariant (spec.md §8 "An added synapse is inserted such that
// the owned synapse list remains sorted by id").
func insertSynapseSorted(list []types.SynapseID, id types.SynapseID) []types.SynapseID {
	i := 0
	for i < len(list) && list[i] < id {
		i++
	}
	list = append(list, 0)
	copy(list[i+1:], list[i:])
	list[i] = id
	return list
}

func removeSynapseSorted(list []types.SynapseID, id types.SynapseID) []types.SynapseID {
	for i, v := range list {
		if v == id {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
