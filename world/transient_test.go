package world

import (
	"testing"

	"github.com/hidra-sim/hidra/config"
	"github.com/hidra-sim/hidra/gene"
	"github.com/hidra-sim/hidra/types"
)

// newDecayFreeTestWorld builds a test world whose default neuron decay rate
// is zero, so a soma potential set directly on the neuron survives
// Phase 1 unchanged and the test's expected arithmetic stays exact.
func newDecayFreeTestWorld(t *testing.T) *World {
	t.Helper()
	cfg := config.Default()
	cfg.DefaultDecayRate = 0
	w, err := New(cfg, haltingGenesis(), nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return w
}

// zeroSynapseFatigue strips a synapse's fatigue accumulation so a forced
// firing's transmitted value equals its source value times its weight
// exactly, with no fatigue discount to account for in the test's math.
func zeroSynapseFatigue(t *testing.T, w *World, sid types.SynapseID) {
	t.Helper()
	w.mu.Lock()
	defer w.mu.Unlock()
	s, ok := w.synapseByID(sid)
	if !ok {
		t.Fatalf("synapse %d not found", sid)
	}
	s.FatigueRate = 0
	s.FatigueRecoveryRate = 0
}

// forceFire lowers a neuron's firing threshold to zero and gives it enough
// soma potential to cross it on the next Step, regardless of its brain. The
// soma potential is a system-owned slot that SetLocalVariables refuses to
// write, so it is set on the neuron directly under the world lock.
func forceFire(t *testing.T, w *World, id types.NeuronID, potential float64) {
	t.Helper()
	if err := w.SetLocalVariables(id, map[int]float64{
		LVarFiringThreshold: 0,
	}); err != nil {
		t.Fatalf("SetLocalVariables: %v", err)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	n, ok := w.neurons[id]
	if !ok {
		t.Fatalf("neuron %d not found", id)
	}
	n.LVars[LVarSomaPotential] = potential
}

func firstNeuronID(w *World) types.NeuronID {
	for id := range w.neurons {
		return id
	}
	return 0
}

func TestNeuronFiredImmediateSynapseLandsNextTick(t *testing.T) {
	w := newDecayFreeTestWorld(t)
	src := firstNeuronID(w)
	dstID, err := w.AddNeuron(types.Position3D{})
	if err != nil {
		t.Fatalf("AddNeuron: %v", err)
	}
	// Keep dst from firing on its own once the pulse lands, so its soma
	// potential can be read back undisturbed.
	if err := w.SetLocalVariables(dstID, map[int]float64{LVarFiringThreshold: 1000}); err != nil {
		t.Fatalf("SetLocalVariables: %v", err)
	}
	sid, err := w.AddSynapse(
		Endpoint{Kind: types.EntityNeuron, ID: uint64(src)},
		Endpoint{Kind: types.EntityNeuron, ID: uint64(dstID)},
		types.Immediate, 1.0, 0,
	)
	if err != nil {
		t.Fatalf("AddSynapse: %v", err)
	}
	zeroSynapseFatigue(t, w, sid)

	forceFire(t, w, src, 5)
	if err := w.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	dst, _ := w.Neuron(dstID)
	if dst.LVars[LVarSomaPotential] != 0 {
		t.Fatalf("expected pulse not yet arrived on the firing tick, got soma potential %v", dst.LVars[LVarSomaPotential])
	}

	if err := w.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	dst, _ = w.Neuron(dstID)
	if dst.LVars[LVarSomaPotential] != 5 {
		t.Fatalf("expected pulse of 5 to have landed one tick after firing, got %v", dst.LVars[LVarSomaPotential])
	}
}

func TestTransientSynapseTriggerFlagReadableForOneTick(t *testing.T) {
	w := newDecayFreeTestWorld(t)
	src := firstNeuronID(w)
	dstID, err := w.AddNeuron(types.Position3D{})
	if err != nil {
		t.Fatalf("AddNeuron: %v", err)
	}
	sid, err := w.AddSynapse(
		Endpoint{Kind: types.EntityNeuron, ID: uint64(src)},
		Endpoint{Kind: types.EntityNeuron, ID: uint64(dstID)},
		types.Transient, 1.0, 0,
	)
	if err != nil {
		t.Fatalf("AddSynapse: %v", err)
	}

	bridge := &hostBridge{w: w}
	read := func() float64 {
		w.mu.Lock()
		defer w.mu.Unlock()
		res, err := bridge.Call(types.ContextGeneral, uint64(dstID), gene.OpAPIGetSynapseProperty, []float64{float64(sid), PropTransientActive})
		if err != nil {
			t.Fatalf("Call: %v", err)
		}
		return res[0]
	}

	if v := read(); v != 0 {
		t.Fatalf("expected trigger flag unset before firing, got %v", v)
	}

	forceFire(t, w, src, 5)
	if err := w.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	// src fired while processing the tick this Step just completed, arming
	// the flag for the tick now current.
	if v := read(); v != 1 {
		t.Fatalf("expected trigger flag active for the tick right after firing, got %v", v)
	}

	if err := w.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if v := read(); v != 0 {
		t.Fatalf("expected trigger flag to have expired one tick later, got %v", v)
	}
}
