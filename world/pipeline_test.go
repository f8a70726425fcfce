package world

import (
	"testing"

	"github.com/hidra-sim/hidra/config"
	"github.com/hidra-sim/hidra/gene"
	"github.com/hidra-sim/hidra/types"
)

// haltingGenesis is a one-instruction genome: gene 0 (Genesis) halts
// immediately without creating any neuron, so World.New falls back to a
// single default neuron at the origin.
func haltingGenesis() []byte {
	return []byte{byte(gene.OpHalt)}
}

func newTestWorld(t *testing.T) *World {
	t.Helper()
	cfg := config.Default()
	w, err := New(cfg, haltingGenesis(), nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return w
}

func TestStepAdvancesTick(t *testing.T) {
	w := newTestWorld(t)
	if w.Tick() != 0 {
		t.Fatalf("expected initial tick 0, got %d", w.Tick())
	}
	if err := w.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if w.Tick() != 1 {
		t.Fatalf("expected tick 1 after one Step, got %d", w.Tick())
	}
}

func TestDelayedInputPulseArrivesAtOutputAfterDelay(t *testing.T) {
	w := newTestWorld(t)
	if err := w.AddInputNode(1); err != nil {
		t.Fatalf("AddInputNode: %v", err)
	}
	if err := w.AddOutputNode(1); err != nil {
		t.Fatalf("AddOutputNode: %v", err)
	}
	src := Endpoint{Kind: types.EntityInput, ID: 1}
	dst := Endpoint{Kind: types.EntityOutput, ID: 1}
	if _, err := w.AddSynapse(src, dst, types.Delayed, 2.0, 2); err != nil {
		t.Fatalf("AddSynapse: %v", err)
	}

	if err := w.ApplyInputsAndStep(map[types.InputID]float64{1: 5}); err != nil {
		t.Fatalf("ApplyInputsAndStep: %v", err)
	}
	if v := w.OutputValues()[1]; v != 0 {
		t.Fatalf("expected output untouched before delay elapses, got %v", v)
	}

	if err := w.RunFor(2); err != nil {
		t.Fatalf("RunFor: %v", err)
	}
	if v := w.OutputValues()[1]; v != 10 {
		t.Fatalf("expected output = 10 (5*weight 2) once the delayed pulse lands, got %v", v)
	}
}

func TestImmediateOutputPulseAppliesSmoothing(t *testing.T) {
	w := newTestWorld(t)
	if err := w.AddInputNode(1); err != nil {
		t.Fatalf("AddInputNode: %v", err)
	}
	if err := w.AddOutputNode(1); err != nil {
		t.Fatalf("AddOutputNode: %v", err)
	}
	src := Endpoint{Kind: types.EntityInput, ID: 1}
	dst := Endpoint{Kind: types.EntityOutput, ID: 1}
	// parameter doubles as the smoothing alpha for an Immediate synapse
	// feeding an output node.
	if _, err := w.AddSynapse(src, dst, types.Immediate, 1.0, 0.5); err != nil {
		t.Fatalf("AddSynapse: %v", err)
	}

	if err := w.ApplyInputsAndStep(map[types.InputID]float64{1: 10}); err != nil {
		t.Fatalf("ApplyInputsAndStep: %v", err)
	}
	if v := w.OutputValues()[1]; v != 5 {
		t.Fatalf("expected smoothed output 5 after first tick, got %v", v)
	}

	if err := w.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if v := w.OutputValues()[1]; v != 7.5 {
		t.Fatalf("expected smoothed output 7.5 after second tick, got %v", v)
	}
}

func TestRunUntilStopsOnPredicate(t *testing.T) {
	w := newTestWorld(t)
	err := w.RunUntil(func(w *World) bool { return w.Tick() >= 3 })
	if err != nil {
		t.Fatalf("RunUntil: %v", err)
	}
	if w.Tick() != 3 {
		t.Fatalf("expected tick 3, got %d", w.Tick())
	}
}

func TestWorldHaltedRefusesFurtherSteps(t *testing.T) {
	w := newTestWorld(t)
	w.mu.Lock()
	w.halted = true
	w.haltCause = ErrWorldHalted
	w.mu.Unlock()

	if err := w.Step(); err != ErrWorldHalted {
		t.Fatalf("expected ErrWorldHalted, got %v", err)
	}
	halted, cause := w.Halted()
	if !halted || cause != ErrWorldHalted {
		t.Fatalf("expected Halted() to report (true, ErrWorldHalted), got (%v, %v)", halted, cause)
	}
}

func TestAddSynapseRejectsUnknownEndpoint(t *testing.T) {
	w := newTestWorld(t)
	src := Endpoint{Kind: types.EntityInput, ID: 99}
	dst := Endpoint{Kind: types.EntityOutput, ID: 99}
	if _, err := w.AddSynapse(src, dst, types.Immediate, 1, 0); err != ErrInvalidEndpoint {
		t.Fatalf("expected ErrInvalidEndpoint, got %v", err)
	}
}
