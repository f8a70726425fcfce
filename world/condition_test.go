package world

import (
	"testing"

	"github.com/hidra-sim/hidra/condition"
	"github.com/hidra-sim/hidra/types"
)

// setSynapseCondition attaches a condition to an existing synapse directly,
// the same way a gene's API_SET_SYNAPSE_CONDITION call would (bridge.go),
// without needing a running gene to do it.
func setSynapseCondition(t *testing.T, w *World, sid types.SynapseID, c condition.Condition) {
	t.Helper()
	w.mu.Lock()
	defer w.mu.Unlock()
	s, ok := w.synapseByID(sid)
	if !ok {
		t.Fatalf("synapse %d not found", sid)
	}
	s.Condition = c
}

func TestRisingEdgeConditionGatesInputDrivenSynapse(t *testing.T) {
	w := newDecayFreeTestWorld(t)

	const inputID types.InputID = 1
	const outputID types.OutputID = 1
	if err := w.AddInputNode(inputID); err != nil {
		t.Fatalf("AddInputNode: %v", err)
	}
	if err := w.AddOutputNode(outputID); err != nil {
		t.Fatalf("AddOutputNode: %v", err)
	}

	sid, err := w.AddSynapse(
		Endpoint{Kind: types.EntityInput, ID: uint64(inputID)},
		Endpoint{Kind: types.EntityOutput, ID: uint64(outputID)},
		types.Immediate, 2.0, 1.0,
	)
	if err != nil {
		t.Fatalf("AddSynapse: %v", err)
	}
	setSynapseCondition(t, w, sid, condition.TemporalCondition{
		Operator:  types.RisingEdge,
		Threshold: 3,
	})

	// Tick 1: input starts below threshold, no edge yet.
	if err := w.SetInputValues(map[types.InputID]float64{inputID: 0}); err != nil {
		t.Fatalf("SetInputValues: %v", err)
	}
	if err := w.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if v := w.OutputValues()[outputID]; v != 0 {
		t.Fatalf("expected no pulse before any rising edge, got %v", v)
	}

	// Tick 2: input crosses the threshold, the rising edge fires.
	if err := w.SetInputValues(map[types.InputID]float64{inputID: 5}); err != nil {
		t.Fatalf("SetInputValues: %v", err)
	}
	if err := w.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if v := w.OutputValues()[outputID]; v != 10 {
		t.Fatalf("expected rising-edge pulse of 5*2=10 to land same tick, got %v", v)
	}

	// Tick 3: input holds steady above threshold, so there is no further
	// edge and no new pulse lands; the output simply holds its last value.
	if err := w.SetInputValues(map[types.InputID]float64{inputID: 5}); err != nil {
		t.Fatalf("SetInputValues: %v", err)
	}
	if err := w.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if v := w.OutputValues()[outputID]; v != 10 {
		t.Fatalf("expected output to hold its last value with no new pulse, got %v", v)
	}
}

func TestSustainedConditionRequiresConsecutiveTicks(t *testing.T) {
	w := newDecayFreeTestWorld(t)

	const inputID types.InputID = 1
	const outputID types.OutputID = 1
	if err := w.AddInputNode(inputID); err != nil {
		t.Fatalf("AddInputNode: %v", err)
	}
	if err := w.AddOutputNode(outputID); err != nil {
		t.Fatalf("AddOutputNode: %v", err)
	}

	sid, err := w.AddSynapse(
		Endpoint{Kind: types.EntityInput, ID: uint64(inputID)},
		Endpoint{Kind: types.EntityOutput, ID: uint64(outputID)},
		types.Immediate, 1.0, 1.0,
	)
	if err != nil {
		t.Fatalf("AddSynapse: %v", err)
	}
	setSynapseCondition(t, w, sid, condition.TemporalCondition{
		Operator:  types.Sustained,
		Threshold: 1,
		Duration:  3,
	})

	for i := 0; i < 2; i++ {
		if err := w.SetInputValues(map[types.InputID]float64{inputID: 5}); err != nil {
			t.Fatalf("SetInputValues: %v", err)
		}
		if err := w.Step(); err != nil {
			t.Fatalf("Step: %v", err)
		}
		if v := w.OutputValues()[outputID]; v != 0 {
			t.Fatalf("tick %d: expected no pulse before the sustain duration elapses, got %v", i+1, v)
		}
	}

	if err := w.SetInputValues(map[types.InputID]float64{inputID: 5}); err != nil {
		t.Fatalf("SetInputValues: %v", err)
	}
	if err := w.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if v := w.OutputValues()[outputID]; v != 5 {
		t.Fatalf("expected the third consecutive tick above threshold to satisfy Sustained(3), got %v", v)
	}
}
