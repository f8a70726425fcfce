package condition

import (
	"testing"

	"github.com/hidra-sim/hidra/types"
)

func TestRisingEdge(t *testing.T) {
	c := TemporalCondition{Operator: types.RisingEdge, Threshold: 3.0}

	if c.Evaluate(Context{SourceValue: 1.49, PreviousSourceValue: 0}) {
		t.Fatalf("expected no rising edge below threshold")
	}
	if !c.Evaluate(Context{SourceValue: 3.05, PreviousSourceValue: 1.49}) {
		t.Fatalf("expected rising edge crossing threshold")
	}
}

func TestFallingEdge(t *testing.T) {
	c := TemporalCondition{Operator: types.FallingEdge, Threshold: 2.0}
	if !c.Evaluate(Context{SourceValue: 1.0, PreviousSourceValue: 2.5}) {
		t.Fatalf("expected falling edge")
	}
	if c.Evaluate(Context{SourceValue: 3.0, PreviousSourceValue: 2.5}) {
		t.Fatalf("expected no falling edge while above threshold")
	}
}

func TestChanged(t *testing.T) {
	c := TemporalCondition{Operator: types.Changed, Threshold: 0.5}
	if !c.Evaluate(Context{SourceValue: 2.0, PreviousSourceValue: 1.0}) {
		t.Fatalf("expected change > threshold to trigger")
	}
	if c.Evaluate(Context{SourceValue: 1.2, PreviousSourceValue: 1.0}) {
		t.Fatalf("expected change <= threshold not to trigger")
	}
}

func TestSustainedAccumulatesAndResets(t *testing.T) {
	c := TemporalCondition{Operator: types.Sustained, Threshold: 1.0, Duration: 3}
	var counter int
	set := func(v int) { counter = v }

	for i := 1; i < 3; i++ {
		fired := c.Evaluate(Context{SourceValue: 2.0, SustainedCounter: counter, SetSustainedCounter: set})
		if fired {
			t.Fatalf("should not fire before duration reached (iteration %d)", i)
		}
	}
	if !c.Evaluate(Context{SourceValue: 2.0, SustainedCounter: counter, SetSustainedCounter: set}) {
		t.Fatalf("expected sustained condition to fire once counter reaches duration")
	}

	// A below-threshold sample resets the counter to zero.
	c.Evaluate(Context{SourceValue: 0.0, SustainedCounter: counter, SetSustainedCounter: set})
	if counter != 0 {
		t.Fatalf("expected counter reset to 0, got %d", counter)
	}
}

func TestCompositeEmptyIsTrue(t *testing.T) {
	c := CompositeCondition{Logic: types.LogicAll}
	if !c.Evaluate(Context{}) {
		t.Fatalf("empty composite must evaluate true")
	}
}

func TestCompositeAllAny(t *testing.T) {
	pass := LVarCondition{Op: types.OpGreater, Value: 0}
	fail := LVarCondition{Op: types.OpLess, Value: 0}
	ctx := Context{LocalVar: func(sel EndpointSelector, idx int) (float64, bool) { return 1, true }}

	all := CompositeCondition{Logic: types.LogicAll, Children: []Condition{pass, fail}}
	if all.Evaluate(ctx) {
		t.Fatalf("All composite with one failing child must be false")
	}

	any := CompositeCondition{Logic: types.LogicAny, Children: []Condition{pass, fail}}
	if !any.Evaluate(ctx) {
		t.Fatalf("Any composite with one passing child must be true")
	}
}

func TestEqualityEpsilon(t *testing.T) {
	if !types.OpEqual.Compare(1.0000001, 1.0) {
		t.Fatalf("expected values within epsilon to compare equal")
	}
	if types.OpEqual.Compare(1.1, 1.0) {
		t.Fatalf("expected values outside epsilon to compare unequal")
	}
}

func TestTaggedUntagRoundTrip(t *testing.T) {
	original := CompositeCondition{
		Logic: types.LogicAny,
		Children: []Condition{
			LVarCondition{Target: EndpointTarget, Index: 3, Op: types.OpGreaterEqual, Value: 1.5},
			TemporalCondition{Operator: types.Sustained, Threshold: 2, Duration: 4},
		},
	}
	wire := Tagged(original)
	restored, err := Untag(wire)
	if err != nil {
		t.Fatalf("Untag failed: %v", err)
	}
	rc, ok := restored.(CompositeCondition)
	if !ok || len(rc.Children) != 2 {
		t.Fatalf("round trip did not preserve composite shape: %#v", restored)
	}
}

func TestUntagRejectsUnknownTag(t *testing.T) {
	_, err := Untag(Wire{Tag: "bogus"})
	if err == nil {
		t.Fatalf("expected error for unrecognized tag")
	}
}
