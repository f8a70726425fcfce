package brain

import (
	"testing"

	"github.com/hidra-sim/hidra/types"
)

func TestPassThroughEvaluate(t *testing.T) {
	b := PassThrough{}
	out := b.Evaluate([]float64{4.2})
	if len(out) != 1 || out[0] != 4.2 {
		t.Fatalf("expected passthrough of 4.2, got %v", out)
	}
}

func TestLogicGateXOR(t *testing.T) {
	g := &LogicGate{Gate: types.GateXOR, Threshold: 0.5}
	cases := []struct {
		a, b float64
		want float64
	}{
		{0, 0, 0},
		{1, 0, 1},
		{0, 1, 1},
		{1, 1, 0},
	}
	for _, c := range cases {
		out := g.Evaluate([]float64{c.a, c.b})
		if out[0] != c.want {
			t.Fatalf("XOR(%v,%v) = %v, want %v", c.a, c.b, out[0], c.want)
		}
	}
}

func TestFeedForwardAcyclicRejection(t *testing.T) {
	f := NewFeedForward()
	f.AddNode(Node{ID: 0, Kind: NodeInput})
	f.AddNode(Node{ID: 1, Kind: NodeHidden, Activation: types.ActivationTanh})
	f.AddNode(Node{ID: 2, Kind: NodeOutput})

	if err := f.AddConnection(0, 1, 1.0); err != nil {
		t.Fatalf("unexpected error adding 0->1: %v", err)
	}
	if err := f.AddConnection(1, 2, 1.0); err != nil {
		t.Fatalf("unexpected error adding 1->2: %v", err)
	}
	if err := f.AddConnection(2, 1, 1.0); err == nil {
		t.Fatalf("expected cycle rejection for 2->1")
	}
}

func TestFeedForwardEvaluateIdentity(t *testing.T) {
	f := NewFeedForward()
	f.AddNode(Node{ID: 0, Kind: NodeInput})
	f.AddNode(Node{ID: 1, Kind: NodeOutput, Activation: types.ActivationIdentity})
	if err := f.AddConnection(0, 1, 2.0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := f.Evaluate([]float64{3.0})
	if len(out) != 1 || out[0] != 6.0 {
		t.Fatalf("expected 6.0, got %v", out)
	}
}

func TestFeedForwardInputOutputMapOrder(t *testing.T) {
	f := NewFeedForward()
	f.AddNode(Node{ID: 0, Kind: NodeInput, Source: InputSource{Type: types.SourceHealth}})
	f.AddNode(Node{ID: 1, Kind: NodeInput, Source: InputSource{Type: types.SourceAge}})
	f.AddNode(Node{ID: 2, Kind: NodeOutput, Action: OutputAction{Type: types.ActionMove}})
	_ = f.AddConnection(0, 2, 1)
	_ = f.AddConnection(1, 2, 1)

	inputs := f.InputMap()
	if len(inputs) != 2 || inputs[0].Type != types.SourceHealth || inputs[1].Type != types.SourceAge {
		t.Fatalf("unexpected input map order: %+v", inputs)
	}
	outputs := f.OutputMap()
	if len(outputs) != 1 || outputs[0].Type != types.ActionMove {
		t.Fatalf("unexpected output map: %+v", outputs)
	}
}
