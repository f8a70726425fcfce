/*
=================================================================================
BRAIN SERIALIZATION
=================================================================================

Wire is the tagged flat representation used to snapshot a neuron's brain
(spec.md §9 "Polymorphic serialization"). Mirrors condition/serialize.go's
Tag/Wire/Untag shape: a whitelist binder rejects any tag it does not
recognize rather than silently defaulting to PassThrough.
=================================================================================
*/
package brain

import (
	"fmt"

	"github.com/hidra-sim/hidra/types"
)

type Wire struct {
	Kind types.BrainKind `msgpack:"kind"`

	// LogicGate fields.
	Gate      types.GateType `msgpack:"gate,omitempty"`
	Threshold float64        `msgpack:"threshold,omitempty"`
	Memory    bool           `msgpack:"memory,omitempty"`
	Inputs    []InputSource  `msgpack:"inputs,omitempty"`

	// FeedForward fields.
	Nodes       []Node       `msgpack:"nodes,omitempty"`
	Connections []Connection `msgpack:"connections,omitempty"`
}

// Tagged converts a Brain into its wire representation.
func Tagged(b Brain) Wire {
	switch v := b.(type) {
	case *PassThrough:
		return Wire{Kind: types.BrainPassThrough}
	case *LogicGate:
		return Wire{Kind: types.BrainLogicGate, Gate: v.Gate, Threshold: v.Threshold, Memory: v.memory, Inputs: v.Inputs}
	case *FeedForward:
		return Wire{Kind: types.BrainFeedForward, Nodes: v.snapshotNodes(), Connections: v.connections}
	default:
		return Wire{Kind: types.BrainPassThrough}
	}
}

// Untag rebuilds a Brain from its wire representation, rejecting unknown
// tags rather than guessing (spec.md §9).
func Untag(w Wire) (Brain, error) {
	switch w.Kind {
	case types.BrainPassThrough, "":
		return &PassThrough{}, nil
	case types.BrainLogicGate:
		return &LogicGate{Gate: w.Gate, Threshold: w.Threshold, memory: w.Memory, Inputs: w.Inputs}, nil
	case types.BrainFeedForward:
		f := NewFeedForward()
		for _, n := range w.Nodes {
			f.AddNode(n)
		}
		for _, c := range w.Connections {
			if err := f.AddConnection(c.From, c.To, c.Weight); err != nil {
				return nil, fmt.Errorf("brain: restoring feed-forward connection %d->%d: %w", c.From, c.To, err)
			}
		}
		return f, nil
	default:
		return nil, fmt.Errorf("brain: unrecognized wire tag %q", w.Kind)
	}
}
