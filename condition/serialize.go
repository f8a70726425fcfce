/*
=================================================================================
POLYMORPHIC CONDITION SERIALIZATION
=================================================================================

Conditions are tagged variants, not an interface msgpack can encode directly.
Tagged encodes any Condition into a whitelisted wire representation; Untag
rejects any tag it does not recognize rather than attempting to guess a
shape, per spec.md §9 ("a binder whitelists recognized tags and rejects
others").
=================================================================================
*/
package condition

import (
	"fmt"

	"github.com/hidra-sim/hidra/types"
)

// Tag identifies a Condition variant on the wire.
type Tag string

const (
	TagLVar       Tag = "lvar"
	TagGVar       Tag = "gvar"
	TagRelational Tag = "relational"
	TagTemporal   Tag = "temporal"
	TagComposite  Tag = "composite"
)

// Wire is the whitelisted, flat, msgpack-friendly representation of any
// Condition variant. Exactly one of the variant-specific field groups is
// populated, selected by Tag.
type Wire struct {
	Tag Tag `msgpack:"tag"`

	// LVarCondition / GVarCondition / RelationalCondition fields.
	Target EndpointSelector    `msgpack:"target,omitempty"`
	Index  int                 `msgpack:"index,omitempty"`
	Op     types.ComparisonOp  `msgpack:"op,omitempty"`
	Value  float64             `msgpack:"value,omitempty"`

	// TemporalCondition fields.
	TemporalOp types.TemporalOp `msgpack:"temporal_op,omitempty"`
	Threshold  float64          `msgpack:"threshold,omitempty"`
	Duration   int              `msgpack:"duration,omitempty"`

	// CompositeCondition fields.
	Logic    types.CompositeLogic `msgpack:"logic,omitempty"`
	Children []Wire               `msgpack:"children,omitempty"`
}

// Tagged converts a Condition into its whitelisted wire form. A nil
// Condition encodes as a Wire with an empty Tag.
func Tagged(c Condition) Wire {
	switch v := c.(type) {
	case nil:
		return Wire{}
	case LVarCondition:
		return Wire{Tag: TagLVar, Target: v.Target, Index: v.Index, Op: v.Op, Value: v.Value}
	case GVarCondition:
		return Wire{Tag: TagGVar, Index: v.Index, Op: v.Op, Value: v.Value}
	case RelationalCondition:
		return Wire{Tag: TagRelational, Op: v.Op}
	case TemporalCondition:
		return Wire{Tag: TagTemporal, TemporalOp: v.Operator, Threshold: v.Threshold, Duration: v.Duration}
	case CompositeCondition:
		children := make([]Wire, len(v.Children))
		for i, ch := range v.Children {
			children[i] = Tagged(ch)
		}
		return Wire{Tag: TagComposite, Logic: v.Logic, Children: children}
	default:
		// Unreachable for conditions constructed through this package;
		// defensive rather than a panic, per spec.md §7's "never corrupt
		// state" policy.
		return Wire{}
	}
}

// Untag reconstructs a Condition from its wire form, rejecting any tag not
// in the whitelist above. A Wire with an empty Tag decodes to (nil, nil),
// representing "no condition" (default test applies instead, per
// spec.md §4.9 Phase 2).
func Untag(w Wire) (Condition, error) {
	switch w.Tag {
	case "":
		return nil, nil
	case TagLVar:
		return LVarCondition{Target: w.Target, Index: w.Index, Op: w.Op, Value: w.Value}, nil
	case TagGVar:
		return GVarCondition{Index: w.Index, Op: w.Op, Value: w.Value}, nil
	case TagRelational:
		return RelationalCondition{Op: w.Op}, nil
	case TagTemporal:
		return TemporalCondition{Operator: w.TemporalOp, Threshold: w.Threshold, Duration: w.Duration}, nil
	case TagComposite:
		children := make([]Condition, 0, len(w.Children))
		for _, ch := range w.Children {
			c, err := Untag(ch)
			if err != nil {
				return nil, err
			}
			if c != nil {
				children = append(children, c)
			}
		}
		return CompositeCondition{Logic: w.Logic, Children: children}, nil
	default:
		return nil, fmt.Errorf("condition: unrecognized tag %q", w.Tag)
	}
}
