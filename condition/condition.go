/*
=================================================================================
SYNAPSE CONDITION SUBSYSTEM
=================================================================================

Polymorphic synapse predicates, evaluated every tick a synapse's source value
is considered for propagation (spec.md §4.6). Hidra follows the teacher's
established pattern of polymorphism-without-inheritance (spec.md §9):
tagged variants implementing one interface, dispatched explicitly, with no
virtual tables — the same shape the teacher uses for its SynapticProcessor
implementations and its config-driven behavior throughout `synapse/`.

Each Condition is evaluated against a Context built fresh by the caller for
every evaluation; conditions are themselves data (safe to snapshot) except
for TemporalCondition, which carries its own previous-value/counter state as
part of the synapse record (spec.md §3), not inside the Condition value
itself — the Context supplies that state by reference so the condition can
both read and update it.
=================================================================================
*/
package condition

import "github.com/hidra-sim/hidra/types"

// EndpointSelector picks which side of a synapse an LVarCondition reads from.
type EndpointSelector int

const (
	EndpointSource EndpointSelector = iota
	EndpointTarget
)

// Context carries everything a Condition needs to evaluate, built fresh by
// the caller (Phase 2 for input-driven synapses, Phase 4 for neuron-driven
// propagation) for each evaluation.
type Context struct {
	SourceValue float64 // the current value flowing out of the source entity

	// Local-variable lookups, bound to whichever endpoint the condition
	// requests (source or target neuron). Returns (0, false) if the
	// requested endpoint is not a neuron or the index is invalid.
	LocalVar func(sel EndpointSelector, index int) (float64, bool)

	// GlobalHormone looks up a global hormone by index.
	GlobalHormone func(index int) (float64, bool)

	// TargetPotential returns the target neuron's current total potential
	// (DendriticPotential + SomaPotential), used by RelationalCondition.
	TargetPotential func() (float64, bool)

	// Temporal state, owned by the synapse record itself (spec.md §3:
	// "previous source value", "sustained counter"); the Condition reads
	// and writes through these accessors rather than holding its own copy,
	// so a TemporalCondition value stays immutable and shareable.
	PreviousSourceValue float64
	SustainedCounter    int
	SetSustainedCounter func(int)
}

// Condition is implemented by every synapse predicate variant.
type Condition interface {
	// Evaluate reports whether the condition passes for the given context.
	Evaluate(ctx Context) bool
}

// LVarCondition compares a local variable on the source or target neuron
// against a fixed value.
type LVarCondition struct {
	Target EndpointSelector
	Index  int
	Op     types.ComparisonOp
	Value  float64
}

func (c LVarCondition) Evaluate(ctx Context) bool {
	if ctx.LocalVar == nil {
		return false
	}
	v, ok := ctx.LocalVar(c.Target, c.Index)
	if !ok {
		return false
	}
	return c.Op.Compare(v, c.Value)
}

// GVarCondition compares a global hormone against a fixed value.
type GVarCondition struct {
	Index int
	Op    types.ComparisonOp
	Value float64
}

func (c GVarCondition) Evaluate(ctx Context) bool {
	if ctx.GlobalHormone == nil {
		return false
	}
	v, ok := ctx.GlobalHormone(c.Index)
	if !ok {
		return false
	}
	return c.Op.Compare(v, c.Value)
}

// RelationalCondition compares the source value to the target neuron's
// current total potential.
type RelationalCondition struct {
	Op types.ComparisonOp
}

func (c RelationalCondition) Evaluate(ctx Context) bool {
	if ctx.TargetPotential == nil {
		return false
	}
	p, ok := ctx.TargetPotential()
	if !ok {
		return false
	}
	return c.Op.Compare(ctx.SourceValue, p)
}

// TemporalCondition evaluates edge/change/sustain semantics over the
// synapse's recorded previous source value and sustained counter
// (spec.md §4.6).
type TemporalCondition struct {
	Operator  types.TemporalOp
	Threshold float64
	Duration  int
}

func (c TemporalCondition) Evaluate(ctx Context) bool {
	prev := ctx.PreviousSourceValue
	cur := ctx.SourceValue

	switch c.Operator {
	case types.RisingEdge:
		return prev < c.Threshold && cur >= c.Threshold
	case types.FallingEdge:
		return prev >= c.Threshold && cur < c.Threshold
	case types.Changed:
		d := cur - prev
		if d < 0 {
			d = -d
		}
		return d > c.Threshold
	case types.Sustained:
		if cur >= c.Threshold {
			next := ctx.SustainedCounter + 1
			if ctx.SetSustainedCounter != nil {
				ctx.SetSustainedCounter(next)
			}
			return next >= c.Duration
		}
		if ctx.SetSustainedCounter != nil {
			ctx.SetSustainedCounter(0)
		}
		return false
	default:
		return false
	}
}

// CompositeCondition combines child conditions with All/Any logic. An empty
// composite evaluates to true (spec.md §4.6).
type CompositeCondition struct {
	Logic    types.CompositeLogic
	Children []Condition
}

func (c CompositeCondition) Evaluate(ctx Context) bool {
	if len(c.Children) == 0 {
		return true
	}
	switch c.Logic {
	case types.LogicAny:
		for _, child := range c.Children {
			if child.Evaluate(ctx) {
				return true
			}
		}
		return false
	default: // LogicAll
		for _, child := range c.Children {
			if !child.Evaluate(ctx) {
				return false
			}
		}
		return true
	}
}
