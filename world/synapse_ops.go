package world

import (
	"github.com/hidra-sim/hidra/condition"
	"github.com/hidra-sim/hidra/types"
)

// Condition kinds a gene's API_SET_SYNAPSE_CONDITION call may request,
// matching spec §4.6's four gene-addressable variants (Composite has no kind
// value: it has no fixed arity, so no single opcode call builds it).
const (
	CondKindLVarSource = 0
	CondKindLVarTarget = 1
	CondKindGVar       = 2
	CondKindRelational = 3
	CondKindTemporal   = 4
)

// buildSynapseCondition constructs the condition variant a gene's
// API_SET_SYNAPSE_CONDITION call asks for, dispatching on kind per spec
// §4.5's "SetSynapseCondition(kind, index, op, threshold, duration)". index,
// op and duration are reinterpreted per kind: index addresses a local
// variable or hormone slot for LVar/GVar and is unused otherwise; op is a
// ComparisonOp for LVar/GVar/Relational and a TemporalOp for Temporal;
// duration only matters for Temporal's Sustained operator.
func buildSynapseCondition(kind, index int, op, threshold, duration float64) condition.Condition {
	switch kind {
	case CondKindLVarSource:
		return condition.LVarCondition{Target: condition.EndpointSource, Index: index, Op: types.ComparisonOp(int(op)), Value: threshold}
	case CondKindLVarTarget:
		return condition.LVarCondition{Target: condition.EndpointTarget, Index: index, Op: types.ComparisonOp(int(op)), Value: threshold}
	case CondKindGVar:
		return condition.GVarCondition{Index: index, Op: types.ComparisonOp(int(op)), Value: threshold}
	case CondKindTemporal:
		return condition.TemporalCondition{Operator: types.TemporalOp(int(op)), Threshold: threshold, Duration: int(duration)}
	default:
		return condition.RelationalCondition{Op: types.ComparisonOp(int(op))}
	}
}

// Synapse property indices a gene may write via API_SET_SYNAPSE_PROPERTY and
// read back via API_GET_SYNAPSE_PROPERTY. The last two are read-only: a
// write to them is silently ignored rather than rejected outright, matching
// the bridge's general "invalid mutation is neutral, never fatal" policy.
const (
	PropWeight          = 0
	PropParameter       = 1
	PropFatigueRate     = 2
	PropFatigueRecover  = 3
	PropPersistentValue = 4
	PropTransientActive = 5
)

func applySynapseProperty(s *Synapse, prop int, value float64) {
	switch prop {
	case PropWeight:
		s.Weight = value
	case PropParameter:
		s.Parameter = value
	case PropFatigueRate:
		s.FatigueRate = value
	case PropFatigueRecover:
		s.FatigueRecoveryRate = value
	}
}

// readSynapseProperty backs API_GET_SYNAPSE_PROPERTY. PropTransientActive
// reads as 1 only on the exact tick the trigger fires (spec.md §4.9's
// "transient_trigger_tick = current_tick + 1"), so a gene polling it once
// per tick sees a clean one-tick pulse without any separate consume step.
func readSynapseProperty(s *Synapse, prop int, currentTick uint64) float64 {
	switch prop {
	case PropWeight:
		return s.Weight
	case PropParameter:
		return s.Parameter
	case PropFatigueRate:
		return s.FatigueRate
	case PropFatigueRecover:
		return s.FatigueRecoveryRate
	case PropPersistentValue:
		return s.PersistentValue
	case PropTransientActive:
		if s.transientArmed && s.TransientTriggerTick == currentTick {
			return 1
		}
		return 0
	default:
		return 0
	}
}
