/*
=================================================================================
HOST API BRIDGE CONTRACT
=================================================================================

HostAPI is the boundary between gene bytecode and the world. Exactly like the
teacher's callback-struct decoupling (component/callbacks.go's
ComponentCallbacks, synapse/types.go's SynapseCallbacks), `gene` never
imports `world` — the World type implements HostAPI and is injected into
each VM run, so the dependency points one way only.

Each API_* opcode is dispatched through the single Call method rather than
one interface method per call: the world owns argument validation and the
"invalid mutation returns a neutral value and a warning, never corrupts
state" policy (spec.md §4.5, §7) inside one place (world/bridge.go), while
gene/vm.go uses each call's stack arity and minimum security context from
the table below, refusing an under-privileged call before it reaches the
world.
=================================================================================
*/
package gene

import "github.com/hidra-sim/hidra/types"

// CallSpec describes one API_* opcode's stack contract and the minimum
// security context required to invoke it (spec.md §4.4 "Security contexts").
type CallSpec struct {
	Args     int
	Results  int
	MinLevel types.SecurityContext
}

// callSpecs is indexed by Opcode; only host-call opcodes have an entry.
var callSpecs = map[Opcode]CallSpec{
	OpAPICreateNeuron:                {Args: 3, Results: 1, MinLevel: types.ContextProtected},
	OpAPIAddSynapse:                  {Args: 6, Results: 1, MinLevel: types.ContextGeneral},
	OpAPIMitosis:                     {Args: 3, Results: 1, MinLevel: types.ContextProtected},
	OpAPIGetSelfID:                   {Args: 0, Results: 1, MinLevel: types.ContextGeneral},
	OpAPIGetPositionX:                {Args: 0, Results: 1, MinLevel: types.ContextGeneral},
	OpAPIGetPositionY:                {Args: 0, Results: 1, MinLevel: types.ContextGeneral},
	OpAPIGetPositionZ:                {Args: 0, Results: 1, MinLevel: types.ContextGeneral},
	OpAPIGetNeighborCount:            {Args: 1, Results: 1, MinLevel: types.ContextGeneral},
	OpAPIGetNearestNeighborID:        {Args: 1, Results: 1, MinLevel: types.ContextGeneral},
	OpAPIGetNearestNeighborPositionX: {Args: 1, Results: 1, MinLevel: types.ContextGeneral},
	OpAPIGetNearestNeighborPositionY: {Args: 1, Results: 1, MinLevel: types.ContextGeneral},
	OpAPIGetNearestNeighborPositionZ: {Args: 1, Results: 1, MinLevel: types.ContextGeneral},
	OpAPIGetFiringRate:               {Args: 0, Results: 1, MinLevel: types.ContextGeneral},
	OpAPILoadLVar:                    {Args: 1, Results: 1, MinLevel: types.ContextGeneral},
	OpAPIStoreLVar:                   {Args: 2, Results: 0, MinLevel: types.ContextGeneral},
	OpAPILoadGVar:                    {Args: 1, Results: 1, MinLevel: types.ContextGeneral},
	OpAPIStoreGVar:                   {Args: 2, Results: 0, MinLevel: types.ContextProtected},
	OpAPISetSynapseCondition:         {Args: 6, Results: 0, MinLevel: types.ContextGeneral},
	OpAPISetSynapseProperty:          {Args: 3, Results: 0, MinLevel: types.ContextGeneral},
	OpAPIGetSynapseProperty:          {Args: 2, Results: 1, MinLevel: types.ContextGeneral},
	OpAPIAddBrainNode:                {Args: 4, Results: 1, MinLevel: types.ContextProtected},
	OpAPIAddBrainConnection:          {Args: 3, Results: 0, MinLevel: types.ContextProtected},
	OpAPISetBrainType:                {Args: 1, Results: 0, MinLevel: types.ContextProtected},
	OpAPIComposeFloat16:              {Args: 2, Results: 1, MinLevel: types.ContextGeneral},
}

// Spec returns the CallSpec for a host-call opcode, and false if op is not
// a host call.
func Spec(op Opcode) (CallSpec, bool) {
	s, ok := callSpecs[op]
	return s, ok
}

// HostAPI is implemented by World. Args are passed in the order they were
// pushed (first-pushed first); Call returns exactly spec.Results values.
//
// Call itself only ever returns a non-nil error for a genuine host failure
// (e.g. an internal invariant violation) — per spec.md §4.4, that terminates
// the gene. Invalid-but-survivable mutations (bad endpoint, bad index) are
// the implementation's responsibility to turn into a neutral zero result
// plus a logged warning, never an error (spec.md §4.5, §7). Security
// refusals never reach Call: Run handles them itself.
type HostAPI interface {
	Call(ctx types.SecurityContext, neuronID uint64, op Opcode, args []float64) ([]float64, error)
}
