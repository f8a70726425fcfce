package gene

import (
	"errors"
	"testing"

	"github.com/hidra-sim/hidra/types"
)

type fakeAPI struct {
	calls   int
	fail    bool
	lastOp  Opcode
	lastArg []float64
}

func (f *fakeAPI) Call(ctx types.SecurityContext, neuronID uint64, op Opcode, args []float64) ([]float64, error) {
	f.calls++
	f.lastOp = op
	f.lastArg = args
	if f.fail {
		return nil, errors.New("simulated host failure")
	}
	switch op {
	case OpAPIGetSelfID:
		return []float64{float64(neuronID)}, nil
	case OpAPIComposeFloat16:
		return []float64{args[0] + args[1]/255.0}, nil
	default:
		return make([]float64, 0), nil
	}
}

func program(instrs ...Instruction) Gene {
	for i := range instrs {
		instrs[i].ByteOffset = i
		instrs[i].Size = 1
	}
	return Gene{ID: 99, Instructions: instrs}
}

func TestVMArithmeticAndHalt(t *testing.T) {
	g := program(
		Instruction{Opcode: OpPushByte, Operand: 10, JumpTarget: -1},
		Instruction{Opcode: OpPushByte, Operand: 5, JumpTarget: -1},
		Instruction{Opcode: OpSub, JumpTarget: -1},
		Instruction{Opcode: OpHalt, JumpTarget: -1},
	)
	res := Run(g, 100, types.ContextGeneral, 1, &fakeAPI{})
	if !res.Halted || res.Err != nil {
		t.Fatalf("expected clean halt, got %+v", res)
	}
}

func TestVMStackUnderflowRecorded(t *testing.T) {
	g := program(Instruction{Opcode: OpAdd, JumpTarget: -1})
	res := Run(g, 100, types.ContextGeneral, 1, &fakeAPI{})
	if res.Err == nil {
		t.Fatalf("expected underflow error")
	}
}

func TestVMFuelExhaustionStopsWithoutError(t *testing.T) {
	// An infinite loop: a single JMP whose target is itself (index 0).
	g := program(
		Instruction{Opcode: OpJmp, JumpTarget: 0},
	)
	res := Run(g, 10, types.ContextGeneral, 1, &fakeAPI{})
	if res.Err != nil {
		t.Fatalf("fuel exhaustion must not be a runtime error, got %v", res.Err)
	}
	if res.FuelUsed != 10 {
		t.Fatalf("expected exactly fuel budget consumed, got %d", res.FuelUsed)
	}
	if res.Halted {
		t.Fatalf("should not report Halted when it ran out of fuel, not OP_HALT")
	}
}

func TestVMDivisionByZeroIsWarningNotError(t *testing.T) {
	g := program(
		Instruction{Opcode: OpPushByte, Operand: 7, JumpTarget: -1},
		Instruction{Opcode: OpPushByte, Operand: 0, JumpTarget: -1},
		Instruction{Opcode: OpDiv, JumpTarget: -1},
		Instruction{Opcode: OpHalt, JumpTarget: -1},
	)
	res := Run(g, 100, types.ContextGeneral, 1, &fakeAPI{})
	if res.Err != nil {
		t.Fatalf("division by zero must degrade, not fault: %v", res.Err)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("expected one warning, got %v", res.Warnings)
	}
}

func TestVMHostCallSecurityRefusalIsNeutral(t *testing.T) {
	// API_CREATE_NEURON requires ContextProtected; calling with ContextGeneral
	// must push a neutral 0 and record a warning, never call the bridge.
	g := program(
		Instruction{Opcode: OpPushByte, Operand: 1, JumpTarget: -1},
		Instruction{Opcode: OpPushByte, Operand: 2, JumpTarget: -1},
		Instruction{Opcode: OpPushByte, Operand: 3, JumpTarget: -1},
		Instruction{Opcode: OpAPICreateNeuron, JumpTarget: -1},
		Instruction{Opcode: OpHalt, JumpTarget: -1},
	)
	api := &fakeAPI{}
	res := Run(g, 100, types.ContextGeneral, 1, api)
	if res.Err != nil {
		t.Fatalf("security refusal must not be a runtime error: %v", res.Err)
	}
	if api.calls != 0 {
		t.Fatalf("bridge must not be invoked on a refused call")
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("expected one refusal warning, got %v", res.Warnings)
	}
}

func TestVMHostCallDispatchesAndPushesResult(t *testing.T) {
	g := program(
		Instruction{Opcode: OpAPIGetSelfID, JumpTarget: -1},
		Instruction{Opcode: OpHalt, JumpTarget: -1},
	)
	api := &fakeAPI{}
	res := Run(g, 100, types.ContextGeneral, 42, api)
	if res.Err != nil || api.calls != 1 {
		t.Fatalf("expected a single successful dispatch, got %+v calls=%d", res, api.calls)
	}
}

func TestVMHostFailureTerminatesGeneOnly(t *testing.T) {
	g := program(
		Instruction{Opcode: OpAPIGetSelfID, JumpTarget: -1},
		Instruction{Opcode: OpHalt, JumpTarget: -1},
	)
	api := &fakeAPI{fail: true}
	res := Run(g, 100, types.ContextGeneral, 1, api)
	if res.Err == nil {
		t.Fatalf("expected a runtime error from host failure")
	}
}

func TestVMComposeFloat16(t *testing.T) {
	g := program(
		Instruction{Opcode: OpPushByte, Operand: 3, JumpTarget: -1},
		Instruction{Opcode: OpPushByte, Operand: 128, JumpTarget: -1},
		Instruction{Opcode: OpAPIComposeFloat16, JumpTarget: -1},
		Instruction{Opcode: OpHalt, JumpTarget: -1},
	)
	api := &fakeAPI{}
	res := Run(g, 100, types.ContextGeneral, 1, api)
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	_ = api
}

func TestDefaultFuelByGeneID(t *testing.T) {
	if DefaultFuel(GeneGenesis) != 5000 {
		t.Fatalf("genesis fuel mismatch")
	}
	if DefaultFuel(GeneMitosis) != 3000 {
		t.Fatalf("mitosis fuel mismatch")
	}
	if DefaultFuel(42) != 1000 {
		t.Fatalf("user gene fuel mismatch")
	}
}
