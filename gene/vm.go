/*
=================================================================================
GENE VIRTUAL MACHINE
=================================================================================

Run executes one decoded gene against a HostAPI bridge. It is a plain
stack interpreter: a program counter over the instruction list, a float64
operand stack, and a fuel counter that is decremented once per executed
instruction (spec.md §4.4 "fuel metering"). Running out of fuel, reaching
OP_HALT, or falling off the end of the instruction list all end execution
without error — only a stack underflow or an error returned by the host
bridge surfaces as a RuntimeError, and even that only terminates this one
gene's execution, never the tick (spec.md §7). Division or modulo by zero
pushes 0 and records a Warning.

Security-context enforcement for API_* calls lives here rather than in the
bridge: the call spec table is a property of the bytecode contract, and
refusing locally means an under-privileged call never even reaches World.
A refused call pushes the right number of neutral zero results and records
a Warning; it never aborts the gene (spec.md §4.4, §4.5).
=================================================================================
*/
package gene

import (
	"fmt"

	"github.com/hidra-sim/hidra/types"
)

// RuntimeError is a fatal-to-this-gene condition: stack underflow or an
// error returned by the host bridge. The tick continues regardless.
type RuntimeError struct {
	ByteOffset int
	Message    string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("gene runtime error at offset %d: %s", e.ByteOffset, e.Message)
}

// Result summarizes one gene's execution.
type Result struct {
	FuelUsed int
	Halted   bool // true if OP_HALT was reached (as opposed to running dry on fuel/instructions)
	Err      *RuntimeError
	Warnings []Warning
}

// DefaultFuel returns the system fuel budget for a gene id absent an
// explicit GeneExecutionFuel local-variable override (spec.md §4.4).
func DefaultFuel(geneID uint64) int {
	switch geneID {
	case GeneGenesis:
		return 5000
	case GeneGestation, GeneMitosis, GeneApoptosis:
		return 3000
	default:
		return 1000
	}
}

// Run executes gene.Instructions to completion, halt, or fuel exhaustion.
func Run(gene Gene, fuel int, ctx types.SecurityContext, neuronID uint64, api HostAPI) Result {
	stack := make([]float64, 0, 16)
	pc := 0
	used := 0
	var warnings []Warning

	pop := func() (float64, bool) {
		if len(stack) == 0 {
			return 0, false
		}
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v, true
	}
	push := func(v float64) { stack = append(stack, v) }
	boolOf := func(v float64) bool { return v != 0 }
	boolToFloat := func(b bool) float64 {
		if b {
			return 1
		}
		return 0
	}

	instrs := gene.Instructions
	for pc < len(instrs) && used < fuel {
		in := instrs[pc]
		used++

		switch {
		case in.Opcode == OpHalt:
			return Result{FuelUsed: used, Halted: true, Warnings: warnings}

		case in.Opcode == OpNop:
			pc++

		case in.Opcode == OpPushByte:
			push(float64(in.Operand))
			pc++

		case in.Opcode == OpPop:
			if _, ok := pop(); !ok {
				return Result{FuelUsed: used, Err: &RuntimeError{in.ByteOffset, "stack underflow on POP"}, Warnings: warnings}
			}
			pc++

		case in.Opcode == OpDup:
			v, ok := pop()
			if !ok {
				return Result{FuelUsed: used, Err: &RuntimeError{in.ByteOffset, "stack underflow on DUP"}, Warnings: warnings}
			}
			push(v)
			push(v)
			pc++

		case in.Opcode == OpSwap:
			b, ok1 := pop()
			a, ok2 := pop()
			if !ok1 || !ok2 {
				return Result{FuelUsed: used, Err: &RuntimeError{in.ByteOffset, "stack underflow on SWAP"}, Warnings: warnings}
			}
			push(b)
			push(a)
			pc++

		case in.Opcode == OpAdd || in.Opcode == OpSub || in.Opcode == OpMul || in.Opcode == OpDiv || in.Opcode == OpMod:
			b, ok1 := pop()
			a, ok2 := pop()
			if !ok1 || !ok2 {
				return Result{FuelUsed: used, Err: &RuntimeError{in.ByteOffset, "stack underflow on arithmetic op"}, Warnings: warnings}
			}
			var r float64
			switch in.Opcode {
			case OpAdd:
				r = a + b
			case OpSub:
				r = a - b
			case OpMul:
				r = a * b
			case OpDiv:
				if b == 0 {
					warnings = append(warnings, Warning{ByteOffset: in.ByteOffset, Message: "division by zero, result forced to 0"})
					r = 0
				} else {
					r = a / b
				}
			case OpMod:
				if b == 0 {
					warnings = append(warnings, Warning{ByteOffset: in.ByteOffset, Message: "modulo by zero, result forced to 0"})
					r = 0
				} else {
					r = float64(int64(a) % int64(b))
				}
			}
			push(r)
			pc++

		case in.Opcode == OpNeg:
			a, ok := pop()
			if !ok {
				return Result{FuelUsed: used, Err: &RuntimeError{in.ByteOffset, "stack underflow on NEG"}, Warnings: warnings}
			}
			push(-a)
			pc++

		case in.Opcode == OpAnd || in.Opcode == OpOr || in.Opcode == OpXor:
			b, ok1 := pop()
			a, ok2 := pop()
			if !ok1 || !ok2 {
				return Result{FuelUsed: used, Err: &RuntimeError{in.ByteOffset, "stack underflow on boolean op"}, Warnings: warnings}
			}
			var r bool
			switch in.Opcode {
			case OpAnd:
				r = boolOf(a) && boolOf(b)
			case OpOr:
				r = boolOf(a) || boolOf(b)
			case OpXor:
				r = boolOf(a) != boolOf(b)
			}
			push(boolToFloat(r))
			pc++

		case in.Opcode == OpNot:
			a, ok := pop()
			if !ok {
				return Result{FuelUsed: used, Err: &RuntimeError{in.ByteOffset, "stack underflow on NOT"}, Warnings: warnings}
			}
			push(boolToFloat(!boolOf(a)))
			pc++

		case in.Opcode == OpLt || in.Opcode == OpGt || in.Opcode == OpLe || in.Opcode == OpGe || in.Opcode == OpEq || in.Opcode == OpNe:
			b, ok1 := pop()
			a, ok2 := pop()
			if !ok1 || !ok2 {
				return Result{FuelUsed: used, Err: &RuntimeError{in.ByteOffset, "stack underflow on comparison"}, Warnings: warnings}
			}
			var r bool
			switch in.Opcode {
			case OpLt:
				r = a < b
			case OpGt:
				r = a > b
			case OpLe:
				r = a <= b
			case OpGe:
				r = a >= b
			case OpEq:
				r = a == b
			case OpNe:
				r = a != b
			}
			push(boolToFloat(r))
			pc++

		case in.Opcode == OpJmp:
			if in.JumpTarget < 0 {
				pc++ // unresolved jump decoded to OP_NOP already; defensive fallthrough
				continue
			}
			pc = in.JumpTarget

		case in.Opcode == OpJz || in.Opcode == OpJnz || in.Opcode == OpJne:
			a, ok := pop()
			if !ok {
				return Result{FuelUsed: used, Err: &RuntimeError{in.ByteOffset, "stack underflow on conditional jump"}, Warnings: warnings}
			}
			take := false
			switch in.Opcode {
			case OpJz:
				take = !boolOf(a)
			case OpJnz, OpJne:
				take = boolOf(a)
			}
			if take && in.JumpTarget >= 0 {
				pc = in.JumpTarget
			} else {
				pc++
			}

		case in.Opcode.IsHostCall():
			spec, ok := Spec(in.Opcode)
			if !ok {
				pc++
				continue
			}
			args := make([]float64, spec.Args)
			underflow := false
			for i := spec.Args - 1; i >= 0; i-- {
				v, ok := pop()
				if !ok {
					underflow = true
					break
				}
				args[i] = v
			}
			if underflow {
				return Result{FuelUsed: used, Err: &RuntimeError{in.ByteOffset, fmt.Sprintf("stack underflow on %s", in.Opcode)}, Warnings: warnings}
			}
			if !ctx.Allows(spec.MinLevel) {
				warnings = append(warnings, Warning{ByteOffset: in.ByteOffset, Message: fmt.Sprintf("%s refused: requires security context %v, have %v", in.Opcode, spec.MinLevel, ctx)})
				for i := 0; i < spec.Results; i++ {
					push(0)
				}
				pc++
				continue
			}
			results, err := api.Call(ctx, neuronID, in.Opcode, args)
			if err != nil {
				return Result{FuelUsed: used, Err: &RuntimeError{in.ByteOffset, err.Error()}, Warnings: warnings}
			}
			for _, r := range results {
				push(r)
			}
			pc++

		default:
			pc++ // unreachable given Decode's opcodeCount bound, but never corrupts state
		}
	}

	return Result{FuelUsed: used, Halted: false, Warnings: warnings}
}
