/*
=================================================================================
GENE DECODER
=================================================================================

Pass 1 walks the segment bytes, emitting {byteOffset, opcode, operand, size}
and recording jump sources. Pass 2 resolves each jump's target by
byteOffset + size + signedOperand and indexes it into the instruction list
(spec.md §4.4). Invalid jump targets become warnings; the offending
instruction becomes a no-op and decoding proceeds rather than failing.
=================================================================================
*/
package gene

import "fmt"

// Instruction is one decoded opcode plus its resolved operand.
type Instruction struct {
	ByteOffset int
	Opcode     Opcode
	Operand    int // raw unsigned operand for PUSH_BYTE; signed displacement for jumps
	Size       int // total encoded size (opcode byte + operand bytes)

	// JumpTarget is the resolved instruction-list index for a jump
	// instruction, or -1 if Opcode is not a jump or the target was invalid
	// (in which case the instruction decodes as a no-op).
	JumpTarget int
}

// Warning describes a non-fatal decode anomaly (spec.md §4.4: "invalid jump
// targets are reported as warnings").
type Warning struct {
	ByteOffset int
	Message    string
}

func (w Warning) String() string {
	return fmt.Sprintf("offset %d: %s", w.ByteOffset, w.Message)
}

// Decode compiles one gene segment into a linear instruction list, resolving
// jump targets in a second pass. Unknown opcode bytes are skipped as 1-byte
// no-ops with a warning, so a corrupt or truncated segment still decodes to
// something the VM can safely execute zero useful instructions from.
func Decode(segment []byte) ([]Instruction, []Warning) {
	var instrs []Instruction
	var warnings []Warning

	// Pass 1: linear walk emitting instructions at their byte offsets.
	offsetToIndex := make(map[int]int)
	for i := 0; i < len(segment); {
		op := Opcode(segment[i])
		if int(op) >= int(opcodeCount) {
			warnings = append(warnings, Warning{ByteOffset: i, Message: fmt.Sprintf("unknown opcode byte 0x%02x, treated as no-op", segment[i])})
			i++
			continue
		}
		size := 1 + op.operandSize()
		operand := 0
		if op.operandSize() == 1 {
			if i+1 >= len(segment) {
				warnings = append(warnings, Warning{ByteOffset: i, Message: "truncated operand at end of segment"})
				break
			}
			raw := segment[i+1]
			if op.IsJump() {
				operand = int(int8(raw)) // signed 8-bit relative displacement
			} else {
				operand = int(raw) // unsigned for PUSH_BYTE
			}
		}

		idx := len(instrs)
		offsetToIndex[i] = idx
		instrs = append(instrs, Instruction{ByteOffset: i, Opcode: op, Operand: operand, Size: size, JumpTarget: -1})
		i += size
	}

	// Pass 2: resolve jump targets now that every instruction's offset is known.
	for idx := range instrs {
		in := &instrs[idx]
		if !in.Opcode.IsJump() {
			continue
		}
		targetOffset := in.ByteOffset + in.Size + in.Operand
		targetIdx, ok := offsetToIndex[targetOffset]
		if !ok {
			warnings = append(warnings, Warning{ByteOffset: in.ByteOffset, Message: fmt.Sprintf("jump target offset %d does not land on an instruction start; treated as no-op", targetOffset)})
			in.JumpTarget = -1
			in.Opcode = OpNop
			in.Operand = 0
			continue
		}
		in.JumpTarget = targetIdx
	}

	return instrs, warnings
}
