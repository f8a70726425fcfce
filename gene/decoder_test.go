package gene

import "testing"

func TestDecodeSimpleSequence(t *testing.T) {
	seg := []byte{byte(OpPushByte), 5, byte(OpPushByte), 3, byte(OpAdd), byte(OpHalt)}
	instrs, warnings := Decode(seg)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if len(instrs) != 4 {
		t.Fatalf("expected 4 instructions, got %d", len(instrs))
	}
	if instrs[0].Opcode != OpPushByte || instrs[0].Operand != 5 {
		t.Fatalf("bad first instruction: %+v", instrs[0])
	}
}

func TestDecodeUnknownOpcodeBecomesWarning(t *testing.T) {
	seg := []byte{0xFF, byte(OpHalt)}
	instrs, warnings := Decode(seg)
	if len(warnings) != 1 {
		t.Fatalf("expected one warning, got %v", warnings)
	}
	if len(instrs) != 1 || instrs[0].Opcode != OpHalt {
		t.Fatalf("unknown opcode should be skipped, not decoded: %+v", instrs)
	}
}

func TestDecodeTruncatedOperandWarns(t *testing.T) {
	seg := []byte{byte(OpPushByte)}
	instrs, warnings := Decode(seg)
	if len(warnings) != 1 {
		t.Fatalf("expected truncation warning, got %v", warnings)
	}
	if len(instrs) != 0 {
		t.Fatalf("truncated instruction must not be emitted: %+v", instrs)
	}
}

func TestDecodeJumpResolvesForwardTarget(t *testing.T) {
	// JMP +2 from offset 0 (size 2) lands at offset 4, the HALT.
	seg := []byte{byte(OpJmp), 2, byte(OpPushByte), 9, byte(OpHalt)}
	instrs, warnings := Decode(seg)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if instrs[0].JumpTarget != 2 {
		t.Fatalf("expected jump target index 2 (the HALT), got %d", instrs[0].JumpTarget)
	}
}

func TestDecodeInvalidJumpTargetBecomesNop(t *testing.T) {
	// JMP +1 from offset 0 (size 2) targets offset 3, past the last
	// instruction (not a valid offset).
	seg := []byte{byte(OpJmp), 1, byte(OpHalt)}
	instrs, warnings := Decode(seg)
	if len(warnings) != 1 {
		t.Fatalf("expected one warning for unresolved jump, got %v", warnings)
	}
	if instrs[0].Opcode != OpNop {
		t.Fatalf("unresolved jump must decode as a true no-op, got %v", instrs[0].Opcode)
	}
	if instrs[0].JumpTarget != -1 {
		t.Fatalf("unresolved jump must carry JumpTarget -1, got %d", instrs[0].JumpTarget)
	}
}

func TestDecodeMaxNegativeDisplacementBoundary(t *testing.T) {
	// -128 is the most negative signed 8-bit displacement; a JMP at offset 1
	// (size 2) measures from offset 3, so it targets offset -125, which does
	// not exist -> no-op.
	seg := []byte{byte(OpNop), byte(OpJmp), 0x80}
	instrs, warnings := Decode(seg)
	if len(warnings) != 1 {
		t.Fatalf("expected boundary displacement to miss and warn, got %v", warnings)
	}
	if instrs[1].Opcode != OpNop {
		t.Fatalf("expected no-op substitution at index 1, got %+v", instrs[1])
	}
}
