package disasm

import "github.com/retroenv/nesdecompiler/internal/cpu6502"

// resolveTarget computes the statically known branch/jump target for an instruction,
// following the rules in the addressing mode resolution table: relative branches
// always resolve (wrapping), absolute JMP/JSR resolve to the operand word, JMP
// (indirect) resolves to the indirection base but is treated as unknown at runtime,
// and every other addressing mode on a jump is unresolved.
func resolveTarget(info cpu6502.Info, cpuAddress uint16, bytes []byte) (target uint16, resolved bool) {
	switch {
	case info.Mode == cpu6502.Relative:
		offset := int8(bytes[1])
		return uint16(int32(cpuAddress) + int32(info.Size) + int32(offset)), true

	case info.Mnemonic == "JMP" && info.Mode == cpu6502.Absolute:
		return operandWord(bytes), true

	case info.Mnemonic == "JSR" && info.Mode == cpu6502.Absolute:
		return operandWord(bytes), true

	case info.Mnemonic == "JMP" && info.Mode == cpu6502.Indirect:
		// The indirection base is known statically, but the runtime target loaded
		// through it is not; callers must treat this as end-of-function.
		return operandWord(bytes), true

	default:
		return 0, false
	}
}

func operandWord(bytes []byte) uint16 {
	if len(bytes) < 3 {
		return 0
	}
	return uint16(bytes[1]) | uint16(bytes[2])<<8
}
