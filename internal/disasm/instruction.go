// Package disasm implements the whole-PRG 6502 disassembler: a linear sweep followed
// by a recursive trace of the control flow reachable from the ROM's entry points.
package disasm

import "github.com/retroenv/nesdecompiler/internal/cpu6502"

// Instruction is one decoded 6502 instruction at a specific CPU address.
type Instruction struct {
	CPUAddress uint16
	ROMOffset  uint16
	Info       cpu6502.Info
	Bytes      []byte

	TargetAddress   uint16 // resolved branch/jump target, only meaningful if TargetResolved
	TargetResolved  bool
	Label           string
	Comment         string

	// SubAddressOrder is a tie-breaker for multiple synthetic records sharing a
	// CPUAddress: 0 for the real decoded instruction, positive for loopback-repair
	// pseudo-JMPs synthesized by the function decompiler, negative for other virtual
	// variants. The whole-program disassembler only ever produces SubAddressOrder 0.
	SubAddressOrder int
}

// IsBranch reports whether this is a conditional branch instruction.
func (ins *Instruction) IsBranch() bool {
	return ins.Info.IsBranch()
}

// IsJump reports whether this is JMP or JSR.
func (ins *Instruction) IsJump() bool {
	return ins.Info.IsJump()
}

// IsFunctionExit reports whether this is RTS or RTI.
func (ins *Instruction) IsFunctionExit() bool {
	return ins.Info.IsFunctionExit()
}

// OperandValue returns the operand value used for formatting and target resolution:
// for one-byte-operand modes this is the raw operand byte, for two-byte-operand
// modes it is the little-endian word.
func (ins *Instruction) OperandValue() uint16 {
	switch len(ins.Bytes) {
	case 2:
		return uint16(ins.Bytes[1])
	case 3:
		return uint16(ins.Bytes[1]) | uint16(ins.Bytes[2])<<8
	default:
		return 0
	}
}
