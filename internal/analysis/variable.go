package analysis

import (
	"fmt"

	"github.com/retroenv/nesdecompiler/internal/cpu6502"
	"github.com/retroenv/nesdecompiler/internal/disasm"
)

// VariableType is the inferred shape of a memory location accessed by the program.
type VariableType int

const (
	Byte VariableType = iota
	Word
	Array
	Pointer
	Unknown
)

func (t VariableType) String() string {
	switch t {
	case Byte:
		return "Byte"
	case Word:
		return "Word"
	case Array:
		return "Array"
	case Pointer:
		return "Pointer"
	default:
		return "Unknown"
	}
}

// Variable is a memory location the program reads or writes through an addressing
// mode other than Implied/Accumulator/Immediate/Relative.
type Variable struct {
	Address    uint16
	Name       string
	Type       VariableType
	Size       int
	IsRead     bool
	IsWritten  bool
}

// variableAddress extracts the effective-address base referenced by an instruction's
// addressing mode, without applying any index register statically. It returns ok=false
// for modes that have no memory operand at all.
func variableAddress(ins *disasm.Instruction) (uint16, bool) {
	switch ins.Info.Mode {
	case cpu6502.Implied, cpu6502.Accumulator, cpu6502.Immediate, cpu6502.Relative:
		return 0, false

	case cpu6502.ZeroPage, cpu6502.ZeroPageX, cpu6502.ZeroPageY,
		cpu6502.IndexedIndirect, cpu6502.IndirectIndexed:
		return uint16(ins.Bytes[1]), true

	case cpu6502.Absolute, cpu6502.AbsoluteX, cpu6502.AbsoluteY, cpu6502.Indirect:
		if len(ins.Bytes) < 3 {
			return 0, false
		}
		return uint16(ins.Bytes[1]) | uint16(ins.Bytes[2])<<8, true

	default:
		return 0, false
	}
}

// recordVariable looks up or creates the Variable at the instruction's effective
// address and updates its type and read/write flags according to the addressing mode
// and instruction category that referenced it.
func recordVariable(variables map[uint16]*Variable, ins *disasm.Instruction) {
	address, ok := variableAddress(ins)
	if !ok {
		return
	}

	v, exists := variables[address]
	if !exists {
		v = &Variable{
			Address: address,
			Name:    variableName(address),
			Type:    Byte,
			Size:    1,
		}
		variables[address] = v
	}

	switch ins.Info.Mode {
	case cpu6502.IndexedIndirect, cpu6502.IndirectIndexed:
		if v.Type != Pointer {
			v.Type = Pointer
			v.Size = 2
		}
	case cpu6502.ZeroPageX, cpu6502.ZeroPageY, cpu6502.AbsoluteX, cpu6502.AbsoluteY:
		if v.Type != Pointer {
			v.Type = Array
			v.Size = 256
		}
	}

	if ins.Info.Category == cpu6502.Store {
		v.IsWritten = true
	} else {
		v.IsRead = true
	}
}

// variableName derives the default identifier for a memory address: the canonical
// hardware mnemonic when one is known, otherwise a name keyed to the memory region the
// address falls in.
func variableName(address uint16) string {
	if name, ok := hardwareRegisterName(address); ok {
		return name
	}
	switch {
	case address < 0x0100:
		return fmt.Sprintf("zp_%02X", address)
	case address < 0x0800:
		return fmt.Sprintf("ram_%04X", address)
	case address >= 0x8000:
		return fmt.Sprintf("rom_%04X", address)
	default:
		return fmt.Sprintf("var_%04X", address)
	}
}
