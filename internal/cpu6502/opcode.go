package cpu6502

import (
	"strings"

	"github.com/retroenv/retrogolib/arch/cpu/m6502"
)

// Info describes one of the 256 possible 6502 opcodes: its mnemonic, addressing mode,
// instruction size in bytes, and its instruction category. Unassigned and undocumented
// opcodes are present in the table with Valid set to false and Size set to 1, so callers
// can always skip one byte on an invalid opcode without special-casing the decode loop.
type Info struct {
	Opcode   byte
	Mnemonic string
	Mode     AddressingMode
	Size     int
	Category Category
	Valid    bool
}

// IsBranch reports whether this opcode is a conditional branch instruction.
func (i Info) IsBranch() bool {
	return i.Category == Branch
}

// IsJump reports whether this opcode unconditionally transfers control (JMP or JSR).
func (i Info) IsJump() bool {
	return i.Mnemonic == "JMP" || i.Mnemonic == "JSR"
}

// IsFunctionExit reports whether this opcode ends a function (RTS or RTI).
func (i Info) IsFunctionExit() bool {
	return i.Mnemonic == "RTS" || i.Mnemonic == "RTI"
}

// invalidInfo is returned for any opcode value this disassembler does not treat as a
// documented 6502 instruction, including every unofficial/illegal opcode: undocumented-
// opcode execution semantics are out of scope. Its Size of 1 lets the linear sweep in
// package disasm advance past it one byte at a time, since the byte may be inline data
// rather than code.
var invalidInfo = Info{Size: 1, Category: Other}

// table maps each documented opcode byte to its static Info. It is built once at
// package init time and never mutated afterwards, so it is safe to share across
// concurrent analyses without locking.
var table = buildTable()

// addressingModes translates retrogolib's m6502.AddressingMode identifiers onto this
// package's own AddressingMode sum type, which the emitter and decompiler switch on
// directly rather than reaching back into the library for every operand format.
var addressingModes = map[m6502.AddressingMode]AddressingMode{
	m6502.ImpliedAddressing:     Implied,
	m6502.AccumulatorAddressing: Accumulator,
	m6502.ImmediateAddressing:   Immediate,
	m6502.ZeroPageAddressing:    ZeroPage,
	m6502.ZeroPageXAddressing:   ZeroPageX,
	m6502.ZeroPageYAddressing:   ZeroPageY,
	m6502.RelativeAddressing:    Relative,
	m6502.AbsoluteAddressing:    Absolute,
	m6502.AbsoluteXAddressing:   AbsoluteX,
	m6502.AbsoluteYAddressing:   AbsoluteY,
	m6502.IndirectAddressing:    Indirect,
	m6502.IndirectXAddressing:   IndexedIndirect,
	m6502.IndirectYAddressing:   IndirectIndexed,
}

// categoryByMnemonic groups each documented instruction by the effect it has on CPU
// state, the classification the C emitter switches on. retrogolib's m6502 package
// describes instruction identity (name, addressing, memory access) but not this
// grouping, so it is derived here from the mnemonic, which is shared by every
// addressing-mode variant of an instruction.
var categoryByMnemonic = map[string]Category{
	"LDA": Load, "LDX": Load, "LDY": Load,
	"STA": Store, "STX": Store, "STY": Store,
	"TAX": Transfer, "TAY": Transfer, "TXA": Transfer, "TYA": Transfer, "TSX": Transfer, "TXS": Transfer,
	"PHA": Stack, "PHP": Stack, "PLA": Stack, "PLP": Stack,
	"ADC": Arithmetic, "SBC": Arithmetic,
	"INC": Increment, "INX": Increment, "INY": Increment,
	"DEC": Decrement, "DEX": Decrement, "DEY": Decrement,
	"ASL": Shift, "LSR": Shift, "ROL": Shift, "ROR": Shift,
	"AND": Logic, "ORA": Logic, "EOR": Logic, "BIT": Logic,
	"CMP": Compare, "CPX": Compare, "CPY": Compare,
	"BPL": Branch, "BMI": Branch, "BVC": Branch, "BVS": Branch,
	"BCC": Branch, "BCS": Branch, "BNE": Branch, "BEQ": Branch,
	"JMP": Jump, "JSR": Jump,
	"RTS": Return, "RTI": Return,
	"CLC": ClearFlag, "CLI": ClearFlag, "CLD": ClearFlag, "CLV": ClearFlag,
	"SEC": SetFlag, "SEI": SetFlag, "SED": SetFlag,
	"BRK": Interrupt,
	"NOP": Other,
}

// buildTable derives the 256-entry opcode table from retrogolib's m6502.Opcodes, which
// the teacher's own internal/arch/m6502 package wraps for the same purpose (see
// opcode.go, instruction.go, code.go in the teacher tree). Unofficial opcodes are
// excluded: this disassembler only ever decodes the 151 documented instructions.
func buildTable() [256]Info {
	var t [256]Info
	for i := range t {
		t[i] = invalidInfo
	}

	for op := 0; op < 256; op++ {
		entry := m6502.Opcodes[byte(op)]
		if entry.Instruction == nil || entry.Instruction.Unofficial {
			continue
		}

		mode, ok := addressingModes[entry.Addressing]
		if !ok {
			continue
		}

		mnemonic := strings.ToUpper(entry.Instruction.Name)
		t[op] = Info{
			Opcode:   byte(op),
			Mnemonic: mnemonic,
			Mode:     mode,
			Size:     1 + mode.OperandBytes(),
			Category: categoryByMnemonic[mnemonic],
			Valid:    true,
		}
	}

	return t
}

// Lookup returns the static Info for the given opcode byte. Opcodes outside the
// documented 151 return an Info with Valid == false and Size == 1.
func Lookup(opcode byte) Info {
	return table[opcode]
}
