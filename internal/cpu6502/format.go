package cpu6502

import "fmt"

// FormatOperand renders the operand portion of a disassembly line for the given
// addressing mode. value is the resolved operand: for Immediate, ZeroPage* and the two
// indexed-indirect modes it is the raw operand byte; for Absolute*, Indirect and
// Relative modes it is the resolved 16-bit address.
func FormatOperand(mode AddressingMode, value uint16) string {
	switch mode {
	case Implied:
		return ""
	case Accumulator:
		return "A"
	case Immediate:
		return fmt.Sprintf("#$%02X", byte(value))
	case ZeroPage:
		return fmt.Sprintf("$%02X", byte(value))
	case ZeroPageX:
		return fmt.Sprintf("$%02X,X", byte(value))
	case ZeroPageY:
		return fmt.Sprintf("$%02X,Y", byte(value))
	case Relative:
		return fmt.Sprintf("$%04X", value)
	case Absolute:
		return fmt.Sprintf("$%04X", value)
	case AbsoluteX:
		return fmt.Sprintf("$%04X,X", value)
	case AbsoluteY:
		return fmt.Sprintf("$%04X,Y", value)
	case Indirect:
		return fmt.Sprintf("($%04X)", value)
	case IndexedIndirect:
		return fmt.Sprintf("($%02X,X)", byte(value))
	case IndirectIndexed:
		return fmt.Sprintf("($%02X),Y", byte(value))
	default:
		return ""
	}
}
