package emitter

import (
	"fmt"

	"github.com/retroenv/nesdecompiler/internal/analysis"
	"github.com/retroenv/nesdecompiler/internal/cpu6502"
	"github.com/retroenv/nesdecompiler/internal/disasm"
)

// operandExpr renders the C expression that reads the operand of ins: an immediate
// constant, a hardware register macro, a memory[...] reference, or the accumulator,
// depending on addressing mode.
func operandExpr(ins *disasm.Instruction) string {
	switch ins.Info.Mode {
	case cpu6502.Implied:
		return ""
	case cpu6502.Accumulator:
		return "a"
	case cpu6502.Immediate:
		return fmt.Sprintf("0x%02X", ins.Bytes[1])
	case cpu6502.ZeroPage, cpu6502.Absolute:
		if name, ok := analysis.IsHardwareRegister(ins.OperandValue()); ok {
			return name
		}
		return fmt.Sprintf("memory[0x%04X]", ins.OperandValue())
	case cpu6502.ZeroPageX:
		return fmt.Sprintf("memory[(uint8_t)(0x%02X + x)]", ins.Bytes[1])
	case cpu6502.ZeroPageY:
		return fmt.Sprintf("memory[(uint8_t)(0x%02X + y)]", ins.Bytes[1])
	case cpu6502.AbsoluteX:
		return fmt.Sprintf("memory[(uint16_t)(0x%04X + x)]", ins.OperandValue())
	case cpu6502.AbsoluteY:
		return fmt.Sprintf("memory[(uint16_t)(0x%04X + y)]", ins.OperandValue())
	case cpu6502.IndexedIndirect:
		return fmt.Sprintf("memory[memory[(uint8_t)(0x%02X + x)] | (memory[(uint8_t)(0x%02X + x + 1)] << 8)]",
			ins.Bytes[1], ins.Bytes[1])
	case cpu6502.IndirectIndexed:
		return fmt.Sprintf("memory[(uint16_t)((memory[0x%02X] | (memory[(uint8_t)(0x%02X + 1)] << 8)) + y)]",
			ins.Bytes[1], ins.Bytes[1])
	default:
		return fmt.Sprintf("memory[0x%04X]", ins.OperandValue())
	}
}

// translateInstruction returns the C statements emitted for one instruction, following
// the per-category rules: register loads and stores, transfers, stack operations,
// arithmetic with carry/overflow tracking, shifts, logic, compares, branches through
// computed goto, and interrupt handling.
func translateInstruction(ins *disasm.Instruction, labelName func(uint16) string) []string {
	operand := operandExpr(ins)

	switch ins.Info.Category {
	case cpu6502.Load:
		reg := registerOf(ins.Info.Mnemonic)
		return []string{
			fmt.Sprintf("%s = %s;", reg, operand),
			fmt.Sprintf("status = set_zn(status, %s);", reg),
		}

	case cpu6502.Store:
		reg := registerOf(ins.Info.Mnemonic)
		return []string{fmt.Sprintf("%s = %s;", operand, reg)}

	case cpu6502.Transfer:
		src, dst := transferRegisters(ins.Info.Mnemonic)
		lines := []string{fmt.Sprintf("%s = %s;", dst, src)}
		if ins.Info.Mnemonic != "TXS" {
			lines = append(lines, fmt.Sprintf("status = set_zn(status, %s);", dst))
		}
		return lines

	case cpu6502.Stack:
		return translateStack(ins.Info.Mnemonic)

	case cpu6502.Arithmetic:
		return translateArithmetic(ins.Info.Mnemonic, operand)

	case cpu6502.Increment:
		return translateIncDec(operand, "+")

	case cpu6502.Decrement:
		return translateIncDec(operand, "-")

	case cpu6502.Shift:
		return translateShift(ins.Info.Mnemonic, operand)

	case cpu6502.Logic:
		return translateLogic(ins.Info.Mnemonic, operand)

	case cpu6502.Compare:
		return translateCompare(ins.Info.Mnemonic, operand)

	case cpu6502.Branch:
		return []string{fmt.Sprintf("if (%s) goto *%s;", branchCondition(ins.Info.Mnemonic), labelExpr(ins, labelName))}

	case cpu6502.Jump:
		if ins.Info.Mnemonic == "JSR" {
			return []string{fmt.Sprintf("%s();", labelName(ins.TargetAddress))}
		}
		if ins.Info.Mode == cpu6502.Indirect {
			return []string{"goto *(void*)(uintptr_t)(memory[pc] | (memory[pc + 1] << 8));"}
		}
		return []string{fmt.Sprintf("goto *%s;", labelExpr(ins, labelName))}

	case cpu6502.Return:
		if ins.Info.Mnemonic == "RTI" {
			return []string{"status = stack[++sp];", "pc = stack[++sp] | (stack[++sp] << 8);"}
		}
		return []string{"return;"}

	case cpu6502.SetFlag:
		return []string{fmt.Sprintf("status |= %s;", flagConstant(ins.Info.Mnemonic))}

	case cpu6502.ClearFlag:
		return []string{fmt.Sprintf("status &= ~%s;", flagConstant(ins.Info.Mnemonic))}

	case cpu6502.Interrupt:
		return translateInterrupt(ins.Info.Mnemonic)

	default:
		return []string{"/* NOP */"}
	}
}

func labelExpr(ins *disasm.Instruction, labelName func(uint16) string) string {
	if ins.TargetResolved {
		return "&&" + labelName(ins.TargetAddress)
	}
	return "&&unresolved"
}

func registerOf(mnemonic string) string {
	switch mnemonic {
	case "LDA", "STA":
		return "a"
	case "LDX", "STX":
		return "x"
	case "LDY", "STY":
		return "y"
	default:
		return "a"
	}
}

func transferRegisters(mnemonic string) (src, dst string) {
	switch mnemonic {
	case "TAX":
		return "a", "x"
	case "TAY":
		return "a", "y"
	case "TXA":
		return "x", "a"
	case "TYA":
		return "y", "a"
	case "TSX":
		return "sp", "x"
	case "TXS":
		return "x", "sp"
	default:
		return "a", "a"
	}
}

func translateStack(mnemonic string) []string {
	switch mnemonic {
	case "PHA":
		return []string{"stack[sp--] = a;"}
	case "PHP":
		return []string{"stack[sp--] = status | BREAK_FLAG | UNUSED_FLAG;"}
	case "PLA":
		return []string{"a = stack[++sp];", "status = set_zn(status, a);"}
	case "PLP":
		return []string{"status = stack[++sp];"}
	default:
		return []string{"/* unhandled stack op */"}
	}
}

func translateArithmetic(mnemonic, operand string) []string {
	switch mnemonic {
	case "ADC":
		return []string{
			"{",
			fmt.Sprintf("    int result = a + (%s) + (status & CARRY_FLAG);", operand),
			fmt.Sprintf("    status = (status & ~OVERFLOW_FLAG) | ((~(a ^ (%s)) & (a ^ result) & 0x80) ? OVERFLOW_FLAG : 0);", operand),
			"    status = (result > 0xFF) ? (status | CARRY_FLAG) : (status & ~CARRY_FLAG);",
			"    a = (uint8_t)result;",
			"    status = set_zn(status, a);",
			"}",
		}
	case "SBC":
		return []string{
			"{",
			fmt.Sprintf("    int result = a - (%s) - (1 - (status & CARRY_FLAG));", operand),
			fmt.Sprintf("    status = (status & ~OVERFLOW_FLAG) | (((a ^ (%s)) & (a ^ result) & 0x80) ? OVERFLOW_FLAG : 0);", operand),
			"    status = (result >= 0) ? (status | CARRY_FLAG) : (status & ~CARRY_FLAG);",
			"    a = (uint8_t)result;",
			"    status = set_zn(status, a);",
			"}",
		}
	default:
		return []string{"/* unhandled arithmetic op */"}
	}
}

func translateIncDec(operand, sign string) []string {
	return []string{
		fmt.Sprintf("%s = (uint8_t)(%s %s 1);", operand, operand, sign),
		fmt.Sprintf("status = set_zn(status, %s);", operand),
	}
}

func translateShift(mnemonic, operand string) []string {
	switch mnemonic {
	case "ASL":
		return []string{
			fmt.Sprintf("status = ((%s) & 0x80) ? (status | CARRY_FLAG) : (status & ~CARRY_FLAG);", operand),
			fmt.Sprintf("%s = (uint8_t)((%s) << 1);", operand, operand),
			fmt.Sprintf("status = set_zn(status, %s);", operand),
		}
	case "LSR":
		return []string{
			fmt.Sprintf("status = ((%s) & 0x01) ? (status | CARRY_FLAG) : (status & ~CARRY_FLAG);", operand),
			fmt.Sprintf("%s = (uint8_t)((%s) >> 1);", operand, operand),
			fmt.Sprintf("status = set_zn(status, %s) & ~NEGATIVE_FLAG;", operand),
		}
	case "ROL":
		return []string{
			fmt.Sprintf("{ int carryIn = status & CARRY_FLAG;"),
			fmt.Sprintf("  status = ((%s) & 0x80) ? (status | CARRY_FLAG) : (status & ~CARRY_FLAG);", operand),
			fmt.Sprintf("  %s = (uint8_t)(((%s) << 1) | carryIn); }", operand, operand),
			fmt.Sprintf("status = set_zn(status, %s);", operand),
		}
	case "ROR":
		return []string{
			fmt.Sprintf("{ int carryIn = status & CARRY_FLAG;"),
			fmt.Sprintf("  status = ((%s) & 0x01) ? (status | CARRY_FLAG) : (status & ~CARRY_FLAG);", operand),
			fmt.Sprintf("  %s = (uint8_t)(((%s) >> 1) | (carryIn << 7)); }", operand, operand),
			fmt.Sprintf("status = set_zn(status, %s);", operand),
		}
	default:
		return []string{"/* unhandled shift op */"}
	}
}

func translateLogic(mnemonic, operand string) []string {
	switch mnemonic {
	case "AND":
		return []string{"a = a & (" + operand + ");", "status = set_zn(status, a);"}
	case "ORA":
		return []string{"a = a | (" + operand + ");", "status = set_zn(status, a);"}
	case "EOR":
		return []string{"a = a ^ (" + operand + ");", "status = set_zn(status, a);"}
	case "BIT":
		return []string{
			fmt.Sprintf("status = (a & (%s)) ? (status & ~ZERO_FLAG) : (status | ZERO_FLAG);", operand),
			fmt.Sprintf("status = (status & ~(OVERFLOW_FLAG | NEGATIVE_FLAG)) | ((%s) & (OVERFLOW_FLAG | NEGATIVE_FLAG));", operand),
		}
	default:
		return []string{"/* unhandled logic op */"}
	}
}

func translateCompare(mnemonic, operand string) []string {
	reg := "a"
	switch mnemonic {
	case "CPX":
		reg = "x"
	case "CPY":
		reg = "y"
	}
	return []string{
		fmt.Sprintf("status = (%s >= (%s)) ? (status | CARRY_FLAG) : (status & ~CARRY_FLAG);", reg, operand),
		fmt.Sprintf("status = set_zn(status, (uint8_t)(%s - (%s)));", reg, operand),
	}
}

func branchCondition(mnemonic string) string {
	switch mnemonic {
	case "BEQ":
		return "status & ZERO_FLAG"
	case "BNE":
		return "!(status & ZERO_FLAG)"
	case "BCS":
		return "status & CARRY_FLAG"
	case "BCC":
		return "!(status & CARRY_FLAG)"
	case "BMI":
		return "status & NEGATIVE_FLAG"
	case "BPL":
		return "!(status & NEGATIVE_FLAG)"
	case "BVS":
		return "status & OVERFLOW_FLAG"
	case "BVC":
		return "!(status & OVERFLOW_FLAG)"
	default:
		return "0"
	}
}

func flagConstant(mnemonic string) string {
	switch mnemonic {
	case "SEC", "CLC":
		return "CARRY_FLAG"
	case "SED", "CLD":
		return "DECIMAL_FLAG"
	case "SEI", "CLI":
		return "INTERRUPT_FLAG"
	case "CLV":
		return "OVERFLOW_FLAG"
	default:
		return "0"
	}
}

func translateInterrupt(mnemonic string) []string {
	if mnemonic == "RTI" {
		return []string{"status = stack[++sp];", "pc = stack[++sp] | (stack[++sp] << 8);"}
	}
	return []string{
		"stack[sp--] = (uint8_t)((pc + 2) >> 8);",
		"stack[sp--] = (uint8_t)(pc + 2);",
		"stack[sp--] = status | BREAK_FLAG | UNUSED_FLAG;",
		"status |= INTERRUPT_FLAG;",
		"pc = memory[0xFFFE] | (memory[0xFFFF] << 8);",
	}
}
