package emitter

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/retroenv/nesdecompiler/internal/cpu6502"
	"github.com/retroenv/nesdecompiler/internal/disasm"
	"github.com/retroenv/nesdecompiler/internal/writer"
)

// EmitASM renders the whole-program disassembly listing: one line per decoded
// instruction in ascending address order, labels on their own line, and a trailing
// comment with the instruction's CPU address and its bytes in hex.
func EmitASM(dis *disasm.Report) (string, error) {
	var buf bytes.Buffer
	if err := writeASM(&buf, dis); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// writeASM writes the listing to w, following the teacher's pattern of writing
// directly against an io.Writer so callers may redirect to a buffer, file, or test
// collector without a custom line-sink abstraction.
func writeASM(w io.Writer, dis *disasm.Report) error {
	addresses := make([]uint16, 0, len(dis.Instructions))
	for addr := range dis.Instructions {
		addresses = append(addresses, addr)
	}
	sort.Slice(addresses, func(i, j int) bool { return addresses[i] < addresses[j] })

	for _, addr := range addresses {
		ins := dis.Instructions[addr]
		if label, ok := dis.Labels[addr]; ok {
			if _, err := fmt.Fprintf(w, "%s:\n", label); err != nil {
				return err
			}
		}

		operand := cpu6502.FormatOperand(ins.Info.Mode, operandValueForFormat(ins))
		line := ins.Info.Mnemonic
		if operand != "" {
			line += " " + operand
		}

		hex := formatHex(ins.Bytes)
		if _, err := fmt.Fprintf(w, "  %-20s ; %04X: %s\n", line, ins.CPUAddress, hex); err != nil {
			return err
		}
	}

	labels := make(map[string]uint16, len(dis.Labels))
	for addr, name := range dis.Labels {
		labels[name] = addr
	}
	return writer.OutputAliasMap(w, labels)
}

func operandValueForFormat(ins *disasm.Instruction) uint16 {
	if ins.Info.Mode == cpu6502.Relative && ins.TargetResolved {
		return ins.TargetAddress
	}
	if (ins.Info.Mnemonic == "JMP" || ins.Info.Mnemonic == "JSR") && ins.TargetResolved {
		return ins.TargetAddress
	}
	return ins.OperandValue()
}

func formatHex(bytes []byte) string {
	out := ""
	for i, b := range bytes {
		if i > 0 {
			out += " "
		}
		out += fmt.Sprintf("%02X", b)
	}
	return out
}
