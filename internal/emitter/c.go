// Package emitter lowers an analyzed ROM into C source, a companion header, and a
// plain assembly listing. EmitHeader writes through an io.Writer; EmitC and EmitASM
// build their output in memory and return it as strings.
package emitter

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/retroenv/nesdecompiler/internal/analysis"
	"github.com/retroenv/nesdecompiler/internal/decompile"
	"github.com/retroenv/nesdecompiler/internal/report"
	"github.com/retroenv/nesdecompiler/internal/rom"
	"github.com/retroenv/nesdecompiler/internal/writer"
)

// statusFlagConstants is the fixed set of bit constants every emitted translation unit
// declares, in the order the spec lists them.
var statusFlagConstants = []struct {
	name  string
	value byte
}{
	{"CARRY_FLAG", 0x01},
	{"ZERO_FLAG", 0x02},
	{"INTERRUPT_FLAG", 0x04},
	{"DECIMAL_FLAG", 0x08},
	{"BREAK_FLAG", 0x10},
	{"UNUSED_FLAG", 0x20},
	{"OVERFLOW_FLAG", 0x40},
	{"NEGATIVE_FLAG", 0x80},
}

// EmitC lowers a full analysis into a C source file and its companion header. The
// source includes the header, so the two strings are meant to be written side by side
// as `<stem>.c` and `<stem>.h`.
func EmitC(full *report.FullReport) (source, header string, err error) {
	var hdr bytes.Buffer
	if err := EmitHeader(&hdr, "NESDECOMPILER_H", full.AnalysisReport()); err != nil {
		return "", "", fmt.Errorf("emitting header: %w", err)
	}

	var src bytes.Buffer
	if err := writer.WriteCommentHeader(&src, full.ROM, "//"); err != nil {
		return "", "", fmt.Errorf("emitting banner: %w", err)
	}
	if _, err := fmt.Fprintf(&src, "// mapper %d\n\n", full.ROM.Mapper); err != nil {
		return "", "", err
	}
	if _, err := fmt.Fprintln(&src, `#include "nesdecompiler.h"`); err != nil {
		return "", "", err
	}
	if _, err := fmt.Fprintln(&src, "#include <stdint.h>"); err != nil {
		return "", "", err
	}
	if _, err := fmt.Fprintln(&src, "#include <stdbool.h>"); err != nil {
		return "", "", err
	}
	if _, err := fmt.Fprintln(&src, "#include <stdlib.h>"); err != nil {
		return "", "", err
	}
	if _, err := fmt.Fprintln(&src, "#include <string.h>"); err != nil {
		return "", "", err
	}
	if _, err := fmt.Fprintln(&src); err != nil {
		return "", "", err
	}

	if err := writeStatusFlags(&src); err != nil {
		return "", "", fmt.Errorf("emitting status flags: %w", err)
	}
	if err := writeRegisterMirrors(&src); err != nil {
		return "", "", fmt.Errorf("emitting register mirrors: %w", err)
	}
	if err := writeStaticVariables(&src, full.AnalysisReport()); err != nil {
		return "", "", fmt.Errorf("emitting variables: %w", err)
	}
	if err := writePrototypes(&src, full.AnalysisReport()); err != nil {
		return "", "", fmt.Errorf("emitting prototypes: %w", err)
	}

	labelNames, functions, ferr := decompileAll(full)
	if ferr != nil {
		return "", "", fmt.Errorf("decompiling functions: %w", ferr)
	}

	for _, addr := range full.AnalysisReport().SortedFunctionAddresses() {
		fn := full.AnalysisReport().Functions[addr]
		body := functions[addr]
		if err := writeFunctionBody(&src, fn.Name, body, labelNames); err != nil {
			return "", "", fmt.Errorf("emitting function %s: %w", fn.Name, err)
		}
	}

	if err := writeMain(&src, full); err != nil {
		return "", "", fmt.Errorf("emitting main: %w", err)
	}

	return src.String(), hdr.String(), nil
}

func writeStatusFlags(w *bytes.Buffer) error {
	for _, c := range statusFlagConstants {
		if _, err := fmt.Fprintf(w, "#define %s 0x%02X\n", c.name, c.value); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}

func writeRegisterMirrors(w *bytes.Buffer) error {
	lines := []string{
		"static uint8_t a, x, y, status, sp;",
		"static uint16_t pc;",
		"static uint8_t memory[0x10000];",
		"static uint8_t stack[0x100];",
		"",
		"static uint8_t set_zn(uint8_t flags, uint8_t value) {",
		"    flags = value ? (flags & ~ZERO_FLAG) : (flags | ZERO_FLAG);",
		"    flags = (value & 0x80) ? (flags | NEGATIVE_FLAG) : (flags & ~NEGATIVE_FLAG);",
		"    return flags;",
		"}",
		"",
	}
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}

func writeStaticVariables(w *bytes.Buffer, an *analysis.Report) error {
	for _, addr := range an.SortedVariableAddresses() {
		v := an.Variables[addr]
		if _, ok := analysis.IsHardwareRegister(addr); ok {
			continue
		}
		if !isStaticVariableAddress(addr) {
			continue
		}
		if _, err := fmt.Fprintf(w, "static %s %s%s;\n", cTypeOf(v), v.Name, cArraySuffix(v)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}

func writePrototypes(w *bytes.Buffer, an *analysis.Report) error {
	for _, addr := range an.SortedFunctionAddresses() {
		fn := an.Functions[addr]
		if _, err := fmt.Fprintf(w, "static void %s(void);\n", fn.Name); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}

// decompileAll decompiles every analyzed function over the ROM's single PRG code
// region, and collects every function's label-to-name map into one flat table so
// branch targets can resolve to a sibling function's label from any function body.
func decompileAll(full *report.FullReport) (labelNames map[uint16]string, functions map[uint16]*decompile.DecompiledFunction, err error) {
	regions := []decompile.CodeRegion{{BaseAddress: rom.CodeBaseAddress, Bytes: full.ROM.PRGSlice()}}

	labelNames = map[uint16]string{}
	functions = map[uint16]*decompile.DecompiledFunction{}

	for _, addr := range full.AnalysisReport().SortedFunctionAddresses() {
		fn, derr := decompile.Function(addr, regions)
		if derr != nil {
			continue // per-function failure degrades to an empty body, not a fatal error
		}
		functions[addr] = fn
		for target, name := range fn.JumpTargets {
			labelNames[target] = name
		}
		labelNames[addr] = full.AnalysisReport().Functions[addr].Name
	}
	return labelNames, functions, nil
}

func writeFunctionBody(w *bytes.Buffer, name string, fn *decompile.DecompiledFunction, labelNames map[uint16]string) error {
	if _, err := fmt.Fprintf(w, "static void %s(void) {\n", name); err != nil {
		return err
	}
	if fn == nil {
		if _, err := fmt.Fprintln(w, "    /* decompilation unavailable for this function */"); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, "}"); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
		return nil
	}

	for _, target := range sortedLabelTargets(fn) {
		label := labelNameFor(target, labelNames)
		if _, err := fmt.Fprintf(w, "    void* l_%s_decl = &&%s; (void)l_%s_decl;\n", label, label, label); err != nil {
			return err
		}
	}

	for _, ins := range fn.OrderedInstructions {
		if label, ok := fn.JumpTargets[ins.CPUAddress]; ok && ins.SubAddressOrder == 0 {
			if _, err := fmt.Fprintf(w, "%s:\n", label); err != nil {
				return err
			}
		}

		comment := fmt.Sprintf("    /* %04X: %s */", ins.CPUAddress, ins.Info.Mnemonic)
		if _, err := fmt.Fprintln(w, comment); err != nil {
			return err
		}

		for _, line := range translateInstruction(ins, func(addr uint16) string {
			return labelNameFor(addr, labelNames)
		}) {
			if _, err := fmt.Fprintf(w, "    %s\n", line); err != nil {
				return err
			}
		}
	}

	if _, err := fmt.Fprintln(w, "}"); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w)
	return err
}

func sortedLabelTargets(fn *decompile.DecompiledFunction) []uint16 {
	out := make([]uint16, 0, len(fn.JumpTargets))
	for addr := range fn.JumpTargets {
		out = append(out, addr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func labelNameFor(address uint16, labelNames map[uint16]string) string {
	if name, ok := labelNames[address]; ok {
		return name
	}
	return fmt.Sprintf("loc_%04X", address)
}

func writeMain(w *bytes.Buffer, full *report.FullReport) error {
	lines := []string{
		"int main(void) {",
		"    sp = 0xFF;",
		"    status = UNUSED_FLAG;",
		fmt.Sprintf("    pc = 0x%04X;", full.ROM.ResetVector),
		"    memset(memory, 0, sizeof(memory));",
	}
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}

	if entry, ok := full.AnalysisReport().Functions[full.ROM.ResetVector]; ok {
		if _, err := fmt.Fprintf(w, "    %s();\n", entry.Name); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintln(w, "    for (;;) { }"); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "    return 0;"); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "}")
	return err
}
