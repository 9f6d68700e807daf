// Package analysis builds the whole-program variable and function inventory: every
// memory location the decoded instructions touch, classified by addressing mode, and
// every function's reachable instruction set, variable accesses, and call graph edges.
package analysis

import (
	"fmt"
	"sort"

	"github.com/retroenv/nesdecompiler/internal/cpu6502"
	"github.com/retroenv/nesdecompiler/internal/disasm"
	"github.com/retroenv/nesdecompiler/internal/rom"
)

// Function is one partition of the program's control flow: the instructions reachable
// from a single entry point under the same termination rules the single-function
// decompiler uses, plus the memory it touches and the functions it calls.
type Function struct {
	EntryAddress         uint16
	Name                 string
	InstructionAddresses map[uint16]struct{}
	VariablesAccessed    map[uint16]struct{}
	CalledFunctions      map[uint16]struct{}
}

// Report is the whole-program analysis result: every inferred Variable and every
// partitioned Function, both keyed by address for stable lookup during emission.
type Report struct {
	Variables map[uint16]*Variable
	Functions map[uint16]*Function
}

// Analyze walks every decoded instruction in dis to build the variable inventory, then
// partitions the program into functions seeded from the ROM's entry points plus its
// NMI and IRQ vectors when they resolve to decoded code.
func Analyze(img *rom.Image, dis *disasm.Report) *Report {
	variables := map[uint16]*Variable{}
	for _, ins := range dis.Instructions {
		recordVariable(variables, ins)
	}

	seeds := map[uint16]struct{}{}
	for _, ep := range dis.EntryPoints {
		seeds[ep] = struct{}{}
	}
	if _, ok := dis.Instructions[img.NMIVector]; ok {
		seeds[img.NMIVector] = struct{}{}
	}
	if _, ok := dis.Instructions[img.IRQVector]; ok {
		seeds[img.IRQVector] = struct{}{}
	}

	functions := map[uint16]*Function{}
	for entry := range seeds {
		functions[entry] = partitionFunction(entry, dis.Instructions)
	}

	return &Report{Variables: variables, Functions: functions}
}

// partitionFunction runs the local reachability BFS described for the whole-program
// function partitioner: it shares the single-function decompiler's termination rules
// (JSR/BRK/RTI/RTS and JMP (indirect) end a path) but only records addresses, variable
// accesses, and call targets rather than rebuilding an ordered instruction sequence.
func partitionFunction(entry uint16, instructions map[uint16]*disasm.Instruction) *Function {
	fn := &Function{
		EntryAddress:         entry,
		Name:                 labelFor(entry),
		InstructionAddresses: map[uint16]struct{}{},
		VariablesAccessed:    map[uint16]struct{}{},
		CalledFunctions:      map[uint16]struct{}{},
	}

	queue := []uint16{entry}
	for len(queue) > 0 {
		addr := queue[0]
		queue = queue[1:]

		if _, seen := fn.InstructionAddresses[addr]; seen {
			continue
		}
		ins, ok := instructions[addr]
		if !ok {
			continue
		}
		fn.InstructionAddresses[addr] = struct{}{}

		if varAddr, hasVar := variableAddress(ins); hasVar {
			fn.VariablesAccessed[varAddr] = struct{}{}
		}

		if ins.Info.Mnemonic == "JSR" && ins.TargetResolved {
			fn.CalledFunctions[ins.TargetAddress] = struct{}{}
		}

		if isFunctionBoundary(ins.Info) {
			continue
		}

		if ins.TargetResolved {
			queue = append(queue, ins.TargetAddress)
		}
		if ins.Info.Mnemonic != "JMP" {
			queue = append(queue, addr+uint16(ins.Info.Size))
		}
	}

	return fn
}

// isFunctionBoundary mirrors the single-function decompiler's end-of-function test.
func isFunctionBoundary(info cpu6502.Info) bool {
	switch info.Mnemonic {
	case "JSR", "BRK", "RTI", "RTS":
		return true
	}
	return info.Mode == cpu6502.Indirect
}

func labelFor(address uint16) string {
	return fmt.Sprintf("sub_%04X", address)
}

// SortedVariableAddresses returns every Variable's address in ascending order, for
// deterministic emission.
func (r *Report) SortedVariableAddresses() []uint16 {
	out := make([]uint16, 0, len(r.Variables))
	for addr := range r.Variables {
		out = append(out, addr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// SortedFunctionAddresses returns every Function's entry address in ascending order,
// for deterministic emission.
func (r *Report) SortedFunctionAddresses() []uint16 {
	out := make([]uint16, 0, len(r.Functions))
	for addr := range r.Functions {
		out = append(out, addr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
