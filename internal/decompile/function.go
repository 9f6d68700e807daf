// Package decompile implements the single-function decompiler: given an entry address
// and the set of decoded code regions, it rebuilds the ordered instruction sequence of
// exactly one function, repairing backward branches that loop onto the function entry.
package decompile

import (
	"errors"
	"fmt"
	"sort"

	"github.com/retroenv/nesdecompiler/internal/cpu6502"
	"github.com/retroenv/nesdecompiler/internal/disasm"
)

// ErrLoopbackToZero is returned when a loopback repair would target CPU address
// 0x0000, which can only mean a corrupt or adversarial disassembly.
var ErrLoopbackToZero = errors.New("loopback repair target is address zero")

// ErrRegionNotFound is returned when entryAddress falls outside every supplied region,
// and also when no instruction can be decoded at entryAddress (an undocumented opcode,
// or operand bytes running past the end of the region).
var ErrRegionNotFound = errors.New("no code region covers address")

// jmpOpcode is the opcode byte synthesized for loopback-repair pseudo-instructions.
const jmpOpcode = 0x4C

// CodeRegion is a window of PRG data mapped contiguously starting at BaseAddress in
// CPU address space. Multiple regions may coexist once mapper bank switching is
// modeled; today the C emitter always supplies exactly one, covering the whole PRG bank.
type CodeRegion struct {
	BaseAddress uint16
	Bytes       []byte
}

func (r CodeRegion) covers(address uint16) bool {
	return address >= r.BaseAddress && int(address) < int(r.BaseAddress)+len(r.Bytes)
}

func (r CodeRegion) byteAt(address uint16) byte {
	return r.Bytes[address-r.BaseAddress]
}

// DecompiledFunction is the result of decompiling a single function: its instructions
// in emission order and the labels attached to every real jump target inside it.
type DecompiledFunction struct {
	EntryAddress        uint16
	OrderedInstructions  []*disasm.Instruction
	JumpTargets         map[uint16]string
}

// Function decompiles exactly one function starting at entryAddress, walking its
// control flow through the supplied regions with the worklist BFS described for the
// single-function pipeline: JSR terminates the current path instead of being followed
// past the call, and a branch back onto the entry point is repaired with a synthesized
// trailing JMP rather than silently dropped.
func Function(entryAddress uint16, regions []CodeRegion) (*DecompiledFunction, error) {
	instructions := map[uint16]*disasm.Instruction{}
	targets := map[uint16]struct{}{}
	var loopback *disasm.Instruction

	// No dedup on enqueue: the same already-decoded address may be pushed again by a
	// later branch, and popping it a second time is exactly how a loopback onto
	// entryAddress is detected. Each real instruction contributes at most two edges,
	// so the queue still only grows by a bounded amount per function.
	queue := []uint16{entryAddress}

	for len(queue) > 0 {
		addr := queue[0]
		queue = queue[1:]

		if _, seen := instructions[addr]; seen {
			if addr == entryAddress && loopback == nil {
				if entryAddress == 0 {
					return nil, fmt.Errorf("decompiling function: %w", ErrLoopbackToZero)
				}
				loopback = synthesizeLoopback(entryAddress)
			}
			continue
		}

		region, ok := findRegion(regions, addr)
		if !ok {
			if addr == entryAddress {
				return nil, fmt.Errorf("decompiling function at %04X: %w", addr, ErrRegionNotFound)
			}
			continue
		}

		info := cpu6502.Lookup(region.byteAt(addr))
		if !info.Valid {
			continue // function ends at the first unknown byte on this path
		}
		if int(addr-region.BaseAddress)+info.Size > len(region.Bytes) {
			continue
		}

		bytes := make([]byte, info.Size)
		for i := 0; i < info.Size; i++ {
			bytes[i] = region.byteAt(addr + uint16(i))
		}

		ins := &disasm.Instruction{
			CPUAddress: addr,
			ROMOffset:  addr - region.BaseAddress,
			Info:       info,
			Bytes:      bytes,
		}
		if target, resolved := resolveTarget(info, addr, bytes); resolved {
			ins.TargetAddress = target
			ins.TargetResolved = true
		}
		if addr == entryAddress {
			ins.Label = fmt.Sprintf("sub_%04X", entryAddress)
		}

		instructions[addr] = ins

		if isEndOfFunction(info) {
			continue
		}

		if ins.TargetResolved {
			targets[ins.TargetAddress] = struct{}{}
			queue = append(queue, ins.TargetAddress)
		}
		if info.Mnemonic != "JMP" {
			queue = append(queue, addr+uint16(info.Size))
		}
	}

	for addr := range targets {
		if addr == entryAddress {
			continue
		}
		if ins, ok := instructions[addr]; ok && ins.Label == "" {
			ins.Label = fmt.Sprintf("loc_%04X", addr)
		}
	}

	return buildFunction(entryAddress, instructions, loopback)
}

// synthesizeLoopback builds the pseudo JMP entry_address record the spec requires when
// a branch inside the function loops back onto its own entry point. It carries
// sub_address_order 1 and is appended after every real instruction during ordering.
func synthesizeLoopback(entryAddress uint16) *disasm.Instruction {
	return &disasm.Instruction{
		CPUAddress: entryAddress,
		Info: cpu6502.Info{
			Opcode:   jmpOpcode,
			Mnemonic: "JMP",
			Mode:     cpu6502.Absolute,
			Size:     3,
			Category: cpu6502.Jump,
			Valid:    true,
		},
		Bytes:           []byte{jmpOpcode, byte(entryAddress), byte(entryAddress >> 8)},
		TargetAddress:   entryAddress,
		TargetResolved:  true,
		SubAddressOrder: 1,
	}
}

// buildFunction assembles the final ordered instruction list per the spec's four-part
// ordering: the entry instruction first, then everything after it by address, then the
// loop-backward body before it by address, then any synthesized loopback record last.
func buildFunction(entryAddress uint16, instructions map[uint16]*disasm.Instruction, loopback *disasm.Instruction) (*DecompiledFunction, error) {
	entry, ok := instructions[entryAddress]
	if !ok {
		return nil, fmt.Errorf("decompiling function at %04X: %w", entryAddress, ErrRegionNotFound)
	}

	var after, before []uint16
	for addr := range instructions {
		switch {
		case addr == entryAddress:
		case addr > entryAddress:
			after = append(after, addr)
		default:
			before = append(before, addr)
		}
	}
	sort.Slice(after, func(i, j int) bool { return after[i] < after[j] })
	sort.Slice(before, func(i, j int) bool { return before[i] < before[j] })

	ordered := make([]*disasm.Instruction, 0, len(instructions)+1)
	ordered = append(ordered, entry)
	for _, addr := range after {
		ordered = append(ordered, instructions[addr])
	}
	for _, addr := range before {
		ordered = append(ordered, instructions[addr])
	}
	if loopback != nil {
		ordered = append(ordered, loopback)
	}

	jumpTargets := map[uint16]string{}
	for _, ins := range ordered {
		if ins.SubAddressOrder != 0 {
			continue
		}
		if ins.Label != "" {
			jumpTargets[ins.CPUAddress] = ins.Label
		}
	}

	return &DecompiledFunction{
		EntryAddress:        entryAddress,
		OrderedInstructions: ordered,
		JumpTargets:         jumpTargets,
	}, nil
}

// isEndOfFunction reports whether an instruction terminates the current execution
// path: JSR is treated conservatively as terminating since a mutated stack could send
// RTS/RTI somewhere other than the expected fall-through, and JMP (indirect) resolves
// to a runtime-unknown target.
func isEndOfFunction(info cpu6502.Info) bool {
	switch info.Mnemonic {
	case "JSR", "BRK", "RTI", "RTS":
		return true
	}
	return info.Mode == cpu6502.Indirect
}

func findRegion(regions []CodeRegion, address uint16) (CodeRegion, bool) {
	for _, r := range regions {
		if r.covers(address) {
			return r, true
		}
	}
	return CodeRegion{}, false
}

// resolveTarget mirrors the whole-program disassembler's target resolution; it is
// duplicated here rather than imported because the function decompiler only ever sees
// raw region bytes, never a *disasm.Report.
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
