// Package report wires the pipeline's single top-level entry point: given a parsed ROM
// image, run the disassembler and the variable/function analyzer and hand back one
// immutable result. There is no package-level mutable state; every call to Analyze
// owns its own Report.
package report

import (
	"fmt"
	"sort"

	"github.com/retroenv/nesdecompiler/internal/analysis"
	"github.com/retroenv/nesdecompiler/internal/disasm"
	"github.com/retroenv/nesdecompiler/internal/rom"
)

// FullReport is the complete result of analyzing one ROM image: the image itself, its
// whole-program disassembly, and the variable/function inventory derived from it.
type FullReport struct {
	ROM         *rom.Image
	Disassembly *disasm.Report
	Variables   map[uint16]*analysis.Variable
	Functions   map[uint16]*analysis.Function
}

// Analyze runs the full pipeline on an already-loaded ROM image: disassemble the whole
// PRG bank, then partition it into variables and functions. The only error path is a
// disassembly failure; the analysis phase that follows it cannot itself fail.
func Analyze(img *rom.Image) (*FullReport, error) {
	dis, err := disasm.Disassemble(img)
	if err != nil {
		return nil, fmt.Errorf("analyzing rom: %w", err)
	}

	an := analysis.Analyze(img, dis)

	return &FullReport{
		ROM:         img,
		Disassembly: dis,
		Variables:   an.Variables,
		Functions:   an.Functions,
	}, nil
}

// SortedVariableAddresses returns every Variable's address in ascending order.
func (f *FullReport) SortedVariableAddresses() []uint16 {
	out := make([]uint16, 0, len(f.Variables))
	for addr := range f.Variables {
		out = append(out, addr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// SortedFunctionAddresses returns every Function's entry address in ascending order.
func (f *FullReport) SortedFunctionAddresses() []uint16 {
	out := make([]uint16, 0, len(f.Functions))
	for addr := range f.Functions {
		out = append(out, addr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// AnalysisReport reconstructs the analysis.Report view of this result, for callers
// (such as the emitter) that were built against that package's sorting helpers.
func (f *FullReport) AnalysisReport() *analysis.Report {
	return &analysis.Report{Variables: f.Variables, Functions: f.Functions}
}
