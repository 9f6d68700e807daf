package workspace

import (
	"github.com/retroenv/nesdecompiler/internal/analysis"
	"github.com/retroenv/nesdecompiler/internal/report"
)

// FromReport fills in the variable and function descriptors of an existing Document
// from a completed analysis, marking it as both disassembled and decompiled. The core
// itself never persists the result; it only produces this value for the UI
// collaborator to serialize.
func FromReport(d *Document, full *report.FullReport) {
	d.IsDisassembled = true
	d.IsDecompiled = true

	for _, addr := range full.SortedVariableAddresses() {
		v := full.Variables[addr]
		d.Variables[v.Name] = VariableDescriptor{
			Name: v.Name,
			Type: cTypeName(v),
		}
	}

	for _, addr := range full.SortedFunctionAddresses() {
		fn := full.Functions[addr]
		d.Functions[fn.Name] = FunctionDescriptor{
			Name:       fn.Name,
			ReturnType: "void",
			Parameters: []ParameterDescriptor{},
		}
	}
}

func cTypeName(v *analysis.Variable) string {
	switch v.Type {
	case analysis.Pointer:
		return "uint8_t*"
	case analysis.Array:
		return "uint8_t[]"
	case analysis.Word:
		return "uint16_t"
	default:
		return "uint8_t"
	}
}
