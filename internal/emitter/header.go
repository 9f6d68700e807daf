package emitter

import (
	"fmt"
	"io"

	"github.com/retroenv/nesdecompiler/internal/analysis"
)

// EmitHeader writes the include-guarded header declaring the hardware macros, extern
// variable declarations, and function prototypes shared between translation units.
func EmitHeader(w io.Writer, guardName string, an *analysis.Report) error {
	if _, err := fmt.Fprintf(w, "#ifndef %s\n#define %s\n\n", guardName, guardName); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "#include <stdint.h>"); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}

	if err := writeHardwareMacros(w, an); err != nil {
		return err
	}

	for _, addr := range an.SortedVariableAddresses() {
		v := an.Variables[addr]
		if _, ok := analysis.IsHardwareRegister(addr); ok {
			continue
		}
		if !isStaticVariableAddress(addr) {
			continue
		}
		if _, err := fmt.Fprintf(w, "extern %s %s%s;\n", cTypeOf(v), v.Name, cArraySuffix(v)); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}

	for _, addr := range an.SortedFunctionAddresses() {
		fn := an.Functions[addr]
		if _, err := fmt.Fprintf(w, "void %s(void);\n", fn.Name); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "\n#endif /* %s */\n", guardName); err != nil {
		return err
	}
	return nil
}

func writeHardwareMacros(w io.Writer, an *analysis.Report) error {
	for _, addr := range an.SortedVariableAddresses() {
		name, ok := analysis.IsHardwareRegister(addr)
		if !ok {
			continue
		}
		if _, err := fmt.Fprintf(w, "#define %s (*(volatile uint8_t*)0x%04X)\n", name, addr); err != nil {
			return err
		}
	}
	return nil
}

func isStaticVariableAddress(address uint16) bool {
	return address < 0x2000 || address >= 0x8000
}

func cTypeOf(v *analysis.Variable) string {
	switch v.Type {
	case analysis.Pointer:
		return "uint8_t*"
	case analysis.Word:
		return "uint16_t"
	default:
		return "uint8_t"
	}
}

func cArraySuffix(v *analysis.Variable) string {
	if v.Type == analysis.Array {
		return fmt.Sprintf("[%d]", v.Size)
	}
	return ""
}
