// Package cli handles command line interface logic.
package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/retroenv/nesdecompiler/internal/options"
)

// ParseFlags parses command line flags into Options.
func ParseFlags(args []string) (options.Options, error) {
	flags := flag.NewFlagSet("nesdecompiler", flag.ContinueOnError)
	var opts options.Options

	var input, output string
	var disassemble, decompile, verbose bool

	flags.StringVar(&input, "i", "", "input ROM file")
	flags.StringVar(&input, "input", "", "input ROM file")
	flags.StringVar(&output, "o", "", "output directory")
	flags.StringVar(&output, "output", "", "output directory")
	flags.BoolVar(&disassemble, "d", false, "emit a disassembly listing (.asm)")
	flags.BoolVar(&disassemble, "disassemble", false, "emit a disassembly listing (.asm)")
	flags.BoolVar(&decompile, "c", true, "emit decompiled C source and header (.c, .h)")
	flags.BoolVar(&decompile, "decompile", true, "emit decompiled C source and header (.c, .h)")
	flags.BoolVar(&verbose, "v", false, "enable verbose logging")
	flags.BoolVar(&verbose, "verbose", false, "enable verbose logging")

	if err := flags.Parse(args); err != nil {
		return opts, &UsageError{flags: flags, msg: err.Error()}
	}

	if input == "" {
		return opts, &UsageError{flags: flags, msg: "missing required -i/--input flag"}
	}

	opts.Input = input
	opts.Output = output
	opts.Disassemble = disassemble
	opts.Decompile = decompile
	opts.Verbose = verbose

	return opts, nil
}

// UsageError represents an error that should show usage information.
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

// ShowUsage prints the flag usage information to stderr.
func (e *UsageError) ShowUsage() {
	fmt.Fprintf(os.Stderr, "usage: nesdecompiler -i <input.nes> [-o <dir>] [-d] [-c] [-v]\n\n")
	e.flags.PrintDefaults()
}
