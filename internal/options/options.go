// Package options contains the CLI's parsed options.
package options

// Options controls one run of the nesdecompiler CLI.
type Options struct {
	Input  string // path to the input iNES ROM file
	Output string // output directory; defaults to the input file's directory

	Disassemble bool // emit <stem>.asm
	Decompile   bool // emit <stem>.c and <stem>.h
	Verbose     bool // enable debug logging
}
