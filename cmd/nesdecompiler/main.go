// Package main implements the nesdecompiler command line tool: it loads an iNES ROM,
// analyzes it, and emits a disassembly listing and/or decompiled C source.
package main

import (
	"fmt"
	"os"

	"github.com/retroenv/nesdecompiler/internal/cli"
	"github.com/retroenv/nesdecompiler/internal/config"
	"github.com/retroenv/nesdecompiler/internal/fileprocessor"
)

func main() {
	opts, err := cli.ParseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		if usageErr, ok := err.(*cli.UsageError); ok {
			usageErr.ShowUsage()
		}
		os.Exit(1)
	}

	logger := config.CreateLogger(opts.Verbose)

	if err := fileprocessor.ProcessFile(logger, opts); err != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("nesdecompiler: %w", err))
		os.Exit(1)
	}
}
