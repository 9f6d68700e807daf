// Package fileprocessor handles file loading and the load/analyze/emit workflow
// driven by the CLI.
package fileprocessor

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/retroenv/nesdecompiler/internal/emitter"
	"github.com/retroenv/nesdecompiler/internal/options"
	"github.com/retroenv/nesdecompiler/internal/report"
	"github.com/retroenv/nesdecompiler/internal/rom"
	"github.com/retroenv/retrogolib/log"
)

// ProcessFile runs the complete pipeline for one input ROM: load, analyze, and emit
// whichever of the .asm/.c/.h outputs the options request.
func ProcessFile(logger *log.Logger, opts options.Options) error {
	img, err := loadROM(opts.Input)
	if err != nil {
		return fmt.Errorf("loading rom: %w", err)
	}
	logger.Debug("loaded rom", log.Int("prg_size", img.PRGSize()), log.Uint8("mapper", img.Mapper))

	full, err := report.Analyze(img)
	if err != nil {
		return fmt.Errorf("analyzing rom: %w", err)
	}
	logger.Debug("analyzed rom",
		log.Int("functions", len(full.Functions)),
		log.Int("variables", len(full.Variables)))

	outDir, stem, err := outputLocation(opts)
	if err != nil {
		return fmt.Errorf("resolving output location: %w", err)
	}

	if opts.Disassemble {
		if err := writeASM(outDir, stem, full); err != nil {
			return fmt.Errorf("writing asm output: %w", err)
		}
	}

	if opts.Decompile {
		if err := writeC(outDir, stem, full); err != nil {
			return fmt.Errorf("writing c output: %w", err)
		}
	}

	return nil
}

func loadROM(path string) (*rom.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	img, err := rom.Load(data)
	if err != nil {
		return nil, fmt.Errorf("parsing rom %s: %w", path, err)
	}
	return img, nil
}

// outputLocation resolves the output directory and file stem from the input path and
// the -o flag: an empty -o defaults to the input file's own directory.
func outputLocation(opts options.Options) (dir, stem string, err error) {
	dir = opts.Output
	if dir == "" {
		dir = filepath.Dir(opts.Input)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("creating output directory %s: %w", dir, err)
	}

	base := filepath.Base(opts.Input)
	ext := filepath.Ext(base)
	stem = base[:len(base)-len(ext)]
	return dir, stem, nil
}

func writeASM(outDir, stem string, full *report.FullReport) error {
	text, err := emitter.EmitASM(full.Disassembly)
	if err != nil {
		return fmt.Errorf("emitting asm: %w", err)
	}
	path := filepath.Join(outDir, stem+".asm")
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func writeC(outDir, stem string, full *report.FullReport) error {
	source, header, err := emitter.EmitC(full)
	if err != nil {
		return fmt.Errorf("emitting c: %w", err)
	}

	cPath := filepath.Join(outDir, stem+".c")
	if err := os.WriteFile(cPath, []byte(source), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", cPath, err)
	}

	hPath := filepath.Join(outDir, stem+".h")
	if err := os.WriteFile(hPath, []byte(header), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", hPath, err)
	}
	return nil
}
