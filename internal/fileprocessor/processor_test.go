package fileprocessor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/retroenv/nesdecompiler/internal/options"
	"github.com/retroenv/nesdecompiler/internal/rom"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func writeTestROM(t *testing.T, path string) {
	t.Helper()
	prg := make([]byte, rom.PRGBankSize)
	for i := range prg {
		prg[i] = 0xEA
	}
	end := len(prg)
	prg[end-4], prg[end-3] = 0x00, 0x80 // reset vector 0x8000

	data := make([]byte, rom.HeaderSize+len(prg))
	copy(data[0:4], []byte{'N', 'E', 'S', 0x1A})
	data[4] = byte(len(prg) / rom.PRGBankSize)
	copy(data[rom.HeaderSize:], prg)

	assert.NoError(t, os.WriteFile(path, data, 0o644))
}

func TestProcessFileWritesRequestedOutputs(t *testing.T) {
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "game.nes")
	writeTestROM(t, inputPath)

	logger := log.NewTestLogger(t)
	opts := options.Options{
		Input:       inputPath,
		Output:      dir,
		Disassemble: true,
		Decompile:   true,
	}

	err := ProcessFile(logger, opts)
	assert.NoError(t, err)

	for _, ext := range []string{".asm", ".c", ".h"} {
		path := filepath.Join(dir, "game"+ext)
		_, statErr := os.Stat(path)
		assert.NoError(t, statErr)
	}
}

func TestProcessFileSkipsDisassembleWhenNotRequested(t *testing.T) {
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "game.nes")
	writeTestROM(t, inputPath)

	logger := log.NewTestLogger(t)
	opts := options.Options{
		Input:     inputPath,
		Output:    dir,
		Decompile: true,
	}

	err := ProcessFile(logger, opts)
	assert.NoError(t, err)

	_, statErr := os.Stat(filepath.Join(dir, "game.asm"))
	assert.True(t, statErr != nil)
}

func TestProcessFileInvalidInput(t *testing.T) {
	dir := t.TempDir()
	logger := log.NewTestLogger(t)
	opts := options.Options{
		Input:     filepath.Join(dir, "missing.nes"),
		Decompile: true,
	}

	err := ProcessFile(logger, opts)
	assert.True(t, err != nil)
}
