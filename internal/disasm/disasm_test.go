package disasm

import (
	"encoding/binary"
	"testing"

	"github.com/retroenv/nesdecompiler/internal/rom"
	"github.com/retroenv/retrogolib/assert"
)

const nopOpcode = 0xEA

func fillNOP(size int) []byte {
	b := make([]byte, size)
	for i := range b {
		b[i] = nopOpcode
	}
	return b
}

func setVector(prg []byte, offsetFromEnd int, value uint16) {
	end := len(prg)
	binary.LittleEndian.PutUint16(prg[end-offsetFromEnd:end-offsetFromEnd+2], value)
}

// buildImage wraps a 16KB PRG bank in a minimal iNES header and loads it.
func buildImage(t *testing.T, prg []byte) *rom.Image {
	t.Helper()

	data := make([]byte, rom.HeaderSize+len(prg))
	copy(data[0:4], []byte{'N', 'E', 'S', 0x1A})
	data[4] = byte(len(prg) / rom.PRGBankSize)
	copy(data[rom.HeaderSize:], prg)

	img, err := rom.Load(data)
	assert.NoError(t, err)
	return img
}

func TestDisassembleMinimalReset(t *testing.T) {
	prg := fillNOP(rom.PRGBankSize)
	setVector(prg, 6, 0x0000) // NMI
	setVector(prg, 4, 0x8000) // reset
	setVector(prg, 2, 0x0000) // IRQ

	img := buildImage(t, prg)
	report, err := Disassemble(img)
	assert.NoError(t, err)

	// Every byte decodes except the 0x80 high byte of the reset vector, which is not a
	// documented opcode and is skipped by the linear sweep.
	assert.Equal(t, rom.PRGBankSize-1, len(report.Instructions))
	assert.Equal(t, "NOP", report.Instructions[0x8000].Info.Mnemonic)
	assert.Equal(t, "sub_8000", report.Labels[0x8000])
	assert.False(t, report.Saturated)
}

func TestDisassembleBranchForward(t *testing.T) {
	prg := fillNOP(rom.PRGBankSize)
	prg[0] = 0xD0 // BNE
	prg[1] = 0x02 // forward offset: target = 0x8000 + 2 + 2 = 0x8004
	setVector(prg, 4, 0x8000)

	img := buildImage(t, prg)
	report, err := Disassemble(img)
	assert.NoError(t, err)

	branch := report.Instructions[0x8000]
	assert.Equal(t, "BNE", branch.Info.Mnemonic)
	assert.True(t, branch.TargetResolved)
	assert.Equal(t, uint16(0x8004), branch.TargetAddress)

	_, referenced := report.ReferencedAddresses[0x8004]
	assert.True(t, referenced)
	assert.Equal(t, "loc_8004", report.Labels[0x8004])
	assert.Equal(t, "-> loc_8004", branch.Comment)
}

func TestDisassembleJSRThenRTS(t *testing.T) {
	prg := fillNOP(rom.PRGBankSize)
	prg[0] = 0x20 // JSR
	prg[1] = 0x10
	prg[2] = 0x80 // target 0x8010
	prg[0x10] = 0x60 // RTS
	setVector(prg, 4, 0x8000)

	img := buildImage(t, prg)
	report, err := Disassemble(img)
	assert.NoError(t, err)

	call := report.Instructions[0x8000]
	assert.Equal(t, "JSR", call.Info.Mnemonic)
	assert.Equal(t, uint16(0x8010), call.TargetAddress)
	assert.Equal(t, "sub_8010", report.Labels[0x8010])
	assert.Equal(t, "-> sub_8010", call.Comment)

	callee := report.Instructions[0x8010]
	assert.Equal(t, "RTS", callee.Info.Mnemonic)

	found := false
	for _, ep := range report.EntryPoints {
		if ep == 0x8010 {
			found = true
		}
	}
	assert.True(t, found)
}

func TestDisassembleJumpEngineDetection(t *testing.T) {
	prg := fillNOP(rom.PRGBankSize)

	// caller at 0x8000: JSR to the jump engine at 0x8010, followed by a two-entry
	// function pointer table pointing at 0x8020 and 0x8030.
	prg[0] = 0x20 // JSR
	prg[1] = 0x10
	prg[2] = 0x80
	binary.LittleEndian.PutUint16(prg[3:5], 0x8020)
	binary.LittleEndian.PutUint16(prg[5:7], 0x8030)

	// jump engine body at 0x8010: LDA immediate, JMP (indirect) $00F0, no branches.
	prg[0x10] = 0xA9 // LDA #imm
	prg[0x11] = 0x00
	prg[0x12] = 0x6C // JMP (indirect)
	prg[0x13] = 0xF0
	prg[0x14] = 0x00

	prg[0x20] = 0x60 // RTS, function referenced by table entry 1
	prg[0x30] = 0x60 // RTS, function referenced by table entry 2

	setVector(prg, 4, 0x8000)

	img := buildImage(t, prg)
	report, err := Disassemble(img)
	assert.NoError(t, err)

	_, isEngine := report.JumpEngines[0x8010]
	assert.True(t, isEngine)

	assert.Equal(t, "RTS", report.Instructions[0x8020].Info.Mnemonic)
	assert.Equal(t, "RTS", report.Instructions[0x8030].Info.Mnemonic)
}
