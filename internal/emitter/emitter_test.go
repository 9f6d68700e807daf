package emitter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/retroenv/nesdecompiler/internal/report"
	"github.com/retroenv/nesdecompiler/internal/rom"
	"github.com/retroenv/retrogolib/assert"
)

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

func fillNOP(size int) []byte {
	b := make([]byte, size)
	for i := range b {
		b[i] = 0xEA
	}
	return b
}

func TestEmitCHardwareRegisterMacro(t *testing.T) {
	prg := fillNOP(rom.PRGBankSize)
	prg[0] = 0x8D // STA $2000
	prg[1] = 0x00
	prg[2] = 0x20
	prg[3] = 0x00 // BRK
	end := len(prg)
	prg[end-4], prg[end-3] = 0x00, 0x80

	img := buildImage(t, prg)
	full, err := report.Analyze(img)
	assert.NoError(t, err)

	source, header, err := EmitC(full)
	assert.NoError(t, err)

	assert.True(t, strings.Contains(header, "PPUCTRL"))
	assert.True(t, strings.Contains(source, "PPUCTRL"))
	assert.True(t, strings.Contains(source, "sub_8000"))
}

func TestEmitCStatusFlagConstants(t *testing.T) {
	prg := fillNOP(rom.PRGBankSize)
	prg[0] = 0x00 // BRK
	end := len(prg)
	prg[end-4], prg[end-3] = 0x00, 0x80

	img := buildImage(t, prg)
	full, err := report.Analyze(img)
	assert.NoError(t, err)

	source, _, err := EmitC(full)
	assert.NoError(t, err)

	for _, want := range []string{"CARRY_FLAG 0x01", "NEGATIVE_FLAG 0x80"} {
		assert.True(t, strings.Contains(source, want))
	}
	assert.True(t, strings.Contains(source, "int main(void)"))
}

func TestEmitASMProducesLabelsAndComments(t *testing.T) {
	prg := fillNOP(rom.PRGBankSize)
	prg[0] = 0xA9 // LDA #$01
	prg[1] = 0x01
	prg[2] = 0xD0 // BNE +2
	prg[3] = 0x02
	prg[4] = 0xA9 // LDA #$02
	prg[5] = 0x02
	prg[6] = 0x00 // BRK
	end := len(prg)
	prg[end-4], prg[end-3] = 0x00, 0x80

	img := buildImage(t, prg)
	full, err := report.Analyze(img)
	assert.NoError(t, err)

	out, err := EmitASM(full.Disassembly)
	assert.NoError(t, err)

	assert.True(t, strings.Contains(out, "BNE"))
	assert.True(t, strings.Contains(out, "BRK"))
	assert.True(t, strings.Contains(out, "loc_8006:"))
	assert.True(t, strings.Contains(out, "; 8002: D0 02"))
}

func TestEmitHeaderIncludeGuard(t *testing.T) {
	prg := fillNOP(rom.PRGBankSize)
	prg[0] = 0x00
	end := len(prg)
	prg[end-4], prg[end-3] = 0x00, 0x80

	img := buildImage(t, prg)
	full, err := report.Analyze(img)
	assert.NoError(t, err)

	var buf bytes.Buffer
	err = EmitHeader(&buf, "TEST_GUARD_H", full.AnalysisReport())
	assert.NoError(t, err)

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "#ifndef TEST_GUARD_H"))
	assert.True(t, strings.Contains(out, "#endif /* TEST_GUARD_H */"))
}
