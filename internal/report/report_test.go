package report

import (
	"testing"

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

func TestAnalyzeWiresDisassemblyAndFunctions(t *testing.T) {
	prg := fillNOP(rom.PRGBankSize)
	prg[0] = 0x20 // JSR $8010
	prg[1] = 0x10
	prg[2] = 0x80
	prg[0x10] = 0x60 // RTS
	end := len(prg)
	prg[end-4], prg[end-3] = 0x00, 0x80

	img := buildImage(t, prg)
	full, err := Analyze(img)
	assert.NoError(t, err)

	assert.Equal(t, img, full.ROM)
	_, ok := full.Functions[0x8000]
	assert.True(t, ok)
	_, ok = full.Functions[0x8010]
	assert.True(t, ok)

	addrs := full.SortedFunctionAddresses()
	assert.Equal(t, 2, len(addrs))
	assert.Equal(t, uint16(0x8000), addrs[0])
	assert.Equal(t, uint16(0x8010), addrs[1])
}
