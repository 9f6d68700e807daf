package writer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/retroenv/nesdecompiler/internal/rom"
	"github.com/retroenv/retrogolib/assert"
)

func buildImage(t *testing.T) *rom.Image {
	t.Helper()
	prg := make([]byte, rom.PRGBankSize)
	for i := range prg {
		prg[i] = 0xEA
	}
	end := len(prg)
	prg[end-4], prg[end-3] = 0x00, 0x80

	data := make([]byte, rom.HeaderSize+len(prg))
	copy(data[0:4], []byte{'N', 'E', 'S', 0x1A})
	data[4] = byte(len(prg) / rom.PRGBankSize)
	copy(data[rom.HeaderSize:], prg)

	img, err := rom.Load(data)
	assert.NoError(t, err)
	return img
}

func TestWriteCommentHeaderUsesPrefix(t *testing.T) {
	img := buildImage(t)

	var buf bytes.Buffer
	assert.NoError(t, WriteCommentHeader(&buf, img, "//"))
	out := buf.String()
	assert.True(t, strings.Contains(out, "// PRG CRC32 checksum:"))
	assert.True(t, strings.Contains(out, "Code base address: $8000"))
}

func TestOutputAliasMapSortsByName(t *testing.T) {
	var buf bytes.Buffer
	assert.NoError(t, OutputAliasMap(&buf, map[string]uint16{
		"sub_9000": 0x9000,
		"sub_8000": 0x8000,
	}))

	out := buf.String()
	idx8000 := strings.Index(out, "sub_8000")
	idx9000 := strings.Index(out, "sub_9000")
	assert.True(t, idx8000 >= 0 && idx9000 >= 0 && idx8000 < idx9000)
}

func TestOutputAliasMapEmpty(t *testing.T) {
	var buf bytes.Buffer
	assert.NoError(t, OutputAliasMap(&buf, map[string]uint16{}))
	assert.Equal(t, "", buf.String())
}
