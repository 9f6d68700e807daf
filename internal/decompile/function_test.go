package decompile

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestFunctionBranchForward(t *testing.T) {
	// LDA #$01; BNE +2; LDA #$02; BRK at 0x8000
	region := CodeRegion{
		BaseAddress: 0x8000,
		Bytes:       []byte{0xA9, 0x01, 0xD0, 0x02, 0xA9, 0x02, 0x00},
	}

	fn, err := Function(0x8000, []CodeRegion{region})
	assert.NoError(t, err)

	assert.Equal(t, uint16(0x8000), fn.EntryAddress)
	assert.Equal(t, fn.EntryAddress, fn.OrderedInstructions[0].CPUAddress)
	assert.Equal(t, "sub_8000", fn.OrderedInstructions[0].Label)

	last := fn.OrderedInstructions[len(fn.OrderedInstructions)-1]
	assert.Equal(t, "BRK", last.Info.Mnemonic)
	assert.Equal(t, uint16(0x8006), last.CPUAddress)

	label, ok := fn.JumpTargets[0x8006]
	assert.True(t, ok)
	assert.Equal(t, "loc_8006", label)

	ldaCount := 0
	for _, ins := range fn.OrderedInstructions {
		if ins.Info.Mnemonic == "LDA" {
			ldaCount++
		}
	}
	assert.Equal(t, 2, ldaCount)
}

func TestFunctionJSRTerminatesPath(t *testing.T) {
	// JSR $8010 then BRK at 0x8003; the single-function decompiler treats JSR
	// conservatively as end-of-function and never follows past it.
	region := CodeRegion{
		BaseAddress: 0x8000,
		Bytes:       []byte{0x20, 0x10, 0x80, 0x00},
	}

	fn, err := Function(0x8000, []CodeRegion{region})
	assert.NoError(t, err)

	assert.Equal(t, 1, len(fn.OrderedInstructions))
	assert.Equal(t, "JSR", fn.OrderedInstructions[0].Info.Mnemonic)
}

func TestFunctionLoopbackRepair(t *testing.T) {
	// body at 0x8018-0x801F: eight NOPs falling through into the entry at 0x8020,
	// entry body at 0x8020-0x8026: seven NOPs, then JMP $8018 at 0x8027-0x8029.
	bytes := make([]byte, 0x802A-0x8018)
	for i := range bytes {
		bytes[i] = 0xEA
	}
	bytes[0x8027-0x8018] = 0x4C
	bytes[0x8028-0x8018] = 0x18
	bytes[0x8029-0x8018] = 0x80

	region := CodeRegion{BaseAddress: 0x8018, Bytes: bytes}

	fn, err := Function(0x8020, []CodeRegion{region})
	assert.NoError(t, err)

	assert.Equal(t, uint16(0x8020), fn.OrderedInstructions[0].CPUAddress)

	last := fn.OrderedInstructions[len(fn.OrderedInstructions)-1]
	assert.Equal(t, "JMP", last.Info.Mnemonic)
	assert.Equal(t, uint16(0x8020), last.TargetAddress)
	assert.Equal(t, 1, last.SubAddressOrder)
	assert.Equal(t, uint16(0x8020), last.CPUAddress)

	// 0x8018..0x801F must appear, and after 0x8020's own block (0x8020..0x8027).
	foundBackward := false
	sawEntryBlockEnd := false
	for _, ins := range fn.OrderedInstructions[:len(fn.OrderedInstructions)-1] {
		if ins.CPUAddress == 0x8027 {
			sawEntryBlockEnd = true
		}
		if ins.CPUAddress == 0x8018 {
			assert.True(t, sawEntryBlockEnd)
			foundBackward = true
		}
	}
	assert.True(t, foundBackward)
}

func TestFunctionRegionNotFound(t *testing.T) {
	_, err := Function(0x9000, []CodeRegion{{BaseAddress: 0x8000, Bytes: []byte{0xEA}}})
	assert.Error(t, err)
}

func TestFunctionLoopbackToZeroRejected(t *testing.T) {
	// entry at 0x0000 looping back onto itself is nonsensical and must be rejected.
	bytes := []byte{0x4C, 0x00, 0x00} // JMP $0000
	region := CodeRegion{BaseAddress: 0x0000, Bytes: bytes}

	_, err := Function(0x0000, []CodeRegion{region})
	assert.Error(t, err)
}
