package rom

import (
	"encoding/binary"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

// buildROM builds a minimal iNES image with the given number of 16KB PRG banks and
// a reset vector written at the end of the last bank.
func buildROM(prgBanks byte, flags6, flags7 byte, resetVector uint16) []byte {
	data := make([]byte, HeaderSize+int(prgBanks)*PRGBankSize)
	copy(data[0:4], magic[:])
	data[4] = prgBanks
	data[5] = 0
	data[6] = flags6
	data[7] = flags7

	end := len(data)
	binary.LittleEndian.PutUint16(data[end-4:end-2], resetVector)
	return data
}

func TestLoad(t *testing.T) {
	t.Run("valid minimal ROM", func(t *testing.T) {
		data := buildROM(1, 0, 0, 0x8000)
		img, err := Load(data)
		assert.NoError(t, err)
		assert.Equal(t, PRGBankSize, img.PRGSize())
		assert.Equal(t, uint16(0x8000), img.ResetVector)
		assert.Equal(t, 1, len(img.EntryPoints))
		assert.Equal(t, uint16(0x8000), img.EntryPoints[0])
	})

	t.Run("rejects bad magic", func(t *testing.T) {
		data := buildROM(1, 0, 0, 0x8000)
		data[0] = 'X'
		_, err := Load(data)
		assert.Error(t, err)
	})

	t.Run("rejects truncated buffer", func(t *testing.T) {
		data := buildROM(2, 0, 0, 0x8000)
		data = data[:HeaderSize+PRGBankSize] // declares 2 banks, only ships 1
		_, err := Load(data)
		assert.Error(t, err)
	})

	t.Run("decodes mapper id from both nibbles", func(t *testing.T) {
		data := buildROM(1, 0x10, 0x20, 0x8000) // mapper low nibble 1, high nibble 2
		img, err := Load(data)
		assert.NoError(t, err)
		assert.Equal(t, byte(0x21), img.Mapper)
	})

	t.Run("mirroring modes", func(t *testing.T) {
		horiz, err := Load(buildROM(1, 0x00, 0, 0x8000))
		assert.NoError(t, err)
		assert.Equal(t, Horizontal, horiz.Mirroring)

		vert, err := Load(buildROM(1, 0x01, 0, 0x8000))
		assert.NoError(t, err)
		assert.Equal(t, Vertical, vert.Mirroring)

		fourScreen, err := Load(buildROM(1, 0x09, 0, 0x8000)) // mirroring bit set but ignored
		assert.NoError(t, err)
		assert.Equal(t, FourScreen, fourScreen.Mirroring)
	})

	t.Run("trainer shifts PRG offset", func(t *testing.T) {
		data := make([]byte, HeaderSize+TrainerSize+PRGBankSize)
		copy(data[0:4], magic[:])
		data[4] = 1
		data[6] = flags6Trainer
		end := len(data)
		binary.LittleEndian.PutUint16(data[end-4:end-2], 0x8123)

		img, err := Load(data)
		assert.NoError(t, err)
		assert.Equal(t, HeaderSize+TrainerSize, img.PRGOffset)
		assert.Equal(t, uint16(0x8123), img.ResetVector)
	})

	t.Run("reads all three vectors", func(t *testing.T) {
		data := buildROM(1, 0, 0, 0x8000)
		end := len(data)
		binary.LittleEndian.PutUint16(data[end-6:end-4], 0x8010) // NMI
		binary.LittleEndian.PutUint16(data[end-4:end-2], 0x8020) // reset
		binary.LittleEndian.PutUint16(data[end-2:end], 0x8030)   // IRQ

		img, err := Load(data)
		assert.NoError(t, err)
		assert.Equal(t, uint16(0x8010), img.NMIVector)
		assert.Equal(t, uint16(0x8020), img.ResetVector)
		assert.Equal(t, uint16(0x8030), img.IRQVector)
	})
}

func TestAddressToOffset(t *testing.T) {
	img, err := Load(buildROM(1, 0, 0, 0x8000))
	assert.NoError(t, err)

	assert.Equal(t, 0, img.AddressToOffset(0x8000))
	assert.Equal(t, 1, img.AddressToOffset(0x8001))
	// single 16KB bank mirrors into the upper half of the address space
	assert.Equal(t, 0, img.AddressToOffset(0xC000))
}

func TestReadByte(t *testing.T) {
	data := buildROM(1, 0, 0, 0x8000)
	data[HeaderSize] = 0xEA
	img, err := Load(data)
	assert.NoError(t, err)

	b, ok := img.ReadByte(0x8000)
	assert.True(t, ok)
	assert.Equal(t, byte(0xEA), b)

	_, ok = img.ReadByte(0x1000)
	assert.False(t, ok)
}

func TestAddEntryPoint(t *testing.T) {
	img, err := Load(buildROM(1, 0, 0, 0x8000))
	assert.NoError(t, err)

	img.AddEntryPoint(0x8010)
	img.AddEntryPoint(0x8010) // duplicate, should not grow the set
	assert.Equal(t, 2, len(img.EntryPoints))
}
