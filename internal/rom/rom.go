package rom

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/retroenv/retrogolib/arch/cpu/m6502"
	"github.com/retroenv/retrogolib/arch/nes/cartridge"
	"github.com/retroenv/retrogolib/set"
)

// CodeBaseAddress is the CPU address the PRG bank is mapped to. A single 16 KiB bank
// mirrors into both halves of $8000-$FFFF; larger PRG sizes start at the same base.
const CodeBaseAddress = 0x8000

// Interrupt vector locations in CPU address space, at the very end of the PRG bank.
// These mirror retrogolib's own m6502.NMIAddress/ResetAddress/IrqAddress constants.
const (
	ResetVectorAddress = uint16(m6502.ResetAddress)
	NMIVectorAddress   = uint16(m6502.NMIAddress)
	IRQVectorAddress   = uint16(m6502.IrqAddress)
)

// Checksums holds CRC32 checksums of the cartridge's ROM content.
type Checksums struct {
	PRG     uint32
	CHR     uint32
	Overall uint32
}

// Image is a parsed iNES cartridge: the header-derived metadata plus the raw PRG/CHR banks.
type Image struct {
	Mapper    byte
	Mirroring Mirroring
	Battery   bool

	Trainer []byte
	prg     []byte
	chr     []byte

	PRGOffset int // offset of the PRG bank within the original file buffer
	CHROffset int // offset of the CHR bank within the original file buffer

	ResetVector uint16
	NMIVector   uint16
	IRQVector   uint16

	// EntryPoints is the initial set of addresses known to be code, seeded with the
	// reset vector. The disassembler grows this set as it traces jumps and calls.
	EntryPoints []uint16
	entrySeen   set.Set[uint16]

	Checksums Checksums
}

// Load parses an iNES v1.0 image and returns the decoded cartridge. NES 2.0 extensions
// are ignored; the high mapper nibble is read unconditionally as plain iNES.
//
// The mapper/battery/trainer/PRG/CHR content itself is decoded by
// retrogolib/arch/nes/cartridge, the same library the teacher's own
// internal/disasm.go and internal/program.New build a Program from. The header is also
// pre-scanned locally, to recover the PRG/CHR byte offsets within the original file
// buffer that the cartridge library's decoded form does not retain, and to derive the
// mirroring mode from the raw flags6 byte.
func Load(data []byte) (*Image, error) {
	h, err := parseHeader(data)
	if err != nil {
		return nil, err
	}

	prgOffset := HeaderSize
	if h.hasTrainer() {
		prgOffset += TrainerSize
	}
	chrOffset := prgOffset + h.prgSize()

	cart, err := cartridge.LoadFile(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}

	img := &Image{
		Mapper:    cart.Mapper,
		Mirroring: h.mirroring(),
		Battery:   cart.Battery != 0,
		Trainer:   cart.Trainer,
		prg:       cart.PRG,
		chr:       []byte(cart.CHR),
		PRGOffset: prgOffset,
		CHROffset: chrOffset,
	}

	if err := img.readVectors(); err != nil {
		return nil, err
	}
	img.entrySeen = set.New[uint16]()
	img.entrySeen.Add(img.ResetVector)
	img.EntryPoints = []uint16{img.ResetVector}
	img.computeChecksums()

	return img, nil
}

// readVectors reads the reset/NMI/IRQ vectors from the last 6 bytes of the PRG bank,
// which the 6502 sees as CPU addresses $FFFA-$FFFF.
func (img *Image) readVectors() error {
	if len(img.prg) < 6 {
		return fmt.Errorf("%w: PRG bank too small to contain interrupt vectors", ErrInvalidFormat)
	}
	end := len(img.prg)
	img.NMIVector = binary.LittleEndian.Uint16(img.prg[end-6 : end-4])
	img.ResetVector = binary.LittleEndian.Uint16(img.prg[end-4 : end-2])
	img.IRQVector = binary.LittleEndian.Uint16(img.prg[end-2 : end])
	return nil
}

func (img *Image) computeChecksums() {
	table := crc32.MakeTable(crc32.IEEE)
	img.Checksums.PRG = crc32.Checksum(img.prg, table)
	img.Checksums.CHR = crc32.Checksum(img.chr, table)
	overall := make([]byte, 0, len(img.prg)+len(img.chr))
	overall = append(overall, img.prg...)
	overall = append(overall, img.chr...)
	img.Checksums.Overall = crc32.Checksum(overall, table)
}

// PRGSlice returns a read-only view of the PRG-ROM bank.
func (img *Image) PRGSlice() []byte {
	return img.prg
}

// CHRSlice returns a read-only view of the CHR-ROM bank.
func (img *Image) CHRSlice() []byte {
	return img.chr
}

// PRGSize returns the number of bytes in the PRG bank.
func (img *Image) PRGSize() int {
	return len(img.prg)
}

// AddressToOffset converts a CPU address within the mapped PRG window to an offset
// into the PRG bank. A single bank mirrors across the whole $8000-$FFFF window.
func (img *Image) AddressToOffset(address uint16) int {
	if len(img.prg) == 0 {
		return 0
	}
	return int(address-CodeBaseAddress) % len(img.prg)
}

// ReadByte reads one byte of PRG data at the given CPU address. ok is false if the
// address lies before the code base address.
func (img *Image) ReadByte(address uint16) (byte, bool) {
	if address < CodeBaseAddress {
		return 0, false
	}
	offset := img.AddressToOffset(address)
	if offset < 0 || offset >= len(img.prg) {
		return 0, false
	}
	return img.prg[offset], true
}

// AddEntryPoint records a new known-code address if it is not already present.
func (img *Image) AddEntryPoint(address uint16) {
	if img.entrySeen.Contains(address) {
		return
	}
	img.entrySeen.Add(address)
	img.EntryPoints = append(img.EntryPoints, address)
}
