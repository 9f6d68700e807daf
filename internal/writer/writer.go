// Package writer implements common listing output helpers shared between the ASM and
// C emitters: the checksum banner and the sorted alias-map block.
package writer

import (
	"fmt"
	"io"
	"sort"

	"github.com/retroenv/nesdecompiler/internal/rom"
)

// WriteCommentHeader writes the CRC32 checksums and code base address as a comment
// header to the output, using commentPrefix as the line-comment marker (";" for the
// ASM listing, "//" for C source).
func WriteCommentHeader(w io.Writer, img *rom.Image, commentPrefix string) error {
	if _, err := fmt.Fprintf(w, "%s PRG CRC32 checksum: %08x\n", commentPrefix, img.Checksums.PRG); err != nil {
		return fmt.Errorf("writing prg checksum: %w", err)
	}
	if _, err := fmt.Fprintf(w, "%s CHR CRC32 checksum: %08x\n", commentPrefix, img.Checksums.CHR); err != nil {
		return fmt.Errorf("writing chr checksum: %w", err)
	}
	if _, err := fmt.Fprintf(w, "%s Overall CRC32 checksum: %08x\n", commentPrefix, img.Checksums.Overall); err != nil {
		return fmt.Errorf("writing overall checksum: %w", err)
	}
	if _, err := fmt.Fprintf(w, "%s Code base address: $%04x\n\n", commentPrefix, rom.CodeBaseAddress); err != nil {
		return fmt.Errorf("writing code base address: %w", err)
	}
	return nil
}

// OutputAliasMap outputs an alias map, sorted by name to keep the output deterministic.
func OutputAliasMap(w io.Writer, aliases map[string]uint16) error {
	if len(aliases) == 0 {
		return nil
	}

	if _, err := fmt.Fprintln(w); err != nil {
		return fmt.Errorf("writing line: %w", err)
	}

	names := make([]string, 0, len(aliases))
	for name := range aliases {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		address := aliases[name]
		if _, err := fmt.Fprintf(w, "%s = $%04X\n", name, address); err != nil {
			return fmt.Errorf("writing alias: %w", err)
		}
	}

	_, err := fmt.Fprintln(w)
	return err
}
