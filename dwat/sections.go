// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package dwat

import (
	"debug/dwarf"
	"debug/elf"
	"debug/macho"
	"debug/pe"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	mmap "github.com/edsrzf/mmap-go"
)

// containerDWARF is satisfied by the three container parsers in debug/elf,
// debug/macho and debug/pe: each already assembles a *dwarf.Data covering
// the canonical DWARF sections (decompressing SHF_COMPRESSED/zlib sections
// transparently), which is the substrate the DWARF Reader (reader.go) is
// layered over. Grounded on internal/dwarf/parser.go's parseELF/parseMacho/
// parsePE, which call the identical *File.DWARF() method on each container
// type.
type containerDWARF interface {
	DWARF() (*dwarf.Data, error)
}

// detectContainer sniffs magic bytes to choose which debug/* package parses
// data: ELF magic \x7fELF, Mach-O's 0xfeedface/0xfeedfacf family in either
// endianness, PE's "MZ". WASM is intentionally not handled — only
// ELF/Mach-O/PE binaries carry the DWARF this tool inspects.
func detectContainer(r io.ReaderAt) (containerDWARF, error) {
	magic := make([]byte, 4)
	if _, err := r.ReadAt(magic, 0); err != nil {
		return nil, wrapf(ErrContainerParseError, "reading magic bytes: %v", err)
	}

	switch {
	case magic[0] == 0x7f && magic[1] == 'E' && magic[2] == 'L' && magic[3] == 'F':
		f, err := elf.NewFile(r)
		if err != nil {
			return nil, wrapf(ErrContainerParseError, "elf: %v", err)
		}
		return f, nil

	case binary.BigEndian.Uint32(magic) == macho.Magic32 ||
		binary.BigEndian.Uint32(magic) == macho.Magic64 ||
		binary.LittleEndian.Uint32(magic) == macho.Magic32 ||
		binary.LittleEndian.Uint32(magic) == macho.Magic64 ||
		binary.BigEndian.Uint32(magic) == macho.MagicFat:
		f, err := macho.NewFile(r)
		if err != nil {
			return nil, wrapf(ErrContainerParseError, "macho: %v", err)
		}
		return f, nil

	case magic[0] == 'M' && magic[1] == 'Z':
		f, err := pe.NewFile(r)
		if err != nil {
			return nil, wrapf(ErrContainerParseError, "pe: %v", err)
		}
		return f, nil
	}

	return nil, wrapf(ErrContainerParseError, "unrecognized container magic % x", magic)
}

// Sections is the loaded DWARF data plus the lifecycle hook needed to
// release it. It comes in two shapes: borrowed (memory-mapped) and owned
// (heap-copied).
type Sections struct {
	data *dwarf.Data
	// close releases whatever backing memory this Sections borrowed (a
	// no-op for the owned shape).
	close func() error
}

// Close releases the underlying mapping, if any. Safe to call on an owned
// Sections (a no-op).
func (s *Sections) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// LoadMapped memory-maps path and parses its DWARF sections directly over
// the mapping — the "borrowed" shape, grounded on
// original_source/src/main.rs and src/python/mod.rs's
// `Mmap::map(&file)` + `Dwarf::load(&*mmap)` pattern. Close on the
// returned *Sections unmaps the file. The container parsers copy the
// section bytes out of the mapping while loading (see LoadOwned), so a
// Reader built over it does not read the mapping after LoadMapped returns.
func LoadMapped(path string) (*Sections, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("mapping %s: %w", path, err)
	}

	container, err := detectContainer(&bytesReaderAt{m})
	if err != nil {
		_ = m.Unmap()
		return nil, err
	}
	data, err := container.DWARF()
	if err != nil {
		_ = m.Unmap()
		return nil, wrapf(ErrContainerParseError, "no DWARF data: %v", err)
	}

	return &Sections{
		data:  data,
		close: m.Unmap,
	}, nil
}

// LoadOwned parses DWARF sections from r, heap-copying every section it
// touches rather than borrowing — the "owned" shape, needed when the
// caller cannot keep a mapping alive (e.g. a foreign-
// language binding), grounded on original_source/src/python/mod.rs's
// OwnedDwarf usage backing the pyo3 bindings. size is the total readable
// length of r.
func LoadOwned(r io.ReaderAt, size int64) (*Sections, error) {
	buf := make([]byte, size)
	if _, err := r.ReadAt(buf, 0); err != nil && err != io.EOF {
		return nil, fmt.Errorf("reading container: %w", err)
	}

	container, err := detectContainer(&bytesReaderAt{buf})
	if err != nil {
		return nil, err
	}
	data, err := container.DWARF()
	if err != nil {
		return nil, wrapf(ErrContainerParseError, "no DWARF data: %v", err)
	}

	// debug/elf, debug/macho and debug/pe all return section byte slices
	// already decoded into independent heap buffers (Data() decompresses
	// into a freshly allocated slice, and uncompressed sections are read
	// via ReadAt into a freshly allocated slice as well) — so by the time
	// *dwarf.Data exists, nothing it holds still aliases r. No further
	// copying step is required for the "owned" guarantee; this function
	// exists to document and name that guarantee at the API boundary
	// (LoadOwned never returns a Sections tied to a live mmap), not to
	// perform an additional copy debug/dwarf already did internally.
	return &Sections{data: data}, nil
}

// LoadBytes is a convenience owned-shape constructor over an in-memory
// buffer (e.g. already read by the caller, or received over IPC).
func LoadBytes(b []byte) (*Sections, error) {
	return LoadOwned(&bytesReaderAt{b}, int64(len(b)))
}

type bytesReaderAt struct {
	b []byte
}

func (r *bytesReaderAt) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off >= int64(len(r.b)) {
		return 0, io.EOF
	}
	n := copy(p, r.b[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}
