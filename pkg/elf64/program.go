package elf64

import (
	"encoding/binary"
	"fmt"

	"github.com/vietanhduong/readelf/pkg/codec"
)

type ProgramHeaderEntry struct {
	SegmentType     [4]byte
	Flags           uint32
	Offset          uint64
	VirtualAddress  uint64
	PhysicalAddress uint64
	FileSize        uint64
	MemSize         uint64
	Align           uint64
}

func (e *ProgramHeaderEntry) Type() SegmentType {
	return SegmentType(binary.LittleEndian.Uint32(e.SegmentType[:]))
}

func (e *ProgramHeaderEntry) ProgFlags() ProgFlags { return ProgFlags(e.Flags) }

type ProgramHeaderInfo struct {
	Entry ProgramHeaderEntry
	Type  string
}

var programHeaderLayout = codec.Layout[ProgramHeaderEntry]{
	codec.Bytes("type", 4, func(e *ProgramHeaderEntry) []byte { return e.SegmentType[:] }),
	codec.U32("flags", func(e *ProgramHeaderEntry) *uint32 { return &e.Flags }),
	codec.U64("offset", func(e *ProgramHeaderEntry) *uint64 { return &e.Offset }),
	codec.U64("vaddr", func(e *ProgramHeaderEntry) *uint64 { return &e.VirtualAddress }),
	codec.U64("paddr", func(e *ProgramHeaderEntry) *uint64 { return &e.PhysicalAddress }),
	codec.U64("filesz", func(e *ProgramHeaderEntry) *uint64 { return &e.FileSize }),
	codec.U64("memsz", func(e *ProgramHeaderEntry) *uint64 { return &e.MemSize }),
	codec.U64("align", func(e *ProgramHeaderEntry) *uint64 { return &e.Align }),
}

// ProgramHeaderTableEnd is the number of bytes that must be buffered before
// calling ParseProgramHeaders.
func ProgramHeaderTableEnd(h *FileHeader) (uint64, error) {
	if h.ProgramHeaderEntryCount == 0 {
		return 0, nil
	}
	return tableEnd(h.ProgramHeaderOffset, h.ProgramHeaderEntrySize, h.ProgramHeaderEntryCount)
}

// ParseProgramHeaders decodes the program header table in file order. buf
// must already hold the whole table.
func ParseProgramHeaders(buf []byte, h *FileHeader) ([]ProgramHeaderInfo, error) {
	count := int(h.ProgramHeaderEntryCount)
	ret := make([]ProgramHeaderInfo, 0, count)
	for i := 0; i < count; i++ {
		raw, err := row(buf, h.ProgramHeaderOffset, h.ProgramHeaderEntrySize, i)
		if err != nil {
			return nil, fmt.Errorf("program header: %w", err)
		}
		entry, err := programHeaderLayout.Decode(raw)
		if err != nil {
			return nil, fmt.Errorf("program header %d: %w: %w", i, ErrTruncated, err)
		}
		ret = append(ret, ProgramHeaderInfo{
			Entry: entry,
			Type:  entry.Type().String(),
		})
	}
	return ret, nil
}
