package elf64

import (
	"encoding/binary"
)

var le = binary.LittleEndian

type testSection struct {
	name  uint32
	typ   SectionType
	flags uint64
	link  uint32
	data  []byte
	// size and offset override the values derived from data when non-zero
	size   uint64
	offset uint64
}

type testImage struct {
	class    byte
	encoding byte
	shstrndx uint16
	progs    []ProgramHeaderEntry
	sections []testSection
}

// build lays out header, program headers, section contents and finally the
// section header table.
func (img testImage) build() []byte {
	class, encoding := img.class, img.encoding
	if class == 0 {
		class = ELFCLASS64
	}
	if encoding == 0 {
		encoding = ELFDATA2LSB
	}

	var phoff uint64
	if len(img.progs) > 0 {
		phoff = HEADER_SIZE
	}
	buf := make([]byte, HEADER_SIZE+PROGRAM_HEADER_ENTRY_SIZE*len(img.progs))

	offsets := make([]uint64, len(img.sections))
	for i, s := range img.sections {
		if len(s.data) > 0 {
			offsets[i] = uint64(len(buf))
			buf = append(buf, s.data...)
		}
	}
	for len(buf)%8 != 0 {
		buf = append(buf, 0)
	}
	shoff := uint64(len(buf))
	for i, s := range img.sections {
		off, size := offsets[i], uint64(len(s.data))
		if s.offset != 0 {
			off = s.offset
		}
		if s.size != 0 {
			size = s.size
		}
		buf = append(buf, sectionHeaderBytes(s, off, size)...)
	}
	if len(img.sections) == 0 {
		shoff = 0
	}

	copy(buf, identBytes(class, encoding))
	le.PutUint16(buf[16:], 2)  // ET_EXEC
	le.PutUint16(buf[18:], 62) // EM_X86_64
	le.PutUint32(buf[20:], 1)
	le.PutUint64(buf[24:], 0x401000)
	le.PutUint64(buf[32:], phoff)
	le.PutUint64(buf[40:], shoff)
	le.PutUint32(buf[48:], 0)
	le.PutUint16(buf[52:], HEADER_SIZE)
	le.PutUint16(buf[54:], PROGRAM_HEADER_ENTRY_SIZE)
	le.PutUint16(buf[56:], uint16(len(img.progs)))
	le.PutUint16(buf[58:], SECTION_HEADER_ENTRY_SIZE)
	le.PutUint16(buf[60:], uint16(len(img.sections)))
	le.PutUint16(buf[62:], img.shstrndx)

	for i, p := range img.progs {
		copy(buf[HEADER_SIZE+i*PROGRAM_HEADER_ENTRY_SIZE:], programHeaderBytes(p))
	}
	return buf
}

func identBytes(class, encoding byte) []byte {
	return []byte{0x7f, 'E', 'L', 'F', class, encoding, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0}
}

func programHeaderBytes(p ProgramHeaderEntry) []byte {
	b := make([]byte, PROGRAM_HEADER_ENTRY_SIZE)
	copy(b[0:4], p.SegmentType[:])
	le.PutUint32(b[4:], p.Flags)
	le.PutUint64(b[8:], p.Offset)
	le.PutUint64(b[16:], p.VirtualAddress)
	le.PutUint64(b[24:], p.PhysicalAddress)
	le.PutUint64(b[32:], p.FileSize)
	le.PutUint64(b[40:], p.MemSize)
	le.PutUint64(b[48:], p.Align)
	return b
}

func sectionHeaderBytes(s testSection, off, size uint64) []byte {
	b := make([]byte, SECTION_HEADER_ENTRY_SIZE)
	le.PutUint32(b[0:], s.name)
	le.PutUint32(b[4:], uint32(s.typ))
	le.PutUint64(b[8:], s.flags)
	le.PutUint64(b[16:], 0)
	le.PutUint64(b[24:], off)
	le.PutUint64(b[32:], size)
	le.PutUint32(b[40:], s.link)
	le.PutUint32(b[44:], 0)
	le.PutUint64(b[48:], 1)
	le.PutUint64(b[56:], 0)
	return b
}

func tag(v uint32) [4]byte {
	var t [4]byte
	le.PutUint32(t[:], v)
	return t
}

// names builds a string table and returns the offset of every string.
func names(strs ...string) ([]byte, map[string]uint32) {
	b := []byte{0}
	offs := make(map[string]uint32, len(strs))
	for _, s := range strs {
		offs[s] = uint32(len(b))
		b = append(b, s...)
		b = append(b, 0)
	}
	return b, offs
}
