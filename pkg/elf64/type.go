package elf64

import (
	"fmt"
	"strings"

	"github.com/vietanhduong/readelf/pkg/source"
)

const (
	HEADER_SIZE               = 64
	PROGRAM_HEADER_ENTRY_SIZE = 56
	SECTION_HEADER_ENTRY_SIZE = 64

	ELFCLASS64  = 2
	ELFDATA2LSB = 1

	// SHN_XINDEX in the names index means the real index lives in the
	// link field of section 0.
	SHN_UNDEF  = 0
	SHN_XINDEX = 0xffff

	NAME_NOT_FOUND = "<NAME_NOT_FOUND>"
)

var Magic = [4]byte{0x7f, 'E', 'L', 'F'}

type SegmentType uint32

const (
	PT_NULL SegmentType = iota
	PT_LOAD
	PT_DYNAMIC
	PT_INTERP
	PT_NOTE
	PT_SHLIB
	PT_PHDR
	PT_TLS
)

var segmentNames = [...]string{
	PT_NULL:    "PT_NULL",
	PT_LOAD:    "PT_LOAD",
	PT_DYNAMIC: "PT_DYNAMIC",
	PT_INTERP:  "PT_INTERP",
	PT_NOTE:    "PT_NOTE",
	PT_SHLIB:   "PT_SHLIB",
	PT_PHDR:    "PT_PHDR",
	PT_TLS:     "PT_TLS",
}

// String classifies by the high nibble of the most significant byte once the
// fixed types are exhausted: 0x6 is OS specific, 0x7 processor specific.
func (t SegmentType) String() string {
	if int(t) < len(segmentNames) {
		return segmentNames[t]
	}
	switch t >> 28 {
	case 0x6:
		return "OS_SPECIFIC"
	case 0x7:
		return "PROCESSOR_SPECIFIC"
	}
	return fmt.Sprintf("OTHER: 0x%08x", uint32(t))
}

type SectionType uint32

const (
	SHT_NULL SectionType = iota
	SHT_PROGBITS
	SHT_SYMTAB
	SHT_STRTAB
	SHT_RELA
	SHT_HASH
	SHT_DYNAMIC
	SHT_NOTE
	SHT_NOBITS
	SHT_REL
	SHT_SHLIB
	SHT_DYNSYM
)

const (
	SHT_INIT_ARRAY SectionType = iota + 14
	SHT_FINI_ARRAY
	SHT_PREINIT_ARRAY
	SHT_GROUP
	SHT_SYMTAB_SHNDX
	SHT_NUM

	SHT_LOOS SectionType = 0x60000000
)

var sectionNames = map[SectionType]string{
	SHT_NULL:          "SHT_NULL",
	SHT_PROGBITS:      "SHT_PROGBITS",
	SHT_SYMTAB:        "SHT_SYMTAB",
	SHT_STRTAB:        "SHT_STRTAB",
	SHT_RELA:          "SHT_RELA",
	SHT_HASH:          "SHT_HASH",
	SHT_DYNAMIC:       "SHT_DYNAMIC",
	SHT_NOTE:          "SHT_NOTE",
	SHT_NOBITS:        "SHT_NOBITS",
	SHT_REL:           "SHT_REL",
	SHT_SHLIB:         "SHT_SHLIB",
	SHT_DYNSYM:        "SHT_DYNSYM",
	SHT_INIT_ARRAY:    "SHT_INIT_ARRAY",
	SHT_FINI_ARRAY:    "SHT_FINI_ARRAY",
	SHT_PREINIT_ARRAY: "SHT_PREINIT_ARRAY",
	SHT_GROUP:         "SHT_GROUP",
	SHT_SYMTAB_SHNDX:  "SHT_SYMTAB_SHNDX",
	SHT_NUM:           "SHT_NUM",
}

func (t SectionType) String() string {
	if s, ok := sectionNames[t]; ok {
		return s
	}
	if t >= SHT_LOOS {
		return "OS_SPECIFIC"
	}
	return fmt.Sprintf("UNRECOGNIZED: 0x%08x", uint32(t))
}

type ProgFlags uint32

const (
	PF_X ProgFlags = 1 << iota
	PF_W
	PF_R
)

// String renders flags the way readelf prints them, e.g. "R E".
func (f ProgFlags) String() string {
	b := []byte("   ")
	if f&PF_R != 0 {
		b[0] = 'R'
	}
	if f&PF_W != 0 {
		b[1] = 'W'
	}
	if f&PF_X != 0 {
		b[2] = 'E'
	}
	return string(b)
}

type SectionFlags uint64

var sectionFlagKeys = []struct {
	flag SectionFlags
	key  byte
}{
	{0x1, 'W'},
	{0x2, 'A'},
	{0x4, 'X'},
	{0x10, 'M'},
	{0x20, 'S'},
	{0x40, 'I'},
	{0x80, 'L'},
	{0x100, 'O'},
	{0x200, 'G'},
	{0x400, 'T'},
	{0x800, 'C'},
}

func (f SectionFlags) String() string {
	var sb strings.Builder
	for _, k := range sectionFlagKeys {
		if f&k.flag != 0 {
			sb.WriteByte(k.key)
		}
	}
	return sb.String()
}

// NameTableStrategy picks the section whose bytes name the other sections.
type NameTableStrategy string

const (
	// NameTableFromHeader trusts the header's names index and falls back to
	// the last string table when the index is unusable.
	NameTableFromHeader NameTableStrategy = "header"
	// NameTableLastStrtab always takes the last string table in file order.
	NameTableLastStrtab NameTableStrategy = "last-strtab"
)

func ParseNameTableStrategy(s string) (NameTableStrategy, error) {
	switch st := NameTableStrategy(s); st {
	case NameTableFromHeader, NameTableLastStrtab:
		return st, nil
	}
	return "", fmt.Errorf("unknown name table strategy %q", s)
}

type Options struct {
	ChunkSize int
	NameTable NameTableStrategy
	// Debug dumps the raw header bytes to the log.
	Debug bool
}

var defaultOptions = &Options{
	ChunkSize: source.DEFAULT_CHUNK_SIZE,
	NameTable: NameTableFromHeader,
}

func withDefaults(opts *Options) *Options {
	if opts == nil {
		return defaultOptions
	}
	ret := *opts
	if ret.ChunkSize <= 0 {
		ret.ChunkSize = defaultOptions.ChunkSize
	}
	if ret.NameTable == "" {
		ret.NameTable = defaultOptions.NameTable
	}
	return &ret
}
