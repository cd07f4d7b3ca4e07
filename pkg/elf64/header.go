package elf64

import (
	"debug/elf"
	"fmt"

	"github.com/vietanhduong/readelf/pkg/codec"
)

type FileHeader struct {
	Magic        [4]byte
	Class        uint8
	Encoding     uint8
	IdentVersion uint8
	OSABI        uint8
	ABIVersion   uint8
	Padding      [7]byte

	ObjectType uint16
	Machine    uint16
	Version    uint32

	Entry               uint64
	ProgramHeaderOffset uint64
	SectionHeaderOffset uint64

	Flags                   uint32
	HeaderSize              uint16
	ProgramHeaderEntrySize  uint16
	ProgramHeaderEntryCount uint16
	SectionHeaderEntrySize  uint16
	SectionHeaderEntryCount uint16
	SectionHeaderNamesIndex uint16
}

var headerLayout = codec.Layout[FileHeader]{
	codec.Bytes("magic", 4, func(h *FileHeader) []byte { return h.Magic[:] }),
	codec.U8("class", func(h *FileHeader) *uint8 { return &h.Class }),
	codec.U8("encoding", func(h *FileHeader) *uint8 { return &h.Encoding }),
	codec.U8("ident_version", func(h *FileHeader) *uint8 { return &h.IdentVersion }),
	codec.U8("os_abi", func(h *FileHeader) *uint8 { return &h.OSABI }),
	codec.U8("abi_version", func(h *FileHeader) *uint8 { return &h.ABIVersion }),
	codec.Bytes("padding", 7, func(h *FileHeader) []byte { return h.Padding[:] }),
	codec.U16("object_type", func(h *FileHeader) *uint16 { return &h.ObjectType }),
	codec.U16("machine", func(h *FileHeader) *uint16 { return &h.Machine }),
	codec.U32("version", func(h *FileHeader) *uint32 { return &h.Version }),
	codec.U64("entry", func(h *FileHeader) *uint64 { return &h.Entry }),
	codec.U64("phoff", func(h *FileHeader) *uint64 { return &h.ProgramHeaderOffset }),
	codec.U64("shoff", func(h *FileHeader) *uint64 { return &h.SectionHeaderOffset }),
	codec.U32("flags", func(h *FileHeader) *uint32 { return &h.Flags }),
	codec.U16("ehsize", func(h *FileHeader) *uint16 { return &h.HeaderSize }),
	codec.U16("phentsize", func(h *FileHeader) *uint16 { return &h.ProgramHeaderEntrySize }),
	codec.U16("phnum", func(h *FileHeader) *uint16 { return &h.ProgramHeaderEntryCount }),
	codec.U16("shentsize", func(h *FileHeader) *uint16 { return &h.SectionHeaderEntrySize }),
	codec.U16("shnum", func(h *FileHeader) *uint16 { return &h.SectionHeaderEntryCount }),
	codec.U16("shstrndx", func(h *FileHeader) *uint16 { return &h.SectionHeaderNamesIndex }),
}

// ParseHeader validates the identification bytes in order (magic, class,
// encoding) before decoding anything wider than a byte.
func ParseHeader(buf []byte) (*FileHeader, error) {
	if len(buf) < len(Magic) {
		return nil, fmt.Errorf("have %d bytes: %w", len(buf), ErrTruncated)
	}
	if [4]byte(buf[:4]) != Magic {
		return nil, fmt.Errorf("got % x: %w", buf[:4], ErrBadMagic)
	}
	if len(buf) < 6 {
		return nil, fmt.Errorf("have %d bytes: %w", len(buf), ErrTruncated)
	}
	if buf[4] != ELFCLASS64 {
		return nil, fmt.Errorf("class %d: %w", buf[4], ErrUnsupportedClass)
	}
	if buf[5] != ELFDATA2LSB {
		return nil, fmt.Errorf("encoding %d: %w", buf[5], ErrUnsupportedEncoding)
	}
	h, err := headerLayout.Decode(buf)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTruncated, err)
	}
	return &h, nil
}

func (h *FileHeader) TypeString() string    { return elf.Type(h.ObjectType).String() }
func (h *FileHeader) MachineString() string { return elf.Machine(h.Machine).String() }
func (h *FileHeader) OSABIString() string   { return elf.OSABI(h.OSABI).String() }
