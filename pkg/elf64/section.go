package elf64

import (
	"encoding/binary"
	"fmt"
	"math/bits"

	"github.com/golang/glog"
	"github.com/samber/lo"
	"github.com/vietanhduong/readelf/pkg/codec"
	"github.com/vietanhduong/readelf/pkg/source"
)

type SectionHeaderEntry struct {
	NameOffset  uint32
	SectionType [4]byte
	Flags       uint64
	Addr        uint64
	Offset      uint64
	Size        uint64
	Link        uint32
	Info        uint32
	AddrAlign   uint64
	EntrySize   uint64
}

func (e *SectionHeaderEntry) Type() SectionType {
	return SectionType(binary.LittleEndian.Uint32(e.SectionType[:]))
}

func (e *SectionHeaderEntry) SectionFlags() SectionFlags { return SectionFlags(e.Flags) }

type SectionHeaderInfo struct {
	Entry SectionHeaderEntry
	Name  string
	Type  string
}

type SectionTable struct {
	Sections []SectionHeaderInfo
	Names    *StringTable
	// NamesIndex is the row the names were resolved from, -1 without sections.
	NamesIndex int
}

var sectionHeaderLayout = codec.Layout[SectionHeaderEntry]{
	codec.U32("name", func(e *SectionHeaderEntry) *uint32 { return &e.NameOffset }),
	codec.Bytes("type", 4, func(e *SectionHeaderEntry) []byte { return e.SectionType[:] }),
	codec.U64("flags", func(e *SectionHeaderEntry) *uint64 { return &e.Flags }),
	codec.U64("addr", func(e *SectionHeaderEntry) *uint64 { return &e.Addr }),
	codec.U64("offset", func(e *SectionHeaderEntry) *uint64 { return &e.Offset }),
	codec.U64("size", func(e *SectionHeaderEntry) *uint64 { return &e.Size }),
	codec.U32("link", func(e *SectionHeaderEntry) *uint32 { return &e.Link }),
	codec.U32("info", func(e *SectionHeaderEntry) *uint32 { return &e.Info }),
	codec.U64("addralign", func(e *SectionHeaderEntry) *uint64 { return &e.AddrAlign }),
	codec.U64("entsize", func(e *SectionHeaderEntry) *uint64 { return &e.EntrySize }),
}

// ParseSectionHeaders decodes the section header table, picks the name
// string table according to strategy and resolves every section's name. The
// source is grown as needed.
func ParseSectionHeaders(src *source.Source, h *FileHeader, strategy NameTableStrategy) (*SectionTable, error) {
	count := int(h.SectionHeaderEntryCount)
	if count == 0 {
		return &SectionTable{Names: BuildStringTable(nil), NamesIndex: -1}, nil
	}
	end, err := tableEnd(h.SectionHeaderOffset, h.SectionHeaderEntrySize, h.SectionHeaderEntryCount)
	if err != nil {
		return nil, fmt.Errorf("section header table: %w", err)
	}
	if err = ensure(src, end, "section header table"); err != nil {
		return nil, err
	}

	entries := make([]SectionHeaderEntry, 0, count)
	for i := 0; i < count; i++ {
		raw, err := row(src.Bytes(), h.SectionHeaderOffset, h.SectionHeaderEntrySize, i)
		if err != nil {
			return nil, fmt.Errorf("section header: %w", err)
		}
		entry, err := sectionHeaderLayout.Decode(raw)
		if err != nil {
			return nil, fmt.Errorf("section header %d: %w: %w", i, ErrTruncated, err)
		}
		entries = append(entries, entry)
	}

	index, err := selectNameTable(entries, h, strategy)
	if err != nil {
		return nil, err
	}
	names, err := loadStringTable(src, &entries[index])
	if err != nil {
		return nil, fmt.Errorf("section name table %d: %w", index, err)
	}
	glog.V(4).Infof("Section names from section %d (%d strings)", index, names.Len())

	ret := &SectionTable{
		Sections:   make([]SectionHeaderInfo, 0, count),
		Names:      names,
		NamesIndex: index,
	}
	for i := range entries {
		name, ok := names.Resolve(entries[i].NameOffset)
		if !ok {
			glog.V(2).Infof("Section %d: name offset 0x%x not in name table", i, entries[i].NameOffset)
			name = NAME_NOT_FOUND
		}
		ret.Sections = append(ret.Sections, SectionHeaderInfo{
			Entry: entries[i],
			Name:  name,
			Type:  entries[i].Type().String(),
		})
	}
	return ret, nil
}

func selectNameTable(entries []SectionHeaderEntry, h *FileHeader, strategy NameTableStrategy) (int, error) {
	strtabs := lo.Filter(lo.Range(len(entries)), func(i int, _ int) bool {
		return entries[i].Type() == SHT_STRTAB
	})
	last, err := lo.Last(strtabs)
	if err != nil {
		return -1, ErrMissingStringTable
	}
	if strategy == NameTableLastStrtab {
		return last, nil
	}

	index := int(h.SectionHeaderNamesIndex)
	if index == SHN_XINDEX {
		index = int(entries[0].Link)
	}
	if index != SHN_UNDEF && index < len(entries) && entries[index].Type() == SHT_STRTAB {
		return index, nil
	}
	glog.Warningf("Header names index %d is not a string table, using last string table %d", index, last)
	return last, nil
}

func loadStringTable(src *source.Source, e *SectionHeaderEntry) (*StringTable, error) {
	end, carry := bits.Add64(e.Offset, e.Size, 0)
	if carry != 0 {
		return nil, fmt.Errorf("range 0x%x+0x%x overflows: %w", e.Offset, e.Size, ErrTruncated)
	}
	if err := ensure(src, end, "string table"); err != nil {
		return nil, err
	}
	return BuildStringTable(src.Bytes()[e.Offset:end]), nil
}
