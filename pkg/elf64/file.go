package elf64

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math"
	"math/bits"

	bufra "github.com/avvmoto/buf-readerat"
	"github.com/golang/glog"
	"github.com/vietanhduong/readelf/pkg/source"
)

const (
	SECTION_READ_BUFFER_SIZE = 4096
	MAX_SECTION_DATA_SIZE    = 1 << 30
)

type File struct {
	Header     *FileHeader
	Progs      []ProgramHeaderInfo
	Sections   []SectionHeaderInfo
	Names      *StringTable
	NamesIndex int

	path string
	src  *source.Source
	ra   io.ReaderAt
}

type SectionData struct {
	Data   []byte
	Header *SectionHeaderInfo
}

// Open parses the file at path. The file stays open for SectionData until
// Close is called.
func Open(path string, opts *Options) (*File, error) {
	opts = withDefaults(opts)
	src, err := source.Open(path, opts.ChunkSize)
	if err != nil {
		return nil, err
	}
	f, err := parse(src, opts)
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	f.path = path
	return f, nil
}

func Parse(r io.Reader, opts *Options) (*File, error) {
	opts = withDefaults(opts)
	return parse(source.New(r, opts.ChunkSize), opts)
}

func parse(src *source.Source, opts *Options) (*File, error) {
	err := src.EnsureAvailable(HEADER_SIZE)
	if err != nil && !errors.Is(err, source.ErrTruncated) {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if opts.Debug {
		glog.Infof("First %d bytes:\n%s", src.Len(), hex.Dump(src.Bytes()))
	}

	// A short file still gets its magic checked before truncation is reported.
	hdr, err := ParseHeader(src.Bytes())
	if err != nil {
		return nil, fmt.Errorf("parse header: %w", err)
	}

	end, err := ProgramHeaderTableEnd(hdr)
	if err != nil {
		return nil, fmt.Errorf("program header table: %w", err)
	}
	if err = ensure(src, end, "program header table"); err != nil {
		return nil, err
	}
	progs, err := ParseProgramHeaders(src.Bytes(), hdr)
	if err != nil {
		return nil, err
	}
	glog.V(3).Infof("Parsed %d program headers", len(progs))

	table, err := ParseSectionHeaders(src, hdr, opts.NameTable)
	if err != nil {
		return nil, err
	}
	glog.V(3).Infof("Parsed %d section headers", len(table.Sections))

	f := &File{
		Header:     hdr,
		Progs:      progs,
		Sections:   table.Sections,
		Names:      table.Names,
		NamesIndex: table.NamesIndex,
		src:        src,
	}
	if ra, ok := src.ReaderAt(); ok {
		f.ra = bufra.NewBufReaderAt(ra, SECTION_READ_BUFFER_SIZE)
	}
	return f, nil
}

func (f *File) FindSection(name string) *SectionHeaderInfo {
	for i := range f.Sections {
		if s := &f.Sections[i]; s.Name == name {
			return s
		}
	}
	return nil
}

func (f *File) FindSectionByType(typ SectionType) *SectionHeaderInfo {
	for i := range f.Sections {
		if s := &f.Sections[i]; s.Entry.Type() == typ {
			return s
		}
	}
	return nil
}

// SectionData reads the file bytes of the named section. It returns nil
// without error when no section has that name.
func (f *File) SectionData(name string) (*SectionData, error) {
	if f.src == nil {
		return nil, fmt.Errorf("section %s: file is closed", name)
	}
	section := f.FindSection(name)
	if section == nil {
		return nil, nil
	}
	if section.Entry.Type() == SHT_NOBITS || section.Entry.Size == 0 {
		return &SectionData{Header: section}, nil
	}

	off, size := section.Entry.Offset, section.Entry.Size
	if size > MAX_SECTION_DATA_SIZE {
		return nil, fmt.Errorf("section %s too big (%d bytes)", name, size)
	}
	end, carry := bits.Add64(off, size, 0)
	if carry != 0 || end > math.MaxInt64 {
		return nil, fmt.Errorf("section %s range 0x%x+0x%x: %w", name, off, size, ErrTruncated)
	}

	data := make([]byte, size)
	if f.ra != nil {
		if err := readAt(f.ra, data, int64(off)); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, fmt.Errorf("section %s: %w: %w", name, ErrTruncated, err)
			}
			return nil, fmt.Errorf("read section %s: %w", name, err)
		}
		return &SectionData{data, section}, nil
	}

	if err := ensure(f.src, end, "section "+name); err != nil {
		return nil, err
	}
	copy(data, f.src.Bytes()[off:end])
	return &SectionData{data, section}, nil
}

func (f *File) FilePath() string { return f.path }

// Close releases the underlying reader if it is an io.Closer.
func (f *File) Close() error {
	if f.src == nil {
		return nil
	}
	err := f.src.Close()
	f.src = nil
	f.ra = nil
	return err
}

func readAt(ra io.ReaderAt, b []byte, off int64) error {
	for len(b) > 0 {
		n, err := ra.ReadAt(b, off)
		b, off = b[n:], off+int64(n)
		if len(b) == 0 {
			return nil
		}
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrUnexpectedEOF
		}
	}
	return nil
}
