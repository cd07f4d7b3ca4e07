package elf64

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/golang/glog"
	"github.com/vietanhduong/readelf/pkg/codec"
)

const (
	NT_GNU_BUILD_ID = 3
	NT_GO_BUILD_ID  = 4
)

type BuildType string

const (
	GNU BuildType = "GNU"
	GO  BuildType = "GO"
)

type BuildID struct {
	ID   string
	Type BuildType
}

func (id BuildID) GNU() bool { return id.Type == GNU }

type noteHeader struct {
	NameSize uint32
	DescSize uint32
	Type     uint32
}

var noteHeaderLayout = codec.Layout[noteHeader]{
	codec.U32("namesz", func(h *noteHeader) *uint32 { return &h.NameSize }),
	codec.U32("descsz", func(h *noteHeader) *uint32 { return &h.DescSize }),
	codec.U32("type", func(h *noteHeader) *uint32 { return &h.Type }),
}

type elfNote struct {
	Name string
	Type uint32
	Desc []byte
}

// readNote decodes the first note record in b. The name is padded to a
// 4-byte boundary before the descriptor starts.
func readNote(b []byte) (*elfNote, error) {
	hdr, err := noteHeaderLayout.Decode(b)
	if err != nil {
		return nil, fmt.Errorf("note header: %w: %w", ErrTruncated, err)
	}
	nameStart := uint64(noteHeaderLayout.Size())
	nameEnd := nameStart + uint64(hdr.NameSize)
	descStart := nameStart + (uint64(hdr.NameSize)+3)&^3
	descEnd := descStart + uint64(hdr.DescSize)
	if descEnd > uint64(len(b)) {
		return nil, fmt.Errorf("note ends at %d, have %d bytes: %w", descEnd, len(b), ErrTruncated)
	}
	return &elfNote{
		Name: string(bytes.TrimRight(b[nameStart:nameEnd], "\x00")),
		Type: hdr.Type,
		Desc: b[descStart:descEnd],
	}, nil
}

// BuildID prefers the GNU note and falls back to the Go one.
func (f *File) BuildID() *BuildID {
	if id := f.GnuBuildID(); id != nil {
		return id
	}
	return f.GoBuildID()
}

func (f *File) GnuBuildID() *BuildID {
	n := f.note(".note.gnu.build-id")
	if n == nil || n.Name != "GNU" || n.Type != NT_GNU_BUILD_ID {
		return nil
	}
	// 8 bytes is xxhash, for example in Container-Optimized OS
	if len(n.Desc) != 20 && len(n.Desc) != 8 {
		return nil
	}
	return &BuildID{hex.EncodeToString(n.Desc), GNU}
}

func (f *File) GoBuildID() *BuildID {
	n := f.note(".note.go.buildid")
	if n == nil || n.Name != "Go" || n.Type != NT_GO_BUILD_ID {
		return nil
	}
	id := string(n.Desc)
	if len(id) < 40 || strings.Count(id, "/") < 2 || id == "redacted" {
		return nil
	}
	return &BuildID{id, GO}
}

func (f *File) note(section string) *elfNote {
	sd, err := f.SectionData(section)
	if err != nil {
		glog.V(2).Infof("Read %s: %v", section, err)
		return nil
	}
	if sd == nil {
		return nil
	}
	n, err := readNote(sd.Data)
	if err != nil {
		glog.V(2).Infof("Decode %s: %v", section, err)
		return nil
	}
	return n
}
