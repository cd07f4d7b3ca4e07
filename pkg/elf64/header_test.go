package elf64

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawHeader() []byte {
	b := make([]byte, HEADER_SIZE)
	copy(b, identBytes(ELFCLASS64, ELFDATA2LSB))
	b[7] = 3 // ELFOSABI_LINUX
	b[8] = 1
	le.PutUint16(b[16:], 3)  // ET_DYN
	le.PutUint16(b[18:], 62) // EM_X86_64
	le.PutUint32(b[20:], 1)
	le.PutUint64(b[24:], 0x1040)
	copy(b[32:], []byte{0x07, 0, 0, 0, 0, 0, 0, 0})
	le.PutUint64(b[40:], 0x3a10)
	le.PutUint32(b[48:], 0x5)
	le.PutUint16(b[52:], 64)
	le.PutUint16(b[54:], 56)
	le.PutUint16(b[56:], 13)
	le.PutUint16(b[58:], 64)
	le.PutUint16(b[60:], 31)
	le.PutUint16(b[62:], 30)
	return b
}

func TestParseHeader(t *testing.T) {
	got, err := ParseHeader(rawHeader())
	require.NoError(t, err)

	want := &FileHeader{
		Magic:                   Magic,
		Class:                   ELFCLASS64,
		Encoding:                ELFDATA2LSB,
		IdentVersion:            1,
		OSABI:                   3,
		ABIVersion:              1,
		ObjectType:              3,
		Machine:                 62,
		Version:                 1,
		Entry:                   0x1040,
		ProgramHeaderOffset:     7,
		SectionHeaderOffset:     0x3a10,
		Flags:                   0x5,
		HeaderSize:              64,
		ProgramHeaderEntrySize:  56,
		ProgramHeaderEntryCount: 13,
		SectionHeaderEntrySize:  64,
		SectionHeaderEntryCount: 31,
		SectionHeaderNamesIndex: 30,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Header mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "ET_DYN", got.TypeString())
	assert.Equal(t, "EM_X86_64", got.MachineString())
	assert.Equal(t, "ELFOSABI_LINUX", got.OSABIString())
}

func TestParseHeaderIgnoresTrailingBytes(t *testing.T) {
	buf := append(rawHeader(), 0xff, 0xff, 0xff)
	got, err := ParseHeader(buf)
	require.NoError(t, err)
	assert.Equal(t, uint16(30), got.SectionHeaderNamesIndex)
}

func TestParseHeaderErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func([]byte) []byte
		wantErr error
	}{
		{
			name:    "bad magic",
			mutate:  func(b []byte) []byte { b[1] = 'e'; return b },
			wantErr: ErrBadMagic,
		},
		{
			name:    "bad magic wins over bad class",
			mutate:  func(b []byte) []byte { b[0] = 0; b[4] = 1; b[5] = 2; return b },
			wantErr: ErrBadMagic,
		},
		{
			name:    "bad magic on short input",
			mutate:  func(b []byte) []byte { return []byte("MZ\x90\x00") },
			wantErr: ErrBadMagic,
		},
		{
			name:    "32-bit class",
			mutate:  func(b []byte) []byte { b[4] = 1; return b },
			wantErr: ErrUnsupportedClass,
		},
		{
			name:    "class none",
			mutate:  func(b []byte) []byte { b[4] = 0; return b },
			wantErr: ErrUnsupportedClass,
		},
		{
			name:    "class wins over encoding",
			mutate:  func(b []byte) []byte { b[4] = 1; b[5] = 2; return b },
			wantErr: ErrUnsupportedClass,
		},
		{
			name:    "big endian",
			mutate:  func(b []byte) []byte { b[5] = 2; return b },
			wantErr: ErrUnsupportedEncoding,
		},
		{
			name:    "shorter than magic",
			mutate:  func(b []byte) []byte { return b[:3] },
			wantErr: ErrTruncated,
		},
		{
			name:    "ident only",
			mutate:  func(b []byte) []byte { return b[:16] },
			wantErr: ErrTruncated,
		},
		{
			name:    "one byte short",
			mutate:  func(b []byte) []byte { return b[:63] },
			wantErr: ErrTruncated,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseHeader(tt.mutate(rawHeader()))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRecordLayouts(t *testing.T) {
	assert.Equal(t, HEADER_SIZE, headerLayout.Size())
	assert.Equal(t,
		[]int{0, 4, 5, 6, 7, 8, 9, 16, 18, 20, 24, 32, 40, 48, 52, 54, 56, 58, 60, 62},
		headerLayout.Offsets())
	assert.Equal(t, PROGRAM_HEADER_ENTRY_SIZE, programHeaderLayout.Size())
	assert.Equal(t, SECTION_HEADER_ENTRY_SIZE, sectionHeaderLayout.Size())
}
