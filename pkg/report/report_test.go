package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vietanhduong/readelf/pkg/elf64"
)

func TestHeader(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, false).Header(&elf64.FileHeader{
		Magic:                   elf64.Magic,
		Class:                   elf64.ELFCLASS64,
		Encoding:                elf64.ELFDATA2LSB,
		ObjectType:              2,
		Machine:                 62,
		Entry:                   0x401000,
		SectionHeaderNamesIndex: 7,
	})

	out := buf.String()
	assert.Contains(t, out, "ELF Header:")
	assert.Contains(t, out, "7f 45 4c 46")
	assert.Contains(t, out, "ET_EXEC")
	assert.Contains(t, out, "EM_X86_64")
	assert.Contains(t, out, "0x401000")
	assert.NotContains(t, out, "\x1b[", "color must be off")
}

func TestProgramHeaders(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, false)

	p.ProgramHeaders(nil)
	assert.Contains(t, buf.String(), "There are no program headers in this file.")

	buf.Reset()
	p.ProgramHeaders([]elf64.ProgramHeaderInfo{
		{Entry: elf64.ProgramHeaderEntry{Flags: 5, VirtualAddress: 0x400000, Align: 0x1000}, Type: "PT_LOAD"},
		{Entry: elf64.ProgramHeaderEntry{Flags: 4}, Type: "OS_SPECIFIC"},
	})
	out := buf.String()
	assert.Contains(t, out, "PT_LOAD")
	assert.Contains(t, out, "OS_SPECIFIC")
	assert.Contains(t, out, "0x0000000000400000")
	assert.Contains(t, out, "R E")
}

func TestSections(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, false)

	p.Sections(nil)
	assert.Contains(t, buf.String(), "There are no sections in this file.")

	buf.Reset()
	p.Sections([]elf64.SectionHeaderInfo{
		{Name: "", Type: "SHT_NULL"},
		{Name: ".text", Type: "SHT_PROGBITS", Entry: elf64.SectionHeaderEntry{Flags: 0x6, Size: 0x20}},
		{Name: elf64.NAME_NOT_FOUND, Type: "UNRECOGNIZED: 0x0000000c"},
	})
	out := buf.String()
	assert.Contains(t, out, ".text")
	assert.Contains(t, out, "AX")
	assert.Contains(t, out, "<NAME_NOT_FOUND>")
	assert.Contains(t, out, "UNRECOGNIZED: 0x0000000c")
}

func TestStrings(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, false).Strings(3, elf64.BuildStringTable([]byte("\x00.text\x00.data\x00")))

	out := buf.String()
	assert.Contains(t, out, "String dump of section 3:")
	assert.Contains(t, out, "0x1")
	assert.Contains(t, out, ".text")
	assert.Contains(t, out, "0x7")
	assert.Contains(t, out, ".data")
}

func TestBuildID(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, false)

	p.BuildID(nil)
	assert.Contains(t, buf.String(), "No build id found.")

	buf.Reset()
	p.BuildID(&elf64.BuildID{ID: "abcdef", Type: elf64.GNU})
	assert.Contains(t, buf.String(), "GNU: abcdef")
}

func TestColored(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, true).BuildID(nil)
	assert.Contains(t, buf.String(), "\x1b[")
}
