// Package report renders parsed ELF structures as text tables.
package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
	"github.com/vietanhduong/readelf/pkg/elf64"
)

var (
	headerColors = []tablewriter.Colors{
		{tablewriter.Bold, tablewriter.FgHiMagentaColor},
		{tablewriter.Bold, tablewriter.FgBlueColor},
		{tablewriter.Bold, tablewriter.FgHiWhiteColor},
		{tablewriter.Bold, tablewriter.FgHiCyanColor},
		{tablewriter.Bold, tablewriter.FgHiYellowColor},
	}
	columnColors = []tablewriter.Colors{
		{tablewriter.FgHiMagentaColor},
		{tablewriter.FgBlueColor},
		{tablewriter.FgHiWhiteColor},
		{tablewriter.FgHiCyanColor},
		{tablewriter.FgYellowColor},
	}
)

type Printer struct {
	w       io.Writer
	colored bool
	title   *color.Color
}

func New(w io.Writer, colored bool) *Printer {
	title := color.New(color.FgHiGreen, color.Bold)
	if colored {
		title.EnableColor()
	} else {
		title.DisableColor()
	}
	return &Printer{w: w, colored: colored, title: title}
}

func (p *Printer) Header(h *elf64.FileHeader) {
	p.heading("ELF Header")
	p.table([]string{"Field", "Value"}, [][]string{
		{"Magic", fmt.Sprintf("% x", h.Magic)},
		{"Class", fmt.Sprintf("%d (ELF64)", h.Class)},
		{"Data", fmt.Sprintf("%d (little endian)", h.Encoding)},
		{"Ident version", fmt.Sprintf("%d", h.IdentVersion)},
		{"OS/ABI", h.OSABIString()},
		{"ABI version", fmt.Sprintf("%d", h.ABIVersion)},
		{"Type", h.TypeString()},
		{"Machine", h.MachineString()},
		{"Version", fmt.Sprintf("0x%x", h.Version)},
		{"Entry point", fmt.Sprintf("0x%x", h.Entry)},
		{"Program headers offset", fmt.Sprintf("%d", h.ProgramHeaderOffset)},
		{"Section headers offset", fmt.Sprintf("%d", h.SectionHeaderOffset)},
		{"Flags", fmt.Sprintf("0x%x", h.Flags)},
		{"Header size", fmt.Sprintf("%d", h.HeaderSize)},
		{"Program header size", fmt.Sprintf("%d", h.ProgramHeaderEntrySize)},
		{"Program header count", fmt.Sprintf("%d", h.ProgramHeaderEntryCount)},
		{"Section header size", fmt.Sprintf("%d", h.SectionHeaderEntrySize)},
		{"Section header count", fmt.Sprintf("%d", h.SectionHeaderEntryCount)},
		{"Section names index", fmt.Sprintf("%d", h.SectionHeaderNamesIndex)},
	})
}

func (p *Printer) ProgramHeaders(progs []elf64.ProgramHeaderInfo) {
	p.heading("Program Headers")
	if len(progs) == 0 {
		fmt.Fprintln(p.w, "There are no program headers in this file.")
		return
	}
	rows := lo.Map(progs, func(ph elf64.ProgramHeaderInfo, _ int) []string {
		e := ph.Entry
		return []string{
			ph.Type,
			fmt.Sprintf("0x%06x", e.Offset),
			fmt.Sprintf("0x%016x", e.VirtualAddress),
			fmt.Sprintf("0x%016x", e.PhysicalAddress),
			fmt.Sprintf("0x%06x", e.FileSize),
			fmt.Sprintf("0x%06x", e.MemSize),
			e.ProgFlags().String(),
			fmt.Sprintf("0x%x", e.Align),
		}
	})
	p.table([]string{"Type", "Offset", "VirtAddr", "PhysAddr", "FileSiz", "MemSiz", "Flg", "Align"}, rows)
}

func (p *Printer) Sections(sections []elf64.SectionHeaderInfo) {
	p.heading("Section Headers")
	if len(sections) == 0 {
		fmt.Fprintln(p.w, "There are no sections in this file.")
		return
	}
	rows := lo.Map(sections, func(s elf64.SectionHeaderInfo, i int) []string {
		e := s.Entry
		return []string{
			fmt.Sprintf("%d", i),
			s.Name,
			s.Type,
			fmt.Sprintf("0x%016x", e.Addr),
			fmt.Sprintf("0x%06x", e.Offset),
			fmt.Sprintf("0x%06x", e.Size),
			fmt.Sprintf("0x%02x", e.EntrySize),
			e.SectionFlags().String(),
			fmt.Sprintf("%d", e.Link),
			fmt.Sprintf("%d", e.Info),
			fmt.Sprintf("%d", e.AddrAlign),
		}
	})
	p.table([]string{"Nr", "Name", "Type", "Address", "Offset", "Size", "EntSize", "Flags", "Link", "Info", "Align"}, rows)
}

// Strings dumps every string of t keyed by its offset.
func (p *Printer) Strings(index int, t *elf64.StringTable) {
	p.heading(fmt.Sprintf("String dump of section %d", index))
	rows := lo.Map(t.Offsets(), func(off uint32, _ int) []string {
		s, _ := t.Lookup(off)
		return []string{fmt.Sprintf("0x%x", off), s}
	})
	p.table([]string{"Offset", "String"}, rows)
}

func (p *Printer) BuildID(id *elf64.BuildID) {
	p.heading("Build ID")
	if id == nil {
		fmt.Fprintln(p.w, "No build id found.")
		return
	}
	fmt.Fprintf(p.w, "%s: %s\n", id.Type, id.ID)
}

func (p *Printer) heading(s string) {
	p.title.Fprintf(p.w, "\n%s:\n", s)
}

func (p *Printer) table(header []string, rows [][]string) {
	table := tablewriter.NewWriter(p.w)
	table.SetHeader(header)
	if p.colored {
		table.SetHeaderColor(cycle(headerColors, len(header))...)
		table.SetColumnColor(cycle(columnColors, len(header))...)
	}
	table.SetBorder(true)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.AppendBulk(rows)
	table.Render()
}

func cycle(colors []tablewriter.Colors, n int) []tablewriter.Colors {
	return lo.Times(n, func(i int) tablewriter.Colors { return colors[i%len(colors)] })
}
