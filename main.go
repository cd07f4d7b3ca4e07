package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/golang/glog"
	"github.com/vietanhduong/readelf/pkg/elf64"
	"github.com/vietanhduong/readelf/pkg/report"
	"github.com/vietanhduong/readelf/pkg/source"
	"golang.org/x/sys/unix"
)

type config struct {
	path      string
	header    bool
	segments  bool
	sections  bool
	strings   bool
	buildID   bool
	noColor   bool
	chunkSize int
	nameTable string
	debug     bool
}

func main() {
	var cfg config
	var all bool
	flag.StringVar(&cfg.path, "file", "", "ELF file to parse (or pass it as the first argument)")
	flag.BoolVar(&cfg.header, "h", false, "Display the ELF file header")
	flag.BoolVar(&cfg.segments, "l", false, "Display the program headers")
	flag.BoolVar(&cfg.sections, "S", false, "Display the section headers")
	flag.BoolVar(&cfg.strings, "p", false, "Dump the section name string table")
	flag.BoolVar(&cfg.buildID, "n", false, "Display the build id")
	flag.BoolVar(&all, "a", false, "Equivalent to -h -l -S -n")
	flag.BoolVar(&cfg.noColor, "no-color", false, "Disable colored output")
	flag.IntVar(&cfg.chunkSize, "chunk-size", source.DEFAULT_CHUNK_SIZE, "Bytes read from the file per step")
	flag.StringVar(&cfg.nameTable, "name-table", string(elf64.NameTableFromHeader), "How to find the section name table: header or last-strtab")
	flag.BoolVar(&cfg.debug, "debug", false, "Log the raw header bytes")
	flag.Parse()

	if cfg.path == "" && flag.NArg() > 0 {
		cfg.path = flag.Arg(0)
	}
	if cfg.path == "" {
		glog.Errorf("No file is specified")
		os.Exit(1)
	}
	if all || !(cfg.header || cfg.segments || cfg.sections || cfg.strings || cfg.buildID) {
		cfg.header, cfg.segments, cfg.sections, cfg.buildID = true, true, true, true
	}

	if err := run(&cfg); err != nil {
		glog.Errorf("Failed to read %s: %v", cfg.path, err)
		glog.Flush()
		os.Exit(1)
	}
	glog.Flush()
}

func run(cfg *config) error {
	strategy, err := elf64.ParseNameTableStrategy(cfg.nameTable)
	if err != nil {
		return err
	}
	if err = unix.Access(cfg.path, unix.R_OK); err != nil {
		return fmt.Errorf("access: %w", err)
	}

	glog.V(1).Infof("Parsing binary file: %s", cfg.path)
	f, err := elf64.Open(cfg.path, &elf64.Options{
		ChunkSize: cfg.chunkSize,
		NameTable: strategy,
		Debug:     cfg.debug,
	})
	if err != nil {
		return err
	}
	defer f.Close()

	p := report.New(os.Stdout, !cfg.noColor)
	if cfg.header {
		p.Header(f.Header)
	}
	if cfg.segments {
		p.ProgramHeaders(f.Progs)
	}
	if cfg.sections {
		p.Sections(f.Sections)
	}
	if cfg.strings && f.NamesIndex >= 0 {
		p.Strings(f.NamesIndex, f.Names)
	}
	if cfg.buildID {
		p.BuildID(f.BuildID())
	}
	return nil
}
