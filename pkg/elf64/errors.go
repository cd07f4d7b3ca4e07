package elf64

import (
	"errors"
	"fmt"
	"math"

	"github.com/vietanhduong/readelf/pkg/source"
)

var (
	ErrTruncated           = errors.New("elf64: truncated")
	ErrBadMagic            = errors.New("elf64: bad magic")
	ErrUnsupportedClass    = errors.New("elf64: unsupported class")
	ErrUnsupportedEncoding = errors.New("elf64: unsupported data encoding")
	ErrMissingStringTable  = errors.New("elf64: missing string table")
)

// ensure grows src to cover [0, end). Running out of stream is reported as
// ErrTruncated; other read failures are passed through.
func ensure(src *source.Source, end uint64, what string) error {
	if end > math.MaxInt {
		return fmt.Errorf("%s ends at 0x%x: %w", what, end, ErrTruncated)
	}
	if err := src.EnsureAvailable(int(end)); err != nil {
		if errors.Is(err, source.ErrTruncated) {
			return fmt.Errorf("%s: %w: %w", what, ErrTruncated, err)
		}
		return fmt.Errorf("%s: %w", what, err)
	}
	return nil
}
