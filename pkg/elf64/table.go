package elf64

import (
	"fmt"
	"math/bits"
)

// tableEnd returns the first offset past a table of count rows. Offsets come
// straight from the file, so overflow is treated as truncation.
func tableEnd(off uint64, entsize, count uint16) (uint64, error) {
	end, carry := bits.Add64(off, uint64(entsize)*uint64(count), 0)
	if carry != 0 {
		return 0, fmt.Errorf("table at 0x%x overflows: %w", off, ErrTruncated)
	}
	return end, nil
}

// row returns the bytes of row i of a table already known to fit in buf.
func row(buf []byte, off uint64, entsize uint16, i int) ([]byte, error) {
	start, c1 := bits.Add64(off, uint64(i)*uint64(entsize), 0)
	end, c2 := bits.Add64(start, uint64(entsize), 0)
	if c1|c2 != 0 || end > uint64(len(buf)) {
		return nil, fmt.Errorf("row %d [0x%x, 0x%x) beyond %d buffered bytes: %w", i, start, end, len(buf), ErrTruncated)
	}
	return buf[start:end], nil
}
