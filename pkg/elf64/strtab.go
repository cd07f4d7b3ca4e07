package elf64

import (
	"bytes"
	"math"
	"strings"
	"unicode/utf8"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// StringTable indexes a string table section by the offset each
// null-terminated run starts at.
type StringTable struct {
	raw     []byte
	strings map[uint32]string
	// strings referenced from inside another run, e.g. ".text" in ".rela.text"
	shared map[uint32]string
}

func BuildStringTable(b []byte) *StringTable {
	t := &StringTable{
		raw:     slices.Clone(b),
		strings: map[uint32]string{0: ""},
	}
	var start int
	for i, c := range b {
		if c != 0 {
			continue
		}
		if start > math.MaxUint32 {
			break
		}
		// Offset 0 is the empty string no matter what the first run holds.
		if start != 0 {
			t.strings[uint32(start)] = decodeString(b[start:i])
		}
		start = i + 1
	}
	return t
}

// Lookup only matches offsets where a run starts.
func (t *StringTable) Lookup(off uint32) (string, bool) {
	s, ok := t.strings[off]
	return s, ok
}

// Resolve is Lookup, extended to offsets that land inside a run.
func (t *StringTable) Resolve(off uint32) (string, bool) {
	if s, ok := t.strings[off]; ok {
		return s, true
	}
	if s, ok := t.shared[off]; ok {
		return s, true
	}
	if uint64(off) >= uint64(len(t.raw)) {
		return "", false
	}
	end := bytes.IndexByte(t.raw[off:], 0)
	if end < 0 {
		return "", false
	}
	s := decodeString(t.raw[off : int(off)+end])
	if t.shared == nil {
		t.shared = make(map[uint32]string)
	}
	t.shared[off] = s
	return s, true
}

// Offsets returns every run start in ascending order.
func (t *StringTable) Offsets() []uint32 {
	keys := maps.Keys(t.strings)
	slices.Sort(keys)
	return keys
}

func (t *StringTable) Len() int { return len(t.strings) }

// decodeString replaces every maximal ill-formed subsequence with a single
// U+FFFD.
func decodeString(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	var sb strings.Builder
	sb.Grow(len(b))
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if r == utf8.RuneError && size <= 1 {
			sb.WriteRune(utf8.RuneError)
			b = b[invalidPrefix(b):]
			continue
		}
		sb.Write(b[:size])
		b = b[size:]
	}
	return sb.String()
}

// invalidPrefix is the length of the ill-formed subsequence starting at b[0]:
// the lead byte plus every continuation byte that could still have completed it.
func invalidPrefix(b []byte) int {
	lo, hi, n := byte(0x80), byte(0xbf), 0
	switch c := b[0]; {
	case c >= 0xc2 && c <= 0xdf:
		n = 2
	case c == 0xe0:
		lo, n = 0xa0, 3
	case c == 0xed:
		hi, n = 0x9f, 3
	case c >= 0xe1 && c <= 0xef:
		n = 3
	case c == 0xf0:
		lo, n = 0x90, 4
	case c == 0xf4:
		hi, n = 0x8f, 4
	case c >= 0xf1 && c <= 0xf3:
		n = 4
	default:
		return 1
	}
	i := 1
	for ; i < n && i < len(b); i++ {
		if b[i] < lo || b[i] > hi {
			break
		}
		lo, hi = 0x80, 0xbf
	}
	return i
}
