// Package codec decodes fixed-layout little-endian records from byte slices.
//
// A record type is described once by a Layout: an ordered list of fields,
// each with a fixed width. Fields occupy contiguous byte ranges starting at
// offset 0, in declaration order.
package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var ErrTruncated = errors.New("record truncated")

type Field[T any] struct {
	Name  string
	Width int
	set   func(rec *T, raw []byte)
}

type Layout[T any] []Field[T]

func U8[T any](name string, ptr func(*T) *uint8) Field[T] {
	return Field[T]{name, 1, func(rec *T, raw []byte) { *ptr(rec) = raw[0] }}
}

func U16[T any](name string, ptr func(*T) *uint16) Field[T] {
	return Field[T]{name, 2, func(rec *T, raw []byte) { *ptr(rec) = binary.LittleEndian.Uint16(raw) }}
}

func U32[T any](name string, ptr func(*T) *uint32) Field[T] {
	return Field[T]{name, 4, func(rec *T, raw []byte) { *ptr(rec) = binary.LittleEndian.Uint32(raw) }}
}

func U64[T any](name string, ptr func(*T) *uint64) Field[T] {
	return Field[T]{name, 8, func(rec *T, raw []byte) { *ptr(rec) = binary.LittleEndian.Uint64(raw) }}
}

// Bytes copies n raw bytes into the slice returned by dst, usually a fixed
// array field sliced in full.
func Bytes[T any](name string, n int, dst func(*T) []byte) Field[T] {
	return Field[T]{name, n, func(rec *T, raw []byte) { copy(dst(rec), raw) }}
}

func (l Layout[T]) Size() int {
	var size int
	for _, f := range l {
		size += f.Width
	}
	return size
}

// Offsets returns the starting offset of every field.
func (l Layout[T]) Offsets() []int {
	ret := make([]int, len(l))
	var off int
	for i, f := range l {
		ret[i] = off
		off += f.Width
	}
	return ret
}

func (l Layout[T]) Decode(b []byte) (T, error) {
	var rec T
	if size := l.Size(); len(b) < size {
		return rec, fmt.Errorf("have %d bytes, need %d: %w", len(b), size, ErrTruncated)
	}
	var off int
	for _, f := range l {
		f.set(&rec, b[off:off+f.Width])
		off += f.Width
	}
	return rec, nil
}
