package source

import (
	"errors"
	"fmt"
	"io"

	"github.com/golang/glog"
)

// DEFAULT_CHUNK_SIZE keeps header-only reads from pulling a whole file into memory.
const DEFAULT_CHUNK_SIZE = 64

const maxEmptyReads = 100

// ErrTruncated means the stream ended before a request could be satisfied.
var ErrTruncated = errors.New("truncated")

// Source accumulates bytes from an underlying stream on demand. The buffer
// only grows and the stream is never rewound.
type Source struct {
	r         io.Reader
	buf       []byte
	chunk     []byte
	exhausted bool
}

// New wraps r. A non-positive chunkSize selects DEFAULT_CHUNK_SIZE.
func New(r io.Reader, chunkSize int) *Source {
	if chunkSize <= 0 {
		chunkSize = DEFAULT_CHUNK_SIZE
	}
	return &Source{
		r:     r,
		chunk: make([]byte, chunkSize),
	}
}

// EnsureAvailable reads until at least n bytes are buffered. Requests already
// satisfied by the buffer do not touch the stream. The buffer grows by one
// chunk per read, so n itself is never allocated up front.
func (s *Source) EnsureAvailable(n int) error {
	if n <= len(s.buf) {
		return nil
	}
	if s.exhausted {
		return fmt.Errorf("need %d bytes, stream ended at %d: %w", n, len(s.buf), ErrTruncated)
	}

	var empty int
	for len(s.buf) < n {
		read, err := s.r.Read(s.chunk)
		if read > 0 {
			empty = 0
			s.buf = append(s.buf, s.chunk[:read]...)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				if len(s.buf) >= n {
					break
				}
				s.exhausted = true
				return fmt.Errorf("need %d bytes, stream ended at %d: %w", n, len(s.buf), ErrTruncated)
			}
			return fmt.Errorf("read source: %w", err)
		}
		if read == 0 {
			if empty++; empty >= maxEmptyReads {
				return io.ErrNoProgress
			}
		}
	}
	glog.V(6).Infof("Source grown to %d bytes (requested %d)", len(s.buf), n)
	return nil
}

// Bytes returns the accumulated bytes without copying.
func (s *Source) Bytes() []byte { return s.buf }

// Len is the number of bytes buffered so far.
func (s *Source) Len() int { return len(s.buf) }

// ReaderAt exposes the underlying stream when it also supports random access.
func (s *Source) ReaderAt() (io.ReaderAt, bool) {
	ra, ok := s.r.(io.ReaderAt)
	return ra, ok
}

// Close closes the underlying reader if it is an io.Closer.
func (s *Source) Close() error {
	if c, ok := s.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
