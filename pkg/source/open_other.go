//go:build !linux

package source

import (
	"fmt"
	"os"
)

func Open(path string, chunkSize int) (*Source, error) {
	f, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return New(f, chunkSize), nil
}
