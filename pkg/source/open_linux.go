package source

import (
	"fmt"
	"os"

	"github.com/golang/glog"
	"golang.org/x/sys/unix"
)

// Open wraps a read-only file. The kernel is told the file will be read
// front to back so readahead can work for it.
func Open(path string, chunkSize int) (*Source, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if err = unix.Fadvise(fd, 0, 0, unix.FADV_SEQUENTIAL); err != nil {
		glog.V(3).Infof("Fadvise %s: %v", path, err)
	}
	return New(os.NewFile(uintptr(fd), path), chunkSize), nil
}
