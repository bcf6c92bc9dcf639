//go:build !windows

package pipeline

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// mapWholeFile memory-maps path read-only so internal/partition.Build can
// locate newline boundaries without reading the file into process memory.
// A zero-length file has nothing to map; unix.Mmap rejects a zero-length
// request, so that case returns an empty slice directly.
func mapWholeFile(path string, size int64) (data []byte, closeFn func(), err error) {
	if size == 0 {
		return nil, func() {}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("pipeline: open %s: %w", path, err)
	}
	defer f.Close()

	mapped, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, fmt.Errorf("pipeline: mmap %s: %w", path, err)
	}
	return mapped, func() { _ = unix.Munmap(mapped) }, nil
}
