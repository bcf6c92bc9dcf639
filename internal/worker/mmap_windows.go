//go:build windows

package worker

import (
	"fmt"
	"os"

	"github.com/onebrc/onebrc/internal/partition"
)

// mmapRange has no Windows implementation here, matching the teacher's
// own mmap_windows.go, which falls back to a plain read rather than a
// real mapping. internal/partition.ChooseStrategy never selects mmap on
// this platform on its own, so this path is only reached when the
// operator explicitly passes --mmap; it behaves as a correct, if
// unmapped, read of the same range.
func mmapRange(path string, r partition.Range) ([]byte, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("worker: open %s: %w", path, err)
	}
	defer f.Close()

	buf := make([]byte, r.End-r.Start)
	if _, err := f.ReadAt(buf, r.Start); err != nil {
		return nil, nil, fmt.Errorf("worker: read %s [%d,%d): %w", path, r.Start, r.End, err)
	}
	return buf, func() {}, nil
}
