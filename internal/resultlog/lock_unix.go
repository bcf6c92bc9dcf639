//go:build !windows

package resultlog

import (
	"os"

	"golang.org/x/sys/unix"
)

// lockFile takes a blocking exclusive flock on file, via
// golang.org/x/sys/unix — the library the teacher's own go.mod already
// depends on, filling the gap the teacher's writer package left unfilled
// (it ships only a Windows stub, see lock_windows.go).
func lockFile(file *os.File) error {
	return unix.Flock(int(file.Fd()), unix.LOCK_EX)
}

func unlockFile(file *os.File) error {
	return unix.Flock(int(file.Fd()), unix.LOCK_UN)
}
