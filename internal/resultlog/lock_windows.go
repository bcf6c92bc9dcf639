//go:build windows

package resultlog

import "os"

// lockFile is a no-op on Windows, matching the teacher's own
// writer.lockFile stub in internal/writer/lock_windows.go: robust
// Windows locking needs syscall.LockFileEx, out of scope here.
func lockFile(file *os.File) error {
	return nil
}

func unlockFile(file *os.File) error {
	return nil
}
