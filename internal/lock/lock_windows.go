//go:build windows

package lock

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/windows"
)

// LockDirectory attempts to acquire an exclusive lock on the given directory
// using a lock file.
//
// On Windows, this takes a LockFileEx byte-range lock on a file named LOCK
// inside the directory. If the lock cannot be acquired, ErrLocked is
// returned.
//
// The returned file handle must be kept open for the duration of the lock.
func LockDirectory(path string) (*os.File, error) {
	lockFilePath := filepath.Join(path, LockFileName)

	f, err := os.OpenFile(lockFilePath, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("unable to open lock file: %w", err)
	}

	flags := uint32(windows.LOCKFILE_EXCLUSIVE_LOCK | windows.LOCKFILE_FAIL_IMMEDIATELY)
	if err := windows.LockFileEx(windows.Handle(f.Fd()), flags, 0, 1, 0, &windows.Overlapped{}); err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %v", ErrLocked, err)
	}

	return f, nil
}

// UnlockDirectory releases a directory lock acquired via LockDirectory.
func UnlockDirectory(f *os.File) error {
	if err := windows.UnlockFileEx(windows.Handle(f.Fd()), 0, 1, 0, &windows.Overlapped{}); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
