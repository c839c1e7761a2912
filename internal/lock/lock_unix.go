//go:build unix

package lock

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// LockDirectory attempts to acquire an exclusive, non-blocking advisory lock
// on the given directory using a lock file.
//
// On Unix systems, this uses flock(2) on a file named LOCK inside the
// directory. If the lock cannot be acquired, ErrLocked is returned.
//
// The returned file handle must remain open for the duration of the lock.
func LockDirectory(path string) (*os.File, error) {
	lockFilePath := filepath.Join(path, LockFileName)

	f, err := os.OpenFile(lockFilePath, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("unable to open lock file: %w", err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %v", ErrLocked, err)
	}

	return f, nil
}

// UnlockDirectory releases a directory lock acquired via LockDirectory.
func UnlockDirectory(f *os.File) error {
	if err := unix.Flock(int(f.Fd()), unix.LOCK_UN); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
