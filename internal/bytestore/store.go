// Package bytestore provides absolute-offset byte stores used for both the
// content file and the directory file.
package bytestore

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrOutOfBounds is returned when a read reaches past the end of a store.
var ErrOutOfBounds = errors.New("bytestore: read past end of store")

// Store is a flat, growable byte region addressed by absolute offsets.
//
// Implementations guard every call with their own lock, so a single call
// never observes a torn write. Sequences of calls are not atomic.
type Store interface {
	// ReadAll returns the entire contents of the store starting at offset 0.
	ReadAll() ([]byte, error)
	// ReadAt returns exactly n bytes starting at off.
	ReadAt(off int64, n int) ([]byte, error)
	// WriteAt writes p at off. Writing past the end zero-extends the store.
	WriteAt(off int64, p []byte) error
	// Truncate discards all bytes.
	Truncate() error
	// Len returns the current size in bytes.
	Len() (int64, error)
	// Sync flushes the store to stable storage.
	Sync() error
	Close() error
}

// IOError describes a failed operation on the underlying medium.
//
// The original underlying error can be accessed via errors.Unwrap.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("bytestore: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

func outOfBounds(off int64, n int, size int64) error {
	return errors.Wrapf(ErrOutOfBounds, "range [%d, %d) exceeds length %d", off, off+int64(n), size)
}
