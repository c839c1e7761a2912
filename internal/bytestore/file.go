package bytestore

import (
	"io"
	"os"
	"sync"

	"github.com/pkg/errors"

	"github.com/0xRadioAc7iv/go-slotstore/internal/utils"
)

// File is a Store backed by a single file on disk.
type File struct {
	mu   sync.RWMutex
	f    *os.File
	path string
}

// Open opens the file at path for reading and writing, creating it if needed.
func Open(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, &IOError{Op: "open", Path: path, Err: err}
	}

	return &File{f: f, path: path}, nil
}

// Path returns the location of the backing file.
func (s *File) Path() string {
	return s.path
}

func (s *File) ReadAll() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	size, err := s.size()
	if err != nil {
		return nil, err
	}

	buf := make([]byte, size)
	if _, err := s.f.ReadAt(buf, 0); err != nil && !errors.Is(err, io.EOF) {
		return nil, &IOError{Op: "read", Path: s.path, Err: err}
	}

	return buf, nil
}

func (s *File) ReadAt(off int64, n int) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	size, err := s.size()
	if err != nil {
		return nil, err
	}
	if off < 0 || n < 0 || off+int64(n) > size {
		return nil, outOfBounds(off, n, size)
	}

	buf := make([]byte, n)
	if _, err := s.f.ReadAt(buf, off); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, outOfBounds(off, n, size)
		}
		return nil, &IOError{Op: "read", Path: s.path, Err: err}
	}

	return buf, nil
}

func (s *File) WriteAt(off int64, p []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.f.WriteAt(p, off); err != nil {
		return &IOError{Op: "write", Path: s.path, Err: err}
	}

	return nil
}

func (s *File) Truncate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := utils.TruncateAt(s.f, 0); err != nil {
		return &IOError{Op: "truncate", Path: s.path, Err: err}
	}

	return nil
}

func (s *File) Len() (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.size()
}

func (s *File) Sync() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.f.Sync(); err != nil {
		return &IOError{Op: "sync", Path: s.path, Err: err}
	}

	return nil
}

func (s *File) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.f.Close(); err != nil {
		return &IOError{Op: "close", Path: s.path, Err: err}
	}

	return nil
}

func (s *File) size() (int64, error) {
	info, err := s.f.Stat()
	if err != nil {
		return 0, &IOError{Op: "stat", Path: s.path, Err: err}
	}

	return info.Size(), nil
}
