package bytestore

import (
	"sync"

	"github.com/pkg/errors"
)

var errNegativeOffset = errors.New("negative offset")

// Memory is an in-memory Store, mostly useful for tests.
type Memory struct {
	mu   sync.RWMutex
	data []byte

	// FailWrites, when set, is returned from every WriteAt call.
	FailWrites error
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) ReadAll() ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]byte, len(m.data))
	copy(out, m.data)
	return out, nil
}

func (m *Memory) ReadAt(off int64, n int) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	size := int64(len(m.data))
	if off < 0 || n < 0 || off+int64(n) > size {
		return nil, outOfBounds(off, n, size)
	}

	out := make([]byte, n)
	copy(out, m.data[off:])
	return out, nil
}

func (m *Memory) WriteAt(off int64, p []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailWrites != nil {
		return &IOError{Op: "write", Path: "memory", Err: m.FailWrites}
	}
	if off < 0 {
		return &IOError{Op: "write", Path: "memory", Err: errNegativeOffset}
	}

	if end := off + int64(len(p)); end > int64(len(m.data)) {
		grown := make([]byte, end)
		copy(grown, m.data)
		m.data = grown
	}
	copy(m.data[off:], p)

	return nil
}

func (m *Memory) Truncate() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data = nil
	return nil
}

func (m *Memory) Len() (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return int64(len(m.data)), nil
}

func (m *Memory) Sync() error  { return nil }
func (m *Memory) Close() error { return nil }
