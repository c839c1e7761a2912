// Package slotstore exposes the store engine for in-process use, without
// the TCP server.
package slotstore

import (
	"github.com/0xRadioAc7iv/go-slotstore/core"
	"github.com/0xRadioAc7iv/go-slotstore/internal/logger"
	"github.com/0xRadioAc7iv/go-slotstore/internal/record"
)

type (
	Store  = core.Slotstore
	Record = record.Record
	Stats  = core.Stats
)

var (
	ErrNotFound        = core.ErrNotFound
	ErrSlotFree        = core.ErrSlotFree
	ErrClosed          = core.ErrClosed
	ErrContentTooLarge = core.ErrContentTooLarge
	ErrCorrupt         = record.ErrCorrupt
)

// Open starts a store rooted at dir with periodic fsync and no network
// listener. dir must exist. Call Stop when done.
func Open(dir string) (*Store, error) {
	s := &Store{
		DirectoryPath: dir,
		SyncInterval:  core.DefaultSyncInterval,
		Logger:        logger.Discard(),
	}

	if err := s.Start(); err != nil {
		return nil, err
	}

	return s, nil
}
