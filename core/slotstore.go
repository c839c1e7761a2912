package core

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/0xRadioAc7iv/go-slotstore/internal/bytestore"
	"github.com/0xRadioAc7iv/go-slotstore/internal/lock"
	"github.com/0xRadioAc7iv/go-slotstore/internal/record"
	"github.com/0xRadioAc7iv/go-slotstore/internal/server"
)

// Slotstore owns one content store and one directory store inside
// DirectoryPath/data.
//
// The directory manager functions are not safe for concurrent use. Slotstore
// makes them safe: every mutation holds mu for the whole allocate, write
// content, persist record sequence, and reads hold it shared. A lock file
// keeps other processes out of the same directory.
type Slotstore struct {
	lockFile     *os.File
	content      *bytestore.File
	index        *bytestore.File
	serverCancel context.CancelFunc
	syncCancel   context.CancelFunc
	serverDone   chan struct{}
	syncDone     chan struct{}

	mu sync.RWMutex // for content + index, held across each operation

	DirectoryPath   string
	ContentFileName string
	IndexFileName   string
	ListenerHost    string // empty binds all interfaces
	ListenerPort    int    // 0 disables the TCP server
	SyncInterval    uint   // seconds, 0 disables periodic fsync
	Logger          *logrus.Logger
}

func (s *Slotstore) Start() error {
	s.setDefaults()
	log := s.Logger.WithField("dir", s.DirectoryPath)

	lf, err := lock.LockDirectory(s.DirectoryPath)
	if err != nil {
		log.WithError(err).Error("error locking slotstore directory")
		return err
	}

	if err := s.openStores(); err != nil {
		log.WithError(err).Error("error opening stores")
		lock.UnlockDirectory(lf)
		return err
	}

	records, err := Enumerate(s.index)
	if err != nil {
		log.WithError(err).Error("directory failed verification")
		s.closeStores()
		lock.UnlockDirectory(lf)
		return err
	}

	s.mu.Lock()
	s.lockFile = lf
	s.mu.Unlock()

	log.WithField("records", len(records)).Info("slotstore opened")

	if s.SyncInterval > 0 {
		syncCtx, syncCancel := context.WithCancel(context.Background())
		s.syncCancel = syncCancel
		s.syncDone = make(chan struct{})
		go s.syncDiskInterval(syncCtx, s.SyncInterval)
	}

	if s.ListenerPort > 0 {
		ctx, cancel := context.WithCancel(context.Background())
		s.serverCancel = cancel
		s.serverDone = make(chan struct{})
		go func() {
			defer close(s.serverDone)
			if err := server.Start(ctx, s.ListenerHost, s.ListenerPort, s.commandHandler, s.Logger); err != nil {
				s.Logger.WithError(err).Error("server stopped abruptly")
			}
		}()
	}

	return nil
}

func (s *Slotstore) setDefaults() {
	if s.DirectoryPath == "" {
		s.DirectoryPath = DefaultDirectoryPath
	}
	if s.ContentFileName == "" {
		s.ContentFileName = DefaultContentFileName
	}
	if s.IndexFileName == "" {
		s.IndexFileName = DefaultIndexFileName
	}
	if s.SyncInterval > 0 && s.SyncInterval < MinimumSyncInterval {
		s.SyncInterval = MinimumSyncInterval
	}
	if s.Logger == nil {
		s.Logger = logrus.StandardLogger()
	}
}

func (s *Slotstore) openStores() error {
	dataDir := filepath.Join(s.DirectoryPath, DataDirName)

	// 0 (special bit - ignored), 7 (rwx - owner), 5 (r-x - user group), 5 (r-x - others)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return errors.Wrap(err, "create data directory")
	}

	content, err := bytestore.Open(filepath.Join(dataDir, s.ContentFileName))
	if err != nil {
		return err
	}

	index, err := bytestore.Open(filepath.Join(dataDir, s.IndexFileName))
	if err != nil {
		content.Close()
		return err
	}

	s.mu.Lock()
	s.content = content
	s.index = index
	s.mu.Unlock()

	return nil
}

func (s *Slotstore) closeStores() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, st := range []*bytestore.File{s.content, s.index} {
		if st == nil {
			continue
		}
		if err := st.Sync(); err != nil {
			s.Logger.WithError(err).Error("error syncing store on close")
		}
		if err := st.Close(); err != nil {
			s.Logger.WithError(err).Error("error closing store")
		}
	}

	s.content = nil
	s.index = nil
}

// Create stores content in a new or reused slot.
func (s *Slotstore) Create(content []byte) (record.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index == nil {
		return record.Record{}, ErrClosed
	}

	return Create(content, s.content, s.index)
}

// Record returns the directory entry for id, live or free.
func (s *Slotstore) Record(id uint32) (record.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.index == nil {
		return record.Record{}, ErrClosed
	}

	return Lookup(id, s.index)
}

// Get returns the content held by the live slot id.
func (s *Slotstore) Get(id uint32) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, err := s.liveRecord(id)
	if err != nil {
		return nil, err
	}

	return GetContent(r, s.content)
}

// Update replaces the content of the live slot id. The returned record has a
// different id when the new content does not fit the slot.
func (s *Slotstore) Update(id uint32, content []byte) (record.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.liveRecord(id)
	if err != nil {
		return record.Record{}, err
	}

	return Update(r, s.content, s.index, content)
}

// Free marks slot id reclaimable. Freeing a free slot is a no-op.
func (s *Slotstore) Free(id uint32) (record.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index == nil {
		return record.Record{}, ErrClosed
	}

	r, err := Lookup(id, s.index)
	if err != nil {
		return record.Record{}, err
	}
	if r.IsFree() {
		return r, nil
	}

	return Free(r, s.index)
}

// List returns every slot in id order.
func (s *Slotstore) List() ([]record.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.index == nil {
		return nil, ErrClosed
	}

	return Enumerate(s.index)
}

// Count returns the number of live slots.
func (s *Slotstore) Count() (int, error) {
	records, err := s.List()
	if err != nil {
		return 0, err
	}

	n := 0
	for _, r := range records {
		if !r.IsFree() {
			n++
		}
	}
	return n, nil
}

// Stats summarizes the store pair.
func (s *Slotstore) Stats() (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.index == nil {
		return Stats{}, ErrClosed
	}

	records, err := Enumerate(s.index)
	if err != nil {
		return Stats{}, err
	}
	contentBytes, err := s.content.Len()
	if err != nil {
		return Stats{}, err
	}
	indexBytes, err := s.index.Len()
	if err != nil {
		return Stats{}, err
	}

	return computeStats(records, contentBytes, indexBytes), nil
}

// Reset irreversibly discards all content and records.
func (s *Slotstore) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index == nil {
		return ErrClosed
	}

	if err := Reset(s.content, s.index); err != nil {
		return err
	}

	s.Logger.WithField("dir", s.DirectoryPath).Warn("store reset")
	return nil
}

// liveRecord must be called with mu held.
func (s *Slotstore) liveRecord(id uint32) (record.Record, error) {
	if s.index == nil {
		return record.Record{}, ErrClosed
	}

	r, err := Lookup(id, s.index)
	if err != nil {
		return record.Record{}, err
	}
	if r.IsFree() {
		return record.Record{}, errors.Wrapf(ErrSlotFree, "slot %d", id)
	}

	return r, nil
}

func (s *Slotstore) syncDiskInterval(ctx context.Context, seconds uint) {
	defer close(s.syncDone)

	ticker := time.NewTicker(time.Duration(seconds) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.mu.RLock()
			for _, st := range []*bytestore.File{s.content, s.index} {
				if st == nil {
					continue
				}
				if err := st.Sync(); err != nil {
					s.Logger.WithError(err).WithField("path", st.Path()).Error("error syncing store")
				}
			}
			s.mu.RUnlock()

		case <-ctx.Done():
			return
		}
	}
}

func (s *Slotstore) Stop() {
	if s.serverCancel != nil {
		s.serverCancel()
		<-s.serverDone
		s.serverCancel = nil
	}

	if s.syncCancel != nil {
		s.syncCancel()
		<-s.syncDone
		s.syncCancel = nil
	}

	s.closeStores()

	s.mu.Lock()
	lf := s.lockFile
	s.lockFile = nil
	s.mu.Unlock()

	if lf != nil {
		if err := lock.UnlockDirectory(lf); err != nil {
			s.Logger.WithError(err).Error("error releasing directory lock")
		}
		s.Logger.WithField("dir", s.DirectoryPath).Info("slotstore stopped")
	}
}
