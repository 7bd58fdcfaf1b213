package wal

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/gowal"

	"lendingScope/internal/model"
)

const (
	defaultDir       = "./wal/snapshots"
	segmentThreshold = 1000
	maxSegments      = 100
	keyPrefix        = "pool_snapshot_"
)

// Store appends pool snapshots to a write-ahead log so a restarted watcher
// can replay what it observed.
type Store struct {
	wal *gowal.Wal
	mu  sync.RWMutex
}

func NewStore(dir string) (*Store, error) {
	if dir == "" {
		dir = defaultDir
	}

	w, err := gowal.NewWAL(gowal.Config{
		Dir:              dir,
		Prefix:           "snapshot_",
		SegmentThreshold: segmentThreshold,
		MaxSegments:      maxSegments,
		IsInSyncDiskMode: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "init snapshot WAL")
	}
	return &Store{wal: w}, nil
}

// PutSnapshotBatch writes each record under a key derived from pool and user.
func (s *Store) PutSnapshotBatch(_ context.Context, records []model.SnapshotRecord) error {
	if s == nil || s.wal == nil {
		return errors.New("snapshot WAL is not initialized")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, record := range records {
		if record.PoolID == "" || record.User == "" {
			return fmt.Errorf("snapshot record needs pool and user")
		}
		payload, err := json.Marshal(record)
		if err != nil {
			return errors.Wrap(err, "marshal snapshot record")
		}
		key := fmt.Sprintf("%s%s_%s", keyPrefix, record.PoolID, record.User)
		if err := s.wal.Write(s.wal.CurrentIndex()+1, key, payload); err != nil {
			return errors.Wrap(err, "write snapshot record")
		}
	}
	return nil
}

// Snapshots replays every snapshot record in write order.
func (s *Store) Snapshots() ([]model.SnapshotRecord, error) {
	if s == nil || s.wal == nil {
		return nil, errors.New("snapshot WAL is not initialized")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.SnapshotRecord
	for msg := range s.wal.Iterator() {
		if !strings.HasPrefix(msg.Key, keyPrefix) {
			continue
		}
		var rec model.SnapshotRecord
		if err := json.Unmarshal(msg.Value, &rec); err != nil {
			return nil, errors.Wrap(err, "decode snapshot record")
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *Store) CurrentIndex() uint64 {
	if s == nil || s.wal == nil {
		return 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.wal.CurrentIndex()
}

func (s *Store) Close() error {
	if s == nil || s.wal == nil {
		return errors.New("snapshot WAL is not initialized")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wal.Close()
}
