// Package alarmlog keeps a journal of fired alarms in a WAL.
package alarmlog

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/gowal"

	"github.com/vadiminshakov/coinwatch/internal/domain"
)

const (
	segmentLimit = 500
	maxSegments  = 20

	alarmKeyPrefix = "alarm_"
)

// WALStore persists alarm events in a WAL.
type WALStore struct {
	wal *gowal.Wal
	mu  sync.RWMutex
}

// NewWALStore initializes a WAL-backed alarm journal in dir.
func NewWALStore(dir string) (*WALStore, error) {
	if dir == "" {
		return nil, errors.New("alarm journal dir is required")
	}

	cfg := gowal.Config{
		Dir:              dir,
		Prefix:           "alarms_",
		SegmentThreshold: segmentLimit,
		MaxSegments:      maxSegments,
		IsInSyncDiskMode: true,
	}

	wal, err := gowal.NewWAL(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "init alarm journal WAL")
	}

	return &WALStore{wal: wal}, nil
}

// Save appends the event to the journal.
func (s *WALStore) Save(event domain.AlarmEvent) error {
	if s == nil || s.wal == nil {
		return errors.New("alarm journal is not initialized")
	}
	if event.Coin == "" {
		return fmt.Errorf("alarm event coin is required")
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "marshal alarm event")
	}

	key := fmt.Sprintf("%s%s", alarmKeyPrefix, event.Coin)

	s.mu.Lock()
	defer s.mu.Unlock()

	nextIndex := s.wal.CurrentIndex() + 1
	return s.wal.Write(nextIndex, key, payload)
}

// EventsAfter returns all alarm events written after the provided WAL index.
func (s *WALStore) EventsAfter(index uint64) ([]domain.AlarmEventRecord, error) {
	if s == nil || s.wal == nil {
		return nil, errors.New("alarm journal is not initialized")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	current := s.wal.CurrentIndex()
	if current <= index {
		return nil, nil
	}

	records := make([]domain.AlarmEventRecord, 0, current-index)
	for idx := index + 1; idx <= current; idx++ {
		key, payload, err := s.wal.Get(idx)
		if err != nil || !strings.HasPrefix(key, alarmKeyPrefix) {
			// segment rotated away
			continue
		}

		var event domain.AlarmEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			return nil, errors.Wrap(err, "decode alarm event")
		}
		records = append(records, domain.AlarmEventRecord{Index: idx, Event: event})
	}

	return records, nil
}

// Recent returns up to limit latest events, oldest first.
func (s *WALStore) Recent(limit int) ([]domain.AlarmEventRecord, error) {
	current := s.CurrentIndex()
	from := uint64(0)
	if limit > 0 && current > uint64(limit) {
		from = current - uint64(limit)
	}
	return s.EventsAfter(from)
}

// CurrentIndex returns the latest WAL index stored.
func (s *WALStore) CurrentIndex() uint64 {
	if s == nil || s.wal == nil {
		return 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.wal.CurrentIndex()
}

// Close closes the underlying WAL.
func (s *WALStore) Close() error {
	if s == nil || s.wal == nil {
		return errors.New("alarm journal is not initialized")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.wal.Close()
}
