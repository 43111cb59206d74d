package models

import (
	"errors"
	"sync/atomic"
)

// ErrNotFound is returned when a record is not found in the store.
var ErrNotFound = errors.New("record not found")

// RecordStore provides thread-safe access to the master collection without
// global variables. The collection is replaced wholesale on load and mutated
// in place only through MarkReported.
type RecordStore interface {
	// Read operations
	GetByID(id string) *Record
	All() []Record
	Len() int

	// ReplaceAll swaps in a freshly loaded collection. Duplicate ids keep
	// the first occurrence so lookups stay unambiguous.
	ReplaceAll(records []Record)

	// MarkReported sets a record's reported flag to 1. The transition is
	// one-directional; marking an already-reported record is a no-op.
	MarkReported(id string) error
}

// recordSnapshot is an immutable snapshot of the master collection.
type recordSnapshot struct {
	records []Record
	index   map[string]int // record ID -> position in records
}

func buildSnapshot(records []Record) *recordSnapshot {
	snap := &recordSnapshot{
		records: make([]Record, 0, len(records)),
		index:   make(map[string]int, len(records)),
	}
	for _, r := range records {
		if _, dup := snap.index[r.ID]; dup {
			continue
		}
		snap.index[r.ID] = len(snap.records)
		snap.records = append(snap.records, r)
	}
	return snap
}

// InMemoryRecordStore implements RecordStore with atomic snapshot updates.
// Readers never block writers and always observe a consistent collection.
type InMemoryRecordStore struct {
	data atomic.Pointer[recordSnapshot]
}

// NewInMemoryRecordStore creates an empty RecordStore.
func NewInMemoryRecordStore() *InMemoryRecordStore {
	store := &InMemoryRecordStore{}
	store.data.Store(buildSnapshot(nil))
	return store
}

// GetByID returns a copy of the record with the given id, or nil.
func (s *InMemoryRecordStore) GetByID(id string) *Record {
	snap := s.data.Load()
	if pos, ok := snap.index[id]; ok {
		r := snap.records[pos]
		return &r
	}
	return nil
}

// All returns a copy of the full collection in load order.
func (s *InMemoryRecordStore) All() []Record {
	snap := s.data.Load()
	out := make([]Record, len(snap.records))
	copy(out, snap.records)
	return out
}

// Len returns the number of records in the collection.
func (s *InMemoryRecordStore) Len() int {
	return len(s.data.Load().records)
}

// ReplaceAll swaps the collection for a new one.
func (s *InMemoryRecordStore) ReplaceAll(records []Record) {
	s.data.Store(buildSnapshot(records))
}

// MarkReported flips a single record's reported flag to 1 via a snapshot swap.
func (s *InMemoryRecordStore) MarkReported(id string) error {
	for {
		old := s.data.Load()
		pos, ok := old.index[id]
		if !ok {
			return ErrNotFound
		}
		if old.records[pos].Reported == ReportSubmitted {
			return nil
		}

		records := make([]Record, len(old.records))
		copy(records, old.records)
		records[pos].Reported = ReportSubmitted

		next := &recordSnapshot{records: records, index: old.index}
		if s.data.CompareAndSwap(old, next) {
			return nil
		}
	}
}
