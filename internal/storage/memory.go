package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/neexbeast/travel-planner/internal/travel"
)

// MemoryHistory is a HistoryStore that lives for the life of the process.
type MemoryHistory struct {
	mu      sync.Mutex
	nextID  int64
	records []travel.HistoryRecord
}

// NewMemoryHistory returns an empty MemoryHistory.
func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{}
}

// Initialize is a no-op; there is nothing to prepare.
func (m *MemoryHistory) Initialize(context.Context) error { return nil }

// Append stores rec under the next id.
func (m *MemoryHistory) Append(_ context.Context, rec travel.HistoryRecord) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	rec.ID = m.nextID
	m.records = append(m.records, rec)
	return rec.ID, nil
}

// ListAll returns a copy of every record, newest first with ties broken by id.
func (m *MemoryHistory) ListAll(context.Context) ([]travel.HistoryRecord, error) {
	m.mu.Lock()
	out := make([]travel.HistoryRecord, len(m.records))
	copy(out, m.records)
	m.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		return newerFirst(out[i], out[j])
	})
	return out, nil
}
