package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/PratikDhanave/profile-sync-service/internal/models"
)

// MemoryStore is an in-process profile table with a unique id constraint.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]models.ProfileRecord
	order   []string
}

var _ ProfileStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]models.ProfileRecord)}
}

func (m *MemoryStore) InsertProfile(ctx context.Context, rec models.ProfileRecord) error {
	if err := ctx.Err(); err != nil {
		return &WriteError{Message: err.Error(), Err: err}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[rec.ID]; ok {
		return &WriteError{
			Code:    "23505",
			Message: fmt.Sprintf("duplicate key value violates unique constraint on id %q", rec.ID),
		}
	}
	m.records[rec.ID] = rec
	m.order = append(m.order, rec.ID)
	return nil
}

func (m *MemoryStore) Ping(context.Context) error { return nil }

func (m *MemoryStore) Close() {}

// Records returns the stored rows in insertion order.
func (m *MemoryStore) Records() []models.ProfileRecord {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.ProfileRecord, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.records[id])
	}
	return out
}
