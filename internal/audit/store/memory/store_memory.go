package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"mbatrack/internal/audit"
	id "mbatrack/pkg/domain"
)

// InMemoryStore keeps audit records in process memory. Used by unit tests and
// local development; records are appended in arrival order.
type InMemoryStore struct {
	mu      sync.RWMutex
	records []audit.Record
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

// Create assigns the record's ID and CreatedAt and appends a copy.
func (s *InMemoryStore) Create(_ context.Context, record *audit.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record.ID.IsNil() {
		record.ID = id.AuditRecordID(uuid.New())
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	s.records = append(s.records, *record)
	return nil
}

// ListRecent returns up to limit records, most recent first.
func (s *InMemoryStore) ListRecent(_ context.Context, limit int) ([]audit.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.records)
	if limit > n {
		limit = n
	}
	out := make([]audit.Record, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, s.records[i])
	}
	return out, nil
}

// All returns every record in insertion order. Test helper.
func (s *InMemoryStore) All() []audit.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Record{}, s.records...)
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
}
