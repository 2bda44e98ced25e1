package spend

import (
	"context"
	"sort"
	"sync"
	"time"

	"mbatrack/internal/mba/models"
	id "mbatrack/pkg/domain"
	"mbatrack/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded spend entry store for tests and dev runs.
type InMemory struct {
	mu      sync.RWMutex
	entries map[id.SpendEntryID]models.SpendEntry
}

func NewInMemory() *InMemory {
	return &InMemory{entries: make(map[id.SpendEntryID]models.SpendEntry)}
}

func (s *InMemory) Create(_ context.Context, entry *models.SpendEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.entries {
		if existing.MBAID == entry.MBAID &&
			existing.Platform == entry.Platform &&
			existing.Period.Equal(entry.Period) {
			return sentinel.ErrConflict
		}
	}
	s.entries[entry.ID] = *entry
	return nil
}

// FindByKey looks up the entry for one (MBA, platform, period) cell.
func (s *InMemory) FindByKey(_ context.Context, mbaID id.MBAID, platform models.Platform, period time.Time) (*models.SpendEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	period = models.NormalizePeriod(period)
	for _, entry := range s.entries {
		if entry.MBAID == mbaID && entry.Platform == platform && entry.Period.Equal(period) {
			return &entry, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) Update(_ context.Context, entry *models.SpendEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[entry.ID]; !exists {
		return sentinel.ErrNotFound
	}
	s.entries[entry.ID] = *entry
	return nil
}

func (s *InMemory) ListByMBA(_ context.Context, mbaID id.MBAID) ([]models.SpendEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(e models.SpendEntry) bool { return e.MBAID == mbaID }), nil
}

func (s *InMemory) List(_ context.Context) ([]models.SpendEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(models.SpendEntry) bool { return true }), nil
}

func (s *InMemory) DeleteByMBA(_ context.Context, mbaID id.MBAID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for entryID, entry := range s.entries {
		if entry.MBAID == mbaID {
			delete(s.entries, entryID)
		}
	}
	return nil
}

func (s *InMemory) collect(keep func(models.SpendEntry) bool) []models.SpendEntry {
	var entries []models.SpendEntry
	for _, entry := range s.entries {
		if keep(entry) {
			entries = append(entries, entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].Period.Equal(entries[j].Period) {
			return entries[i].Period.Before(entries[j].Period)
		}
		return entries[i].Platform < entries[j].Platform
	})
	return entries
}
