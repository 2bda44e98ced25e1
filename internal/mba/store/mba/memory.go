package mba

import (
	"context"
	"sort"
	"strings"
	"sync"

	"mbatrack/internal/mba/models"
	id "mbatrack/pkg/domain"
	"mbatrack/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded MBA store for tests and single-node dev runs.
type InMemory struct {
	mu   sync.RWMutex
	mbas map[id.MBAID]models.MBA
}

func NewInMemory() *InMemory {
	return &InMemory{mbas: make(map[id.MBAID]models.MBA)}
}

func (s *InMemory) Create(_ context.Context, mba *models.MBA) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.mbas[mba.ID]; exists {
		return sentinel.ErrConflict
	}
	for _, existing := range s.mbas {
		if existing.Number == mba.Number {
			return sentinel.ErrConflict
		}
	}
	s.mbas[mba.ID] = *mba
	return nil
}

func (s *InMemory) FindByID(_ context.Context, mbaID id.MBAID) (*models.MBA, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	mba, ok := s.mbas[mbaID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &mba, nil
}

// List returns MBAs, newest number first. A nil clientID returns everything.
func (s *InMemory) List(_ context.Context, clientID *id.ClientID) ([]models.MBA, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var mbas []models.MBA
	for _, mba := range s.mbas {
		if clientID != nil && mba.ClientID != *clientID {
			continue
		}
		mbas = append(mbas, mba)
	}
	sort.Slice(mbas, func(i, j int) bool {
		return mbas[i].Number > mbas[j].Number
	})
	return mbas, nil
}

func (s *InMemory) Update(_ context.Context, mba *models.MBA) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.mbas[mba.ID]; !exists {
		return sentinel.ErrNotFound
	}
	s.mbas[mba.ID] = *mba
	return nil
}

func (s *InMemory) Delete(_ context.Context, mbaID id.MBAID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.mbas[mbaID]; !exists {
		return sentinel.ErrNotFound
	}
	delete(s.mbas, mbaID)
	return nil
}

// CountByNumberPrefix counts agreements whose number starts with prefix. The
// next sequential number for a year is this count plus one.
func (s *InMemory) CountByNumberPrefix(_ context.Context, prefix string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, mba := range s.mbas {
		if strings.HasPrefix(mba.Number, prefix) {
			count++
		}
	}
	return count, nil
}
