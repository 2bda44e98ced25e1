package client

import (
	"context"
	"sort"
	"sync"

	"mbatrack/internal/mba/models"
	id "mbatrack/pkg/domain"
	"mbatrack/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded client store for tests and single-node dev runs.
type InMemory struct {
	mu      sync.RWMutex
	clients map[id.ClientID]models.Client
}

func NewInMemory() *InMemory {
	return &InMemory{clients: make(map[id.ClientID]models.Client)}
}

func (s *InMemory) Create(_ context.Context, client *models.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.clients[client.ID]; exists {
		return sentinel.ErrConflict
	}
	s.clients[client.ID] = *client
	return nil
}

func (s *InMemory) FindByID(_ context.Context, clientID id.ClientID) (*models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	client, ok := s.clients[clientID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &client, nil
}

func (s *InMemory) List(_ context.Context) ([]models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	clients := make([]models.Client, 0, len(s.clients))
	for _, client := range s.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].Name < clients[j].Name
	})
	return clients, nil
}

func (s *InMemory) Update(_ context.Context, client *models.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.clients[client.ID]; !exists {
		return sentinel.ErrNotFound
	}
	s.clients[client.ID] = *client
	return nil
}

func (s *InMemory) Delete(_ context.Context, clientID id.ClientID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.clients[clientID]; !exists {
		return sentinel.ErrNotFound
	}
	delete(s.clients, clientID)
	return nil
}
