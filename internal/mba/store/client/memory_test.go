package client

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"mbatrack/internal/mba/models"
	id "mbatrack/pkg/domain"
	"mbatrack/pkg/platform/sentinel"
)

type ClientStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func TestClientStoreSuite(t *testing.T) {
	suite.Run(t, new(ClientStoreSuite))
}

func (s *ClientStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func newTestClient(name string) *models.Client {
	now := time.Now()
	return &models.Client{
		ID:        id.ClientID(uuid.New()),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *ClientStoreSuite) TestCreateAndFind() {
	client := newTestClient("Acme")
	s.Require().NoError(s.store.Create(s.ctx, client))

	got, err := s.store.FindByID(s.ctx, client.ID)
	s.Require().NoError(err)
	s.Equal("Acme", got.Name)

	s.ErrorIs(s.store.Create(s.ctx, client), sentinel.ErrConflict)
}

func (s *ClientStoreSuite) TestFindMissing() {
	_, err := s.store.FindByID(s.ctx, id.ClientID(uuid.New()))
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *ClientStoreSuite) TestListSortsByName() {
	s.Require().NoError(s.store.Create(s.ctx, newTestClient("Zeta")))
	s.Require().NoError(s.store.Create(s.ctx, newTestClient("Alpha")))

	clients, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(clients, 2)
	s.Equal("Alpha", clients[0].Name)
	s.Equal("Zeta", clients[1].Name)
}

func (s *ClientStoreSuite) TestUpdateAndDelete() {
	client := newTestClient("Acme")
	s.Require().NoError(s.store.Create(s.ctx, client))

	client.Name = "Acme Holdings"
	s.Require().NoError(s.store.Update(s.ctx, client))
	got, err := s.store.FindByID(s.ctx, client.ID)
	s.Require().NoError(err)
	s.Equal("Acme Holdings", got.Name)

	s.Require().NoError(s.store.Delete(s.ctx, client.ID))
	s.ErrorIs(s.store.Delete(s.ctx, client.ID), sentinel.ErrNotFound)
	s.ErrorIs(s.store.Update(s.ctx, client), sentinel.ErrNotFound)
}

func (s *ClientStoreSuite) TestReturnsCopies() {
	client := newTestClient("Acme")
	s.Require().NoError(s.store.Create(s.ctx, client))

	got, err := s.store.FindByID(s.ctx, client.ID)
	s.Require().NoError(err)
	got.Name = "mutated"

	again, err := s.store.FindByID(s.ctx, client.ID)
	s.Require().NoError(err)
	s.Equal("Acme", again.Name)
}
