package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"mbatrack/internal/audit"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.ctx = context.Background()
}

func (s *MemoryStoreSuite) TestCreateAssignsIdentity() {
	record := &audit.Record{
		EntityType: audit.EntityClient,
		EntityID:   "c1",
		Action:     audit.ActionCreate,
	}
	s.Require().NoError(s.store.Create(s.ctx, record))

	s.False(record.ID.IsNil(), "store should assign the record ID")
	s.False(record.CreatedAt.IsZero(), "store should assign the creation time")
}

func (s *MemoryStoreSuite) TestListRecentNewestFirst() {
	for _, entityID := range []string{"a", "b", "c"} {
		s.Require().NoError(s.store.Create(s.ctx, &audit.Record{
			EntityType: audit.EntityMBA,
			EntityID:   entityID,
			Action:     audit.ActionUpdate,
		}))
	}

	got, err := s.store.ListRecent(s.ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal("c", got[0].EntityID)
	s.Equal("b", got[1].EntityID)
}

func (s *MemoryStoreSuite) TestListRecentLimitBeyondSize() {
	s.Require().NoError(s.store.Create(s.ctx, &audit.Record{
		EntityType: audit.EntityInvoice,
		EntityID:   "i1",
		Action:     audit.ActionDelete,
	}))

	got, err := s.store.ListRecent(s.ctx, 100)
	s.Require().NoError(err)
	s.Len(got, 1)
}
