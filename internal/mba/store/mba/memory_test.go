package mba

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"mbatrack/internal/mba/models"
	id "mbatrack/pkg/domain"
	"mbatrack/pkg/platform/sentinel"
)

type MBAStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func TestMBAStoreSuite(t *testing.T) {
	suite.Run(t, new(MBAStoreSuite))
}

func (s *MBAStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func newTestMBA(clientID id.ClientID, number string) *models.MBA {
	now := time.Now()
	return &models.MBA{
		ID:        id.MBAID(uuid.New()),
		ClientID:  clientID,
		Number:    number,
		Name:      "Campaign " + number,
		Budget:    decimal.NewFromInt(10000),
		Currency:  "EUR",
		StartDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
		Status:    models.StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *MBAStoreSuite) TestCreateRejectsDuplicateNumber() {
	clientID := id.ClientID(uuid.New())
	s.Require().NoError(s.store.Create(s.ctx, newTestMBA(clientID, "MBA-2025-001")))
	s.ErrorIs(s.store.Create(s.ctx, newTestMBA(clientID, "MBA-2025-001")), sentinel.ErrConflict)
}

func (s *MBAStoreSuite) TestListFiltersByClient() {
	clientA := id.ClientID(uuid.New())
	clientB := id.ClientID(uuid.New())
	s.Require().NoError(s.store.Create(s.ctx, newTestMBA(clientA, "MBA-2025-001")))
	s.Require().NoError(s.store.Create(s.ctx, newTestMBA(clientB, "MBA-2025-002")))
	s.Require().NoError(s.store.Create(s.ctx, newTestMBA(clientA, "MBA-2025-003")))

	all, err := s.store.List(s.ctx, nil)
	s.Require().NoError(err)
	s.Len(all, 3)
	s.Equal("MBA-2025-003", all[0].Number, "newest number first")

	forA, err := s.store.List(s.ctx, &clientA)
	s.Require().NoError(err)
	s.Len(forA, 2)
}

func (s *MBAStoreSuite) TestCountByNumberPrefix() {
	clientID := id.ClientID(uuid.New())
	s.Require().NoError(s.store.Create(s.ctx, newTestMBA(clientID, "MBA-2024-001")))
	s.Require().NoError(s.store.Create(s.ctx, newTestMBA(clientID, "MBA-2025-001")))
	s.Require().NoError(s.store.Create(s.ctx, newTestMBA(clientID, "MBA-2025-002")))

	count, err := s.store.CountByNumberPrefix(s.ctx, models.NumberPrefix(2025))
	s.Require().NoError(err)
	s.Equal(2, count)

	count, err = s.store.CountByNumberPrefix(s.ctx, models.NumberPrefix(2023))
	s.Require().NoError(err)
	s.Equal(0, count)
}

func (s *MBAStoreSuite) TestUpdateAndDelete() {
	mba := newTestMBA(id.ClientID(uuid.New()), "MBA-2025-001")
	s.Require().NoError(s.store.Create(s.ctx, mba))

	mba.Status = models.StatusActive
	s.Require().NoError(s.store.Update(s.ctx, mba))
	got, err := s.store.FindByID(s.ctx, mba.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusActive, got.Status)

	s.Require().NoError(s.store.Delete(s.ctx, mba.ID))
	_, err = s.store.FindByID(s.ctx, mba.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}
