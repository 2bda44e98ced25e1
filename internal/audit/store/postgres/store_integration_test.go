//go:build integration

package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"mbatrack/internal/audit"
	"mbatrack/internal/audit/store/postgres"
	"mbatrack/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *postgres.Store
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = postgres.New(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "audit_records"))
}

func (s *PostgresStoreSuite) TestCreateAndListRoundTrip() {
	ctx := context.Background()

	record := &audit.Record{
		EntityType: audit.EntityMBA,
		EntityID:   "m1",
		Action:     audit.ActionUpdate,
		Changes: audit.Changes{
			"status": {Old: "DRAFT", New: "ACTIVE"},
		},
		UserEmail: "ops@agency.test",
	}
	s.Require().NoError(s.store.Create(ctx, record))
	s.False(record.ID.IsNil())
	s.False(record.CreatedAt.IsZero())

	got, err := s.store.ListRecent(ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(got, 1)

	s.Equal(audit.EntityMBA, got[0].EntityType)
	s.Equal("m1", got[0].EntityID)
	s.Equal(audit.ActionUpdate, got[0].Action)
	s.Equal("ops@agency.test", got[0].UserEmail)
	s.Empty(got[0].UserID)
	s.Require().NotNil(got[0].Changes)
	s.Equal("DRAFT", got[0].Changes["status"].Old)
	s.Equal("ACTIVE", got[0].Changes["status"].New)
}

func (s *PostgresStoreSuite) TestNullChangesStayAbsent() {
	ctx := context.Background()

	s.Require().NoError(s.store.Create(ctx, &audit.Record{
		EntityType: audit.EntityClient,
		EntityID:   "c1",
		Action:     audit.ActionCreate,
	}))

	got, err := s.store.ListRecent(ctx, 1)
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Nil(got[0].Changes)
}

func (s *PostgresStoreSuite) TestListRecentOrdersNewestFirst() {
	ctx := context.Background()

	for _, entityID := range []string{"a", "b", "c"} {
		s.Require().NoError(s.store.Create(ctx, &audit.Record{
			EntityType: audit.EntitySpendEntry,
			EntityID:   entityID,
			Action:     audit.ActionCreate,
		}))
	}

	got, err := s.store.ListRecent(ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal("c", got[0].EntityID)
	s.Equal("b", got[1].EntityID)
}
