//go:build integration

package invoice_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"mbatrack/internal/mba/models"
	clientstore "mbatrack/internal/mba/store/client"
	invoicestore "mbatrack/internal/mba/store/invoice"
	mbastore "mbatrack/internal/mba/store/mba"
	id "mbatrack/pkg/domain"
	"mbatrack/pkg/platform/sentinel"
	"mbatrack/pkg/platform/tx"
	"mbatrack/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *invoicestore.PostgresStore
	mbaID    id.MBAID
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
	s.store = invoicestore.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.postgres.TruncateTables(ctx,
		"invoice_allocations", "invoices", "mbas", "clients"))

	now := time.Now()
	clientID := id.ClientID(uuid.New())
	s.Require().NoError(clientstore.NewPostgres(s.postgres.DB).Create(ctx, &models.Client{
		ID:        clientID,
		Name:      "Acme",
		CreatedAt: now,
		UpdatedAt: now,
	}))

	s.mbaID = id.MBAID(uuid.New())
	s.Require().NoError(mbastore.NewPostgres(s.postgres.DB).Create(ctx, &models.MBA{
		ID:        s.mbaID,
		ClientID:  clientID,
		Number:    "MBA-2025-001",
		Name:      "Summer campaign",
		Budget:    decimal.RequireFromString("10000"),
		Currency:  "EUR",
		StartDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC),
		Status:    models.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}))
}

func (s *PostgresStoreSuite) newInvoice(vendor, number string) *models.Invoice {
	now := time.Now()
	return &models.Invoice{
		ID:          id.InvoiceID(uuid.New()),
		Type:        models.TypeInvoice,
		Vendor:      vendor,
		Number:      number,
		InvoiceDate: time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC),
		TotalAmount: decimal.RequireFromString("1000.00"),
		Currency:    "EUR",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (s *PostgresStoreSuite) TestVendorNumberUniqueness() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, s.newInvoice("Google", "INV-1")))
	s.ErrorIs(s.store.Create(ctx, s.newInvoice("Google", "INV-1")), sentinel.ErrConflict)
	s.NoError(s.store.Create(ctx, s.newInvoice("Meta", "INV-1")),
		"same number under another vendor is fine")
}

func (s *PostgresStoreSuite) TestAllocationsInOneTransaction() {
	ctx := context.Background()
	runner := tx.NewSQLRunner(s.postgres.DB)

	invoice := s.newInvoice("Google", "INV-2")
	err := runner.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.Create(ctx, invoice); err != nil {
			return err
		}
		alloc, err := models.NewInvoiceAllocation(
			id.AllocationID(uuid.New()), invoice.ID, s.mbaID,
			decimal.RequireFromString("600"), time.Now())
		if err != nil {
			return err
		}
		return s.store.CreateAllocation(ctx, alloc)
	})
	s.Require().NoError(err)

	allocs, err := s.store.ListAllocationsByInvoice(ctx, invoice.ID)
	s.Require().NoError(err)
	s.Require().Len(allocs, 1)
	s.True(allocs[0].Amount.Equal(decimal.RequireFromString("600")))
}

func (s *PostgresStoreSuite) TestFailedTransactionLeavesNothingBehind() {
	ctx := context.Background()
	runner := tx.NewSQLRunner(s.postgres.DB)

	invoice := s.newInvoice("Google", "INV-3")
	err := runner.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.Create(ctx, invoice); err != nil {
			return err
		}
		// Duplicate of itself forces a unique violation inside the tx.
		return s.store.Create(ctx, s.newInvoice("Google", "INV-3"))
	})
	s.Require().Error(err)

	_, err = s.store.FindByID(ctx, invoice.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestDeleteCascadesAllocations() {
	ctx := context.Background()
	invoice := s.newInvoice("Google", "INV-4")
	s.Require().NoError(s.store.Create(ctx, invoice))

	alloc, err := models.NewInvoiceAllocation(
		id.AllocationID(uuid.New()), invoice.ID, s.mbaID,
		decimal.RequireFromString("250"), time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.store.CreateAllocation(ctx, alloc))

	s.Require().NoError(s.store.Delete(ctx, invoice.ID))

	allocs, err := s.store.ListAllocationsByMBA(ctx, s.mbaID)
	s.Require().NoError(err)
	s.Empty(allocs)
}

func (s *PostgresStoreSuite) TestUpdatePaidRoundTrip() {
	ctx := context.Background()
	invoice := s.newInvoice("Google", "INV-5")
	s.Require().NoError(s.store.Create(ctx, invoice))

	paidDate := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	invoice.ApplyPaid(true, &paidDate, time.Now())
	s.Require().NoError(s.store.Update(ctx, invoice))

	got, err := s.store.FindByID(ctx, invoice.ID)
	s.Require().NoError(err)
	s.True(got.IsPaid)
	s.Require().NotNil(got.PaidDate)
	s.True(got.PaidDate.Equal(paidDate))
}
