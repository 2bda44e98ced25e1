package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"mbatrack/internal/mba/models"
	id "mbatrack/pkg/domain"
)

type SummarySuite struct {
	suite.Suite
}

func TestSummarySuite(t *testing.T) {
	suite.Run(t, new(SummarySuite))
}

func (s *SummarySuite) mba(budget int64, status models.Status) *models.MBA {
	return &models.MBA{
		ID:       id.MBAID(uuid.New()),
		ClientID: id.ClientID(uuid.New()),
		Number:   "MBA-2025-001",
		Name:     "Campaign",
		Budget:   decimal.NewFromInt(budget),
		Currency: "EUR",
		Status:   status,
	}
}

func alloc(invoiceID id.InvoiceID, mbaID id.MBAID, amount int64) models.InvoiceAllocation {
	return models.InvoiceAllocation{
		ID:        id.AllocationID(uuid.New()),
		InvoiceID: invoiceID,
		MBAID:     mbaID,
		Amount:    decimal.NewFromInt(amount),
	}
}

func entry(mbaID id.MBAID, platform models.Platform, amount int64) models.SpendEntry {
	return models.SpendEntry{
		ID:       id.SpendEntryID(uuid.New()),
		MBAID:    mbaID,
		Platform: platform,
		Period:   time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Amount:   decimal.NewFromInt(amount),
	}
}

func (s *SummarySuite) TestMBASummaryNetsOutCreditNotes() {
	mba := s.mba(10000, models.StatusActive)
	invID := id.InvoiceID(uuid.New())
	cnID := id.InvoiceID(uuid.New())
	types := map[id.InvoiceID]models.InvoiceType{
		invID: models.TypeInvoice,
		cnID:  models.TypeCreditNote,
	}

	summary := ComputeMBASummary(mba,
		[]models.InvoiceAllocation{
			alloc(invID, mba.ID, 4000),
			alloc(cnID, mba.ID, 500),
		},
		types,
		[]models.SpendEntry{
			entry(mba.ID, models.PlatformGoogleAds, 2000),
			entry(mba.ID, models.PlatformMeta, 1800),
		},
	)

	s.True(summary.Invoiced.Equal(decimal.NewFromInt(3500)), "4000 invoiced minus 500 credited")
	s.True(summary.Spend.Equal(decimal.NewFromInt(3800)))
	s.True(summary.Remaining.Equal(decimal.NewFromInt(6500)))
	s.True(summary.Variance.Equal(decimal.NewFromInt(300)), "spend exceeds billing by 300")
	s.InDelta(35.0, summary.PercentUsed, 0.001)
	s.True(summary.SpendByPlatform[models.PlatformGoogleAds].Equal(decimal.NewFromInt(2000)))
	s.True(summary.SpendByPlatform[models.PlatformMeta].Equal(decimal.NewFromInt(1800)))
}

func (s *SummarySuite) TestMBASummaryEmpty() {
	mba := s.mba(10000, models.StatusDraft)
	summary := ComputeMBASummary(mba, nil, nil, nil)

	s.True(summary.Invoiced.IsZero())
	s.True(summary.Spend.IsZero())
	s.True(summary.Remaining.Equal(mba.Budget))
	s.Zero(summary.PercentUsed)
	s.Empty(summary.SpendByPlatform)
}

func (s *SummarySuite) TestInvoiceSummary() {
	invoice := &models.Invoice{
		ID:          id.InvoiceID(uuid.New()),
		Type:        models.TypeInvoice,
		TotalAmount: decimal.NewFromInt(1000),
	}
	summary := ComputeInvoiceSummary(invoice, []models.InvoiceAllocation{
		alloc(invoice.ID, id.MBAID(uuid.New()), 300),
		alloc(invoice.ID, id.MBAID(uuid.New()), 450),
	})

	s.True(summary.Allocated.Equal(decimal.NewFromInt(750)))
	s.True(summary.Unallocated.Equal(decimal.NewFromInt(250)))
}

func (s *SummarySuite) TestDashboardIgnoresInactiveMBAs() {
	active := s.mba(10000, models.StatusActive)
	paidAmount := decimal.NewFromInt(10000)
	paidDate := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	active.ClientPaid = true
	active.ClientPaidDate = &paidDate
	active.ClientPaidAmount = &paidAmount

	closed := s.mba(99999, models.StatusClosed)

	invID := id.InvoiceID(uuid.New())
	types := map[id.InvoiceID]models.InvoiceType{invID: models.TypeInvoice}

	stats := ComputeDashboardStats(
		[]models.Client{{ID: active.ClientID, Name: "Acme"}},
		[]models.MBA{*active, *closed},
		[]models.InvoiceAllocation{
			alloc(invID, active.ID, 2500),
			alloc(invID, closed.ID, 7000),
		},
		types,
		[]models.SpendEntry{
			entry(active.ID, models.PlatformMeta, 3000),
			entry(closed.ID, models.PlatformMeta, 8000),
		},
	)

	s.Equal(2, stats.TotalMBAs)
	s.Equal(1, stats.ActiveMBAs)
	s.Equal(1, stats.ClientCount)
	s.True(stats.TotalBudget.Equal(decimal.NewFromInt(10000)))
	s.True(stats.TotalInvoiced.Equal(decimal.NewFromInt(2500)))
	s.True(stats.TotalSpend.Equal(decimal.NewFromInt(3000)))
	s.True(stats.Variance.Equal(decimal.NewFromInt(500)))
	s.True(stats.Remaining.Equal(decimal.NewFromInt(7500)))
	s.Equal(1, stats.ClientPaidCount)
	s.True(stats.ClientPaidTotal.Equal(decimal.NewFromInt(10000)))
	s.True(stats.ClientPaidOutstanding.IsZero())
}

func (s *SummarySuite) TestDashboardClientPaidStats() {
	paidWithAmount := s.mba(10000, models.StatusActive)
	partial := decimal.NewFromInt(6000)
	paidWithAmount.ClientPaid = true
	paidWithAmount.ClientPaidAmount = &partial

	paidNoAmount := s.mba(8000, models.StatusActive)
	paidNoAmount.ClientPaid = true

	unpaid := s.mba(5000, models.StatusActive)

	stats := ComputeDashboardStats(nil,
		[]models.MBA{*paidWithAmount, *paidNoAmount, *unpaid}, nil, nil, nil)

	s.Equal(2, stats.ClientPaidCount)
	s.True(stats.ClientPaidTotal.Equal(decimal.NewFromInt(14000)),
		"paid without a recorded amount counts at full budget: 6000 + 8000")
	s.True(stats.ClientPaidOutstanding.Equal(decimal.NewFromInt(5000)),
		"only the unpaid agreement's budget is outstanding")
}
