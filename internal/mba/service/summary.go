package service

import (
	"context"

	"github.com/shopspring/decimal"

	"mbatrack/internal/mba/models"
	id "mbatrack/pkg/domain"
	dErrors "mbatrack/pkg/domain-errors"
)

// MBASummary is the financial rollup of one agreement.
//
// Invoiced is net of credit notes. Variance is spend minus invoiced: positive
// means the platforms report more spend than the vendors have billed.
type MBASummary struct {
	Invoiced        decimal.Decimal                     `json:"invoiced"`
	Spend           decimal.Decimal                     `json:"spend"`
	Remaining       decimal.Decimal                     `json:"remaining"`
	Variance        decimal.Decimal                     `json:"variance"`
	PercentUsed     float64                             `json:"percent_used"`
	SpendByPlatform map[models.Platform]decimal.Decimal `json:"spend_by_platform"`
}

// ComputeMBASummary reduces an agreement's allocations and spend entries to
// its summary. Pure; all loading happens at the call site.
func ComputeMBASummary(
	mba *models.MBA,
	allocations []models.InvoiceAllocation,
	invoiceTypes map[id.InvoiceID]models.InvoiceType,
	entries []models.SpendEntry,
) MBASummary {
	invoiced := decimal.Zero
	for _, alloc := range allocations {
		invoiced = invoiced.Add(alloc.SignedAmount(invoiceTypes[alloc.InvoiceID]))
	}

	spend := decimal.Zero
	byPlatform := make(map[models.Platform]decimal.Decimal)
	for _, entry := range entries {
		spend = spend.Add(entry.Amount)
		byPlatform[entry.Platform] = byPlatform[entry.Platform].Add(entry.Amount)
	}

	percentUsed := 0.0
	if mba.Budget.IsPositive() {
		percentUsed = invoiced.Div(mba.Budget).Mul(decimal.NewFromInt(100)).InexactFloat64()
	}

	return MBASummary{
		Invoiced:        invoiced,
		Spend:           spend,
		Remaining:       mba.Budget.Sub(invoiced),
		Variance:        spend.Sub(invoiced),
		PercentUsed:     percentUsed,
		SpendByPlatform: byPlatform,
	}
}

// InvoiceSummary splits an invoice's amount into the part assigned to MBAs
// and the remainder.
type InvoiceSummary struct {
	Allocated   decimal.Decimal `json:"allocated"`
	Unallocated decimal.Decimal `json:"unallocated"`
}

func ComputeInvoiceSummary(invoice *models.Invoice, allocations []models.InvoiceAllocation) InvoiceSummary {
	allocated := decimal.Zero
	for _, alloc := range allocations {
		allocated = allocated.Add(alloc.Amount)
	}
	return InvoiceSummary{
		Allocated:   allocated,
		Unallocated: invoice.TotalAmount.Sub(allocated),
	}
}

// DashboardStats aggregates every ACTIVE agreement. A paid agreement with no
// recorded amount counts at its full budget; outstanding is the budget sum of
// the unpaid ones, so paying an agreement always zeroes its outstanding share.
type DashboardStats struct {
	TotalMBAs             int             `json:"total_mbas"`
	ActiveMBAs            int             `json:"active_mbas"`
	ClientCount           int             `json:"client_count"`
	TotalBudget           decimal.Decimal `json:"total_budget"`
	TotalInvoiced         decimal.Decimal `json:"total_invoiced"`
	TotalSpend            decimal.Decimal `json:"total_spend"`
	Variance              decimal.Decimal `json:"variance"`
	Remaining             decimal.Decimal `json:"remaining"`
	ClientPaidCount       int             `json:"client_paid_count"`
	ClientPaidTotal       decimal.Decimal `json:"client_paid_total"`
	ClientPaidOutstanding decimal.Decimal `json:"client_paid_outstanding"`
}

// ComputeDashboardStats reduces the full dataset to agency-wide numbers over
// ACTIVE MBAs only. Draft and closed agreements are excluded entirely, their
// allocations and spend with them.
func ComputeDashboardStats(
	clients []models.Client,
	mbas []models.MBA,
	allocations []models.InvoiceAllocation,
	invoiceTypes map[id.InvoiceID]models.InvoiceType,
	entries []models.SpendEntry,
) DashboardStats {
	active := make(map[id.MBAID]bool)
	stats := DashboardStats{
		TotalMBAs:             len(mbas),
		ClientCount:           len(clients),
		TotalBudget:           decimal.Zero,
		TotalInvoiced:         decimal.Zero,
		TotalSpend:            decimal.Zero,
		Variance:              decimal.Zero,
		Remaining:             decimal.Zero,
		ClientPaidTotal:       decimal.Zero,
		ClientPaidOutstanding: decimal.Zero,
	}

	for _, mba := range mbas {
		if !mba.IsActive() {
			continue
		}
		active[mba.ID] = true
		stats.ActiveMBAs++
		stats.TotalBudget = stats.TotalBudget.Add(mba.Budget)
		if mba.ClientPaid {
			stats.ClientPaidCount++
			paid := mba.Budget
			if mba.ClientPaidAmount != nil {
				paid = *mba.ClientPaidAmount
			}
			stats.ClientPaidTotal = stats.ClientPaidTotal.Add(paid)
		} else {
			stats.ClientPaidOutstanding = stats.ClientPaidOutstanding.Add(mba.Budget)
		}
	}

	for _, alloc := range allocations {
		if active[alloc.MBAID] {
			stats.TotalInvoiced = stats.TotalInvoiced.Add(alloc.SignedAmount(invoiceTypes[alloc.InvoiceID]))
		}
	}
	for _, entry := range entries {
		if active[entry.MBAID] {
			stats.TotalSpend = stats.TotalSpend.Add(entry.Amount)
		}
	}

	stats.Variance = stats.TotalSpend.Sub(stats.TotalInvoiced)
	stats.Remaining = stats.TotalBudget.Sub(stats.TotalInvoiced)
	return stats
}

// Dashboard loads everything the agency-wide rollup needs and reduces it.
func (s *Service) Dashboard(ctx context.Context) (*DashboardStats, error) {
	clients, err := s.clients.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list clients")
	}
	mbas, err := s.mbas.List(ctx, nil)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list mbas")
	}
	allocations, err := s.invoices.ListAllocations(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list allocations")
	}
	types, err := s.invoiceTypes(ctx)
	if err != nil {
		return nil, err
	}
	entries, err := s.spend.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list spend entries")
	}

	stats := ComputeDashboardStats(clients, mbas, allocations, types, entries)
	return &stats, nil
}
