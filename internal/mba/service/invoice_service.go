package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"mbatrack/internal/audit"
	"mbatrack/internal/mba/models"
	id "mbatrack/pkg/domain"
	dErrors "mbatrack/pkg/domain-errors"
	"mbatrack/pkg/platform/sentinel"
	"mbatrack/pkg/requestcontext"
)

// AllocationParams assigns part of a new invoice to one MBA.
type AllocationParams struct {
	MBAID  id.MBAID
	Amount decimal.Decimal
}

// CreateInvoiceParams carries the inputs for a new vendor invoice or credit
// note, with its allocations.
type CreateInvoiceParams struct {
	Type        models.InvoiceType
	Vendor      string
	Number      string
	InvoiceDate time.Time
	TotalAmount decimal.Decimal
	Currency    string
	Notes       string
	Allocations []AllocationParams
}

// InvoiceDetails bundles an invoice with its allocations and summary.
type InvoiceDetails struct {
	Invoice     *models.Invoice            `json:"invoice"`
	Allocations []models.InvoiceAllocation `json:"allocations"`
	Summary     InvoiceSummary             `json:"summary"`
}

// CreateInvoice writes the invoice and all its allocations in one
// transaction; either everything lands or nothing does.
func (s *Service) CreateInvoice(ctx context.Context, params CreateInvoiceParams) (*InvoiceDetails, error) {
	allocated := decimal.Zero
	for _, alloc := range params.Allocations {
		if _, err := s.mbas.FindByID(ctx, alloc.MBAID); err != nil {
			return nil, wrapNotFound(err, "mba")
		}
		allocated = allocated.Add(alloc.Amount)
	}
	if allocated.GreaterThan(params.TotalAmount) {
		return nil, dErrors.New(dErrors.CodeValidation, "allocations exceed invoice amount")
	}

	now := requestcontext.Now(ctx)
	invoice, err := models.NewInvoice(
		id.InvoiceID(uuid.New()),
		params.Type,
		strings.TrimSpace(params.Vendor),
		strings.TrimSpace(params.Number),
		params.InvoiceDate,
		params.TotalAmount,
		params.Currency,
		strings.TrimSpace(params.Notes),
		now,
	)
	if err != nil {
		return nil, asValidation(err)
	}

	allocations := make([]models.InvoiceAllocation, 0, len(params.Allocations))
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.invoices.Create(txCtx, invoice); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.New(dErrors.CodeConflict, "invoice number already used for this vendor")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create invoice")
		}
		for _, params := range params.Allocations {
			alloc, err := models.NewInvoiceAllocation(
				id.AllocationID(uuid.New()), invoice.ID, params.MBAID, params.Amount, now)
			if err != nil {
				return asValidation(err)
			}
			if err := s.invoices.CreateAllocation(txCtx, alloc); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create allocation")
			}
			allocations = append(allocations, *alloc)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, audit.Entry{
		EntityType: audit.EntityInvoice,
		EntityID:   invoice.ID.String(),
		Action:     audit.ActionCreate,
	})
	return &InvoiceDetails{
		Invoice:     invoice,
		Allocations: allocations,
		Summary:     ComputeInvoiceSummary(invoice, allocations),
	}, nil
}

func (s *Service) ListInvoices(ctx context.Context) ([]models.Invoice, error) {
	invoices, err := s.invoices.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list invoices")
	}
	return invoices, nil
}

func (s *Service) GetInvoice(ctx context.Context, invoiceID id.InvoiceID) (*InvoiceDetails, error) {
	invoice, err := s.invoices.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, wrapNotFound(err, "invoice")
	}
	allocations, err := s.invoices.ListAllocationsByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load allocations")
	}
	return &InvoiceDetails{
		Invoice:     invoice,
		Allocations: allocations,
		Summary:     ComputeInvoiceSummary(invoice, allocations),
	}, nil
}

// SetInvoicePaid flips the payment state, auditing the isPaid/paidDate diff.
func (s *Service) SetInvoicePaid(ctx context.Context, invoiceID id.InvoiceID, paid bool, paidDate *time.Time) (*models.Invoice, error) {
	invoice, err := s.invoices.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, wrapNotFound(err, "invoice")
	}

	before := invoice.Snapshot()
	invoice.ApplyPaid(paid, paidDate, requestcontext.Now(ctx))
	if err := s.invoices.Update(ctx, invoice); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update invoice")
	}

	s.record(ctx, audit.Entry{
		EntityType: audit.EntityInvoice,
		EntityID:   invoice.ID.String(),
		Action:     audit.ActionUpdate,
		Changes:    audit.ComputeChanges(before, invoice.Snapshot(), models.InvoicePaidAuditFields),
	})
	return invoice, nil
}

func (s *Service) DeleteInvoice(ctx context.Context, invoiceID id.InvoiceID) error {
	invoice, err := s.invoices.FindByID(ctx, invoiceID)
	if err != nil {
		return wrapNotFound(err, "invoice")
	}

	if err := s.invoices.Delete(ctx, invoiceID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete invoice")
	}

	s.record(ctx, audit.Entry{
		EntityType: audit.EntityInvoice,
		EntityID:   invoice.ID.String(),
		Action:     audit.ActionDelete,
	})
	return nil
}
