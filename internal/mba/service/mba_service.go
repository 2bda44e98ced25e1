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

// CreateMBAParams carries the normalized inputs for a new agreement.
type CreateMBAParams struct {
	ClientID  id.ClientID
	Name      string
	Budget    decimal.Decimal
	Currency  string
	StartDate time.Time
	EndDate   time.Time
}

// CreateMBA assigns the next sequential agreement number for the current year
// and creates the MBA as a draft. Number generation and insert run in one
// transaction so concurrent creates cannot both claim the same sequence.
func (s *Service) CreateMBA(ctx context.Context, params CreateMBAParams) (*models.MBA, error) {
	if _, err := s.clients.FindByID(ctx, params.ClientID); err != nil {
		return nil, wrapNotFound(err, "client")
	}

	now := requestcontext.Now(ctx)
	var mba *models.MBA
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		count, err := s.mbas.CountByNumberPrefix(txCtx, models.NumberPrefix(now.Year()))
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to count mba numbers")
		}

		m, err := models.NewMBA(
			id.MBAID(uuid.New()),
			params.ClientID,
			models.FormatNumber(now.Year(), count+1),
			strings.TrimSpace(params.Name),
			params.Budget,
			params.Currency,
			params.StartDate,
			params.EndDate,
			now,
		)
		if err != nil {
			return asValidation(err)
		}

		if err := s.mbas.Create(txCtx, m); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.New(dErrors.CodeConflict, "mba number already taken")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create mba")
		}
		mba = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, audit.Entry{
		EntityType: audit.EntityMBA,
		EntityID:   mba.ID.String(),
		Action:     audit.ActionCreate,
	})
	return mba, nil
}

func (s *Service) ListMBAs(ctx context.Context, clientID *id.ClientID) ([]models.MBA, error) {
	mbas, err := s.mbas.List(ctx, clientID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list mbas")
	}
	return mbas, nil
}

// MBADetails bundles an agreement with its financial summary.
type MBADetails struct {
	MBA     *models.MBA         `json:"mba"`
	Summary MBASummary          `json:"summary"`
	Spend   []models.SpendEntry `json:"spend_entries"`
}

func (s *Service) GetMBA(ctx context.Context, mbaID id.MBAID) (*MBADetails, error) {
	mba, err := s.mbas.FindByID(ctx, mbaID)
	if err != nil {
		return nil, wrapNotFound(err, "mba")
	}

	entries, err := s.spend.ListByMBA(ctx, mbaID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load spend entries")
	}
	allocs, err := s.invoices.ListAllocationsByMBA(ctx, mbaID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load allocations")
	}
	types, err := s.invoiceTypes(ctx)
	if err != nil {
		return nil, err
	}

	return &MBADetails{
		MBA:     mba,
		Summary: ComputeMBASummary(mba, allocs, types, entries),
		Spend:   entries,
	}, nil
}

// UpdateMBAStatus transitions the agreement. Setting the status it already
// has is a no-op: nothing is written and nothing is audited.
func (s *Service) UpdateMBAStatus(ctx context.Context, mbaID id.MBAID, status models.Status) (*models.MBA, error) {
	if !status.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "invalid mba status")
	}

	mba, err := s.mbas.FindByID(ctx, mbaID)
	if err != nil {
		return nil, wrapNotFound(err, "mba")
	}
	if mba.Status == status {
		return mba, nil
	}

	before := mba.Snapshot()
	mba.ApplyStatus(status, requestcontext.Now(ctx))
	if err := s.mbas.Update(ctx, mba); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update mba status")
	}

	s.record(ctx, audit.Entry{
		EntityType: audit.EntityMBA,
		EntityID:   mba.ID.String(),
		Action:     audit.ActionUpdate,
		Changes:    audit.ComputeChanges(before, mba.Snapshot(), models.MBAStatusAuditFields),
	})
	return mba, nil
}

// UpdateClientPayment records whether and how the client paid the agreement.
func (s *Service) UpdateClientPayment(ctx context.Context, mbaID id.MBAID, paid bool, paidDate *time.Time, paidAmount *decimal.Decimal) (*models.MBA, error) {
	if paid && paidAmount != nil && !paidAmount.IsPositive() {
		return nil, dErrors.New(dErrors.CodeValidation, "paid amount must be positive")
	}

	mba, err := s.mbas.FindByID(ctx, mbaID)
	if err != nil {
		return nil, wrapNotFound(err, "mba")
	}

	before := mba.Snapshot()
	mba.ApplyClientPayment(paid, paidDate, paidAmount, requestcontext.Now(ctx))
	if err := s.mbas.Update(ctx, mba); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update client payment")
	}

	s.record(ctx, audit.Entry{
		EntityType: audit.EntityMBA,
		EntityID:   mba.ID.String(),
		Action:     audit.ActionUpdate,
		Changes:    audit.ComputeChanges(before, mba.Snapshot(), models.MBAPaymentAuditFields),
	})
	return mba, nil
}

func (s *Service) DeleteMBA(ctx context.Context, mbaID id.MBAID) error {
	mba, err := s.mbas.FindByID(ctx, mbaID)
	if err != nil {
		return wrapNotFound(err, "mba")
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		return s.deleteMBACascade(txCtx, mbaID)
	})
	if err != nil {
		return err
	}

	s.record(ctx, audit.Entry{
		EntityType: audit.EntityMBA,
		EntityID:   mba.ID.String(),
		Action:     audit.ActionDelete,
	})
	return nil
}

func (s *Service) deleteMBACascade(ctx context.Context, mbaID id.MBAID) error {
	if err := s.spend.DeleteByMBA(ctx, mbaID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete spend entries")
	}
	if err := s.invoices.DeleteAllocationsByMBA(ctx, mbaID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete allocations")
	}
	if err := s.mbas.Delete(ctx, mbaID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete mba")
	}
	return nil
}

func (s *Service) invoiceTypes(ctx context.Context) (map[id.InvoiceID]models.InvoiceType, error) {
	invoices, err := s.invoices.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list invoices")
	}
	types := make(map[id.InvoiceID]models.InvoiceType, len(invoices))
	for _, invoice := range invoices {
		types[invoice.ID] = invoice.Type
	}
	return types, nil
}
