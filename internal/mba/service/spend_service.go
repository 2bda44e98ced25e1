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

// UpsertSpendParams carries one month's actual spend for one platform.
type UpsertSpendParams struct {
	MBAID    id.MBAID
	Platform models.Platform
	Period   time.Time
	Amount   decimal.Decimal
	Notes    string
}

// UpsertSpend writes the spend cell for (MBA, platform, month). A first write
// creates the entry and audits a CREATE; a repeat write updates it and audits
// an UPDATE carrying the amount/notes diff.
func (s *Service) UpsertSpend(ctx context.Context, params UpsertSpendParams) (*models.SpendEntry, error) {
	if _, err := s.mbas.FindByID(ctx, params.MBAID); err != nil {
		return nil, wrapNotFound(err, "mba")
	}

	now := requestcontext.Now(ctx)
	notes := strings.TrimSpace(params.Notes)

	existing, err := s.spend.FindByKey(ctx, params.MBAID, params.Platform, params.Period)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load spend entry")
	}

	if existing == nil {
		entry, err := models.NewSpendEntry(
			id.SpendEntryID(uuid.New()),
			params.MBAID,
			params.Platform,
			params.Period,
			params.Amount,
			notes,
			now,
		)
		if err != nil {
			return nil, asValidation(err)
		}
		if err := s.spend.Create(ctx, entry); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return nil, dErrors.New(dErrors.CodeConflict, "spend entry already exists for this period")
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create spend entry")
		}

		s.record(ctx, audit.Entry{
			EntityType: audit.EntitySpendEntry,
			EntityID:   entry.ID.String(),
			Action:     audit.ActionCreate,
		})
		return entry, nil
	}

	before := existing.Snapshot()
	if err := existing.ApplyUpdate(params.Amount, notes, now); err != nil {
		return nil, asValidation(err)
	}
	if err := s.spend.Update(ctx, existing); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update spend entry")
	}

	s.record(ctx, audit.Entry{
		EntityType: audit.EntitySpendEntry,
		EntityID:   existing.ID.String(),
		Action:     audit.ActionUpdate,
		Changes:    audit.ComputeChanges(before, existing.Snapshot(), models.SpendAuditFields),
	})
	return existing, nil
}
