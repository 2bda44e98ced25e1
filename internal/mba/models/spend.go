package models

import (
	"time"

	"github.com/shopspring/decimal"

	"mbatrack/internal/audit"
	id "mbatrack/pkg/domain"
	dErrors "mbatrack/pkg/domain-errors"
)

// Platform is the ad platform a spend entry was booked on.
type Platform string

const (
	PlatformGoogleAds Platform = "GOOGLE_ADS"
	PlatformMeta      Platform = "META"
	PlatformBing      Platform = "BING"
	PlatformTikTok    Platform = "TIKTOK"
	PlatformLinkedIn  Platform = "LINKEDIN"
	PlatformOther     Platform = "OTHER"
)

func (p Platform) IsValid() bool {
	switch p {
	case PlatformGoogleAds, PlatformMeta, PlatformBing, PlatformTikTok, PlatformLinkedIn, PlatformOther:
		return true
	}
	return false
}

// SpendEntry is the actual ad spend on one platform for one month of an MBA.
// One entry per (MBA, platform, period); writing the same key again updates
// the existing entry.
//
// Invariants:
//   - Platform is one of the known platforms
//   - Period is normalized to the first day of its month (UTC)
//   - Amount is non-negative
type SpendEntry struct {
	ID        id.SpendEntryID `json:"id"`
	MBAID     id.MBAID        `json:"mba_id"`
	Platform  Platform        `json:"platform"`
	Period    time.Time       `json:"period"`
	Amount    decimal.Decimal `json:"amount"`
	Notes     string          `json:"notes,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func NewSpendEntry(
	entryID id.SpendEntryID,
	mbaID id.MBAID,
	platform Platform,
	period time.Time,
	amount decimal.Decimal,
	notes string,
	now time.Time,
) (*SpendEntry, error) {
	if !platform.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invalid spend platform")
	}
	if amount.IsNegative() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "spend amount cannot be negative")
	}
	return &SpendEntry{
		ID:        entryID,
		MBAID:     mbaID,
		Platform:  platform,
		Period:    NormalizePeriod(period),
		Amount:    amount,
		Notes:     notes,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// NormalizePeriod truncates a date to the first day of its month in UTC,
// the canonical form the uniqueness key is built on.
func NormalizePeriod(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// ApplyUpdate overwrites the mutable fields of an existing entry.
func (e *SpendEntry) ApplyUpdate(amount decimal.Decimal, notes string, now time.Time) error {
	if amount.IsNegative() {
		return dErrors.New(dErrors.CodeInvariantViolation, "spend amount cannot be negative")
	}
	e.Amount = amount
	e.Notes = notes
	e.UpdatedAt = now
	return nil
}

// SpendAuditFields tracks updates to an existing entry.
var SpendAuditFields = []string{"amount", "notes"}

// Snapshot captures the audited fields of the spend entry.
func (e *SpendEntry) Snapshot() audit.Snapshot {
	return audit.Snapshot{
		"amount": moneyValue(e.Amount),
		"notes":  e.Notes,
	}
}
