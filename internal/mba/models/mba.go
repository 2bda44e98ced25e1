package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"mbatrack/internal/audit"
	id "mbatrack/pkg/domain"
	dErrors "mbatrack/pkg/domain-errors"
)

// Status is the lifecycle state of an MBA.
type Status string

const (
	StatusDraft  Status = "DRAFT"
	StatusActive Status = "ACTIVE"
	StatusClosed Status = "CLOSED"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusActive, StatusClosed:
		return true
	}
	return false
}

// CanTransitionTo reports whether moving to next is a real state change.
// Any valid status can be reached from any other; same-state transitions
// are rejected so callers never write (or audit) a no-op.
func (s Status) CanTransitionTo(next Status) bool {
	return next.IsValid() && next != s
}

// MBA is a Media Buying Agreement: a signed budget with a client for a
// campaign period.
//
// Invariants:
//   - Number is unique and immutable after construction (MBA-<year>-NNN)
//   - Name is non-empty and at most 128 characters
//   - Budget is strictly positive
//   - EndDate is not before StartDate
//   - Status is one of DRAFT, ACTIVE, CLOSED
//   - ClientPaidDate and ClientPaidAmount are set only while ClientPaid is true
type MBA struct {
	ID               id.MBAID         `json:"id"`
	ClientID         id.ClientID      `json:"client_id"`
	Number           string           `json:"number"`
	Name             string           `json:"name"`
	Budget           decimal.Decimal  `json:"budget"`
	Currency         string           `json:"currency"`
	StartDate        time.Time        `json:"start_date"`
	EndDate          time.Time        `json:"end_date"`
	Status           Status           `json:"status"`
	ClientPaid       bool             `json:"client_paid"`
	ClientPaidDate   *time.Time       `json:"client_paid_date,omitempty"`
	ClientPaidAmount *decimal.Decimal `json:"client_paid_amount,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

func NewMBA(
	mbaID id.MBAID,
	clientID id.ClientID,
	number string,
	name string,
	budget decimal.Decimal,
	currency string,
	startDate time.Time,
	endDate time.Time,
	now time.Time,
) (*MBA, error) {
	if number == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "mba number cannot be empty")
	}
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "mba name cannot be empty")
	}
	if len(name) > 128 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "mba name must be 128 characters or less")
	}
	if !budget.IsPositive() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "mba budget must be positive")
	}
	if currency == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "mba currency cannot be empty")
	}
	if endDate.Before(startDate) {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "mba end date cannot be before start date")
	}
	return &MBA{
		ID:        mbaID,
		ClientID:  clientID,
		Number:    number,
		Name:      name,
		Budget:    budget,
		Currency:  currency,
		StartDate: startDate,
		EndDate:   endDate,
		Status:    StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// FormatNumber builds the sequential agreement number for a year, e.g.
// MBA-2025-007 for the seventh agreement of 2025.
func FormatNumber(year int, sequence int) string {
	return fmt.Sprintf("MBA-%d-%03d", year, sequence)
}

// NumberPrefix is the prefix shared by every agreement number of a year.
func NumberPrefix(year int) string {
	return fmt.Sprintf("MBA-%d-", year)
}

func (m *MBA) IsActive() bool {
	return m.Status == StatusActive
}

// CanSetStatus checks that next is a valid, state-changing transition.
func (m *MBA) CanSetStatus(next Status) error {
	if !next.IsValid() {
		return dErrors.New(dErrors.CodeInvariantViolation, "invalid mba status")
	}
	if !m.Status.CanTransitionTo(next) {
		return dErrors.New(dErrors.CodeInvariantViolation, "mba already has this status")
	}
	return nil
}

// ApplyStatus transitions the MBA. Call CanSetStatus first.
func (m *MBA) ApplyStatus(next Status, now time.Time) {
	m.Status = next
	m.UpdatedAt = now
}

// ApplyClientPayment records (or clears) the client-side payment. Clearing
// the paid flag drops the date and amount with it.
func (m *MBA) ApplyClientPayment(paid bool, paidDate *time.Time, paidAmount *decimal.Decimal, now time.Time) {
	m.ClientPaid = paid
	if paid {
		m.ClientPaidDate = paidDate
		m.ClientPaidAmount = paidAmount
	} else {
		m.ClientPaidDate = nil
		m.ClientPaidAmount = nil
	}
	m.UpdatedAt = now
}

// MBAStatusAuditFields tracks status transitions.
var MBAStatusAuditFields = []string{"status"}

// MBAPaymentAuditFields tracks client payment updates.
var MBAPaymentAuditFields = []string{"clientPaid", "clientPaidDate", "clientPaidAmount"}

// Snapshot captures the audited fields of the MBA.
func (m *MBA) Snapshot() audit.Snapshot {
	return audit.Snapshot{
		"status":           string(m.Status),
		"clientPaid":       m.ClientPaid,
		"clientPaidDate":   timePtrValue(m.ClientPaidDate),
		"clientPaidAmount": moneyPtrValue(m.ClientPaidAmount),
	}
}
