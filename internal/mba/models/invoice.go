package models

import (
	"time"

	"github.com/shopspring/decimal"

	"mbatrack/internal/audit"
	id "mbatrack/pkg/domain"
	dErrors "mbatrack/pkg/domain-errors"
)

// InvoiceType distinguishes vendor charges from credit notes. Credit notes
// subtract from invoiced totals everywhere they are aggregated.
type InvoiceType string

const (
	TypeInvoice    InvoiceType = "INVOICE"
	TypeCreditNote InvoiceType = "CREDIT_NOTE"
)

func (t InvoiceType) IsValid() bool {
	return t == TypeInvoice || t == TypeCreditNote
}

// Invoice is a vendor document. Its amount is spread over MBAs through
// allocations; the unallocated remainder stays on the invoice.
//
// Invariants:
//   - (Vendor, Number) is unique
//   - Type is INVOICE or CREDIT_NOTE
//   - TotalAmount is strictly positive (credit notes carry a positive amount
//     and are negated at aggregation time)
//   - PaidDate is set only while IsPaid is true
type Invoice struct {
	ID          id.InvoiceID    `json:"id"`
	Type        InvoiceType     `json:"type"`
	Vendor      string          `json:"vendor"`
	Number      string          `json:"number"`
	InvoiceDate time.Time       `json:"invoice_date"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Currency    string          `json:"currency"`
	IsPaid      bool            `json:"is_paid"`
	PaidDate    *time.Time      `json:"paid_date,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func NewInvoice(
	invoiceID id.InvoiceID,
	invoiceType InvoiceType,
	vendor string,
	number string,
	invoiceDate time.Time,
	totalAmount decimal.Decimal,
	currency string,
	notes string,
	now time.Time,
) (*Invoice, error) {
	if !invoiceType.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invalid invoice type")
	}
	if vendor == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invoice vendor cannot be empty")
	}
	if number == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invoice number cannot be empty")
	}
	if !totalAmount.IsPositive() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invoice amount must be positive")
	}
	if currency == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invoice currency cannot be empty")
	}
	return &Invoice{
		ID:          invoiceID,
		Type:        invoiceType,
		Vendor:      vendor,
		Number:      number,
		InvoiceDate: invoiceDate,
		TotalAmount: totalAmount,
		Currency:    currency,
		Notes:       notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// SignedAmount is the amount with credit notes negated, the form every
// aggregation sums over.
func (i *Invoice) SignedAmount() decimal.Decimal {
	if i.Type == TypeCreditNote {
		return i.TotalAmount.Neg()
	}
	return i.TotalAmount
}

// ApplyPaid marks the invoice paid or unpaid. Unmarking clears the date.
func (i *Invoice) ApplyPaid(paid bool, paidDate *time.Time, now time.Time) {
	i.IsPaid = paid
	if paid {
		i.PaidDate = paidDate
	} else {
		i.PaidDate = nil
	}
	i.UpdatedAt = now
}

// InvoicePaidAuditFields tracks payment-state flips.
var InvoicePaidAuditFields = []string{"isPaid", "paidDate"}

// Snapshot captures the audited fields of the invoice.
func (i *Invoice) Snapshot() audit.Snapshot {
	return audit.Snapshot{
		"isPaid":   i.IsPaid,
		"paidDate": timePtrValue(i.PaidDate),
	}
}

// InvoiceAllocation assigns part of an invoice's amount to one MBA.
//
// Invariants:
//   - Amount is strictly positive
//   - Immutable after creation; reallocating means delete and recreate
type InvoiceAllocation struct {
	ID        id.AllocationID `json:"id"`
	InvoiceID id.InvoiceID    `json:"invoice_id"`
	MBAID     id.MBAID        `json:"mba_id"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
}

func NewInvoiceAllocation(
	allocationID id.AllocationID,
	invoiceID id.InvoiceID,
	mbaID id.MBAID,
	amount decimal.Decimal,
	now time.Time,
) (*InvoiceAllocation, error) {
	if !amount.IsPositive() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "allocation amount must be positive")
	}
	return &InvoiceAllocation{
		ID:        allocationID,
		InvoiceID: invoiceID,
		MBAID:     mbaID,
		Amount:    amount,
		CreatedAt: now,
	}, nil
}

// SignedAmount applies the parent invoice's sign to the allocation.
func (a *InvoiceAllocation) SignedAmount(invoiceType InvoiceType) decimal.Decimal {
	if invoiceType == TypeCreditNote {
		return a.Amount.Neg()
	}
	return a.Amount
}
