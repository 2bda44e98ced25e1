package handler

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	dErrors "mbatrack/pkg/domain-errors"
)

const (
	dateLayout  = "2006-01-02"
	monthLayout = "2006-01"
)

func parseDate(value, field string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, dErrors.New(dErrors.CodeValidation, field+" must be a YYYY-MM-DD date")
	}
	return t, nil
}

// parsePeriod accepts a month (YYYY-MM) or any date inside it.
func parsePeriod(value string) (time.Time, error) {
	if t, err := time.Parse(monthLayout, value); err == nil {
		return t, nil
	}
	if t, err := time.Parse(dateLayout, value); err == nil {
		return t, nil
	}
	return time.Time{}, dErrors.New(dErrors.CodeValidation, "period must be a YYYY-MM month")
}

type createClientRequest struct {
	Name string `json:"name"`
}

func (r *createClientRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
}

func (r *createClientRequest) Validate() error {
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	return nil
}

type updateClientRequest struct {
	Name string `json:"name"`
}

func (r *updateClientRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
}

func (r *updateClientRequest) Validate() error {
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	return nil
}

type createMBARequest struct {
	ClientID  string          `json:"client_id"`
	Name      string          `json:"name"`
	Budget    decimal.Decimal `json:"budget"`
	Currency  string          `json:"currency"`
	StartDate string          `json:"start_date"`
	EndDate   string          `json:"end_date"`
}

func (r *createMBARequest) Normalize() {
	r.ClientID = strings.TrimSpace(r.ClientID)
	r.Name = strings.TrimSpace(r.Name)
	r.Currency = strings.ToUpper(strings.TrimSpace(r.Currency))
	r.StartDate = strings.TrimSpace(r.StartDate)
	r.EndDate = strings.TrimSpace(r.EndDate)
}

func (r *createMBARequest) Validate() error {
	switch {
	case r.ClientID == "":
		return dErrors.New(dErrors.CodeValidation, "client_id is required")
	case r.Name == "":
		return dErrors.New(dErrors.CodeValidation, "name is required")
	case !r.Budget.IsPositive():
		return dErrors.New(dErrors.CodeValidation, "budget must be positive")
	case r.Currency == "":
		return dErrors.New(dErrors.CodeValidation, "currency is required")
	case r.StartDate == "":
		return dErrors.New(dErrors.CodeValidation, "start_date is required")
	case r.EndDate == "":
		return dErrors.New(dErrors.CodeValidation, "end_date is required")
	}
	return nil
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (r *updateStatusRequest) Normalize() {
	r.Status = strings.ToUpper(strings.TrimSpace(r.Status))
}

func (r *updateStatusRequest) Validate() error {
	if r.Status == "" {
		return dErrors.New(dErrors.CodeValidation, "status is required")
	}
	return nil
}

type updatePaymentRequest struct {
	Paid       bool             `json:"paid"`
	PaidDate   *string          `json:"paid_date,omitempty"`
	PaidAmount *decimal.Decimal `json:"paid_amount,omitempty"`
}

func (r *updatePaymentRequest) Validate() error {
	if r.Paid && r.PaidDate == nil {
		return dErrors.New(dErrors.CodeValidation, "paid_date is required when marking paid")
	}
	return nil
}

type upsertSpendRequest struct {
	Platform string          `json:"platform"`
	Period   string          `json:"period"`
	Amount   decimal.Decimal `json:"amount"`
	Notes    string          `json:"notes"`
}

func (r *upsertSpendRequest) Normalize() {
	r.Platform = strings.ToUpper(strings.TrimSpace(r.Platform))
	r.Period = strings.TrimSpace(r.Period)
	r.Notes = strings.TrimSpace(r.Notes)
}

func (r *upsertSpendRequest) Validate() error {
	switch {
	case r.Platform == "":
		return dErrors.New(dErrors.CodeValidation, "platform is required")
	case r.Period == "":
		return dErrors.New(dErrors.CodeValidation, "period is required")
	case r.Amount.IsNegative():
		return dErrors.New(dErrors.CodeValidation, "amount cannot be negative")
	}
	return nil
}

type allocationRequest struct {
	MBAID  string          `json:"mba_id"`
	Amount decimal.Decimal `json:"amount"`
}

type createInvoiceRequest struct {
	Type        string              `json:"type"`
	Vendor      string              `json:"vendor"`
	Number      string              `json:"number"`
	InvoiceDate string              `json:"invoice_date"`
	TotalAmount decimal.Decimal     `json:"total_amount"`
	Currency    string              `json:"currency"`
	Notes       string              `json:"notes"`
	Allocations []allocationRequest `json:"allocations"`
}

func (r *createInvoiceRequest) Normalize() {
	r.Type = strings.ToUpper(strings.TrimSpace(r.Type))
	if r.Type == "" {
		r.Type = "INVOICE"
	}
	r.Vendor = strings.TrimSpace(r.Vendor)
	r.Number = strings.TrimSpace(r.Number)
	r.Currency = strings.ToUpper(strings.TrimSpace(r.Currency))
	r.InvoiceDate = strings.TrimSpace(r.InvoiceDate)
	r.Notes = strings.TrimSpace(r.Notes)
}

func (r *createInvoiceRequest) Validate() error {
	switch {
	case r.Vendor == "":
		return dErrors.New(dErrors.CodeValidation, "vendor is required")
	case r.Number == "":
		return dErrors.New(dErrors.CodeValidation, "number is required")
	case r.InvoiceDate == "":
		return dErrors.New(dErrors.CodeValidation, "invoice_date is required")
	case !r.TotalAmount.IsPositive():
		return dErrors.New(dErrors.CodeValidation, "total_amount must be positive")
	case r.Currency == "":
		return dErrors.New(dErrors.CodeValidation, "currency is required")
	}
	for _, alloc := range r.Allocations {
		if strings.TrimSpace(alloc.MBAID) == "" {
			return dErrors.New(dErrors.CodeValidation, "allocation mba_id is required")
		}
		if !alloc.Amount.IsPositive() {
			return dErrors.New(dErrors.CodeValidation, "allocation amount must be positive")
		}
	}
	return nil
}

type setPaidRequest struct {
	Paid     bool    `json:"paid"`
	PaidDate *string `json:"paid_date,omitempty"`
}

func (r *setPaidRequest) Validate() error {
	if r.Paid && r.PaidDate == nil {
		return dErrors.New(dErrors.CodeValidation, "paid_date is required when marking paid")
	}
	return nil
}
