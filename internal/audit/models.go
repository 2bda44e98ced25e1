// Package audit implements the field-level change trail: computing before/after
// diffs for entity mutations and recording them best-effort.
//
// The recorder never fails visibly. A lost audit record is an accepted outcome;
// the business mutation that triggered it must always complete.
package audit

import (
	"time"

	id "mbatrack/pkg/domain"
)

// EntityType identifies which logical entity kind an audit record describes.
type EntityType string

const (
	EntityClient            EntityType = "Client"
	EntityMBA               EntityType = "MBA"
	EntityInvoice           EntityType = "Invoice"
	EntitySpendEntry        EntityType = "SpendEntry"
	EntityInvoiceAllocation EntityType = "InvoiceAllocation"
)

// Action is the mutation kind a record describes.
type Action string

const (
	ActionCreate Action = "CREATE"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
)

// FieldChange holds the before/after values for one tracked field. Values are
// primitive-comparable (float64, bool, string, nil); snapshot constructors
// normalize decimals and dates before they get here.
type FieldChange struct {
	Old any `json:"old"`
	New any `json:"new"`
}

// Changes maps field name to its before/after pair.
//
// Invariant: a non-nil Changes has at least one entry. Empty diffs normalize
// to nil so callers can test "anything changed?" with a nil check.
type Changes map[string]FieldChange

// Record is one immutable audit trail entry. ID and CreatedAt are assigned by
// the store at persistence time; nothing updates or deletes a record after
// that.
type Record struct {
	ID         id.AuditRecordID `json:"id"`
	EntityType EntityType       `json:"entity_type"`
	EntityID   string           `json:"entity_id"`
	Action     Action           `json:"action"`
	Changes    Changes          `json:"changes,omitempty"`
	UserID     string           `json:"user_id,omitempty"`
	UserEmail  string           `json:"user_email,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}
