// Package domain defines typed identifiers shared across modules. Distinct ID
// types prevent cross-entity assignment at compile time; parse helpers enforce
// the "valid, non-empty, non-nil UUID" invariant at trust boundaries.
package domain

import (
	"github.com/google/uuid"

	dErrors "mbatrack/pkg/domain-errors"
)

type (
	ClientID      uuid.UUID
	MBAID         uuid.UUID
	InvoiceID     uuid.UUID
	AllocationID  uuid.UUID
	SpendEntryID  uuid.UUID
	AuditRecordID uuid.UUID
)

func (id ClientID) String() string      { return uuid.UUID(id).String() }
func (id MBAID) String() string         { return uuid.UUID(id).String() }
func (id InvoiceID) String() string     { return uuid.UUID(id).String() }
func (id AllocationID) String() string  { return uuid.UUID(id).String() }
func (id SpendEntryID) String() string  { return uuid.UUID(id).String() }
func (id AuditRecordID) String() string { return uuid.UUID(id).String() }

func (id ClientID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id MBAID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }
func (id InvoiceID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id AllocationID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id SpendEntryID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id AuditRecordID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// MarshalText/UnmarshalText give every typed ID the canonical UUID wire form.
func (id ClientID) MarshalText() ([]byte, error)  { return []byte(id.String()), nil }
func (id *ClientID) UnmarshalText(b []byte) error { return unmarshalID((*uuid.UUID)(id), b) }

func (id MBAID) MarshalText() ([]byte, error)  { return []byte(id.String()), nil }
func (id *MBAID) UnmarshalText(b []byte) error { return unmarshalID((*uuid.UUID)(id), b) }

func (id InvoiceID) MarshalText() ([]byte, error)  { return []byte(id.String()), nil }
func (id *InvoiceID) UnmarshalText(b []byte) error { return unmarshalID((*uuid.UUID)(id), b) }

func (id AllocationID) MarshalText() ([]byte, error)  { return []byte(id.String()), nil }
func (id *AllocationID) UnmarshalText(b []byte) error { return unmarshalID((*uuid.UUID)(id), b) }

func (id SpendEntryID) MarshalText() ([]byte, error)  { return []byte(id.String()), nil }
func (id *SpendEntryID) UnmarshalText(b []byte) error { return unmarshalID((*uuid.UUID)(id), b) }

func (id AuditRecordID) MarshalText() ([]byte, error)  { return []byte(id.String()), nil }
func (id *AuditRecordID) UnmarshalText(b []byte) error { return unmarshalID((*uuid.UUID)(id), b) }

func unmarshalID(dst *uuid.UUID, b []byte) error {
	u, err := parseUUID(string(b))
	if err != nil {
		return err
	}
	*dst = u
	return nil
}

func ParseClientID(s string) (ClientID, error) {
	u, err := parseUUID(s)
	return ClientID(u), err
}

func ParseMBAID(s string) (MBAID, error) {
	u, err := parseUUID(s)
	return MBAID(u), err
}

func ParseInvoiceID(s string) (InvoiceID, error) {
	u, err := parseUUID(s)
	return InvoiceID(u), err
}

func ParseAllocationID(s string) (AllocationID, error) {
	u, err := parseUUID(s)
	return AllocationID(u), err
}

func ParseSpendEntryID(s string) (SpendEntryID, error) {
	u, err := parseUUID(s)
	return SpendEntryID(u), err
}

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "id is not a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be the nil UUID")
	}
	return u, nil
}
