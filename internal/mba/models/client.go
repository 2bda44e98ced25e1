package models

import (
	"time"

	"mbatrack/internal/audit"
	id "mbatrack/pkg/domain"
	dErrors "mbatrack/pkg/domain-errors"
)

// Client is an agency customer that MBAs are signed with.
//
// Invariants:
//   - Name is non-empty and at most 128 characters
//   - CreatedAt is immutable after construction
type Client struct {
	ID        id.ClientID `json:"id"`
	Name      string      `json:"name"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

func NewClient(clientID id.ClientID, name string, now time.Time) (*Client, error) {
	if err := validateClientName(name); err != nil {
		return nil, err
	}
	return &Client{
		ID:        clientID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func validateClientName(name string) error {
	if name == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "client name cannot be empty")
	}
	if len(name) > 128 {
		return dErrors.New(dErrors.CodeInvariantViolation, "client name must be 128 characters or less")
	}
	return nil
}

// Rename validates and applies a name change.
func (c *Client) Rename(name string, now time.Time) error {
	if err := validateClientName(name); err != nil {
		return err
	}
	c.Name = name
	c.UpdatedAt = now
	return nil
}

// ClientAuditFields is the allow-list of client fields the audit trail tracks.
var ClientAuditFields = []string{"name"}

// Snapshot captures the audited fields of the client.
func (c *Client) Snapshot() audit.Snapshot {
	return audit.Snapshot{
		"name": c.Name,
	}
}
