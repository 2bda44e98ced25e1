package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"mbatrack/internal/audit"
	id "mbatrack/pkg/domain"
	txcontext "mbatrack/pkg/platform/tx"
)

// Store persists audit records in the audit_records table. The changes column
// is JSONB holding the field -> {old,new} mapping, NULL when absent.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// Create inserts one audit record, assigning its ID and CreatedAt.
func (s *Store) Create(ctx context.Context, record *audit.Record) error {
	if record.ID.IsNil() {
		record.ID = id.AuditRecordID(uuid.New())
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	var changes []byte
	if record.Changes != nil {
		b, err := json.Marshal(record.Changes)
		if err != nil {
			return fmt.Errorf("marshal audit changes: %w", err)
		}
		changes = b
	}

	query := `
		INSERT INTO audit_records (id, entity_type, entity_id, action, changes, user_id, user_email, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(record.ID),
		string(record.EntityType),
		record.EntityID,
		string(record.Action),
		changes,
		nullString(record.UserID),
		nullString(record.UserEmail),
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}
	return nil
}

// ListRecent returns the limit most recent records, newest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Record, error) {
	query := `
		SELECT id, entity_type, entity_id, action, changes, user_id, user_email, created_at
		FROM audit_records
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit records: %w", err)
	}
	defer rows.Close()

	var records []audit.Record
	for rows.Next() {
		var (
			record    audit.Record
			recordID  uuid.UUID
			changes   []byte
			userID    sql.NullString
			userEmail sql.NullString
		)
		err := rows.Scan(
			&recordID,
			&record.EntityType,
			&record.EntityID,
			&record.Action,
			&changes,
			&userID,
			&userEmail,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}

		record.ID = id.AuditRecordID(recordID)
		record.UserID = userID.String
		record.UserEmail = userEmail.String
		if len(changes) > 0 {
			if err := json.Unmarshal(changes, &record.Changes); err != nil {
				return nil, fmt.Errorf("unmarshal audit changes: %w", err)
			}
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit records: %w", err)
	}
	return records, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
