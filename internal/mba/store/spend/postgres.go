package spend

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"mbatrack/internal/mba/models"
	id "mbatrack/pkg/domain"
	"mbatrack/pkg/platform/sentinel"
	txcontext "mbatrack/pkg/platform/tx"
)

// PostgresStore persists spend entries. The (mba_id, platform, period) unique
// constraint backs the upsert the service layer performs.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const spendColumns = `id, mba_id, platform, period, amount, notes, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, entry *models.SpendEntry) error {
	query := `
		INSERT INTO spend_entries (` + spendColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(entry.ID),
		uuid.UUID(entry.MBAID),
		string(entry.Platform),
		entry.Period,
		entry.Amount,
		nullString(entry.Notes),
		entry.CreatedAt,
		entry.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert spend entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByKey(ctx context.Context, mbaID id.MBAID, platform models.Platform, period time.Time) (*models.SpendEntry, error) {
	query := `SELECT ` + spendColumns + ` FROM spend_entries
		WHERE mba_id = $1 AND platform = $2 AND period = $3`
	row := s.execer(ctx).QueryRowContext(ctx, query,
		uuid.UUID(mbaID), string(platform), models.NormalizePeriod(period))
	entry, err := scanSpendEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("select spend entry: %w", err)
	}
	return entry, nil
}

func (s *PostgresStore) Update(ctx context.Context, entry *models.SpendEntry) error {
	query := `
		UPDATE spend_entries
		SET amount = $2, notes = $3, updated_at = $4
		WHERE id = $1
	`
	result, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(entry.ID),
		entry.Amount,
		nullString(entry.Notes),
		entry.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update spend entry: %w", err)
	}
	return requireRowAffected(result)
}

func (s *PostgresStore) ListByMBA(ctx context.Context, mbaID id.MBAID) ([]models.SpendEntry, error) {
	return s.list(ctx, `WHERE mba_id = $1`, uuid.UUID(mbaID))
}

func (s *PostgresStore) List(ctx context.Context) ([]models.SpendEntry, error) {
	return s.list(ctx, ``)
}

func (s *PostgresStore) DeleteByMBA(ctx context.Context, mbaID id.MBAID) error {
	_, err := s.execer(ctx).ExecContext(ctx,
		`DELETE FROM spend_entries WHERE mba_id = $1`, uuid.UUID(mbaID))
	if err != nil {
		return fmt.Errorf("delete spend entries by mba: %w", err)
	}
	return nil
}

func (s *PostgresStore) list(ctx context.Context, where string, args ...any) ([]models.SpendEntry, error) {
	query := `SELECT ` + spendColumns + ` FROM spend_entries ` + where + ` ORDER BY period, platform`
	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query spend entries: %w", err)
	}
	defer rows.Close()

	var entries []models.SpendEntry
	for rows.Next() {
		entry, err := scanSpendEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan spend entry: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate spend entries: %w", err)
	}
	return entries, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSpendEntry(row rowScanner) (*models.SpendEntry, error) {
	var (
		entry   models.SpendEntry
		entryID uuid.UUID
		mbaID   uuid.UUID
		notes   sql.NullString
	)
	err := row.Scan(
		&entryID,
		&mbaID,
		&entry.Platform,
		&entry.Period,
		&entry.Amount,
		&notes,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	entry.ID = id.SpendEntryID(entryID)
	entry.MBAID = id.MBAID(mbaID)
	entry.Notes = notes.String
	// DATE columns come back in the session zone; re-anchor to UTC so the
	// uniqueness key round-trips.
	entry.Period = models.NormalizePeriod(entry.Period)
	return &entry, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func requireRowAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	type sqlState interface{ SQLState() string }
	var state sqlState
	return errors.As(err, &state) && state.SQLState() == "23505"
}
