package mba

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"mbatrack/internal/mba/models"
	id "mbatrack/pkg/domain"
	"mbatrack/pkg/platform/sentinel"
	txcontext "mbatrack/pkg/platform/tx"
)

// PostgresStore persists MBAs in the mbas table. Deleting an MBA cascades to
// its spend entries and invoice allocations through foreign keys.
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

const mbaColumns = `id, client_id, number, name, budget, currency, start_date, end_date,
	status, client_paid, client_paid_date, client_paid_amount, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, mba *models.MBA) error {
	query := `
		INSERT INTO mbas (` + mbaColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(mba.ID),
		uuid.UUID(mba.ClientID),
		mba.Number,
		mba.Name,
		mba.Budget,
		mba.Currency,
		mba.StartDate,
		mba.EndDate,
		string(mba.Status),
		mba.ClientPaid,
		nullTime(mba.ClientPaidDate),
		nullDecimal(mba.ClientPaidAmount),
		mba.CreatedAt,
		mba.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert mba: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, mbaID id.MBAID) (*models.MBA, error) {
	query := `SELECT ` + mbaColumns + ` FROM mbas WHERE id = $1`
	row := s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(mbaID))
	mba, err := scanMBA(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("select mba: %w", err)
	}
	return mba, nil
}

func (s *PostgresStore) List(ctx context.Context, clientID *id.ClientID) ([]models.MBA, error) {
	query := `SELECT ` + mbaColumns + ` FROM mbas`
	args := []any{}
	if clientID != nil {
		query += ` WHERE client_id = $1`
		args = append(args, uuid.UUID(*clientID))
	}
	query += ` ORDER BY number DESC`

	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query mbas: %w", err)
	}
	defer rows.Close()

	var mbas []models.MBA
	for rows.Next() {
		mba, err := scanMBA(rows)
		if err != nil {
			return nil, fmt.Errorf("scan mba: %w", err)
		}
		mbas = append(mbas, *mba)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mbas: %w", err)
	}
	return mbas, nil
}

func (s *PostgresStore) Update(ctx context.Context, mba *models.MBA) error {
	query := `
		UPDATE mbas
		SET name = $2, budget = $3, currency = $4, start_date = $5, end_date = $6,
		    status = $7, client_paid = $8, client_paid_date = $9, client_paid_amount = $10,
		    updated_at = $11
		WHERE id = $1
	`
	result, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(mba.ID),
		mba.Name,
		mba.Budget,
		mba.Currency,
		mba.StartDate,
		mba.EndDate,
		string(mba.Status),
		mba.ClientPaid,
		nullTime(mba.ClientPaidDate),
		nullDecimal(mba.ClientPaidAmount),
		mba.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update mba: %w", err)
	}
	return requireRowAffected(result)
}

func (s *PostgresStore) Delete(ctx context.Context, mbaID id.MBAID) error {
	result, err := s.execer(ctx).ExecContext(ctx,
		`DELETE FROM mbas WHERE id = $1`, uuid.UUID(mbaID))
	if err != nil {
		return fmt.Errorf("delete mba: %w", err)
	}
	return requireRowAffected(result)
}

func (s *PostgresStore) CountByNumberPrefix(ctx context.Context, prefix string) (int, error) {
	var count int
	err := s.execer(ctx).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM mbas WHERE number LIKE $1 || '%'`, prefix).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count mbas by prefix: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMBA(row rowScanner) (*models.MBA, error) {
	var (
		mba        models.MBA
		mbaID      uuid.UUID
		clientID   uuid.UUID
		paidDate   sql.NullTime
		paidAmount decimal.NullDecimal
	)
	err := row.Scan(
		&mbaID,
		&clientID,
		&mba.Number,
		&mba.Name,
		&mba.Budget,
		&mba.Currency,
		&mba.StartDate,
		&mba.EndDate,
		&mba.Status,
		&mba.ClientPaid,
		&paidDate,
		&paidAmount,
		&mba.CreatedAt,
		&mba.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	mba.ID = id.MBAID(mbaID)
	mba.ClientID = id.ClientID(clientID)
	if paidDate.Valid {
		t := paidDate.Time
		mba.ClientPaidDate = &t
	}
	if paidAmount.Valid {
		d := paidAmount.Decimal
		mba.ClientPaidAmount = &d
	}
	return &mba, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
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

// isUniqueViolation matches Postgres error code 23505 without importing the
// driver's error types into every call site.
func isUniqueViolation(err error) bool {
	type sqlState interface{ SQLState() string }
	var state sqlState
	return errors.As(err, &state) && state.SQLState() == "23505"
}
