package invoice

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

// PostgresStore persists invoices and their allocations. Callers that need
// the invoice and its allocations written atomically run both creates inside
// one transaction via the tx context.
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

const invoiceColumns = `id, type, vendor, number, invoice_date, total_amount, currency,
	is_paid, paid_date, notes, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, invoice *models.Invoice) error {
	query := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(invoice.ID),
		string(invoice.Type),
		invoice.Vendor,
		invoice.Number,
		invoice.InvoiceDate,
		invoice.TotalAmount,
		invoice.Currency,
		invoice.IsPaid,
		nullTime(invoice.PaidDate),
		nullString(invoice.Notes),
		invoice.CreatedAt,
		invoice.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, invoiceID id.InvoiceID) (*models.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`
	row := s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(invoiceID))
	invoice, err := scanInvoice(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("select invoice: %w", err)
	}
	return invoice, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]models.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices ORDER BY invoice_date DESC, number DESC`
	rows, err := s.execer(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query invoices: %w", err)
	}
	defer rows.Close()

	var invoices []models.Invoice
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		invoices = append(invoices, *invoice)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invoices: %w", err)
	}
	return invoices, nil
}

func (s *PostgresStore) Update(ctx context.Context, invoice *models.Invoice) error {
	query := `
		UPDATE invoices
		SET is_paid = $2, paid_date = $3, notes = $4, updated_at = $5
		WHERE id = $1
	`
	result, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(invoice.ID),
		invoice.IsPaid,
		nullTime(invoice.PaidDate),
		nullString(invoice.Notes),
		invoice.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	return requireRowAffected(result)
}

// Delete removes the invoice; allocations go with it via the foreign key.
func (s *PostgresStore) Delete(ctx context.Context, invoiceID id.InvoiceID) error {
	result, err := s.execer(ctx).ExecContext(ctx,
		`DELETE FROM invoices WHERE id = $1`, uuid.UUID(invoiceID))
	if err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	return requireRowAffected(result)
}

func (s *PostgresStore) CreateAllocation(ctx context.Context, alloc *models.InvoiceAllocation) error {
	query := `
		INSERT INTO invoice_allocations (id, invoice_id, mba_id, amount, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(alloc.ID),
		uuid.UUID(alloc.InvoiceID),
		uuid.UUID(alloc.MBAID),
		alloc.Amount,
		alloc.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert invoice allocation: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListAllocationsByInvoice(ctx context.Context, invoiceID id.InvoiceID) ([]models.InvoiceAllocation, error) {
	return s.listAllocations(ctx, `WHERE invoice_id = $1`, uuid.UUID(invoiceID))
}

func (s *PostgresStore) ListAllocationsByMBA(ctx context.Context, mbaID id.MBAID) ([]models.InvoiceAllocation, error) {
	return s.listAllocations(ctx, `WHERE mba_id = $1`, uuid.UUID(mbaID))
}

func (s *PostgresStore) ListAllocations(ctx context.Context) ([]models.InvoiceAllocation, error) {
	return s.listAllocations(ctx, ``)
}

func (s *PostgresStore) DeleteAllocationsByMBA(ctx context.Context, mbaID id.MBAID) error {
	_, err := s.execer(ctx).ExecContext(ctx,
		`DELETE FROM invoice_allocations WHERE mba_id = $1`, uuid.UUID(mbaID))
	if err != nil {
		return fmt.Errorf("delete allocations by mba: %w", err)
	}
	return nil
}

func (s *PostgresStore) listAllocations(ctx context.Context, where string, args ...any) ([]models.InvoiceAllocation, error) {
	query := `SELECT id, invoice_id, mba_id, amount, created_at FROM invoice_allocations ` +
		where + ` ORDER BY created_at`
	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query invoice allocations: %w", err)
	}
	defer rows.Close()

	var allocs []models.InvoiceAllocation
	for rows.Next() {
		var (
			alloc     models.InvoiceAllocation
			allocID   uuid.UUID
			invoiceID uuid.UUID
			mbaID     uuid.UUID
		)
		if err := rows.Scan(&allocID, &invoiceID, &mbaID, &alloc.Amount, &alloc.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan invoice allocation: %w", err)
		}
		alloc.ID = id.AllocationID(allocID)
		alloc.InvoiceID = id.InvoiceID(invoiceID)
		alloc.MBAID = id.MBAID(mbaID)
		allocs = append(allocs, alloc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invoice allocations: %w", err)
	}
	return allocs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvoice(row rowScanner) (*models.Invoice, error) {
	var (
		invoice   models.Invoice
		invoiceID uuid.UUID
		paidDate  sql.NullTime
		notes     sql.NullString
	)
	err := row.Scan(
		&invoiceID,
		&invoice.Type,
		&invoice.Vendor,
		&invoice.Number,
		&invoice.InvoiceDate,
		&invoice.TotalAmount,
		&invoice.Currency,
		&invoice.IsPaid,
		&paidDate,
		&notes,
		&invoice.CreatedAt,
		&invoice.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	invoice.ID = id.InvoiceID(invoiceID)
	invoice.Notes = notes.String
	if paidDate.Valid {
		t := paidDate.Time
		invoice.PaidDate = &t
	}
	return &invoice, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
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
