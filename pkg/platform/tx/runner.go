package tx

import (
	"context"
	"database/sql"
	"time"

	dErrors "mbatrack/pkg/domain-errors"
)

const defaultTxTimeout = 5 * time.Second

// Runner executes a unit of work atomically. The SQL implementation wraps the
// callback in a database transaction carried through context; the passthrough
// implementation just calls it, which is all the in-memory stores need.
type Runner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// SQLRunner runs callbacks inside a *sql.Tx placed in the context, so every
// tx-aware store touched by the callback joins the same transaction.
type SQLRunner struct {
	db      *sql.DB
	timeout time.Duration
}

func NewSQLRunner(db *sql.DB) *SQLRunner {
	return &SQLRunner{db: db}
}

func (r *SQLRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := r.timeout
	if timeout == 0 {
		timeout = defaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(WithTx(ctx, tx)); err != nil {
		return err
	}
	return tx.Commit()
}

// PassthroughRunner invokes the callback directly with no transaction.
type PassthroughRunner struct{}

func NewPassthroughRunner() *PassthroughRunner {
	return &PassthroughRunner{}
}

func (*PassthroughRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
