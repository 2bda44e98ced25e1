//go:build integration

package containers

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// PostgresContainer wraps a testcontainers Postgres instance with the project
// schema applied.
type PostgresContainer struct {
	Container testcontainers.Container
	DSN       string
	DB        *sql.DB
}

// Manager shares one Postgres container across a test binary so every suite
// does not pay container startup cost.
type Manager struct {
	mu       sync.Mutex
	postgres *PostgresContainer
}

var manager = &Manager{}

// GetManager returns the process-wide container manager.
func GetManager() *Manager {
	return manager
}

// GetPostgres returns the shared Postgres container, starting it on first use.
func (m *Manager) GetPostgres(t *testing.T) *PostgresContainer {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.postgres == nil {
		m.postgres = newPostgresContainer(t)
	}
	return m.postgres
}

func newPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("mbatrack"),
		tcpostgres.WithUsername("mbatrack"),
		tcpostgres.WithPassword("mbatrack"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to open postgres connection: %v", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to ping postgres: %v", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to apply schema: %v", err)
	}

	return &PostgresContainer{Container: container, DSN: dsn, DB: db}
}

// TruncateTables empties the given tables between tests. Pass tables in
// dependency order; the CASCADE keeps foreign keys out of the way regardless.
func (c *PostgresContainer) TruncateTables(ctx context.Context, tables ...string) error {
	if len(tables) == 0 {
		return nil
	}
	stmt := fmt.Sprintf("TRUNCATE TABLE %s CASCADE", strings.Join(tables, ", "))
	if _, err := c.DB.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("truncate tables: %w", err)
	}
	return nil
}

// schema mirrors db/schema.sql. Kept inline so integration tests have no
// filesystem dependency on the working directory.
const schema = `
CREATE TABLE IF NOT EXISTS clients (
	id          UUID PRIMARY KEY,
	name        TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS mbas (
	id                 UUID PRIMARY KEY,
	client_id          UUID NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
	number             TEXT NOT NULL UNIQUE,
	name               TEXT NOT NULL,
	budget             NUMERIC(14,2) NOT NULL,
	currency           TEXT NOT NULL,
	start_date         DATE NOT NULL,
	end_date           DATE NOT NULL,
	status             TEXT NOT NULL,
	client_paid        BOOLEAN NOT NULL DEFAULT FALSE,
	client_paid_date   TIMESTAMPTZ,
	client_paid_amount NUMERIC(14,2),
	created_at         TIMESTAMPTZ NOT NULL,
	updated_at         TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS invoices (
	id           UUID PRIMARY KEY,
	type         TEXT NOT NULL,
	vendor       TEXT NOT NULL,
	number       TEXT NOT NULL,
	invoice_date DATE NOT NULL,
	total_amount NUMERIC(14,2) NOT NULL,
	currency     TEXT NOT NULL,
	is_paid      BOOLEAN NOT NULL DEFAULT FALSE,
	paid_date    TIMESTAMPTZ,
	notes        TEXT,
	created_at   TIMESTAMPTZ NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL,
	UNIQUE (vendor, number)
);

CREATE TABLE IF NOT EXISTS invoice_allocations (
	id         UUID PRIMARY KEY,
	invoice_id UUID NOT NULL REFERENCES invoices(id) ON DELETE CASCADE,
	mba_id     UUID NOT NULL REFERENCES mbas(id) ON DELETE CASCADE,
	amount     NUMERIC(14,2) NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS spend_entries (
	id         UUID PRIMARY KEY,
	mba_id     UUID NOT NULL REFERENCES mbas(id) ON DELETE CASCADE,
	platform   TEXT NOT NULL,
	period     DATE NOT NULL,
	amount     NUMERIC(14,2) NOT NULL,
	notes      TEXT,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	UNIQUE (mba_id, platform, period)
);

CREATE TABLE IF NOT EXISTS audit_records (
	id          UUID PRIMARY KEY,
	entity_type TEXT NOT NULL,
	entity_id   TEXT NOT NULL,
	action      TEXT NOT NULL,
	changes     JSONB,
	user_id     TEXT,
	user_email  TEXT,
	created_at  TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_audit_records_created_at ON audit_records (created_at DESC);
CREATE INDEX IF NOT EXISTS idx_mbas_client_id ON mbas (client_id);
CREATE INDEX IF NOT EXISTS idx_allocations_mba_id ON invoice_allocations (mba_id);
CREATE INDEX IF NOT EXISTS idx_spend_entries_mba_id ON spend_entries (mba_id);
`
