package client

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"mbatrack/internal/mba/models"
	id "mbatrack/pkg/domain"
	"mbatrack/pkg/platform/sentinel"
	txcontext "mbatrack/pkg/platform/tx"
)

// PostgresStore persists clients in the clients table.
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

func (s *PostgresStore) Create(ctx context.Context, client *models.Client) error {
	query := `
		INSERT INTO clients (id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(client.ID), client.Name, client.CreatedAt, client.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert client: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, clientID id.ClientID) (*models.Client, error) {
	query := `
		SELECT id, name, created_at, updated_at
		FROM clients
		WHERE id = $1
	`
	row := s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(clientID))
	client, err := scanClient(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("select client: %w", err)
	}
	return client, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]models.Client, error) {
	query := `
		SELECT id, name, created_at, updated_at
		FROM clients
		ORDER BY name
	`
	rows, err := s.execer(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query clients: %w", err)
	}
	defer rows.Close()

	var clients []models.Client
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		clients = append(clients, *client)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate clients: %w", err)
	}
	return clients, nil
}

func (s *PostgresStore) Update(ctx context.Context, client *models.Client) error {
	query := `
		UPDATE clients
		SET name = $2, updated_at = $3
		WHERE id = $1
	`
	result, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(client.ID), client.Name, client.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	return requireRowAffected(result)
}

func (s *PostgresStore) Delete(ctx context.Context, clientID id.ClientID) error {
	result, err := s.execer(ctx).ExecContext(ctx,
		`DELETE FROM clients WHERE id = $1`, uuid.UUID(clientID))
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	return requireRowAffected(result)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClient(row rowScanner) (*models.Client, error) {
	var (
		client   models.Client
		clientID uuid.UUID
	)
	if err := row.Scan(&clientID, &client.Name, &client.CreatedAt, &client.UpdatedAt); err != nil {
		return nil, err
	}
	client.ID = id.ClientID(clientID)
	return &client, nil
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
