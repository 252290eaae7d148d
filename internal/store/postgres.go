package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/PratikDhanave/profile-sync-service/internal/models"
)

// schemaSQL is embedded so self-hosted databases can bootstrap the profile table.
//
//go:embed schema.sql
var schemaSQL string

// PostgresStore writes profiles straight into PostgreSQL.
type PostgresStore struct {
	pool  *pgxpool.Pool
	table string // sanitized, ready to splice into SQL
}

var _ ProfileStore = (*PostgresStore)(nil)

// NewPostgresStore creates a connection pool and fails fast if DB is unreachable.
func NewPostgresStore(ctx context.Context, dbURL, table string) (*PostgresStore, error) {
	parts, err := splitTable(table)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool, table: pgx.Identifier(parts).Sanitize()}, nil
}

// EnsureSchema applies schema.sql. Safe to run multiple times.
func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, strings.ReplaceAll(schemaSQL, "{{table}}", p.table))
	return err
}

// Ping is used by readiness endpoint to validate DB connectivity.
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close shuts down the connection pool.
func (p *PostgresStore) Close() {
	p.pool.Close()
}

// InsertProfile writes one row. Duplicates are not swallowed: the primary key
// violation comes back as a WriteError with SQLSTATE 23505.
func (p *PostgresStore) InsertProfile(ctx context.Context, rec models.ProfileRecord) error {
	_, err := p.pool.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s(id, email, phone, display_name, user_type)
		VALUES ($1,$2,$3,$4,$5)
	`, p.table), rec.ID, rec.Email, rec.Phone, rec.DisplayName, rec.UserType)
	if err != nil {
		return pgWriteError(err)
	}
	return nil
}

func pgWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return &WriteError{Code: pgErr.Code, Message: pgErr.Message, Err: err}
	}
	return &WriteError{Message: err.Error(), Err: err}
}
