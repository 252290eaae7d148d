package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"modernc.org/sqlite"

	"github.com/PratikDhanave/profile-sync-service/internal/models"
)

// SQLiteStore keeps profiles in a local SQLite file. Intended for development.
type SQLiteStore struct {
	db    *sql.DB
	table string
}

var _ ProfileStore = (*SQLiteStore)(nil)

// sqliteDSN accepts sqlite:///path.db, sqlite://path.db, a bare path or :memory:.
func sqliteDSN(dbURL string) string {
	if dbURL == ":memory:" {
		return "file::memory:?_pragma=busy_timeout(5000)"
	}
	path := strings.TrimPrefix(dbURL, "sqlite://")
	path = strings.TrimPrefix(path, "file:")
	if strings.HasPrefix(dbURL, "sqlite:///") {
		path = "/" + strings.TrimLeft(path, "/")
	}
	return fmt.Sprintf("file:%s?mode=rwc&_pragma=busy_timeout(5000)", path)
}

// NewSQLiteStore opens the database and checks it is usable.
func NewSQLiteStore(ctx context.Context, dbURL, table string) (*SQLiteStore, error) {
	parts, err := splitTable(table)
	if err != nil {
		return nil, err
	}
	// SQLite has no schemas; a qualifier would name an attached database.
	if len(parts) > 1 {
		return nil, fmt.Errorf("%w: sqlite does not support schema-qualified %q", ErrInvalidTable, table)
	}

	db, err := sql.Open("sqlite", sqliteDSN(dbURL))
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// A single connection keeps :memory: databases alive and serialises writers.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return &SQLiteStore{db: db, table: `"` + parts[0] + `"`}, nil
}

// EnsureSchema creates the profile table if needed.
func (s *SQLiteStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, strings.ReplaceAll(schemaSQL, "{{table}}", s.table))
	return err
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() {
	_ = s.db.Close()
}

func (s *SQLiteStore) InsertProfile(ctx context.Context, rec models.ProfileRecord) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`
INSERT INTO %s (id, email, phone, display_name, user_type)
VALUES (?, ?, ?, ?, ?)
`, s.table), rec.ID, rec.Email, rec.Phone, rec.DisplayName, rec.UserType)
	if err != nil {
		var se *sqlite.Error
		if errors.As(err, &se) {
			return &WriteError{Code: strconv.Itoa(se.Code()), Message: se.Error(), Err: err}
		}
		return &WriteError{Message: err.Error(), Err: err}
	}
	return nil
}
