package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/PratikDhanave/profile-sync-service/internal/config"
	"github.com/PratikDhanave/profile-sync-service/internal/models"
)

// ProfileStore is the persistence surface every backend implements.
type ProfileStore interface {
	InsertProfile(ctx context.Context, rec models.ProfileRecord) error
	Ping(ctx context.Context) error
	Close()
}

// WriteError carries the store's own message so callers can relay it verbatim.
type WriteError struct {
	Code    string
	Message string
	Err     error
}

func (e *WriteError) Error() string { return e.Message }

func (e *WriteError) Unwrap() error { return e.Err }

// ErrInvalidTable is returned when the configured table is not a plain identifier.
var ErrInvalidTable = errors.New("table must be a plain identifier, optionally schema-qualified")

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// splitTable validates name and returns its schema/table parts.
func splitTable(name string) ([]string, error) {
	if !identRe.MatchString(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTable, name)
	}
	return strings.Split(name, "."), nil
}

// Open builds the backend selected by cfg and bootstraps its schema when asked.
func Open(ctx context.Context, cfg config.StoreConfig, logger *zap.Logger) (ProfileStore, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		st, err := NewPostgresStore(ctx, cfg.DBURL, cfg.Table)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		if cfg.EnsureSchema {
			if err := st.EnsureSchema(ctx); err != nil {
				st.Close()
				return nil, fmt.Errorf("ensure postgres schema: %w", err)
			}
			logger.Info("profile table ensured", zap.String("table", cfg.Table))
		}
		return st, nil
	case config.DriverSQLite:
		st, err := NewSQLiteStore(ctx, cfg.DBURL, cfg.Table)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		if cfg.EnsureSchema {
			if err := st.EnsureSchema(ctx); err != nil {
				st.Close()
				return nil, fmt.Errorf("ensure sqlite schema: %w", err)
			}
			logger.Info("profile table ensured", zap.String("table", cfg.Table))
		}
		return st, nil
	case config.DriverREST:
		if cfg.EnsureSchema {
			logger.Warn("STORE_ENSURE_SCHEMA ignored for rest driver")
		}
		st, err := NewRESTStore(cfg.URL, cfg.Key, cfg.Table, cfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("open rest store: %w", err)
		}
		return st, nil
	case config.DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", cfg.Driver)
	}
}
