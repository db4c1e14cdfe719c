package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-donation-pages/internal/pages"
	"github.com/goliatone/go-donation-pages/internal/styles"
)

const (
	ProviderMemory   = "memory"
	ProviderSQLite   = "sqlite"
	ProviderPostgres = "postgres"
)

var (
	// ErrProviderUnknown indicates a provider outside the supported set.
	ErrProviderUnknown = errors.New("storage: unknown provider")
	// ErrDSNRequired indicates a SQL provider without a connection string.
	ErrDSNRequired = errors.New("storage: dsn is required")
	// ErrMemoryProvider is returned when a SQL handle is requested for the
	// in-memory provider.
	ErrMemoryProvider = errors.New("storage: memory provider has no database")
)

// Models lists every table the pipeline persists.
func Models() []any {
	return []any{(*styles.Style)(nil), (*pages.Page)(nil)}
}

// Open connects to the configured SQL backend and wraps it in bun.
func Open(ctx context.Context, provider, dsn string) (*bun.DB, error) {
	driver, dialect, err := resolve(provider)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("%w: %s", ErrDSNRequired, provider)
	}

	sqlDB, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", provider, err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("storage: ping %s: %w", provider, err)
	}

	var db *bun.DB
	switch dialect {
	case ProviderSQLite:
		db = bun.NewDB(sqlDB, sqlitedialect.New())
		// sqlite serialises writers; one connection keeps in-memory DSNs shared.
		db.SetMaxOpenConns(1)
	default:
		db = bun.NewDB(sqlDB, pgdialect.New())
	}
	return db, nil
}

// EnsureSchema creates the page and style tables when missing.
func EnsureSchema(ctx context.Context, db *bun.DB) error {
	if db == nil {
		return ErrMemoryProvider
	}
	for _, model := range Models() {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("storage: create table for %T: %w", model, err)
		}
	}
	return nil
}

// IsMemory reports whether provider selects the in-memory repositories.
func IsMemory(provider string) bool {
	normalized := strings.ToLower(strings.TrimSpace(provider))
	return normalized == "" || normalized == ProviderMemory
}

func resolve(provider string) (driver string, dialect string, err error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case ProviderSQLite, "sqlite3":
		return "sqlite3", ProviderSQLite, nil
	case ProviderPostgres, "postgresql", "pg":
		return "postgres", ProviderPostgres, nil
	case "", ProviderMemory:
		return "", "", ErrMemoryProvider
	default:
		return "", "", fmt.Errorf("%w: %s", ErrProviderUnknown, provider)
	}
}
