package history

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
	"github.com/uptrace/bun/schema"
)

// ErrUnknownDriver is returned by Open for drivers other than memory,
// sqlite and postgres.
var ErrUnknownDriver = errors.New("history: unknown driver")

// Open returns the repository for driver. Database-backed repositories
// are migrated; the returned close func releases the connection.
func Open(ctx context.Context, driver, dsn string) (Repository, func() error, error) {
	var (
		sqlDriver string
		dialect   schema.Dialect
	)
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "memory":
		return NewMemoryRepository(), func() error { return nil }, nil
	case "sqlite", "sqlite3":
		sqlDriver, dialect = "sqlite3", sqlitedialect.New()
	case "postgres":
		sqlDriver, dialect = "postgres", pgdialect.New()
	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}

	sqldb, err := sql.Open(sqlDriver, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("history open %s: %w", sqlDriver, err)
	}
	db := bun.NewDB(sqldb, dialect)
	repo := NewBunRepository(db)
	if err := repo.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("history migrate: %w", err)
	}
	return repo, db.Close, nil
}
