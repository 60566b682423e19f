package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/platinummonkey/eventbook/pkg/storage"
)

// Open connects to the configured database, applies pool settings and
// verifies the connection with a ping.
func Open(config storage.Config) (*sql.DB, Dialect, error) {
	dialect, err := ParseDialect(config.Driver)
	if err != nil {
		return nil, "", err
	}
	if config.DatabaseURL == "" {
		return nil, "", fmt.Errorf("database URL is required for driver %s", config.Driver)
	}

	db, err := sql.Open(dialect.DriverName(), config.DatabaseURL)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open %s connection: %w", dialect, err)
	}

	if dialect == DialectSQLite {
		// SQLite serializes writers; one connection also keeps :memory: databases shared
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(config.MaxConns)
		db.SetMaxIdleConns(config.MinConns)
		db.SetConnMaxLifetime(config.MaxLifetime)
		db.SetConnMaxIdleTime(config.MaxIdleTime)
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, "", fmt.Errorf("failed to ping %s: %w", dialect, err)
	}

	return db, dialect, nil
}
