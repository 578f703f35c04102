package migrations

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Driver names registered with database/sql.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var ErrUnsupportedDatabase = errors.New("unsupported database url")

// ParseURL splits a database URL into a database/sql driver name and the
// connection string that driver expects.
func ParseURL(url string) (driver, conn string, err error) {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return DriverPostgres, url, nil
	case strings.HasPrefix(url, "sqlite://"):
		conn = strings.TrimPrefix(url, "sqlite://")
	case strings.HasPrefix(url, "sqlite3://"):
		conn = strings.TrimPrefix(url, "sqlite3://")
	default:
		return "", "", fmt.Errorf("%w: %q", ErrUnsupportedDatabase, url)
	}
	if conn == "" {
		return "", "", fmt.Errorf("%w: %q has no database path", ErrUnsupportedDatabase, url)
	}
	return DriverSQLite, conn, nil
}

// Open connects to the database named by url.
func Open(ctx context.Context, url string) (*sqlx.DB, error) {
	driver, conn, err := ParseURL(url)
	if err != nil {
		return nil, err
	}
	db, err := sqlx.Open(driver, conn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}
