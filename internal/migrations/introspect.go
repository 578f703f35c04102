package migrations

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/GriffinCanCode/appkit/pkg/schema"
)

const (
	sqliteTablesQuery = `SELECT name FROM sqlite_master
WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
ORDER BY name`

	postgresTablesQuery = `SELECT table_name FROM information_schema.tables
WHERE table_schema = current_schema() AND table_type = 'BASE TABLE'
ORDER BY table_name`

	postgresColumnsQuery = `SELECT column_name, data_type, is_nullable FROM information_schema.columns
WHERE table_schema = current_schema() AND table_name = $1
ORDER BY ordinal_position`

	postgresPrimaryKeyQuery = `SELECT kcu.column_name FROM information_schema.table_constraints tc
JOIN information_schema.key_column_usage kcu
  ON tc.constraint_name = kcu.constraint_name AND tc.table_schema = kcu.table_schema
WHERE tc.constraint_type = 'PRIMARY KEY' AND tc.table_schema = current_schema() AND tc.table_name = $1`
)

type sqliteColumn struct {
	CID          int            `db:"cid"`
	Name         string         `db:"name"`
	Type         string         `db:"type"`
	NotNull      int            `db:"notnull"`
	DefaultValue sql.NullString `db:"dflt_value"`
	PK           int            `db:"pk"`
}

type postgresColumn struct {
	Name       string `db:"column_name"`
	DataType   string `db:"data_type"`
	IsNullable string `db:"is_nullable"`
}

// Introspect reads the tables and columns of the live database.
func Introspect(ctx context.Context, db *sqlx.DB) (*schema.Metadata, error) {
	switch db.DriverName() {
	case DriverSQLite:
		return introspectSQLite(ctx, db)
	case DriverPostgres:
		return introspectPostgres(ctx, db)
	}
	return nil, fmt.Errorf("%w: driver %q", ErrUnsupportedDatabase, db.DriverName())
}

func introspectSQLite(ctx context.Context, db *sqlx.DB) (*schema.Metadata, error) {
	var names []string
	if err := db.SelectContext(ctx, &names, sqliteTablesQuery); err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}

	md := schema.New()
	for _, name := range names {
		var cols []sqliteColumn
		if err := db.SelectContext(ctx, &cols, "PRAGMA table_info("+quoteIdent(name)+")"); err != nil {
			return nil, fmt.Errorf("failed to read columns of %s: %w", name, err)
		}
		t := schema.Table{Name: name}
		for _, c := range cols {
			t.Columns = append(t.Columns, schema.Column{
				Name:       c.Name,
				Type:       c.Type,
				PrimaryKey: c.PK > 0,
				Nullable:   c.NotNull == 0 && c.PK == 0,
			})
		}
		md.Tables = append(md.Tables, t)
	}
	return md, nil
}

func introspectPostgres(ctx context.Context, db *sqlx.DB) (*schema.Metadata, error) {
	var names []string
	if err := db.SelectContext(ctx, &names, postgresTablesQuery); err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}

	md := schema.New()
	for _, name := range names {
		var cols []postgresColumn
		if err := db.SelectContext(ctx, &cols, postgresColumnsQuery, name); err != nil {
			return nil, fmt.Errorf("failed to read columns of %s: %w", name, err)
		}
		var keys []string
		if err := db.SelectContext(ctx, &keys, postgresPrimaryKeyQuery, name); err != nil {
			return nil, fmt.Errorf("failed to read primary key of %s: %w", name, err)
		}
		pk := make(map[string]bool, len(keys))
		for _, k := range keys {
			pk[k] = true
		}

		t := schema.Table{Name: name}
		for _, c := range cols {
			t.Columns = append(t.Columns, schema.Column{
				Name:       c.Name,
				Type:       strings.ToUpper(c.DataType),
				PrimaryKey: pk[c.Name],
				Nullable:   c.IsNullable == "YES" && !pk[c.Name],
			})
		}
		md.Tables = append(md.Tables, t)
	}
	return md, nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
