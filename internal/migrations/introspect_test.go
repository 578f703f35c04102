package migrations

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/appkit/pkg/schema"
)

func TestIntrospectSQLite(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, sqliteURL(t))
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE posts (id INTEGER PRIMARY KEY, title TEXT NOT NULL, summary TEXT)`)
	require.NoError(t, err)

	md, err := Introspect(ctx, db)
	require.NoError(t, err)

	assert.Equal(t, schema.New(schema.Table{
		Name: "posts",
		Columns: []schema.Column{
			{Name: "id", Type: "INTEGER", PrimaryKey: true},
			{Name: "title", Type: "TEXT"},
			{Name: "summary", Type: "TEXT", Nullable: true},
		},
	}), md)
}

func TestIntrospectPostgres(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()
	db := sqlx.NewDb(mockDB, DriverPostgres)

	mock.ExpectQuery("FROM information_schema.tables").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}).AddRow("charges"))
	mock.ExpectQuery("FROM information_schema.columns").
		WithArgs("charges").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "data_type", "is_nullable"}).
			AddRow("id", "integer", "NO").
			AddRow("amount", "numeric", "NO").
			AddRow("note", "text", "YES"))
	mock.ExpectQuery("PRIMARY KEY").
		WithArgs("charges").
		WillReturnRows(sqlmock.NewRows([]string{"column_name"}).AddRow("id"))

	md, err := Introspect(context.Background(), db)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, schema.New(schema.Table{
		Name: "charges",
		Columns: []schema.Column{
			{Name: "id", Type: "INTEGER", PrimaryKey: true},
			{Name: "amount", Type: "NUMERIC"},
			{Name: "note", Type: "TEXT", Nullable: true},
		},
	}), md)
}

func TestIntrospectPostgresError(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	mock.ExpectQuery("FROM information_schema.tables").WillReturnError(assert.AnError)

	_, err = Introspect(context.Background(), sqlx.NewDb(mockDB, DriverPostgres))
	assert.ErrorIs(t, err, assert.AnError)
}

func TestIntrospectUnsupportedDriver(t *testing.T) {
	mockDB, _, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	_, err = Introspect(context.Background(), sqlx.NewDb(mockDB, "mysql"))
	assert.ErrorIs(t, err, ErrUnsupportedDatabase)
}
