package migrations

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	postsUp      = "CREATE TABLE posts (id INTEGER PRIMARY KEY, title TEXT NOT NULL);"
	postsDown    = "DROP TABLE posts;"
	commentsUp   = "CREATE TABLE comments (id INTEGER PRIMARY KEY, body TEXT);"
	commentsDown = "DROP TABLE comments;"
)

func sqliteURL(t *testing.T) string {
	t.Helper()
	return "sqlite://" + filepath.Join(t.TempDir(), "app.db")
}

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
}

func blogMigrations() map[string]string {
	return map[string]string{
		"1_create_posts.up.sql":      postsUp,
		"1_create_posts.down.sql":    postsDown,
		"2_create_comments.up.sql":   commentsUp,
		"2_create_comments.down.sql": commentsDown,
	}
}

func liveTables(t *testing.T, url string) []string {
	t.Helper()
	db, err := Open(context.Background(), url)
	require.NoError(t, err)
	defer db.Close()

	var names []string
	require.NoError(t, db.Select(&names, sqliteTablesQuery))
	return names
}
