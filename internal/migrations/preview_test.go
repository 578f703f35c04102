package migrations

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreviewPendingFromBase(t *testing.T) {
	url := sqliteURL(t)
	sql, err := NewRunner(url).Preview(context.Background(), coreTarget(t), Head)
	require.NoError(t, err)

	assert.Contains(t, sql, "-- 1 create_posts\n"+postsUp)
	assert.Contains(t, sql, "-- 2 create_comments\n"+commentsUp)
	assert.NotContains(t, liveTables(t, url), "posts")
}

func TestPreviewSkipsApplied(t *testing.T) {
	ctx := context.Background()
	tgt := coreTarget(t)
	r := NewRunner(sqliteURL(t))
	require.NoError(t, r.Upgrade(ctx, tgt, "1"))

	sql, err := r.Preview(ctx, tgt, "")
	require.NoError(t, err)
	assert.NotContains(t, sql, postsUp)
	assert.Contains(t, sql, commentsUp)
}

func TestPreviewUpToVersion(t *testing.T) {
	sql, err := NewRunner(sqliteURL(t)).Preview(context.Background(), coreTarget(t), "1")
	require.NoError(t, err)
	assert.Contains(t, sql, postsUp)
	assert.NotContains(t, sql, commentsUp)
}

func TestPreviewUpToDate(t *testing.T) {
	ctx := context.Background()
	tgt := coreTarget(t)
	r := NewRunner(sqliteURL(t))
	require.NoError(t, r.Upgrade(ctx, tgt, Head))

	sql, err := r.Preview(ctx, tgt, Head)
	require.NoError(t, err)
	assert.Empty(t, sql)
}
