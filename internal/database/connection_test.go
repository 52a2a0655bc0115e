package database_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloo-solutions/scratch/internal/database"
	"github.com/cloo-solutions/scratch/internal/testutil"
)

func TestNewPool_InvalidURL(t *testing.T) {
	_, err := database.NewPool(context.Background(), database.Config{URL: "postgres://%zz"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse database config")
}

func TestMigrate_AppliesSchema(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	require.NoError(t, database.Migrate(pc.ConnectionString(), "file://../../migrations"))
	require.NoError(t, database.Migrate(pc.ConnectionString(), "file://../../migrations"), "second run is a no-op")

	pool, err := database.NewPool(ctx, database.Config{URL: pc.ConnectionString(), MaxConns: 2})
	require.NoError(t, err)
	defer pool.Close()

	var tables int
	err = pool.QueryRow(ctx,
		`SELECT count(*) FROM information_schema.tables WHERE table_name IN ('users', 'api_keys', 'notes')`,
	).Scan(&tables)
	require.NoError(t, err)
	assert.Equal(t, 3, tables)
}
