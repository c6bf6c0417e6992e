package postgres_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-cms/pkg/simplecms"
	"github.com/tendant/simple-cms/pkg/simplecms/repo/postgres"
)

// newTestPool connects to TEST_DATABASE_URL and runs the schema inside a
// fresh schema so tests do not see each other's rows.
func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	schema := "simplecms_test_" + time.Now().UTC().Format("150405000000")

	admin, err := pgxpool.New(ctx, connString)
	require.NoError(t, err, "Failed to connect to test database")
	_, err = admin.Exec(ctx, "CREATE SCHEMA "+schema)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = admin.Exec(context.Background(), "DROP SCHEMA "+schema+" CASCADE")
		admin.Close()
	})

	cfg, err := pgxpool.ParseConfig(connString)
	require.NoError(t, err)
	cfg.ConnConfig.RuntimeParams["search_path"] = schema

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, postgres.Migrate(ctx, pool))
	return pool
}

func TestPostgresRepository_FileOperations(t *testing.T) {
	repo := postgres.NewWithPool(newTestPool(t))
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	rec := &simplecms.FileRecord{
		ID:        uuid.New(),
		Parent:    "blog/hello",
		Filename:  "cover.jpg",
		Template:  "cover",
		Content:   map[string]any{"alt": "A cover", "tags": []any{"a", "b"}},
		Sort:      2,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, repo.CreateFile(ctx, rec))

	err := repo.CreateFile(ctx, &simplecms.FileRecord{ID: uuid.New(), Parent: "blog/hello", Filename: "cover.jpg", CreatedAt: now, UpdatedAt: now})
	assert.ErrorIs(t, err, simplecms.ErrInvalidFile)

	got, err := repo.GetFile(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "cover", got.Template)
	assert.Equal(t, "A cover", got.Content["alt"])
	assert.Equal(t, []any{"a", "b"}, got.Content["tags"])
	assert.True(t, now.Equal(got.CreatedAt))

	got.Content["alt"] = "Updated"
	require.NoError(t, repo.UpdateFile(ctx, got))
	updated, err := repo.GetFile(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "Updated", updated.Content["alt"])

	require.NoError(t, repo.CreateFile(ctx, &simplecms.FileRecord{ID: uuid.New(), Parent: "blog/hello", Filename: "a.pdf", Sort: 1, CreatedAt: now, UpdatedAt: now}))
	files, err := repo.ListFiles(ctx, "blog/hello")
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "a.pdf", files[0].Filename)
	assert.Empty(t, files[0].Content)

	require.NoError(t, repo.DeleteFile(ctx, rec.ID))
	_, err = repo.GetFile(ctx, rec.ID)
	assert.ErrorIs(t, err, simplecms.ErrFileNotFound)
	assert.ErrorIs(t, repo.DeleteFile(ctx, rec.ID), simplecms.ErrFileNotFound)
	assert.ErrorIs(t, repo.UpdateFile(ctx, rec), simplecms.ErrFileNotFound)
}
