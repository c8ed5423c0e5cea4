package metadata

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/moodmapper/moodmapper/internal/client/migrations"
	"github.com/pressly/goose/v3"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	goose.SetBaseFS(migrations.Migrations)
	require.NoError(t, goose.SetDialect("sqlite3"))
	require.NoError(t, goose.UpContext(context.Background(), db, "."))
	return NewSQLiteRepository(db)
}

func TestSQLiteRepository_SetGetOverwrite(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	got, err := repo.Get(ctx, "absent")
	require.NoError(t, err)
	require.Nil(t, got)

	require.NoError(t, repo.Set(ctx, KeyUserID, []byte("u1")))
	got, err = repo.Get(ctx, KeyUserID)
	require.NoError(t, err)
	require.Equal(t, []byte("u1"), got)

	require.NoError(t, repo.Set(ctx, KeyUserID, []byte("u2")))
	got, err = repo.Get(ctx, KeyUserID)
	require.NoError(t, err)
	require.Equal(t, []byte("u2"), got)
}

func TestSQLiteRepository_DeleteAndClear(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	require.NoError(t, repo.Set(ctx, KeyUserID, []byte("u1")))
	require.NoError(t, repo.Set(ctx, KeyLastPull, []byte("cursor")))

	require.NoError(t, repo.Delete(ctx, KeyUserID))
	got, err := repo.Get(ctx, KeyUserID)
	require.NoError(t, err)
	require.Nil(t, got)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Equal(t, map[string][]byte{KeyLastPull: []byte("cursor")}, list)

	require.NoError(t, repo.Clear(ctx))
	list, err = repo.List(ctx)
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestPullCursor_RoundTrip(t *testing.T) {
	ctx := context.Background()
	cursor := NewPullCursor(newTestRepo(t))

	got, err := cursor.LastPull(ctx)
	require.NoError(t, err)
	require.True(t, got.IsZero(), "a fresh database has no watermark")

	mark := time.Date(2026, 3, 1, 12, 0, 0, 123456789, time.UTC)
	require.NoError(t, cursor.SetLastPull(ctx, mark))

	got, err = cursor.LastPull(ctx)
	require.NoError(t, err)
	require.True(t, got.Equal(mark), "the watermark must survive with nanosecond precision")
}

func TestPullCursor_CorruptValue(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	require.NoError(t, repo.Set(ctx, KeyLastPull, []byte("not a time")))

	_, err := NewPullCursor(repo).LastPull(ctx)
	require.Error(t, err)
}
