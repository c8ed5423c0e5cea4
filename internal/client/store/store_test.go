package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/moodmapper/moodmapper/internal/client/models"
	"github.com/moodmapper/moodmapper/internal/client/repositories/entries"
	"github.com/moodmapper/moodmapper/internal/common"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, RunMigrations(context.Background(), db))
	return New(db)
}

func collect(s *Store) *[]ChangeSet {
	var got []ChangeSet
	s.Subscribe(func(cs ChangeSet) { got = append(got, cs) })
	return &got
}

func TestStore_CreateNotifiesInsert(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	got := collect(s)

	e := models.Entry{ID: "a", Score: 3, Note: "first"}
	require.NoError(t, s.Create(ctx, &e))
	require.False(t, e.LastModified.IsZero(), "Create must stamp LastModified")

	require.Len(t, *got, 1)
	cs := (*got)[0]
	require.Len(t, cs.Inserted, 1)
	require.Empty(t, cs.Updated)
	require.Empty(t, cs.Deleted)
	require.Equal(t, "a", cs.Inserted[0].ID)

	stored, err := s.Get(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, "first", stored.Note)
}

func TestStore_UpdateBumpsLastModified(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	e := models.Entry{ID: "a", Score: 3}
	require.NoError(t, s.Create(ctx, &e))
	created := e.LastModified

	got := collect(s)
	e.Score = 5
	require.NoError(t, s.Update(ctx, &e))
	require.True(t, e.LastModified.After(created))

	require.Len(t, *got, 1)
	require.Len(t, (*got)[0].Updated, 1)
	require.Equal(t, 5, (*got)[0].Updated[0].Score)
}

func TestStore_TouchIsMonotonicUnderClockSkew(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	future := time.Now().Add(time.Hour).UTC()
	s.now = func() time.Time { return future }

	e := models.Entry{ID: "a", Score: 3}
	require.NoError(t, s.Create(ctx, &e))
	require.True(t, e.LastModified.Equal(future))

	// The clock "jumps back"; the bump must still move forward.
	s.now = func() time.Time { return future.Add(-time.Hour) }
	require.NoError(t, s.Update(ctx, &e))
	require.True(t, e.LastModified.After(future))
}

func TestStore_DeleteNotifiesBumpedTombstone(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	e := models.Entry{ID: "a", Score: 3}
	require.NoError(t, s.Create(ctx, &e))

	got := collect(s)
	require.NoError(t, s.Delete(ctx, "a"))

	require.Len(t, *got, 1)
	cs := (*got)[0]
	require.Len(t, cs.Deleted, 1)
	require.True(t, cs.Deleted[0].LastModified.After(e.LastModified),
		"the deleted copy must outrank every previously announced state")

	_, err := s.Get(ctx, "a")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestStore_DeleteMissingEntry(t *testing.T) {
	s := newTestStore(t)
	got := collect(s)

	err := s.Delete(context.Background(), "nope")
	require.ErrorIs(t, err, common.ErrNotFound)
	require.Empty(t, *got)
}

func TestStore_ApplyCommitsAsOneBatch(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	got := collect(s)

	err := s.Apply(ctx, func(ctx context.Context, repo entries.Repository) (ChangeSet, error) {
		a := models.Entry{ID: "a", Score: 1, LastModified: time.Now().UTC()}
		b := models.Entry{ID: "b", Score: 2, LastModified: time.Now().UTC()}
		if err := repo.Upsert(ctx, &a); err != nil {
			return ChangeSet{}, err
		}
		if err := repo.Upsert(ctx, &b); err != nil {
			return ChangeSet{}, err
		}
		return ChangeSet{Inserted: []models.Entry{a, b}}, nil
	})
	require.NoError(t, err)

	require.Len(t, *got, 1, "one transaction, one notification")
	require.Len(t, (*got)[0].Inserted, 2)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, n)
}

func TestStore_ApplyRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	got := collect(s)

	boom := errors.New("boom")
	err := s.Apply(ctx, func(ctx context.Context, repo entries.Repository) (ChangeSet, error) {
		e := models.Entry{ID: "a", Score: 1, LastModified: time.Now().UTC()}
		if err := repo.Upsert(ctx, &e); err != nil {
			return ChangeSet{}, err
		}
		return ChangeSet{Inserted: []models.Entry{e}}, boom
	})
	require.ErrorIs(t, err, boom)
	require.Empty(t, *got, "a rolled-back transaction must not notify")

	n, err := s.Count(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestStore_ReplaceAll(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	old := models.Entry{ID: "old", Score: 1}
	require.NoError(t, s.Create(ctx, &old))

	got := collect(s)
	fresh := []models.Entry{
		{ID: "n1", Score: 4, LastModified: time.Now().UTC()},
		{ID: "n2", Score: 5, LastModified: time.Now().UTC()},
	}
	require.NoError(t, s.ReplaceAll(ctx, fresh))

	list, err := s.All(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	require.Len(t, *got, 1)
	cs := (*got)[0]
	require.Len(t, cs.Inserted, 2)
	require.Len(t, cs.Deleted, 1)
	require.Equal(t, "old", cs.Deleted[0].ID)
}

func TestStore_SubscribeCancel(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	var n int
	cancel := s.Subscribe(func(ChangeSet) { n++ })

	e := models.Entry{ID: "a", Score: 3}
	require.NoError(t, s.Create(ctx, &e))
	require.Equal(t, 1, n)

	cancel()
	require.NoError(t, s.Update(ctx, &e))
	require.Equal(t, 1, n, "a cancelled observer must not fire")
}

func TestChangeSet_Empty(t *testing.T) {
	require.True(t, ChangeSet{}.Empty())
	require.False(t, ChangeSet{Updated: []models.Entry{{ID: "a"}}}.Empty())
}
