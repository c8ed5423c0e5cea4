package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/moodmapper/moodmapper/internal/client/client"
	"github.com/moodmapper/moodmapper/internal/client/migrations"
	"github.com/moodmapper/moodmapper/internal/client/repositories/metadata"
	"github.com/pressly/goose/v3"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	goose.SetBaseFS(migrations.Migrations)
	require.NoError(t, goose.SetDialect("sqlite3"))
	require.NoError(t, goose.UpContext(context.Background(), db, "."))
	return db
}

// newAuthServer serves the account endpoints the auth service exercises.
func newAuthServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/login":
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]string{
				"userId":       "u1",
				"accessToken":  "a1",
				"refreshToken": "r1",
			})
		case "/api/register", "/api/ping":
			w.WriteHeader(http.StatusOK)
		case "/api/account":
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAuthService_LoginPersistsSession(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	c := client.NewHTTPClient(newAuthServer(t).URL)
	svc := NewAuthService(c, db)

	require.NoError(t, svc.Login(ctx, "alice", "secret"))
	require.Equal(t, "u1", c.UserID())

	repo := metadata.NewSQLiteRepository(db)
	for key, want := range map[string]string{
		metadata.KeyUserID:       "u1",
		metadata.KeyUsername:     "alice",
		metadata.KeyAccessToken:  "a1",
		metadata.KeyRefreshToken: "r1",
	} {
		got, err := repo.Get(ctx, key)
		require.NoError(t, err)
		require.Equal(t, want, string(got), key)
	}
}

func TestAuthService_RestoreSession(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	srv := newAuthServer(t)

	c := client.NewHTTPClient(srv.URL)
	svc := NewAuthService(c, db)

	ok, err := svc.RestoreSession(ctx)
	require.NoError(t, err)
	require.False(t, ok, "nothing to restore on a fresh database")

	require.NoError(t, svc.Login(ctx, "alice", "secret"))

	// A fresh client, as after a process restart.
	c2 := client.NewHTTPClient(srv.URL)
	svc2 := NewAuthService(c2, db)
	ok, err = svc2.RestoreSession(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "u1", c2.UserID())
	require.False(t, c2.IsAnonymous())
}

func TestAuthService_LogoutWipesMetadata(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	c := client.NewHTTPClient(newAuthServer(t).URL)
	svc := NewAuthService(c, db)

	require.NoError(t, svc.Login(ctx, "alice", "secret"))

	// A stale cursor from the previous user must go too.
	repo := metadata.NewSQLiteRepository(db)
	require.NoError(t, repo.Set(ctx, metadata.KeyLastPull, []byte("2026-03-01T12:00:00Z")))

	require.NoError(t, svc.Logout(ctx))
	require.True(t, c.IsAnonymous())

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestAuthService_DeleteAccount(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	c := client.NewHTTPClient(newAuthServer(t).URL)
	svc := NewAuthService(c, db)

	require.NoError(t, svc.Login(ctx, "alice", "secret"))
	require.NoError(t, svc.DeleteAccount(ctx))
	require.True(t, c.IsAnonymous())

	list, err := metadata.NewSQLiteRepository(db).List(ctx)
	require.NoError(t, err)
	require.Empty(t, list)
}
