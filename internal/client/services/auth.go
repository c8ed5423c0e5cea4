// Package services contains application services for the MoodMapper
// client. This file defines the authentication service: account lifecycle
// against the server and housekeeping of the locally persisted session.
package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/moodmapper/moodmapper/internal/client/client"
	"github.com/moodmapper/moodmapper/internal/client/repositories/metadata"
	"github.com/moodmapper/moodmapper/internal/dbx"
)

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Register: create a new account on the server.
//   - Login: authenticate and persist the session locally.
//   - RestoreSession: reinstall a previously persisted session at startup.
//   - Logout: clear the session and all per-user sync state.
//   - DeleteAccount: remove the account and its cloud data, then log out.
//   - Ping: check server liveness.
//
// All methods must honor context cancellation/timeouts.
type AuthService interface {
	Register(ctx context.Context, username, password string) error
	Login(ctx context.Context, username, password string) error
	RestoreSession(ctx context.Context) (bool, error)
	Logout(ctx context.Context) error
	DeleteAccount(ctx context.Context) error
	Ping(ctx context.Context) error
}

// authService is the concrete AuthService backed by the HTTP client and
// the local database for session metadata.
type authService struct {
	client *client.HTTPClient
	db     *sql.DB
}

// NewAuthService constructs an AuthService bound to the given API client
// and DB. Token rotations performed by the client are persisted
// automatically.
func NewAuthService(c *client.HTTPClient, db *sql.DB) AuthService {
	a := &authService{client: c, db: db}
	c.OnTokensRefreshed(func(access, refresh string) {
		repo := metadata.NewSQLiteRepository(db)
		_ = repo.Set(context.Background(), metadata.KeyAccessToken, []byte(access))
		_ = repo.Set(context.Background(), metadata.KeyRefreshToken, []byte(refresh))
	})
	return a
}

func (a *authService) Register(ctx context.Context, username, password string) error {
	return a.client.Register(ctx, username, password)
}

// Login authenticates and persists the session (user id, username, token
// pair) so the next start can resume without re-entering the password.
func (a *authService) Login(ctx context.Context, username, password string) error {
	userID, err := a.client.Login(ctx, username, password)
	if err != nil {
		return fmt.Errorf("login error: %w", err)
	}

	return dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, metadata.KeyUserID, []byte(userID)); err != nil {
			return err
		}
		return repo.Set(ctx, metadata.KeyUsername, []byte(username))
	})
}

// RestoreSession reinstalls a persisted session into the client. Returns
// false when no session is stored.
func (a *authService) RestoreSession(ctx context.Context) (bool, error) {
	repo := metadata.NewSQLiteRepository(a.db)

	userID, err := repo.Get(ctx, metadata.KeyUserID)
	if err != nil {
		return false, err
	}
	if len(userID) == 0 {
		return false, nil
	}
	access, err := repo.Get(ctx, metadata.KeyAccessToken)
	if err != nil {
		return false, err
	}
	refresh, err := repo.Get(ctx, metadata.KeyRefreshToken)
	if err != nil {
		return false, err
	}

	a.client.SetSession(string(userID), string(access), string(refresh))
	return true, nil
}

// Logout clears the in-memory session and wipes all persisted metadata,
// including the pull cursor: a listener scoped to the old user must never
// leak state into the next user's session.
func (a *authService) Logout(ctx context.Context) error {
	a.client.ClearSession()
	return metadata.NewSQLiteRepository(a.db).Clear(ctx)
}

// DeleteAccount removes the server-side account plus collection and then
// performs a local logout.
func (a *authService) DeleteAccount(ctx context.Context) error {
	if err := a.client.DeleteAccount(ctx); err != nil {
		return err
	}
	return a.Logout(ctx)
}

// Ping proxies a liveness check to the underlying client.
func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}
