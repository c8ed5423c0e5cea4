// Package metadata is a small key-value store in the client database for
// state that must survive restarts: the sync cursor, the signed-in user,
// and the token pair.
package metadata

import (
	"context"
)

// Well-known metadata keys.
const (
	KeyLastPull     = "sync.lastPull"
	KeyUserID       = "auth.userID"
	KeyUsername     = "auth.username"
	KeyAccessToken  = "auth.accessToken"
	KeyRefreshToken = "auth.refreshToken"
)

type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
