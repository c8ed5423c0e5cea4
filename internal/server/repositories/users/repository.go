// Package users declares the server-side repository contract for account
// rows.
package users

import (
	"context"

	"github.com/moodmapper/moodmapper/internal/server/models"
)

// Repository defines persistence operations for user accounts.
type Repository interface {
	// Create inserts a new account and returns it with the generated id.
	// A duplicate username maps to common.ErrUserExists.
	Create(ctx context.Context, username string, passwordHash []byte) (*models.User, error)

	// GetByUsername returns the account for the given username, or
	// common.ErrNotFound when it does not exist.
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// DeleteByID removes the account row. Dependent rows (entries,
	// refresh tokens) are expected to cascade.
	DeleteByID(ctx context.Context, id string) error
}
