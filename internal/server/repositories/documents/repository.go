// Package documents declares the server-side repository contract for the
// per-user mood entry collections.
package documents

import (
	"context"
	"time"

	"github.com/moodmapper/moodmapper/internal/server/models"
)

// Repository defines persistence operations for mood entry rows. Merge
// semantics live one layer up: callers read the current row, merge the
// incoming document onto it, and Put the result back, all inside one
// transaction.
type Repository interface {
	// Get returns the row keyed by (userID, id), or common.ErrNotFound.
	Get(ctx context.Context, userID, id string) (*models.Entry, error)

	// Put upserts the full row keyed by (UserID, ID).
	Put(ctx context.Context, entry *models.Entry) error

	// Delete removes the row outright. Deleting a non-existent row is
	// not an error.
	Delete(ctx context.Context, userID, id string) error

	// GetAll returns the user's entire collection, soft-deleted rows
	// included, ordered by last_modified.
	GetAll(ctx context.Context, userID string) ([]models.Entry, error)

	// CountLive returns the number of rows not marked soft-deleted.
	CountLive(ctx context.Context, userID string) (int, error)

	// ChangedAfter returns rows modified strictly after the given time,
	// ordered by last_modified. The zero time matches everything.
	ChangedAfter(ctx context.Context, userID string, after time.Time) ([]models.Entry, error)

	// DeleteAllByUserID drops the user's whole collection.
	DeleteAllByUserID(ctx context.Context, userID string) error
}
