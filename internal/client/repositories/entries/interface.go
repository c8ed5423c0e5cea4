// Package entries persists mood entries in the client's local sqlite
// database.
package entries

import (
	"context"

	"github.com/moodmapper/moodmapper/internal/client/models"
)

// Repository is the local persistence surface for mood entries.
//
// The local store never keeps tombstones: deletes remove the row and the
// soft-delete flag only exists on the wire.
type Repository interface {
	Upsert(ctx context.Context, e *models.Entry) error
	GetByID(ctx context.Context, id string) (*models.Entry, error)
	GetAll(ctx context.Context) ([]models.Entry, error)
	DeleteByID(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
	Count(ctx context.Context) (int, error)
}
