// Package client talks to the MoodMapper server: the per-user remote
// document collection and the account endpoints. The sync reconciler only
// sees the Remote and Identity interfaces; tests substitute fakes.
package client

import (
	"context"
	"time"

	"github.com/moodmapper/moodmapper/internal/client/models"
	"github.com/moodmapper/moodmapper/internal/wire"
)

// Identity exposes the authenticated user. Sync treats "no user" and
// "anonymous user" identically: no durable cloud-side identity, no sync.
type Identity interface {
	UserID() string
	IsAnonymous() bool
}

// Batch write operations come from the shared wire schema.
type (
	BatchOpKind = wire.BatchOpKind
	BatchOp     = wire.BatchOp
)

const (
	BatchUpsert = wire.BatchUpsert
	BatchDelete = wire.BatchDelete
)

// Remote is the remote store collaborator: the user's moodEntries
// collection. All calls require a signed-in identity.
type Remote interface {
	// SetDoc upserts the document keyed by its id, merging present fields
	// onto the stored document.
	SetDoc(ctx context.Context, doc models.Document) error

	// DeleteDoc removes the document outright. Only bulk mirror operations
	// use this; ordinary deletes replicate as soft-delete marks.
	DeleteDoc(ctx context.Context, id string) error

	// GetAll fetches the entire collection, unscoped by cursor.
	GetAll(ctx context.Context) ([]models.Document, error)

	// Count returns the number of live (non-soft-deleted) documents in
	// the collection. Feeds the sync status estimator.
	Count(ctx context.Context) (int, error)

	// Changes fetches documents modified strictly after the given time.
	// The zero time means "everything" (first run).
	Changes(ctx context.Context, after time.Time) ([]models.Document, error)

	// BatchWrite applies the ops in order inside one server-side
	// transaction: the batch fully succeeds or fully fails.
	BatchWrite(ctx context.Context, ops []BatchOp) error

	// Ping checks server liveness. No authentication required.
	Ping(ctx context.Context) error
}
