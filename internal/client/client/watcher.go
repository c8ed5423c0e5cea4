package client

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/moodmapper/moodmapper/internal/client/models"
	"github.com/moodmapper/moodmapper/internal/logging"
)

// Cursor persists the last-pull watermark that scopes incremental remote
// queries. It must survive restarts.
type Cursor interface {
	// LastPull returns the watermark, or the zero time when none exists
	// yet (first run pulls everything).
	LastPull(ctx context.Context) (time.Time, error)

	// SetLastPull advances the watermark.
	SetLastPull(ctx context.Context, t time.Time) error
}

// Handler consumes one non-empty batch of remote documents. A nil return
// means the batch was fully applied and the cursor may advance.
type Handler func(ctx context.Context, docs []models.Document) error

// Watcher is the remote change subscriber: it polls the user's collection
// for documents modified after the cursor and hands non-empty batches to
// the handler. The cursor advances to "now" only after a batch has been
// applied; empty polls never move it, so changes landing between the
// poll's "now" and true server time are not silently skipped.
//
// The watcher produces no events while there is no signed-in identity.
// Identity is re-checked on every tick, so sign-out takes effect at the
// next poll and a later sign-in starts from that user's own cursor.
type Watcher struct {
	remote   Remote
	identity Identity
	cursor   Cursor
	handler  Handler
	interval time.Duration
	logger   logging.Logger

	// now is a test seam for cursor advancement.
	now func() time.Time
}

// NewWatcher wires a watcher. interval controls poll frequency.
func NewWatcher(remote Remote, identity Identity, cursor Cursor, handler Handler, interval time.Duration, logger logging.Logger) *Watcher {
	return &Watcher{
		remote:   remote,
		identity: identity,
		cursor:   cursor,
		handler:  handler,
		interval: interval,
		logger:   logger.With("component", "watcher"),
		now:      time.Now,
	}
}

// Run polls until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.PollOnce(ctx); err != nil {
				w.logger.Warn(ctx, "poll failed", "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

// PollOnce performs a single poll cycle: fetch changes after the cursor,
// hand them to the handler, advance the cursor on success. Exported so
// callers (and tests) can force an immediate cycle.
func (w *Watcher) PollOnce(ctx context.Context) error {
	if w.identity.UserID() == "" || w.identity.IsAnonymous() {
		return nil
	}

	since, err := w.cursor.LastPull(ctx)
	if err != nil {
		return err
	}

	var docs []models.Document
	fetch := func() error {
		var err error
		docs, err = w.remote.Changes(ctx, since)
		return err
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	if err := backoff.Retry(fetch, policy); err != nil {
		return err
	}

	if len(docs) == 0 {
		// Advancing on an empty batch could skip changes that land
		// between our "now" and true server time.
		return nil
	}

	if err := w.handler(ctx, docs); err != nil {
		return err
	}
	return w.cursor.SetLastPull(ctx, w.now().UTC())
}
