package sync

import (
	"context"
	"time"
)

// Status is a snapshot of the reconciler's user-facing observables.
type Status struct {
	Enabled      bool
	Synced       bool
	LastSyncTime time.Time
	LocalCount   int
	RemoteCount  int
}

// Status recomputes the estimate on demand and returns the snapshot.
func (r *Reconciler) Status(ctx context.Context) Status {
	r.recomputeStatus(ctx, true)

	r.mu.Lock()
	defer r.mu.Unlock()
	return Status{
		Enabled:      r.enabled,
		Synced:       r.synced,
		LastSyncTime: r.lastSyncTime,
		LocalCount:   r.localCount,
		RemoteCount:  r.remoteCount,
	}
}

// recomputeStatus refreshes counts and derives the isSynced heuristic:
// equal nonzero counts, both sides empty, or a pull within the recency
// window. Counts matching while content differs is an accepted false
// positive; a full content diff costs more than the signal is worth.
// healthy=false (a failed push or pull) forces not-synced regardless of
// counts until the next successful cycle.
func (r *Reconciler) recomputeStatus(ctx context.Context, healthy bool) {
	local, lerr := r.store.Count(ctx)

	remote := -1
	if r.syncAvailable() {
		if n, err := r.remote.Count(ctx); err == nil {
			remote = n
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if lerr == nil {
		r.localCount = local
	}
	if remote >= 0 {
		r.remoteCount = remote
	}

	if !healthy || lerr != nil {
		r.synced = false
		return
	}

	countsMatch := remote >= 0 && r.localCount == r.remoteCount && (r.localCount > 0 || r.remoteCount == 0)
	recentPull := !r.lastSyncTime.IsZero() && r.now().Sub(r.lastSyncTime) < r.recency
	r.synced = countsMatch || recentPull
}
