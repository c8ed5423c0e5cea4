package sync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/moodmapper/moodmapper/internal/client/client"
	"github.com/moodmapper/moodmapper/internal/client/models"
	"github.com/moodmapper/moodmapper/internal/client/repositories/entries"
	"github.com/moodmapper/moodmapper/internal/client/store"
	"github.com/moodmapper/moodmapper/internal/common"
	"github.com/moodmapper/moodmapper/internal/logging"
)

// ErrBusy is returned when a pull batch or bulk operation arrives while
// another apply is in flight. The caller retries on its next tick.
var ErrBusy = errors.New("sync busy")

// state is the reconciler's serialization state. Push-while-pulling and
// pull-while-pulling are ruled out by construction instead of ad hoc
// boolean flags.
type state int

const (
	stateIdle state = iota
	statePulling
	statePushing
)

const (
	// DefaultPullDebounce suppresses the echo where our own push
	// immediately comes back as a remote change. Heuristic, tunable.
	DefaultPullDebounce = 3 * time.Second

	// DefaultSyncRecency is how long after a successful pull the status
	// estimator keeps reporting "synced" without a count match.
	DefaultSyncRecency = 5 * time.Minute
)

// Options tunes the reconciler. Zero values take the defaults above.
type Options struct {
	PullDebounce time.Duration
	SyncRecency  time.Duration
}

// Reconciler owns the push and pull pipelines between the local store and
// the user's remote collection. All session state (gate, state machine,
// debounce timestamp, counts) lives behind one mutex; it is rebuilt on
// every process start.
type Reconciler struct {
	store    *store.Store
	remote   client.Remote
	identity client.Identity
	logger   logging.Logger

	debounce time.Duration
	recency  time.Duration

	mu              sync.Mutex
	enabled         bool
	st              state
	lastLocalChange time.Time
	lastSyncTime    time.Time
	localCount      int
	remoteCount     int
	synced          bool
	unsubscribe     func()

	// now is a test seam for the debounce and recency clocks.
	now func() time.Time
}

// New wires a reconciler. Call Start to attach it to the store's change
// feed.
func New(st *store.Store, remote client.Remote, identity client.Identity, opts Options, logger logging.Logger) *Reconciler {
	if opts.PullDebounce == 0 {
		opts.PullDebounce = DefaultPullDebounce
	}
	if opts.SyncRecency == 0 {
		opts.SyncRecency = DefaultSyncRecency
	}
	return &Reconciler{
		store:    st,
		remote:   remote,
		identity: identity,
		logger:   logger.With("component", "sync"),
		debounce: opts.PullDebounce,
		recency:  opts.SyncRecency,
		enabled:  true,
		st:       stateIdle,
		now:      time.Now,
	}
}

// Start subscribes to the local store's commit feed. Idempotent teardown
// via Stop.
func (r *Reconciler) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.unsubscribe != nil {
		return
	}
	r.unsubscribe = r.store.Subscribe(r.onLocalChange)
}

// Stop detaches from the commit feed.
func (r *Reconciler) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.unsubscribe != nil {
		r.unsubscribe()
		r.unsubscribe = nil
	}
}

// Enable opens the push gate.
func (r *Reconciler) Enable() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enabled = true
}

// Disable closes the push gate. The remote subscription keeps running:
// pulls still apply, so the local store does not drift arbitrarily far.
// Local writes made while disabled are not retried automatically; the
// next edit or an explicit bulk push brings the remote side current.
func (r *Reconciler) Disable() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enabled = false
}

// Enabled reports the gate state.
func (r *Reconciler) Enabled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.enabled
}

func (r *Reconciler) syncAvailable() bool {
	return r.identity.UserID() != "" && !r.identity.IsAnonymous()
}

// onLocalChange is the push pipeline. It runs synchronously on the
// committing goroutine, once per local transaction.
func (r *Reconciler) onLocalChange(cs store.ChangeSet) {
	ctx := context.Background()

	r.mu.Lock()
	if r.st != statePulling {
		// Record the debounce timestamp for every genuine local
		// mutation, even while the gate is closed, so disabling sync
		// does not defeat the debounce. Changes applied by the pull
		// pipeline are not local mutations and must not arm it.
		r.lastLocalChange = r.now()
	}
	if !r.enabled || r.st != stateIdle {
		// Skipped, not queued: the next local mutation pushes current
		// state anyway.
		r.mu.Unlock()
		return
	}
	if !r.syncAvailable() {
		r.mu.Unlock()
		return
	}
	r.st = statePushing
	r.mu.Unlock()

	defer r.release(statePushing)

	r.push(ctx, cs)
}

// push upserts inserted and updated entries, then replicates deletes as
// soft-delete marks. Failures are logged and surface as isSynced=false;
// there is no automatic retry beyond the next natural trigger.
func (r *Reconciler) push(ctx context.Context, cs store.ChangeSet) {
	ok := true

	upserts := make([]models.Entry, 0, len(cs.Inserted)+len(cs.Updated))
	upserts = append(upserts, cs.Inserted...)
	upserts = append(upserts, cs.Updated...)
	for i := range upserts {
		if err := r.remote.SetDoc(ctx, upserts[i].Document()); err != nil {
			r.logger.Warn(ctx, "push upsert failed", "id", upserts[i].ID, "error", err)
			ok = false
		}
	}

	for i := range cs.Deleted {
		e := &cs.Deleted[i]
		if err := r.remote.SetDoc(ctx, models.DeletionMark(e.ID, e.LastModified)); err != nil {
			r.logger.Warn(ctx, "push delete mark failed", "id", e.ID, "error", err)
			ok = false
		}
	}

	r.recomputeStatus(ctx, ok)
}

// HandleRemoteBatch is the pull pipeline; the watcher invokes it with each
// non-empty batch. A nil return tells the watcher the batch is settled and
// the cursor may advance, including the case where the batch was dropped
// by the debounce window, which exists precisely to discard the echo of
// our own pushes.
func (r *Reconciler) HandleRemoteBatch(ctx context.Context, docs []models.Document) error {
	r.mu.Lock()
	if r.st != stateIdle {
		r.mu.Unlock()
		return ErrBusy
	}
	if sinceLocal := r.now().Sub(r.lastLocalChange); sinceLocal < r.debounce {
		r.mu.Unlock()
		r.logger.Debug(ctx, "remote batch dropped by debounce", "since_local_change", sinceLocal)
		return nil
	}
	r.st = statePulling
	r.mu.Unlock()

	defer r.release(statePulling)

	err := r.store.Apply(ctx, func(ctx context.Context, repo entries.Repository) (store.ChangeSet, error) {
		return applyDocuments(ctx, repo, docs)
	})
	if err != nil {
		// The transaction rolled back; the batch is abandoned for this
		// cycle and the cursor stays put.
		r.logger.Error(ctx, "failed to apply remote batch", "docs", len(docs), "error", err)
		return err
	}

	r.mu.Lock()
	r.lastSyncTime = r.now()
	r.mu.Unlock()
	r.recomputeStatus(ctx, true)
	return nil
}

// applyDocuments resolves each document against the local row and maps the
// winners in, all inside one transaction.
func applyDocuments(ctx context.Context, repo entries.Repository, docs []models.Document) (store.ChangeSet, error) {
	var cs store.ChangeSet
	for _, doc := range docs {
		if doc.ID == "" {
			continue
		}
		local, err := repo.GetByID(ctx, doc.ID)
		if err != nil && !errors.Is(err, common.ErrNotFound) {
			return cs, err
		}
		if errors.Is(err, common.ErrNotFound) {
			local = nil
		}

		if !ShouldApplyRemote(doc, local) {
			// Stale remote data: discarded silently, normal outcome.
			continue
		}

		if doc.IsDeletionMark() {
			if local == nil {
				continue
			}
			if err := repo.DeleteByID(ctx, doc.ID); err != nil {
				return cs, err
			}
			cs.Deleted = append(cs.Deleted, *local)
			continue
		}

		if local == nil {
			e := models.EntryFromDocument(doc)
			if err := repo.Upsert(ctx, &e); err != nil {
				return cs, err
			}
			cs.Inserted = append(cs.Inserted, e)
			continue
		}

		local.ApplyDocument(doc)
		if err := repo.Upsert(ctx, local); err != nil {
			return cs, err
		}
		cs.Updated = append(cs.Updated, *local)
	}
	return cs, nil
}

// release returns the state machine to idle if still in the given state.
func (r *Reconciler) release(from state) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.st == from {
		r.st = stateIdle
	}
}

// acquireFor claims the state machine for a bulk operation and closes the
// push gate, returning a restore function that reopens everything to its
// prior state. The restore runs on every path, success or failure.
func (r *Reconciler) acquireFor(st state) (restore func(), err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.st != stateIdle {
		return nil, ErrBusy
	}
	r.st = st
	wasEnabled := r.enabled
	r.enabled = false
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.st = stateIdle
		r.enabled = wasEnabled
	}, nil
}

// ForcePushAll upserts every local entry to the remote collection. The
// push gate is closed for the duration to avoid cross-talk with the
// change feed.
func (r *Reconciler) ForcePushAll(ctx context.Context) error {
	if !r.syncAvailable() {
		return client.ErrNotSignedIn
	}
	restore, err := r.acquireFor(statePushing)
	if err != nil {
		return err
	}
	defer restore()

	list, err := r.store.All(ctx)
	if err != nil {
		return fmt.Errorf("failed to read local entries: %w", err)
	}

	var errs []error
	for i := range list {
		if err := r.remote.SetDoc(ctx, list[i].Document()); err != nil {
			errs = append(errs, fmt.Errorf("entry %s: %w", list[i].ID, err))
		}
	}
	err = errors.Join(errs...)
	r.recomputeStatus(ctx, err == nil)
	return err
}

// PullAllOverwritingLocal replaces the entire local entry set with the
// remote collection ("restore from cloud"): destructive for local-only
// data. Soft-deleted remote documents are not materialized.
func (r *Reconciler) PullAllOverwritingLocal(ctx context.Context) error {
	if !r.syncAvailable() {
		return client.ErrNotSignedIn
	}
	restore, err := r.acquireFor(statePulling)
	if err != nil {
		return err
	}
	defer restore()

	docs, err := r.remote.GetAll(ctx)
	if err != nil {
		r.recomputeStatus(ctx, false)
		return fmt.Errorf("failed to fetch remote collection: %w", err)
	}

	list := make([]models.Entry, 0, len(docs))
	for _, doc := range docs {
		if doc.ID == "" || doc.IsDeletionMark() {
			continue
		}
		list = append(list, models.EntryFromDocument(doc))
	}

	if err := r.store.ReplaceAll(ctx, list); err != nil {
		return err
	}

	r.mu.Lock()
	r.lastSyncTime = r.now()
	r.mu.Unlock()
	r.recomputeStatus(ctx, true)
	return nil
}

// PushAllOverwritingRemote makes the remote collection an exact replica of
// the local store ("mirror"): every existing remote document is deleted
// and every local entry re-uploaded, in one atomic server-side batch.
// Destructive and irreversible for remote-only data.
func (r *Reconciler) PushAllOverwritingRemote(ctx context.Context) error {
	if !r.syncAvailable() {
		return client.ErrNotSignedIn
	}
	restore, err := r.acquireFor(statePushing)
	if err != nil {
		return err
	}
	defer restore()

	list, err := r.store.All(ctx)
	if err != nil {
		return fmt.Errorf("failed to read local entries: %w", err)
	}
	docs, err := r.remote.GetAll(ctx)
	if err != nil {
		r.recomputeStatus(ctx, false)
		return fmt.Errorf("failed to fetch remote collection: %w", err)
	}

	ops := make([]client.BatchOp, 0, len(docs)+len(list))
	for _, doc := range docs {
		ops = append(ops, client.BatchOp{Kind: client.BatchDelete, ID: doc.ID})
	}
	for i := range list {
		ops = append(ops, client.BatchOp{Kind: client.BatchUpsert, Doc: list[i].Document()})
	}

	if err := r.remote.BatchWrite(ctx, ops); err != nil {
		r.recomputeStatus(ctx, false)
		return fmt.Errorf("failed to mirror local entries: %w", err)
	}

	r.mu.Lock()
	r.lastSyncTime = r.now()
	r.mu.Unlock()
	r.recomputeStatus(ctx, true)
	return nil
}

// TestConnection probes the server and reports a user-facing verdict.
func (r *Reconciler) TestConnection(ctx context.Context) (bool, string) {
	if !r.syncAvailable() {
		return false, "not signed in"
	}
	if err := r.remote.Ping(ctx); err != nil {
		return false, fmt.Sprintf("server unreachable: %v", err)
	}
	return true, "connection ok"
}
