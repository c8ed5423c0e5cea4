// Package sync reconciles the local mood-entry store with the user's
// remote collection, in both directions.
//
// Local commits reach the reconciler through the store's change feed and
// are pushed out as document upserts (deletes travel as soft-delete
// marks). Remote changes arrive from the watcher and are applied through
// last-write-wins conflict resolution inside a single local transaction
// per batch. A state machine (idle, pulling, pushing) serializes the two
// pipelines and suppresses the feedback loop where an applied remote
// batch would be re-pushed as if it were a local edit; a short debounce
// window after each local mutation drops the echo of our own pushes.
//
// The reconciler also owns the enable/disable gate, the bulk operations
// (force push, restore from cloud, mirror local to remote) and the
// heuristic "are we in sync" estimator.
package sync
