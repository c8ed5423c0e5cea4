// Package store wraps the client's sqlite database with a typed
// change-notification feed: every committed transaction yields one
// ChangeSet to each subscriber, synchronously, in commit order. The sync
// reconciler's push pipeline is driven entirely by this feed.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/moodmapper/moodmapper/internal/client/migrations"
	"github.com/moodmapper/moodmapper/internal/client/models"
	"github.com/moodmapper/moodmapper/internal/client/repositories/entries"
	"github.com/moodmapper/moodmapper/internal/dbx"
)

// ChangeSet describes the entries affected by one committed transaction,
// split into three disjoint sets.
type ChangeSet struct {
	Inserted []models.Entry
	Updated  []models.Entry
	Deleted  []models.Entry
}

// Empty reports whether the change set carries no entries at all.
func (c ChangeSet) Empty() bool {
	return len(c.Inserted) == 0 && len(c.Updated) == 0 && len(c.Deleted) == 0
}

// Observer receives one ChangeSet per committed transaction.
type Observer func(ChangeSet)

// Store is the local persistence collaborator: CRUD over mood entries plus
// the commit feed. All writes go through one *sql.DB; each public mutation
// is one transaction.
type Store struct {
	db *sql.DB

	mu        sync.Mutex
	observers map[int]Observer
	nextObsID int

	// now is a test seam for the wall clock used to bump LastModified.
	now func() time.Time
}

// RunMigrations applies the embedded goose migrations to the database.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		log.Fatal("failed to set goose dialect:", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// Open opens (creating if needed) the sqlite database at dsn, applies
// migrations, and returns a ready Store.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return New(db), nil
}

// New wraps an already-migrated database. Used by tests that prepare their
// own in-memory database.
func New(db *sql.DB) *Store {
	return &Store{
		db:        db,
		observers: make(map[int]Observer),
		now:       time.Now,
	}
}

func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle for collaborators that share the same
// database file (metadata repository, auth service).
func (s *Store) DB() *sql.DB {
	return s.db
}

// Subscribe registers an observer for commit notifications and returns a
// function that removes it again. Observers run synchronously after each
// commit, on the committing goroutine.
func (s *Store) Subscribe(fn Observer) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextObsID
	s.nextObsID++
	s.observers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.observers, id)
	}
}

func (s *Store) notify(cs ChangeSet) {
	if cs.Empty() {
		return
	}
	s.mu.Lock()
	obs := make([]Observer, 0, len(s.observers))
	for _, fn := range s.observers {
		obs = append(obs, fn)
	}
	s.mu.Unlock()
	for _, fn := range obs {
		fn(cs)
	}
}

// Create inserts a new entry. LastModified is bumped before the write; the
// commit is announced as one insertion.
func (s *Store) Create(ctx context.Context, e *models.Entry) error {
	e.Touch(s.now().UTC())
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return entries.NewSQLiteRepository(tx).Upsert(ctx, e)
	})
	if err != nil {
		return fmt.Errorf("failed to create entry: %w", err)
	}
	s.notify(ChangeSet{Inserted: []models.Entry{*e}})
	return nil
}

// Update rewrites an existing entry. LastModified is bumped before the
// write; the commit is announced as one update.
func (s *Store) Update(ctx context.Context, e *models.Entry) error {
	e.Touch(s.now().UTC())
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return entries.NewSQLiteRepository(tx).Upsert(ctx, e)
	})
	if err != nil {
		return fmt.Errorf("failed to update entry: %w", err)
	}
	s.notify(ChangeSet{Updated: []models.Entry{*e}})
	return nil
}

// Delete removes an entry by id. The deleted copy in the change set carries
// a freshly bumped LastModified so the replicated tombstone outranks every
// previously pushed state of the entry.
func (s *Store) Delete(ctx context.Context, id string) error {
	var deleted *models.Entry
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := entries.NewSQLiteRepository(tx)
		e, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := repo.DeleteByID(ctx, id); err != nil {
			return err
		}
		e.Touch(s.now().UTC())
		deleted = e
		return nil
	})
	if err != nil {
		return err
	}
	s.notify(ChangeSet{Deleted: []models.Entry{*deleted}})
	return nil
}

// Get, All and Count are read-through helpers over the entries repository.

func (s *Store) Get(ctx context.Context, id string) (*models.Entry, error) {
	return entries.NewSQLiteRepository(s.db).GetByID(ctx, id)
}

func (s *Store) All(ctx context.Context) ([]models.Entry, error) {
	return entries.NewSQLiteRepository(s.db).GetAll(ctx)
}

func (s *Store) Count(ctx context.Context) (int, error) {
	return entries.NewSQLiteRepository(s.db).Count(ctx)
}

// Apply runs fn against a transactional repository and commits the result
// as a single batch. The ChangeSet returned by fn is announced only after
// the commit succeeds; on error nothing is announced and the transaction
// rolls back. The pull pipeline applies every remote batch through here.
func (s *Store) Apply(ctx context.Context, fn func(ctx context.Context, repo entries.Repository) (ChangeSet, error)) error {
	var cs ChangeSet
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		cs, err = fn(ctx, entries.NewSQLiteRepository(tx))
		return err
	})
	if err != nil {
		return err
	}
	s.notify(cs)
	return nil
}

// ReplaceAll clears the local entry set and inserts the given entries, as
// one transaction. Used by the restore-from-cloud bulk operation.
func (s *Store) ReplaceAll(ctx context.Context, list []models.Entry) error {
	var old []models.Entry
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := entries.NewSQLiteRepository(tx)
		var err error
		old, err = repo.GetAll(ctx)
		if err != nil {
			return err
		}
		if err := repo.DeleteAll(ctx); err != nil {
			return err
		}
		for i := range list {
			if err := repo.Upsert(ctx, &list[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to replace local entries: %w", err)
	}
	s.notify(ChangeSet{Inserted: list, Deleted: old})
	return nil
}
