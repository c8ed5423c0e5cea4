package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/moodmapper/moodmapper/internal/common"
	"github.com/moodmapper/moodmapper/internal/dbx"
	"github.com/moodmapper/moodmapper/internal/server/models"
	"github.com/moodmapper/moodmapper/internal/server/repositories/documents"
	"github.com/moodmapper/moodmapper/internal/server/repositories/repomanager"
	"github.com/moodmapper/moodmapper/internal/wire"
)

// DocumentService maintains the per-user mood entry collections. Writes are
// merge upserts: fields present in the incoming document overwrite the
// stored row, absent fields keep their values, so a partial soft-delete
// mark lands on a full entry without erasing it.
type DocumentService struct {
	db *sql.DB
	rm repomanager.RepositoryManager
}

// NewDocumentService constructs a DocumentService on the given database handle.
func NewDocumentService(db *sql.DB, rm repomanager.RepositoryManager) *DocumentService {
	return &DocumentService{db: db, rm: rm}
}

func validateDocument(doc wire.Document) error {
	if doc.ID == "" {
		return fmt.Errorf("document id is empty")
	}
	if doc.LastModified.IsZero() {
		return fmt.Errorf("document %s carries no lastModified", doc.ID)
	}
	if doc.Score != nil && (*doc.Score < common.ScoreMin || *doc.Score > common.ScoreMax) {
		return common.ErrScoreOutOfRange
	}
	return nil
}

// Upsert merges the document onto the stored row, creating the row when it
// does not exist yet.
func (s *DocumentService) Upsert(ctx context.Context, userID string, doc wire.Document) error {
	if err := validateDocument(doc); err != nil {
		return err
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return mergeUpsert(ctx, s.rm.Documents(tx), userID, doc)
	})
}

func mergeUpsert(ctx context.Context, repo documents.Repository, userID string, doc wire.Document) error {
	entry, err := repo.Get(ctx, userID, doc.ID)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			return err
		}
		entry = &models.Entry{UserID: userID, ID: doc.ID}
	}
	entry.Merge(doc)
	return repo.Put(ctx, entry)
}

// Delete removes the row outright. Ordinary client deletes replicate as
// soft-delete marks through Upsert; this is the hard removal used by the
// bulk mirror path.
func (s *DocumentService) Delete(ctx context.Context, userID, id string) error {
	return s.rm.Documents(s.db).Delete(ctx, userID, id)
}

// GetAll returns the user's entire collection as wire documents.
func (s *DocumentService) GetAll(ctx context.Context, userID string) ([]wire.Document, error) {
	entries, err := s.rm.Documents(s.db).GetAll(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toDocuments(entries), nil
}

// Count returns the number of live (non-soft-deleted) documents.
func (s *DocumentService) Count(ctx context.Context, userID string) (int, error) {
	return s.rm.Documents(s.db).CountLive(ctx, userID)
}

// ChangedAfter returns documents modified strictly after the given time.
func (s *DocumentService) ChangedAfter(ctx context.Context, userID string, after time.Time) ([]wire.Document, error) {
	entries, err := s.rm.Documents(s.db).ChangedAfter(ctx, userID, after)
	if err != nil {
		return nil, err
	}
	return toDocuments(entries), nil
}

// BatchWrite applies the operations in order inside one transaction; the
// batch fully succeeds or fully fails.
func (s *DocumentService) BatchWrite(ctx context.Context, userID string, ops []wire.BatchOp) error {
	for _, op := range ops {
		switch op.Kind {
		case wire.BatchUpsert:
			if err := validateDocument(op.Doc); err != nil {
				return err
			}
		case wire.BatchDelete:
			if op.ID == "" {
				return fmt.Errorf("delete op without id")
			}
		default:
			return fmt.Errorf("unknown batch op kind %q", op.Kind)
		}
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.rm.Documents(tx)
		for _, op := range ops {
			switch op.Kind {
			case wire.BatchUpsert:
				if err := mergeUpsert(ctx, repo, userID, op.Doc); err != nil {
					return err
				}
			case wire.BatchDelete:
				if err := repo.Delete(ctx, userID, op.ID); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func toDocuments(entries []models.Entry) []wire.Document {
	docs := make([]wire.Document, 0, len(entries))
	for i := range entries {
		docs = append(docs, entries[i].Document())
	}
	return docs
}
