package documents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/moodmapper/moodmapper/internal/common"
	"github.com/moodmapper/moodmapper/internal/dbx"
	"github.com/moodmapper/moodmapper/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX (satisfied by
// *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const entryColumns = `user_id, id, score, note, ts, latitude, longitude, placename, soft_deleted, last_modified`

func scanEntry(row interface{ Scan(...any) error }) (*models.Entry, error) {
	e := &models.Entry{}
	err := row.Scan(&e.UserID, &e.ID, &e.Score, &e.Note, &e.Timestamp,
		&e.Latitude, &e.Longitude, &e.PlaceName, &e.SoftDeleted, &e.LastModified)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID, id string) (*models.Entry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM mood_entries
		WHERE user_id = $1 AND id = $2
	`
	e, err := scanEntry(r.db.QueryRowContext(ctx, query, userID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}

func (r *PostgresRepository) Put(ctx context.Context, entry *models.Entry) error {
	query := `
		INSERT INTO mood_entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id, id) DO UPDATE SET
			score = EXCLUDED.score,
			note = EXCLUDED.note,
			ts = EXCLUDED.ts,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			placename = EXCLUDED.placename,
			soft_deleted = EXCLUDED.soft_deleted,
			last_modified = EXCLUDED.last_modified
	`
	_, err := r.db.ExecContext(ctx, query,
		entry.UserID, entry.ID, entry.Score, entry.Note, entry.Timestamp,
		entry.Latitude, entry.Longitude, entry.PlaceName, entry.SoftDeleted, entry.LastModified)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	query := `
		DELETE FROM mood_entries
		WHERE user_id = $1 AND id = $2
	`
	if _, err := r.db.ExecContext(ctx, query, userID, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetAll(ctx context.Context, userID string) ([]models.Entry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM mood_entries
		WHERE user_id = $1
		ORDER BY last_modified
	`
	return r.queryEntries(ctx, query, userID)
}

func (r *PostgresRepository) CountLive(ctx context.Context, userID string) (int, error) {
	query := `
		SELECT count(*)
		FROM mood_entries
		WHERE user_id = $1 AND NOT soft_deleted
	`
	var count int
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return count, nil
}

func (r *PostgresRepository) ChangedAfter(ctx context.Context, userID string, after time.Time) ([]models.Entry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM mood_entries
		WHERE user_id = $1 AND last_modified > $2
		ORDER BY last_modified
	`
	return r.queryEntries(ctx, query, userID, after)
}

func (r *PostgresRepository) DeleteAllByUserID(ctx context.Context, userID string) error {
	query := `
		DELETE FROM mood_entries
		WHERE user_id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) queryEntries(ctx context.Context, query string, args ...any) ([]models.Entry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var entries []models.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return entries, nil
}
