package entries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/moodmapper/moodmapper/internal/client/models"
	"github.com/moodmapper/moodmapper/internal/common"
	"github.com/moodmapper/moodmapper/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or
// *sql.Tx), so the same code serves both standalone calls and calls inside
// a reconciliation transaction.
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Upsert inserts the entry or, on id conflict, updates every mutable column.
func (r *SQLiteRepository) Upsert(ctx context.Context, e *models.Entry) error {
	query := `INSERT INTO mood_entries (id, score, note, timestamp, latitude, longitude, placename, last_modified)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET score = excluded.score,
				note = excluded.note,
				timestamp = excluded.timestamp,
				latitude = excluded.latitude,
				longitude = excluded.longitude,
				placename = excluded.placename,
				last_modified = excluded.last_modified
	`
	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.Score, e.Note, e.Timestamp, e.Latitude, e.Longitude, e.PlaceName, e.LastModified)
	if err != nil {
		return fmt.Errorf("failed to upsert entry: %w", err)
	}
	return nil
}

// GetByID returns one entry or common.ErrNotFound.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Entry, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, score, note, timestamp, latitude, longitude, placename, last_modified
		 FROM mood_entries WHERE id = ?`, id)

	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}
	return e, nil
}

// GetAll returns every entry ordered by the mood timestamp, newest first.
func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Entry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, score, note, timestamp, latitude, longitude, placename, last_modified
		 FROM mood_entries ORDER BY timestamp DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var result []models.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry row: %w", err)
		}
		result = append(result, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entry rows: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM mood_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM mood_entries`)
	if err != nil {
		return fmt.Errorf("failed to clear entries: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM mood_entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*models.Entry, error) {
	var e models.Entry
	var lat, lon sql.NullFloat64
	if err := row.Scan(&e.ID, &e.Score, &e.Note, &e.Timestamp, &lat, &lon, &e.PlaceName, &e.LastModified); err != nil {
		return nil, err
	}
	if lat.Valid {
		e.Latitude = &lat.Float64
	}
	if lon.Valid {
		e.Longitude = &lon.Float64
	}
	return &e, nil
}
