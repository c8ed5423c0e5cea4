package models

import (
	"database/sql"
	"time"

	"github.com/moodmapper/moodmapper/internal/wire"
)

// Entry is the stored form of one mood entry inside a user's collection.
// Score and Timestamp are nullable because a soft-delete mark may arrive
// before the full entry ever did, creating a row that carries nothing but
// the flag and the modification time.
type Entry struct {
	UserID       string
	ID           string
	Score        sql.NullInt64
	Note         string
	Timestamp    sql.NullTime
	Latitude     sql.NullFloat64
	Longitude    sql.NullFloat64
	PlaceName    string
	SoftDeleted  bool
	LastModified time.Time
}

// Merge applies the document's present fields onto the row. Absent fields
// keep their stored values; explicit coordinate nulls clear them.
// LastModified is always taken from the document.
func (e *Entry) Merge(d wire.Document) {
	if d.Score != nil {
		e.Score = sql.NullInt64{Int64: int64(*d.Score), Valid: true}
	}
	if d.Note != nil {
		e.Note = *d.Note
	}
	if d.Timestamp != nil {
		e.Timestamp = sql.NullTime{Time: *d.Timestamp, Valid: true}
	}
	if d.Latitude != nil {
		e.Latitude = sql.NullFloat64{Float64: d.Latitude.Float64, Valid: d.Latitude.Valid}
	}
	if d.Longitude != nil {
		e.Longitude = sql.NullFloat64{Float64: d.Longitude.Float64, Valid: d.Longitude.Valid}
	}
	if d.PlaceName != nil {
		e.PlaceName = *d.PlaceName
	}
	if d.SoftDeleted != nil {
		e.SoftDeleted = *d.SoftDeleted
	}
	e.LastModified = d.LastModified
}

// Document converts the row back to its wire representation.
func (e *Entry) Document() wire.Document {
	d := wire.Document{
		ID:           e.ID,
		Note:         &e.Note,
		PlaceName:    &e.PlaceName,
		SoftDeleted:  &e.SoftDeleted,
		LastModified: e.LastModified,
	}
	if e.Score.Valid {
		score := int(e.Score.Int64)
		d.Score = &score
	}
	if e.Timestamp.Valid {
		ts := e.Timestamp.Time
		d.Timestamp = &ts
	}
	d.Latitude = &wire.NullFloat64{Float64: e.Latitude.Float64, Valid: e.Latitude.Valid}
	d.Longitude = &wire.NullFloat64{Float64: e.Longitude.Float64, Valid: e.Longitude.Valid}
	return d
}
