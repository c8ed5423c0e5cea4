package models

import (
	"time"

	"github.com/moodmapper/moodmapper/internal/wire"
)

// Document and NullFloat64 come from the shared wire schema; the aliases
// keep client code reading naturally while the server speaks the same types.
type (
	Document    = wire.Document
	NullFloat64 = wire.NullFloat64
)

// Document converts the entry to its full wire representation. Every field
// is present so a merge upsert is equivalent to a replace.
func (e *Entry) Document() Document {
	score := e.Score
	note := e.Note
	ts := e.Timestamp
	place := e.PlaceName
	deleted := e.SoftDeleted

	lat := &NullFloat64{}
	lon := &NullFloat64{}
	if e.Latitude != nil {
		lat.Float64, lat.Valid = *e.Latitude, true
	}
	if e.Longitude != nil {
		lon.Float64, lon.Valid = *e.Longitude, true
	}

	return Document{
		ID:           e.ID,
		Score:        &score,
		Note:         &note,
		Timestamp:    &ts,
		Latitude:     lat,
		Longitude:    lon,
		PlaceName:    &place,
		SoftDeleted:  &deleted,
		LastModified: e.LastModified,
	}
}

// DeletionMark builds the partial document that replicates a local delete:
// only the id, the soft-delete flag, and the modification time travel.
func DeletionMark(id string, lastModified time.Time) Document {
	deleted := true
	return Document{ID: id, SoftDeleted: &deleted, LastModified: lastModified}
}

// EntryFromDocument materializes a local entry from a remote document.
// Missing optional fields fall back to defaults: empty note and place,
// zero score, nil coordinate.
func EntryFromDocument(d Document) Entry {
	e := Entry{ID: d.ID, LastModified: d.LastModified}
	e.ApplyDocument(d)
	return e
}

// ApplyDocument maps the document's present fields onto the entry. Absent
// fields leave the entry untouched; explicit nulls clear the coordinate.
// LastModified is always taken from the document.
func (e *Entry) ApplyDocument(d Document) {
	if d.Score != nil {
		e.Score = *d.Score
	}
	if d.Note != nil {
		e.Note = *d.Note
	}
	if d.Timestamp != nil {
		e.Timestamp = *d.Timestamp
	}
	if d.Latitude != nil {
		if d.Latitude.Valid {
			v := d.Latitude.Float64
			e.Latitude = &v
		} else {
			e.Latitude = nil
		}
	}
	if d.Longitude != nil {
		if d.Longitude.Valid {
			v := d.Longitude.Float64
			e.Longitude = &v
		} else {
			e.Longitude = nil
		}
	}
	if d.PlaceName != nil {
		e.PlaceName = *d.PlaceName
	}
	if d.SoftDeleted != nil {
		e.SoftDeleted = *d.SoftDeleted
	}
	e.LastModified = d.LastModified
}
