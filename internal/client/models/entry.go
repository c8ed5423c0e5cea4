// Package models defines client-side data models used by the MoodMapper CLI.
package models

import "time"

// Entry is a single mood-journal record persisted locally and synced with
// the server.
type Entry struct {
	// ID is a globally unique identifier for the entry, assigned at
	// creation and immutable. It is the join key between the local row
	// and the remote document.
	ID string

	// Score is the mood value, constrained to [1,5]. Out-of-range values
	// are clamped at presentation sites, never stored.
	Score int

	// Note is optional free text, empty by default.
	Note string

	// Timestamp is the moment the mood pertains to. User-editable and
	// may be backdated.
	Timestamp time.Time

	// Latitude and Longitude form an optional coordinate. nil means "no
	// location"; zero is a legitimate value near the equator/meridian,
	// so a bare zero must never stand in for absence.
	Latitude  *float64
	Longitude *float64

	// PlaceName is an optional human-readable location label, independent
	// of the coordinate.
	PlaceName string

	// SoftDeleted marks the remote tombstone. Locally deleted rows are
	// removed outright; the flag only travels on the wire so the deletion
	// itself can replicate.
	SoftDeleted bool

	// LastModified is the time of the most recent mutation. It is the
	// comparison key for conflict resolution and must be bumped on every
	// local edit. Never user-editable.
	LastModified time.Time
}

// HasLocation reports whether the entry carries a coordinate.
func (e *Entry) HasLocation() bool {
	return e.Latitude != nil && e.Longitude != nil
}

// Touch bumps LastModified, keeping it monotonically non-decreasing even
// under clock skew.
func (e *Entry) Touch(now time.Time) {
	if now.After(e.LastModified) {
		e.LastModified = now
	} else {
		e.LastModified = e.LastModified.Add(time.Nanosecond)
	}
}
