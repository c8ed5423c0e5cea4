// Package wire defines the JSON schema shared by the MoodMapper client and
// server: the remote representation of a mood entry and its merge-friendly
// field encoding.
package wire

import (
	"bytes"
	"encoding/json"
	"time"
)

// NullFloat64 is a float64 that serializes as an explicit JSON null when
// invalid. In a Document a *NullFloat64 is tri-state: nil pointer means
// "field absent, leave the stored value alone" (merge semantics), an
// invalid value means "explicit null, clear it", and a valid value sets it.
type NullFloat64 struct {
	Float64 float64
	Valid   bool
}

func (n NullFloat64) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Float64)
}

func (n *NullFloat64) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		n.Valid = false
		n.Float64 = 0
		return nil
	}
	if err := json.Unmarshal(data, &n.Float64); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

// Document is the wire representation of one remote mood entry. All fields
// except ID and LastModified are optional so partial merge writes (the
// soft-delete mark) stay partial on the wire. LastModified is always
// serialized; every write carries it.
type Document struct {
	ID           string       `json:"id"`
	Score        *int         `json:"score,omitempty"`
	Note         *string      `json:"note,omitempty"`
	Timestamp    *time.Time   `json:"timestamp,omitempty"`
	Latitude     *NullFloat64 `json:"latitude,omitempty"`
	Longitude    *NullFloat64 `json:"longitude,omitempty"`
	PlaceName    *string      `json:"placename,omitempty"`
	SoftDeleted  *bool        `json:"isSoftDeleted,omitempty"`
	LastModified time.Time    `json:"lastModified"`
}

// UnmarshalJSON decodes the document, keeping the coordinate tri-state
// intact. The default decoder sets a pointer field to nil on JSON null
// without consulting the pointee, which would fold "explicit null, clear
// it" into "absent, leave it alone"; the coordinates are therefore taken
// through raw messages and mapped by hand.
func (d *Document) UnmarshalJSON(data []byte) error {
	type alias Document
	aux := struct {
		Latitude  json.RawMessage `json:"latitude"`
		Longitude json.RawMessage `json:"longitude"`
		*alias
	}{alias: (*alias)(d)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error
	if d.Latitude, err = decodeNullFloat(aux.Latitude); err != nil {
		return err
	}
	d.Longitude, err = decodeNullFloat(aux.Longitude)
	return err
}

// decodeNullFloat maps a raw coordinate field: missing stays nil, null
// becomes an invalid value, anything else must parse as a float.
func decodeNullFloat(raw json.RawMessage) (*NullFloat64, error) {
	if raw == nil {
		return nil, nil
	}
	var n NullFloat64
	if err := n.UnmarshalJSON(raw); err != nil {
		return nil, err
	}
	return &n, nil
}

// IsDeletionMark reports whether the document carries the soft-delete flag.
func (d *Document) IsDeletionMark() bool {
	return d.SoftDeleted != nil && *d.SoftDeleted
}
