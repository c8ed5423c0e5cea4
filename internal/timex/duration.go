// Package timex contains small time helpers shared by config packages.
package timex

import (
	"encoding/json"
	"errors"
	"time"
)

// Duration wraps time.Duration so JSON config files can specify intervals
// either as strings like "3s" or as integer nanoseconds.
type Duration struct {
	time.Duration
}

// UnmarshalJSON accepts both "1m30s" (string) and 90000000000 (number).
func (d *Duration) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
		return nil
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		d.Duration = parsed
		return nil
	default:
		return errors.New("invalid duration")
	}
}

// MarshalJSON emits the string form ("3s"), the more readable of the two.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}
