package models

import "time"

// RefreshToken is an issued refresh token row. The opaque token string is
// the primary key; Expires bounds its lifetime.
type RefreshToken struct {
	UserID  string
	Token   string
	Expires time.Time
}
