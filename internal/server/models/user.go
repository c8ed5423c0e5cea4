package models

import "time"

// User is an account row. PasswordHash is a bcrypt hash; the server never
// stores or logs the plaintext password.
type User struct {
	ID           string
	Username     string
	PasswordHash []byte
	CreatedAt    time.Time
}
