package client

import "errors"

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrUnavailable  = errors.New("server unavailable")
	ErrNotSignedIn  = errors.New("not signed in")
)
