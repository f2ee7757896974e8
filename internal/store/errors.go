package store

import "errors"

var (
	// ErrUserExists is returned when registering a user whose ID or email is already taken
	ErrUserExists = errors.New("user already exists")
)
