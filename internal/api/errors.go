package api

import "errors"

var (
	// ErrInvalidRequestBody is returned when the request body cannot be decoded
	ErrInvalidRequestBody = errors.New("invalid request body")
	// ErrMultipleJSONObjects is returned when the request body contains more than one JSON object
	ErrMultipleJSONObjects = errors.New("request body must contain a single JSON object")
	// ErrMissingMetadataField is returned when title, url, or description is absent from a recon request
	ErrMissingMetadataField = errors.New("title, url and description are required")
	// ErrEmailRequired is returned when registering a user without an email
	ErrEmailRequired = errors.New("email is required")
	// ErrLoginKeyRequired is returned when a login request carries neither an id nor an email
	ErrLoginKeyRequired = errors.New("id or email required")
	// ErrUserNotFound is returned when a requested user does not exist
	ErrUserNotFound = errors.New("user not found")
)
