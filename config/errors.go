package config

import "errors"

var (
	// ErrConfigLoad is returned when a configuration source cannot be read
	ErrConfigLoad = errors.New("failed to load configuration")
	// ErrConfigUnmarshal is returned when config unmarshalling fails
	ErrConfigUnmarshal = errors.New("failed to unmarshal configuration")
	// ErrMissingAPIKey is returned at startup when no classifier API key is configured
	ErrMissingAPIKey = errors.New("classifier API key is not configured")
)
