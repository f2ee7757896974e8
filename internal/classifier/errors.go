package classifier

import "errors"

var (
	// ErrMissingAPIKey is returned when the classifier API key is not configured
	ErrMissingAPIKey = errors.New("classifier API key is required")
	// ErrUnavailable is returned when the classifier request fails, times out,
	// returns an unexpected status, or yields an empty completion
	ErrUnavailable = errors.New("classifier unavailable")
)
