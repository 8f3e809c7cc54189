package providers

import "errors"

// Sentinel errors for provider construction.
var (
	ErrUnknownProvider = errors.New("unknown provider")
	ErrMissingAPIKey   = errors.New("provider API key is required")
)
