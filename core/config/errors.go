package config

import "errors"

// Sentinel errors for configuration and credential resolution.
var (
	ErrMissingCredential = errors.New("API credential not configured")
	ErrSecretsFile       = errors.New("failed to read secrets file")
)
