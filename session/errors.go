package session

import "errors"

// ErrInvalidConfig is returned when a session duration cannot be parsed.
var ErrInvalidConfig = errors.New("invalid session config")
