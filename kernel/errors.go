package kernel

import "errors"

var (
	// ErrEmptyQuestion is returned by Submit for blank questions. Callers
	// drop the submission without touching the session.
	ErrEmptyQuestion = errors.New("question is empty")

	// ErrBusy is returned by Submit while the session already has an
	// exchange in flight.
	ErrBusy = errors.New("an answer is already being generated for this session")

	// ErrIncomplete ends a completion that was closed before its stream
	// finished.
	ErrIncomplete = errors.New("completion closed before the answer finished")
)
