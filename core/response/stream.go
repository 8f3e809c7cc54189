// Package response holds the streaming and outcome types produced by a
// completion call.
package response

// Stream is a lazy, finite, single-consumer sequence of text fragments.
// It follows the cursor shape of the provider SDK streams: call Next until it
// returns false, read each fragment with Current, then check Err.
//
// A Stream is not restartable. Close releases the underlying connection and
// may be called at any point, including between fragments.
type Stream interface {
	// Next advances to the next non-empty fragment.
	Next() bool
	// Current returns the fragment Next advanced to.
	Current() string
	// Err returns the error that ended the stream, or nil on a clean end.
	Err() error
	// Close abandons the stream.
	Close() error
}
