package response

// Result is the outcome of one completion: either the full accumulated
// content or the failure that ended the call. Callers turn either case into
// the stored assistant turn.
type Result struct {
	Content string
	Err     error
}

// Success returns a Result carrying the completed content.
func Success(content string) Result {
	return Result{Content: content}
}

// Failure returns a Result carrying the error detail.
func Failure(err error) Result {
	return Result{Err: err}
}

// OK reports whether the completion finished without error.
func (r Result) OK() bool {
	return r.Err == nil
}

// Detail returns the failure text, or "" for a successful result.
func (r Result) Detail() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}
