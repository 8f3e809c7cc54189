package kernel

import (
	"context"
	"strings"
	"time"

	"github.com/tailored-agentic-units/gichat/agent"
	"github.com/tailored-agentic-units/gichat/core/response"
	"github.com/tailored-agentic-units/gichat/prompt"
)

// Completion accumulates the fragments of one in-flight answer. It is a
// single-consumer, non-restartable sequence: call Next until it returns
// false, then read Result.
type Completion struct {
	ctx     context.Context
	agent   agent.Agent
	stream  response.Stream
	started time.Time

	fragment  string
	text      strings.Builder
	fragments int
	err       error
	done      bool
}

// Next advances to the next fragment. It returns false once the stream
// ends, fails, or is closed. Only the stream's own error decides failure: a
// stream that ended cleanly succeeds even if ctx was cancelled afterwards.
func (c *Completion) Next() bool {
	if c.done {
		return false
	}

	if c.stream.Next() {
		c.fragment = c.stream.Current()
		c.text.WriteString(c.fragment)
		c.fragments++
		return true
	}

	c.finish(c.stream.Err())
	return false
}

// Fragment returns the fragment Next advanced to.
func (c *Completion) Fragment() string {
	return c.fragment
}

// Text returns the text accumulated so far.
func (c *Completion) Text() string {
	return c.text.String()
}

// Display returns the accumulated text followed by the streaming cursor.
func (c *Completion) Display() string {
	return c.text.String() + prompt.Cursor
}

// Fragments returns the number of fragments received.
func (c *Completion) Fragments() int {
	return c.fragments
}

// Elapsed returns the time since the call started.
func (c *Completion) Elapsed() time.Duration {
	return time.Since(c.started)
}

// Result drains any remaining fragments and returns the outcome. On
// failure the partial text is discarded.
func (c *Completion) Result() response.Result {
	for c.Next() {
	}
	if c.err != nil {
		return response.Failure(c.err)
	}
	return response.Success(c.text.String())
}

// Close abandons the completion. A completion closed before its stream
// ended fails with ErrIncomplete.
func (c *Completion) Close() error {
	if c.done {
		return nil
	}
	c.finish(ErrIncomplete)
	return nil
}

func (c *Completion) fail(err error) {
	c.done = true
	c.err = err
}

func (c *Completion) finish(err error) {
	c.done = true
	c.err = err
	if c.stream != nil {
		c.stream.Close()
	}
}
