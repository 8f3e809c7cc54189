package providers

import (
	"context"
	"sync"
)

// chunkCursor is the cursor shape shared by the SDK server-sent-event streams.
type chunkCursor[T any] interface {
	Next() bool
	Current() T
	Err() error
	Close() error
}

// sdkStream adapts an SDK chunk stream to response.Stream, skipping chunks
// that carry no text.
type sdkStream[T any] struct {
	cursor  chunkCursor[T]
	text    func(T) string
	current string
}

func newSDKStream[T any](cursor chunkCursor[T], text func(T) string) *sdkStream[T] {
	return &sdkStream[T]{cursor: cursor, text: text}
}

func (s *sdkStream[T]) Next() bool {
	for s.cursor.Next() {
		if t := s.text(s.cursor.Current()); t != "" {
			s.current = t
			return true
		}
	}
	return false
}

func (s *sdkStream[T]) Current() string {
	return s.current
}

func (s *sdkStream[T]) Err() error {
	return s.cursor.Err()
}

func (s *sdkStream[T]) Close() error {
	return s.cursor.Close()
}

// pushStream bridges a callback-driven client into a pull stream. The
// producer runs in its own goroutine and blocks until each fragment is pulled.
type pushStream struct {
	fragments chan string
	cancel    context.CancelFunc
	current   string

	mu  sync.Mutex
	err error
}

func newPushStream(ctx context.Context, run func(ctx context.Context, emit func(string) error) error) *pushStream {
	ctx, cancel := context.WithCancel(ctx)
	s := &pushStream{
		fragments: make(chan string),
		cancel:    cancel,
	}

	go func() {
		defer close(s.fragments)

		err := run(ctx, func(fragment string) error {
			if fragment == "" {
				return nil
			}
			select {
			case s.fragments <- fragment:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})

		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
	}()

	return s
}

func (s *pushStream) Next() bool {
	fragment, ok := <-s.fragments
	if !ok {
		return false
	}
	s.current = fragment
	return true
}

func (s *pushStream) Current() string {
	return s.current
}

// Err is meaningful once Next has returned false.
func (s *pushStream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *pushStream) Close() error {
	s.cancel()
	return nil
}
