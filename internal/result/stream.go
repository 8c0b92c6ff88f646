package result

import (
	"context"
	"sync"

	"myshop/internal/domain"
)

// Stream is a cold sequence of results. Each call starts the backend work anew
// and yields Pending, then one terminal result, then closes. Cancelling ctx
// stops delivery; the channel is still closed.
type Stream[T any] func(ctx context.Context) <-chan Result[T]

// Emitter delivers the terminal result of a callback-driven producer.
// Only the first Succeed or Fail has any effect.
type Emitter[T any] struct {
	ctx  context.Context
	out  chan Result[T]
	once sync.Once
	done chan struct{}
}

func (e *Emitter[T]) finish(r Result[T]) {
	e.once.Do(func() {
		defer close(e.done)
		select {
		case e.out <- r:
		case <-e.ctx.Done():
		}
	})
}

func (e *Emitter[T]) Succeed(v T) { e.finish(Success(v)) }

func (e *Emitter[T]) Fail(err error) { e.finish(Failure[T](domain.Message(err))) }

func (e *Emitter[T]) FailMessage(msg string) { e.finish(Failure[T](msg)) }

// FromCallback bridges a callback API. start registers with the backend and
// returns a release func, which runs once when the observer cancels or the
// terminal result is emitted, whichever comes first.
func FromCallback[T any](start func(ctx context.Context, em *Emitter[T]) (release func())) Stream[T] {
	return func(ctx context.Context) <-chan Result[T] {
		out := make(chan Result[T], 2)
		out <- Pending[T]()
		em := &Emitter[T]{ctx: ctx, out: out, done: make(chan struct{})}
		release := start(ctx, em)
		go func() {
			select {
			case <-em.done:
			case <-ctx.Done():
				// No emission may land after out is closed.
				em.once.Do(func() { close(em.done) })
			}
			if release != nil {
				release()
			}
			close(out)
		}()
		return out
	}
}

// FromCall runs a blocking call on its own goroutine. A cancelled observer
// cancels the call's context; a late answer is dropped.
func FromCall[T any](call func(ctx context.Context) (T, error)) Stream[T] {
	return FromCallback(func(ctx context.Context, em *Emitter[T]) func() {
		cctx, cancel := context.WithCancel(ctx)
		go func() {
			v, err := call(cctx)
			if err != nil {
				em.Fail(err)
				return
			}
			em.Succeed(v)
		}()
		return cancel
	})
}

// Fail returns a stream that reports err without touching any backend.
func Fail[T any](err error) Stream[T] {
	return FromCall(func(context.Context) (T, error) {
		var zero T
		return zero, err
	})
}

// Await drains s and returns its terminal payload. A failure comes back as
// *Error; a stream closed without a terminal result yields ctx's error.
func Await[T any](ctx context.Context, s Stream[T]) (T, error) {
	var zero T
	for r := range s(ctx) {
		switch r.State {
		case StateSucceeded:
			return r.Data, nil
		case StateFailed:
			return zero, r.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	return zero, context.Canceled
}

// Observe forwards every result of s to fn until the stream closes.
func Observe[T any](ctx context.Context, s Stream[T], fn func(Result[T])) {
	for r := range s(ctx) {
		fn(r)
	}
}
