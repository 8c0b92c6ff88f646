// Package state keeps the latest display snapshot for each storefront screen.
package state

import (
	"context"
	"sync"

	"myshop/internal/result"
)

// Cell holds one snapshot. Watchers always see the newest value; a slow
// watcher skips intermediate ones.
type Cell[T any] struct {
	mu       sync.Mutex
	v        T
	gen      uint64
	watchers map[chan T]struct{}
}

func NewCell[T any](v T) *Cell[T] { return &Cell[T]{v: v} }

func (c *Cell[T]) Get() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.v
}

func (c *Cell[T]) Set(v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.publish(v)
}

// Update replaces the value with fn(current).
func (c *Cell[T]) Update(fn func(T) T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.publish(fn(c.v))
}

func (c *Cell[T]) publish(v T) {
	c.v = v
	for ch := range c.watchers {
		select {
		case <-ch:
		default:
		}
		ch <- v
	}
}

// claim starts a new run. Emissions of older runs are dropped from then on.
func (c *Cell[T]) claim() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	return c.gen
}

func (c *Cell[T]) updateIf(gen uint64, fn func(T) T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return
	}
	c.publish(fn(c.v))
}

// Watch yields the current value and then every change until ctx ends.
func (c *Cell[T]) Watch(ctx context.Context) <-chan T {
	ch := make(chan T, 1)
	c.mu.Lock()
	if c.watchers == nil {
		c.watchers = map[chan T]struct{}{}
	}
	c.watchers[ch] = struct{}{}
	ch <- c.v
	c.mu.Unlock()

	out := make(chan T)
	go func() {
		defer close(out)
		defer func() {
			c.mu.Lock()
			delete(c.watchers, ch)
			c.mu.Unlock()
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case v := <-ch:
				select {
				case out <- v:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// observe runs s and folds each emission into cell. A newer run on the same
// cell supersedes this one in the cell, but the run still folds its own
// emissions into the snapshot it returns, so callers never read another
// run's state. It returns the last result seen and that snapshot.
func observe[T, S any](ctx context.Context, cell *Cell[S], s result.Stream[T], fold func(prev S, r result.Result[T]) S) (result.Result[T], S) {
	gen := cell.claim()
	own := cell.Get()
	var last result.Result[T]
	for r := range s(ctx) {
		last = r
		own = fold(own, r)
		cell.updateIf(gen, func(prev S) S { return fold(prev, r) })
	}
	if !last.IsTerminal() {
		// cancelled: the cell keeps what it had, the caller sees why
		own = fold(own, result.Failure[T](cancelCause(ctx).Error()))
	}
	return last, own
}

func cancelCause(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return context.Canceled
}

// Load is the common loading/data/error snapshot.
type Load[T any] struct {
	Loading bool   `json:"isLoading"`
	Data    T      `json:"data"`
	Error   string `json:"error,omitempty"`
}

// replace maps each emission to a fresh snapshot.
func replace[T any](_ Load[T], r result.Result[T]) Load[T] {
	switch r.State {
	case result.StatePending:
		return Load[T]{Loading: true}
	case result.StateFailed:
		return Load[T]{Error: r.Message}
	}
	return Load[T]{Data: r.Data}
}

// message maps an emission to a one-shot message: cleared while pending,
// then the success or failure text.
func message(_ string, r result.Result[string]) string {
	switch r.State {
	case result.StateSucceeded:
		return r.Data
	case result.StateFailed:
		return r.Message
	}
	return ""
}

// outcome turns the last emission of a run into an error for callers that
// branch on it.
func outcome[T any](ctx context.Context, r result.Result[T]) (T, error) {
	switch r.State {
	case result.StateSucceeded:
		return r.Data, nil
	case result.StateFailed:
		var zero T
		return zero, r.Err()
	}
	var zero T
	return zero, cancelCause(ctx)
}
