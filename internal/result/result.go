// Package result carries the outcome of a backend call as it progresses.
package result

type State int

const (
	StatePending State = iota
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Result is one emission of a call: pending, a payload, or a failure message.
type Result[T any] struct {
	State   State  `json:"state"`
	Data    T      `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func Pending[T any]() Result[T] { return Result[T]{State: StatePending} }

func Success[T any](v T) Result[T] { return Result[T]{State: StateSucceeded, Data: v} }

func Failure[T any](msg string) Result[T] { return Result[T]{State: StateFailed, Message: msg} }

func (r Result[T]) IsTerminal() bool { return r.State != StatePending }

func (r Result[T]) Err() error {
	if r.State != StateFailed {
		return nil
	}
	return &Error{Message: r.Message}
}

// Error is a failed result seen as a Go error.
type Error struct{ Message string }

func (e *Error) Error() string { return e.Message }
