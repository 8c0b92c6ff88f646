package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnauthenticated = errors.New("User not logged in")
	ErrNotFound        = errors.New("not found")
)

// ValidationError reports a form field that failed a client-side check.
// It is raised before any backend call is made.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return e.Field + ": " + e.Msg
}

func Invalid(field, msg string) error { return &ValidationError{Field: field, Msg: msg} }

// NotFound wraps ErrNotFound with what was looked up.
func NotFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
}

// Message is the text a failed result carries. Backend errors pass through verbatim.
func Message(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		return "unknown error"
	}
	return msg
}
