// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrForbidden indicates that the current user is not
// authorized to perform an operation on a resource owned by
// someone else, while ErrConflict signals that an operation
// cannot proceed because of existing or competing state (e.g.
// reserving a booth that was just taken).
package repository

import (
	"errors"
	"strings"
)

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an update or delete cannot be
// performed because of conflicting state, such as deleting a booth
// that is still reserved. Handlers should translate this into an
// HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrInvalidState is returned when a workflow transition is not
// permitted from the record's current state, such as reviewing an
// application that was already decided. Handlers should translate
// this into an HTTP 422 response.
var ErrInvalidState = errors.New("invalid state")

// ErrCapacityFull is returned when a session registration would
// exceed the session's attendee cap.
var ErrCapacityFull = errors.New("capacity full")

// isDuplicate reports whether err is a MySQL duplicate key violation
// (error 1062 on a unique index).
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
