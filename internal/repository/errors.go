// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrForbidden indicates that the current user is not
// authorized to perform an operation on a resource owned by
// someone else, while ErrProfileNotFound signals that every profile
// resolution strategy was exhausted.
package repository

import (
	"errors"
	"strings"
)

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an insert or update cannot be
// performed because of conflicting state, such as filing a second
// pending adoption request for the same animal. Handlers should
// translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrProfileNotFound is returned when the profile resolution chain
// (by id, by email, privileged by auth id) finds nothing. The message
// is surfaced verbatim to users so support can recognize it.
var ErrProfileNotFound = errors.New("profile not found, contact support")

// isMissingTable reports whether err is MySQL error 1146 ("table
// doesn't exist"). The animal listing view probe and the readiness
// check use it to tell a missing schema object apart from any other
// database failure.
func isMissingTable(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "1146") || strings.Contains(msg, "doesn't exist")
}

// isDuplicateKey reports whether err is MySQL error 1062 (duplicate
// entry for a unique key). Find-or-create paths use it to detect a
// concurrent insert of the same conversation triple.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "1062")
}

// IsMissingSchema exposes the missing-table classification to other
// packages; the readiness handler flips into "setup required" mode on it.
func IsMissingSchema(err error) bool { return isMissingTable(err) }
