// Package repository defines sentinel error values that are reused across
// repositories. Handlers use these to translate persistence failures into
// the HTTP error taxonomy without inspecting driver error strings
// themselves: duplicate email/phone become 422 validation responses, a
// missing row becomes 404.
package repository

import "errors"

// ErrEmailExists is returned when an insert or update would violate the
// unique index on users.email.
var ErrEmailExists = errors.New("email already exists")

// ErrPhoneExists is returned when an insert or update would violate the
// unique index on users.phone.
var ErrPhoneExists = errors.New("phone already exists")

// ErrNotFound is returned when a user lookup matches no row.
var ErrNotFound = errors.New("not found")
