// Package repository implements MySQL persistence for reservations,
// settings, rooms and users. This file defines sentinel errors shared
// across repositories so that higher layers can distinguish failure
// scenarios without string matching.
package repository

import "errors"

// ErrNotFound is returned when a requested row does not exist. Handlers
// should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. Handlers should translate this into an HTTP
// 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrEmailExists is returned when registering a user with an email that
// is already taken.
var ErrEmailExists = errors.New("email already exists")

// ErrTxConflict is returned when a transaction loses a lock conflict
// (deadlock or lock wait timeout) against a concurrent one. For bookings
// this means another request claimed an overlapping slot range first;
// callers should report it as a conflict, not an internal failure.
var ErrTxConflict = errors.New("transaction conflict")
