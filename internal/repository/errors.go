// Package repository implements the persistence layer over MySQL. This file
// collects the error values shared across repositories so handlers and the
// booking service can map failures onto stable HTTP responses without
// inspecting driver error strings themselves.
package repository

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotFound is returned when a referenced event, type, user or
// registration does not exist. Handlers translate it to 404.
var ErrNotFound = errors.New("not found")

// ErrDuplicateRegistration is returned when the same beneficiary identity
// already holds a registration for the target event or type. Handlers
// translate it to 409. The unique keys on the ledger tables are the
// authoritative backstop; the pre-check inside the booking transaction only
// exists to produce this error before the insert fails.
var ErrDuplicateRegistration = errors.New("beneficiary already registered")

// ErrConflict is returned when a delete or update cannot proceed because of
// dependent records, such as removing a type that still has registrations.
var ErrConflict = errors.New("conflict")

// InsufficientInventoryError is returned by the capacity guard when a
// booking asks for more tickets than the event has left. Remaining carries
// the count still available so the caller can correct the request.
type InsufficientInventoryError struct {
	Remaining uint32
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("insufficient tickets: %d remaining", e.Remaining)
}

// isDuplicateKey reports whether err is a MySQL duplicate-entry violation
// (error 1062), the backstop behind every duplicate pre-check.
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}

// nowUTC keeps all derived-status computations on the same clock.
func nowUTC() time.Time { return time.Now().UTC() }
