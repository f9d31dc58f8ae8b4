// Package aggerr classifies aggregation errors per spec.md §7's taxonomy
// so the driver and reconciler can decide, without string-matching, when
// to abort just the current stripe/object and continue versus propagate
// a fatal failure out of the entrypoint.
package aggerr

import "errors"

// Class is one of the five error categories spec.md §7 names.
type Class int

const (
	// ClassTransient covers store read/write failures, RPC timeouts, and
	// peer-busy responses. Per-stripe abort; driver continues.
	ClassTransient Class = iota
	// ClassResourceExhaustion covers allocation/bulk-registration
	// failures. Per-stripe abort; driver continues.
	ClassResourceExhaustion
	// ClassIntegrityViolation covers invariant failures (parity at a
	// non-parity index, >1 carry-over extent, bitmap count mismatch).
	// Fatal: abort the whole driver run.
	ClassIntegrityViolation
	// ClassLeadershipLost means is_leader returned false mid-object:
	// treat as "not our object", stop this object, continue the driver.
	ClassLeadershipLost
	// ClassCodec covers a non-zero return from the Reed-Solomon tables.
	// Per-stripe abort; driver continues.
	ClassCodec
)

func (c Class) String() string {
	switch c {
	case ClassTransient:
		return "transient-io"
	case ClassResourceExhaustion:
		return "resource-exhaustion"
	case ClassIntegrityViolation:
		return "integrity-violation"
	case ClassLeadershipLost:
		return "leadership-lost"
	case ClassCodec:
		return "codec"
	default:
		return "unknown"
	}
}

// Fatal reports whether errors of this class must propagate out of the
// aggregation entrypoint rather than being absorbed as a per-stripe abort.
func (c Class) Fatal() bool { return c == ClassIntegrityViolation }

// Error wraps a cause with its taxonomy class.
type Error struct {
	Class Class
	Cause error
}

func (e *Error) Error() string { return e.Class.String() + ": " + e.Cause.Error() }
func (e *Error) Unwrap() error { return e.Cause }

// New wraps cause as a classified aggregation error.
func New(class Class, cause error) error {
	if cause == nil {
		return nil
	}
	return &Error{Class: class, Cause: cause}
}

// ClassOf returns the Class of err if it (or something it wraps) is an
// *Error, and false otherwise.
func ClassOf(err error) (Class, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Class, true
	}
	return 0, false
}

// IsFatal reports whether err must propagate out of ec_aggregate as a
// driver-level failure.
func IsFatal(err error) bool {
	class, ok := ClassOf(err)
	return ok && class.Fatal()
}
