// Package sesherr defines the error kinds returned by the session store.
//
// Every failure that leaves the store carries exactly one kind so the
// command layer can pick a message without string matching:
//
//	if errors.Is(err, sesherr.ErrNoActiveSession) { ... }
//
// The underlying cause, when there is one, stays reachable through
// errors.Is and errors.As.
package sesherr

import (
	"errors"
	"strings"
)

var (
	// ErrInvalidTag is returned when a tag name fails validation
	ErrInvalidTag = errors.New("invalid tag")

	// ErrSessionAlreadyActive is returned when starting while a session is active
	ErrSessionAlreadyActive = errors.New("session already active")

	// ErrNoActiveSession is returned when stopping while no session is active
	ErrNoActiveSession = errors.New("no active session")

	// ErrCorruptData is returned when the current-session file cannot be understood
	ErrCorruptData = errors.New("corrupt session data")

	// ErrStorageUnavailable is returned on I/O or database failures
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrMigration is returned when the ledger schema cannot be applied
	ErrMigration = errors.New("migration failed")
)

var kinds = []error{
	ErrInvalidTag,
	ErrSessionAlreadyActive,
	ErrNoActiveSession,
	ErrCorruptData,
	ErrStorageUnavailable,
	ErrMigration,
}

// Error is a classified store failure.
type Error struct {
	Kind   error  // one of the Err* sentinels
	Op     string // operation that failed, e.g. "current.read"
	Detail string // human-readable context, optional
	Err    error  // underlying cause, optional
}

// New wraps err with a kind and operation name.
func New(kind error, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Detailed builds an Error with a detail message and no underlying cause.
func Detailed(kind error, op string, detail string) *Error {
	return &Error{Kind: kind, Op: op, Detail: detail}
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.Error())
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the kind and the cause to errors.Is/As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// InvalidTagError reports a rejected tag name.
type InvalidTagError struct {
	Name string
}

// InvalidTag returns an ErrInvalidTag failure carrying name.
func InvalidTag(name string) error {
	return &InvalidTagError{Name: name}
}

func (e *InvalidTagError) Error() string {
	return "invalid tag: " + e.Name
}

func (e *InvalidTagError) Is(target error) bool {
	return target == ErrInvalidTag
}

// TagName returns the rejected name carried by an InvalidTag failure.
func TagName(err error) (string, bool) {
	var tagErr *InvalidTagError
	if errors.As(err, &tagErr) {
		return tagErr.Name, true
	}
	return "", false
}

// KindOf returns the taxonomy kind of err, or nil if err is unclassified.
// The outermost *Error decides; kinds of wrapped causes are ignored.
func KindOf(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) && e.Kind != nil {
		return e.Kind
	}
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
