// Package xerrors implements the closed set of error kinds that every
// pipeline stage and tool invocation reports through: Fatal, Sanity,
// Recoverable, and Config. A stage loop only ever catches Recoverable;
// everything else propagates straight out to the caller.
package xerrors

import (
	"errors"
	"fmt"
)

// Kind tags an error with how its caller is expected to react to it.
type Kind int

const (
	// Fatal indicates a bug or an unrecoverable environment failure
	// (missing data directory, corrupt database). The process should
	// stop.
	Fatal Kind = iota
	// Sanity indicates an internal consistency check failed: the code
	// reached a state it believes is impossible. Always a bug.
	Sanity
	// Recoverable indicates an individual unit of work (one graph, one
	// tool invocation) failed for a reason outside the program's
	// control: a tool crashed, timed out, or emitted unparseable
	// output. The stage loop logs it to the bad-log and moves on.
	Recoverable
	// Config indicates the user's configuration files or environment
	// are invalid or contradictory.
	Config
)

func (k Kind) String() string {
	switch k {
	case Fatal:
		return "fatal"
	case Sanity:
		return "sanity"
	case Recoverable:
		return "recoverable"
	case Config:
		return "config"
	default:
		return "unknown"
	}
}

// Error is a Kind-tagged error that wraps an underlying cause.
type Error struct {
	kind Kind
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.kind, e.msg, e.err)
	}
	return fmt.Sprintf("%s: %s", e.kind, e.msg)
}

func (e *Error) Unwrap() error { return e.err }

// Kind reports the error's reaction tag.
func (e *Error) Kind() Kind { return e.kind }

func newf(k Kind, err error, format string, args ...interface{}) *Error {
	return &Error{kind: k, msg: fmt.Sprintf(format, args...), err: err}
}

// Newf builds a plain error of the given kind.
func Newf(k Kind, format string, args ...interface{}) error {
	return newf(k, nil, format, args...)
}

// Wrapf builds an error of the given kind wrapping a cause.
func Wrapf(k Kind, err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return newf(k, err, format, args...)
}

// Fatalf, Sanityf, Recoverablef, and Configf are the per-kind convenience
// constructors used throughout the pipeline.
func Fatalf(format string, args ...interface{}) error {
	return newf(Fatal, nil, format, args...)
}

func Sanityf(format string, args ...interface{}) error {
	return newf(Sanity, nil, format, args...)
}

func Recoverablef(format string, args ...interface{}) error {
	return newf(Recoverable, nil, format, args...)
}

func Configf(format string, args ...interface{}) error {
	return newf(Config, nil, format, args...)
}

func WrapFatal(err error, format string, args ...interface{}) error {
	return Wrapf(Fatal, err, format, args...)
}

func WrapSanity(err error, format string, args ...interface{}) error {
	return Wrapf(Sanity, err, format, args...)
}

func WrapRecoverable(err error, format string, args ...interface{}) error {
	return Wrapf(Recoverable, err, format, args...)
}

func WrapConfig(err error, format string, args ...interface{}) error {
	return Wrapf(Config, err, format, args...)
}

// Is reports whether err (or any error it wraps) carries the given Kind.
func Is(err error, k Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.kind == k
	}
	return false
}

// KindOf extracts the Kind of err, defaulting to Fatal for untagged
// errors: an error nobody thought to classify is treated as the most
// conservative case.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return Fatal
}

// Sentinel errors for the handful of conditions callers need to match by
// identity rather than by kind.
var (
	ErrNotFound      = errors.New("xerrors: not found")
	ErrAlreadyExists = errors.New("xerrors: already exists")
	ErrClosed        = errors.New("xerrors: already closed")
)
