package apperr

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
)

// Kind classifies an application error.
type Kind int

const (
	KindInternal Kind = iota
	// Malformed schema or vocabulary setup. Fatal, never retried.
	KindConfig
	// Missing required columns, wrong arity, empty tables.
	KindDataShape
	// Fit/transform failures such as an all-missing column.
	KindNumeric
	// Bad inference input: unseen category, missing field, non-finite value.
	KindInput
	// Artifact persistence failures.
	KindStorage
	// A dependency outside the service (e.g. the road distance API) failed.
	KindUpstream
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindDataShape:
		return "data shape"
	case KindNumeric:
		return "numeric"
	case KindInput:
		return "input"
	case KindStorage:
		return "storage"
	case KindUpstream:
		return "upstream"
	default:
		return "internal"
	}
}

// Error is the single application-level error. It preserves the original
// cause and the source location where it was raised.
type Error struct {
	Kind  Kind
	Op    string
	Where string
	Err   error
}

// E wraps err with kind and op, recording the caller's file:line.
// If err is already an *Error, its kind is kept and op is prefixed.
func E(kind Kind, op string, err error) *Error {
	where := "unknown"
	if _, file, line, ok := runtime.Caller(1); ok {
		where = fmt.Sprintf("%s:%d", filepath.Base(file), line)
	}

	var inner *Error
	if errors.As(err, &inner) {
		kind = inner.Kind
	}

	return &Error{Kind: kind, Op: op, Where: where, Err: err}
}

// Errorf is E with a formatted cause.
func Errorf(kind Kind, op string, format string, args ...any) *Error {
	e := E(kind, op, fmt.Errorf(format, args...))
	if _, file, line, ok := runtime.Caller(1); ok {
		e.Where = fmt.Sprintf("%s:%d", filepath.Base(file), line)
	}
	return e
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s error at %s: %v", e.Op, e.Kind, e.Where, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf reports the kind of the outermost *Error in err's chain,
// or KindInternal if there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
