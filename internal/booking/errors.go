package booking

import (
	"errors"
	"fmt"
)

// Kind classifies a booking failure so that the transport layer can map it
// to a response without inspecting messages.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindRoute
	KindAvailability
	KindAuth
	KindConflict
	KindUpstream
	KindState
	KindNotFound
)

var kindNames = map[Kind]string{
	KindInternal:     "internal",
	KindValidation:   "validation",
	KindRoute:        "route",
	KindAvailability: "availability",
	KindAuth:         "auth",
	KindConflict:     "conflict",
	KindUpstream:     "upstream",
	KindState:        "state",
	KindNotFound:     "not_found",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Error is the single error type returned across the engine boundary.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

func validationErr(format string, args ...any) error {
	return newError(KindValidation, nil, format, args...)
}

func routeErr(format string, args ...any) error {
	return newError(KindRoute, nil, format, args...)
}

func availabilityErr(format string, args ...any) error {
	return newError(KindAvailability, nil, format, args...)
}

func authErr(format string, args ...any) error {
	return newError(KindAuth, nil, format, args...)
}

func conflictErr(err error, format string, args ...any) error {
	return newError(KindConflict, err, format, args...)
}

func upstreamErr(err error, format string, args ...any) error {
	return newError(KindUpstream, err, format, args...)
}

func stateErr(format string, args ...any) error {
	return newError(KindState, nil, format, args...)
}

func notFoundErr(format string, args ...any) error {
	return newError(KindNotFound, nil, format, args...)
}

func internalErr(err error, format string, args ...any) error {
	return newError(KindInternal, err, format, args...)
}

// KindOf returns the kind carried by err, or KindInternal when err is not
// a booking error.
func KindOf(err error) Kind {
	var be *Error
	if errors.As(err, &be) {
		return be.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
