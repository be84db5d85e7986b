// Package alerr defines the closed error taxonomy shared by every
// abstraction-layer component.
//
// Every fallible operation in this module returns a single *Error value
// (nil meaning success) instead of a (value, error) pair plus a string.
// Callers branch on Code, never on Error().
package alerr

import (
	"errors"
	"fmt"
)

// Code is one variant of the coarse error taxonomy. The set is closed:
// platform-specific failures are mapped onto it by FromPlatform, never
// invented ad hoc by callers.
type Code int

const (
	// Success indicates the operation completed normally. A nil *Error
	// is the idiomatic way to report success; Success only appears when
	// a Code needs to be carried as a plain value (e.g. in a status
	// struct) rather than as an error.
	Success Code = iota
	Failure
	NotImplemented
	NoMemory
	Timeout
	NotSupported
	PrerequisitesNotMet
	InvalidParameter
	CrcMismatch
	NotAvailable
	FileNotFound
	FileExists
	EndOfFile
	NoData
	LimitReached
	// Negative denotes "predicate false, no error" -- e.g. a partial
	// header read that simply hasn't arrived yet. It is not a failure.
	Negative
)

func (c Code) String() string {
	switch c {
	case Success:
		return "Success"
	case Failure:
		return "Failure"
	case NotImplemented:
		return "NotImplemented"
	case NoMemory:
		return "NoMemory"
	case Timeout:
		return "Timeout"
	case NotSupported:
		return "NotSupported"
	case PrerequisitesNotMet:
		return "PrerequisitesNotMet"
	case InvalidParameter:
		return "InvalidParameter"
	case CrcMismatch:
		return "CrcMismatch"
	case NotAvailable:
		return "NotAvailable"
	case FileNotFound:
		return "FileNotFound"
	case FileExists:
		return "FileExists"
	case EndOfFile:
		return "EndOfFile"
	case NoData:
		return "NoData"
	case LimitReached:
		return "LimitReached"
	case Negative:
		return "Negative"
	default:
		return fmt.Sprintf("Unknown(%d)", int(c))
	}
}

// Error wraps a taxonomy Code with an optional human-readable message and
// an optional underlying cause. It implements the standard error
// interface so it composes with fmt.Errorf("%w", ...) and errors.Is/As,
// but callers are expected to branch on Code rather than on the string.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

// New builds an *Error carrying code and a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Error carrying code, a message, and an underlying cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Cause != nil {
		if e.Message != "" {
			return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
		}
		return fmt.Sprintf("%s: %v", e.Code, e.Cause)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Code.String()
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is lets errors.Is work by comparing codes whenever the target is
// itself an *Error (its message and cause are ignored) -- typically a
// bare sentinel built with Sentinel(code).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Sentinel returns a bare *Error carrying only a code, suitable for use
// with errors.Is(err, alerr.Sentinel(alerr.Timeout)).
func Sentinel(code Code) *Error {
	return &Error{Code: code}
}

// Is reports whether err is an *Error with the given code. Works for nil
// err (reports false) and for wrapped errors via errors.As semantics.
func Is(err error, code Code) bool {
	if err == nil {
		return false
	}
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Code == code
}
