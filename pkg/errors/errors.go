// Package errors augments the standard errors
// provided by fmt (https://golang.org/src/fmt/errors.go)
// with sentinel errors that may be wrapped or detailed
// without losing their identity.
//
// A sentinel is never mutated: Wrap and WithDetail return a derived copy,
// so that package-level sentinels may be safely shared.
package errors

import (
	stderr "errors"
	"fmt"
)

var _ error = New("")

// New Error
func New(msg string) *Error {
	return &Error{msg: msg}
}

// Error augments the standard error interface with Wrap and WithDetail methods.
//
// The main difference with github.com/pkg/errors is that we are wrapping
// errors from errors, not from text.
type Error struct {
	msg    string
	detail string
	err    error

	// sentinel this error derives from
	origin *Error

	// optional classification, e.g. fatal or warning
	class *Error
}

// Error message
func (e *Error) Error() string {
	msg := e.msg
	if e.detail != "" {
		msg += ": " + e.detail
	}
	if e.err != nil {
		msg += ": " + e.err.Error()
	}
	return msg
}

// Unwrap nested error
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.err
}

// Wrap a nested error. The receiver is left untouched.
func (e *Error) Wrap(err error) *Error {
	d := e.derive()
	d.err = err
	return d
}

// WithDetail adds some formatted context to the message. The receiver is left untouched.
func (e *Error) WithDetail(format string, args ...interface{}) *Error {
	d := e.derive()
	if d.detail != "" {
		d.detail += ": "
	}
	d.detail += fmt.Sprintf(format, args...)
	return d
}

// Within classifies a sentinel under some broader class of errors.
//
// This is meant to be used when declaring sentinels.
func (e *Error) Within(class *Error) *Error {
	e.class = class
	return e
}

// Is of some error type?
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	for c := e; c != nil; c = c.class {
		if c == t || (c.origin != nil && c.origin == t) {
			return true
		}
	}
	return false
}

func (e *Error) derive() *Error {
	origin := e
	if e.origin != nil {
		origin = e.origin
	}
	return &Error{
		msg:    e.msg,
		detail: e.detail,
		err:    e.err,
		origin: origin,
		class:  e.class,
	}
}

// As finds the first error in err's chain that matches target, and if so, sets target to that error value and returns true.
// (a shortcut to standard lib errors.As)
func As(err error, target interface{}) bool {
	return stderr.As(err, target)
}

// Is reports whether any error in err's chain matches target
// (a shortcut to standard lib errors.Is)
func Is(err, target error) bool {
	return stderr.Is(err, target)
}
