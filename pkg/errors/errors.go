// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

// Package errors provides status-coded errors. An error created with one of
// the [Status] methods records its code, an optional cause, and, when tracing
// is enabled, the call sites that created and wrapped it.
package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"runtime"
)

// Error implements error.
func (s Status) Error() string { return s.String() }

// Wrap wraps err with the status. Wrapping with UnknownError keeps the code of
// err. Wrap returns nil if err is nil.
func (s Status) Wrap(err error) error {
	if err == nil {
		// Returning a nil *Error here would produce a non-nil error
		return nil
	}

	if !trackLocation && !s.IsKnownError() {
		if _, ok := err.(*Error); ok {
			return err
		}
	}

	e := s.at(1)
	e.setCause(fromError(err))
	return e
}

// With returns an error with the status and a message built with fmt.Sprint.
func (s Status) With(v ...interface{}) *Error {
	e := s.at(1)
	e.Message = fmt.Sprint(v...)
	return e
}

// WithCauseAndFormat returns an error with the status, a formatted message,
// and the given cause.
func (s Status) WithCauseAndFormat(cause error, format string, args ...interface{}) *Error {
	e := s.at(1)
	e.Message = fmt.Sprintf(format, args...)
	e.setCause(fromError(cause))
	return e
}

// WithFormat returns an error with the status and a formatted message. If the
// format wraps an error with %w, that error becomes the cause.
func (s Status) WithFormat(format string, args ...interface{}) *Error {
	err := fmt.Errorf(format, args...)
	if cause := errors.Unwrap(err); cause != nil {
		e := s.at(1)
		e.Message = err.Error()
		e.setCause(fromError(cause))
		return e
	}

	e := s.at(1)
	e.Message = err.Error()
	return e
}

// at returns a new error with the status, recording the call site skip frames
// above the caller.
func (s Status) at(skip int) *Error {
	e := &Error{Code: s}
	e.recordCallSite(2 + skip)
	return e
}

// fromError converts err into an *Error. Foreign errors become UnknownError,
// or EncodingError if they come from the JSON decoder.
func fromError(err error) *Error {
	if x := (*Error)(nil); errors.As(err, &x) {
		return x
	}
	if err == nil {
		return &Error{Code: UnknownError, Message: "(nil)"}
	}
	if x := Status(0); errors.As(err, &x) {
		return &Error{Code: x, Message: err.Error()}
	}

	e := &Error{Code: UnknownError, Message: err.Error()}
	if isEncodingError(err) {
		e.Code = EncodingError
	}
	if cause := errors.Unwrap(err); cause != nil {
		e.setCause(fromError(cause))
	}
	return e
}

func isEncodingError(err error) bool {
	var syntax *json.SyntaxError
	var typ *json.UnmarshalTypeError
	return errors.As(err, &syntax) || errors.As(err, &typ)
}

// setCause sets the cause. An error without a known code takes the code of
// its cause, and an error without a message becomes its cause.
func (e *Error) setCause(cause *Error) {
	e.Cause = cause
	if cause == nil || e.Code.IsKnownError() {
		return
	}

	if e.Message != "" {
		e.Code = cause.Code
		return
	}

	cs := e.CallStack
	*e = *cause
	e.CallStack = append(cs, cause.CallStack...)
}

func (e *Error) recordCallSite(depth int) {
	if !trackLocation {
		return
	}

	pc, file, line, ok := runtime.Caller(depth)
	if !ok {
		return
	}

	cs := &CallSite{File: file, Line: int64(line)}
	if fn := runtime.FuncForPC(pc); fn != nil {
		cs.FuncName = fn.Name()
	}
	e.CallStack = append(e.CallStack, cs)
}

func (e *Error) Error() string {
	if e.Message == "" && e.Cause != nil {
		return e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e.Cause != nil {
		return e.Cause
	}
	return e.Code
}

// Is matches a [Status] or another *Error against the code of e or any of its
// causes.
func (e *Error) Is(target error) bool {
	var code Status
	switch t := target.(type) {
	case Status:
		code = t
	case *Error:
		code = t.Code
	default:
		return false
	}

	for ; e != nil; e = e.Cause {
		if e.Code == code {
			return true
		}
	}
	return false
}
