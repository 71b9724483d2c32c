// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package errors

// Status is a request status code.
type Status uint64

// Error is a status-coded error with an optional cause and call stack.
type Error struct {
	Message   string      `json:"message,omitempty"`
	Code      Status      `json:"code"`
	Cause     *Error      `json:"cause,omitempty"`
	CallStack []*CallSite `json:"-"`
}

// CallSite records where an error was created or wrapped.
type CallSite struct {
	FuncName string
	File     string
	Line     int64
}
