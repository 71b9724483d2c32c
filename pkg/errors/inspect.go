// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package errors

import "errors"

func As(err error, target interface{}) bool { return errors.As(err, target) }
func Is(err, target error) bool             { return errors.Is(err, target) }

// Code returns the first known code in the error's causal chain. Code returns
// 0 if err is not an [*Error].
func Code(err error) Status {
	var e *Error
	if !As(err, &e) {
		return 0
	}
	for e.Code == UnknownError && e.Cause != nil {
		e = e.Cause
	}
	return e.Code
}
