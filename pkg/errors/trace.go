// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package errors

import "os"

var trackLocation = os.Getenv("TRANSMUTE_ERROR_TRACE") != ""

// EnableLocationTracking turns on call site recording for errors created
// after the call. It is intended for tests and debugging.
func EnableLocationTracking() { trackLocation = true }
