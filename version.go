// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package transmute

const unknownVersion = "version unknown"

// Version and Commit are set at build time with -ldflags.
var (
	Version = unknownVersion
	Commit  = "unknown"
)

func IsVersionKnown() bool {
	return Version != unknownVersion
}
