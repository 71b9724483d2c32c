// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package errors

import (
	"fmt"
	"strings"
)

const (
	// OK means the request completed successfully.
	OK Status = 200

	// Delivered means the message was executed and its effects committed.
	Delivered Status = 201

	// BadRequest means the request was malformed or invalid.
	BadRequest Status = 400

	// Unauthorized means the caller is not permitted to perform the
	// operation.
	Unauthorized Status = 401

	// NotFound means a record could not be found.
	NotFound Status = 404

	// NotAllowed means the requested action is not allowed.
	NotAllowed Status = 405

	// Conflict means the request failed due to a conflict with existing
	// state.
	Conflict Status = 409

	// InsufficientBalance means an account does not hold enough units.
	InsufficientBalance Status = 420

	// CapExceeded means the operation would raise the combined supply above
	// the configured cap.
	CapExceeded Status = 421

	// WrongDenom means attached funds are not of the expected denomination.
	WrongDenom Status = 422

	// ExpectedExactlyOneCoin means the operation requires exactly one
	// attached coin.
	ExpectedExactlyOneCoin Status = 423

	// ZeroBurnAmount means a ledger burn was requested without an amount.
	ZeroBurnAmount Status = 424

	// AlreadyMaterialized means the external representation already exists.
	AlreadyMaterialized Status = 425

	// NoExternalRepresentation means the operation needs an external
	// representation that has not been created.
	NoExternalRepresentation Status = 426

	// MalformedIdentifier means an external identifier does not have the
	// expected shape.
	MalformedIdentifier Status = 427

	// IdentityMismatch means the identifier's scheme or issuer does not match
	// the caller.
	IdentityMismatch Status = 428

	// AlreadyRegistered means the identifier is already registered.
	AlreadyRegistered Status = 429

	// InternalError means an internal error occurred.
	InternalError Status = 500

	// UnknownError means an unknown error occurred.
	UnknownError Status = 501

	// EncodingError means encoding or decoding failed.
	EncodingError Status = 502

	// NotReady means the component is not ready.
	NotReady Status = 504
)

var statusNames = map[Status]string{
	OK:                       "ok",
	Delivered:                "delivered",
	BadRequest:               "badRequest",
	Unauthorized:             "unauthorized",
	NotFound:                 "notFound",
	NotAllowed:               "notAllowed",
	Conflict:                 "conflict",
	InsufficientBalance:      "insufficientBalance",
	CapExceeded:              "capExceeded",
	WrongDenom:               "wrongDenom",
	ExpectedExactlyOneCoin:   "expectedExactlyOneCoin",
	ZeroBurnAmount:           "zeroBurnAmount",
	AlreadyMaterialized:      "alreadyMaterialized",
	NoExternalRepresentation: "noExternalRepresentation",
	MalformedIdentifier:      "malformedIdentifier",
	IdentityMismatch:         "identityMismatch",
	AlreadyRegistered:        "alreadyRegistered",
	InternalError:            "internalError",
	UnknownError:             "unknownError",
	EncodingError:            "encodingError",
	NotReady:                 "notReady",
}

// Success returns true if the status represents success.
func (s Status) Success() bool { return s < 300 }

// IsKnownError returns true if the status is non-zero and not UnknownError.
func (s Status) IsKnownError() bool { return s != 0 && s != UnknownError }

// IsClientError returns true if the status is a client error.
func (s Status) IsClientError() bool { return s >= 400 && s < 500 }

// IsServerError returns true if the status is a server error.
func (s Status) IsServerError() bool { return s >= 500 }

// HTTPStatus returns the HTTP status code for the status. Domain-specific
// client errors map to 400.
func (s Status) HTTPStatus() int {
	switch {
	case s == 0:
		return 500
	case s.Success(), s == BadRequest, s == Unauthorized, s == NotFound, s == NotAllowed, s == Conflict:
		return int(s)
	case s.IsClientError():
		return 400
	}
	return 500
}

// String returns the name of the status.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status:%d", uint64(s))
}

// StatusByName returns the status with the given name, ignoring case.
func StatusByName(name string) (Status, bool) {
	for s, n := range statusNames {
		if strings.EqualFold(n, name) {
			return s, true
		}
	}
	return 0, false
}

// MarshalText marshals the status as its name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText unmarshals the status from its name.
func (s *Status) UnmarshalText(b []byte) error {
	v, ok := StatusByName(string(b))
	if !ok {
		return fmt.Errorf("invalid status %q", b)
	}
	*s = v
	return nil
}
