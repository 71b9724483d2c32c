// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package execute

import "github.com/google/uuid"

// Result is the outcome of a successful operation.
type Result struct {
	ID       uuid.UUID `json:"id" yaml:"id"`
	Contract string    `json:"contract,omitempty" yaml:"contract,omitempty"`
	Events   []*Event  `json:"events,omitempty" yaml:"events,omitempty"`
}

// Event is emitted by a contract or a native module.
type Event struct {
	Type       string      `json:"type" yaml:"type"`
	Contract   string      `json:"contract,omitempty" yaml:"contract,omitempty"`
	Attributes []Attribute `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

type Attribute struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// Get returns the value of the first attribute with the given key.
func (e *Event) Get(key string) (string, bool) {
	for _, a := range e.Attributes {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}
