// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package database

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/google/orderedcode"
	"gitlab.com/accumulatenetwork/transmute/pkg/errors"
)

// A Key is the key for a record. Key parts may be strings, signed integers, or
// unsigned integers.
type Key struct {
	values []any
}

type keyType uint64

const (
	keyTypeString keyType = 1 + iota
	keyTypeInt
	keyTypeUint
)

func NewKey(v ...any) *Key {
	return &Key{normalize(v)}
}

func normalize(v []any) []any {
	for i, x := range v {
		switch x := x.(type) {
		case int:
			v[i] = int64(x)
		case int32:
			v[i] = int64(x)
		case uint:
			v[i] = uint64(x)
		case uint32:
			v[i] = uint64(x)
		}
	}
	return v
}

func (k *Key) Len() int {
	if k == nil {
		return 0
	}
	return len(k.values)
}

func (k *Key) Get(i int) any {
	if i < 0 || i >= k.Len() {
		return nil
	}
	return k.values[i]
}

// SliceI returns the key without its first I parts.
func (k *Key) SliceI(i int) *Key {
	if i >= k.Len() {
		return &Key{}
	}
	return &Key{k.values[i:]}
}

// Append creates a child key of this key.
func (k *Key) Append(v ...any) *Key {
	if len(v) == 0 {
		return k
	}
	v = normalize(v)
	if k.Len() == 0 {
		return &Key{v}
	}
	l := make([]any, len(k.values)+len(v))
	n := copy(l, k.values)
	copy(l[n:], v)
	return &Key{l}
}

// AppendKey appends one key to another.
func (k *Key) AppendKey(l *Key) *Key {
	if k.Len() == 0 {
		return l
	}
	if l.Len() == 0 {
		return k
	}
	return k.Append(l.values...)
}

// HasPrefix returns true if the first parts of K are equal to P.
func (k *Key) HasPrefix(p *Key) bool {
	if p.Len() > k.Len() {
		return false
	}
	return (&Key{k.values[:p.Len()]}).Equal(p)
}

// String returns a human-readable string for the key.
func (k *Key) String() string {
	if k.Len() == 0 {
		return "()"
	}
	s := make([]string, len(k.values))
	for i, v := range k.values {
		s[i] = fmt.Sprint(v)
	}
	return strings.Join(s, ".")
}

// Copy returns a copy of the key.
func (k *Key) Copy() *Key {
	if k == nil {
		return nil
	}
	l := make([]any, len(k.values))
	copy(l, k.values)
	return &Key{l}
}

// Equal checks if the two keys are equal.
func (k *Key) Equal(l *Key) bool {
	if k.Len() != l.Len() {
		return false
	}
	for i := 0; i < k.Len(); i++ {
		if k.values[i] != l.values[i] {
			return false
		}
	}
	return true
}

// Compare compares two keys using the order of their binary encoding.
// Compare panics if either key has an unsupported part.
func (k *Key) Compare(l *Key) int {
	a, err := k.MarshalBinary()
	if err != nil {
		panic(err)
	}
	b, err := l.MarshalBinary()
	if err != nil {
		panic(err)
	}
	return bytes.Compare(a, b)
}

// MarshalBinary encodes the key such that the byte order of encoded keys
// matches the order of their parts, and such that the encoding of a key is a
// prefix of the encoding of every key it is a prefix of.
func (k *Key) MarshalBinary() ([]byte, error) {
	var buf []byte
	var err error
	for _, v := range k.valuesOrNil() {
		switch v := v.(type) {
		case string:
			buf, err = orderedcode.Append(buf, uint64(keyTypeString), v)
		case int64:
			buf, err = orderedcode.Append(buf, uint64(keyTypeInt), v)
		case uint64:
			buf, err = orderedcode.Append(buf, uint64(keyTypeUint), v)
		default:
			return nil, errors.EncodingError.WithFormat("unsupported key part type %T", v)
		}
		if err != nil {
			return nil, errors.EncodingError.WithFormat("encode key: %w", err)
		}
	}
	return buf, nil
}

// UnmarshalBinary decodes a key produced by MarshalBinary.
func (k *Key) UnmarshalBinary(b []byte) error {
	k.values = nil
	s := string(b)
	for len(s) > 0 {
		var typ uint64
		var err error
		s, err = orderedcode.Parse(s, &typ)
		if err != nil {
			return errors.EncodingError.WithFormat("decode key: %w", err)
		}

		switch keyType(typ) {
		case keyTypeString:
			var v string
			s, err = orderedcode.Parse(s, &v)
			k.values = append(k.values, v)
		case keyTypeInt:
			var v int64
			s, err = orderedcode.Parse(s, &v)
			k.values = append(k.values, v)
		case keyTypeUint:
			var v uint64
			s, err = orderedcode.Parse(s, &v)
			k.values = append(k.values, v)
		default:
			return errors.EncodingError.WithFormat("decode key: unknown part type %d", typ)
		}
		if err != nil {
			return errors.EncodingError.WithFormat("decode key: %w", err)
		}
	}
	return nil
}

func (k *Key) valuesOrNil() []any {
	if k == nil {
		return nil
	}
	return k.values
}

// MustMarshalBinary is MarshalBinary but panics on error.
func (k *Key) MustMarshalBinary() []byte {
	b, err := k.MarshalBinary()
	if err != nil {
		panic(err)
	}
	return b
}

// ParseKey decodes a key produced by MarshalBinary.
func ParseKey(b []byte) (*Key, error) {
	k := new(Key)
	err := k.UnmarshalBinary(b)
	if err != nil {
		return nil, err
	}
	return k, nil
}
