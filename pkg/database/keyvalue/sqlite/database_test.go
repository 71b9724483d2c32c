// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gitlab.com/accumulatenetwork/transmute/pkg/database/keyvalue"
	"gitlab.com/accumulatenetwork/transmute/pkg/database/keyvalue/kvtest"
)

func open(t *testing.T) kvtest.Opener {
	dir := t.TempDir()
	return func() (keyvalue.Beginner, error) {
		return Open(filepath.Join(dir, "transmute.db"))
	}
}

func TestSuite(t *testing.T) {
	kvtest.TestSuite(t, open(t))
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(" ")
	require.Error(t, err)
}

func TestPrefixEnd(t *testing.T) {
	require.Equal(t, []byte{1, 3}, prefixEnd([]byte{1, 2}))
	require.Equal(t, []byte{2}, prefixEnd([]byte{1, 0xFF}))
	require.Nil(t, prefixEnd([]byte{0xFF, 0xFF}))
	require.Nil(t, prefixEnd(nil))
}
