/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package kvstore

import (
	"encoding/binary"
	"testing"

	"github.com/hyperledger/aries-framework-go/component/storageutil/mem"
	"github.com/stretchr/testify/require"

	"github.com/karma3labs/eigentrust-pipeline/pkg/pkgerrors"
)

func cellKey(x, y uint32) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint32(k[0:4], x)
	binary.BigEndian.PutUint32(k[4:8], y)

	return k
}

func TestPutGetDelete(t *testing.T) {
	s, err := Open(mem.NewProvider(), "cells")
	require.NoError(t, err)

	key := cellKey(1, 2)

	_, err = s.Get(key)
	require.True(t, pkgerrors.IsNotFound(err))

	require.NoError(t, s.Put(key, []byte("0.5"), nil))

	v, err := s.Get(key)
	require.NoError(t, err)
	require.Equal(t, "0.5", string(v))

	require.NoError(t, s.Delete(key))

	_, err = s.Get(key)
	require.True(t, pkgerrors.IsNotFound(err))
}

func TestScanPrefix(t *testing.T) {
	s, err := Open(mem.NewProvider(), "cells")
	require.NoError(t, err)

	prefix := make([]byte, 4)
	binary.BigEndian.PutUint32(prefix, 1)

	require.NoError(t, s.Put(cellKey(1, 2), []byte("a"), prefix))
	require.NoError(t, s.Put(cellKey(1, 3), []byte("b"), prefix))
	require.NoError(t, s.Put(cellKey(9, 9), []byte("c"), nil))

	it, err := s.ScanPrefix(prefix)
	require.NoError(t, err)

	defer it.Close() //nolint:errcheck

	seen := map[string]bool{}

	for it.Next() {
		v, err := it.Value()
		require.NoError(t, err)

		seen[string(v)] = true
	}

	require.True(t, seen["a"])
	require.True(t, seen["b"])
	require.False(t, seen["c"])
}

func TestBatch(t *testing.T) {
	s, err := Open(mem.NewProvider(), "cells")
	require.NoError(t, err)

	require.NoError(t, s.Batch([]Operation{
		{Key: cellKey(0, 0), Value: []byte("x")},
		{Key: cellKey(0, 1), Value: []byte("y")},
	}))

	v, err := s.Get(cellKey(0, 1))
	require.NoError(t, err)
	require.Equal(t, "y", string(v))
}
