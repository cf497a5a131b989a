/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package pkgerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseError(t *testing.T) {
	ep := errors.New("malformed credential JSON")
	eo := errors.New("some other error")

	err := fmt.Errorf("got error: %w", NewParse(ep))

	require.True(t, IsParse(err))
	require.True(t, errors.Is(err, ep))
	require.False(t, IsParse(eo))
	require.EqualError(t, err, "got error: malformed credential JSON")

	err = NewParsef("bad field %q", "weight")
	require.True(t, IsParse(err))
}

func TestVerificationError(t *testing.T) {
	ev := errors.New("signature recovery failed")
	eo := errors.New("some other error")

	err := fmt.Errorf("got error: %w", NewVerification(ev))

	require.True(t, IsVerification(err))
	require.True(t, errors.Is(err, ev))
	require.False(t, IsVerification(eo))

	err = NewVerificationf("issuer mismatch")
	require.True(t, IsVerification(err))
}

func TestStorageError(t *testing.T) {
	es := errors.New("store unavailable")
	eo := errors.New("some other error")

	err := fmt.Errorf("got error: %w", NewStorage(es))

	require.True(t, IsStorage(err))
	require.True(t, errors.Is(err, es))
	require.False(t, IsStorage(eo))

	err = NewStoragef("put failed for key %q", "0x01")
	require.True(t, IsStorage(err))
}

func TestNotFoundError(t *testing.T) {
	eo := errors.New("some other error")

	err := NewNotFound(nil)

	require.True(t, IsNotFound(err))
	require.True(t, errors.Is(err, ErrNotFound))
	require.False(t, IsNotFound(eo))

	err = NewNotFoundf("peer index %d not found", 7)
	require.True(t, IsNotFound(err))
}

func TestProtocolError(t *testing.T) {
	epr := errors.New("unexpected response shape")
	eo := errors.New("some other error")

	err := fmt.Errorf("got error: %w", NewProtocol(epr))

	require.True(t, IsProtocol(err))
	require.True(t, errors.Is(err, epr))
	require.False(t, IsProtocol(eo))

	err = NewProtocolf("collaborator returned %d rows, expected %d", 1, 2)
	require.True(t, IsProtocol(err))
}

func TestArgumentError(t *testing.T) {
	ea := errors.New("interval must be positive")
	eo := errors.New("some other error")

	err := fmt.Errorf("got error: %w", NewArgument(ea))

	require.True(t, IsArgument(err))
	require.True(t, errors.Is(err, ea))
	require.False(t, IsArgument(eo))

	err = NewArgumentf("alpha must be in (0,1], got %f", 1.5)
	require.True(t, IsArgument(err))
}
