/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package log

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/trustbloc/logutil-go/pkg/log"
)

func TestInvalidParameterValue(t *testing.T) {
	stdErr := newMockWriter()

	logger := log.New("test_module", log.WithStdErr(stdErr), log.WithEncoding(log.Console))

	InvalidParameterValue(logger, "interval", errors.New("must be positive"))

	line := stdErr.String()

	require.Contains(t, line, "Invalid parameter value")
	require.Contains(t, line, "interval")
	require.Contains(t, line, "must be positive")
}

func TestCredentialSkipped(t *testing.T) {
	stdErr := newMockWriter()

	logger := log.New("test_module", log.WithStdErr(stdErr), log.WithEncoding(log.Console))

	CredentialSkipped(logger, "StatusCredential", errors.New("signature recovery failed"))

	line := stdErr.String()

	require.Contains(t, line, "Skipping credential")
	require.Contains(t, line, "StatusCredential")
	require.Contains(t, line, "signature recovery failed")
}

func TestBatchAborted(t *testing.T) {
	stdErr := newMockWriter()

	logger := log.New("test_module", log.WithStdErr(stdErr), log.WithEncoding(log.Console))

	BatchAborted(logger, 42, errors.New("storage unavailable"))

	line := stdErr.String()

	require.Contains(t, line, "checkpoint not advanced")
	require.Contains(t, line, "storage unavailable")
	require.True(t, strings.Contains(line, "42"))
}

func TestCheckpointAdvanced(t *testing.T) {
	stdErr := newMockWriter()

	logger := log.New("test_module", log.WithStdErr(stdErr), log.WithEncoding(log.Console))

	CheckpointAdvanced(logger, 7)

	line := stdErr.String()

	require.Contains(t, line, "Checkpoint advanced")
	require.True(t, strings.Contains(line, "7"))
}

func TestNewPeerIndex(t *testing.T) {
	stdErr := newMockWriter()

	logger := log.New("test_module", log.WithStdErr(stdErr), log.WithEncoding(log.Console))

	NewPeerIndex(logger, "did:pkh:eip155:1:0x90f8bf6a479f320ead074411a4b0e7944ea8c9c2", 3)

	line := stdErr.String()

	require.Contains(t, line, "Assigned new peer index")
	require.Contains(t, line, "did:pkh:eip155:1:0x90f8bf6a479f320ead074411a4b0e7944ea8c9c2")
}

func TestCloseIteratorError(t *testing.T) {
	stdErr := newMockWriter()

	logger := log.New("test_module", log.WithStdErr(stdErr), log.WithEncoding(log.Console))

	CloseIteratorError(logger, errors.New("iterator already closed"))

	line := stdErr.String()

	require.Contains(t, line, "Error closing iterator")
	require.Contains(t, line, "iterator already closed")
}
