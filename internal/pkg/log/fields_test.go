/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/trustbloc/logutil-go/pkg/log"
)

func TestStandardFields(t *testing.T) {
	const module = "test_module"

	stdOut := newMockWriter()

	logger := log.New(module, log.WithStdOut(stdOut), log.WithEncoding(log.JSON))

	logger.Info("Processed term",
		WithServiceName("transformer"),
		WithDomain(2),
		WithPeerDID("did:pkh:eip155:1:0x90f8bf6a479f320ead074411a4b0e7944ea8c9c2"),
		WithSubjectID("snap://0xabc"),
		WithWeight(50.0),
		WithTimestamp(1_200_500),
		WithTermCount(3),
		WithEventOffset(7),
		WithCheckpoint(8),
		WithPeerIndex(1),
		WithCredentialID("0xdeadbeef"),
		WithSchema("StatusCredential"),
		WithWindow(1_200_000),
		WithArchivePath("spd_scores.zip"),
		WithTopic("transformer.terms"),
		WithMessageID("msg-1"),
		WithSize(65),
		WithData([]byte("payload")),
		WithParameter("size"),
	)

	l := unmarshalLogData(t, stdOut.Bytes())

	require.Equal(t, "transformer", l.Service)
	require.EqualValues(t, 2, l.Domain)
	require.Equal(t, "did:pkh:eip155:1:0x90f8bf6a479f320ead074411a4b0e7944ea8c9c2", l.PeerDID)
	require.Equal(t, "snap://0xabc", l.SubjectID)
	require.InDelta(t, 50.0, l.Weight, 0.001)
	require.EqualValues(t, 1_200_500, l.Timestamp)
	require.EqualValues(t, 3, l.TermCount)
	require.EqualValues(t, 7, l.EventOffset)
	require.EqualValues(t, 8, l.Checkpoint)
	require.EqualValues(t, 1, l.PeerIndex)
	require.Equal(t, "0xdeadbeef", l.CredentialID)
	require.Equal(t, "StatusCredential", l.Schema)
	require.EqualValues(t, 1_200_000, l.Window)
	require.Equal(t, "spd_scores.zip", l.ArchivePath)
	require.Equal(t, "transformer.terms", l.Topic)
	require.Equal(t, "msg-1", l.MessageID)
	require.EqualValues(t, 65, l.Size)
	require.Equal(t, "payload", l.Data)
	require.Equal(t, "size", l.Parameter)
}

func TestWithCell(t *testing.T) {
	const module = "test_module"

	stdOut := newMockWriter()

	logger := log.New(module, log.WithStdOut(stdOut), log.WithEncoding(log.JSON))

	logger.Info("Updated cell", WithCell(5, 9)...)

	l := unmarshalLogData(t, stdOut.Bytes())

	require.EqualValues(t, 5, l.CellX)
	require.EqualValues(t, 9, l.CellY)
}

type logData struct {
	Service      string  `json:"service"`
	Domain       uint32  `json:"domain"`
	PeerDID      string  `json:"peer-did"`
	SubjectID    string  `json:"subject-id"`
	Weight       float32 `json:"weight"`
	Timestamp    uint64  `json:"timestamp"`
	TermCount    uint32  `json:"term-count"`
	EventOffset  uint32  `json:"event-offset"`
	Checkpoint   uint32  `json:"checkpoint"`
	PeerIndex    uint32  `json:"peer-index"`
	CellX        uint32  `json:"cell-x"`
	CellY        uint32  `json:"cell-y"`
	CredentialID string  `json:"credential-id"`
	Schema       string  `json:"schema"`
	Window       uint64  `json:"window"`
	ArchivePath  string  `json:"archive-path"`
	Topic        string  `json:"topic"`
	MessageID    string  `json:"message-id"`
	Size         int     `json:"size"`
	Data         string  `json:"data"`
	Parameter    string  `json:"parameter"`
}

func unmarshalLogData(t *testing.T, b []byte) *logData {
	t.Helper()

	l := &logData{}

	require.NoError(t, json.Unmarshal(b, l))

	return l
}

type mockWriter struct {
	*bytes.Buffer
}

func (m *mockWriter) Sync() error {
	return nil
}

func newMockWriter() *mockWriter {
	return &mockWriter{Buffer: bytes.NewBuffer(nil)}
}
