/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package transformer implements the attestation transformer: it consumes attestation events
// from the external indexer, dispatches each by schema id into normalized Terms, and persists
// them for the linear combiner to stream onward.
package transformer

import (
	"encoding/binary"
	"math"

	"github.com/hyperledger/aries-framework-go/spi/storage"

	"github.com/karma3labs/eigentrust-pipeline/pkg/kvstore"
	"github.com/karma3labs/eigentrust-pipeline/pkg/pkgerrors"
	"github.com/karma3labs/eigentrust-pipeline/pkg/term"
)

const (
	checkpointStoreName = "transformer_checkpoint"
	termStoreName       = "transformer_term"
)

var (
	eventCountKey = []byte("event_count") //nolint:gochecknoglobals
	termCountKey  = []byte("term_count")  //nolint:gochecknoglobals
)

// Checkpoint is the transformer's sync position: the number of indexer events consumed and the
// number of terms emitted so far.
type Checkpoint struct {
	EventCount uint32
	TermCount  uint32
}

// CheckpointManager reads and atomically advances the transformer's sync checkpoint.
type CheckpointManager struct {
	kv *kvstore.Store
}

// NewCheckpointManager opens the checkpoint manager's backing store, initializing both
// counters to 0 on first run.
func NewCheckpointManager(p storage.Provider) (*CheckpointManager, error) {
	kv, err := kvstore.Open(p, checkpointStoreName)
	if err != nil {
		return nil, err
	}

	m := &CheckpointManager{kv: kv}

	if _, err := m.kv.Get(eventCountKey); pkgerrors.IsNotFound(err) {
		if err := m.Write(Checkpoint{}); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	return m, nil
}

// Read returns the current checkpoint.
func (m *CheckpointManager) Read() (Checkpoint, error) {
	eventCount, err := m.readCounter(eventCountKey)
	if err != nil {
		return Checkpoint{}, err
	}

	termCount, err := m.readCounter(termCountKey)
	if err != nil {
		return Checkpoint{}, err
	}

	return Checkpoint{EventCount: eventCount, TermCount: termCount}, nil
}

// Write atomically advances both counters to the given checkpoint.
func (m *CheckpointManager) Write(cp Checkpoint) error {
	eventBuf := make([]byte, 4)
	binary.BigEndian.PutUint32(eventBuf, cp.EventCount)

	termBuf := make([]byte, 4)
	binary.BigEndian.PutUint32(termBuf, cp.TermCount)

	return m.kv.Batch([]kvstore.Operation{
		{Key: eventCountKey, Value: eventBuf},
		{Key: termCountKey, Value: termBuf},
	})
}

func (m *CheckpointManager) readCounter(key []byte) (uint32, error) {
	v, err := m.kv.Get(key)
	if pkgerrors.IsNotFound(err) {
		return 0, nil
	}

	if err != nil {
		return 0, err
	}

	return binary.BigEndian.Uint32(v), nil
}

// TermManager persists the transformer's emitted terms, keyed by their sequential, big-endian
// u32 assigned id.
type TermManager struct {
	kv *kvstore.Store
}

// NewTermManager opens the term manager's backing store.
func NewTermManager(p storage.Provider) (*TermManager, error) {
	kv, err := kvstore.Open(p, termStoreName)
	if err != nil {
		return nil, err
	}

	return &TermManager{kv: kv}, nil
}

// Put stores t under id.
func (m *TermManager) Put(id uint32, t term.Term) error {
	key := make([]byte, 4)
	binary.BigEndian.PutUint32(key, id)

	return m.kv.Put(key, encodeTerm(t), nil)
}

// Get returns the term stored under id.
func (m *TermManager) Get(id uint32) (term.Term, error) {
	key := make([]byte, 4)
	binary.BigEndian.PutUint32(key, id)

	v, err := m.kv.Get(key)
	if err != nil {
		return term.Term{}, err
	}

	return decodeTerm(v)
}

func encodeTerm(t term.Term) []byte {
	buf := make([]byte, 0, 2+len(t.FromDID)+2+len(t.ToID)+4+4+1+8)

	buf = appendString(buf, t.FromDID)
	buf = appendString(buf, t.ToID)
	buf = appendFloat32(buf, t.Weight)
	buf = appendUint32(buf, uint32(t.Domain))
	buf = append(buf, byte(t.Form))
	buf = appendUint64(buf, t.Timestamp)

	return buf
}

func decodeTerm(b []byte) (term.Term, error) {
	fromDID, b, err := readString(b)
	if err != nil {
		return term.Term{}, err
	}

	toID, b, err := readString(b)
	if err != nil {
		return term.Term{}, err
	}

	if len(b) < 4+4+1+8 {
		return term.Term{}, pkgerrors.NewParsef("term record truncated")
	}

	weight := float32frombits(b[0:4])
	domain := term.Domain(binary.BigEndian.Uint32(b[4:8]))
	form := term.Form(b[8])
	timestamp := binary.BigEndian.Uint64(b[9:17])

	return term.New(fromDID, toID, weight, domain, form, timestamp), nil
}

func appendString(buf []byte, s string) []byte {
	lenBuf := make([]byte, 2)
	binary.BigEndian.PutUint16(lenBuf, uint16(len(s))) //nolint:gosec

	buf = append(buf, lenBuf...)

	return append(buf, s...)
}

func readString(b []byte) (string, []byte, error) {
	if len(b) < 2 {
		return "", nil, pkgerrors.NewParsef("term record truncated reading string length")
	}

	n := int(binary.BigEndian.Uint16(b[0:2]))
	b = b[2:]

	if len(b) < n {
		return "", nil, pkgerrors.NewParsef("term record truncated reading string value")
	}

	return string(b[:n]), b[n:], nil
}

func appendUint32(buf []byte, v uint32) []byte {
	tmp := make([]byte, 4)
	binary.BigEndian.PutUint32(tmp, v)

	return append(buf, tmp...)
}

func appendUint64(buf []byte, v uint64) []byte {
	tmp := make([]byte, 8)
	binary.BigEndian.PutUint64(tmp, v)

	return append(buf, tmp...)
}

func appendFloat32(buf []byte, v float32) []byte {
	return appendUint32(buf, math.Float32bits(v))
}

func float32frombits(b []byte) float32 {
	return math.Float32frombits(binary.BigEndian.Uint32(b))
}
