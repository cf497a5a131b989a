/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package store

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/hyperledger/aries-framework-go/spi/storage"

	"github.com/karma3labs/eigentrust-pipeline/pkg/kvstore"
	"github.com/karma3labs/eigentrust-pipeline/pkg/metrics"
	"github.com/karma3labs/eigentrust-pipeline/pkg/term"
)

const updateStoreName = "combiner_update"

// JournalEntry is a pending local-trust update awaiting delivery to a downstream consumer
// (the score computer), recording the cell it applies to, its current value, and the time it
// was written.
type JournalEntry struct {
	Cell      Cell
	Timestamp uint64
}

// UpdateManager is the update journal: every local-trust change is recorded here, one entry per
// cell (a later write to the same cell replaces its entry), so downstream consumers can poll for
// new data since their last read.
type UpdateManager struct {
	kv *kvstore.Store
	m  *metrics.Metrics
}

// NewUpdateManager opens the update manager's backing store.
func NewUpdateManager(p storage.Provider) (*UpdateManager, error) {
	kv, err := kvstore.Open(p, updateStoreName)
	if err != nil {
		return nil, err
	}

	return &UpdateManager{kv: kv, m: metrics.Get()}, nil
}

// SetValue records that cell (x, y) of the (domain, form) matrix now holds value, observed at
// timestamp.
func (m *UpdateManager) SetValue(domain term.Domain, form term.Form, x, y uint32, value float32, timestamp uint64) error {
	buf := make([]byte, 12)
	binary.BigEndian.PutUint32(buf[0:4], math.Float32bits(value))
	binary.BigEndian.PutUint64(buf[4:12], timestamp)

	return m.kv.Put(cellKey(domain, form, x, y), buf, cellPrefix(domain, form))
}

// ReadBatch returns up to n pending journal entries for the (domain, form) matrix, in
// undefined order (the journal is a set, not a queue).
func (m *UpdateManager) ReadBatch(domain term.Domain, form term.Form, n uint32) ([]JournalEntry, error) {
	start := time.Now()
	defer func() { m.m.JournalDrainTime(time.Since(start)) }()

	it, err := m.kv.ScanPrefix(cellPrefix(domain, form))
	if err != nil {
		return nil, err
	}

	defer it.Close() //nolint:errcheck

	var entries []JournalEntry

	for uint32(len(entries)) < n && it.Next() { //nolint:gosec
		k, err := it.Key()
		if err != nil {
			return nil, err
		}

		v, err := it.Value()
		if err != nil {
			return nil, err
		}

		x, y := decodeCellXY(k)
		value := math.Float32frombits(binary.BigEndian.Uint32(v[0:4]))
		timestamp := binary.BigEndian.Uint64(v[4:12])

		entries = append(entries, JournalEntry{Cell: Cell{X: x, Y: y, Value: value}, Timestamp: timestamp})
	}

	return entries, nil
}

// DeleteBatch removes the journal entries for the given cells of the (domain, form) matrix.
func (m *UpdateManager) DeleteBatch(domain term.Domain, form term.Form, cells []Cell) error {
	ops := make([]kvstore.Operation, len(cells))

	for i, c := range cells {
		ops[i] = kvstore.Operation{Key: cellKey(domain, form, c.X, c.Y)}
	}

	return m.kv.Batch(ops)
}
