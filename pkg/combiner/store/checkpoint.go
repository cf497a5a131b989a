/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package store

import (
	"encoding/binary"

	"github.com/hyperledger/aries-framework-go/spi/storage"

	"github.com/karma3labs/eigentrust-pipeline/pkg/kvstore"
)

const checkpointStoreName = "combiner_checkpoint"

var participantCountKey = []byte("participant_count") //nolint:gochecknoglobals

// CheckpointManager tracks the total number of distinct peers observed (the participant count),
// which doubles as the next value to assign via IndexManager.
type CheckpointManager struct {
	kv *kvstore.Store
}

// NewCheckpointManager opens the checkpoint manager's backing store, initializing the
// participant count to 0 if this is the first run.
func NewCheckpointManager(p storage.Provider) (*CheckpointManager, error) {
	kv, err := kvstore.Open(p, checkpointStoreName)
	if err != nil {
		return nil, err
	}

	m := &CheckpointManager{kv: kv}

	if _, err := m.kv.Get(participantCountKey); isNotFound(err) {
		if err := m.WriteCheckpoint(0); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	return m, nil
}

// ReadCheckpoint returns the current participant count.
func (m *CheckpointManager) ReadCheckpoint() (uint32, error) {
	v, err := m.kv.Get(participantCountKey)
	if isNotFound(err) {
		return 0, nil
	}

	if err != nil {
		return 0, err
	}

	return binary.BigEndian.Uint32(v), nil
}

// WriteCheckpoint sets the participant count.
func (m *CheckpointManager) WriteCheckpoint(count uint32) error {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, count)

	return m.kv.Put(participantCountKey, buf, nil)
}
