/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package startcmd

import (
	"encoding/binary"

	"github.com/hyperledger/aries-framework-go/spi/storage"

	"github.com/karma3labs/eigentrust-pipeline/pkg/kvstore"
	"github.com/karma3labs/eigentrust-pipeline/pkg/pkgerrors"
)

const termOffsetStoreName = "combiner_server_term_offset"

var termOffsetKey = []byte("next_term_id") //nolint:gochecknoglobals

// termOffsetCheckpoint tracks the next term id this process has not yet pulled from the
// transformer's term stream. It is distinct from combiner/store.CheckpointManager, which
// tracks the participant count rather than a read offset into the upstream stream.
type termOffsetCheckpoint struct {
	kv *kvstore.Store
}

func newTermOffsetCheckpoint(p storage.Provider) (*termOffsetCheckpoint, error) {
	kv, err := kvstore.Open(p, termOffsetStoreName)
	if err != nil {
		return nil, err
	}

	return &termOffsetCheckpoint{kv: kv}, nil
}

func (c *termOffsetCheckpoint) read() (uint32, error) {
	v, err := c.kv.Get(termOffsetKey)
	if pkgerrors.IsNotFound(err) {
		return 0, nil
	}

	if err != nil {
		return 0, err
	}

	return binary.BigEndian.Uint32(v), nil
}

func (c *termOffsetCheckpoint) write(next uint32) error {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, next)

	return c.kv.Put(termOffsetKey, buf, nil)
}
