/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package store

import (
	"encoding/binary"

	"github.com/hyperledger/aries-framework-go/spi/storage"

	tlog "github.com/trustbloc/logutil-go/pkg/log"

	"github.com/karma3labs/eigentrust-pipeline/internal/pkg/log"
	"github.com/karma3labs/eigentrust-pipeline/pkg/kvstore"
)

const indexStoreName = "combiner_index"

var indexLogger = tlog.New("combiner_store") //nolint:gochecknoglobals

// IndexManager assigns a monotonically increasing, append-only peer index to each DID the
// first time it is observed. Once assigned, a DID's index never changes.
type IndexManager struct {
	kv *kvstore.Store
}

// NewIndexManager opens the index manager's backing store.
func NewIndexManager(p storage.Provider) (*IndexManager, error) {
	kv, err := kvstore.Open(p, indexStoreName)
	if err != nil {
		return nil, err
	}

	return &IndexManager{kv: kv}, nil
}

// GetIndex returns the peer index assigned to did, assigning the next value of offset if this
// is the first time did has been observed. The second return value reports whether a new
// index was assigned.
func (m *IndexManager) GetIndex(did string, offset uint32) (uint32, bool, error) {
	key := []byte(did)

	existing, err := m.kv.Get(key)
	if err == nil {
		return binary.BigEndian.Uint32(existing), false, nil
	}

	if !isNotFound(err) {
		return 0, false, err
	}

	indexLogger.Debug("new DID-index mapping", log.WithPeerDID(did), log.WithPeerIndex(offset))

	value := make([]byte, 4)
	binary.BigEndian.PutUint32(value, offset)

	if err := m.kv.Put(key, value, nil); err != nil {
		return 0, false, err
	}

	return offset, true, nil
}
