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

const mappingStoreName = "combiner_mapping"

// MappingEntry associates a peer index with the canonical DID it was assigned to.
type MappingEntry struct {
	Index uint32
	DID   string
}

// allMappingsPrefix tags every mapping entry so ReadMappings can range-scan from an offset;
// the manager keeps a single shared prefix since there is only one DID-index keyspace.
var allMappingsPrefix = []byte("mapping") //nolint:gochecknoglobals

// MappingManager records the DID assigned to each peer index and reads them back in index order.
type MappingManager struct {
	kv *kvstore.Store
}

// NewMappingManager opens the mapping manager's backing store.
func NewMappingManager(p storage.Provider) (*MappingManager, error) {
	kv, err := kvstore.Open(p, mappingStoreName)
	if err != nil {
		return nil, err
	}

	return &MappingManager{kv: kv}, nil
}

// WriteMapping records that index is assigned to did.
func (m *MappingManager) WriteMapping(index uint32, did string) error {
	key := make([]byte, 4)
	binary.BigEndian.PutUint32(key, index)

	return m.kv.Put(key, []byte(did), allMappingsPrefix)
}

// ReadMappings returns up to n mapping entries in index order, starting at peer index start.
func (m *MappingManager) ReadMappings(start, n uint32) ([]MappingEntry, error) {
	it, err := m.kv.ScanPrefix(allMappingsPrefix)
	if err != nil {
		return nil, err
	}

	defer it.Close() //nolint:errcheck

	var entries []MappingEntry

	for it.Next() {
		k, err := it.Key()
		if err != nil {
			return nil, err
		}

		index := binary.BigEndian.Uint32(k)
		if index < start {
			continue
		}

		v, err := it.Value()
		if err != nil {
			return nil, err
		}

		entries = append(entries, MappingEntry{Index: index, DID: string(v)})
	}

	sortMappingEntries(entries)

	if uint32(len(entries)) > n { //nolint:gosec
		entries = entries[:n]
	}

	return entries, nil
}

func sortMappingEntries(entries []MappingEntry) {
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && entries[j-1].Index > entries[j].Index; j-- {
			entries[j-1], entries[j] = entries[j], entries[j-1]
		}
	}
}
