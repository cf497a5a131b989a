/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package kvstore adapts the binary, tuple-keyed column families the combiner and
// transformer managers need (peer index, DID mapping, sparse matrix cell, update journal,
// checkpoint) onto the string-keyed github.com/hyperledger/aries-framework-go/spi/storage
// interface, so any storage.Provider implementation can back them.
package kvstore

import (
	"encoding/hex"

	"github.com/hyperledger/aries-framework-go/spi/storage"

	"github.com/karma3labs/eigentrust-pipeline/pkg/pkgerrors"
)

// Tag name under which ScanPrefix entries are indexed by their binary key prefix.
const prefixTag = "prefix"

// Store is a binary-keyed key/value store backed by an aries storage.Store.
type Store struct {
	s storage.Store
}

// Open opens (creating if necessary) the named store from the given provider.
func Open(p storage.Provider, name string) (*Store, error) {
	s, err := p.OpenStore(name)
	if err != nil {
		return nil, pkgerrors.NewStoragef("open store %q: %w", name, err)
	}

	return &Store{s: s}, nil
}

// Put stores value under the binary key. When scanPrefix is non-nil the entry is tagged so a
// later ScanPrefix(scanPrefix) call will return it; managers that need range iteration over a
// shared key prefix (e.g. all cells of a (domain, form) matrix) pass their fixed prefix here.
func (s *Store) Put(key []byte, value []byte, scanPrefix []byte) error {
	var tags []storage.Tag

	if scanPrefix != nil {
		tags = []storage.Tag{{Name: prefixTag, Value: encodeKey(scanPrefix)}}
	}

	if err := s.s.Put(encodeKey(key), value, tags...); err != nil {
		return pkgerrors.NewStoragef("put: %w", err)
	}

	return nil
}

// Get retrieves the value stored under the binary key. Returns a pkgerrors 'not found' error
// if no value is associated with key.
func (s *Store) Get(key []byte) ([]byte, error) {
	v, err := s.s.Get(encodeKey(key))
	if err != nil {
		if err == storage.ErrDataNotFound { //nolint:errorlint
			return nil, pkgerrors.NewNotFoundf("key %x: %w", key, err)
		}

		return nil, pkgerrors.NewStoragef("get: %w", err)
	}

	return v, nil
}

// Delete removes the value stored under the binary key, if any.
func (s *Store) Delete(key []byte) error {
	if err := s.s.Delete(encodeKey(key)); err != nil {
		return pkgerrors.NewStoragef("delete: %w", err)
	}

	return nil
}

// Operation is a single entry in a Batch call. A nil Value deletes the key.
type Operation struct {
	Key        []byte
	Value      []byte
	ScanPrefix []byte
}

// Batch applies a batch of puts/deletes in one call to the underlying store.
func (s *Store) Batch(ops []Operation) error {
	storageOps := make([]storage.Operation, len(ops))

	for i, op := range ops {
		var tags []storage.Tag

		if op.ScanPrefix != nil {
			tags = []storage.Tag{{Name: prefixTag, Value: encodeKey(op.ScanPrefix)}}
		}

		storageOps[i] = storage.Operation{
			Key:   encodeKey(op.Key),
			Value: op.Value,
			Tags:  tags,
		}
	}

	if err := s.s.Batch(storageOps); err != nil {
		return pkgerrors.NewStoragef("batch: %w", err)
	}

	return nil
}

// Iterator iterates over the key/value pairs tagged with a given scan prefix.
type Iterator struct {
	it storage.Iterator
}

// ScanPrefix returns an Iterator over all entries previously Put with this scanPrefix.
func (s *Store) ScanPrefix(scanPrefix []byte) (*Iterator, error) {
	it, err := s.s.Query(prefixTag + ":" + encodeKey(scanPrefix))
	if err != nil {
		return nil, pkgerrors.NewStoragef("query: %w", err)
	}

	return &Iterator{it: it}, nil
}

// Next advances the iterator. Returns false when exhausted or on error; call Close to
// retrieve any error that interrupted iteration.
func (it *Iterator) Next() bool {
	ok, err := it.it.Next()

	return err == nil && ok
}

// Key returns the current binary key.
func (it *Iterator) Key() ([]byte, error) {
	k, err := it.it.Key()
	if err != nil {
		return nil, pkgerrors.NewStoragef("iterator key: %w", err)
	}

	return decodeKey(k)
}

// Value returns the current raw value.
func (it *Iterator) Value() ([]byte, error) {
	v, err := it.it.Value()
	if err != nil {
		return nil, pkgerrors.NewStoragef("iterator value: %w", err)
	}

	return v, nil
}

// Close releases resources held by the iterator.
func (it *Iterator) Close() error {
	return it.it.Close()
}

func encodeKey(key []byte) string {
	return hex.EncodeToString(key)
}

func decodeKey(key string) ([]byte, error) {
	b, err := hex.DecodeString(key)
	if err != nil {
		return nil, pkgerrors.NewParsef("decode key %q: %w", key, err)
	}

	return b, nil
}
