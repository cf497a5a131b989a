/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package store holds the five binary-keyed managers backing the linear combiner: peer index
// assignment, DID mapping, sparse matrix cells, the update journal, and the checkpoint.
package store

import (
	"encoding/binary"

	"github.com/karma3labs/eigentrust-pipeline/pkg/term"
)

// cellPrefix returns the 8-byte (domain, form) prefix shared by every cell of one sparse matrix.
func cellPrefix(domain term.Domain, form term.Form) []byte {
	prefix := make([]byte, 8)
	binary.BigEndian.PutUint32(prefix[0:4], uint32(domain))
	binary.BigEndian.PutUint32(prefix[4:8], uint32(form))

	return prefix
}

// cellKey returns the 16-byte key for cell (x, y) of the (domain, form) sparse matrix.
func cellKey(domain term.Domain, form term.Form, x, y uint32) []byte {
	key := make([]byte, 16)
	copy(key, cellPrefix(domain, form))
	binary.BigEndian.PutUint32(key[8:12], x)
	binary.BigEndian.PutUint32(key[12:16], y)

	return key
}

func decodeCellXY(key []byte) (x, y uint32) {
	return binary.BigEndian.Uint32(key[8:12]), binary.BigEndian.Uint32(key[12:16])
}
