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

const itemStoreName = "combiner_item"

// Cell is a single sparse local-trust matrix entry: the running sum of weights observed from
// peer index X to peer index Y within one (domain, form) matrix.
type Cell struct {
	X, Y  uint32
	Value float32
}

// ItemManager holds the sparse local-trust matrices, one per (domain, form) pair, as a running
// sum keyed by (x, y) peer-index cell.
type ItemManager struct {
	kv *kvstore.Store
	m  *metrics.Metrics
}

// NewItemManager opens the item manager's backing store.
func NewItemManager(p storage.Provider) (*ItemManager, error) {
	kv, err := kvstore.Open(p, itemStoreName)
	if err != nil {
		return nil, err
	}

	return &ItemManager{kv: kv, m: metrics.Get()}, nil
}

// GetValue returns the current running sum for cell (x, y), or 0 if the cell has never been
// updated.
func (m *ItemManager) GetValue(domain term.Domain, form term.Form, x, y uint32) (float32, error) {
	v, err := m.kv.Get(cellKey(domain, form, x, y))
	if isNotFound(err) {
		return 0, nil
	}

	if err != nil {
		return 0, err
	}

	return math.Float32frombits(binary.BigEndian.Uint32(v)), nil
}

// UpdateValue adds weight to the running sum for cell (x, y) and returns the new value.
func (m *ItemManager) UpdateValue(domain term.Domain, form term.Form, x, y uint32, weight float32) (float32, error) {
	start := time.Now()
	defer func() { m.m.ItemUpdateTime(time.Since(start)) }()

	current, err := m.GetValue(domain, form, x, y)
	if err != nil {
		return 0, err
	}

	newValue := current + weight

	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, math.Float32bits(newValue))

	if err := m.kv.Put(cellKey(domain, form, x, y), buf, cellPrefix(domain, form)); err != nil {
		return 0, err
	}

	return newValue, nil
}

// ReadWindow returns the cells from p0 to p1 within the (domain, form) matrix.
//
// This pairs the X range and the Y range positionally (x0 with y0, x1 with y1, ...) rather than
// taking their cross product, so it only ever visits the diagonal of the (p0, p1) rectangle.
// Preserved from the reference implementation, whose managers/item.rs read_window does the
// same zip rather than a nested loop.
func (m *ItemManager) ReadWindow(domain term.Domain, form term.Form, p0, p1 [2]uint32) ([]Cell, error) {
	x0, y0 := p0[0], p0[1]
	x1, y1 := p1[0], p1[1]

	var cells []Cell

	for x, y := x0, y0; x <= x1 && y <= y1; x, y = x+1, y+1 {
		v, err := m.kv.Get(cellKey(domain, form, x, y))
		if isNotFound(err) {
			continue
		}

		if err != nil {
			return nil, err
		}

		cells = append(cells, Cell{X: x, Y: y, Value: math.Float32frombits(binary.BigEndian.Uint32(v))})
	}

	return cells, nil
}
