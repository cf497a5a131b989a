/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package combiner implements the linear combiner service: it ingests the transformer's term
// stream into the sparse local-trust matrices, and serves the DID mapping and local-trust reads
// the score computer drains.
package combiner

import (
	"context"
	"strings"
	"sync"

	tlog "github.com/trustbloc/logutil-go/pkg/log"

	"github.com/karma3labs/eigentrust-pipeline/internal/pkg/log"
	"github.com/karma3labs/eigentrust-pipeline/pkg/combiner/store"
	"github.com/karma3labs/eigentrust-pipeline/pkg/peerdid"
	"github.com/karma3labs/eigentrust-pipeline/pkg/pkgerrors"
	"github.com/karma3labs/eigentrust-pipeline/pkg/term"
)

var logger = tlog.New("combiner") //nolint:gochecknoglobals

// Cell is one cell of a local-trust matrix, as returned to callers streaming historic or new
// data.
type Cell struct {
	X, Y      uint32
	Value     float32
	Timestamp uint64
}

// Service implements the linear combiner's public operations over its five storage managers.
type Service struct {
	index      *store.IndexManager
	mapping    *store.MappingManager
	item       *store.ItemManager
	update     *store.UpdateManager
	checkpoint *store.CheckpointManager

	// mu serializes SyncTransformer calls: the peer-index offset read from the checkpoint at
	// the start of a call must not be raced by a concurrent call assigning the same offset to
	// a different DID.
	mu sync.Mutex
}

// New constructs a Service from its storage managers.
func New(
	index *store.IndexManager,
	mapping *store.MappingManager,
	item *store.ItemManager,
	update *store.UpdateManager,
	checkpoint *store.CheckpointManager,
) *Service {
	return &Service{index: index, mapping: mapping, item: item, update: update, checkpoint: checkpoint}
}

// SyncTransformer applies a batch of terms from the transformer's term stream: each term's
// endpoints are canonicalized and resolved to peer indices (assigning new indices as needed),
// its (domain, form, x, y) cell is accumulated, the journal records the new value, and the
// checkpoint's participant count is committed once the whole batch has been applied.
//
// The participant-count checkpoint and the per-cell journal writes are not committed in a
// single cross-column-family transaction — this pipeline's storage abstraction (one
// storage.Store per column family) does not support multi-store transactions, so true atomicity
// per spec.md §9 item 5's option (a) is not achievable without a new storage primitive the rest
// of the pipeline doesn't use. A crash mid-batch leaves the checkpoint unadvanced, and a
// replayed batch re-accumulates already-applied terms; see DESIGN.md for the accepted tradeoff.
func (s *Service) SyncTransformer(_ context.Context, terms []term.Term) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	nextOffset, err := s.checkpoint.ReadCheckpoint()
	if err != nil {
		return err
	}

	for _, t := range terms {
		fromDID, err := canonicalizeIdentifier(t.FromDID)
		if err != nil {
			return pkgerrors.NewParsef("canonicalize from: %w", err)
		}

		toDID, err := canonicalizeIdentifier(t.ToID)
		if err != nil {
			return pkgerrors.NewParsef("canonicalize to: %w", err)
		}

		var x, y uint32

		x, nextOffset, err = s.resolveIndex(fromDID, nextOffset)
		if err != nil {
			return err
		}

		y, nextOffset, err = s.resolveIndex(toDID, nextOffset)
		if err != nil {
			return err
		}

		newValue, err := s.item.UpdateValue(t.Domain, t.Form, x, y, t.Weight)
		if err != nil {
			return err
		}

		if err := s.update.SetValue(t.Domain, t.Form, x, y, newValue, t.Timestamp); err != nil {
			return err
		}
	}

	if err := s.checkpoint.WriteCheckpoint(nextOffset); err != nil {
		return err
	}

	log.CheckpointAdvanced(logger, nextOffset)

	return nil
}

// resolveIndex resolves did to its peer index, assigning nextOffset if this is the first time
// did has been observed, and returns the index along with the offset the next resolution should
// propose.
func (s *Service) resolveIndex(did string, nextOffset uint32) (uint32, uint32, error) {
	index, isNew, err := s.index.GetIndex(did, nextOffset)
	if err != nil {
		return 0, 0, err
	}

	if !isNew {
		return index, nextOffset, nil
	}

	if err := s.mapping.WriteMapping(index, did); err != nil {
		return 0, 0, err
	}

	log.NewPeerIndex(logger, did, index)

	return index, nextOffset + 1, nil
}

// GetDidMapping returns up to size peer-index-to-DID mapping entries, starting at peer index
// start.
func (s *Service) GetDidMapping(_ context.Context, start, size uint32) ([]store.MappingEntry, error) {
	return s.mapping.ReadMappings(start, size)
}

// GetHistoricData returns the diagonal-paired subset of the (domain, form) matrix between
// (x0, y0) and (x1, y1), with timestamp always 0 — the item column does not persist per-cell
// timestamps; only the journal does, and get_new_data is the timestamped read path.
func (s *Service) GetHistoricData(_ context.Context, domain term.Domain, form term.Form, x0, y0, x1, y1 uint32) ([]Cell, error) {
	if x0 > x1 && y0 > y1 {
		return nil, pkgerrors.NewArgumentf("empty range: x0=%d > x1=%d and y0=%d > y1=%d", x0, x1, y0, y1)
	}

	cells, err := s.item.ReadWindow(domain, form, [2]uint32{x0, y0}, [2]uint32{x1, y1})
	if err != nil {
		return nil, err
	}

	out := make([]Cell, len(cells))
	for i, c := range cells {
		out[i] = Cell{X: c.X, Y: c.Y, Value: c.Value}
	}

	return out, nil
}

// GetNewData returns up to size pending journal entries for the (domain, form) matrix. This is
// deliberately non-destructive: drained entries are never deleted, so the journal grows
// monotonically and repeated calls may return the same entries. See spec.md §9 item 2.
func (s *Service) GetNewData(_ context.Context, domain term.Domain, form term.Form, size uint32) ([]Cell, error) {
	entries, err := s.update.ReadBatch(domain, form, size)
	if err != nil {
		return nil, err
	}

	out := make([]Cell, len(entries))
	for i, e := range entries {
		out[i] = Cell{X: e.Cell.X, Y: e.Cell.Y, Value: e.Cell.Value, Timestamp: e.Timestamp}
	}

	return out, nil
}

// canonicalizeIdentifier canonicalizes a peer DID via pkg/peerdid. Identifiers that are not
// DIDs (e.g. "snap://..." artifact ids, already canonical by construction) pass through
// unchanged — peerdid.Canonicalize only understands the did:pkh/did:eth forms a peer identity
// takes, not the artifact identifiers trust terms may target as their "to" endpoint.
func canonicalizeIdentifier(id string) (string, error) {
	if !strings.HasPrefix(id, "did:") {
		return id, nil
	}

	return peerdid.Canonicalize(id)
}
