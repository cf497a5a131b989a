/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package memindexer is an in-process fake of pkg/collab.Indexer, backed by an in-memory
// append-only event log, sufficient to drive the transformer and score computer's indexer
// reads end-to-end in tests without a real collaborator deployment.
package memindexer

import (
	"context"
	"sync"

	"github.com/karma3labs/eigentrust-pipeline/pkg/collab"
)

// Indexer is an in-memory collab.Indexer backed by an append-only event log.
type Indexer struct {
	mu     sync.Mutex
	events []collab.IndexerEvent
}

// New returns an empty Indexer.
func New() *Indexer {
	return &Indexer{}
}

// Append adds events to the end of the log, assigning each the next sequential ID.
func (idx *Indexer) Append(events ...collab.IndexerEvent) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	for _, e := range events {
		e.ID = uint64(len(idx.events)) //nolint:gosec
		idx.events = append(idx.events, e)
	}
}

// Len returns the number of events in the log.
func (idx *Indexer) Len() int {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	return len(idx.events)
}

// Subscribe implements collab.Indexer. The fake does not filter by req.SchemaIDs — matching
// the reference, schema dispatch happens in the transformer after the event is received — so
// the returned stream is exactly the req.Count raw events starting at req.Offset, and the
// caller's checkpoint event-offset advances by the number of events actually streamed.
func (idx *Indexer) Subscribe(ctx context.Context, req collab.SubscribeRequest) (<-chan collab.IndexerEvent, <-chan error) {
	eventChan := make(chan collab.IndexerEvent)
	errChan := make(chan error, 1)

	idx.mu.Lock()
	all := append([]collab.IndexerEvent(nil), idx.events...)
	idx.mu.Unlock()

	go func() {
		defer close(eventChan)
		defer close(errChan)

		start := int(req.Offset) //nolint:gosec
		if start > len(all) {
			start = len(all)
		}

		end := start + int(req.Count) //nolint:gosec
		if end > len(all) {
			end = len(all)
		}

		for _, e := range all[start:end] {
			select {
			case eventChan <- e:
			case <-ctx.Done():
				errChan <- ctx.Err()

				return
			}
		}
	}()

	return eventChan, errChan
}
