/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package transformer

import (
	"context"
	"time"

	tlog "github.com/trustbloc/logutil-go/pkg/log"

	"github.com/karma3labs/eigentrust-pipeline/internal/pkg/log"
	"github.com/karma3labs/eigentrust-pipeline/pkg/collab"
	"github.com/karma3labs/eigentrust-pipeline/pkg/credential"
	"github.com/karma3labs/eigentrust-pipeline/pkg/metrics"
	"github.com/karma3labs/eigentrust-pipeline/pkg/pkgerrors"
	"github.com/karma3labs/eigentrust-pipeline/pkg/term"
)

// maxTermStreamSize bounds a single term_stream call.
const maxTermStreamSize = 1000

var logger = tlog.New("transformer") //nolint:gochecknoglobals

// Config configures the indexer subscription a Service syncs from.
type Config struct {
	SourceAddress string
	SchemaIDs     []string
}

// Service implements the attestation transformer: it pulls attestation events from the
// external indexer, dispatches each into normalized terms by schema id, and persists the
// result for the combiner to stream onward.
type Service struct {
	cfg         Config
	indexer     collab.Indexer
	checkpoints *CheckpointManager
	terms       *TermManager
	metrics     *metrics.Metrics
}

// New constructs a Service from its collaborators and storage managers.
func New(cfg Config, indexer collab.Indexer, checkpoints *CheckpointManager, terms *TermManager) *Service {
	return &Service{
		cfg:         cfg,
		indexer:     indexer,
		checkpoints: checkpoints,
		terms:       terms,
		metrics:     metrics.Get(),
	}
}

// SyncIndexer reads the current checkpoint, subscribes to the indexer for up to size events
// starting at the checkpoint's event offset, dispatches each event's credential into terms,
// persists the concatenated term stream, and atomically advances the checkpoint. It returns the
// number of terms newly added and the total term count after the sync.
//
// A parse or verification failure while handling any event is fatal for the whole call: the
// checkpoint is not advanced, so the same batch is retried on the next call. Errors from the
// indexer subscription itself are likewise fatal with no partial commit.
func (s *Service) SyncIndexer(ctx context.Context, size uint32) (uint32, uint32, error) {
	if size == 0 {
		return 0, 0, pkgerrors.NewArgumentf("size must be greater than 0")
	}

	start := time.Now()
	defer func() { s.metrics.SyncIndexerTime(time.Since(start)) }()

	cp, err := s.checkpoints.Read()
	if err != nil {
		return 0, 0, err
	}

	events, errs := s.indexer.Subscribe(ctx, collab.SubscribeRequest{
		SourceAddress: s.cfg.SourceAddress,
		SchemaIDs:     s.cfg.SchemaIDs,
		Offset:        cp.EventCount,
		Count:         size,
	})

	var (
		allTerms   []term.Term
		numEvents  uint32
		subscribed error
	)

collect:
	for {
		select {
		case event, ok := <-events:
			if !ok {
				break collect
			}

			terms, err := credential.IntoTerms(event.SchemaID, event.SchemaValue, event.Timestamp)
			if err != nil {
				log.BatchAborted(logger, cp.EventCount, err)

				return 0, 0, err
			}

			allTerms = append(allTerms, terms...)
			numEvents++
		case err, ok := <-errs:
			if ok && err != nil {
				subscribed = err
			}
		case <-ctx.Done():
			subscribed = ctx.Err()

			break collect
		}

		if subscribed != nil {
			break
		}
	}

	if subscribed != nil {
		log.BatchAborted(logger, cp.EventCount, subscribed)

		return 0, 0, pkgerrors.NewProtocolf("subscribe to indexer: %w", subscribed)
	}

	for i, t := range allTerms {
		if err := s.terms.Put(cp.TermCount+uint32(i), t); err != nil { //nolint:gosec
			return 0, 0, err
		}
	}

	newCheckpoint := Checkpoint{
		EventCount: cp.EventCount + numEvents,
		TermCount:  cp.TermCount + uint32(len(allTerms)), //nolint:gosec
	}

	if err := s.checkpoints.Write(newCheckpoint); err != nil {
		return 0, 0, err
	}

	log.CheckpointAdvanced(logger, newCheckpoint.EventCount)
	s.metrics.IncrementTermsEmitted(len(allTerms))
	s.metrics.IncrementCheckpointAdvanced()

	return uint32(len(allTerms)), newCheckpoint.TermCount, nil //nolint:gosec
}

// TermStream returns the terms with ids in [start, start+size), for streaming onward to the
// combiner. It fails InvalidArgument if size exceeds the maximum batch size.
func (s *Service) TermStream(start, size uint32) ([]term.Term, error) {
	if size > maxTermStreamSize {
		return nil, pkgerrors.NewArgumentf("size must not exceed %d", maxTermStreamSize)
	}

	terms := make([]term.Term, 0, size)

	for id := start; id < start+size; id++ {
		t, err := s.terms.Get(id)
		if pkgerrors.IsNotFound(err) {
			break
		}

		if err != nil {
			return nil, err
		}

		terms = append(terms, t)
	}

	return terms, nil
}
