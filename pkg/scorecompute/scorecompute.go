/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package scorecompute implements the score computer: the control loop that drains the
// combiner's local-trust journal and the indexer's snap-status event log into a single
// timestamp-ordered update stream, triggers an EigenTrust power iteration at each interval
// boundary it crosses, and emits a deterministic score archive of peer and artifact trust
// scores.
package scorecompute

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	tlog "github.com/trustbloc/logutil-go/pkg/log"

	"github.com/karma3labs/eigentrust-pipeline/internal/pkg/log"
	"github.com/karma3labs/eigentrust-pipeline/pkg/collab"
	"github.com/karma3labs/eigentrust-pipeline/pkg/combiner"
	"github.com/karma3labs/eigentrust-pipeline/pkg/credential"
	"github.com/karma3labs/eigentrust-pipeline/pkg/jcs"
	"github.com/karma3labs/eigentrust-pipeline/pkg/metrics"
	"github.com/karma3labs/eigentrust-pipeline/pkg/pkgerrors"
	"github.com/karma3labs/eigentrust-pipeline/pkg/term"
)

// heartbeatOffsetMillis is added to the latest timestamp seen in a fetch so the merged update
// stream always makes progress even when a tick observes no actual local-trust or status
// activity, letting a compute barrier still fire once the interval elapses.
const heartbeatOffsetMillis = 600_000

// Page sizes used when draining collaborator streams to completion within a single tick.
const (
	localTrustPageSize = 100_000
	indexerPageSize    = 100_000
	didMappingPageSize = 100
)

// Config parameterizes a Service's control loop for a single scoring domain.
type Config struct {
	Domain term.Domain

	LocalTrustID  string
	PreTrustID    string
	GlobalTrustID string

	Alpha         float64
	Epsilon       float64
	MaxIterations int

	// Interval is the tick-window width (Unix milliseconds) a compute barrier fires at;
	// a barrier fires once per crossed multiple of Interval, not once per update.
	Interval uint64

	// StatusSchemaID is the indexer schema id carrying snap endorse/dispute status
	// credentials for this domain. Empty disables artifact-score ingestion entirely.
	StatusSchemaID string

	IssuerID string
}

// Service implements the score computer control loop for one domain.
type Service struct {
	cfg Config

	indexer  collab.Indexer
	combiner *combiner.Service
	matrix   collab.TrustMatrix
	vector   collab.TrustVector
	compute  collab.Compute
	archive  ArchiveSink

	metrics *metrics.Metrics
	state   *domainState
}

var logger = tlog.New("score_computer") //nolint:gochecknoglobals

// New constructs a Service from its collaborators.
func New(
	cfg Config,
	indexer collab.Indexer,
	comb *combiner.Service,
	matrix collab.TrustMatrix,
	vector collab.TrustVector,
	compute collab.Compute,
	archive ArchiveSink,
) *Service {
	return &Service{
		cfg:      cfg,
		indexer:  indexer,
		combiner: comb,
		matrix:   matrix,
		vector:   vector,
		compute:  compute,
		archive:  archive,
		metrics:  metrics.Get(),
		state:    newDomainState(),
	}
}

// Init ensures this domain's local-trust matrix, pre-trust vector, and global-trust vector
// exist on the external EigenTrust collaborator.
func (s *Service) Init(ctx context.Context) error {
	if err := s.matrix.Create(ctx, s.cfg.LocalTrustID); err != nil {
		return pkgerrors.NewStoragef("create local trust matrix: %w", err)
	}

	if err := s.vector.Create(ctx, s.cfg.PreTrustID); err != nil {
		return pkgerrors.NewStoragef("create pre-trust vector: %w", err)
	}

	if err := s.vector.Create(ctx, s.cfg.GlobalTrustID); err != nil {
		return pkgerrors.NewStoragef("create global trust vector: %w", err)
	}

	return nil
}

// RunOnce drains one round of the merged local-trust/status-update stream: it fetches whatever
// is newly available from the combiner and indexer, merges it with any previously unconsumed
// updates, and replays the merged stream in non-decreasing timestamp order (ties broken
// local-trust-before-status), triggering a compute barrier each time an update's timestamp
// crosses an Interval boundary this domain has not yet computed.
func (s *Service) RunOnce(ctx context.Context) error {
	ltUpdates := cloneLT(s.state.pendingLT)
	if err := s.fetchLocalTrust(ctx, ltUpdates); err != nil {
		return pkgerrors.NewStoragef("fetch local trust: %w", err)
	}

	ssUpdates := cloneSS(s.state.pendingSS)
	if err := s.fetchSnapStatuses(ctx, ssUpdates); err != nil {
		return err
	}

	nextLTTS, nextLT, hasLT := popMinLT(ltUpdates)
	nextSSTS, nextSS, hasSS := popMinSS(ssUpdates)

	for hasLT || hasSS {
		useLT := chooseLT(hasLT, hasSS, nextLTTS, nextSSTS)

		var ts uint64
		if useLT {
			ts = nextLTTS
		} else {
			ts = nextSSTS
		}

		if ts >= s.state.lastUpdateTS {
			s.state.lastUpdateTS = ts

			tsWindow := (ts / s.cfg.Interval) * s.cfg.Interval
			if s.state.lastComputeTS < tsWindow {
				if err := s.computeBarrier(ctx, tsWindow); err != nil {
					return err
				}
			}

			if useLT {
				if len(nextLT) > 0 {
					if err := s.uploadLocalTrust(ctx, ts, nextLT); err != nil {
						return pkgerrors.NewStoragef("upload local trust: %w", err)
					}
				}
			} else {
				s.mergeSnapStatuses(nextSS)
				s.state.ssUpdateTS = ts
			}
		}

		if useLT {
			nextLTTS, nextLT, hasLT = popMinLT(ltUpdates)
		} else {
			nextSSTS, nextSS, hasSS = popMinSS(ssUpdates)
		}
	}

	s.state.pendingLT = ltUpdates
	s.state.pendingSS = ssUpdates

	return nil
}

// chooseLT decides whether the next merged update should come from the local-trust stream:
// local trust wins ties, matching the merge's LT-before-SS tie-break.
func chooseLT(hasLT, hasSS bool, ltTS, ssTS uint64) bool {
	switch {
	case !hasLT:
		return false
	case !hasSS:
		return true
	default:
		return ltTS <= ssTS
	}
}

// fetchLocalTrust drains the combiner's local-trust journal for both forms (trust at weight +1,
// distrust at weight -1) past each form's last-seen timestamp, bucketing deltas into updates by
// timestamp, and appends a heartbeat entry past the latest observed timestamp so the merge
// always has a sentinel to eventually cross an interval boundary on.
func (s *Service) fetchLocalTrust(ctx context.Context, updates map[uint64]ltBucket) error {
	forms := [...]struct {
		form   term.Form
		weight float64
		ts     *uint64
	}{
		{term.FormTrust, 1, &s.state.ltFetchTrustTS},
		{term.FormDistrust, -1, &s.state.ltFetchDistrustTS},
	}

	var (
		maxTS  uint64
		sawAny bool
	)

	for _, fw := range forms {
		cells, err := s.combiner.GetNewData(ctx, s.cfg.Domain, fw.form, localTrustPageSize)
		if err != nil {
			return err
		}

		for _, c := range cells {
			if c.Timestamp < *fw.ts {
				continue
			}

			*fw.ts = c.Timestamp

			if !sawAny || c.Timestamp > maxTS {
				maxTS = c.Timestamp
			}

			sawAny = true

			bucket, ok := updates[c.Timestamp]
			if !ok {
				bucket = make(ltBucket)
				updates[c.Timestamp] = bucket
			}

			bucket[cellKey{c.X, c.Y}] += float64(c.Value) * fw.weight
		}
	}

	if sawAny {
		heartbeatTS := maxTS + heartbeatOffsetMillis
		if _, ok := updates[heartbeatTS]; !ok {
			updates[heartbeatTS] = make(ltBucket)
		}
	}

	return nil
}

// fetchSnapStatuses drains the indexer's status-credential event log past the last-seen offset,
// bucketing each snap's issuer opinions by timestamp. It is a no-op when this domain has no
// status schema configured.
func (s *Service) fetchSnapStatuses(ctx context.Context, updates map[uint64]ssBucket) error {
	if s.cfg.StatusSchemaID == "" {
		return nil
	}

	var (
		maxTS  uint64
		sawAny bool
	)

	for {
		events, errs := s.indexer.Subscribe(ctx, collab.SubscribeRequest{
			SchemaIDs: []string{s.cfg.StatusSchemaID},
			Offset:    s.state.ssFetchOffset,
			Count:     indexerPageSize,
		})

		gotAny, streamErr := s.drainStatusEvents(events, errs, updates, &maxTS, &sawAny)
		if streamErr != nil {
			return streamErr
		}

		if !gotAny {
			break
		}
	}

	if sawAny {
		heartbeatTS := maxTS + heartbeatOffsetMillis
		if _, ok := updates[heartbeatTS]; !ok {
			updates[heartbeatTS] = make(ssBucket)
		}
	}

	return nil
}

// drainStatusEvents consumes events until the indexer closes the channel, then blocks on errs
// until it yields a terminal error or is closed. events must be drained to closure before errs is
// consulted: both channels close once the indexer is done, but only events is guaranteed to
// have no more buffered items waiting once its closure is observed.
func (s *Service) drainStatusEvents(
	events <-chan collab.IndexerEvent, errs <-chan error, updates map[uint64]ssBucket, maxTS *uint64, sawAny *bool,
) (bool, error) {
	var gotAny bool

	for event := range events {
		gotAny = true
		s.state.ssFetchOffset = uint32(event.ID + 1) //nolint:gosec

		if event.SchemaID != s.cfg.StatusSchemaID {
			continue
		}

		if !*sawAny || event.Timestamp > *maxTS {
			*maxTS = event.Timestamp
		}

		*sawAny = true

		snapID, issuerDID, value, err := parseSnapStatus(event.SchemaValue)
		if err != nil {
			log.CredentialSkipped(logger, credential.SchemaIDStatus, err)
			s.metrics.IncrementCredentialsSkipped()

			continue
		}

		bucket, ok := updates[event.Timestamp]
		if !ok {
			bucket = make(ssBucket)
			updates[event.Timestamp] = bucket
		}

		issuers, ok := bucket[snapID]
		if !ok {
			issuers = make(map[string]float64)
			bucket[snapID] = issuers
		}

		issuers[issuerDID] = value
	}

	if err := <-errs; err != nil {
		return gotAny, pkgerrors.NewProtocolf("subscribe to indexer: %w", err)
	}

	return gotAny, nil
}

// parseSnapStatus extracts a snap status credential's (snap id, issuer DID, opinion) triple.
// Unlike the transformer's ingestion path, the issuer is taken at face value without signature
// verification — the status credential's recovered signer is never cross-checked against
// Issuer, matching the reference's own unresolved verification gap (see pkg/credential's
// StatusCredential doc comment).
func parseSnapStatus(raw []byte) (snapID, issuerDID string, value float64, err error) {
	var c credential.StatusCredential

	if err := json.Unmarshal(raw, &c); err != nil {
		return "", "", 0, pkgerrors.NewParsef("unmarshal status credential: %w", err)
	}

	switch c.Subject.CurrentStatus {
	case credential.StatusEndorsed:
		value = 1
	case credential.StatusDisputed:
		value = 0
	default:
		return "", "", 0, pkgerrors.NewParsef("unrecognized status %d", c.Subject.CurrentStatus)
	}

	return c.Subject.ID, c.Issuer, value, nil
}

// uploadLocalTrust pushes a timestamp's accumulated local-trust deltas to the external
// EigenTrust collaborator.
func (s *Service) uploadLocalTrust(ctx context.Context, ts uint64, bucket ltBucket) error {
	entries := make([]collab.MatrixEntry, 0, len(bucket))
	for k, v := range bucket {
		entries = append(entries, collab.MatrixEntry{X: k.x, Y: k.y, Value: v})
	}

	return s.matrix.Update(ctx, s.cfg.LocalTrustID, ts, entries)
}

// mergeSnapStatuses folds a timestamp's status opinions into the running per-issuer opinion set,
// each issuer's latest opinion for a snap overwriting its previous one.
func (s *Service) mergeSnapStatuses(bucket ssBucket) {
	for snapID, issuers := range bucket {
		target, ok := s.state.snapStatuses[snapID]
		if !ok {
			target = make(map[string]float64)
			s.state.snapStatuses[snapID] = target
		}

		for issuerDID, v := range issuers {
			target[issuerDID] = v
		}
	}
}

// computeBarrier runs the EigenTrust power iteration, refreshes the peer DID mapping, recomputes
// artifact scores, and emits the window's score archive. A compute failure is not fatal: the
// window's archive is still emitted, scored against the previous window's global trust vector.
func (s *Service) computeBarrier(ctx context.Context, tsWindow uint64) error {
	start := time.Now()
	defer func() { s.metrics.ComputeBarrierTime(time.Since(start)) }()

	log.ComputeBarrierTriggered(logger, tsWindow)

	if err := s.compute.BasicCompute(ctx, collab.ComputeRequest{
		LocalTrustID:  s.cfg.LocalTrustID,
		PreTrustID:    s.cfg.PreTrustID,
		Alpha:         s.cfg.Alpha,
		Epsilon:       s.cfg.Epsilon,
		GlobalTrustID: s.cfg.GlobalTrustID,
		MaxIterations: s.cfg.MaxIterations,
	}); err != nil {
		log.ComputeFailed(logger, err)
	} else {
		entries, err := s.vector.Get(ctx, s.cfg.GlobalTrustID)
		if err != nil {
			return pkgerrors.NewStoragef("fetch global trust: %w", err)
		}

		gt := make(map[uint32]float64, len(entries))
		for _, e := range entries {
			gt[e.Index] = e.Value
		}

		s.state.gt = gt
	}

	if err := s.refreshDidMapping(ctx); err != nil {
		return err
	}

	archiveData, peerCount, err := s.buildArchive(tsWindow)
	if err != nil {
		return err
	}

	archiveStart := time.Now()
	if err := s.archive.Write(ctx, s.cfg.Domain, tsWindow, archiveData); err != nil {
		return pkgerrors.NewStoragef("write archive: %w", err)
	}

	s.metrics.ArchiveWriteTime(time.Since(archiveStart))
	log.ArchiveWritten(logger, "", tsWindow)

	s.state.lastComputeTS = tsWindow
	s.metrics.IncrementPeersScored(peerCount)

	return nil
}

// refreshDidMapping rebuilds the peer index <-> DID mappings from the combiner's full mapping
// table, paging through it until exhausted.
func (s *Service) refreshDidMapping(ctx context.Context) error {
	s.state.peerIDToDID = make(map[uint32]string)
	s.state.peerDIDToID = make(map[string]uint32)

	var start uint32

	for {
		entries, err := s.combiner.GetDidMapping(ctx, start, didMappingPageSize)
		if err != nil {
			return pkgerrors.NewStoragef("fetch did mapping: %w", err)
		}

		if len(entries) == 0 {
			break
		}

		for _, e := range entries {
			s.state.peerIDToDID[e.Index] = e.DID
			s.state.peerDIDToID[e.DID] = e.Index

			if e.Index+1 > start {
				start = e.Index + 1
			}
		}

		if len(entries) < didMappingPageSize {
			break
		}
	}

	return nil
}

// computeSnapScores recomputes every artifact's score from its accumulated opinions and the
// current global trust vector. Matching the reference, an issuer's opinion overwrites rather
// than accumulates into the running value — only the confidence (summed issuer weight) actually
// accumulates, so a score reflects its last positively-weighted issuer's opinion divided by the
// total weight observed, not a true weighted average. This is a known quirk of the scoring
// core, preserved rather than silently corrected.
func (s *Service) computeSnapScores() {
	s.state.snapScores = make(map[string]snapScore, len(s.state.snapStatuses))

	for snapID, opinions := range s.state.snapStatuses {
		var sc snapScore

		for issuerDID, opinion := range opinions {
			peerIdx, ok := s.state.peerDIDToID[issuerDID]
			if !ok {
				log.UnknownIssuer(logger, issuerDID)

				continue
			}

			weight := s.state.gt[peerIdx]
			if weight > 0 {
				sc.value = opinion * weight
				sc.confidence += weight
			}
		}

		if sc.confidence != 0 {
			sc.value /= sc.confidence
		}

		s.state.snapScores[snapID] = sc
	}
}

// buildArchive assembles the window's deterministic zip archive and returns it along with the
// number of peers scored.
func (s *Service) buildArchive(tsWindow uint64) ([]byte, int, error) {
	indices := make([]uint32, 0, len(s.state.gt))
	for idx := range s.state.gt {
		indices = append(indices, idx)
	}

	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })

	peerLines := make([][]byte, 0, len(indices))

	for _, idx := range indices {
		did, ok := s.state.peerIDToDID[idx]
		if !ok {
			continue
		}

		line, err := s.marshalScoreCredential(tsWindow, did, ScoreTypeEigenTrust, s.state.gt[idx], nil)
		if err != nil {
			return nil, 0, err
		}

		peerLines = append(peerLines, line)
	}

	s.computeSnapScores()

	snapIDs := make([]string, 0, len(s.state.snapScores))
	for id := range s.state.snapScores {
		snapIDs = append(snapIDs, id)
	}

	sort.Strings(snapIDs)

	snapLines := make([][]byte, 0, len(snapIDs))

	for _, id := range snapIDs {
		sc := s.state.snapScores[id]
		confidence := sc.confidence

		line, err := s.marshalScoreCredential(tsWindow, id, ScoreTypeIssuerTrustWeightedAverage, sc.value, &confidence)
		if err != nil {
			return nil, 0, err
		}

		snapLines = append(snapLines, line)
	}

	manifest := buildManifest(s.cfg.IssuerID, tsWindow)

	data, err := buildArchiveZip(peerLines, snapLines, manifest)
	if err != nil {
		return nil, 0, err
	}

	return data, len(peerLines), nil
}

func (s *Service) marshalScoreCredential(
	tsWindow uint64, subjectID, scoreType string, value float64, confidence *float64,
) ([]byte, error) {
	vc, err := buildTrustScoreCredential(s.cfg.IssuerID, tsWindow, subjectID, scoreType, value, confidence)
	if err != nil {
		return nil, err
	}

	return jcs.MarshalCanonical(vc)
}
