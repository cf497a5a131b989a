/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package scorecompute_test

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"sync"
	"testing"

	"github.com/hyperledger/aries-framework-go/component/storageutil/mem"
	"github.com/stretchr/testify/require"

	"github.com/karma3labs/eigentrust-pipeline/pkg/collab"
	"github.com/karma3labs/eigentrust-pipeline/pkg/collab/memindexer"
	"github.com/karma3labs/eigentrust-pipeline/pkg/collab/memtrust"
	"github.com/karma3labs/eigentrust-pipeline/pkg/combiner"
	"github.com/karma3labs/eigentrust-pipeline/pkg/combiner/store"
	"github.com/karma3labs/eigentrust-pipeline/pkg/credential"
	"github.com/karma3labs/eigentrust-pipeline/pkg/scorecompute"
	"github.com/karma3labs/eigentrust-pipeline/pkg/term"
)

const statusSchemaID = credential.SchemaIDStatus

// captureSink is a test ArchiveSink recording every archive written, keyed by window.
type captureSink struct {
	mu   sync.Mutex
	data map[uint64][]byte
}

func newCaptureSink() *captureSink {
	return &captureSink{data: make(map[uint64][]byte)}
}

func (s *captureSink) Write(_ context.Context, _ term.Domain, window uint64, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[window] = data

	return nil
}

func (s *captureSink) get(window uint64) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.data[window]

	return data, ok
}

func newCombinerService(t *testing.T) *combiner.Service {
	t.Helper()

	p := mem.NewProvider()

	index, err := store.NewIndexManager(p)
	require.NoError(t, err)

	mapping, err := store.NewMappingManager(p)
	require.NoError(t, err)

	item, err := store.NewItemManager(p)
	require.NoError(t, err)

	update, err := store.NewUpdateManager(p)
	require.NoError(t, err)

	checkpoint, err := store.NewCheckpointManager(p)
	require.NoError(t, err)

	return combiner.New(index, mapping, item, update, checkpoint)
}

// zipEntry reads a single named entry out of a zip archive's raw bytes.
func zipEntry(t *testing.T, data []byte, name string) []byte {
	t.Helper()

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	for _, f := range zr.File {
		if f.Name != name {
			continue
		}

		rc, err := f.Open()
		require.NoError(t, err)

		defer rc.Close()

		content, err := io.ReadAll(rc)
		require.NoError(t, err)

		return content
	}

	t.Fatalf("entry %s not found in archive", name)

	return nil
}

func statusCredentialJSON(t *testing.T, issuerDID, snapID string, status credential.Status) []byte {
	t.Helper()

	c := credential.StatusCredential{
		Issuer: issuerDID,
		Subject: credential.StatusCredentialSubject{
			ID:            snapID,
			CurrentStatus: status,
		},
	}

	raw, err := json.Marshal(c)
	require.NoError(t, err)

	return raw
}

func TestRunOnceComputesBarrierAndEmitsPeerScores(t *testing.T) {
	ctx := context.Background()

	voucher := "did:pkh:eip155:1:0xaaa"
	subject := "did:pkh:eip155:1:0xbbb"

	comb := newCombinerService(t)
	require.NoError(t, comb.SyncTransformer(ctx, []term.Term{
		term.New(voucher, subject, 10, term.DomainDevelopment, term.FormTrust, 1_500),
	}))

	trust := memtrust.New()
	idx := memindexer.New()
	sink := newCaptureSink()

	cfg := scorecompute.Config{
		Domain:         term.DomainDevelopment,
		LocalTrustID:   "lt-development",
		PreTrustID:     "pt-development",
		GlobalTrustID:  "gt-development",
		Alpha:          0.5,
		Epsilon:        1e-6,
		MaxIterations:  20,
		Interval:       1_000,
		StatusSchemaID: statusSchemaID,
		IssuerID:       "did:pkh:eip155:1:0xscorer",
	}

	svc := scorecompute.New(cfg, idx, comb, trust.Matrix(), trust.Vector(), trust.Compute(), sink)
	require.NoError(t, svc.Init(ctx))

	// Seed the voucher as pre-trusted so the very first compute barrier (which fires on the
	// boundary-crossing update, before that same update's local trust is itself uploaded) has
	// a nonzero dimension to compute over.
	require.NoError(t, trust.Vector().Update(ctx, cfg.PreTrustID, []collab.VectorEntry{{Index: 0, Value: 1}}))

	require.NoError(t, svc.RunOnce(ctx))

	data, ok := sink.get(1_000)
	require.True(t, ok, "expected a compute barrier to have fired at window 1000")

	peerLines := zipEntry(t, data, "peer_scores.jsonl")
	require.NotEmpty(t, peerLines)

	manifestRaw := zipEntry(t, data, "MANIFEST.json")

	var manifest map[string]interface{}
	require.NoError(t, json.Unmarshal(manifestRaw, &manifest))
	require.Equal(t, cfg.IssuerID, manifest["issuer"])
}

func TestRunOnceScoresSnapFromEndorsingIssuer(t *testing.T) {
	ctx := context.Background()

	issuer := "did:pkh:eip155:1:0xaaa"
	peer := "did:pkh:eip155:1:0xbbb"
	snapID := "snap://registry/example-package@1.0.0"

	comb := newCombinerService(t)
	// Give the issuer positive global trust by vouching for peer; the issuer itself is seeded
	// as pre-trusted at index 0 so the power iteration assigns it nonzero weight.
	require.NoError(t, comb.SyncTransformer(ctx, []term.Term{
		term.New(issuer, peer, 10, term.DomainSecurity, term.FormTrust, 1_100),
	}))

	trust := memtrust.New()
	idx := memindexer.New()
	sink := newCaptureSink()

	cfg := scorecompute.Config{
		Domain:         term.DomainSecurity,
		LocalTrustID:   "lt-security",
		PreTrustID:     "pt-security",
		GlobalTrustID:  "gt-security",
		Alpha:          0.5,
		Epsilon:        1e-6,
		MaxIterations:  20,
		Interval:       1_000,
		StatusSchemaID: statusSchemaID,
		IssuerID:       "did:pkh:eip155:1:0xscorer",
	}

	svc := scorecompute.New(cfg, idx, comb, trust.Matrix(), trust.Vector(), trust.Compute(), sink)
	require.NoError(t, svc.Init(ctx))

	require.NoError(t, trust.Vector().Update(ctx, cfg.PreTrustID, []collab.VectorEntry{{Index: 0, Value: 1}}))

	idx.Append(collab.IndexerEvent{
		SchemaID:    statusSchemaID,
		SchemaValue: statusCredentialJSON(t, issuer, snapID, credential.StatusEndorsed),
		Timestamp:   1_100,
	})

	require.NoError(t, svc.RunOnce(ctx))

	data, ok := sink.get(601_000)
	require.True(t, ok)

	snapLines := zipEntry(t, data, "snap_scores.jsonl")
	require.NotEmpty(t, snapLines)
}

func TestRunOnceSkipsOpinionFromUnknownIssuer(t *testing.T) {
	ctx := context.Background()

	comb := newCombinerService(t)

	trust := memtrust.New()
	idx := memindexer.New()
	sink := newCaptureSink()

	cfg := scorecompute.Config{
		Domain:         term.DomainSecurity,
		LocalTrustID:   "lt-security",
		PreTrustID:     "pt-security",
		GlobalTrustID:  "gt-security",
		Alpha:          0.5,
		Epsilon:        1e-6,
		MaxIterations:  20,
		Interval:       1_000,
		StatusSchemaID: statusSchemaID,
		IssuerID:       "did:pkh:eip155:1:0xscorer",
	}

	svc := scorecompute.New(cfg, idx, comb, trust.Matrix(), trust.Vector(), trust.Compute(), sink)
	require.NoError(t, svc.Init(ctx))

	idx.Append(collab.IndexerEvent{
		SchemaID:    statusSchemaID,
		SchemaValue: statusCredentialJSON(t, "did:pkh:eip155:1:0xunknown", "snap://registry/example@1.0.0", credential.StatusEndorsed),
		Timestamp:   1_100,
	})

	require.NoError(t, svc.RunOnce(ctx))

	data, ok := sink.get(601_000)
	require.True(t, ok)

	snapLines := zipEntry(t, data, "snap_scores.jsonl")
	require.NotEmpty(t, snapLines)

	var lines [][]byte
	for _, l := range bytes.Split(bytes.TrimRight(snapLines, "\n"), []byte("\n")) {
		if len(l) > 0 {
			lines = append(lines, l)
		}
	}

	require.Len(t, lines, 1)

	var vc struct {
		Subject struct {
			TrustScore struct {
				Value      float64  `json:"value"`
				Confidence *float64 `json:"confidence"`
			} `json:"trustScore"`
		} `json:"credentialSubject"`
	}

	require.NoError(t, json.Unmarshal(lines[0], &vc))
	// An opinion from an issuer with no known peer index contributes no weight, so the snap
	// ends up with zero confidence and a zero value rather than being omitted.
	require.NotNil(t, vc.Subject.TrustScore.Confidence)
	require.Zero(t, *vc.Subject.TrustScore.Confidence)
	require.Zero(t, vc.Subject.TrustScore.Value)
}

func TestRunOnceIsIdempotentWithNoNewData(t *testing.T) {
	ctx := context.Background()

	comb := newCombinerService(t)
	trust := memtrust.New()
	idx := memindexer.New()
	sink := newCaptureSink()

	cfg := scorecompute.Config{
		Domain:        term.DomainDevelopment,
		LocalTrustID:  "lt-development",
		PreTrustID:    "pt-development",
		GlobalTrustID: "gt-development",
		Alpha:         0.5,
		Epsilon:       1e-6,
		MaxIterations: 20,
		Interval:      1_000,
		IssuerID:      "did:pkh:eip155:1:0xscorer",
	}

	svc := scorecompute.New(cfg, idx, comb, trust.Matrix(), trust.Vector(), trust.Compute(), sink)
	require.NoError(t, svc.Init(ctx))

	require.NoError(t, svc.RunOnce(ctx))
	require.Empty(t, sink.data, "no local trust or status activity should never cross an interval boundary")

	require.NoError(t, svc.RunOnce(ctx))
	require.Empty(t, sink.data)
}
