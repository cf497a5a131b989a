/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package combiner_test

import (
	"context"
	"testing"

	"github.com/hyperledger/aries-framework-go/component/storageutil/mem"
	"github.com/stretchr/testify/require"

	"github.com/karma3labs/eigentrust-pipeline/pkg/combiner"
	"github.com/karma3labs/eigentrust-pipeline/pkg/combiner/store"
	"github.com/karma3labs/eigentrust-pipeline/pkg/term"
)

func newService(t *testing.T) *combiner.Service {
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

func TestSyncTransformerAssignsIndicesAndAccumulatesCells(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	terms := []term.Term{
		term.New("did:pkh:eip155:1:0xaaa", "did:pkh:eip155:1:0xbbb", 10, term.DomainDevelopment, term.FormTrust, 1_000),
		term.New("did:pkh:eip155:1:0xaaa", "did:pkh:eip155:1:0xbbb", 5, term.DomainDevelopment, term.FormTrust, 2_000),
	}

	require.NoError(t, svc.SyncTransformer(ctx, terms))

	mappings, err := svc.GetDidMapping(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, mappings, 2)

	cells, err := svc.GetHistoricData(ctx, term.DomainDevelopment, term.FormTrust, 0, 1, 0, 1)
	require.NoError(t, err)
	require.Len(t, cells, 1)
	require.InDelta(t, float32(15), cells[0].Value, 0.0001)

	newData, err := svc.GetNewData(ctx, term.DomainDevelopment, term.FormTrust, 10)
	require.NoError(t, err)
	require.Len(t, newData, 1)
	require.Equal(t, uint64(2_000), newData[0].Timestamp)
}

func TestSyncTransformerReusesIndexForSamePeer(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	terms := []term.Term{
		term.New("did:pkh:eip155:1:0xaaa", "did:pkh:eip155:1:0xbbb", 10, term.DomainDevelopment, term.FormTrust, 1_000),
		term.New("did:pkh:eip155:1:0xbbb", "did:pkh:eip155:1:0xaaa", 3, term.DomainSecurity, term.FormDistrust, 1_500),
	}

	require.NoError(t, svc.SyncTransformer(ctx, terms))

	mappings, err := svc.GetDidMapping(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, mappings, 2)
}

func TestGetHistoricDataRejectsEmptyRange(t *testing.T) {
	svc := newService(t)

	_, err := svc.GetHistoricData(context.Background(), term.DomainDevelopment, term.FormTrust, 5, 5, 1, 1)
	require.Error(t, err)
}

func TestGetNewDataDoesNotDeleteDrainedEntries(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	terms := []term.Term{
		term.New("did:pkh:eip155:1:0xaaa", "did:pkh:eip155:1:0xbbb", 10, term.DomainDevelopment, term.FormTrust, 1_000),
	}
	require.NoError(t, svc.SyncTransformer(ctx, terms))

	first, err := svc.GetNewData(ctx, term.DomainDevelopment, term.FormTrust, 10)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := svc.GetNewData(ctx, term.DomainDevelopment, term.FormTrust, 10)
	require.NoError(t, err)
	require.Len(t, second, 1)
}
