/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package memindexer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/karma3labs/eigentrust-pipeline/pkg/collab"
)

func drain(t *testing.T, events <-chan collab.IndexerEvent, errs <-chan error) []collab.IndexerEvent {
	t.Helper()

	var out []collab.IndexerEvent

	for e := range events {
		out = append(out, e)
	}

	require.NoError(t, <-errs)

	return out
}

func TestSubscribeReturnsRequestedWindow(t *testing.T) {
	idx := New()
	idx.Append(
		collab.IndexerEvent{SchemaID: "trust"},
		collab.IndexerEvent{SchemaID: "status"},
		collab.IndexerEvent{SchemaID: "trust"},
	)

	events, errs := idx.Subscribe(context.Background(), collab.SubscribeRequest{Offset: 1, Count: 5})
	out := drain(t, events, errs)

	require.Len(t, out, 2)
	require.EqualValues(t, 1, out[0].ID)
	require.EqualValues(t, 2, out[1].ID)
}

func TestSubscribeBeyondLogIsEmpty(t *testing.T) {
	idx := New()
	idx.Append(collab.IndexerEvent{SchemaID: "trust"})

	events, errs := idx.Subscribe(context.Background(), collab.SubscribeRequest{Offset: 10, Count: 5})
	out := drain(t, events, errs)

	require.Empty(t, out)
}

func TestSubscribeIsIdempotentForSameWindow(t *testing.T) {
	idx := New()
	idx.Append(collab.IndexerEvent{SchemaID: "trust"}, collab.IndexerEvent{SchemaID: "trust"})

	events, errs := idx.Subscribe(context.Background(), collab.SubscribeRequest{Offset: 0, Count: 2})
	first := drain(t, events, errs)

	events, errs = idx.Subscribe(context.Background(), collab.SubscribeRequest{Offset: 0, Count: 2})
	second := drain(t, events, errs)

	require.Equal(t, first, second)
}
