/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package memtrust

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/karma3labs/eigentrust-pipeline/pkg/collab"
)

func TestMatrixCreateUpdateGet(t *testing.T) {
	ctx := context.Background()
	svc := New()
	m := svc.Matrix()

	require.NoError(t, m.Create(ctx, "lt"))
	require.NoError(t, m.Update(ctx, "lt", 100, []collab.MatrixEntry{{X: 0, Y: 1, Value: 0.5}}))

	entries, err := m.Get(ctx, "lt")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.InDelta(t, 0.5, entries[0].Value, 0.0001)
}

func TestMatrixUpdateOnMissingIDFails(t *testing.T) {
	svc := New()
	err := svc.Matrix().Update(context.Background(), "missing", 0, nil)
	require.Error(t, err)
}

func TestMatrixFlushClears(t *testing.T) {
	ctx := context.Background()
	svc := New()
	m := svc.Matrix()

	require.NoError(t, m.Create(ctx, "lt"))
	require.NoError(t, m.Update(ctx, "lt", 0, []collab.MatrixEntry{{X: 0, Y: 0, Value: 1}}))
	require.NoError(t, m.Flush(ctx, "lt"))

	entries, err := m.Get(ctx, "lt")
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestVectorCreateUpdateGet(t *testing.T) {
	ctx := context.Background()
	svc := New()
	v := svc.Vector()

	require.NoError(t, v.Create(ctx, "pt"))
	require.NoError(t, v.Update(ctx, "pt", []collab.VectorEntry{{Index: 2, Value: 1}}))

	entries, err := v.Get(ctx, "pt")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.EqualValues(t, 2, entries[0].Index)
}

func TestBasicComputeConvergesOnStarTopology(t *testing.T) {
	ctx := context.Background()
	svc := New()

	m, v, c := svc.Matrix(), svc.Vector(), svc.Compute()

	require.NoError(t, m.Create(ctx, "lt"))
	require.NoError(t, v.Create(ctx, "pt"))
	require.NoError(t, v.Create(ctx, "gt"))

	// Peer 0 trusts peer 1 fully; peer 1 has no outgoing trust. Pre-trust favors peer 0.
	require.NoError(t, m.Update(ctx, "lt", 0, []collab.MatrixEntry{{X: 0, Y: 1, Value: 1}}))
	require.NoError(t, v.Update(ctx, "pt", []collab.VectorEntry{{Index: 0, Value: 1}}))

	err := c.BasicCompute(ctx, collab.ComputeRequest{
		LocalTrustID:  "lt",
		PreTrustID:    "pt",
		GlobalTrustID: "gt",
		Alpha:         0.1,
		Epsilon:       1e-9,
		MaxIterations: 50,
	})
	require.NoError(t, err)

	entries, err := v.Get(ctx, "gt")
	require.NoError(t, err)

	scores := make(map[uint32]float64, len(entries))
	for _, e := range entries {
		scores[e.Index] = e.Value
	}

	// Peer 1 receives peer 0's entire trust mass each iteration and so ends up with
	// strictly more global trust than peer 0, which only keeps the alpha-weighted share.
	require.Greater(t, scores[1], scores[0])
}

func TestBasicComputeMissingMatrixFails(t *testing.T) {
	svc := New()
	ctx := context.Background()

	require.NoError(t, svc.Vector().Create(ctx, "pt"))

	err := svc.Compute().BasicCompute(ctx, collab.ComputeRequest{LocalTrustID: "missing", PreTrustID: "pt", GlobalTrustID: "gt"})
	require.Error(t, err)
}
