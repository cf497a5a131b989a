/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package collab defines the external collaborator services the pipeline's core subsystems
// consume but do not own: the attestation Indexer the transformer and score computer pull
// events from, and the TrustMatrix/TrustVector/Compute EigenTrust service the score computer
// drives. These are modeled as small Go interfaces so the control loops can be exercised
// end-to-end against in-process fakes (pkg/collab/memindexer, pkg/collab/memtrust) without a
// real collaborator deployment, mirroring how the teacher hides its own external
// collaborators (CAS, blockchain witness) behind narrow interfaces with hand-written fakes.
package collab

import "context"

// IndexerEvent is a single attestation event read from the indexer's event log.
type IndexerEvent struct {
	ID          uint64
	SchemaID    string
	SchemaValue []byte
	Timestamp   uint64
}

// SubscribeRequest parameterizes an Indexer.Subscribe call.
type SubscribeRequest struct {
	SourceAddress string
	SchemaIDs     []string
	Offset        uint32
	Count         uint32
}

// Indexer streams attestation events in event-log order starting at a given offset.
type Indexer interface {
	// Subscribe streams up to req.Count events starting at req.Offset, filtered to
	// req.SchemaIDs (all schemas if empty), closing the event channel when the stream is
	// exhausted. A send on the error channel terminates the stream.
	Subscribe(ctx context.Context, req SubscribeRequest) (<-chan IndexerEvent, <-chan error)
}

// MatrixEntry is a single (x, y) cell of a local-trust matrix.
type MatrixEntry struct {
	X, Y  uint32
	Value float64
}

// TrustMatrix manages named sparse local-trust matrices on the external EigenTrust service.
type TrustMatrix interface {
	// Create creates the named matrix if it does not already exist.
	Create(ctx context.Context, id string) error
	// Flush resets every cell of the named matrix to zero.
	Flush(ctx context.Context, id string) error
	// Delete removes the named matrix.
	Delete(ctx context.Context, id string) error
	// Update applies entries to the named matrix, observed at timestamp.
	Update(ctx context.Context, id string, timestamp uint64, entries []MatrixEntry) error
	// Get returns every non-zero cell of the named matrix.
	Get(ctx context.Context, id string) ([]MatrixEntry, error)
}

// VectorEntry is a single index's value within a trust vector.
type VectorEntry struct {
	Index uint32
	Value float64
}

// TrustVector manages named sparse vectors (pre-trust, global trust) on the external
// EigenTrust service.
type TrustVector interface {
	// Create creates the named vector if it does not already exist.
	Create(ctx context.Context, id string) error
	// Flush resets every entry of the named vector to zero.
	Flush(ctx context.Context, id string) error
	// Delete removes the named vector.
	Delete(ctx context.Context, id string) error
	// Update overwrites entries of the named vector.
	Update(ctx context.Context, id string, entries []VectorEntry) error
	// Get returns every non-zero entry of the named vector.
	Get(ctx context.Context, id string) ([]VectorEntry, error)
}

// ComputeRequest parameterizes a Compute.BasicCompute call.
type ComputeRequest struct {
	LocalTrustID  string
	PreTrustID    string
	Alpha         float64
	Epsilon       float64
	GlobalTrustID string
	MaxIterations int
	Destinations  []uint32
}

// Compute runs the EigenTrust power-iteration algorithm on the external service, writing the
// result into the named global-trust vector.
type Compute interface {
	// BasicCompute runs the power iteration described by req, storing the resulting global
	// trust vector under req.GlobalTrustID.
	BasicCompute(ctx context.Context, req ComputeRequest) error
}
