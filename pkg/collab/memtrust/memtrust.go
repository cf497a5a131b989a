/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package memtrust is an in-process fake of the pkg/collab TrustMatrix, TrustVector, and
// Compute collaborators, backed by in-memory sparse maps and a real (if unoptimized) basic
// EigenTrust power iteration, sufficient to drive the score computer's control loop
// end-to-end in tests without a deployed EigenTrust service.
package memtrust

import (
	"context"
	"sync"

	"github.com/karma3labs/eigentrust-pipeline/pkg/collab"
	"github.com/karma3labs/eigentrust-pipeline/pkg/pkgerrors"
)

type cellIndex struct{ x, y uint32 }

// state is the shared in-memory backing for a Service's matrices and vectors.
type state struct {
	mu       sync.Mutex
	matrices map[string]map[cellIndex]float64
	vectors  map[string]map[uint32]float64
}

// Service is an in-memory fake of the EigenTrust collaborator, exposing its three facets
// (TrustMatrix, TrustVector, Compute) as separate views over one shared state, since the two
// collab interfaces share method names (Create, Flush, Delete, Update, Get) with incompatible
// signatures and so cannot both be implemented by a single Go type.
type Service struct {
	st *state
}

// New returns an empty Service.
func New() *Service {
	return &Service{st: &state{
		matrices: make(map[string]map[cellIndex]float64),
		vectors:  make(map[string]map[uint32]float64),
	}}
}

// Matrix returns the collab.TrustMatrix view of this Service.
func (s *Service) Matrix() collab.TrustMatrix { return matrixView{s.st} }

// Vector returns the collab.TrustVector view of this Service.
func (s *Service) Vector() collab.TrustVector { return vectorView{s.st} }

// Compute returns the collab.Compute view of this Service.
func (s *Service) Compute() collab.Compute { return computeView{s.st} }

type matrixView struct{ st *state }

// Create implements collab.TrustMatrix.
func (v matrixView) Create(_ context.Context, id string) error {
	v.st.mu.Lock()
	defer v.st.mu.Unlock()

	if _, ok := v.st.matrices[id]; !ok {
		v.st.matrices[id] = make(map[cellIndex]float64)
	}

	return nil
}

// Flush implements collab.TrustMatrix.
func (v matrixView) Flush(_ context.Context, id string) error {
	v.st.mu.Lock()
	defer v.st.mu.Unlock()

	v.st.matrices[id] = make(map[cellIndex]float64)

	return nil
}

// Delete implements collab.TrustMatrix.
func (v matrixView) Delete(_ context.Context, id string) error {
	v.st.mu.Lock()
	defer v.st.mu.Unlock()

	delete(v.st.matrices, id)

	return nil
}

// Update implements collab.TrustMatrix: each entry overwrites the corresponding cell with its
// current value, since the historic/new-data reads the score computer feeds in already report
// the combiner's running sum for that cell rather than an incremental delta.
func (v matrixView) Update(_ context.Context, id string, _ uint64, entries []collab.MatrixEntry) error {
	v.st.mu.Lock()
	defer v.st.mu.Unlock()

	m, ok := v.st.matrices[id]
	if !ok {
		return pkgerrors.NewNotFoundf("trust matrix %q", id)
	}

	for _, e := range entries {
		if e.Value == 0 {
			delete(m, cellIndex{e.X, e.Y})

			continue
		}

		m[cellIndex{e.X, e.Y}] = e.Value
	}

	return nil
}

// Get implements collab.TrustMatrix.
func (v matrixView) Get(_ context.Context, id string) ([]collab.MatrixEntry, error) {
	v.st.mu.Lock()
	defer v.st.mu.Unlock()

	m, ok := v.st.matrices[id]
	if !ok {
		return nil, pkgerrors.NewNotFoundf("trust matrix %q", id)
	}

	entries := make([]collab.MatrixEntry, 0, len(m))
	for k, val := range m {
		entries = append(entries, collab.MatrixEntry{X: k.x, Y: k.y, Value: val})
	}

	return entries, nil
}

type vectorView struct{ st *state }

// Create implements collab.TrustVector.
func (v vectorView) Create(_ context.Context, id string) error {
	v.st.mu.Lock()
	defer v.st.mu.Unlock()

	if _, ok := v.st.vectors[id]; !ok {
		v.st.vectors[id] = make(map[uint32]float64)
	}

	return nil
}

// Flush implements collab.TrustVector.
func (v vectorView) Flush(_ context.Context, id string) error {
	v.st.mu.Lock()
	defer v.st.mu.Unlock()

	v.st.vectors[id] = make(map[uint32]float64)

	return nil
}

// Delete implements collab.TrustVector.
func (v vectorView) Delete(_ context.Context, id string) error {
	v.st.mu.Lock()
	defer v.st.mu.Unlock()

	delete(v.st.vectors, id)

	return nil
}

// Update implements collab.TrustVector: entries overwrite the named vector's values.
func (v vectorView) Update(_ context.Context, id string, entries []collab.VectorEntry) error {
	v.st.mu.Lock()
	defer v.st.mu.Unlock()

	vec, ok := v.st.vectors[id]
	if !ok {
		return pkgerrors.NewNotFoundf("trust vector %q", id)
	}

	for _, e := range entries {
		if e.Value == 0 {
			delete(vec, e.Index)

			continue
		}

		vec[e.Index] = e.Value
	}

	return nil
}

// Get implements collab.TrustVector.
func (v vectorView) Get(_ context.Context, id string) ([]collab.VectorEntry, error) {
	v.st.mu.Lock()
	defer v.st.mu.Unlock()

	vec, ok := v.st.vectors[id]
	if !ok {
		return nil, pkgerrors.NewNotFoundf("trust vector %q", id)
	}

	entries := make([]collab.VectorEntry, 0, len(vec))
	for idx, val := range vec {
		entries = append(entries, collab.VectorEntry{Index: idx, Value: val})
	}

	return entries, nil
}

type computeView struct{ st *state }

const defaultMaxIterations = 20

// BasicCompute implements collab.Compute: a standard EigenTrust power iteration,
//
//	gt_(k+1) = (1 - alpha) * C^T * gt_k + alpha * p
//
// where C is the row-normalized local-trust matrix (a peer with no outgoing trust keeps its
// own mass, as if it trusted only itself) and p is the normalized pre-trust vector, run until successive
// iterations differ by less than epsilon (L1 norm) or max_iterations is reached.
func (c computeView) BasicCompute(_ context.Context, req collab.ComputeRequest) error {
	c.st.mu.Lock()

	lt, ok := c.st.matrices[req.LocalTrustID]
	if !ok {
		c.st.mu.Unlock()

		return pkgerrors.NewNotFoundf("local trust matrix %q", req.LocalTrustID)
	}

	pt, ok := c.st.vectors[req.PreTrustID]
	if !ok {
		c.st.mu.Unlock()

		return pkgerrors.NewNotFoundf("pre-trust vector %q", req.PreTrustID)
	}

	ltCopy := make(map[cellIndex]float64, len(lt))
	for k, v := range lt {
		ltCopy[k] = v
	}

	ptCopy := make(map[uint32]float64, len(pt))
	for k, v := range pt {
		ptCopy[k] = v
	}

	c.st.mu.Unlock()

	n := dimension(ltCopy, ptCopy, req.Destinations)
	if n == 0 {
		return c.writeGlobalTrust(req.GlobalTrustID, nil)
	}

	p := normalizedPreTrust(ptCopy, n)
	rowOut := make([]float64, n)

	for k, v := range ltCopy {
		if int(k.x) < n {
			rowOut[k.x] += v
		}
	}

	maxIter := req.MaxIterations
	if maxIter <= 0 {
		maxIter = defaultMaxIterations
	}

	gt := append([]float64(nil), p...)

	for iter := 0; iter < maxIter; iter++ {
		next := make([]float64, n)

		// Peers with no outgoing trust keep their own probability mass instead of
		// losing it from the system.
		for i, out := range rowOut {
			if out <= 0 {
				next[i] += gt[i]
			}
		}

		for k, v := range ltCopy {
			x, y := int(k.x), int(k.y)
			if x >= n || y >= n || rowOut[x] <= 0 {
				continue
			}

			next[y] += (v / rowOut[x]) * gt[x]
		}

		for i := range next {
			next[i] = (1-req.Alpha)*next[i] + req.Alpha*p[i]
		}

		done := converged(gt, next, req.Epsilon)
		gt = next

		if done {
			break
		}
	}

	entries := make([]collab.VectorEntry, 0, n)

	for i, v := range gt {
		if len(req.Destinations) > 0 && !contains(req.Destinations, uint32(i)) { //nolint:gosec
			continue
		}

		if v != 0 {
			entries = append(entries, collab.VectorEntry{Index: uint32(i), Value: v}) //nolint:gosec
		}
	}

	return c.writeGlobalTrust(req.GlobalTrustID, entries)
}

func (c computeView) writeGlobalTrust(id string, entries []collab.VectorEntry) error {
	c.st.mu.Lock()
	defer c.st.mu.Unlock()

	v := make(map[uint32]float64, len(entries))
	for _, e := range entries {
		v[e.Index] = e.Value
	}

	c.st.vectors[id] = v

	return nil
}

func dimension(lt map[cellIndex]float64, pt map[uint32]float64, destinations []uint32) int {
	max := -1

	for k := range lt {
		if int(k.x) > max {
			max = int(k.x)
		}

		if int(k.y) > max {
			max = int(k.y)
		}
	}

	for idx := range pt {
		if int(idx) > max {
			max = int(idx)
		}
	}

	for _, idx := range destinations {
		if int(idx) > max {
			max = int(idx)
		}
	}

	return max + 1
}

func normalizedPreTrust(pt map[uint32]float64, n int) []float64 {
	p := make([]float64, n)

	var sum float64

	for idx, v := range pt {
		if int(idx) < n {
			p[idx] = v
			sum += v
		}
	}

	if sum <= 0 {
		uniform := 1 / float64(n)
		for i := range p {
			p[i] = uniform
		}

		return p
	}

	for i := range p {
		p[i] /= sum
	}

	return p
}

func converged(prev, next []float64, epsilon float64) bool {
	if epsilon <= 0 {
		return false
	}

	var delta float64

	for i := range prev {
		d := next[i] - prev[i]
		if d < 0 {
			d = -d
		}

		delta += d
	}

	return delta < epsilon
}

func contains(s []uint32, v uint32) bool {
	for _, e := range s {
		if e == v {
			return true
		}
	}

	return false
}
