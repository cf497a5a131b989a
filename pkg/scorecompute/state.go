/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package scorecompute

// cellKey identifies a single local-trust matrix cell pending upload.
type cellKey struct{ x, y uint32 }

// ltBucket accumulates local-trust deltas observed at a single timestamp.
type ltBucket map[cellKey]float64

// ssBucket accumulates snap status opinions observed at a single timestamp: snap id -> issuer
// DID -> opinion (1 endorsed, 0 disputed).
type ssBucket map[string]map[string]float64

// snapScore is a computed artifact score: the opinion of the last issuer with positive global
// trust, times that issuer's trust, divided by the summed global trust of its issuers
// (confidence).
type snapScore struct {
	value      float64
	confidence float64
}

// domainState is the score computer's per-domain working state: peer identity mappings, fetch
// high-water marks, the merged update streams not yet consumed by a tick, the current global
// trust vector, and the artifact opinions/scores it has accumulated. It lives only in memory —
// a restart resumes from the fetch offsets of zero and replays the full local-trust journal and
// status event log, which is safe since re-applying them overwrites each cell and opinion with
// the same values.
type domainState struct {
	peerIDToDID map[uint32]string
	peerDIDToID map[string]uint32

	ltFetchTrustTS    uint64
	ltFetchDistrustTS uint64
	ssFetchOffset     uint32
	ssUpdateTS        uint64
	lastUpdateTS      uint64
	lastComputeTS     uint64

	gt map[uint32]float64

	pendingLT map[uint64]ltBucket
	pendingSS map[uint64]ssBucket

	snapStatuses ssBucket
	snapScores   map[string]snapScore
}

func newDomainState() *domainState {
	return &domainState{
		peerIDToDID:  make(map[uint32]string),
		peerDIDToID:  make(map[string]uint32),
		gt:           make(map[uint32]float64),
		pendingLT:    make(map[uint64]ltBucket),
		pendingSS:    make(map[uint64]ssBucket),
		snapStatuses: make(ssBucket),
		snapScores:   make(map[string]snapScore),
	}
}

func cloneLT(src map[uint64]ltBucket) map[uint64]ltBucket {
	dst := make(map[uint64]ltBucket, len(src))
	for ts, bucket := range src {
		b := make(ltBucket, len(bucket))
		for k, v := range bucket {
			b[k] = v
		}

		dst[ts] = b
	}

	return dst
}

func cloneSS(src map[uint64]ssBucket) map[uint64]ssBucket {
	dst := make(map[uint64]ssBucket, len(src))
	for ts, bucket := range src {
		b := make(ssBucket, len(bucket))
		for snapID, issuers := range bucket {
			i := make(map[string]float64, len(issuers))
			for issuerDID, v := range issuers {
				i[issuerDID] = v
			}

			b[snapID] = i
		}

		dst[ts] = b
	}

	return dst
}

// popMinLT removes and returns the lowest-timestamped entry of m, the way a BTreeMap's
// pop_first would.
func popMinLT(m map[uint64]ltBucket) (uint64, ltBucket, bool) {
	var (
		minTS uint64
		found bool
	)

	for ts := range m {
		if !found || ts < minTS {
			minTS, found = ts, true
		}
	}

	if !found {
		return 0, nil, false
	}

	bucket := m[minTS]
	delete(m, minTS)

	return minTS, bucket, true
}

// popMinSS removes and returns the lowest-timestamped entry of m.
func popMinSS(m map[uint64]ssBucket) (uint64, ssBucket, bool) {
	var (
		minTS uint64
		found bool
	)

	for ts := range m {
		if !found || ts < minTS {
			minTS, found = ts, true
		}
	}

	if !found {
		return 0, nil, false
	}

	bucket := m[minTS]
	delete(m, minTS)

	return minTS, bucket, true
}
