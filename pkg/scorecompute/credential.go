/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package scorecompute

import (
	"encoding/hex"
	"time"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/karma3labs/eigentrust-pipeline/pkg/jcs"
)

const w3cCredentialsContext = "https://www.w3.org/2018/credentials/v1"

// Score type tags carried by a TrustScoreCredential's credentialSubject.trustScoreType.
const (
	ScoreTypeEigenTrust               = "EigenTrust"
	ScoreTypeIssuerTrustWeightedAverage = "IssuerTrustWeightedAverage"
)

// TrustScore is a credential subject's scored value, with an optional confidence level: peer
// scores carry none (EigenTrust is already a normalized probability), artifact scores carry the
// summed weight of the issuers that contributed to it.
type TrustScore struct {
	Value      float64  `json:"value"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// TrustScoreCredentialSubject is the subject of a TrustScoreCredential: the peer DID or artifact
// id being scored, the scoring method that produced it, and the score itself.
type TrustScoreCredentialSubject struct {
	ID             string     `json:"id"`
	TrustScoreType string     `json:"trustScoreType"`
	TrustScore     TrustScore `json:"trustScore"`
}

// TrustScoreCredentialProof is intentionally empty: score credentials are not yet signed,
// matching the reference scoring core's own placeholder proof.
type TrustScoreCredentialProof struct{}

// TrustScoreCredential is the verifiable-credential envelope the score computer emits for every
// peer and artifact score in its archive. Its id is the "0x"-prefixed hex keccak256 hash of its
// own canonical JSON form computed with id held empty — a self-addressing identifier rather than
// an externally assigned one.
type TrustScoreCredential struct {
	Context      []string                     `json:"@context"`
	ID           string                       `json:"id"`
	Type         []string                     `json:"type"`
	Issuer       string                       `json:"issuer"`
	IssuanceDate string                       `json:"issuanceDate"`
	Subject      TrustScoreCredentialSubject  `json:"credentialSubject"`
	Proof        TrustScoreCredentialProof    `json:"proof"`
}

// ManifestProof is intentionally empty, matching TrustScoreCredentialProof.
type ManifestProof struct{}

// Manifest accompanies a score archive, naming its issuer, issuance time, and (optionally) the
// content-addressed locations it was published to.
type Manifest struct {
	Issuer       string        `json:"issuer"`
	IssuanceDate string        `json:"issuanceDate"`
	Locations    []string      `json:"locations"`
	Proof        ManifestProof `json:"proof"`
}

// buildTrustScoreCredential constructs a self-addressed TrustScoreCredential: it is first
// canonicalized with id held empty to compute its keccak256 hash, then the id field is set to
// that hash and the caller re-canonicalizes the result for output.
func buildTrustScoreCredential(
	issuerID string, timestamp uint64, subjectID, scoreType string, value float64, confidence *float64,
) (TrustScoreCredential, error) {
	vc := TrustScoreCredential{
		Context:      []string{w3cCredentialsContext},
		ID:           "",
		Type:         []string{"VerifiableCredential", "TrustScoreCredential"},
		Issuer:       issuerID,
		IssuanceDate: formatIssuanceDate(timestamp),
		Subject: TrustScoreCredentialSubject{
			ID:             subjectID,
			TrustScoreType: scoreType,
			TrustScore:     TrustScore{Value: value, Confidence: confidence},
		},
		Proof: TrustScoreCredentialProof{},
	}

	hashInput, err := jcs.MarshalCanonical(vc)
	if err != nil {
		return TrustScoreCredential{}, err
	}

	hash := crypto.Keccak256(hashInput)
	vc.ID = "0x" + hex.EncodeToString(hash)

	return vc, nil
}

// buildManifest constructs the Manifest accompanying a compute barrier's archive.
func buildManifest(issuerID string, timestamp uint64) Manifest {
	return Manifest{
		Issuer:       issuerID,
		IssuanceDate: formatIssuanceDate(timestamp),
		Locations:    nil,
		Proof:        ManifestProof{},
	}
}

// formatIssuanceDate renders a Unix-milliseconds timestamp as an ISO-8601 UTC instant.
func formatIssuanceDate(timestampMillis uint64) string {
	return time.UnixMilli(int64(timestampMillis)).UTC().Format(time.RFC3339) //nolint:gosec
}
