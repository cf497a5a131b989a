/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package credential

import (
	"encoding/json"

	"github.com/karma3labs/eigentrust-pipeline/pkg/pkgerrors"
	"github.com/karma3labs/eigentrust-pipeline/pkg/term"
)

// Status reports whether a snap has been endorsed or disputed by the issuer.
type Status uint8

// Recognized statuses.
const (
	StatusDisputed Status = 0
	StatusEndorsed Status = 1
)

// String implements fmt.Stringer, matching the wire representation.
func (s Status) String() string {
	switch s {
	case StatusEndorsed:
		return "Endorsed"
	case StatusDisputed:
		return "Disputed"
	default:
		return "unknown"
	}
}

// MarshalJSON implements json.Marshaler: statuses are wire-encoded as the string variant name
// the reference's serde-derived enum emits, not their numeric discriminant.
func (s Status) MarshalJSON() ([]byte, error) {
	switch s {
	case StatusEndorsed, StatusDisputed:
		return json.Marshal(s.String())
	default:
		return nil, pkgerrors.NewArgumentf("unrecognized status %d", s)
	}
}

// UnmarshalJSON implements json.Unmarshaler, accepting the same string variant names.
func (s *Status) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return pkgerrors.NewParsef("unmarshal status: %w", err)
	}

	switch str {
	case "Endorsed":
		*s = StatusEndorsed
	case "Disputed":
		*s = StatusDisputed
	default:
		return pkgerrors.NewParsef("unrecognized status %q", str)
	}

	return nil
}

// StatusCredentialSubject is the subject of a StatusCredential.
type StatusCredentialSubject struct {
	ID            string `json:"id"`
	CurrentStatus Status `json:"currentStatus"`
}

// StatusCredential reports the issuer's current endorse/dispute status for a snap. Its
// proof signs a digest of the subject id and status but, matching the reference
// implementation, the recovered key is not compared with Issuer — signature verification
// establishes only that the credential carries a valid signature over the message, not that
// Issuer is the signer. The emitted term's FromDID is Issuer as given.
type StatusCredential struct {
	Issuer  string                   `json:"issuer"`
	Subject StatusCredentialSubject  `json:"credentialSubject"`
	Proof   Proof                    `json:"proof"`
}

// GetProof implements Schema.
func (c StatusCredential) GetProof() Proof { return c.Proof }

// GetMessage implements Schema: keccak256(schemaTag ‖ subjectKey ‖ status).
func (c StatusCredential) GetMessage() ([]byte, error) {
	key, err := parseSnapID(c.Subject.ID)
	if err != nil {
		return nil, err
	}

	const schemaTagPkhEth = 0

	msg := make([]byte, 0, len(key)+2)
	msg = append(msg, schemaTagPkhEth)
	msg = append(msg, key...)
	msg = append(msg, byte(c.Subject.CurrentStatus))

	return msg, nil
}

// IntoTerms validates the credential's proof and converts it into a single security-domain
// term: trust when endorsed, distrust when disputed, at a fixed weight of 50.
func (c StatusCredential) IntoTerms(timestamp uint64) ([]term.Term, error) {
	if _, err := Validate(c); err != nil {
		return nil, err
	}

	const weight float32 = 50

	form := term.FormDistrust
	if c.Subject.CurrentStatus == StatusEndorsed {
		form = term.FormTrust
	}

	t := term.New(c.Issuer, c.Subject.ID, weight, term.DomainSecurity, form, timestamp)

	return []term.Term{t}, nil
}
