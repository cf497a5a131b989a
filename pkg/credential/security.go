/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package credential

import (
	"encoding/hex"
	"encoding/json"
	"math"

	"github.com/karma3labs/eigentrust-pipeline/pkg/peerdid"
	"github.com/karma3labs/eigentrust-pipeline/pkg/pkgerrors"
	"github.com/karma3labs/eigentrust-pipeline/pkg/term"
)

// SecurityStatus reports the outcome of a security audit.
type SecurityStatus uint8

// Recognized security statuses.
const (
	SecurityStatusUnsecure SecurityStatus = 0
	SecurityStatusSecure   SecurityStatus = 1
)

// String implements fmt.Stringer, matching the wire representation.
func (s SecurityStatus) String() string {
	switch s {
	case SecurityStatusUnsecure:
		return "Unsecure"
	case SecurityStatusSecure:
		return "Secure"
	default:
		return "unknown"
	}
}

// MarshalJSON implements json.Marshaler: security statuses are wire-encoded as the string
// variant name the reference's serde-derived enum emits, not their numeric discriminant.
func (s SecurityStatus) MarshalJSON() ([]byte, error) {
	switch s {
	case SecurityStatusUnsecure, SecurityStatusSecure:
		return json.Marshal(s.String())
	default:
		return nil, pkgerrors.NewArgumentf("unrecognized security status %d", s)
	}
}

// UnmarshalJSON implements json.Unmarshaler, accepting the same string variant names.
func (s *SecurityStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return pkgerrors.NewParsef("unmarshal security status: %w", err)
	}

	switch str {
	case "Unsecure":
		*s = SecurityStatusUnsecure
	case "Secure":
		*s = SecurityStatusSecure
	default:
		return pkgerrors.NewParsef("unrecognized security status %q", str)
	}

	return nil
}

// SecurityFinding is one reported issue from a security audit; only Criticality feeds into
// scoring.
type SecurityFinding struct {
	Criticality float32 `json:"criticality"`
}

// SecurityReportCredentialSubject is the subject of a SecurityReport.
type SecurityReportCredentialSubject struct {
	ID       string            `json:"id"`
	Status   SecurityStatus    `json:"status"`
	Findings []SecurityFinding `json:"findings"`
}

// SecurityReport is an auditor's security assessment of a snap. It is accepted by the
// transformer's schema dispatch (schema id "AuditReportCredential") but, unlike
// TrustCredential and StatusCredential, is not wired into any production indexer source yet —
// no collaborator in this pipeline emits AuditReportCredentials — so it is exercised only by
// its own tests.
type SecurityReport struct {
	Issuer  string                          `json:"issuer"`
	Subject SecurityReportCredentialSubject `json:"credentialSubject"`
	Proof   Proof                            `json:"proof"`
}

// GetProof implements Schema.
func (c SecurityReport) GetProof() Proof { return c.Proof }

// GetMessage implements Schema: keccak256(subjectKey ‖ status ‖ criticality_0 ‖ criticality_1 ‖ ...).
func (c SecurityReport) GetMessage() ([]byte, error) {
	key, err := parseSnapID(c.Subject.ID)
	if err != nil {
		return nil, err
	}

	msg := make([]byte, 0, len(key)+1+4*len(c.Subject.Findings))
	msg = append(msg, key...)
	msg = append(msg, byte(c.Subject.Status))

	for _, f := range c.Subject.Findings {
		msg = append(msg, float32Bytes(f.Criticality)...)
	}

	return msg, nil
}

// IntoTerms validates the credential's proof, cross-checks the recovered signer against
// Issuer, and converts it into security-domain terms: a single trust term when Secure, or one
// distrust term per finding (weighted by its criticality) when Unsecure.
func (c SecurityReport) IntoTerms(timestamp uint64) ([]term.Term, error) {
	pubKey, err := Validate(c)
	if err != nil {
		return nil, err
	}

	addr, err := AddressFromPublicKey(pubKey)
	if err != nil {
		return nil, err
	}

	fromDID, err := peerdid.Canonicalize("did:pkh:eth:0x" + hex.EncodeToString(addr))
	if err != nil {
		return nil, err
	}

	issuerDID, err := peerdid.Canonicalize(c.Issuer)
	if err != nil {
		return nil, err
	}

	if fromDID != issuerDID {
		return nil, pkgerrors.NewVerificationf("recovered signer %q does not match issuer %q", fromDID, issuerDID)
	}

	const weight float32 = 50

	if c.Subject.Status == SecurityStatusSecure {
		t := term.New(fromDID, c.Subject.ID, weight, term.DomainSecurity, term.FormTrust, timestamp)

		return []term.Term{t}, nil
	}

	terms := make([]term.Term, 0, len(c.Subject.Findings))

	for _, f := range c.Subject.Findings {
		t := term.New(fromDID, c.Subject.ID, f.Criticality*weight, term.DomainSecurity, term.FormDistrust, timestamp)
		terms = append(terms, t)
	}

	return terms, nil
}

func float32Bytes(v float32) []byte {
	bits := math.Float32bits(v)

	return []byte{byte(bits >> 24), byte(bits >> 16), byte(bits >> 8), byte(bits)}
}
