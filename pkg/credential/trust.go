/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package credential

import (
	"encoding/hex"
	"encoding/json"
	"math"
	"strings"

	"github.com/karma3labs/eigentrust-pipeline/pkg/peerdid"
	"github.com/karma3labs/eigentrust-pipeline/pkg/pkgerrors"
	"github.com/karma3labs/eigentrust-pipeline/pkg/term"
)

// TrustScope is the domain a subject-reported trust level is attested over. Unlike
// term.Domain (which only models the two domains the pipeline scores), a credential may also
// attest general Honesty, which fans out into both scored domains at a reduced weight.
type TrustScope uint8

// Recognized trust scopes.
const (
	TrustScopeHonesty             TrustScope = 0
	TrustScopeSoftwareDevelopment TrustScope = 1
	TrustScopeSoftwareSecurity    TrustScope = 2
)

// String implements fmt.Stringer, matching the wire representation.
func (s TrustScope) String() string {
	switch s {
	case TrustScopeHonesty:
		return "Honesty"
	case TrustScopeSoftwareDevelopment:
		return "Software development"
	case TrustScopeSoftwareSecurity:
		return "Software security"
	default:
		return "unknown"
	}
}

// MarshalJSON implements json.Marshaler: trust scopes are wire-encoded as the string variant
// names the reference's serde-derived enum renames to, not their numeric discriminant.
func (s TrustScope) MarshalJSON() ([]byte, error) {
	switch s {
	case TrustScopeHonesty, TrustScopeSoftwareDevelopment, TrustScopeSoftwareSecurity:
		return json.Marshal(s.String())
	default:
		return nil, pkgerrors.NewArgumentf("unrecognized trust scope %d", s)
	}
}

// UnmarshalJSON implements json.Unmarshaler, accepting the same string variant names.
func (s *TrustScope) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return pkgerrors.NewParsef("unmarshal trust scope: %w", err)
	}

	switch str {
	case "Honesty":
		*s = TrustScopeHonesty
	case "Software development":
		*s = TrustScopeSoftwareDevelopment
	case "Software security":
		*s = TrustScopeSoftwareSecurity
	default:
		return pkgerrors.NewParsef("unrecognized trust scope %q", str)
	}

	return nil
}

// DomainTrust is one subject-reported trust level within a single scope. A negative Level
// reports distrust; its magnitude becomes the emitted term's weight, scaled per Scope.
type DomainTrust struct {
	Scope TrustScope `json:"scope"`
	Level float32    `json:"level"`
}

// TrustCredentialSubject is the subject of a TrustCredential: a peer DID (key bytes are the
// hex-decoded last colon-separated field) or a snap:// id, and the domains of trustworthiness
// the issuer attests to it.
type TrustCredentialSubject struct {
	ID              string        `json:"id"`
	Trustworthiness []DomainTrust `json:"trustworthiness"`
}

// TrustCredential is the issuer's attestation of another peer's trustworthiness across one or
// more domains, signed over a digest of the subject's key and attested domains.
type TrustCredential struct {
	Issuer  string                 `json:"issuer"`
	Subject TrustCredentialSubject `json:"credentialSubject"`
	Proof   Proof                  `json:"proof"`
}

// GetProof implements Schema.
func (c TrustCredential) GetProof() Proof { return c.Proof }

// GetMessage implements Schema: keccak256(subjectKey ‖ domain_0 ‖ domain_1 ‖ ...).
func (c TrustCredential) GetMessage() ([]byte, error) {
	var (
		key []byte
		err error
	)

	if strings.HasPrefix(c.Subject.ID, "did:") {
		fields := strings.Split(c.Subject.ID, ":")

		key, err = hex.DecodeString(strings.TrimPrefix(fields[len(fields)-1], "0x"))
		if err != nil {
			err = pkgerrors.NewParsef("%q: %w", c.Subject.ID, err)
		}
	} else {
		key, err = parseSnapID(c.Subject.ID)
	}

	if err != nil {
		return nil, err
	}

	msg := make([]byte, 0, len(key)+len(c.Subject.Trustworthiness))
	msg = append(msg, key...)

	for _, dt := range c.Subject.Trustworthiness {
		msg = append(msg, byte(dt.Scope))
	}

	return msg, nil
}

// IntoTerms validates the credential's proof and converts it into terms observed at timestamp
// (Unix milliseconds). The recovered signer becomes each term's FromDID, canonicalized via
// pkg/peerdid. SoftwareDevelopment and SoftwareSecurity each produce one term (weight |level|*10)
// in their respective domain; Honesty fans out into two terms, one per domain, at weight
// |level|*1.
func (c TrustCredential) IntoTerms(timestamp uint64) ([]term.Term, error) {
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

	terms := make([]term.Term, 0, len(c.Subject.Trustworthiness))

	for _, dt := range c.Subject.Trustworthiness {
		form := term.FormTrust
		if dt.Level < 0 {
			form = term.FormDistrust
		}

		magnitude := float32(math.Abs(float64(dt.Level)))

		switch dt.Scope {
		case TrustScopeSoftwareDevelopment:
			terms = append(terms, term.New(fromDID, c.Subject.ID, magnitude*10, term.DomainDevelopment, form, timestamp))
		case TrustScopeSoftwareSecurity:
			terms = append(terms, term.New(fromDID, c.Subject.ID, magnitude*10, term.DomainSecurity, form, timestamp))
		case TrustScopeHonesty:
			terms = append(terms, term.New(fromDID, c.Subject.ID, magnitude, term.DomainDevelopment, form, timestamp))
			terms = append(terms, term.New(fromDID, c.Subject.ID, magnitude, term.DomainSecurity, form, timestamp))
		default:
			return nil, pkgerrors.NewArgumentf("unrecognized trust scope %d", dt.Scope)
		}
	}

	return terms, nil
}
