/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package credential

import (
	"encoding/hex"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/karma3labs/eigentrust-pipeline/pkg/term"
)

func TestIntoTermsDispatchesOnSchemaID(t *testing.T) {
	subject := StatusCredentialSubject{ID: "snap://0x90f8bf6a479f320ead074411a4b0e7944ea8c9c2", CurrentStatus: StatusEndorsed}
	cred := StatusCredential{Issuer: "did:pkh:eip155:1:0xdeadbeef", Subject: subject}

	msg, err := cred.GetMessage()
	require.NoError(t, err)

	sig, _ := sign(t, msg)
	cred.Proof = Proof{Signature: sig}

	raw, err := json.Marshal(cred)
	require.NoError(t, err)

	terms, err := IntoTerms(SchemaIDStatus, raw, 5_000)
	require.NoError(t, err)
	require.Len(t, terms, 1)
}

func TestIntoTermsAcceptsWireStatusEnum(t *testing.T) {
	subject := StatusCredentialSubject{ID: "snap://0x90f8bf6a479f320ead074411a4b0e7944ea8c9c2", CurrentStatus: StatusEndorsed}
	cred := StatusCredential{Issuer: "did:pkh:eip155:1:0xdeadbeef", Subject: subject}

	msg, err := cred.GetMessage()
	require.NoError(t, err)

	sig, _ := sign(t, msg)

	// Hand-built, not round-tripped through our own Marshal: this is the string enum shape the
	// reference's serde-derived CurrentStatus actually emits on the wire.
	raw := []byte(`{
		"issuer": "did:pkh:eip155:1:0xdeadbeef",
		"credentialSubject": {
			"id": "snap://0x90f8bf6a479f320ead074411a4b0e7944ea8c9c2",
			"currentStatus": "Endorsed"
		},
		"proof": {"signature": "` + sig + `"}
	}`)

	terms, err := IntoTerms(SchemaIDStatus, raw, 5_000)
	require.NoError(t, err)
	require.Len(t, terms, 1)
	require.Equal(t, term.FormTrust, terms[0].Form)
}

func TestIntoTermsAcceptsWireTrustScopeEnum(t *testing.T) {
	subject := TrustCredentialSubject{
		ID:              "snap://90f8bf6a47",
		Trustworthiness: []DomainTrust{{Scope: TrustScopeSoftwareSecurity, Level: 0.5}},
	}
	cred := TrustCredential{Subject: subject}

	msg, err := cred.GetMessage()
	require.NoError(t, err)

	sig, _ := sign(t, msg)

	// Matches the reference's Domain enum's serde rename ("Software development"/"Software
	// security"), not the numeric discriminant.
	raw := []byte(`{
		"issuer": "",
		"credentialSubject": {
			"id": "snap://90f8bf6a47",
			"trustworthiness": [{"scope": "Software security", "level": 0.5}]
		},
		"proof": {"signature": "` + sig + `"}
	}`)

	terms, err := IntoTerms(SchemaIDTrust, raw, 1_000)
	require.NoError(t, err)
	require.Len(t, terms, 1)
	require.Equal(t, term.DomainSecurity, terms[0].Domain)
}

func TestIntoTermsAcceptsWireSecurityStatusEnum(t *testing.T) {
	subject := SecurityReportCredentialSubject{ID: "snap://90f8bf6a47", Status: SecurityStatusSecure}
	cred := SecurityReport{Subject: subject}

	msg, err := cred.GetMessage()
	require.NoError(t, err)

	sig, addr := sign(t, msg)
	issuer := "did:pkh:eth:0x" + hex.EncodeToString(addr)

	// Matches the reference's SecurityStatus enum's default serde variant names ("Unsecure"/
	// "Secure"), not the numeric discriminant.
	raw := []byte(`{
		"issuer": "` + issuer + `",
		"credentialSubject": {
			"id": "snap://90f8bf6a47",
			"status": "Secure",
			"findings": []
		},
		"proof": {"signature": "` + sig + `"}
	}`)

	terms, err := IntoTerms(SchemaIDSecurityReport, raw, 1_000)
	require.NoError(t, err)
	require.Len(t, terms, 1)
	require.Equal(t, term.FormTrust, terms[0].Form)
}

func TestIntoTermsRejectsUnknownSchema(t *testing.T) {
	_, err := IntoTerms("NotASchema", []byte(`{}`), 0)
	require.Error(t, err)
}

func TestIntoTermsRejectsMalformedPayload(t *testing.T) {
	_, err := IntoTerms(SchemaIDTrust, []byte(`not json`), 0)
	require.Error(t, err)
}
