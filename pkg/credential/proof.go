/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package credential implements the three attestation schemas the transformer ingests
// (TrustCredential, StatusCredential, and the reserved SecurityReport), their ECDSA-recoverable
// proof verification, and their conversion into term.Term edges.
package credential

import (
	"encoding/hex"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/karma3labs/eigentrust-pipeline/pkg/pkgerrors"
)

// Proof carries the credential's recoverable ECDSA signature, hex-encoded with an optional
// "0x" prefix: 65 bytes of r ‖ s ‖ v, where v is the recovery id in {0, 1, 27, 28}.
type Proof struct {
	Signature string `json:"signature"`
}

// Schema is anything whose signed message digest and recovered signer can be computed.
type Schema interface {
	// GetMessage returns the canonical byte message this credential's proof signs.
	GetMessage() ([]byte, error)
	// GetProof returns the credential's proof.
	GetProof() Proof
}

// Validate recovers and returns the public key that produced s's proof over keccak256(message),
// verifying the recovered signature against that digest.
func Validate(s Schema) ([]byte, error) {
	msg, err := s.GetMessage()
	if err != nil {
		return nil, err
	}

	sigBytes, err := decodeSignature(s.GetProof().Signature)
	if err != nil {
		return nil, err
	}

	digest := crypto.Keccak256(msg)

	pubKey, err := crypto.Ecrecover(digest, sigBytes)
	if err != nil {
		return nil, pkgerrors.NewVerificationf("recover public key: %w", err)
	}

	if !crypto.VerifySignature(pubKey, digest, sigBytes[:64]) {
		return nil, pkgerrors.NewVerificationf("recovered public key does not verify signature")
	}

	return pubKey, nil
}

// AddressFromPublicKey derives the 20-byte Ethereum-style address from an uncompressed
// secp256k1 public key, as the keccak256 hash of the key's X||Y coordinates, last 20 bytes.
func AddressFromPublicKey(pubKey []byte) ([]byte, error) {
	pk, err := crypto.UnmarshalPubkey(pubKey)
	if err != nil {
		return nil, pkgerrors.NewVerificationf("unmarshal public key: %w", err)
	}

	return crypto.PubkeyToAddress(*pk).Bytes(), nil
}

// decodeSignature hex-decodes a 65-byte r‖s‖v signature, normalizing the trailing recovery
// byte from Ethereum's {27, 28} convention (or the raw {0, 1}) to go-ethereum's expected {0, 1}.
func decodeSignature(sig string) ([]byte, error) {
	sig = strings.TrimPrefix(sig, "0x")

	raw, err := hex.DecodeString(sig)
	if err != nil {
		return nil, pkgerrors.NewParsef("decode signature: %w", err)
	}

	if len(raw) != 65 {
		return nil, pkgerrors.NewParsef("signature must be 65 bytes, got %d", len(raw))
	}

	switch raw[64] {
	case 0, 1:
	case 27, 28:
		raw[64] -= 27
	default:
		return nil, pkgerrors.NewParsef("invalid recovery byte %d", raw[64])
	}

	return raw, nil
}
