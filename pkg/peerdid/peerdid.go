/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package peerdid canonicalizes peer DIDs into the did:pkh:eip155:1:<lowercase-address> form
// used throughout the pipeline as the peer identity key.
package peerdid

import (
	"strings"

	"github.com/karma3labs/eigentrust-pipeline/pkg/pkgerrors"
)

// Canonicalize rewrites a peer DID by lowercasing its 0x address and substituting chain ID 1,
// converting legacy did:eth and did:pkh:eth forms into did:pkh:eip155 DIDs along the way.
//
// Accepted forms:
//
//	did:pkh:eip155:<chain>:<address>
//	did:pkh:eth:<address>
//	did:eth:<address>
//
// All canonicalize to did:pkh:eip155:1:<lowercase address>.
func Canonicalize(did string) (string, error) {
	parts := strings.SplitN(did, ":", 3)
	if len(parts) != 3 {
		return "", pkgerrors.NewParsef("%q: not a DID", did)
	}

	scheme, method, msid := parts[0], parts[1], parts[2]

	if scheme != "did" {
		return "", pkgerrors.NewParsef("%q: not a DID", did)
	}

	switch method {
	case "pkh":
		return canonicalizePkh(msid)
	case "eth":
		return "did:pkh:eip155:1:" + strings.ToLower(msid), nil
	default:
		return "", pkgerrors.NewParsef("%q: unrecognized DID method %q", did, method)
	}
}

func canonicalizePkh(msid string) (string, error) {
	fields := strings.Split(msid, ":")

	switch len(fields) {
	case 2:
		if fields[0] != "eth" {
			return "", pkgerrors.NewParsef("%q: unrecognized PKH method-specific ID", msid)
		}

		return "did:pkh:eip155:1:" + strings.ToLower(fields[1]), nil
	case 3:
		namespace, address := fields[0], fields[2]

		if namespace != "eip155" {
			return "", pkgerrors.NewParsef("%q: unrecognized PKH namespace %q", msid, namespace)
		}

		return "did:pkh:eip155:1:" + strings.ToLower(address), nil
	default:
		return "", pkgerrors.NewParsef("%q: unrecognized PKH method-specific ID", msid)
	}
}
