/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package credential

import (
	"encoding/hex"
	"strings"

	"github.com/karma3labs/eigentrust-pipeline/pkg/pkgerrors"
)

// parseSnapID decodes a MetaMask Snaps subject identifier of the form "snap://<hex-key>"
// (with an optional "0x" prefix on the hex portion) into its raw key bytes.
func parseSnapID(id string) ([]byte, error) {
	rest := strings.TrimPrefix(id, "snap://")
	if rest == id {
		return nil, pkgerrors.NewParsef("%q: not a snap:// subject id", id)
	}

	rest = strings.TrimPrefix(rest, "0x")

	key, err := hex.DecodeString(rest)
	if err != nil {
		return nil, pkgerrors.NewParsef("%q: %w", id, err)
	}

	return key, nil
}
