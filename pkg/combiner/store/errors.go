/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package store

import "github.com/karma3labs/eigentrust-pipeline/pkg/pkgerrors"

func isNotFound(err error) bool {
	return pkgerrors.IsNotFound(err)
}
