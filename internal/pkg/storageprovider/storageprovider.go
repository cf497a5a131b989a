/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package storageprovider selects and constructs the aries storage.Provider backing a
// service's key/value stores, shared by every cmd/ binary so database configuration is
// resolved the same way regardless of which subsystem is starting up.
package storageprovider

import (
	"strings"

	ariesmongodbstorage "github.com/hyperledger/aries-framework-go-ext/component/storage/mongodb"
	ariesmemstorage "github.com/hyperledger/aries-framework-go/component/storageutil/mem"
	"github.com/hyperledger/aries-framework-go/spi/storage"

	"github.com/karma3labs/eigentrust-pipeline/pkg/pkgerrors"
	"github.com/karma3labs/eigentrust-pipeline/pkg/store/wrapper"
)

// Recognized database types.
const (
	TypeMem     = "mem"
	TypeMongoDB = "mongodb"
)

// Params configures the storage.Provider New builds.
type Params struct {
	Type string
	// URL is the mongodb connection string; ignored for TypeMem.
	URL string
}

// New constructs a metrics-instrumented storage.Provider per Params.Type.
func New(p Params) (storage.Provider, error) {
	var (
		provider storage.Provider
		err      error
	)

	switch {
	case strings.EqualFold(p.Type, TypeMem):
		provider = ariesmemstorage.NewProvider()
	case strings.EqualFold(p.Type, TypeMongoDB):
		provider, err = ariesmongodbstorage.NewProvider(p.URL)
		if err != nil {
			return nil, pkgerrors.NewStoragef("connect to mongodb: %w", err)
		}
	default:
		return nil, pkgerrors.NewArgumentf(
			"unrecognized database type %q, must be one of %q or %q", p.Type, TypeMem, TypeMongoDB)
	}

	return wrapper.NewProvider(provider, strings.ToLower(p.Type)), nil
}
