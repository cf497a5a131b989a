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

// Schema ids the transformer's event dispatch recognizes.
const (
	SchemaIDTrust          = "TrustCredential"
	SchemaIDStatus         = "StatusCredential"
	SchemaIDSecurityReport = "AuditReportCredential"
)

// IntoTerms unmarshals the JSON-encoded credential payload per its schema id and converts it
// into terms observed at timestamp, dispatching on the tagged variant the way the reference's
// polymorphic credential enum does. An unrecognized schema id or malformed payload is a parse
// error; a recognized payload that fails signature verification is a verification error — both
// are fatal for the caller's batch per the propagation policy.
func IntoTerms(schemaID string, raw []byte, timestamp uint64) ([]term.Term, error) {
	schema, err := unmarshalSchema(schemaID, raw)
	if err != nil {
		return nil, err
	}

	return schema.IntoTerms(timestamp)
}

// schemaWithTerms is satisfied by every concrete credential type.
type schemaWithTerms interface {
	Schema
	IntoTerms(timestamp uint64) ([]term.Term, error)
}

func unmarshalSchema(schemaID string, raw []byte) (schemaWithTerms, error) {
	switch schemaID {
	case SchemaIDTrust:
		var c TrustCredential
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, pkgerrors.NewParsef("unmarshal %s: %w", schemaID, err)
		}

		return c, nil
	case SchemaIDStatus:
		var c StatusCredential
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, pkgerrors.NewParsef("unmarshal %s: %w", schemaID, err)
		}

		return c, nil
	case SchemaIDSecurityReport:
		var c SecurityReport
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, pkgerrors.NewParsef("unmarshal %s: %w", schemaID, err)
		}

		return c, nil
	default:
		return nil, pkgerrors.NewParsef("unrecognized schema id %q", schemaID)
	}
}
