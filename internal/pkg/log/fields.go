/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package log

import (
	"fmt"

	"go.uber.org/zap"
)

// Log Fields.
const (
	FieldServiceName   = "service"
	FieldDomain        = "domain"
	FieldForm          = "form"
	FieldPeerDID       = "peer-did"
	FieldSubjectID     = "subject-id"
	FieldWeight        = "weight"
	FieldTimestamp     = "timestamp"
	FieldTermCount     = "term-count"
	FieldEventOffset   = "event-offset"
	FieldCheckpoint    = "checkpoint"
	FieldPeerIndex     = "peer-index"
	FieldCellX         = "cell-x"
	FieldCellY         = "cell-y"
	FieldCredentialID  = "credential-id"
	FieldSchema        = "schema"
	FieldWindow        = "window"
	FieldTickTimestamp = "tick-timestamp"
	FieldArchivePath   = "archive-path"
	FieldTopic         = "topic"
	FieldMessageID     = "message-id"
	FieldSize          = "size"
	FieldData          = "data"
	FieldParameter     = "parameter"
	FieldServiceEndpoint = "service-endpoint"
	FieldRequestBody   = "request-body"
	FieldLogSpec       = "log-spec"
)

// WithError sets the error field.
func WithError(err error) zap.Field {
	return zap.Error(err)
}

// WithServiceName sets the service field.
func WithServiceName(value string) zap.Field {
	return zap.String(FieldServiceName, value)
}

// WithDomain sets the domain field.
func WithDomain(value uint32) zap.Field {
	return zap.Uint32(FieldDomain, value)
}

// WithForm sets the form field.
func WithForm(value fmt.Stringer) zap.Field {
	return zap.Stringer(FieldForm, value)
}

// WithPeerDID sets the peer-did field.
func WithPeerDID(value string) zap.Field {
	return zap.String(FieldPeerDID, value)
}

// WithSubjectID sets the subject-id field.
func WithSubjectID(value string) zap.Field {
	return zap.String(FieldSubjectID, value)
}

// WithWeight sets the weight field.
func WithWeight(value float32) zap.Field {
	return zap.Float32(FieldWeight, value)
}

// WithTimestamp sets the timestamp field.
func WithTimestamp(value uint64) zap.Field {
	return zap.Uint64(FieldTimestamp, value)
}

// WithTermCount sets the term-count field.
func WithTermCount(value uint32) zap.Field {
	return zap.Uint32(FieldTermCount, value)
}

// WithEventOffset sets the event-offset field.
func WithEventOffset(value uint32) zap.Field {
	return zap.Uint32(FieldEventOffset, value)
}

// WithCheckpoint sets the checkpoint field.
func WithCheckpoint(value uint32) zap.Field {
	return zap.Uint32(FieldCheckpoint, value)
}

// WithPeerIndex sets the peer-index field.
func WithPeerIndex(value uint32) zap.Field {
	return zap.Uint32(FieldPeerIndex, value)
}

// WithCell sets the cell-x and cell-y fields.
func WithCell(x, y uint32) []zap.Field {
	return []zap.Field{zap.Uint32(FieldCellX, x), zap.Uint32(FieldCellY, y)}
}

// WithCredentialID sets the credential-id field.
func WithCredentialID(value string) zap.Field {
	return zap.String(FieldCredentialID, value)
}

// WithSchema sets the schema field.
func WithSchema(value string) zap.Field {
	return zap.String(FieldSchema, value)
}

// WithWindow sets the window field.
func WithWindow(value uint64) zap.Field {
	return zap.Uint64(FieldWindow, value)
}

// WithArchivePath sets the archive-path field.
func WithArchivePath(value string) zap.Field {
	return zap.String(FieldArchivePath, value)
}

// WithTopic sets the topic field.
func WithTopic(value string) zap.Field {
	return zap.String(FieldTopic, value)
}

// WithMessageID sets the message-id field.
func WithMessageID(value string) zap.Field {
	return zap.String(FieldMessageID, value)
}

// WithSize sets the size field.
func WithSize(value int) zap.Field {
	return zap.Int(FieldSize, value)
}

// WithData sets the data field.
func WithData(value []byte) zap.Field {
	return zap.String(FieldData, string(value))
}

// WithParameter sets the parameter field.
func WithParameter(value string) zap.Field {
	return zap.String(FieldParameter, value)
}

// WithServiceEndpoint sets the service-endpoint field.
func WithServiceEndpoint(value string) zap.Field {
	return zap.String(FieldServiceEndpoint, value)
}

// WithRequestBody sets the request-body field.
func WithRequestBody(value []byte) zap.Field {
	return zap.String(FieldRequestBody, string(value))
}

// WithLogSpec sets the log-spec field.
func WithLogSpec(value string) zap.Field {
	return zap.String(FieldLogSpec, value)
}
