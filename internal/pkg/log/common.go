/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package log

import (
	"go.uber.org/zap"

	tlog "github.com/trustbloc/logutil-go/pkg/log"
)

// InvalidParameterValue outputs an 'invalid parameter' log to the given logger.
func InvalidParameterValue(log *tlog.Log, param string, err error) {
	log.WithOptions(zap.AddCallerSkip(1)).Error("Invalid parameter value", WithParameter(param), WithError(err))
}

// CredentialSkipped outputs a 'credential skipped' warning for a per-credential parse/verification
// failure that does not abort the enclosing batch operation.
func CredentialSkipped(log *tlog.Log, credentialType string, err error) {
	log.WithOptions(zap.AddCallerSkip(1)).Warn("Skipping credential", WithSchema(credentialType), WithError(err))
}

// BatchAborted outputs an error log when a batch operation fails before its checkpoint could be
// advanced; the next call will retry from the unchanged checkpoint.
func BatchAborted(log *tlog.Log, checkpoint uint32, err error) {
	log.WithOptions(zap.AddCallerSkip(1)).Error("Aborting batch, checkpoint not advanced",
		WithCheckpoint(checkpoint), WithError(err))
}

// CheckpointAdvanced outputs a debug log when a checkpoint is committed.
func CheckpointAdvanced(log *tlog.Log, checkpoint uint32) {
	log.WithOptions(zap.AddCallerSkip(1)).Debug("Checkpoint advanced", WithCheckpoint(checkpoint))
}

// NewPeerIndex outputs a debug log when a new peer DID is assigned an index.
func NewPeerIndex(log *tlog.Log, did string, index uint32) {
	log.WithOptions(zap.AddCallerSkip(1)).Debug("Assigned new peer index", WithPeerDID(did), WithPeerIndex(index))
}

// CloseIteratorError outputs a 'close iterator' error log to the given logger.
func CloseIteratorError(log *tlog.Log, err error) {
	log.WithOptions(zap.AddCallerSkip(1)).Warn("Error closing iterator", WithError(err))
}

// ComputeBarrierTriggered outputs an info log when a compute barrier fires for a window.
func ComputeBarrierTriggered(log *tlog.Log, window uint64) {
	log.WithOptions(zap.AddCallerSkip(1)).Info("Performing compute barrier", WithWindow(window))
}

// ComputeFailed outputs a warning log when a compute barrier's EigenTrust run fails; scores for
// this window fall back to the previously computed global trust vector.
func ComputeFailed(log *tlog.Log, err error) {
	log.WithOptions(zap.AddCallerSkip(1)).Warn("Compute failed, scores will be based on stale peer scores", WithError(err))
}

// ArchiveWritten outputs an info log when a score archive has been written.
func ArchiveWritten(log *tlog.Log, path string, window uint64) {
	log.WithOptions(zap.AddCallerSkip(1)).Info("Wrote score archive", WithArchivePath(path), WithWindow(window))
}

// UnknownIssuer outputs a warning log when a snap status opinion names an issuer DID with no
// known peer index, so its opinion cannot be weighted and is skipped.
func UnknownIssuer(log *tlog.Log, did string) {
	log.WithOptions(zap.AddCallerSkip(1)).Warn("Unknown issuer DID, skipping opinion", WithPeerDID(did))
}
