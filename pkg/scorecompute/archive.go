/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package scorecompute

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/karma3labs/eigentrust-pipeline/pkg/jcs"
	"github.com/karma3labs/eigentrust-pipeline/pkg/pkgerrors"
	"github.com/karma3labs/eigentrust-pipeline/pkg/term"
)

// ArchiveSink receives the score computer's deterministic zip archive at each compute barrier.
type ArchiveSink interface {
	Write(ctx context.Context, domain term.Domain, window uint64, data []byte) error
}

// FileArchiveSink writes each domain's archive to a fixed path under Dir, overwriting the
// previous run's output — matching the reference scoring core, which emits a single
// well-known-named file per invocation rather than retaining per-window history.
type FileArchiveSink struct {
	Dir string
}

// Write implements ArchiveSink.
func (s FileArchiveSink) Write(_ context.Context, domain term.Domain, _ uint64, data []byte) error {
	path := filepath.Join(s.Dir, fmt.Sprintf("domain-%d-scores.zip", uint32(domain)))

	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec
		return pkgerrors.NewStoragef("write archive %s: %w", path, err)
	}

	return nil
}

// buildArchiveZip assembles the deterministic zip archive: peer_scores.jsonl, snap_scores.jsonl,
// and MANIFEST.json in that order, each entry stored uncompressed with a zeroed modification
// time so the same content always produces the same bytes.
func buildArchiveZip(peerLines, snapLines [][]byte, manifest Manifest) ([]byte, error) {
	var buf bytes.Buffer

	zw := zip.NewWriter(&buf)

	if err := writeJSONLEntry(zw, "peer_scores.jsonl", peerLines); err != nil {
		return nil, err
	}

	if err := writeJSONLEntry(zw, "snap_scores.jsonl", snapLines); err != nil {
		return nil, err
	}

	manifestBytes, err := jcs.MarshalCanonical(manifest)
	if err != nil {
		return nil, err
	}

	if err := writeRawEntry(zw, "MANIFEST.json", manifestBytes); err != nil {
		return nil, err
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close archive: %w", err)
	}

	return buf.Bytes(), nil
}

func writeJSONLEntry(zw *zip.Writer, name string, lines [][]byte) error {
	w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Store})
	if err != nil {
		return fmt.Errorf("create entry %s: %w", name, err)
	}

	for _, line := range lines {
		if _, err := w.Write(line); err != nil {
			return fmt.Errorf("write entry %s: %w", name, err)
		}

		if _, err := w.Write([]byte("\n")); err != nil {
			return fmt.Errorf("write entry %s: %w", name, err)
		}
	}

	return nil
}

func writeRawEntry(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Store})
	if err != nil {
		return fmt.Errorf("create entry %s: %w", name, err)
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write entry %s: %w", name, err)
	}

	return nil
}
