/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package archivecmd implements the "archive" pipeline-ctl command: it inspects a score archive
// zip written by scorecompute.FileArchiveSink, printing its manifest and the peer/snap score
// lines it carries.
package archivecmd

import (
	"archive/zip"
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/karma3labs/eigentrust-pipeline/internal/pkg/cmdutil"
)

const (
	fileFlagName  = "file"
	fileEnvKey    = "PIPELINE_CTL_ARCHIVE_FILE"
	fileFlagUsage = "Path to a domain score archive zip. " +
		"Alternatively, this can be set with the following environment variable: " + fileEnvKey

	verboseFlagName  = "verbose"
	verboseEnvKey    = "PIPELINE_CTL_ARCHIVE_VERBOSE"
	verboseFlagUsage = "Print every peer/snap score line instead of just the counts. " +
		"Alternatively, this can be set with the following environment variable: " + verboseEnvKey
)

const (
	manifestEntryName = "MANIFEST.json"
	peerScoresEntry   = "peer_scores.jsonl"
	snapScoresEntry   = "snap_scores.jsonl"
)

// GetCmd returns the Cobra archive command.
func GetCmd() *cobra.Command {
	cmd := cmd()

	createFlags(cmd)

	return cmd
}

func cmd() *cobra.Command {
	return &cobra.Command{
		Use:          "archive",
		Short:        "Inspect a score archive",
		Long:         "Prints the manifest and peer/snap score entries of a score archive zip.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return execute(cmd)
		},
	}
}

func execute(cmd *cobra.Command) error {
	file, err := cmdutil.GetUserSetVarFromString(cmd, fileFlagName, fileEnvKey, false)
	if err != nil {
		return err
	}

	verbose, err := cmdutil.GetBool(cmd, verboseFlagName, verboseEnvKey, false)
	if err != nil {
		return err
	}

	zr, err := zip.OpenReader(file)
	if err != nil {
		return fmt.Errorf("open archive %s: %w", file, err)
	}
	defer zr.Close() //nolint:errcheck

	entries := make(map[string][]byte, len(zr.File))

	for _, f := range zr.File {
		data, err := readZipEntry(f)
		if err != nil {
			return fmt.Errorf("read entry %s: %w", f.Name, err)
		}

		entries[f.Name] = data
	}

	if manifest, ok := entries[manifestEntryName]; ok {
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, manifest, "", "  "); err != nil {
			return fmt.Errorf("parse manifest: %w", err)
		}

		fmt.Println(pretty.String())
	}

	printEntry("peer scores", entries[peerScoresEntry], verbose)
	printEntry("snap scores", entries[snapScoresEntry], verbose)

	return nil
}

func readZipEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close() //nolint:errcheck

	return io.ReadAll(rc)
}

func printEntry(label string, data []byte, verbose bool) {
	lines := countNonEmptyLines(data)

	fmt.Printf("%s: %d\n", label, lines)

	if verbose && len(data) > 0 {
		fmt.Print(string(data))
	}
}

func countNonEmptyLines(data []byte) int {
	count := 0

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		if len(scanner.Bytes()) > 0 {
			count++
		}
	}

	return count
}

func createFlags(cmd *cobra.Command) {
	cmd.Flags().StringP(fileFlagName, "f", "", fileFlagUsage)
	cmd.Flags().String(verboseFlagName, "", verboseFlagUsage)
}
