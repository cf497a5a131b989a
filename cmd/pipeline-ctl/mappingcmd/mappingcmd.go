/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package mappingcmd implements the "mapping" pipeline-ctl command: it lists the DID assigned
// to each peer index in a combiner-server's storage, read directly against the same storage
// provider the combiner-server process itself opens.
package mappingcmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/karma3labs/eigentrust-pipeline/internal/pkg/cmdutil"
	"github.com/karma3labs/eigentrust-pipeline/internal/pkg/storageprovider"
	"github.com/karma3labs/eigentrust-pipeline/pkg/combiner/store"
)

const (
	databaseTypeFlagName  = "database-type"
	databaseTypeEnvKey    = "PIPELINE_CTL_DATABASE_TYPE"
	databaseTypeFlagUsage = "The type of database the combiner-server uses. Supported options: mem, mongodb. " +
		"Alternatively, this can be set with the following environment variable: " + databaseTypeEnvKey

	databaseURLFlagName  = "database-url"
	databaseURLEnvKey    = "PIPELINE_CTL_DATABASE_URL"
	databaseURLFlagUsage = "The URL (or connection string) of the database. Not needed if using mem. " +
		"Alternatively, this can be set with the following environment variable: " + databaseURLEnvKey

	startFlagName  = "start"
	startEnvKey    = "PIPELINE_CTL_MAPPING_START"
	startFlagUsage = "Peer index to start listing from. " +
		"Alternatively, this can be set with the following environment variable: " + startEnvKey

	sizeFlagName  = "size"
	sizeEnvKey    = "PIPELINE_CTL_MAPPING_SIZE"
	sizeFlagUsage = "Maximum number of mapping entries to list. " +
		"Alternatively, this can be set with the following environment variable: " + sizeEnvKey
)

const defaultSize = 100

// GetCmd returns the Cobra mapping command.
func GetCmd() *cobra.Command {
	cmd := cmd()

	createFlags(cmd)

	return cmd
}

func cmd() *cobra.Command {
	return &cobra.Command{
		Use:          "mapping",
		Short:        "List DID-to-peer-index mappings",
		Long:         "Lists the DID assigned to each peer index recorded by a combiner-server.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return execute(cmd)
		},
	}
}

func execute(cmd *cobra.Command) error {
	databaseType, err := cmdutil.GetUserSetVarFromString(cmd, databaseTypeFlagName, databaseTypeEnvKey, true)
	if err != nil {
		return err
	}

	if databaseType == "" {
		databaseType = storageprovider.TypeMem
	}

	databaseURL := cmdutil.GetUserSetOptionalVarFromString(cmd, databaseURLFlagName, databaseURLEnvKey)

	start, err := cmdutil.GetUInt64(cmd, startFlagName, startEnvKey, 0)
	if err != nil {
		return err
	}

	size, err := cmdutil.GetUInt64(cmd, sizeFlagName, sizeEnvKey, defaultSize)
	if err != nil {
		return err
	}

	provider, err := storageprovider.New(storageprovider.Params{Type: databaseType, URL: databaseURL})
	if err != nil {
		return err
	}

	mapping, err := store.NewMappingManager(provider)
	if err != nil {
		return err
	}

	entries, err := mapping.ReadMappings(uint32(start), uint32(size)) //nolint:gosec
	if err != nil {
		return err
	}

	for _, entry := range entries {
		fmt.Printf("%d\t%s\n", entry.Index, entry.DID)
	}

	return nil
}

func createFlags(cmd *cobra.Command) {
	cmd.Flags().StringP(databaseTypeFlagName, "t", "", databaseTypeFlagUsage)
	cmd.Flags().StringP(databaseURLFlagName, "v", "", databaseURLFlagUsage)
	cmd.Flags().String(startFlagName, "", startFlagUsage)
	cmd.Flags().String(sizeFlagName, "", sizeFlagUsage)
}
