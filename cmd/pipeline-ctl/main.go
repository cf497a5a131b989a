/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"github.com/spf13/cobra"
	"github.com/trustbloc/logutil-go/pkg/log"

	"github.com/karma3labs/eigentrust-pipeline/cmd/pipeline-ctl/archivecmd"
	"github.com/karma3labs/eigentrust-pipeline/cmd/pipeline-ctl/mappingcmd"
)

var logger = log.New("pipeline-ctl")

func main() {
	rootCmd := &cobra.Command{
		Use: "pipeline-ctl",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.HelpFunc()(cmd, args)
		},
	}

	rootCmd.AddCommand(mappingcmd.GetCmd())
	rootCmd.AddCommand(archivecmd.GetCmd())

	if err := rootCmd.Execute(); err != nil {
		logger.Fatal("Failed to run pipeline-ctl.", log.WithError(err))
	}
}
