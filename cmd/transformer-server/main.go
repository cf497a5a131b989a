/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"github.com/spf13/cobra"
	"github.com/trustbloc/logutil-go/pkg/log"

	"github.com/karma3labs/eigentrust-pipeline/cmd/transformer-server/startcmd"
)

var logger = log.New("transformer-server")

func main() {
	rootCmd := &cobra.Command{
		Use: "transformer-server",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.HelpFunc()(cmd, args)
		},
	}

	rootCmd.AddCommand(startcmd.GetStartCmd())

	if err := rootCmd.Execute(); err != nil {
		logger.Fatal("Failed to run transformer-server.", log.WithError(err))
	}
}
