/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package startcmd implements the transformer-server's "start" subcommand: it wires the
// attestation transformer against its storage and indexer collaborators, exposes a REST
// surface for health and metrics, and drives the sync loop on a fixed interval.
package startcmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	tlog "github.com/trustbloc/logutil-go/pkg/log"

	"github.com/karma3labs/eigentrust-pipeline/internal/pkg/storageprovider"
	"github.com/karma3labs/eigentrust-pipeline/pkg/collab/memindexer"
	"github.com/karma3labs/eigentrust-pipeline/pkg/healthcheck"
	"github.com/karma3labs/eigentrust-pipeline/pkg/httpserver"
	"github.com/karma3labs/eigentrust-pipeline/pkg/httpserver/auth"
	"github.com/karma3labs/eigentrust-pipeline/pkg/httpserver/maintenance"
	"github.com/karma3labs/eigentrust-pipeline/pkg/lifecycle"
	"github.com/karma3labs/eigentrust-pipeline/pkg/metrics"
	"github.com/karma3labs/eigentrust-pipeline/pkg/observability/loglevels"
	"github.com/karma3labs/eigentrust-pipeline/pkg/pubsub/mempubsub"
	"github.com/karma3labs/eigentrust-pipeline/pkg/transformer"
)

const logLevelsWriteTokenID = "loglevels-write"

// loglevelsWriteHandler gates POST /loglevels behind its own bearer token (kept separate from
// --token so log-level changes can be authorized independently of the rest of the REST surface)
// and, in maintenance mode, returns 503 instead of applying the change.
func loglevelsWriteHandler(params *parameters) httpserver.Handler {
	wrapped := auth.NewHandlerWrapper(auth.Config{
		AuthTokensDef: []*auth.TokenDef{
			{EndpointExpression: "^/loglevels$", WriteTokens: []string{logLevelsWriteTokenID}},
		},
		AuthTokens: map[string]string{logLevelsWriteTokenID: params.logLevelsWriteToken},
	}, loglevels.NewWriteHandler())

	if params.maintenanceMode {
		return maintenance.NewMaintenanceWrapper(wrapped)
	}

	return wrapped
}

var logger = tlog.New("transformer-server")

// GetStartCmd returns the Cobra start command.
func GetStartCmd() *cobra.Command {
	startCmd := createStartCmd()

	createFlags(startCmd)

	return startCmd
}

func createStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start transformer-server",
		Long:  "Start transformer-server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			params, err := getParameters(cmd)
			if err != nil {
				return err
			}

			return startServices(params)
		},
	}
}

func startServices(params *parameters) error {
	if params.logLevel != "" {
		if err := tlog.SetSpec(params.logLevel); err != nil {
			return err
		}
	}

	provider, err := storageprovider.New(storageprovider.Params{
		Type: params.databaseType,
		URL:  params.databaseURL,
	})
	if err != nil {
		return err
	}

	checkpoints, err := transformer.NewCheckpointManager(provider)
	if err != nil {
		return err
	}

	terms, err := transformer.NewTermManager(provider)
	if err != nil {
		return err
	}

	// No external indexer client exists in this module yet (see DESIGN.md), so the
	// in-process fake stands in for it. A real deployment would dial an indexer service here
	// instead.
	indexer := memindexer.New()

	svc := transformer.New(transformer.Config{
		SourceAddress: params.sourceAddress,
		SchemaIDs:     params.schemaIDs,
	}, indexer, checkpoints, terms)

	stopSync := make(chan struct{})

	syncLoop := lifecycle.New("transformer-sync",
		lifecycle.WithStart(func() {
			if params.maintenanceMode {
				logger.Info("transformer-server started in maintenance mode, sync loop stays paused")

				return
			}

			go runSyncLoop(svc, params.syncInterval, uint32(params.syncBatchSize), stopSync) //nolint:gosec
		}),
		lifecycle.WithStop(func() {
			close(stopSync)
		}),
	)

	syncLoop.Start()

	// This process has no cross-service transport of its own (SyncIndexer pulls from the
	// indexer and writes through to storage directly), so the bus only backs the health check's
	// collaborator-status report, the same role it plays in every other cmd/ binary.
	ps := mempubsub.New(mempubsub.DefaultConfig())

	httpSrv := httpserver.New(
		params.hostURL,
		params.tlsCertificate,
		params.tlsKey,
		params.token,
		healthcheck.NewHandler(ps, nil, params.maintenanceMode),
		metrics.NewHandler(),
		loglevels.NewReadHandler(),
		loglevelsWriteHandler(params),
	)

	if err := httpSrv.Start(); err != nil {
		return err
	}

	logger.Info("transformer-server started")

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, syscall.SIGINT, syscall.SIGTERM)
	<-interrupt

	syncLoop.Stop()

	if err := ps.Close(); err != nil {
		logger.Warn("close pub/sub failed", tlog.WithError(err))
	}

	return httpSrv.Stop(context.Background())
}

func runSyncLoop(svc *transformer.Service, interval time.Duration, batchSize uint32, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, _, err := svc.SyncIndexer(context.Background(), batchSize); err != nil {
				logger.Warn("sync indexer failed", tlog.WithError(err))
			}
		case <-stop:
			return
		}
	}
}
