/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package startcmd implements the combiner-server's "start" subcommand: it pulls the
// transformer's term stream into the combiner's sparse local-trust matrices and serves the
// DID mapping and local-trust reads the score computer drains.
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
	"github.com/karma3labs/eigentrust-pipeline/pkg/combiner"
	"github.com/karma3labs/eigentrust-pipeline/pkg/combiner/store"
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

var logger = tlog.New("combiner-server")

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

// GetStartCmd returns the Cobra start command.
func GetStartCmd() *cobra.Command {
	startCmd := createStartCmd()

	createFlags(startCmd)

	return startCmd
}

func createStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start combiner-server",
		Long:  "Start combiner-server",
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

	// The transformer's term store is opened read-only here (TermStream never touches
	// SyncIndexer's own indexer/checkpoint collaborators), against the same storage provider
	// the transformer-server process writes to, so the two processes share the term stream.
	termStore, err := transformer.NewTermManager(provider)
	if err != nil {
		return err
	}

	transformerCheckpoints, err := transformer.NewCheckpointManager(provider)
	if err != nil {
		return err
	}

	termSource := transformer.New(transformer.Config{}, memindexer.New(), transformerCheckpoints, termStore)

	index, err := store.NewIndexManager(provider)
	if err != nil {
		return err
	}

	mapping, err := store.NewMappingManager(provider)
	if err != nil {
		return err
	}

	item, err := store.NewItemManager(provider)
	if err != nil {
		return err
	}

	update, err := store.NewUpdateManager(provider)
	if err != nil {
		return err
	}

	checkpoint, err := store.NewCheckpointManager(provider)
	if err != nil {
		return err
	}

	comb := combiner.New(index, mapping, item, update, checkpoint)

	termOffset, err := newTermOffsetCheckpoint(provider)
	if err != nil {
		return err
	}

	stopSync := make(chan struct{})

	syncLoop := lifecycle.New("combiner-sync",
		lifecycle.WithStart(func() {
			if params.maintenanceMode {
				logger.Info("combiner-server started in maintenance mode, sync loop stays paused")

				return
			}

			go runSyncLoop(comb, termSource, termOffset, params.syncInterval, uint32(params.syncBatchSize), stopSync) //nolint:gosec
		}),
		lifecycle.WithStop(func() {
			close(stopSync)
		}),
	)

	syncLoop.Start()

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

	logger.Info("combiner-server started")

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, syscall.SIGINT, syscall.SIGTERM)
	<-interrupt

	syncLoop.Stop()

	if err := ps.Close(); err != nil {
		logger.Warn("close pub/sub failed", tlog.WithError(err))
	}

	return httpSrv.Stop(context.Background())
}

func runSyncLoop(
	comb *combiner.Service,
	termSource *transformer.Service,
	offset *termOffsetCheckpoint,
	interval time.Duration,
	batchSize uint32,
	stop <-chan struct{},
) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := syncOnce(comb, termSource, offset, batchSize); err != nil {
				logger.Warn("sync transformer failed", tlog.WithError(err))
			}
		case <-stop:
			return
		}
	}
}

func syncOnce(
	comb *combiner.Service, termSource *transformer.Service, offset *termOffsetCheckpoint, batchSize uint32,
) error {
	next, err := offset.read()
	if err != nil {
		return err
	}

	terms, err := termSource.TermStream(next, batchSize)
	if err != nil {
		return err
	}

	if len(terms) == 0 {
		return nil
	}

	if err := comb.SyncTransformer(context.Background(), terms); err != nil {
		return err
	}

	return offset.write(next + uint32(len(terms)))
}
