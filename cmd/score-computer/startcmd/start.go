/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package startcmd implements the score-computer's "start" subcommand: it wires one
// scorecompute.Service per scoring domain against the combiner's local-trust data and the
// EigenTrust compute collaborator, driving each domain's control loop on its own ticker.
package startcmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hyperledger/aries-framework-go/spi/storage"
	"github.com/spf13/cobra"
	tlog "github.com/trustbloc/logutil-go/pkg/log"

	logfields "github.com/karma3labs/eigentrust-pipeline/internal/pkg/log"
	"github.com/karma3labs/eigentrust-pipeline/internal/pkg/storageprovider"
	"github.com/karma3labs/eigentrust-pipeline/pkg/collab/memindexer"
	"github.com/karma3labs/eigentrust-pipeline/pkg/collab/memtrust"
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
	"github.com/karma3labs/eigentrust-pipeline/pkg/scorecompute"
	"github.com/karma3labs/eigentrust-pipeline/pkg/term"
)

var logger = tlog.New("score-computer")

// domains lists the scoring domains this process runs a control loop for.
var domains = []term.Domain{term.DomainDevelopment, term.DomainSecurity} //nolint:gochecknoglobals

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
		Short: "Start score-computer",
		Long:  "Start score-computer",
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

	comb, err := newCombinerReader(provider)
	if err != nil {
		return err
	}

	// No real EigenTrust compute collaborator or indexer client exists anywhere in this
	// module (see DESIGN.md); a single in-process fake backs every domain's Service.
	trust := memtrust.New()
	indexer := memindexer.New()

	sink := scorecompute.FileArchiveSink{Dir: params.archiveDir}

	stopByDomain := make(map[term.Domain]chan struct{}, len(domains))

	svcLifecycle := lifecycle.New("score-compute",
		lifecycle.WithStart(func() {
			if params.maintenanceMode {
				logger.Info("score-computer started in maintenance mode, domain loops stay paused")

				return
			}

			for _, domain := range domains {
				stop := make(chan struct{})
				stopByDomain[domain] = stop

				svc, err := newDomainService(params, domain, indexer, comb, trust, sink)
				if err != nil {
					logger.Error("failed to initialize domain service", tlog.WithError(err))

					continue
				}

				go runDomainLoop(svc, domain, params.runInterval, stop)
			}
		}),
		lifecycle.WithStop(func() {
			for _, stop := range stopByDomain {
				close(stop)
			}
		}),
	)

	svcLifecycle.Start()

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

	logger.Info("score-computer started")

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, syscall.SIGINT, syscall.SIGTERM)
	<-interrupt

	svcLifecycle.Stop()

	if err := ps.Close(); err != nil {
		logger.Warn("close pub/sub failed", tlog.WithError(err))
	}

	return httpSrv.Stop(context.Background())
}

// newCombinerReader opens the same five storage managers cmd/combiner-server uses, against the
// same storage provider, so this process reads the combiner's local-trust data and DID mapping
// as they are written. This process never calls SyncTransformer itself.
func newCombinerReader(provider storage.Provider) (*combiner.Service, error) {
	index, err := store.NewIndexManager(provider)
	if err != nil {
		return nil, err
	}

	mapping, err := store.NewMappingManager(provider)
	if err != nil {
		return nil, err
	}

	item, err := store.NewItemManager(provider)
	if err != nil {
		return nil, err
	}

	update, err := store.NewUpdateManager(provider)
	if err != nil {
		return nil, err
	}

	checkpoint, err := store.NewCheckpointManager(provider)
	if err != nil {
		return nil, err
	}

	return combiner.New(index, mapping, item, update, checkpoint), nil
}

func newDomainService(
	params *parameters,
	domain term.Domain,
	indexer *memindexer.Indexer,
	comb *combiner.Service,
	trust *memtrust.Service,
	sink scorecompute.ArchiveSink,
) (*scorecompute.Service, error) {
	cfg := scorecompute.Config{
		Domain:         domain,
		LocalTrustID:   "lt-" + domain.String(),
		PreTrustID:     "pt-" + domain.String(),
		GlobalTrustID:  "gt-" + domain.String(),
		Alpha:          params.alpha,
		Epsilon:        params.epsilon,
		MaxIterations:  params.maxIterations,
		Interval:       params.interval,
		StatusSchemaID: params.statusSchemaID,
		IssuerID:       params.issuerID,
	}

	svc := scorecompute.New(cfg, indexer, comb, trust.Matrix(), trust.Vector(), trust.Compute(), sink)

	if err := svc.Init(context.Background()); err != nil {
		return nil, err
	}

	return svc, nil
}

func runDomainLoop(svc *scorecompute.Service, domain term.Domain, interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := svc.RunOnce(context.Background()); err != nil {
				logger.Warn("run once failed", logfields.WithDomain(uint32(domain)), tlog.WithError(err))
			}
		case <-stop:
			return
		}
	}
}
