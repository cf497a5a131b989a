/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package startcmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/karma3labs/eigentrust-pipeline/internal/pkg/cmdutil"
	"github.com/karma3labs/eigentrust-pipeline/internal/pkg/storageprovider"
)

const commonEnvVarUsageText = "Alternatively, this can be set with the following environment variable: "

const (
	hostURLFlagName      = "host-url"
	hostURLFlagShorthand = "u"
	hostURLEnvKey        = "SCORE_COMPUTER_HOST_URL"
	hostURLFlagUsage     = "URL to run the score-computer instance on. Format: HostName:Port. " +
		commonEnvVarUsageText + hostURLEnvKey

	tlsCertificateFlagName  = "tls-certificate"
	tlsCertificateEnvKey    = "SCORE_COMPUTER_TLS_CERTIFICATE"
	tlsCertificateFlagUsage = "TLS certificate for the score-computer. " + commonEnvVarUsageText + tlsCertificateEnvKey

	tlsKeyFlagName  = "tls-key"
	tlsKeyEnvKey    = "SCORE_COMPUTER_TLS_KEY"
	tlsKeyFlagUsage = "TLS key for the score-computer. " + commonEnvVarUsageText + tlsKeyEnvKey

	tokenFlagName  = "token"
	tokenEnvKey    = "SCORE_COMPUTER_TOKEN" //nolint:gosec
	tokenFlagUsage = "Bearer token required for REST requests to the score-computer. " +
		commonEnvVarUsageText + tokenEnvKey

	databaseTypeFlagName      = "database-type"
	databaseTypeFlagShorthand = "t"
	databaseTypeEnvKey        = "SCORE_COMPUTER_DATABASE_TYPE"
	databaseTypeFlagUsage     = "The type of database to use for the combiner data this process reads from. " +
		"Must match the combiner-server's database. Supported options: mem, mongodb. " +
		commonEnvVarUsageText + databaseTypeEnvKey

	databaseURLFlagName      = "database-url"
	databaseURLFlagShorthand = "v"
	databaseURLEnvKey        = "SCORE_COMPUTER_DATABASE_URL"
	databaseURLFlagUsage     = "The URL (or connection string) of the database. Not needed if using mem. " +
		commonEnvVarUsageText + databaseURLEnvKey

	alphaFlagName  = "alpha"
	alphaEnvKey    = "SCORE_COMPUTER_ALPHA"
	alphaFlagUsage = "EigenTrust pre-trust weighting factor, in [0,1]. " + commonEnvVarUsageText + alphaEnvKey

	epsilonFlagName  = "epsilon"
	epsilonEnvKey    = "SCORE_COMPUTER_EPSILON"
	epsilonFlagUsage = "EigenTrust power-iteration L1 convergence threshold. " + commonEnvVarUsageText + epsilonEnvKey

	maxIterationsFlagName  = "max-iterations"
	maxIterationsEnvKey    = "SCORE_COMPUTER_MAX_ITERATIONS"
	maxIterationsFlagUsage = "Maximum EigenTrust power-iteration round count. " +
		commonEnvVarUsageText + maxIterationsEnvKey

	intervalFlagName  = "interval"
	intervalEnvKey    = "SCORE_COMPUTER_INTERVAL"
	intervalFlagUsage = "Compute barrier tick-window width, in milliseconds. " + commonEnvVarUsageText + intervalEnvKey

	statusSchemaIDFlagName  = "status-schema-id"
	statusSchemaIDEnvKey    = "SCORE_COMPUTER_STATUS_SCHEMA_ID"
	statusSchemaIDFlagUsage = "Indexer schema id carrying snap endorse/dispute status credentials. " +
		"Empty disables artifact-score ingestion. " + commonEnvVarUsageText + statusSchemaIDEnvKey

	issuerIDFlagName  = "issuer-id"
	issuerIDEnvKey    = "SCORE_COMPUTER_ISSUER_ID"
	issuerIDFlagUsage = "DID this process signs emitted trust score credentials with. " +
		commonEnvVarUsageText + issuerIDEnvKey

	archiveDirFlagName  = "archive-dir"
	archiveDirEnvKey    = "SCORE_COMPUTER_ARCHIVE_DIR"
	archiveDirFlagUsage = "Directory each domain's score archive zip is written to. " +
		commonEnvVarUsageText + archiveDirEnvKey

	runIntervalFlagName  = "run-interval"
	runIntervalEnvKey    = "SCORE_COMPUTER_RUN_INTERVAL"
	runIntervalFlagUsage = "How often each domain's control loop iterates. " + commonEnvVarUsageText + runIntervalEnvKey

	logLevelFlagName      = "log-level"
	logLevelFlagShorthand = "l"
	logLevelEnvKey        = "SCORE_COMPUTER_LOG_LEVEL"
	logLevelFlagUsage     = "Logging level. Supported options: CRITICAL, ERROR, WARNING, INFO, DEBUG. " +
		commonEnvVarUsageText + logLevelEnvKey

	maintenanceModeFlagName  = "maintenance-mode"
	maintenanceModeEnvKey    = "SCORE_COMPUTER_MAINTENANCE_MODE"
	maintenanceModeFlagUsage = "Start in maintenance mode: every domain's control loop stays paused and the " +
		"health check reports OK regardless of collaborator status. " + commonEnvVarUsageText + maintenanceModeEnvKey

	logLevelsWriteTokenFlagName  = "loglevels-write-token"
	logLevelsWriteTokenEnvKey    = "SCORE_COMPUTER_LOGLEVELS_WRITE_TOKEN" //nolint:gosec
	logLevelsWriteTokenFlagUsage = "Bearer token required to POST new log levels to /loglevels, distinct from " +
		"--token. Empty leaves the write endpoint open. " + commonEnvVarUsageText + logLevelsWriteTokenEnvKey
)

const (
	defaultAlpha         = 0.5
	defaultEpsilon       = 1e-6
	defaultMaxIterations = 50
	defaultInterval      = uint64(86_400_000) // one day, in milliseconds
	defaultRunInterval   = time.Minute
	defaultArchiveDir    = "."
)

type parameters struct {
	hostURL             string
	tlsCertificate      string
	tlsKey              string
	token               string
	databaseType        string
	databaseURL         string
	alpha               float64
	epsilon             float64
	maxIterations       int
	interval            uint64
	statusSchemaID      string
	issuerID            string
	archiveDir          string
	runInterval         time.Duration
	logLevel            string
	maintenanceMode     bool
	logLevelsWriteToken string
}

func getParameters(cmd *cobra.Command) (*parameters, error) {
	hostURL, err := cmdutil.GetUserSetVarFromString(cmd, hostURLFlagName, hostURLEnvKey, false)
	if err != nil {
		return nil, err
	}

	tlsCertificate := cmdutil.GetUserSetOptionalVarFromString(cmd, tlsCertificateFlagName, tlsCertificateEnvKey)
	tlsKey := cmdutil.GetUserSetOptionalVarFromString(cmd, tlsKeyFlagName, tlsKeyEnvKey)
	token := cmdutil.GetUserSetOptionalVarFromString(cmd, tokenFlagName, tokenEnvKey)

	databaseType, err := cmdutil.GetUserSetVarFromString(cmd, databaseTypeFlagName, databaseTypeEnvKey, true)
	if err != nil {
		return nil, err
	}

	if databaseType == "" {
		databaseType = storageprovider.TypeMem
	}

	databaseURL := cmdutil.GetUserSetOptionalVarFromString(cmd, databaseURLFlagName, databaseURLEnvKey)

	alpha, err := cmdutil.GetFloat(cmd, alphaFlagName, alphaEnvKey, defaultAlpha)
	if err != nil {
		return nil, err
	}

	epsilon, err := cmdutil.GetFloat(cmd, epsilonFlagName, epsilonEnvKey, defaultEpsilon)
	if err != nil {
		return nil, err
	}

	maxIterations, err := cmdutil.GetInt(cmd, maxIterationsFlagName, maxIterationsEnvKey, defaultMaxIterations)
	if err != nil {
		return nil, err
	}

	interval, err := cmdutil.GetUInt64(cmd, intervalFlagName, intervalEnvKey, defaultInterval)
	if err != nil {
		return nil, err
	}

	statusSchemaID := cmdutil.GetUserSetOptionalVarFromString(cmd, statusSchemaIDFlagName, statusSchemaIDEnvKey)

	issuerID, err := cmdutil.GetUserSetVarFromString(cmd, issuerIDFlagName, issuerIDEnvKey, false)
	if err != nil {
		return nil, err
	}

	archiveDir := cmdutil.GetUserSetOptionalVarFromString(cmd, archiveDirFlagName, archiveDirEnvKey)
	if archiveDir == "" {
		archiveDir = defaultArchiveDir
	}

	runInterval, err := cmdutil.GetDuration(cmd, runIntervalFlagName, runIntervalEnvKey, defaultRunInterval)
	if err != nil {
		return nil, err
	}

	logLevel := cmdutil.GetUserSetOptionalVarFromString(cmd, logLevelFlagName, logLevelEnvKey)

	maintenanceMode, err := cmdutil.GetBool(cmd, maintenanceModeFlagName, maintenanceModeEnvKey, false)
	if err != nil {
		return nil, err
	}

	logLevelsWriteToken := cmdutil.GetUserSetOptionalVarFromString(cmd, logLevelsWriteTokenFlagName, logLevelsWriteTokenEnvKey)

	return &parameters{
		hostURL:             hostURL,
		tlsCertificate:      tlsCertificate,
		tlsKey:              tlsKey,
		token:               token,
		databaseType:        databaseType,
		databaseURL:         databaseURL,
		alpha:               alpha,
		epsilon:             epsilon,
		maxIterations:       maxIterations,
		interval:            interval,
		statusSchemaID:      statusSchemaID,
		issuerID:            issuerID,
		archiveDir:          archiveDir,
		runInterval:         runInterval,
		logLevel:            logLevel,
		maintenanceMode:     maintenanceMode,
		logLevelsWriteToken: logLevelsWriteToken,
	}, nil
}

func createFlags(startCmd *cobra.Command) {
	startCmd.Flags().StringP(hostURLFlagName, hostURLFlagShorthand, "", hostURLFlagUsage)
	startCmd.Flags().String(tlsCertificateFlagName, "", tlsCertificateFlagUsage)
	startCmd.Flags().String(tlsKeyFlagName, "", tlsKeyFlagUsage)
	startCmd.Flags().String(tokenFlagName, "", tokenFlagUsage)
	startCmd.Flags().StringP(databaseTypeFlagName, databaseTypeFlagShorthand, "", databaseTypeFlagUsage)
	startCmd.Flags().StringP(databaseURLFlagName, databaseURLFlagShorthand, "", databaseURLFlagUsage)
	startCmd.Flags().String(alphaFlagName, "", alphaFlagUsage)
	startCmd.Flags().String(epsilonFlagName, "", epsilonFlagUsage)
	startCmd.Flags().String(maxIterationsFlagName, "", maxIterationsFlagUsage)
	startCmd.Flags().String(intervalFlagName, "", intervalFlagUsage)
	startCmd.Flags().String(statusSchemaIDFlagName, "", statusSchemaIDFlagUsage)
	startCmd.Flags().String(issuerIDFlagName, "", issuerIDFlagUsage)
	startCmd.Flags().String(archiveDirFlagName, "", archiveDirFlagUsage)
	startCmd.Flags().String(runIntervalFlagName, "", runIntervalFlagUsage)
	startCmd.Flags().StringP(logLevelFlagName, logLevelFlagShorthand, "", logLevelFlagUsage)
	startCmd.Flags().String(maintenanceModeFlagName, "", maintenanceModeFlagUsage)
	startCmd.Flags().String(logLevelsWriteTokenFlagName, "", logLevelsWriteTokenFlagUsage)
}
