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
	hostURLEnvKey        = "TRANSFORMER_HOST_URL"
	hostURLFlagUsage     = "URL to run the transformer-server instance on. Format: HostName:Port. " +
		commonEnvVarUsageText + hostURLEnvKey

	tlsCertificateFlagName  = "tls-certificate"
	tlsCertificateEnvKey    = "TRANSFORMER_TLS_CERTIFICATE"
	tlsCertificateFlagUsage = "TLS certificate for the transformer-server. " + commonEnvVarUsageText + tlsCertificateEnvKey

	tlsKeyFlagName  = "tls-key"
	tlsKeyEnvKey    = "TRANSFORMER_TLS_KEY"
	tlsKeyFlagUsage = "TLS key for the transformer-server. " + commonEnvVarUsageText + tlsKeyEnvKey

	tokenFlagName  = "token"
	tokenEnvKey    = "TRANSFORMER_TOKEN" //nolint:gosec
	tokenFlagUsage = "Bearer token required for REST requests to the transformer-server. " +
		commonEnvVarUsageText + tokenEnvKey

	databaseTypeFlagName      = "database-type"
	databaseTypeFlagShorthand = "t"
	databaseTypeEnvKey        = "TRANSFORMER_DATABASE_TYPE"
	databaseTypeFlagUsage     = "The type of database to use for storage of checkpoint and term data. " +
		"Supported options: mem, mongodb. " + commonEnvVarUsageText + databaseTypeEnvKey

	databaseURLFlagName      = "database-url"
	databaseURLFlagShorthand = "v"
	databaseURLEnvKey        = "TRANSFORMER_DATABASE_URL"
	databaseURLFlagUsage     = "The URL (or connection string) of the database. Not needed if using mem. " +
		commonEnvVarUsageText + databaseURLEnvKey

	sourceAddressFlagName  = "source-address"
	sourceAddressEnvKey    = "TRANSFORMER_SOURCE_ADDRESS"
	sourceAddressFlagUsage = "Address of the attestation indexer to subscribe to. " +
		commonEnvVarUsageText + sourceAddressEnvKey

	schemaIDsFlagName  = "schema-ids"
	schemaIDsEnvKey    = "TRANSFORMER_SCHEMA_IDS"
	schemaIDsFlagUsage = "Comma-separated list of credential schema ids to dispatch into terms. " +
		"Empty means every schema id is dispatched. " + commonEnvVarUsageText + schemaIDsEnvKey

	syncIntervalFlagName  = "sync-interval"
	syncIntervalEnvKey    = "TRANSFORMER_SYNC_INTERVAL"
	syncIntervalFlagUsage = "How often to poll the indexer for new events. " + commonEnvVarUsageText + syncIntervalEnvKey

	syncBatchSizeFlagName  = "sync-batch-size"
	syncBatchSizeEnvKey    = "TRANSFORMER_SYNC_BATCH_SIZE"
	syncBatchSizeFlagUsage = "Maximum number of indexer events pulled per sync. " +
		commonEnvVarUsageText + syncBatchSizeEnvKey

	logLevelFlagName      = "log-level"
	logLevelFlagShorthand = "l"
	logLevelEnvKey        = "TRANSFORMER_LOG_LEVEL"
	logLevelFlagUsage     = "Logging level. Supported options: CRITICAL, ERROR, WARNING, INFO, DEBUG. " +
		commonEnvVarUsageText + logLevelEnvKey

	maintenanceModeFlagName  = "maintenance-mode"
	maintenanceModeEnvKey    = "TRANSFORMER_MAINTENANCE_MODE"
	maintenanceModeFlagUsage = "Start in maintenance mode: the indexer sync loop stays paused and the " +
		"health check reports OK regardless of collaborator status. " + commonEnvVarUsageText + maintenanceModeEnvKey

	logLevelsWriteTokenFlagName  = "loglevels-write-token"
	logLevelsWriteTokenEnvKey    = "TRANSFORMER_LOGLEVELS_WRITE_TOKEN" //nolint:gosec
	logLevelsWriteTokenFlagUsage = "Bearer token required to POST new log levels to /loglevels, distinct from " +
		"--token. Empty leaves the write endpoint open. " + commonEnvVarUsageText + logLevelsWriteTokenEnvKey
)

const (
	defaultSyncInterval  = 10 * time.Second
	defaultSyncBatchSize = 1000
)

// parameters collects every value the start command needs, resolved from flags or environment
// variables.
type parameters struct {
	hostURL             string
	tlsCertificate      string
	tlsKey              string
	token               string
	databaseType        string
	databaseURL         string
	sourceAddress       string
	schemaIDs           []string
	syncInterval        time.Duration
	syncBatchSize       uint64
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

	sourceAddress, err := cmdutil.GetUserSetVarFromString(cmd, sourceAddressFlagName, sourceAddressEnvKey, false)
	if err != nil {
		return nil, err
	}

	schemaIDs := cmdutil.GetUserSetOptionalVarFromArrayString(cmd, schemaIDsFlagName, schemaIDsEnvKey)

	syncInterval, err := cmdutil.GetDuration(cmd, syncIntervalFlagName, syncIntervalEnvKey, defaultSyncInterval)
	if err != nil {
		return nil, err
	}

	syncBatchSize, err := cmdutil.GetUInt64(cmd, syncBatchSizeFlagName, syncBatchSizeEnvKey, defaultSyncBatchSize)
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
		sourceAddress:       sourceAddress,
		schemaIDs:           schemaIDs,
		syncInterval:        syncInterval,
		syncBatchSize:       syncBatchSize,
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
	startCmd.Flags().String(sourceAddressFlagName, "", sourceAddressFlagUsage)
	startCmd.Flags().StringArray(schemaIDsFlagName, []string{}, schemaIDsFlagUsage)
	startCmd.Flags().String(syncIntervalFlagName, "", syncIntervalFlagUsage)
	startCmd.Flags().String(syncBatchSizeFlagName, "", syncBatchSizeFlagUsage)
	startCmd.Flags().StringP(logLevelFlagName, logLevelFlagShorthand, "", logLevelFlagUsage)
	startCmd.Flags().String(maintenanceModeFlagName, "", maintenanceModeFlagUsage)
	startCmd.Flags().String(logLevelsWriteTokenFlagName, "", logLevelsWriteTokenFlagUsage)
}
