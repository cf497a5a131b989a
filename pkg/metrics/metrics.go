/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package metrics exposes the Prometheus metrics emitted by the transformer, combiner, and
// score-computer subsystems, plus the generic storage-timing metrics used by pkg/store/wrapper.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/trustbloc/logutil-go/pkg/log"
	"go.uber.org/zap"
)

const (
	namespace = "eigentrust"

	// Transformer.
	transformer                 = "transformer"
	transformerSyncTimeMetric   = "sync_indexer_seconds"
	transformerTermsEmitted     = "terms_emitted_total"
	transformerCredentialsSkip  = "credentials_skipped_total"
	transformerCheckpointMetric = "checkpoint_advance_total"

	// Combiner.
	combiner                  = "combiner"
	combinerItemUpdateMetric  = "item_update_seconds"
	combinerJournalDrainMetric = "journal_drain_seconds"
	combinerWindowReadMetric  = "window_read_seconds"

	// Score computer.
	scoreComputer               = "score_computer"
	scComputeBarrierMetric      = "compute_barrier_seconds"
	scArchiveWriteMetric        = "archive_write_seconds"
	scPeersScoredMetric         = "peers_scored_total"

	// Storage (used by the pkg/store/wrapper store wrapper).
	store             = "store"
	dbPutTimeMetric    = "put_seconds"
	dbGetTimeMetric    = "get_seconds"
	dbGetTagsMetric    = "get_tags_seconds"
	dbGetBulkMetric    = "get_bulk_seconds"
	dbQueryTimeMetric  = "query_seconds"
	dbDeleteTimeMetric = "delete_seconds"
	dbBatchTimeMetric  = "batch_seconds"
)

var logger = log.New("metrics") //nolint:gochecknoglobals

var (
	createOnce sync.Once //nolint:gochecknoglobals
	instance   *Metrics  //nolint:gochecknoglobals
)

// Metrics manages the metrics for the pipeline.
type Metrics struct {
	transformerSyncTime        prometheus.Histogram
	transformerTermsEmitted    prometheus.Counter
	transformerCredentialsSkip prometheus.Counter
	transformerCheckpointAdv   prometheus.Counter

	combinerItemUpdateTime  prometheus.Histogram
	combinerJournalDrainTime prometheus.Histogram
	combinerWindowReadTime  prometheus.Histogram

	scComputeBarrierTime prometheus.Histogram
	scArchiveWriteTime   prometheus.Histogram
	scPeersScored        prometheus.Counter

	dbPutTime     *prometheus.HistogramVec
	dbGetTime     *prometheus.HistogramVec
	dbGetTagsTime *prometheus.HistogramVec
	dbGetBulkTime *prometheus.HistogramVec
	dbQueryTime   *prometheus.HistogramVec
	dbDeleteTime  *prometheus.HistogramVec
	dbBatchTime   *prometheus.HistogramVec
}

// Get returns the pipeline's metrics provider.
func Get() *Metrics {
	createOnce.Do(func() {
		instance = newMetrics()
	})

	return instance
}

func newMetrics() *Metrics {
	m := &Metrics{
		transformerSyncTime:        newHistogram(transformer, transformerSyncTimeMetric, "Time to sync from the indexer and emit terms."),
		transformerTermsEmitted:    newCounter(transformer, transformerTermsEmitted, "Number of terms emitted by the transformer."),
		transformerCredentialsSkip: newCounter(transformer, transformerCredentialsSkip, "Number of credentials skipped due to parse/verification failure."),
		transformerCheckpointAdv:   newCounter(transformer, transformerCheckpointMetric, "Number of times the transformer checkpoint was advanced."),

		combinerItemUpdateTime:   newHistogram(combiner, combinerItemUpdateMetric, "Time to apply an update to a sparse matrix cell."),
		combinerJournalDrainTime: newHistogram(combiner, combinerJournalDrainMetric, "Time to drain the update journal for a GetNewData call."),
		combinerWindowReadTime:   newHistogram(combiner, combinerWindowReadMetric, "Time to read a window of historic data."),

		scComputeBarrierTime: newHistogram(scoreComputer, scComputeBarrierMetric, "Time spent computing scores at a window boundary."),
		scArchiveWriteTime:   newHistogram(scoreComputer, scArchiveWriteMetric, "Time to write the score archive (peer_scores.jsonl, snap_scores.jsonl, MANIFEST.json)."),
		scPeersScored:        newCounter(scoreComputer, scPeersScoredMetric, "Number of peers scored across all compute barriers."),

		dbPutTime:     newHistogramVec(store, dbPutTimeMetric, "Time to Put a value.", "db_type"),
		dbGetTime:     newHistogramVec(store, dbGetTimeMetric, "Time to Get a value.", "db_type"),
		dbGetTagsTime: newHistogramVec(store, dbGetTagsMetric, "Time to GetTags for a key.", "db_type"),
		dbGetBulkTime: newHistogramVec(store, dbGetBulkMetric, "Time to GetBulk a set of keys.", "db_type"),
		dbQueryTime:   newHistogramVec(store, dbQueryTimeMetric, "Time to run a Query.", "db_type"),
		dbDeleteTime:  newHistogramVec(store, dbDeleteTimeMetric, "Time to Delete a key.", "db_type"),
		dbBatchTime:   newHistogramVec(store, dbBatchTimeMetric, "Time to apply a Batch of operations.", "db_type"),
	}

	prometheus.MustRegister(
		m.transformerSyncTime, m.transformerTermsEmitted, m.transformerCredentialsSkip, m.transformerCheckpointAdv,
		m.combinerItemUpdateTime, m.combinerJournalDrainTime, m.combinerWindowReadTime,
		m.scComputeBarrierTime, m.scArchiveWriteTime, m.scPeersScored,
		m.dbPutTime, m.dbGetTime, m.dbGetTagsTime, m.dbGetBulkTime, m.dbQueryTime, m.dbDeleteTime, m.dbBatchTime,
	)

	return m
}

// SyncIndexerTime records the time it takes the transformer to sync the indexer and emit terms.
func (m *Metrics) SyncIndexerTime(value time.Duration) {
	m.transformerSyncTime.Observe(value.Seconds())

	logger.Debug("SyncIndexer time", zap.Duration("duration", value))
}

// IncrementTermsEmitted increments the number of terms emitted by the transformer.
func (m *Metrics) IncrementTermsEmitted(n int) {
	m.transformerTermsEmitted.Add(float64(n))
}

// IncrementCredentialsSkipped increments the number of credentials skipped by the transformer.
func (m *Metrics) IncrementCredentialsSkipped() {
	m.transformerCredentialsSkip.Inc()
}

// IncrementCheckpointAdvanced increments the number of times the transformer checkpoint advanced.
func (m *Metrics) IncrementCheckpointAdvanced() {
	m.transformerCheckpointAdv.Inc()
}

// ItemUpdateTime records the time it takes to apply an update to a sparse matrix cell.
func (m *Metrics) ItemUpdateTime(value time.Duration) {
	m.combinerItemUpdateTime.Observe(value.Seconds())
}

// JournalDrainTime records the time it takes to drain the update journal for a GetNewData call.
func (m *Metrics) JournalDrainTime(value time.Duration) {
	m.combinerJournalDrainTime.Observe(value.Seconds())
}

// WindowReadTime records the time it takes to read a window of historic data.
func (m *Metrics) WindowReadTime(value time.Duration) {
	m.combinerWindowReadTime.Observe(value.Seconds())
}

// ComputeBarrierTime records the time spent computing scores at a window boundary.
func (m *Metrics) ComputeBarrierTime(value time.Duration) {
	m.scComputeBarrierTime.Observe(value.Seconds())

	logger.Info("ComputeBarrier time", zap.Duration("duration", value))
}

// ArchiveWriteTime records the time it takes to write the score archive.
func (m *Metrics) ArchiveWriteTime(value time.Duration) {
	m.scArchiveWriteTime.Observe(value.Seconds())
}

// IncrementPeersScored increments the number of peers scored.
func (m *Metrics) IncrementPeersScored(n int) {
	m.scPeersScored.Add(float64(n))
}

// DBPutTime records the time it takes to store data.
func (m *Metrics) DBPutTime(dbType string, value time.Duration) {
	m.dbPutTime.WithLabelValues(dbType).Observe(value.Seconds())
}

// DBGetTime records the time it takes to get data.
func (m *Metrics) DBGetTime(dbType string, value time.Duration) {
	m.dbGetTime.WithLabelValues(dbType).Observe(value.Seconds())
}

// DBGetTagsTime records the time it takes to get tags.
func (m *Metrics) DBGetTagsTime(dbType string, value time.Duration) {
	m.dbGetTagsTime.WithLabelValues(dbType).Observe(value.Seconds())
}

// DBGetBulkTime records the time it takes to get data in bulk.
func (m *Metrics) DBGetBulkTime(dbType string, value time.Duration) {
	m.dbGetBulkTime.WithLabelValues(dbType).Observe(value.Seconds())
}

// DBQueryTime records the time it takes to query data.
func (m *Metrics) DBQueryTime(dbType string, value time.Duration) {
	m.dbQueryTime.WithLabelValues(dbType).Observe(value.Seconds())
}

// DBDeleteTime records the time it takes to delete data.
func (m *Metrics) DBDeleteTime(dbType string, value time.Duration) {
	m.dbDeleteTime.WithLabelValues(dbType).Observe(value.Seconds())
}

// DBBatchTime records the time it takes to apply a batch of operations.
func (m *Metrics) DBBatchTime(dbType string, value time.Duration) {
	m.dbBatchTime.WithLabelValues(dbType).Observe(value.Seconds())
}

func newCounter(subsystem, name, help string) prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
	})
}

func newHistogram(subsystem, name, help string) prometheus.Histogram {
	return prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
	})
}

func newHistogramVec(subsystem, name, help string, label string) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
	}, []string{label})
}
