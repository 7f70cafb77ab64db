// Package metrics exposes Prometheus collectors for the harvest and compose
// pipelines.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	harvestPagesTotal    *prometheus.CounterVec
	harvestFetchDuration *prometheus.HistogramVec
	harvestBatchesTotal  prometheus.Counter
	harvestMissingPages  prometheus.Gauge
	composeRecordsTotal  *prometheus.CounterVec
	storeInsertsTotal    *prometheus.CounterVec

	once sync.Once
)

// Init initializes the Prometheus collectors. It is safe to call this
// function multiple times.
func Init() {
	once.Do(func() {
		harvestPagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pealim_harvest_pages_total",
				Help: "Total page fetch attempts, labeled by locale and result.",
			},
			[]string{"locale", "result"},
		)

		harvestFetchDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pealim_harvest_fetch_duration_seconds",
				Help:    "Duration of page fetches, labeled by locale.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"locale"},
		)

		harvestBatchesTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "pealim_harvest_batches_total",
				Help: "Total completed harvest batches.",
			},
		)

		harvestMissingPages = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "pealim_harvest_missing_pages",
				Help: "Current size of the missing-page list.",
			},
		)

		composeRecordsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pealim_compose_records_total",
				Help: "Total records processed by composition, labeled by result.",
			},
			[]string{"result"},
		)

		storeInsertsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pealim_store_inserts_total",
				Help: "Total structured record insertions, labeled by path and result.",
			},
			[]string{"path", "result"},
		)
	})
}

// ObserveFetch records one page fetch attempt.
func ObserveFetch(locale, result string, duration time.Duration) {
	if harvestPagesTotal == nil {
		return
	}
	harvestPagesTotal.WithLabelValues(locale, result).Inc()
	harvestFetchDuration.WithLabelValues(locale).Observe(duration.Seconds())
}

// AddBatch records one completed harvest batch.
func AddBatch() {
	if harvestBatchesTotal == nil {
		return
	}
	harvestBatchesTotal.Inc()
}

// SetMissing records the current missing-page list size.
func SetMissing(n int) {
	if harvestMissingPages == nil {
		return
	}
	harvestMissingPages.Set(float64(n))
}

// AddComposed records one composed record, result "ok" or "error".
func AddComposed(result string) {
	if composeRecordsTotal == nil {
		return
	}
	composeRecordsTotal.WithLabelValues(result).Inc()
}

// AddInsert records one insert attempt, path "batch" or "single".
func AddInsert(path, result string) {
	if storeInsertsTotal == nil {
		return
	}
	storeInsertsTotal.WithLabelValues(path, result).Inc()
}

// Handler returns the HTTP handler serving the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
