package datafile

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_datafile_cache_hits_total",
		Help: "Data file cache hits by cache tier",
	}, []string{"cache"}) // "payload" or "listing"

	cacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_datafile_cache_misses_total",
		Help: "Data file cache misses by cache tier",
	}, []string{"cache"})

	cacheEvictions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_datafile_cache_evictions_total",
		Help: "Data file cache evictions by cache tier",
	}, []string{"cache"})

	malformedFiles = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dashboard_datafile_malformed_total",
		Help: "Data files skipped because they could not be decoded",
	})

	scanFiles = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dashboard_scan_files",
		Help:    "Number of data files visited per scan",
		Buckets: []float64{1, 2, 5, 10, 50, 100, 500, 1000, 5000},
	})

	scanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dashboard_scan_duration_seconds",
		Help:    "Scan duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14), // 0.5ms to ~4s
	})

	populateRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_cache_populate_total",
		Help: "Cache warming runs by result",
	}, []string{"result"}) // "ok" or "error"
)

const (
	cachePayload = "payload"
	cacheListing = "listing"
)
