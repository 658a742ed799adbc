package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// DefaultNamespace prefixes every metric group.
const DefaultNamespace = "arbscan"

var (
	registry = prometheus.NewRegistry()
	logger   *zap.Logger
)

type MetricsConfig struct {
	ReportInterval time.Duration
	LogMetrics     bool
}

// Initialize routes promauto registrations to the package registry.
// Call before constructing any metric group.
func Initialize(cfg *MetricsConfig, log *zap.Logger) {
	logger = log
	prometheus.DefaultRegisterer = registry
}

// Handler serves the package registry over HTTP.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

type ScannerMetrics struct {
	ScansTotal        prometheus.Counter
	ScanDuration      prometheus.Histogram
	SnapshotPools     prometheus.Gauge
	GraphTokens       prometheus.Gauge
	Candidates        *prometheus.CounterVec
	Opportunities     prometheus.Counter
	LastOpportunities prometheus.Gauge
	BestNetProfit     prometheus.Gauge
	PricesCorrected   prometheus.Counter
}

func NewScannerMetrics(namespace string) *ScannerMetrics {
	return &ScannerMetrics{
		ScansTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scans_total",
			Help:      "Total number of detection runs",
		}),
		ScanDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scan_duration_seconds",
			Help:      "Wall time of one detection run",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
		SnapshotPools: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_pools",
			Help:      "Pools in the last snapshot handed to the scanner",
		}),
		GraphTokens: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "graph_tokens",
			Help:      "Distinct tokens in the last token graph",
		}),
		Candidates: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "candidates_total",
			Help:      "Candidate opportunities produced, by strategy",
		}, []string{"strategy"}),
		Opportunities: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "opportunities_total",
			Help:      "Opportunities returned after dedup and filtering",
		}),
		LastOpportunities: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_opportunities",
			Help:      "Opportunities returned by the last run",
		}),
		BestNetProfit: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "best_net_profit_lamports",
			Help:      "Net profit of the top opportunity in the last run",
		}),
		PricesCorrected: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prices_corrected_total",
			Help:      "Cached pool prices overridden by reserve-derived prices",
		}),
	}
}

type FetcherMetrics struct {
	Fetches       *prometheus.CounterVec
	FetchErrors   *prometheus.CounterVec
	PoolsFetched  *prometheus.GaugeVec
	FetchDuration *prometheus.HistogramVec
}

func NewFetcherMetrics(namespace string) *FetcherMetrics {
	return &FetcherMetrics{
		Fetches: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetches_total",
			Help:      "Snapshot fetches, by exchange",
		}, []string{"exchange"}),
		FetchErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_errors_total",
			Help:      "Failed snapshot fetches, by exchange",
		}, []string{"exchange"}),
		PoolsFetched: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pools_fetched",
			Help:      "Pools returned by the last fetch, by exchange",
		}, []string{"exchange"}),
		FetchDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Wall time of one snapshot fetch",
			Buckets:   prometheus.DefBuckets,
		}, []string{"exchange"}),
	}
}
