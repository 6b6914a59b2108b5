package providers

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"flighttrack/internal/structures"
)

const (
	ArchiveOutcomeArchived       = "archived"
	ArchiveOutcomeNoActiveTrack  = "no_active_track"
	ArchiveOutcomeReadFailed     = "read_failed"
	ArchiveOutcomeWriteFailed    = "write_failed"
	ArchiveOutcomePartialCleanup = "partial_cleanup"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	ObserveStoreDuration(operation string, duration time.Duration)
	IncReportsIngested()
	IncArchiveOutcome(outcome string)
	ObserveSnapshotDuration(duration time.Duration)
}

type MetricsProvider struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	cacheHits        prometheus.Counter
	cacheMisses      prometheus.Counter
	storeDuration    *prometheus.HistogramVec
	reportsIngested  prometheus.Counter
	archiveOutcomes  *prometheus.CounterVec
	snapshotDuration prometheus.Histogram
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) ObserveStoreDuration(operation string, duration time.Duration) {
	m.storeDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncReportsIngested() {
	m.reportsIngested.Inc()
}

func (m *MetricsProvider) IncArchiveOutcome(outcome string) {
	m.archiveOutcomes.WithLabelValues(outcome).Inc()
}

func (m *MetricsProvider) ObserveSnapshotDuration(duration time.Duration) {
	m.snapshotDuration.Observe(duration.Seconds())
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	return &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "flighttrack_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),
		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "flighttrack_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "flighttrack_cache_hits_total",
			Help: "Total number of cache hits",
		}),
		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "flighttrack_cache_misses_total",
			Help: "Total number of cache misses",
		}),
		storeDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "flighttrack_store_operation_duration_seconds",
			Help:    "Duration of backing store operations in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		reportsIngested: promauto.NewCounter(prometheus.CounterOpts{
			Name: "flighttrack_reports_ingested_total",
			Help: "Total number of position reports appended",
		}),
		archiveOutcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "flighttrack_archive_transitions_total",
			Help: "Archiving transitions by outcome",
		}, []string{"outcome"}),
		snapshotDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "flighttrack_snapshot_duration_seconds",
			Help:    "Duration of memory store snapshots in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) ObserveStoreDuration(_ string, _ time.Duration)   {}
func (n *noopMetrics) IncReportsIngested()                              {}
func (n *noopMetrics) IncArchiveOutcome(_ string)                       {}
func (n *noopMetrics) ObserveSnapshotDuration(_ time.Duration)          {}
