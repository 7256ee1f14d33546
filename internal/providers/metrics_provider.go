package providers

import (
	"cvewatch/internal/structures"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	ObservePersistenceDuration(duration time.Duration)

	IncPageFetches(result string)
	ObservePageDuration(duration time.Duration)
	IncBatches(result string)
	AddRecords(kind string, count int)
	IncRecordCacheHits()
	IncMails(result string)
	ObserveCycle(outcome string, duration time.Duration)
	SetSubscriptionsDue(count int)
}

type MetricsProvider struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter
	persistenceDuration prometheus.Histogram

	pageFetches      *prometheus.CounterVec
	pageDuration     prometheus.Histogram
	batches          *prometheus.CounterVec
	records          *prometheus.CounterVec
	recordCacheHits  prometheus.Counter
	mails            *prometheus.CounterVec
	cycles           *prometheus.CounterVec
	cycleDuration    prometheus.Histogram
	subscriptionsDue prometheus.Gauge
	lastCycle        prometheus.Gauge
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

func (m *MetricsProvider) ObservePersistenceDuration(duration time.Duration) {
	m.persistenceDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) IncPageFetches(result string) {
	m.pageFetches.WithLabelValues(result).Inc()
}

func (m *MetricsProvider) ObservePageDuration(duration time.Duration) {
	m.pageDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) IncBatches(result string) {
	m.batches.WithLabelValues(result).Inc()
}

func (m *MetricsProvider) AddRecords(kind string, count int) {
	m.records.WithLabelValues(kind).Add(float64(count))
}

func (m *MetricsProvider) IncRecordCacheHits() {
	m.recordCacheHits.Inc()
}

func (m *MetricsProvider) IncMails(result string) {
	m.mails.WithLabelValues(result).Inc()
}

func (m *MetricsProvider) ObserveCycle(outcome string, duration time.Duration) {
	m.cycles.WithLabelValues(outcome).Inc()
	m.cycleDuration.Observe(duration.Seconds())
	m.lastCycle.SetToCurrentTime()
}

func (m *MetricsProvider) SetSubscriptionsDue(count int) {
	m.subscriptionsDue.Set(float64(count))
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
			Name: "cvewatch_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cvewatch_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cvewatch_cache_hits_total",
			Help: "Total number of response cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cvewatch_cache_misses_total",
			Help: "Total number of response cache misses",
		}),

		persistenceDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "cvewatch_persistence_duration_seconds",
			Help:    "Duration of watermark persistence in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		pageFetches: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "cvewatch_page_fetches_total",
			Help: "Upstream page requests by result",
		}, []string{"result"}),

		pageDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "cvewatch_page_fetch_duration_seconds",
			Help:    "Duration of a single upstream page request in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		batches: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "cvewatch_batches_total",
			Help: "Query batches by result",
		}, []string{"result"}),

		records: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "cvewatch_records_fetched_total",
			Help: "Records fetched by kind",
		}, []string{"kind"}),

		recordCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cvewatch_record_cache_hits_total",
			Help: "Parsed records served from the record cache",
		}),

		mails: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "cvewatch_mails_total",
			Help: "Digest deliveries by result",
		}, []string{"result"}),

		cycles: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "cvewatch_cycles_total",
			Help: "Completed cycles by outcome",
		}, []string{"outcome"}),

		cycleDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "cvewatch_cycle_duration_seconds",
			Help:    "Duration of a full cycle in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}),

		subscriptionsDue: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "cvewatch_subscriptions_due",
			Help: "Subscriptions due in the last cycle",
		}),

		lastCycle: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "cvewatch_last_cycle_timestamp_seconds",
			Help: "Unix time of the last completed cycle",
		}),
	}
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) ObservePersistenceDuration(_ time.Duration)       {}
func (n *noopMetrics) IncPageFetches(_ string)                          {}
func (n *noopMetrics) ObservePageDuration(_ time.Duration)              {}
func (n *noopMetrics) IncBatches(_ string)                              {}
func (n *noopMetrics) AddRecords(_ string, _ int)                       {}
func (n *noopMetrics) IncRecordCacheHits()                              {}
func (n *noopMetrics) IncMails(_ string)                                {}
func (n *noopMetrics) ObserveCycle(_ string, _ time.Duration)           {}
func (n *noopMetrics) SetSubscriptionsDue(_ int)                        {}
