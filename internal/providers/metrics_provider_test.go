package providers

import (
	"cvewatch/internal/structures"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useTestRegistry(t *testing.T) *prometheus.Registry {
	t.Helper()
	reg := prometheus.NewRegistry()
	prometheus.DefaultRegisterer = reg
	prometheus.DefaultGatherer = reg
	t.Cleanup(func() {
		prometheus.DefaultRegisterer = prometheus.NewRegistry()
		prometheus.DefaultGatherer = prometheus.DefaultRegisterer.(prometheus.Gatherer)
	})
	return reg
}

// gatheredValue returns the counter or gauge value of the series whose label value
// is label; an empty label selects an unlabelled series.
func gatheredValue(t *testing.T, reg *prometheus.Registry, name, label string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			matched := label == "" && len(m.GetLabel()) == 0
			for _, l := range m.GetLabel() {
				matched = matched || l.GetValue() == label
			}
			if !matched {
				continue
			}
			if c := m.GetCounter(); c != nil {
				return c.GetValue()
			}
			return m.GetGauge().GetValue()
		}
	}
	t.Fatalf("metric %s{%s} not gathered", name, label)
	return 0
}

func TestNoopMetrics_WhenDisabled(t *testing.T) {
	conf := &structures.Config{
		Metrics: structures.MetricsConfig{Enabled: false},
	}
	m := NewMetricsProvider(conf)
	_, ok := m.(*noopMetrics)
	assert.True(t, ok, "should return noopMetrics when disabled")

	m.IncRequestsTotal("/test", 200)
	m.ObserveRequestDuration("/test", time.Millisecond)
	m.IncCacheHits()
	m.IncCacheMisses()
	m.ObservePersistenceDuration(time.Millisecond)
	m.IncPageFetches("ok")
	m.ObservePageDuration(time.Millisecond)
	m.IncBatches("failed")
	m.AddRecords("new", 3)
	m.IncRecordCacheHits()
	m.IncMails("sent")
	m.ObserveCycle("success", time.Second)
	m.SetSubscriptionsDue(2)
}

func TestMetricsProvider_WhenEnabled(t *testing.T) {
	useTestRegistry(t)

	conf := &structures.Config{
		Metrics: structures.MetricsConfig{Enabled: true},
	}
	m := NewMetricsProvider(conf)
	_, ok := m.(*MetricsProvider)
	assert.True(t, ok, "should return MetricsProvider when enabled")
}

func TestMetricsProvider_IncrementCounters(t *testing.T) {
	reg := useTestRegistry(t)

	conf := &structures.Config{
		Metrics: structures.MetricsConfig{Enabled: true},
	}
	m := NewMetricsProvider(conf).(*MetricsProvider)

	m.IncRequestsTotal("/summary", 200)
	m.IncRequestsTotal("/summary", 404)
	m.ObserveRequestDuration("/summary", 5*time.Millisecond)
	m.IncPageFetches("ok")
	m.IncPageFetches("ok")
	m.IncPageFetches("retry")
	m.AddRecords("new", 3)
	m.AddRecords("updated", 1)
	m.IncMails("failed")
	m.ObserveCycle("partial", 2*time.Second)
	m.SetSubscriptionsDue(7)

	assert.Equal(t, 2.0, gatheredValue(t, reg, "cvewatch_page_fetches_total", "ok"))
	assert.Equal(t, 3.0, gatheredValue(t, reg, "cvewatch_records_fetched_total", "new"))
	assert.Equal(t, 1.0, gatheredValue(t, reg, "cvewatch_cycles_total", "partial"))
	assert.Equal(t, 7.0, gatheredValue(t, reg, "cvewatch_subscriptions_due", ""))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "cvewatch_requests_total")
	assert.Contains(t, names, "cvewatch_mails_total")
	assert.Contains(t, names, "cvewatch_last_cycle_timestamp_seconds")
}

func TestHttpStatusBucket(t *testing.T) {
	tests := []struct {
		code     int
		expected string
	}{
		{100, "1xx"},
		{200, "2xx"},
		{201, "2xx"},
		{301, "3xx"},
		{400, "4xx"},
		{404, "4xx"},
		{500, "5xx"},
		{503, "5xx"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, httpStatusBucket(tt.code))
	}
}
