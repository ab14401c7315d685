package telemetry

import (
	"agentmarket/config"
	"agentmarket/internal/core"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metric struct；未啟用時所有欄位為 nil，方法皆為 no-op
type Metric struct {
	HttpRequestsTotal    *prometheus.CounterVec
	HttpRequestDuration  *prometheus.HistogramVec
	HttpSuccessTotal     *prometheus.CounterVec
	HttpFailTotal        *prometheus.CounterVec
	RateLimitedTotal     *prometheus.CounterVec
	EmbeddingRequests    *prometheus.CounterVec
	EmbeddingDuration    *prometheus.HistogramVec
	EmbeddingCacheLookup *prometheus.CounterVec
	SearchDuration       prometheus.Histogram
	SearchIndexSize      prometheus.Gauge
	UsageEventsTotal     prometheus.Counter
	config               *config.Configuration
}

// NewMetric 建立所有指標
func NewMetric(config *config.Configuration) *Metric {
	if config == nil || !config.Telemetry.Metric.Enabled {
		return &Metric{}
	}
	buckets := prometheus.DefBuckets
	if len(config.Telemetry.Metric.Buckets) > 0 {
		buckets = config.Telemetry.Metric.Buckets
	}
	prefix := config.App.Name + "_"
	return &Metric{
		config: config,
		HttpRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + string(core.MetricHttpRequestsTotal),
				Help: "Total received API requests",
			},
			labelNames(core.MetricLabelEndpoint, core.MetricLabelStatus),
		),
		HttpRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + string(core.MetricHttpRequestDuration),
				Help:    "Request handling duration (seconds)",
				Buckets: buckets,
			},
			labelNames(core.MetricLabelEndpoint),
		),
		HttpSuccessTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + string(core.MetricHttpSuccessTotal),
				Help: "Successful responses",
			},
			labelNames(core.MetricLabelEndpoint, core.MetricLabelStatus),
		),
		HttpFailTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + string(core.MetricHttpFailTotal),
				Help: "Failed responses by reason",
			},
			labelNames(core.MetricLabelEndpoint, core.MetricLabelReason),
		),
		RateLimitedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + string(core.MetricRateLimitTotal),
				Help: "Requests rejected by the rate limiter",
			},
			labelNames(core.MetricLabelEndpoint),
		),
		EmbeddingRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + string(core.MetricEmbeddingRequests),
				Help: "Embedding provider calls by outcome",
			},
			labelNames(core.MetricLabelProvider, core.MetricLabelOutcome),
		),
		EmbeddingDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + string(core.MetricEmbeddingDuration),
				Help:    "Embedding call duration including retries (seconds)",
				Buckets: buckets,
			},
			labelNames(core.MetricLabelProvider),
		),
		EmbeddingCacheLookup: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + string(core.MetricEmbeddingCacheLookups),
				Help: "Query embedding cache lookups by outcome",
			},
			labelNames(core.MetricLabelOutcome),
		),
		SearchDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    prefix + string(core.MetricSearchDuration),
				Help:    "Index scan duration (seconds)",
				Buckets: buckets,
			},
		),
		SearchIndexSize: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: prefix + string(core.MetricSearchIndexSize),
				Help: "Listings currently held by the search index",
			},
		),
		UsageEventsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: prefix + string(core.MetricUsageEventsTotal),
				Help: "Recorded usage events",
			},
		),
	}
}

// ObserveRequest 每個請求一次，由 TraceEntry 呼叫
func (m *Metric) ObserveRequest(endpoint string, status int, elapsed time.Duration) {
	if m == nil || m.HttpRequestsTotal == nil {
		return
	}
	m.HttpRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	m.HttpRequestDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

func (m *Metric) IncSuccess(endpoint string, status int) {
	if m == nil || m.HttpSuccessTotal == nil {
		return
	}
	m.HttpSuccessTotal.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
}

// IncFail reason 使用錯誤的 slug（例如 not-found），避免高基數
func (m *Metric) IncFail(endpoint, reason string) {
	if m == nil || m.HttpFailTotal == nil {
		return
	}
	m.HttpFailTotal.WithLabelValues(endpoint, reason).Inc()
}

func (m *Metric) ObserveEmbedding(provider, outcome string, elapsed time.Duration) {
	if m == nil || m.EmbeddingRequests == nil {
		return
	}
	m.EmbeddingRequests.WithLabelValues(provider, outcome).Inc()
	m.EmbeddingDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
}

func (m *Metric) ObserveCacheLookup(outcome string) {
	if m == nil || m.EmbeddingCacheLookup == nil {
		return
	}
	m.EmbeddingCacheLookup.WithLabelValues(outcome).Inc()
}

func (m *Metric) ObserveSearch(elapsed time.Duration) {
	if m == nil || m.SearchDuration == nil {
		return
	}
	m.SearchDuration.Observe(elapsed.Seconds())
}

func (m *Metric) SetIndexSize(n int) {
	if m == nil || m.SearchIndexSize == nil {
		return
	}
	m.SearchIndexSize.Set(float64(n))
}

func (m *Metric) IncUsageEvent() {
	if m == nil || m.UsageEventsTotal == nil {
		return
	}
	m.UsageEventsTotal.Inc()
}

func (m *Metric) IncRateLimited(endpoint string) {
	if m == nil || m.RateLimitedTotal == nil {
		return
	}
	m.RateLimitedTotal.WithLabelValues(endpoint).Inc()
}

// labelNames helper: LabelName slice 轉成 []string
func labelNames(labels ...core.MetricLabelName) []string {
	strs := make([]string, len(labels))
	for i, l := range labels {
		strs[i] = string(l)
	}
	return strs
}
