package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// Analysis metrics
	AnalysisRequestsTotal *prometheus.CounterVec
	AnalysisDuration      *prometheus.HistogramVec
	AnalysisErrorsTotal   *prometheus.CounterVec
	AnalysisConfidence    *prometheus.HistogramVec
	SentimentScores       *prometheus.HistogramVec
	RiskLevelsTotal       *prometheus.CounterVec

	// Collector metrics
	CollectorDuration    *prometheus.HistogramVec
	CollectorErrorsTotal *prometheus.CounterVec
	CollectorBars        *prometheus.HistogramVec

	// External API metrics
	ExternalAPIRequestsTotal *prometheus.CounterVec
	ExternalAPIErrorsTotal   *prometheus.CounterVec
	ExternalAPIDuration      *prometheus.HistogramVec

	// Cache metrics
	CacheHitsTotal      *prometheus.CounterVec
	CacheMissesTotal    *prometheus.CounterVec
	CacheEvictionsTotal *prometheus.CounterVec
	CacheKeys           *prometheus.GaugeVec

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Circuit breaker metrics
	CircuitBreakerState *prometheus.GaugeVec
	CircuitBreakerTrips *prometheus.CounterVec
}

// defaultBuckets are the default histogram buckets for duration metrics (in seconds)
var defaultBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30}

// sentimentBuckets are histogram buckets for sentiment scores (-1 to 1)
var sentimentBuckets = []float64{-1, -0.75, -0.5, -0.25, 0, 0.25, 0.5, 0.75, 1}

// ratioBuckets are histogram buckets for confidence and ratio metrics (0 to 1)
var ratioBuckets = []float64{0, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1}

// barCountBuckets are histogram buckets for collected dataset sizes
var barCountBuckets = []float64{10, 30, 60, 90, 180, 365, 730}

// globalMetrics is the global metrics instance
var globalMetrics *Metrics

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	factory := promauto.With(reg)

	m := &Metrics{
		// Analysis metrics
		AnalysisRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "patternleader",
				Subsystem: "analysis",
				Name:      "requests_total",
				Help:      "Total number of psychology analysis requests",
			},
			[]string{"symbol", "market_type"},
		),
		AnalysisDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "patternleader",
				Subsystem: "analysis",
				Name:      "duration_seconds",
				Help:      "Duration of psychology analysis in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"market_type", "status"},
		),
		AnalysisErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "patternleader",
				Subsystem: "analysis",
				Name:      "errors_total",
				Help:      "Total number of analysis errors",
			},
			[]string{"market_type", "error_type"},
		),
		AnalysisConfidence: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "patternleader",
				Subsystem: "analysis",
				Name:      "confidence",
				Help:      "Distribution of analysis confidence scores",
				Buckets:   ratioBuckets,
			},
			[]string{"market_type"},
		),
		SentimentScores: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "patternleader",
				Subsystem: "analysis",
				Name:      "sentiment_score",
				Help:      "Distribution of greed and fear sentiment scores",
				Buckets:   sentimentBuckets,
			},
			[]string{"market_type"},
		),
		RiskLevelsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "patternleader",
				Subsystem: "analysis",
				Name:      "risk_levels_total",
				Help:      "Total number of analyses by resulting risk level",
			},
			[]string{"level"},
		),

		// Collector metrics
		CollectorDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "patternleader",
				Subsystem: "collector",
				Name:      "duration_seconds",
				Help:      "Duration of market data collection in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"market_type", "source"},
		),
		CollectorErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "patternleader",
				Subsystem: "collector",
				Name:      "errors_total",
				Help:      "Total number of collection errors",
			},
			[]string{"market_type", "error_type"},
		),
		CollectorBars: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "patternleader",
				Subsystem: "collector",
				Name:      "bars_collected",
				Help:      "Number of daily bars returned per collection",
				Buckets:   barCountBuckets,
			},
			[]string{"market_type"},
		),

		// External API metrics
		ExternalAPIRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "patternleader",
				Subsystem: "external_api",
				Name:      "requests_total",
				Help:      "Total number of external API requests",
			},
			[]string{"service", "operation"},
		),
		ExternalAPIErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "patternleader",
				Subsystem: "external_api",
				Name:      "errors_total",
				Help:      "Total number of external API errors",
			},
			[]string{"service", "operation", "error_type"},
		),
		ExternalAPIDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "patternleader",
				Subsystem: "external_api",
				Name:      "duration_seconds",
				Help:      "Duration of external API calls in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"service", "operation"},
		),

		// Cache metrics
		CacheHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "patternleader",
				Subsystem: "cache",
				Name:      "hits_total",
				Help:      "Total number of cache hits",
			},
			[]string{"market_type"},
		),
		CacheMissesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "patternleader",
				Subsystem: "cache",
				Name:      "misses_total",
				Help:      "Total number of cache misses",
			},
			[]string{"market_type"},
		),
		CacheEvictionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "patternleader",
				Subsystem: "cache",
				Name:      "evictions_total",
				Help:      "Total number of expired entries removed from the cache",
			},
			[]string{"reason"},
		),
		CacheKeys: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "patternleader",
				Subsystem: "cache",
				Name:      "keys",
				Help:      "Current number of keys held in the cache",
			},
			[]string{"state"},
		),

		// HTTP metrics
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "patternleader",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "patternleader",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "patternleader",
				Subsystem: "http",
				Name:      "response_size_bytes",
				Help:      "Size of HTTP responses in bytes",
				Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
			},
			[]string{"method", "path"},
		),

		// Circuit breaker metrics
		CircuitBreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "patternleader",
				Subsystem: "circuit_breaker",
				Name:      "state",
				Help:      "Current state of circuit breakers (0=closed, 1=half-open, 2=open)",
			},
			[]string{"service"},
		),
		CircuitBreakerTrips: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "patternleader",
				Subsystem: "circuit_breaker",
				Name:      "trips_total",
				Help:      "Total number of circuit breaker trips",
			},
			[]string{"service"},
		),
	}

	return m
}

// InitMetrics initializes the global metrics instance
func InitMetrics() *Metrics {
	globalMetrics = NewMetrics(nil)
	return globalMetrics
}

// GetMetrics returns the global metrics instance
func GetMetrics() *Metrics {
	if globalMetrics == nil {
		return InitMetrics()
	}
	return globalMetrics
}

// RecordAnalysisRequest records a psychology analysis request
func (m *Metrics) RecordAnalysisRequest(symbol, marketType string) {
	m.AnalysisRequestsTotal.WithLabelValues(symbol, marketType).Inc()
}

// RecordAnalysisDuration records the duration of an analysis
func (m *Metrics) RecordAnalysisDuration(marketType, status string, duration time.Duration) {
	m.AnalysisDuration.WithLabelValues(marketType, status).Observe(duration.Seconds())
}

// RecordAnalysisError records an analysis error
func (m *Metrics) RecordAnalysisError(marketType, errorType string) {
	m.AnalysisErrorsTotal.WithLabelValues(marketType, errorType).Inc()
}

// RecordAnalysisResult records the sentiment, risk and confidence of a
// completed analysis
func (m *Metrics) RecordAnalysisResult(marketType, riskLevel string, sentiment, confidence float64) {
	m.SentimentScores.WithLabelValues(marketType).Observe(sentiment)
	m.AnalysisConfidence.WithLabelValues(marketType).Observe(confidence)
	m.RiskLevelsTotal.WithLabelValues(riskLevel).Inc()
}

// RecordCollectorDuration records the duration of a data collection
func (m *Metrics) RecordCollectorDuration(marketType, source string, duration time.Duration) {
	m.CollectorDuration.WithLabelValues(marketType, source).Observe(duration.Seconds())
}

// RecordCollectorError records a collection error
func (m *Metrics) RecordCollectorError(marketType, errorType string) {
	m.CollectorErrorsTotal.WithLabelValues(marketType, errorType).Inc()
}

// RecordCollectorBars records the size of a collected dataset
func (m *Metrics) RecordCollectorBars(marketType string, count int) {
	m.CollectorBars.WithLabelValues(marketType).Observe(float64(count))
}

// RecordExternalAPIRequest records an external API request
func (m *Metrics) RecordExternalAPIRequest(service, operation string) {
	m.ExternalAPIRequestsTotal.WithLabelValues(service, operation).Inc()
}

// RecordExternalAPIError records an external API error
func (m *Metrics) RecordExternalAPIError(service, operation, errorType string) {
	m.ExternalAPIErrorsTotal.WithLabelValues(service, operation, errorType).Inc()
}

// RecordExternalAPIDuration records the duration of an external API call
func (m *Metrics) RecordExternalAPIDuration(service, operation string, duration time.Duration) {
	m.ExternalAPIDuration.WithLabelValues(service, operation).Observe(duration.Seconds())
}

// RecordCacheHit records a cache hit
func (m *Metrics) RecordCacheHit(marketType string) {
	m.CacheHitsTotal.WithLabelValues(marketType).Inc()
}

// RecordCacheMiss records a cache miss
func (m *Metrics) RecordCacheMiss(marketType string) {
	m.CacheMissesTotal.WithLabelValues(marketType).Inc()
}

// RecordCacheEvictions records expired entries removed from the cache
func (m *Metrics) RecordCacheEvictions(reason string, count int) {
	if count > 0 {
		m.CacheEvictionsTotal.WithLabelValues(reason).Add(float64(count))
	}
}

// SetCacheKeys sets the current cache key gauge for a state
func (m *Metrics) SetCacheKeys(state string, count int) {
	m.CacheKeys.WithLabelValues(state).Set(float64(count))
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, statusCode string, duration time.Duration, responseSize int) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.HTTPResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
}

// SetCircuitBreakerState sets the current state of a circuit breaker
func (m *Metrics) SetCircuitBreakerState(service string, state int) {
	m.CircuitBreakerState.WithLabelValues(service).Set(float64(state))
}

// RecordCircuitBreakerTrip records a circuit breaker trip
func (m *Metrics) RecordCircuitBreakerTrip(service string) {
	m.CircuitBreakerTrips.WithLabelValues(service).Inc()
}

// Timer is a helper for timing operations
type Timer struct {
	start   time.Time
	metrics *Metrics
}

// NewTimer creates a new timer
func (m *Metrics) NewTimer() *Timer {
	return &Timer{
		start:   time.Now(),
		metrics: m,
	}
}

// ObserveAnalysis records the analysis duration and status
func (t *Timer) ObserveAnalysis(marketType, status string) {
	t.metrics.RecordAnalysisDuration(marketType, status, time.Since(t.start))
}

// ObserveCollector records the collection duration
func (t *Timer) ObserveCollector(marketType, source string) {
	t.metrics.RecordCollectorDuration(marketType, source, time.Since(t.start))
}

// ObserveExternalAPI records the external API duration
func (t *Timer) ObserveExternalAPI(service, operation string) {
	t.metrics.RecordExternalAPIDuration(service, operation, time.Since(t.start))
}

// Duration returns the elapsed time
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
