package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	if m == nil {
		t.Fatal("NewMetrics returned nil")
	}

	// Verify all metrics are initialized
	if m.AnalysisRequestsTotal == nil {
		t.Error("AnalysisRequestsTotal is nil")
	}
	if m.AnalysisDuration == nil {
		t.Error("AnalysisDuration is nil")
	}
	if m.AnalysisErrorsTotal == nil {
		t.Error("AnalysisErrorsTotal is nil")
	}
	if m.AnalysisConfidence == nil {
		t.Error("AnalysisConfidence is nil")
	}
	if m.SentimentScores == nil {
		t.Error("SentimentScores is nil")
	}
	if m.RiskLevelsTotal == nil {
		t.Error("RiskLevelsTotal is nil")
	}
	if m.CollectorDuration == nil {
		t.Error("CollectorDuration is nil")
	}
	if m.CollectorErrorsTotal == nil {
		t.Error("CollectorErrorsTotal is nil")
	}
	if m.CollectorBars == nil {
		t.Error("CollectorBars is nil")
	}
	if m.ExternalAPIRequestsTotal == nil {
		t.Error("ExternalAPIRequestsTotal is nil")
	}
	if m.ExternalAPIErrorsTotal == nil {
		t.Error("ExternalAPIErrorsTotal is nil")
	}
	if m.ExternalAPIDuration == nil {
		t.Error("ExternalAPIDuration is nil")
	}
	if m.CacheHitsTotal == nil {
		t.Error("CacheHitsTotal is nil")
	}
	if m.CacheMissesTotal == nil {
		t.Error("CacheMissesTotal is nil")
	}
	if m.CacheEvictionsTotal == nil {
		t.Error("CacheEvictionsTotal is nil")
	}
	if m.HTTPRequestsTotal == nil {
		t.Error("HTTPRequestsTotal is nil")
	}
	if m.HTTPRequestDuration == nil {
		t.Error("HTTPRequestDuration is nil")
	}
	if m.CircuitBreakerState == nil {
		t.Error("CircuitBreakerState is nil")
	}
	if m.CircuitBreakerTrips == nil {
		t.Error("CircuitBreakerTrips is nil")
	}
}

func TestRecordAnalysisRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordAnalysisRequest("AAPL", "stock")
	m.RecordAnalysisRequest("AAPL", "stock")
	m.RecordAnalysisRequest("BTC/USDT", "crypto")

	aaplCount := testutil.ToFloat64(m.AnalysisRequestsTotal.WithLabelValues("AAPL", "stock"))
	if aaplCount != 2 {
		t.Errorf("Expected AAPL count to be 2, got %f", aaplCount)
	}

	btcCount := testutil.ToFloat64(m.AnalysisRequestsTotal.WithLabelValues("BTC/USDT", "crypto"))
	if btcCount != 1 {
		t.Errorf("Expected BTC/USDT count to be 1, got %f", btcCount)
	}
}

func TestRecordAnalysisDuration(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordAnalysisDuration("stock", "success", 100*time.Millisecond)
	m.RecordAnalysisDuration("crypto", "error", 50*time.Millisecond)

	// Verify histograms are recorded (just check they don't panic)
	// Histogram values are harder to test directly
}

func TestRecordAnalysisError(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordAnalysisError("stock", "insufficient_data")
	m.RecordAnalysisError("stock", "insufficient_data")
	m.RecordAnalysisError("crypto", "upstream_unreachable")

	stockCount := testutil.ToFloat64(m.AnalysisErrorsTotal.WithLabelValues("stock", "insufficient_data"))
	if stockCount != 2 {
		t.Errorf("Expected stock insufficient_data count to be 2, got %f", stockCount)
	}

	cryptoCount := testutil.ToFloat64(m.AnalysisErrorsTotal.WithLabelValues("crypto", "upstream_unreachable"))
	if cryptoCount != 1 {
		t.Errorf("Expected crypto upstream_unreachable count to be 1, got %f", cryptoCount)
	}
}

func TestRecordAnalysisResult(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordAnalysisResult("stock", "low", 0.1, 0.8)
	m.RecordAnalysisResult("crypto", "extreme", -0.9, 0.4)
	m.RecordAnalysisResult("crypto", "extreme", 0.95, 0.5)

	lowCount := testutil.ToFloat64(m.RiskLevelsTotal.WithLabelValues("low"))
	if lowCount != 1 {
		t.Errorf("Expected low count to be 1, got %f", lowCount)
	}

	extremeCount := testutil.ToFloat64(m.RiskLevelsTotal.WithLabelValues("extreme"))
	if extremeCount != 2 {
		t.Errorf("Expected extreme count to be 2, got %f", extremeCount)
	}
}

func TestRecordCollectorDuration(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordCollectorDuration("stock", "yahoo_finance", 2*time.Second)
	m.RecordCollectorDuration("crypto", "binance", 1500*time.Millisecond)

	// Verify histograms are recorded (just check they don't panic)
}

func TestRecordCollectorError(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordCollectorError("stock", "timeout")
	m.RecordCollectorError("crypto", "circuit_breaker")

	stockTimeout := testutil.ToFloat64(m.CollectorErrorsTotal.WithLabelValues("stock", "timeout"))
	if stockTimeout != 1 {
		t.Errorf("Expected stock timeout count to be 1, got %f", stockTimeout)
	}
}

func TestRecordCollectorBars(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordCollectorBars("stock", 90)
	m.RecordCollectorBars("crypto", 30)

	// Verify histograms are recorded (just check they don't panic)
}

func TestRecordExternalAPIRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordExternalAPIRequest("binance", "get_klines")
	m.RecordExternalAPIRequest("binance", "get_klines")
	m.RecordExternalAPIRequest("yahoo_finance", "get_chart")

	binanceKlines := testutil.ToFloat64(m.ExternalAPIRequestsTotal.WithLabelValues("binance", "get_klines"))
	if binanceKlines != 2 {
		t.Errorf("Expected binance get_klines count to be 2, got %f", binanceKlines)
	}

	yahooChart := testutil.ToFloat64(m.ExternalAPIRequestsTotal.WithLabelValues("yahoo_finance", "get_chart"))
	if yahooChart != 1 {
		t.Errorf("Expected yahoo_finance get_chart count to be 1, got %f", yahooChart)
	}
}

func TestRecordExternalAPIError(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordExternalAPIError("binance", "get_klines", "timeout")
	m.RecordExternalAPIError("openweather", "get_forecast", "rate_limit")

	binanceTimeout := testutil.ToFloat64(m.ExternalAPIErrorsTotal.WithLabelValues("binance", "get_klines", "timeout"))
	if binanceTimeout != 1 {
		t.Errorf("Expected binance timeout count to be 1, got %f", binanceTimeout)
	}
}

func TestRecordExternalAPIDuration(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordExternalAPIDuration("binance", "get_klines", 500*time.Millisecond)
	m.RecordExternalAPIDuration("yahoo_finance", "get_chart", 200*time.Millisecond)

	// Verify histograms are recorded
}

func TestCacheMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordCacheHit("stock")
	m.RecordCacheHit("stock")
	m.RecordCacheMiss("crypto")

	hits := testutil.ToFloat64(m.CacheHitsTotal.WithLabelValues("stock"))
	if hits != 2 {
		t.Errorf("Expected stock hits to be 2, got %f", hits)
	}

	misses := testutil.ToFloat64(m.CacheMissesTotal.WithLabelValues("crypto"))
	if misses != 1 {
		t.Errorf("Expected crypto misses to be 1, got %f", misses)
	}

	m.RecordCacheEvictions("janitor", 3)
	m.RecordCacheEvictions("janitor", 0)

	evictions := testutil.ToFloat64(m.CacheEvictionsTotal.WithLabelValues("janitor"))
	if evictions != 3 {
		t.Errorf("Expected janitor evictions to be 3, got %f", evictions)
	}

	m.SetCacheKeys("active", 12)
	active := testutil.ToFloat64(m.CacheKeys.WithLabelValues("active"))
	if active != 12 {
		t.Errorf("Expected active keys to be 12, got %f", active)
	}
}

func TestRecordHTTPRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordHTTPRequest("GET", "/health", "200", 10*time.Millisecond, 256)
	m.RecordHTTPRequest("GET", "/api/v1/analysis/{symbol}", "200", 2*time.Second, 4096)
	m.RecordHTTPRequest("GET", "/api/v1/symbols", "500", 50*time.Millisecond, 128)

	healthOK := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/health", "200"))
	if healthOK != 1 {
		t.Errorf("Expected GET /health 200 count to be 1, got %f", healthOK)
	}

	symbolsError := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/symbols", "500"))
	if symbolsError != 1 {
		t.Errorf("Expected GET /api/v1/symbols 500 count to be 1, got %f", symbolsError)
	}
}

func TestCircuitBreakerMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	// Set initial states
	m.SetCircuitBreakerState("binance", 0)       // closed
	m.SetCircuitBreakerState("yahoo_finance", 2) // open

	binanceState := testutil.ToFloat64(m.CircuitBreakerState.WithLabelValues("binance"))
	if binanceState != 0 {
		t.Errorf("Expected binance state to be 0 (closed), got %f", binanceState)
	}

	yahooState := testutil.ToFloat64(m.CircuitBreakerState.WithLabelValues("yahoo_finance"))
	if yahooState != 2 {
		t.Errorf("Expected yahoo_finance state to be 2 (open), got %f", yahooState)
	}

	// Record trips
	m.RecordCircuitBreakerTrip("binance")
	m.RecordCircuitBreakerTrip("binance")

	binanceTrips := testutil.ToFloat64(m.CircuitBreakerTrips.WithLabelValues("binance"))
	if binanceTrips != 2 {
		t.Errorf("Expected binance trips to be 2, got %f", binanceTrips)
	}
}

func TestTimer(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	timer := m.NewTimer()
	if timer == nil {
		t.Fatal("NewTimer returned nil")
	}

	// Sleep a small amount to ensure duration is measurable
	time.Sleep(10 * time.Millisecond)

	duration := timer.Duration()
	if duration < 10*time.Millisecond {
		t.Errorf("Expected duration to be at least 10ms, got %v", duration)
	}

	// Test ObserveAnalysis
	timer.ObserveAnalysis("stock", "success")

	// Test ObserveCollector
	timer2 := m.NewTimer()
	time.Sleep(5 * time.Millisecond)
	timer2.ObserveCollector("crypto", "binance")

	// Test ObserveExternalAPI
	timer3 := m.NewTimer()
	time.Sleep(5 * time.Millisecond)
	timer3.ObserveExternalAPI("binance", "get_klines")
}

func TestGetMetrics_Singleton(t *testing.T) {
	// Save and restore global metrics state
	original := globalMetrics
	defer func() { globalMetrics = original }()

	// Create a fresh metrics instance with a dedicated registry
	reg := prometheus.NewRegistry()
	testMetrics := NewMetrics(reg)
	globalMetrics = testMetrics

	m1 := GetMetrics()
	if m1 == nil {
		t.Fatal("GetMetrics returned nil")
	}

	m2 := GetMetrics()
	if m1 != m2 {
		t.Error("GetMetrics should return the same instance")
	}
}

func TestInitMetrics_SetsGlobal(t *testing.T) {
	// Save and restore global metrics state
	original := globalMetrics
	defer func() { globalMetrics = original }()

	// Create a new registry for isolation
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	globalMetrics = m

	// Verify it's the global instance
	if globalMetrics != m {
		t.Error("globalMetrics should match the instance we set")
	}

	// Verify GetMetrics returns it
	if GetMetrics() != m {
		t.Error("GetMetrics should return the global instance")
	}
}
