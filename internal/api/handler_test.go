package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"patternleader/activities"
	"patternleader/analysis"
	"patternleader/cache"
	"patternleader/collector"
	"patternleader/config"
	"patternleader/models"
	"patternleader/services"

	"github.com/shopspring/decimal"
)

// stubCollector satisfies collector.Collector without any upstream I/O
type stubCollector struct {
	market       models.MarketKind
	source       string
	data         *models.MarketData
	collectErr   error
	valid        bool
	validErr     error
	collectCalls int
}

func (s *stubCollector) Collect(ctx context.Context, symbol, period string) (*models.MarketData, error) {
	s.collectCalls++
	if s.collectErr != nil {
		return nil, s.collectErr
	}
	data := *s.data
	data.Symbol = symbol
	data.Period = period
	return &data, nil
}

func (s *stubCollector) Validate(ctx context.Context, symbol string) (bool, error) {
	if s.validErr != nil {
		return false, s.validErr
	}
	return s.valid, nil
}

func (s *stubCollector) Market() models.MarketKind { return s.market }
func (s *stubCollector) Source() string            { return s.source }

var _ collector.Collector = (*stubCollector)(nil)

type stubWeather struct {
	location *models.GeoLocation
	current  *models.WeatherInfo
}

func (s *stubWeather) Geocode(ctx context.Context, city string) (*models.GeoLocation, error) {
	return s.location, nil
}

func (s *stubWeather) CurrentWeather(ctx context.Context, lat, lon float64) (*models.WeatherInfo, error) {
	weather := *s.current
	return &weather, nil
}

func (s *stubWeather) Forecast(ctx context.Context, lat, lon float64, steps int) ([]models.WeatherInfo, error) {
	return nil, nil
}

func (s *stubWeather) Name() string { return "openweather" }

type stubPlaces struct {
	places []models.PlaceInfo
}

func (s *stubPlaces) SearchPlaces(ctx context.Context, lat, lon float64, activityType string, radius int) ([]models.PlaceInfo, error) {
	return s.places, nil
}

func (s *stubPlaces) Name() string { return "overpass" }

// testMarketData builds a deterministic dataset long enough for analysis
func testMarketData(symbol string, market models.MarketKind, n int) *models.MarketData {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	changes := []float64{0.011, -0.007, 0.004, -0.013, 0.009, 0.002, -0.005, 0.015, -0.01, 0.006}

	closes := make([]float64, n)
	closes[0] = 100
	for i := 1; i < n; i++ {
		closes[i] = closes[i-1] * (1 + changes[(i-1)%len(changes)])
	}

	bars := make([]models.Bar, n)
	for i, c := range closes {
		bars[i] = models.Bar{
			Timestamp: base.AddDate(0, 0, i),
			Open:      decimal.NewFromFloat(c),
			High:      decimal.NewFromFloat(c * 1.01),
			Low:       decimal.NewFromFloat(c * 0.99),
			Close:     decimal.NewFromFloat(c),
			Volume:    decimal.NewFromInt(1000000),
		}
	}
	return &models.MarketData{
		Symbol:    symbol,
		Market:    market,
		Period:    "3mo",
		Bars:      bars,
		FetchedAt: base.AddDate(0, 0, n),
	}
}

type testServer struct {
	server *httptest.Server
	stock  *stubCollector
	crypto *stubCollector
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	stock := &stubCollector{
		market: models.MarketKindStock,
		source: "yahoo",
		data:   testMarketData("AAPL", models.MarketKindStock, 60),
		valid:  true,
	}
	crypto := &stubCollector{
		market: models.MarketKindCrypto,
		source: "binance",
		data:   testMarketData("BTC/USDT", models.MarketKindCrypto, 60),
		valid:  true,
	}

	cfg := config.NewTestConfig()
	engine := analysis.NewEngine(
		collector.NewFactory(stock, crypto),
		analysis.NewPsychologyAnalyzer(),
		cache.NewMemoryCache(cfg.Cache.TTL()),
		cfg.Cache.TTL(),
		config.Version,
	)

	weather := &stubWeather{
		location: &models.GeoLocation{Name: "Seoul", Lat: 37.57, Lon: 126.98, Country: "KR"},
		current: &models.WeatherInfo{
			Condition:   "Clear",
			Temperature: 22,
			Humidity:    55,
			WindSpeed:   3,
			ObservedAt:  time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		},
	}
	places := &stubPlaces{places: []models.PlaceInfo{
		{ID: 1, Name: "한강공원", Type: "park", Lat: 37.52, Lon: 126.97},
	}}
	activitiesService := activities.NewService(weather, places, nil, activities.Options{})

	services.SetGlobalRegistry(services.NewCircuitBreakerRegistry(services.DefaultCircuitBreakerConfig))

	handler := NewHandler(engine, activitiesService, cfg)
	server := httptest.NewServer(NewRouter(handler, cfg))
	t.Cleanup(server.Close)

	return &testServer{server: server, stock: stock, crypto: crypto}
}

func (ts *testServer) get(t *testing.T, path string) (*http.Response, []byte) {
	t.Helper()

	resp, err := http.Get(ts.server.URL + path)
	if err != nil {
		t.Fatalf("GET %s error = %v", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body error = %v", err)
	}
	return resp, body
}

func decodeJSON(t *testing.T, data []byte, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(data, out); err != nil {
		t.Fatalf("json.Unmarshal error = %v, body = %s", err, data)
	}
}

func TestHandlePsychologyAnalysis(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.get(t, "/api/v1/analysis/psychology/AAPL?market_type=stock&period=3mo")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, body)
	}

	var result models.AnalysisResponse
	decodeJSON(t, body, &result)

	if result.Symbol != "AAPL" {
		t.Errorf("Symbol = %q, want AAPL", result.Symbol)
	}
	if result.MarketType != models.MarketKindStock {
		t.Errorf("MarketType = %q, want stock", result.MarketType)
	}
	if sum := result.PsychologyRatios.Sum(); math.Abs(sum-1) > 0.01 {
		t.Errorf("ratio sum = %v, want 1±0.01", sum)
	}
	if result.SentimentScore < -1 || result.SentimentScore > 1 {
		t.Errorf("SentimentScore = %v, want within [-1, 1]", result.SentimentScore)
	}
	if result.Interpretation == "" {
		t.Error("Interpretation should not be empty")
	}
	if len(result.VisualizationData.XValues) != 100 {
		t.Errorf("len(XValues) = %d, want 100", len(result.VisualizationData.XValues))
	}
}

func TestHandlePsychologyAnalysisLowercaseSymbol(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.get(t, "/api/v1/analysis/psychology/aapl?market_type=stock")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, body)
	}

	var result models.AnalysisResponse
	decodeJSON(t, body, &result)
	if result.Symbol != "AAPL" {
		t.Errorf("Symbol = %q, want normalized AAPL", result.Symbol)
	}
}

func TestHandlePsychologyAnalysisEscapedPair(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.get(t, "/api/v1/analysis/psychology/BTC%2FUSDT?market_type=crypto")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, body)
	}

	var result models.AnalysisResponse
	decodeJSON(t, body, &result)
	if result.Symbol != "BTC/USDT" {
		t.Errorf("Symbol = %q, want BTC/USDT", result.Symbol)
	}
	if result.MarketType != models.MarketKindCrypto {
		t.Errorf("MarketType = %q, want crypto", result.MarketType)
	}
}

func TestHandlePsychologyAnalysisValidation(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		path string
	}{
		{"missing market type", "/api/v1/analysis/psychology/AAPL"},
		{"bad market type", "/api/v1/analysis/psychology/AAPL?market_type=forex"},
		{"bad period", "/api/v1/analysis/psychology/AAPL?market_type=stock&period=2w"},
		{"symbol too long", "/api/v1/analysis/psychology/AAAAAAAAAAAAAAAAAAAAAAAAA?market_type=stock"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := ts.get(t, tt.path)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400, body = %s", resp.StatusCode, body)
			}

			var errBody map[string]string
			decodeJSON(t, body, &errBody)
			if errBody["detail"] == "" {
				t.Error("error detail should not be empty")
			}
		})
	}
}

func TestHandlePsychologyAnalysisInvalidSymbol(t *testing.T) {
	ts := newTestServer(t)
	ts.stock.valid = false

	resp, body := ts.get(t, "/api/v1/analysis/psychology/NOPE?market_type=stock")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400, body = %s", resp.StatusCode, body)
	}
}

func TestHandlePsychologyAnalysisUpstreamDown(t *testing.T) {
	ts := newTestServer(t)
	ts.stock.collectErr = fmt.Errorf("%w: connection refused", models.ErrUpstreamUnreachable)

	resp, body := ts.get(t, "/api/v1/analysis/psychology/AAPL?market_type=stock")
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d, want 502, body = %s", resp.StatusCode, body)
	}
}

func TestHandleQuickAnalysisDefaults(t *testing.T) {
	ts := newTestServer(t)

	// quick analysis defaults to crypto / 3mo
	resp, body := ts.get(t, "/api/v1/analysis/quick/BTC%2FUSDT")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, body)
	}

	var result models.QuickAnalysisResponse
	decodeJSON(t, body, &result)
	if result.Symbol != "BTC/USDT" {
		t.Errorf("Symbol = %q, want BTC/USDT", result.Symbol)
	}
	if result.RiskLevel == "" {
		t.Error("RiskLevel should be set")
	}
	if ts.crypto.collectCalls != 1 {
		t.Errorf("crypto collect calls = %d, want 1", ts.crypto.collectCalls)
	}
}

func TestHandleDistributionData(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.get(t, "/api/v1/analysis/distribution/AAPL?market_type=stock")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, body)
	}

	var viz models.VisualizationData
	decodeJSON(t, body, &viz)

	if len(viz.XValues) != 100 || len(viz.YValues) != 100 {
		t.Errorf("curve lengths = %d/%d, want 100/100", len(viz.XValues), len(viz.YValues))
	}
	for i, y := range viz.YValues {
		if y < 0 {
			t.Fatalf("YValues[%d] = %v, want >= 0", i, y)
		}
	}
}

func TestHandleValidateSymbol(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.get(t, "/api/v1/analysis/validate/AAPL?market_type=stock")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, body)
	}

	var result models.SymbolValidationResponse
	decodeJSON(t, body, &result)
	if !result.IsValid {
		t.Error("IsValid should be true")
	}
	if result.Message == "" {
		t.Error("Message should not be empty")
	}

	ts.stock.valid = false
	resp, body = ts.get(t, "/api/v1/analysis/validate/NOPE?market_type=stock")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, body)
	}
	decodeJSON(t, body, &result)
	if result.IsValid {
		t.Error("IsValid should be false")
	}
}

func TestHandleSupportedSymbols(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.get(t, "/api/v1/analysis/symbols?market_type=stock&limit=5")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, body)
	}

	var result struct {
		MarketType string   `json:"market_type"`
		Symbols    []string `json:"symbols"`
		Count      int      `json:"count"`
	}
	decodeJSON(t, body, &result)

	if result.Count != 5 || len(result.Symbols) != 5 {
		t.Errorf("count = %d, len = %d, want 5", result.Count, len(result.Symbols))
	}

	resp, body = ts.get(t, "/api/v1/analysis/symbols")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status without market_type = %d, want 400, body = %s", resp.StatusCode, body)
	}
}

func TestHandleAnalysisHealth(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.get(t, "/api/v1/analysis/health")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, body)
	}

	var health models.HealthCheckResponse
	decodeJSON(t, body, &health)

	if health.Status != "healthy" {
		t.Errorf("Status = %q, want healthy", health.Status)
	}
	if health.Version != config.Version {
		t.Errorf("Version = %q, want %q", health.Version, config.Version)
	}
	for _, name := range []string{"stock_collector", "crypto_collector", "psychology_analyzer", "cache_manager"} {
		if health.Services[name] == "" {
			t.Errorf("Services[%q] missing", name)
		}
	}
}

func TestHandleInvalidateCache(t *testing.T) {
	ts := newTestServer(t)

	// prime one stock and one crypto entry
	ts.get(t, "/api/v1/analysis/psychology/AAPL?market_type=stock")
	ts.get(t, "/api/v1/analysis/psychology/BTC%2FUSDT?market_type=crypto")

	req, _ := http.NewRequest(http.MethodDelete,
		ts.server.URL+"/api/v1/analysis/cache?symbol=AAPL&market_type=stock", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE error = %v", err)
	}
	defer resp.Body.Close()

	var result struct {
		Message string `json:"message"`
		Count   int    `json:"invalidated_count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode error = %v", err)
	}

	if result.Count != 1 {
		t.Errorf("invalidated_count = %d, want 1", result.Count)
	}

	// crypto entry survives, so the second analysis still hits the cache
	before := ts.crypto.collectCalls
	ts.get(t, "/api/v1/analysis/psychology/BTC%2FUSDT?market_type=crypto")
	if ts.crypto.collectCalls != before {
		t.Error("crypto cache entry should have survived the stock invalidation")
	}
}

func TestHandleCacheStats(t *testing.T) {
	ts := newTestServer(t)
	ts.get(t, "/api/v1/analysis/psychology/AAPL?market_type=stock")

	resp, body := ts.get(t, "/api/v1/analysis/cache/stats")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, body)
	}

	var stats cache.Stats
	decodeJSON(t, body, &stats)
	if stats.TotalKeys != 1 {
		t.Errorf("TotalKeys = %d, want 1", stats.TotalKeys)
	}
	if stats.CacheType != "memory" {
		t.Errorf("CacheType = %q, want memory", stats.CacheType)
	}
}

func TestHandleMarketMetadata(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.get(t, "/api/v1/market/types")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("types status = %d", resp.StatusCode)
	}
	var types struct {
		MarketTypes []map[string]interface{} `json:"market_types"`
	}
	decodeJSON(t, body, &types)
	if len(types.MarketTypes) != 2 {
		t.Errorf("market types = %d, want 2", len(types.MarketTypes))
	}

	resp, body = ts.get(t, "/api/v1/market/periods")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("periods status = %d", resp.StatusCode)
	}
	var periods struct {
		Periods []map[string]string `json:"periods"`
	}
	decodeJSON(t, body, &periods)
	if len(periods.Periods) != 4 {
		t.Errorf("periods = %d, want 4", len(periods.Periods))
	}

	resp, body = ts.get(t, "/api/v1/market/risk-levels")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("risk-levels status = %d", resp.StatusCode)
	}
	var levels struct {
		RiskLevels []map[string]interface{} `json:"risk_levels"`
	}
	decodeJSON(t, body, &levels)
	if len(levels.RiskLevels) != 4 {
		t.Errorf("risk levels = %d, want 4", len(levels.RiskLevels))
	}
	for _, level := range levels.RiskLevels {
		if level["color"] == "" {
			t.Errorf("risk level %v missing color", level["level"])
		}
	}
}

func TestHandleWeather(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.get(t, "/api/v1/activities/weather?city=Seoul")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, body)
	}

	var report models.WeatherReport
	decodeJSON(t, body, &report)
	if report.City != "Seoul" {
		t.Errorf("City = %q, want Seoul", report.City)
	}
	if report.Score.Overall <= 0 {
		t.Errorf("Score.Overall = %v, want > 0", report.Score.Overall)
	}

	resp, _ = ts.get(t, "/api/v1/activities/weather")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status without city = %d, want 400", resp.StatusCode)
	}
}

func TestHandleRecommendActivities(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.get(t, "/api/v1/activities/recommend?city=Seoul")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, body)
	}

	var rec models.ActivityRecommendation
	decodeJSON(t, body, &rec)
	if rec.City != "Seoul" {
		t.Errorf("City = %q, want Seoul", rec.City)
	}
	if len(rec.Indoor)+len(rec.Outdoor) == 0 {
		t.Error("expected at least one activity suggestion")
	}
}

func TestHandleSearchPlaces(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.get(t, "/api/v1/activities/places?city=Seoul&activity=park&radius=1000")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, body)
	}

	var result models.PlaceSearchResult
	decodeJSON(t, body, &result)
	if result.TotalCount != 1 {
		t.Errorf("TotalCount = %d, want 1", result.TotalCount)
	}

	resp, _ = ts.get(t, "/api/v1/activities/places?city=Seoul")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status without activity = %d, want 400", resp.StatusCode)
	}
}

func TestHandleHealthRoot(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.get(t, "/health")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, body)
	}

	var status map[string]interface{}
	decodeJSON(t, body, &status)
	if status["status"] != "ok" {
		t.Errorf("status = %v, want ok", status["status"])
	}
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t)

	req, _ := http.NewRequest(http.MethodOptions, ts.server.URL+"/api/v1/market/types", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("OPTIONS error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("Allow-Origin = %q, want *", resp.Header.Get("Access-Control-Allow-Origin"))
	}
}
