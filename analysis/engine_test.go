package analysis

import (
	"context"
	"errors"
	"testing"

	"patternleader/cache"
	"patternleader/collector"
	"patternleader/models"

	"github.com/google/uuid"
)

// stubCollector satisfies collector.Collector without touching any
// upstream, so engine tests stay deterministic.
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
	// Real collectors stamp the requested period on the dataset
	data := *s.data
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

func newStockStub(symbol string, bars int) *stubCollector {
	return &stubCollector{
		market: models.MarketKindStock,
		source: "yahoo",
		data:   testMarketData(symbol, models.MarketKindStock, bars),
		valid:  true,
	}
}

func newCryptoStub(symbol string, bars int) *stubCollector {
	return &stubCollector{
		market: models.MarketKindCrypto,
		source: "binance",
		data:   testMarketData(symbol, models.MarketKindCrypto, bars),
		valid:  true,
	}
}

func newTestEngine(stock, crypto *stubCollector) *Engine {
	factory := collector.NewFactory(stock, crypto)
	return NewEngine(factory, NewPsychologyAnalyzer(), cache.NewMemoryCache(0), 0, "1.0.0")
}

func TestEngineAnalyze(t *testing.T) {
	stock := newStockStub("AAPL", 60)
	e := newTestEngine(stock, newCryptoStub("BTC/USDT", 60))

	resp, err := e.Analyze(context.Background(), "AAPL", models.MarketKindStock, "3mo")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if resp.ID == uuid.Nil {
		t.Error("ID should be assigned")
	}
	if resp.Symbol != "AAPL" {
		t.Errorf("Symbol = %q, want AAPL", resp.Symbol)
	}
	if resp.MarketType != models.MarketKindStock {
		t.Errorf("MarketType = %q, want stock", resp.MarketType)
	}
	if resp.DataPointsCount != 60 {
		t.Errorf("DataPointsCount = %d, want 60", resp.DataPointsCount)
	}
	if resp.AnalysisTimestamp.IsZero() {
		t.Error("AnalysisTimestamp should be set")
	}
	if resp.Interpretation == "" {
		t.Error("Interpretation should not be empty")
	}
	if stock.collectCalls != 1 {
		t.Errorf("collect calls = %d, want 1", stock.collectCalls)
	}
}

func TestEngineAnalyzeDefaultPeriod(t *testing.T) {
	e := newTestEngine(newStockStub("AAPL", 60), newCryptoStub("BTC/USDT", 60))

	resp, err := e.Analyze(context.Background(), "AAPL", models.MarketKindStock, "")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if resp.Period != models.DefaultPeriod {
		t.Errorf("Period = %q, want %q", resp.Period, models.DefaultPeriod)
	}
}

func TestEngineAnalyzeCacheHit(t *testing.T) {
	stock := newStockStub("AAPL", 60)
	e := newTestEngine(stock, newCryptoStub("BTC/USDT", 60))

	first, err := e.Analyze(context.Background(), "AAPL", models.MarketKindStock, "3mo")
	if err != nil {
		t.Fatalf("first Analyze() error = %v", err)
	}
	second, err := e.Analyze(context.Background(), "AAPL", models.MarketKindStock, "3mo")
	if err != nil {
		t.Fatalf("second Analyze() error = %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("cached response ID = %v, want %v", second.ID, first.ID)
	}
	if stock.collectCalls != 1 {
		t.Errorf("collect calls = %d, want 1 (second call should hit the cache)", stock.collectCalls)
	}
}

func TestEngineAnalyzeDistinctPeriodsMiss(t *testing.T) {
	stock := newStockStub("AAPL", 60)
	e := newTestEngine(stock, newCryptoStub("BTC/USDT", 60))

	ctx := context.Background()
	if _, err := e.Analyze(ctx, "AAPL", models.MarketKindStock, "1mo"); err != nil {
		t.Fatalf("Analyze(1mo) error = %v", err)
	}
	if _, err := e.Analyze(ctx, "AAPL", models.MarketKindStock, "1y"); err != nil {
		t.Fatalf("Analyze(1y) error = %v", err)
	}

	if stock.collectCalls != 2 {
		t.Errorf("collect calls = %d, want 2 (periods cache separately)", stock.collectCalls)
	}
}

func TestEngineAnalyzeInvalidSymbol(t *testing.T) {
	stock := newStockStub("AAPL", 60)
	stock.valid = false
	e := newTestEngine(stock, newCryptoStub("BTC/USDT", 60))

	_, err := e.Analyze(context.Background(), "FAKE", models.MarketKindStock, "3mo")
	if !errors.Is(err, models.ErrInvalidSymbol) {
		t.Fatalf("Analyze() error = %v, want ErrInvalidSymbol", err)
	}

	want := "분석 실패: 유효하지 않은 심볼입니다: FAKE"
	if err.Error() != want {
		t.Errorf("error = %q, want %q", err.Error(), want)
	}
	if stock.collectCalls != 0 {
		t.Errorf("collect calls = %d, want 0 (validation should gate collection)", stock.collectCalls)
	}
}

func TestEngineAnalyzeValidationUpstreamDown(t *testing.T) {
	stock := newStockStub("AAPL", 60)
	stock.validErr = models.ErrUpstreamUnreachable
	e := newTestEngine(stock, newCryptoStub("BTC/USDT", 60))

	_, err := e.Analyze(context.Background(), "AAPL", models.MarketKindStock, "3mo")
	if !errors.Is(err, models.ErrUpstreamUnreachable) {
		t.Fatalf("Analyze() error = %v, want ErrUpstreamUnreachable", err)
	}
	if errors.Is(err, models.ErrInvalidSymbol) {
		t.Error("an unreachable provider must not read as an invalid symbol")
	}
}

func TestEngineAnalyzeCollectFailure(t *testing.T) {
	stock := newStockStub("AAPL", 60)
	stock.collectErr = models.ErrDataUnavailable
	e := newTestEngine(stock, newCryptoStub("BTC/USDT", 60))

	_, err := e.Analyze(context.Background(), "AAPL", models.MarketKindStock, "3mo")
	if !errors.Is(err, models.ErrDataUnavailable) {
		t.Fatalf("Analyze() error = %v, want ErrDataUnavailable", err)
	}
}

func TestEngineAnalyzeUnsupportedMarket(t *testing.T) {
	e := newTestEngine(newStockStub("AAPL", 60), newCryptoStub("BTC/USDT", 60))

	_, err := e.Analyze(context.Background(), "EURUSD", models.MarketKind("forex"), "3mo")
	if !errors.Is(err, models.ErrUnsupportedMarket) {
		t.Fatalf("Analyze() error = %v, want ErrUnsupportedMarket", err)
	}

	want := "분석 실패: 지원하지 않는 시장 타입: forex"
	if err.Error() != want {
		t.Errorf("error = %q, want %q", err.Error(), want)
	}
}

func TestEngineQuickAnalyze(t *testing.T) {
	e := newTestEngine(newStockStub("AAPL", 60), newCryptoStub("BTC/USDT", 60))

	quick, err := e.QuickAnalyze(context.Background(), "BTC/USDT", models.MarketKindCrypto, "3mo")
	if err != nil {
		t.Fatalf("QuickAnalyze() error = %v", err)
	}
	if quick.Symbol != "BTC/USDT" {
		t.Errorf("Symbol = %q, want BTC/USDT", quick.Symbol)
	}
	if quick.Interpretation == "" {
		t.Error("Interpretation should not be empty")
	}
	if quick.AnalysisTimestamp.IsZero() {
		t.Error("AnalysisTimestamp should be set")
	}
}

func TestEngineDistributionData(t *testing.T) {
	e := newTestEngine(newStockStub("AAPL", 60), newCryptoStub("BTC/USDT", 60))

	viz, err := e.DistributionData(context.Background(), "AAPL", models.MarketKindStock, "3mo")
	if err != nil {
		t.Fatalf("DistributionData() error = %v", err)
	}
	if len(viz.XValues) != 100 || len(viz.YValues) != 100 {
		t.Errorf("curve size = %d/%d, want 100/100", len(viz.XValues), len(viz.YValues))
	}
	if len(viz.Zones) != 3 {
		t.Errorf("zone count = %d, want 3", len(viz.Zones))
	}
}

func TestEngineValidateSymbol(t *testing.T) {
	stock := newStockStub("AAPL", 60)
	crypto := newCryptoStub("BTC/USDT", 60)
	crypto.valid = false
	e := newTestEngine(stock, crypto)

	ctx := context.Background()
	if valid, err := e.ValidateSymbol(ctx, "AAPL", models.MarketKindStock); err != nil || !valid {
		t.Errorf("ValidateSymbol(stock) = %v, %v, want true, nil", valid, err)
	}
	if valid, err := e.ValidateSymbol(ctx, "NOPE/USDT", models.MarketKindCrypto); err != nil || valid {
		t.Errorf("ValidateSymbol(crypto) = %v, %v, want false, nil", valid, err)
	}
	if _, err := e.ValidateSymbol(ctx, "EURUSD", models.MarketKind("forex")); !errors.Is(err, models.ErrUnsupportedMarket) {
		t.Errorf("ValidateSymbol(forex) error = %v, want ErrUnsupportedMarket", err)
	}
}

func TestEngineSupportedSymbols(t *testing.T) {
	e := newTestEngine(newStockStub("AAPL", 60), newCryptoStub("BTC/USDT", 60))

	symbols, err := e.SupportedSymbols(models.MarketKindStock, 0)
	if err != nil {
		t.Fatalf("SupportedSymbols() error = %v", err)
	}
	if len(symbols) != 25 {
		t.Errorf("len = %d, want 25", len(symbols))
	}
	if symbols[0] != "AAPL" {
		t.Errorf("symbols[0] = %q, want AAPL", symbols[0])
	}
}

func TestEngineHealthCheck(t *testing.T) {
	e := newTestEngine(newStockStub("AAPL", 60), newCryptoStub("BTC/USDT", 60))

	health := e.HealthCheck(context.Background())
	if health.Status != "healthy" {
		t.Errorf("Status = %q, want healthy", health.Status)
	}
	if health.Version != "1.0.0" {
		t.Errorf("Version = %q, want 1.0.0", health.Version)
	}
	if health.UptimeSeconds < 0 {
		t.Errorf("UptimeSeconds = %v, want >= 0", health.UptimeSeconds)
	}

	for _, name := range []string{"stock_collector", "crypto_collector", "psychology_analyzer", "cache_manager"} {
		if health.Services[name] != "healthy" {
			t.Errorf("Services[%q] = %q, want healthy", name, health.Services[name])
		}
	}
	if len(health.Services) != 4 {
		t.Errorf("service count = %d, want 4", len(health.Services))
	}
}

func TestEngineInvalidateCache(t *testing.T) {
	seed := func(t *testing.T, e *Engine) {
		t.Helper()
		ctx := context.Background()
		for _, c := range []struct {
			symbol string
			market models.MarketKind
			period string
		}{
			{"AAPL", models.MarketKindStock, "1mo"},
			{"AAPL", models.MarketKindStock, "3mo"},
			{"MSFT", models.MarketKindStock, "3mo"},
			{"BTC/USDT", models.MarketKindCrypto, "3mo"},
		} {
			if _, err := e.Analyze(ctx, c.symbol, c.market, c.period); err != nil {
				t.Fatalf("seeding %s failed: %v", c.symbol, err)
			}
		}
	}

	tests := []struct {
		name      string
		symbol    string
		market    models.MarketKind
		wantCount int
		wantLeft  int
	}{
		{"symbol and market", "AAPL", models.MarketKindStock, 2, 2},
		{"market only", "", models.MarketKindStock, 3, 1},
		{"everything", "", "", 4, 0},
		{"symbol without market clears everything", "AAPL", "", 4, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(newStockStub("AAPL", 60), newCryptoStub("BTC/USDT", 60))
			seed(t, e)

			if got := e.InvalidateCache(tt.symbol, tt.market); got != tt.wantCount {
				t.Errorf("InvalidateCache() = %d, want %d", got, tt.wantCount)
			}
			if left := e.CacheStats().TotalKeys; left != tt.wantLeft {
				t.Errorf("remaining keys = %d, want %d", left, tt.wantLeft)
			}
		})
	}
}

func TestEngineCacheStats(t *testing.T) {
	e := newTestEngine(newStockStub("AAPL", 60), newCryptoStub("BTC/USDT", 60))

	if _, err := e.Analyze(context.Background(), "AAPL", models.MarketKindStock, "3mo"); err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	stats := e.CacheStats()
	if stats.TotalKeys != 1 {
		t.Errorf("TotalKeys = %d, want 1", stats.TotalKeys)
	}
	if stats.CacheType != "memory" {
		t.Errorf("CacheType = %q, want memory", stats.CacheType)
	}
}
