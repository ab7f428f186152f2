// Package e2e provides the scenario-test infrastructure: a fully wired
// service on deterministic mock providers, driven through the real HTTP
// router.
package e2e

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"patternleader/activities"
	"patternleader/analysis"
	"patternleader/cache"
	"patternleader/collector"
	"patternleader/config"
	"patternleader/e2e/mocks"
	"patternleader/internal/api"
	"patternleader/services"
)

// TestHarness wires the full stack on mock providers
type TestHarness struct {
	t      *testing.T
	router http.Handler

	Config *config.Config
	Stock  *mocks.BarProvider
	Crypto *mocks.BarProvider
	Cache  *cache.MemoryCache
	Engine *analysis.Engine
	Pool   *services.WorkerPool
}

// NewTestHarness builds a harness with the default symbol fixtures
func NewTestHarness(t *testing.T) *TestHarness {
	t.Helper()

	cfg := config.NewTestConfig()

	stock := mocks.NewBarProvider("yahoo_finance", "AAPL", "TSLA", "MSFT")
	crypto := mocks.NewBarProvider("binance", "BTC/USDT", "ETH/USDT")

	pool := services.NewWorkerPool(cfg.Collector.PoolSize)
	t.Cleanup(pool.Stop)

	opts := collector.Options{
		Timeout:       cfg.Collector.Timeout(),
		MaxDataPoints: cfg.Collector.MaxDataPoints,
		Pool:          pool,
	}
	factory := collector.NewFactory(
		collector.NewStockCollector(stock, opts),
		collector.NewCryptoCollector(crypto, opts),
	)

	store := cache.NewMemoryCache(cfg.Cache.TTL())
	engine := analysis.NewEngine(factory, analysis.NewPsychologyAnalyzer(),
		store, cfg.Cache.TTL(), config.Version)

	activitiesService := activities.NewService(
		&mocks.WeatherProvider{}, &mocks.PlaceProvider{}, pool, activities.Options{})

	services.SetGlobalRegistry(services.NewCircuitBreakerRegistry(services.DefaultCircuitBreakerConfig))

	handler := api.NewHandler(engine, activitiesService, cfg)

	return &TestHarness{
		t:      t,
		router: api.NewRouter(handler, cfg),
		Config: cfg,
		Stock:  stock,
		Crypto: crypto,
		Cache:  store,
		Engine: engine,
		Pool:   pool,
	}
}

// DoRequest performs an HTTP request against the router
func (h *TestHarness) DoRequest(method, path string) *httptest.ResponseRecorder {
	h.t.Helper()

	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

// Get is shorthand for a GET request
func (h *TestHarness) Get(path string) *httptest.ResponseRecorder {
	return h.DoRequest(http.MethodGet, path)
}

// BodyContains reports whether the recorded body contains substr
func BodyContains(w *httptest.ResponseRecorder, substr string) bool {
	return strings.Contains(w.Body.String(), substr)
}
