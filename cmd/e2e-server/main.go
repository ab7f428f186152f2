// Package main runs the service on deterministic mock providers for
// end-to-end and dashboard testing: same routes and handlers as the real
// server, no network access to any upstream.
package main

import (
	"fmt"
	"net/http"
	"os"

	"patternleader/activities"
	"patternleader/analysis"
	"patternleader/cache"
	"patternleader/collector"
	"patternleader/config"
	"patternleader/e2e/mocks"
	"patternleader/internal/api"
	"patternleader/observability"
	"patternleader/services"
)

func main() {
	observability.InitLogger(false)
	observability.InitMetrics()

	port := os.Getenv("E2E_SERVER_PORT")
	if port == "" {
		port = "9090"
	}

	cfg := config.NewTestConfig()

	stock := mocks.NewBarProvider("yahoo_finance", "AAPL", "TSLA", "MSFT", "GOOGL", "NVDA")
	crypto := mocks.NewBarProvider("binance", "BTC/USDT", "ETH/USDT", "BNB/USDT", "XRP/USDT")

	pool := services.NewWorkerPool(cfg.Collector.PoolSize)
	defer pool.Stop()

	opts := collector.Options{
		Timeout:       cfg.Collector.Timeout(),
		MaxDataPoints: cfg.Collector.MaxDataPoints,
		Pool:          pool,
	}
	factory := collector.NewFactory(
		collector.NewStockCollector(stock, opts),
		collector.NewCryptoCollector(crypto, opts),
	)

	engine := analysis.NewEngine(factory, analysis.NewPsychologyAnalyzer(),
		cache.NewMemoryCache(cfg.Cache.TTL()), cfg.Cache.TTL(), config.Version)

	activitiesService := activities.NewService(
		&mocks.WeatherProvider{}, &mocks.PlaceProvider{}, pool, activities.Options{})

	handler := api.NewHandler(engine, activitiesService, cfg)
	router := api.NewRouter(handler, cfg)

	addr := fmt.Sprintf(":%s", port)
	observability.Info("e2e server listening", "addr", addr)
	if err := http.ListenAndServe(addr, router); err != nil {
		observability.Fatal("e2e server failed", "error", err)
	}
}
