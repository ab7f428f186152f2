package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"patternleader/activities"
	"patternleader/analysis"
	"patternleader/cache"
	"patternleader/collector"
	"patternleader/config"
	"patternleader/internal/api"
	"patternleader/observability"
	"patternleader/services"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	observability.InitLoggerWithLevel(!cfg.Server.Debug, parseLogLevel(cfg.Server.LogLevel))
	observability.InitMetrics()

	observability.Info("starting patternleader",
		"version", config.Version,
		"addr", cfg.Server.Addr(),
		"equity_source", cfg.Collector.EquitySource,
		"crypto_exchange", cfg.Collector.CryptoExchange)

	// Analysis cache; redis falls back to memory with a warning
	store := cache.New(cfg.Cache.Type, cfg.Cache.TTL())

	// One shared pool bounds all provider I/O
	pool := services.NewWorkerPool(cfg.Collector.PoolSize)
	defer pool.Stop()

	opts := collector.Options{
		Timeout:       cfg.Collector.Timeout(),
		MaxDataPoints: cfg.Collector.MaxDataPoints,
		Pool:          pool,
	}
	factory := collector.NewFactory(
		collector.NewStockCollector(equityProvider(cfg), opts),
		collector.NewCryptoCollector(cryptoProvider(cfg), opts),
	)
	observability.Info("collectors initialized", "sources", factory.Sources())

	engine := analysis.NewEngine(factory, analysis.NewPsychologyAnalyzer(),
		store, cfg.Cache.TTL(), config.Version)

	var weather services.WeatherProvider
	if cfg.HasOpenWeather() {
		weather = services.NewOpenWeatherService(cfg.OpenWeather.APIKey)
	} else {
		observability.Warn("OPEN_WEATHER_MAP_API_KEY not set, activity recommendations degrade to indoor suggestions")
	}
	activitiesService := activities.NewService(weather, services.NewOverpassService(), pool, activities.Options{})

	// Periodically sweep expired cache entries
	janitor := cron.New()
	if _, err := janitor.AddFunc(fmt.Sprintf("@every %s", cfg.Cache.CleanupInterval), func() {
		if removed := store.CleanupExpired(); removed > 0 {
			observability.Info("expired cache entries removed", "count", removed)
		}
	}); err != nil {
		observability.Fatal("failed to schedule cache janitor", "error", err)
	}
	janitor.Start()
	defer janitor.Stop()

	handler := api.NewHandler(engine, activitiesService, cfg)
	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           api.NewRouter(handler, cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		observability.Info("http server listening", "addr", cfg.Server.Addr())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			observability.Fatal("http server failed", "error", err)
		}
	}()

	// Block until interrupted, then drain in-flight requests
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	observability.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		observability.Error("graceful shutdown failed", "error", err)
	}
	observability.Info("shutdown complete")
}

// equityProvider selects the stock history source from configuration.
// Yahoo needs no credentials; Alpaca is opt-in when keys are present.
func equityProvider(cfg *config.Config) services.BarProvider {
	if cfg.Collector.EquitySource == "alpaca" && cfg.HasAlpaca() {
		return services.NewAlpacaService(cfg.Alpaca.APIKey, cfg.Alpaca.APISecret, cfg.Alpaca.BaseURL)
	}
	return services.NewYahooService(cfg.Collector.Timeout())
}

// cryptoProvider selects the crypto exchange from configuration
func cryptoProvider(cfg *config.Config) services.BarProvider {
	if cfg.Collector.CryptoExchange == "bybit" {
		return services.NewBybitService(cfg.Collector.Timeout())
	}
	return services.NewBinanceService(cfg.Collector.Timeout())
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
