package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"patternleader/cache"
	"patternleader/catalog"
	"patternleader/collector"
	"patternleader/models"
	"patternleader/observability"
)

// Engine orchestrates one analysis round trip: cache lookup, symbol
// validation, collection, psychology analysis and cache write-back.
type Engine struct {
	collectors *collector.Factory
	analyzer   *PsychologyAnalyzer
	store      *cache.MemoryCache
	cacheTTL   time.Duration
	version    string
	startedAt  time.Time
}

// NewEngine creates a new Engine instance
func NewEngine(collectors *collector.Factory, analyzer *PsychologyAnalyzer, store *cache.MemoryCache, cacheTTL time.Duration, version string) *Engine {
	return &Engine{
		collectors: collectors,
		analyzer:   analyzer,
		store:      store,
		cacheTTL:   cacheTTL,
		version:    version,
		startedAt:  time.Now(),
	}
}

// Analyze runs the full analysis flow for one symbol. Results are cached
// per (market, symbol, period); a cache hit is returned untouched.
func (e *Engine) Analyze(ctx context.Context, symbol string, market models.MarketKind, period string) (*models.AnalysisResponse, error) {
	if period == "" {
		period = models.DefaultPeriod
	}

	start := time.Now()
	metrics := observability.GetMetrics()
	metrics.RecordAnalysisRequest(symbol, string(market))

	response, err := e.analyze(ctx, symbol, market, period)
	if err != nil {
		metrics.RecordAnalysisDuration(string(market), "error", time.Since(start))
		metrics.RecordAnalysisError(string(market), errorLabel(err))
		observability.Error("analysis failed",
			"symbol", symbol, "market_type", market, "period", period, "error", err)
		return nil, fmt.Errorf("분석 실패: %w", err)
	}

	metrics.RecordAnalysisDuration(string(market), "success", time.Since(start))
	metrics.RecordAnalysisResult(string(market), string(response.RiskLevel),
		response.SentimentScore, response.ConfidenceScore)
	observability.Info("analysis complete",
		"symbol", symbol, "market_type", market, "period", period,
		"duration", time.Since(start), "risk_level", response.RiskLevel)
	return response, nil
}

func (e *Engine) analyze(ctx context.Context, symbol string, market models.MarketKind, period string) (*models.AnalysisResponse, error) {
	key := cache.Key(string(market), symbol, period)
	if cached, ok := e.store.Get(key); ok {
		if response, ok := cached.(*models.AnalysisResponse); ok {
			observability.GetMetrics().RecordCacheHit(string(market))
			observability.Debug("analysis served from cache", "symbol", symbol, "key", key)
			return response, nil
		}
	}
	observability.GetMetrics().RecordCacheMiss(string(market))

	coll, err := e.collectors.ForMarket(market)
	if err != nil {
		return nil, err
	}

	valid, err := coll.Validate(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if !valid {
		return nil, fmt.Errorf("%w: %s", models.ErrInvalidSymbol, symbol)
	}

	data, err := coll.Collect(ctx, symbol, period)
	if err != nil {
		return nil, err
	}

	result, err := e.analyzer.Analyze(data)
	if err != nil {
		return nil, err
	}

	response := models.NewAnalysisResponse(result, data)
	e.store.Set(key, response, e.cacheTTL)
	return response, nil
}

// QuickAnalyze runs the full analysis and projects the compact payload
func (e *Engine) QuickAnalyze(ctx context.Context, symbol string, market models.MarketKind, period string) (*models.QuickAnalysisResponse, error) {
	full, err := e.Analyze(ctx, symbol, market, period)
	if err != nil {
		return nil, err
	}
	return full.Quick(), nil
}

// DistributionData runs the full analysis and returns only the density
// curve payload
func (e *Engine) DistributionData(ctx context.Context, symbol string, market models.MarketKind, period string) (*models.VisualizationData, error) {
	full, err := e.Analyze(ctx, symbol, market, period)
	if err != nil {
		return nil, err
	}
	return &full.VisualizationData, nil
}

// ValidateSymbol reports whether the market's provider knows the symbol.
// Transport failures surface as errors rather than a false verdict.
func (e *Engine) ValidateSymbol(ctx context.Context, symbol string, market models.MarketKind) (bool, error) {
	coll, err := e.collectors.ForMarket(market)
	if err != nil {
		return false, err
	}
	return coll.Validate(ctx, symbol)
}

// SupportedSymbols returns up to limit well-known symbols for the market
func (e *Engine) SupportedSymbols(market models.MarketKind, limit int) ([]string, error) {
	return catalog.Symbols(market, limit)
}

// HealthCheck reports component statuses. It never fails; trouble shows
// up as a degraded status instead.
func (e *Engine) HealthCheck(ctx context.Context) *models.HealthCheckResponse {
	health := &models.HealthCheckResponse{
		Status:        "healthy",
		Timestamp:     time.Now().UTC(),
		Version:       e.version,
		Services:      make(map[string]string),
		UptimeSeconds: time.Since(e.startedAt).Seconds(),
	}

	for _, market := range models.MarketKinds() {
		name := string(market) + "_collector"
		if coll, err := e.collectors.ForMarket(market); err == nil && coll != nil {
			health.Services[name] = "healthy"
		} else {
			health.Services[name] = "degraded"
			health.Status = "degraded"
		}
	}
	health.Services["psychology_analyzer"] = "healthy"
	health.Services["cache_manager"] = "healthy"

	return health
}

// InvalidateCache drops cached analyses. With symbol and market it clears
// one symbol's periods, with market alone one market, otherwise everything.
// It never fails; the count reports what was dropped.
func (e *Engine) InvalidateCache(symbol string, market models.MarketKind) int {
	var pattern string
	switch {
	case symbol != "" && market != "":
		pattern = fmt.Sprintf("analysis:%s:%s:*", market, symbol)
	case market != "":
		pattern = fmt.Sprintf("analysis:%s:*", market)
	default:
		pattern = "analysis:*"
	}

	count := e.store.InvalidatePattern(pattern)
	observability.Info("cache invalidated", "pattern", pattern, "count", count)
	return count
}

// CacheStats reports the cache key-space summary
func (e *Engine) CacheStats() cache.Stats {
	return e.store.Stats()
}

// errorLabel buckets an analysis error for metrics
func errorLabel(err error) string {
	switch {
	case errors.Is(err, models.ErrInvalidSymbol):
		return "invalid_symbol"
	case errors.Is(err, models.ErrInsufficientData):
		return "insufficient_data"
	case errors.Is(err, models.ErrDataUnavailable):
		return "data_unavailable"
	case errors.Is(err, models.ErrUnsupportedMarket):
		return "unsupported_market"
	case errors.Is(err, models.ErrUpstreamTimeout):
		return "timeout"
	case errors.Is(err, models.ErrUpstreamUnreachable):
		return "unreachable"
	default:
		return "internal"
	}
}
