// Package api exposes the analysis engine and the activities service
// over HTTP. It owns boundary validation and the error-to-status mapping;
// everything behind it works with already-normalized inputs.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"patternleader/activities"
	"patternleader/analysis"
	"patternleader/config"
	"patternleader/models"
	"patternleader/observability"
	"patternleader/services"

	"github.com/go-chi/chi/v5"
)

// MaxSymbolLength is the longest symbol the API accepts
const MaxSymbolLength = 20

// Handler handles HTTP API requests
type Handler struct {
	engine     *analysis.Engine
	activities *activities.Service
	cfg        *config.Config
}

// NewHandler creates a new Handler
func NewHandler(engine *analysis.Engine, activitiesService *activities.Service, cfg *config.Config) *Handler {
	return &Handler{engine: engine, activities: activitiesService, cfg: cfg}
}

// HandlePsychologyAnalysis runs the full psychology analysis for one symbol
func (h *Handler) HandlePsychologyAnalysis(w http.ResponseWriter, r *http.Request) {
	symbol, err := h.symbolParam(r)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	market, err := h.marketParam(r, "")
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	period, err := h.periodParam(r)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	// exchange is a crypto-only pass-through; the venue itself is fixed
	// by configuration at startup
	if exchange := r.URL.Query().Get("exchange"); exchange != "" {
		observability.Debug("exchange hint ignored", "symbol", symbol, "exchange", exchange)
	}

	result, err := h.engine.Analyze(r.Context(), symbol, market, period)
	if err != nil {
		h.jsonError(w, err.Error(), errorStatus(err))
		return
	}

	h.jsonResponse(w, result)
}

// HandleQuickAnalysis returns the trimmed analysis payload
func (h *Handler) HandleQuickAnalysis(w http.ResponseWriter, r *http.Request) {
	symbol, err := h.symbolParam(r)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	market, err := h.marketParam(r, models.MarketKindCrypto)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	period, err := h.periodParam(r)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.engine.QuickAnalyze(r.Context(), symbol, market, period)
	if err != nil {
		h.jsonError(w, err.Error(), errorStatus(err))
		return
	}

	h.jsonResponse(w, result)
}

// HandleDistributionData returns only the KDE visualization payload
func (h *Handler) HandleDistributionData(w http.ResponseWriter, r *http.Request) {
	symbol, err := h.symbolParam(r)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	market, err := h.marketParam(r, "")
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	period, err := h.periodParam(r)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	viz, err := h.engine.DistributionData(r.Context(), symbol, market, period)
	if err != nil {
		h.jsonError(w, err.Error(), errorStatus(err))
		return
	}

	h.jsonResponse(w, viz)
}

// HandleValidateSymbol checks whether a symbol resolves on its market
func (h *Handler) HandleValidateSymbol(w http.ResponseWriter, r *http.Request) {
	symbol, err := h.symbolParam(r)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	market, err := h.marketParam(r, "")
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	valid, err := h.engine.ValidateSymbol(r.Context(), symbol, market)
	if err != nil {
		h.jsonError(w, err.Error(), errorStatus(err))
		return
	}

	message := fmt.Sprintf("'%s'은(는) 유효한 %s 심볼입니다.", symbol, market)
	if !valid {
		message = fmt.Sprintf("'%s'은(는) 유효하지 않은 심볼입니다.", symbol)
	}

	h.jsonResponse(w, models.SymbolValidationResponse{
		Symbol:     symbol,
		IsValid:    valid,
		MarketType: market,
		Message:    message,
	})
}

// HandleSupportedSymbols lists the curated symbols for one market
func (h *Handler) HandleSupportedSymbols(w http.ResponseWriter, r *http.Request) {
	market, err := h.marketParam(r, "")
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	limit := h.ParseLimitParam(r, 50)

	symbols, err := h.engine.SupportedSymbols(market, limit)
	if err != nil {
		h.jsonError(w, err.Error(), errorStatus(err))
		return
	}

	h.jsonResponse(w, map[string]interface{}{
		"market_type": market,
		"symbols":     symbols,
		"count":       len(symbols),
	})
}

// HandleAnalysisHealth reports the engine's component health
func (h *Handler) HandleAnalysisHealth(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, h.engine.HealthCheck(r.Context()))
}

// HandleInvalidateCache drops cached analyses by symbol, market or entirely
func (h *Handler) HandleInvalidateCache(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("symbol")))

	var market models.MarketKind
	if raw := r.URL.Query().Get("market_type"); raw != "" {
		market = models.MarketKind(raw)
		if !market.IsValid() {
			h.jsonError(w, fmt.Sprintf("%s: %s", models.ErrUnsupportedMarket, raw), http.StatusBadRequest)
			return
		}
	}

	count := h.engine.InvalidateCache(symbol, market)

	h.jsonResponse(w, map[string]interface{}{
		"message":           "캐시가 삭제되었습니다",
		"invalidated_count": count,
	})
}

// HandleCacheStats reports the cache key-space summary
func (h *Handler) HandleCacheStats(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, h.engine.CacheStats())
}

// HandleMarketTypes lists the supported market types
func (h *Handler) HandleMarketTypes(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, map[string]interface{}{
		"market_types": []map[string]interface{}{
			{
				"value":       models.MarketKindStock,
				"label":       "주식",
				"description": "Yahoo Finance를 통한 주식 시장 데이터",
				"examples":    []string{"AAPL", "TSLA", "GOOGL", "MSFT"},
			},
			{
				"value":       models.MarketKindCrypto,
				"label":       "암호화폐",
				"description": "Binance를 통한 암호화폐 시장 데이터",
				"examples":    []string{"BTC/USDT", "ETH/USDT", "BNB/USDT", "XRP/USDT"},
			},
		},
	})
}

// HandleAnalysisPeriods lists the supported lookback periods
func (h *Handler) HandleAnalysisPeriods(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, map[string]interface{}{
		"periods": []map[string]string{
			{"value": "1mo", "label": "1개월", "description": "최근 1개월간의 데이터로 분석", "recommended_for": "단기 트레이딩"},
			{"value": "3mo", "label": "3개월", "description": "최근 3개월간의 데이터로 분석 (기본값)", "recommended_for": "일반적인 투자 분석"},
			{"value": "6mo", "label": "6개월", "description": "최근 6개월간의 데이터로 분석", "recommended_for": "중기 투자 분석"},
			{"value": "1y", "label": "1년", "description": "최근 1년간의 데이터로 분석", "recommended_for": "장기 트렌드 분석"},
		},
	})
}

// HandleRiskLevels describes the risk buckets and their display colors
func (h *Handler) HandleRiskLevels(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, map[string]interface{}{
		"risk_levels": []map[string]interface{}{
			{
				"level":          models.RiskLevelLow,
				"label":          "낮음",
				"color":          "#22c55e",
				"description":    "안정적인 시장 상황으로 리스크가 낮습니다",
				"recommendation": "일반적인 투자 전략을 적용할 수 있습니다",
			},
			{
				"level":          models.RiskLevelMedium,
				"label":          "보통",
				"color":          "#eab308",
				"description":    "중간 수준의 리스크가 있어 주의가 필요합니다",
				"recommendation": "신중한 접근과 분할 투자를 고려하세요",
			},
			{
				"level":          models.RiskLevelHigh,
				"label":          "높음",
				"color":          "#f97316",
				"description":    "높은 리스크 상황으로 각별한 주의가 필요합니다",
				"recommendation": "리스크 관리와 손실 제한을 우선시하세요",
			},
			{
				"level":          models.RiskLevelExtreme,
				"label":          "극도",
				"color":          "#ef4444",
				"description":    "극도로 높은 리스크 상황입니다",
				"recommendation": "투자를 중단하거나 매우 보수적으로 접근하세요",
			},
		},
	})
}

// HandleWeather reports current conditions and suitability for a city
func (h *Handler) HandleWeather(w http.ResponseWriter, r *http.Request) {
	city, err := cityParam(r)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	report, err := h.activities.Weather(r.Context(), city)
	if err != nil {
		h.jsonError(w, err.Error(), activityErrorStatus(err))
		return
	}

	h.jsonResponse(w, report)
}

// HandleRecommendActivities builds the combined weather and activity response
func (h *Handler) HandleRecommendActivities(w http.ResponseWriter, r *http.Request) {
	city, err := cityParam(r)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	radius := h.parseRadiusParam(r)

	recommendation, err := h.activities.Recommend(r.Context(), city, radius)
	if err != nil {
		h.jsonError(w, err.Error(), activityErrorStatus(err))
		return
	}

	h.jsonResponse(w, recommendation)
}

// HandleSearchPlaces searches points of interest around a city
func (h *Handler) HandleSearchPlaces(w http.ResponseWriter, r *http.Request) {
	city, err := cityParam(r)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	activityType := r.URL.Query().Get("activity")
	if activityType == "" {
		h.jsonError(w, "activity 파라미터가 필요합니다", http.StatusBadRequest)
		return
	}
	radius := h.parseRadiusParam(r)

	result, err := h.activities.Places(r.Context(), city, activityType, radius)
	if err != nil {
		h.jsonError(w, err.Error(), activityErrorStatus(err))
		return
	}

	h.jsonResponse(w, result)
}

// HandleHealth is the root liveness probe. It folds in circuit breaker
// state so an upstream outage is visible without hitting the analysis
// health endpoint.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":  "ok",
		"version": config.Version,
	}

	cbStatus := services.GetGlobalRegistry().Status()
	status["circuit_breakers"] = cbStatus
	for _, cb := range cbStatus {
		if cb.State == "open" {
			status["status"] = "degraded"
			break
		}
	}

	h.jsonResponse(w, status)
}

// symbolParam extracts and normalizes the symbol path parameter. Symbols
// such as BTC/USDT arrive percent-encoded.
func (h *Handler) symbolParam(r *http.Request) (string, error) {
	raw := chi.URLParam(r, "symbol")
	if decoded, err := url.PathUnescape(raw); err == nil {
		raw = decoded
	}

	symbol := strings.ToUpper(strings.TrimSpace(raw))
	if symbol == "" {
		return "", fmt.Errorf("심볼이 필요합니다")
	}
	if len(symbol) > MaxSymbolLength {
		return "", fmt.Errorf("심볼이 너무 깁니다: %s", symbol)
	}
	return symbol, nil
}

// marketParam reads the market_type query parameter. An empty fallback
// makes the parameter mandatory.
func (h *Handler) marketParam(r *http.Request, fallback models.MarketKind) (models.MarketKind, error) {
	raw := r.URL.Query().Get("market_type")
	if raw == "" {
		if fallback != "" {
			return fallback, nil
		}
		return "", fmt.Errorf("market_type 파라미터가 필요합니다")
	}

	market := models.MarketKind(raw)
	if !market.IsValid() {
		return "", fmt.Errorf("%w: %s", models.ErrUnsupportedMarket, raw)
	}
	return market, nil
}

func (h *Handler) periodParam(r *http.Request) (string, error) {
	period := r.URL.Query().Get("period")
	if period == "" {
		return models.DefaultPeriod, nil
	}
	if !models.IsSupportedPeriod(period) {
		return "", fmt.Errorf("지원하지 않는 분석 기간: %s", period)
	}
	return period, nil
}

func cityParam(r *http.Request) (string, error) {
	city := strings.TrimSpace(r.URL.Query().Get("city"))
	if city == "" {
		return "", fmt.Errorf("city 파라미터가 필요합니다")
	}
	return city, nil
}

// ParseLimitParam extracts a positive limit query parameter with a default
func (h *Handler) ParseLimitParam(r *http.Request, defaultLimit int) int {
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			return l
		}
	}
	return defaultLimit
}

func (h *Handler) parseRadiusParam(r *http.Request) int {
	if radiusStr := r.URL.Query().Get("radius"); radiusStr != "" {
		if radius, err := strconv.Atoi(radiusStr); err == nil && radius > 0 {
			return radius
		}
	}
	return 0
}

// errorStatus maps the analysis error taxonomy onto HTTP status codes
func errorStatus(err error) int {
	switch {
	case models.IsClientError(err):
		return http.StatusBadRequest
	case models.IsUpstreamError(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func activityErrorStatus(err error) int {
	if errors.Is(err, activities.ErrWeatherDisabled) {
		return http.StatusServiceUnavailable
	}
	return errorStatus(err)
}

func (h *Handler) jsonResponse(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"detail": message})
}
