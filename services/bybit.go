package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"patternleader/models"

	"github.com/shopspring/decimal"
)

// BybitService fetches daily candlesticks from the Bybit V5 spot REST API
type BybitService struct {
	httpClient *http.Client
	baseURL    string
	category   string
}

// NewBybitService creates a new BybitService instance
func NewBybitService(timeout time.Duration) *BybitService {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &BybitService{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    "https://api.bybit.com",
		category:   "spot",
	}
}

// Name returns the provider identifier used in logs and metrics
func (s *BybitService) Name() string {
	return "bybit"
}

// bybitKlineResponse is the V5 kline envelope. Each list entry is a
// positional string array: [startTime, open, high, low, close, volume, turnover].
type bybitKlineResponse struct {
	RetCode int    `json:"retCode"`
	RetMsg  string `json:"retMsg"`
	Result  struct {
		Category string     `json:"category"`
		Symbol   string     `json:"symbol"`
		List     [][]string `json:"list"`
	} `json:"result"`
}

// bybitInstrumentsResponse is the V5 instruments-info envelope
type bybitInstrumentsResponse struct {
	RetCode int    `json:"retCode"`
	RetMsg  string `json:"retMsg"`
	Result  struct {
		List []struct {
			Symbol string `json:"symbol"`
			Status string `json:"status"`
		} `json:"list"`
	} `json:"result"`
}

// FetchDailyBars returns up to days of daily bars for a pair, oldest first.
// Bybit lists klines newest first, so rows are re-sorted ascending.
func (s *BybitService) FetchDailyBars(ctx context.Context, symbol string, days int) ([]models.Bar, error) {
	return WithCircuitBreaker(ctx, BreakerBybit, func() ([]models.Bar, error) {
		var bars []models.Bar

		err := WithRetry(ctx, DefaultRetryConfig, func() error {
			params := url.Values{}
			params.Set("category", s.category)
			params.Set("symbol", binanceSymbol(symbol))
			params.Set("interval", "D")
			params.Set("limit", strconv.Itoa(days))

			body, err := s.sendPublicRequest(ctx, "/v5/market/kline", params)
			if err != nil {
				return err
			}

			var klineResp bybitKlineResponse
			if err := json.Unmarshal(body, &klineResp); err != nil {
				return fmt.Errorf("failed to parse kline response: %w", err)
			}
			if klineResp.RetCode != 0 {
				return fmt.Errorf("kline API error %d: %s", klineResp.RetCode, klineResp.RetMsg)
			}

			parsed := make([]models.Bar, 0, len(klineResp.Result.List))
			for _, row := range klineResp.Result.List {
				bar, ok := parseBybitKline(row)
				if !ok {
					continue
				}
				parsed = append(parsed, bar)
			}

			sort.Slice(parsed, func(i, j int) bool { return parsed[i].Timestamp.Before(parsed[j].Timestamp) })
			bars = parsed
			return nil
		})
		if err != nil {
			return nil, err
		}
		return bars, nil
	})
}

// ValidateSymbol checks pair existence against the instruments-info endpoint.
// An empty instrument list is a definitive unknown symbol, not an error.
func (s *BybitService) ValidateSymbol(ctx context.Context, symbol string) (bool, error) {
	return WithCircuitBreaker(ctx, BreakerBybit, func() (bool, error) {
		params := url.Values{}
		params.Set("category", s.category)
		params.Set("symbol", binanceSymbol(symbol))

		body, err := s.sendPublicRequest(ctx, "/v5/market/instruments-info", params)
		if err != nil {
			return false, err
		}

		var infoResp bybitInstrumentsResponse
		if err := json.Unmarshal(body, &infoResp); err != nil {
			return false, fmt.Errorf("failed to parse instruments response: %w", err)
		}
		if infoResp.RetCode != 0 {
			return false, nil
		}
		return len(infoResp.Result.List) > 0, nil
	})
}

func (s *BybitService) sendPublicRequest(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	reqURL := s.baseURL + endpoint
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}

// parseBybitKline converts one positional kline row into a Bar
func parseBybitKline(row []string) (models.Bar, bool) {
	if len(row) < 6 {
		return models.Bar{}, false
	}

	startMs, err := strconv.ParseInt(row[0], 10, 64)
	if err != nil {
		return models.Bar{}, false
	}

	prices := make([]decimal.Decimal, 0, 5)
	for _, v := range row[1:6] {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return models.Bar{}, false
		}
		prices = append(prices, d)
	}

	return models.Bar{
		Timestamp: time.UnixMilli(startMs).UTC(),
		Open:      prices[0],
		High:      prices[1],
		Low:       prices[2],
		Close:     prices[3],
		Volume:    prices[4],
	}, true
}
