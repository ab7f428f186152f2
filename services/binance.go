package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"patternleader/models"

	"github.com/shopspring/decimal"
)

// BinanceService fetches daily candlesticks from the Binance spot REST API.
// Market data endpoints are public, no API key required.
type BinanceService struct {
	httpClient *http.Client
	baseURL    string
}

// NewBinanceService creates a new BinanceService instance
func NewBinanceService(timeout time.Duration) *BinanceService {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &BinanceService{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    "https://api.binance.com",
	}
}

// Name returns the provider identifier used in logs and metrics
func (s *BinanceService) Name() string {
	return "binance"
}

// binanceSymbol converts pair notation ("BTC/USDT") into Binance's compact
// form ("BTCUSDT").
func binanceSymbol(symbol string) string {
	return strings.ToUpper(strings.ReplaceAll(symbol, "/", ""))
}

// FetchDailyBars returns up to days of daily bars for a pair, oldest first.
// Kline rows are positional arrays mixing numeric timestamps with string
// prices, so each field is parsed individually.
func (s *BinanceService) FetchDailyBars(ctx context.Context, symbol string, days int) ([]models.Bar, error) {
	return WithCircuitBreaker(ctx, BreakerBinance, func() ([]models.Bar, error) {
		var bars []models.Bar

		err := WithRetry(ctx, DefaultRetryConfig, func() error {
			since := time.Now().UTC().AddDate(0, 0, -days)

			params := url.Values{}
			params.Set("symbol", binanceSymbol(symbol))
			params.Set("interval", "1d")
			params.Set("startTime", strconv.FormatInt(since.UnixMilli(), 10))
			params.Set("limit", strconv.Itoa(days))

			reqURL := s.baseURL + "/api/v3/klines?" + params.Encode()

			req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
			if err != nil {
				return fmt.Errorf("failed to create klines request: %w", err)
			}

			resp, err := s.httpClient.Do(req)
			if err != nil {
				return fmt.Errorf("failed to fetch klines: %w", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusBadRequest {
				var apiErr binanceError
				if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Code == binanceCodeInvalidSymbol {
					return fmt.Errorf("%w: %s (%s)", ErrSymbolNotFound, symbol, apiErr.Msg)
				}
				return fmt.Errorf("klines API returned status %d", resp.StatusCode)
			}
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("klines API returned status %d", resp.StatusCode)
			}

			var rows [][]interface{}
			if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
				return fmt.Errorf("failed to decode klines response: %w", err)
			}

			parsed := make([]models.Bar, 0, len(rows))
			for _, row := range rows {
				bar, ok := parseBinanceKline(row)
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

// ValidateSymbol checks pair existence against the exchange metadata endpoint
func (s *BinanceService) ValidateSymbol(ctx context.Context, symbol string) (bool, error) {
	return WithCircuitBreaker(ctx, BreakerBinance, func() (bool, error) {
		params := url.Values{}
		params.Set("symbol", binanceSymbol(symbol))

		reqURL := s.baseURL + "/api/v3/exchangeInfo?" + params.Encode()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return false, fmt.Errorf("failed to create exchangeInfo request: %w", err)
		}

		resp, err := s.httpClient.Do(req)
		if err != nil {
			return false, fmt.Errorf("failed to fetch exchangeInfo: %w", err)
		}
		defer resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusOK:
			return true, nil
		case http.StatusBadRequest:
			// Binance answers unknown symbols with 400 and code -1121
			return false, nil
		default:
			return false, fmt.Errorf("exchangeInfo API returned status %d", resp.StatusCode)
		}
	})
}

// binanceError is the error envelope Binance wraps rejected requests in
type binanceError struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// Binance API error code for an unknown trading pair
const binanceCodeInvalidSymbol = -1121

// parseBinanceKline converts one positional kline row into a Bar. Layout:
// [openTime, open, high, low, close, volume, closeTime, ...].
func parseBinanceKline(row []interface{}) (models.Bar, bool) {
	if len(row) < 6 {
		return models.Bar{}, false
	}

	openTime, ok := row[0].(float64)
	if !ok {
		return models.Bar{}, false
	}

	prices := make([]decimal.Decimal, 0, 5)
	for _, v := range row[1:6] {
		str, ok := v.(string)
		if !ok {
			return models.Bar{}, false
		}
		d, err := decimal.NewFromString(str)
		if err != nil {
			return models.Bar{}, false
		}
		prices = append(prices, d)
	}

	return models.Bar{
		Timestamp: time.UnixMilli(int64(openTime)).UTC(),
		Open:      prices[0],
		High:      prices[1],
		Low:       prices[2],
		Close:     prices[3],
		Volume:    prices[4],
	}, true
}
