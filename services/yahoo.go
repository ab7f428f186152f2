package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"patternleader/models"

	"github.com/shopspring/decimal"
)

// YahooService fetches daily OHLCV history from the Yahoo Finance chart API.
// The v8 chart endpoint is public and needs no API key, only a browser-like
// User-Agent header.
type YahooService struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

// NewYahooService creates a new YahooService instance
func NewYahooService(timeout time.Duration) *YahooService {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &YahooService{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    "https://query1.finance.yahoo.com/v8/finance/chart",
		userAgent:  "Mozilla/5.0",
	}
}

// Name returns the provider identifier used in logs and metrics
func (s *YahooService) Name() string {
	return "yahoo_finance"
}

// yahooChartResponse represents the Yahoo Finance chart API payload. Price
// arrays use interface{} because Yahoo emits JSON null for holiday gaps.
type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol   string `json:"symbol"`
				Currency string `json:"currency"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []interface{} `json:"open"`
					High   []interface{} `json:"high"`
					Low    []interface{} `json:"low"`
					Close  []interface{} `json:"close"`
					Volume []interface{} `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func yahooFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

// yahooRange maps a day count onto the coarsest chart range that covers it
func yahooRange(days int) string {
	switch {
	case days <= 30:
		return "1mo"
	case days <= 90:
		return "3mo"
	case days <= 180:
		return "6mo"
	case days <= 365:
		return "1y"
	default:
		return "2y"
	}
}

// FetchDailyBars returns up to days of daily bars for a symbol, oldest first
func (s *YahooService) FetchDailyBars(ctx context.Context, symbol string, days int) ([]models.Bar, error) {
	return WithCircuitBreaker(ctx, BreakerYahooFinance, func() ([]models.Bar, error) {
		var bars []models.Bar

		err := WithRetry(ctx, DefaultRetryConfig, func() error {
			fetched, err := s.fetchChart(ctx, symbol, "1d", yahooRange(days))
			if err != nil {
				return err
			}
			bars = fetched
			return nil
		})
		if err != nil {
			return nil, err
		}

		if len(bars) > days {
			bars = bars[len(bars)-days:]
		}
		return bars, nil
	})
}

// ValidateSymbol reports whether Yahoo knows the symbol. A definitive
// "Not Found" from the chart API yields (false, nil); transport failures
// return an error so callers can tell outages apart from bad symbols.
func (s *YahooService) ValidateSymbol(ctx context.Context, symbol string) (bool, error) {
	return WithCircuitBreaker(ctx, BreakerYahooFinance, func() (bool, error) {
		_, err := s.fetchChart(ctx, symbol, "1d", "5d")
		if err != nil {
			if errors.Is(err, ErrSymbolNotFound) {
				return false, nil
			}
			return false, err
		}
		return true, nil
	})
}

func (s *YahooService) fetchChart(ctx context.Context, symbol, interval, rng string) ([]models.Bar, error) {
	reqURL := fmt.Sprintf("%s/%s?interval=%s&range=%s",
		s.baseURL, url.PathEscape(symbol), interval, rng)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create chart request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chart data: %w", err)
	}
	defer resp.Body.Close()

	// Yahoo answers unknown symbols with 404 and a chart.error payload
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s (chart API returned 404)", ErrSymbolNotFound, symbol)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chart API returned status %d", resp.StatusCode)
	}

	var chart yahooChartResponse
	if err := json.NewDecoder(resp.Body).Decode(&chart); err != nil {
		return nil, fmt.Errorf("failed to decode chart response: %w", err)
	}

	if chart.Chart.Error != nil {
		if chart.Chart.Error.Code == "Not Found" {
			return nil, fmt.Errorf("%w: %s (%s)", ErrSymbolNotFound, symbol, chart.Chart.Error.Description)
		}
		return nil, fmt.Errorf("chart API error %s: %s", chart.Chart.Error.Code, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		return nil, fmt.Errorf("%w: %s (no data returned)", ErrSymbolNotFound, symbol)
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("chart response missing quote data for %s", symbol)
	}
	quote := result.Indicators.Quote[0]

	bars := make([]models.Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) {
			break
		}
		o := yahooFloat(quote.Open[i])
		h := yahooFloat(quote.High[i])
		l := yahooFloat(quote.Low[i])
		c := yahooFloat(quote.Close[i])
		if c == 0 {
			// null bar, market holiday or a partially published session
			continue
		}
		var v float64
		if i < len(quote.Volume) {
			v = yahooFloat(quote.Volume[i])
		}
		bars = append(bars, models.Bar{
			Timestamp: time.Unix(ts, 0).UTC(),
			Open:      decimal.NewFromFloat(o),
			High:      decimal.NewFromFloat(h),
			Low:       decimal.NewFromFloat(l),
			Close:     decimal.NewFromFloat(c),
			Volume:    decimal.NewFromFloat(v),
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Timestamp.Before(bars[j].Timestamp) })
	return bars, nil
}
