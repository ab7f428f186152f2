package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"patternleader/models"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/shopspring/decimal"
)

// AlpacaService fetches equity market data through the Alpaca SDK. It is the
// keyed alternative to the default Yahoo Finance backend.
type AlpacaService struct {
	tradeClient *alpaca.Client
	dataClient  *marketdata.Client
}

// NewAlpacaService creates a new AlpacaService instance
func NewAlpacaService(apiKey, apiSecret, baseURL string) *AlpacaService {
	tradeClient := alpaca.NewClient(alpaca.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
		BaseURL:   baseURL,
	})

	dataClient := marketdata.NewClient(marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	})

	return &AlpacaService{
		tradeClient: tradeClient,
		dataClient:  dataClient,
	}
}

// Name returns the provider identifier used in logs and metrics
func (s *AlpacaService) Name() string {
	return "alpaca"
}

// FetchDailyBars returns daily bars for the last N days, oldest first
func (s *AlpacaService) FetchDailyBars(ctx context.Context, symbol string, days int) ([]models.Bar, error) {
	return WithCircuitBreaker(ctx, BreakerAlpaca, func() ([]models.Bar, error) {
		var result []models.Bar

		err := WithRetry(ctx, DefaultRetryConfig, func() error {
			end := time.Now()
			start := end.AddDate(0, 0, -days)

			bars, err := s.dataClient.GetBars(symbol, marketdata.GetBarsRequest{
				TimeFrame: marketdata.OneDay,
				Start:     start,
				End:       end,
			})
			if err != nil {
				if isAlpacaNotFound(err) {
					return fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
				}
				return fmt.Errorf("failed to get bars for %s: %w", symbol, err)
			}

			result = make([]models.Bar, 0, len(bars))
			for _, bar := range bars {
				result = append(result, models.Bar{
					Timestamp: bar.Timestamp.UTC(),
					Open:      decimal.NewFromFloat(bar.Open),
					High:      decimal.NewFromFloat(bar.High),
					Low:       decimal.NewFromFloat(bar.Low),
					Close:     decimal.NewFromFloat(bar.Close),
					Volume:    decimal.NewFromInt(int64(bar.Volume)),
				})
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		return result, nil
	})
}

// ValidateSymbol checks whether the asset exists and is tradable. A 404 from
// the assets endpoint is a definitive unknown symbol.
func (s *AlpacaService) ValidateSymbol(ctx context.Context, symbol string) (bool, error) {
	return WithCircuitBreaker(ctx, BreakerAlpaca, func() (bool, error) {
		asset, err := s.tradeClient.GetAsset(symbol)
		if err != nil {
			if isAlpacaNotFound(err) {
				return false, nil
			}
			return false, fmt.Errorf("failed to look up asset %s: %w", symbol, err)
		}
		return asset.Status == alpaca.AssetActive, nil
	})
}

func isAlpacaNotFound(err error) bool {
	var apiErr *alpaca.APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 404
	}
	return strings.Contains(err.Error(), "not found")
}
