package collector

import (
	"context"
	"fmt"
	"time"

	"patternleader/models"
	"patternleader/observability"
	"patternleader/services"
)

// CryptoCollector collects daily spot history from a crypto exchange
type CryptoCollector struct {
	provider services.BarProvider
	opts     Options
}

// NewCryptoCollector creates a crypto collector backed by the given provider
func NewCryptoCollector(provider services.BarProvider, opts Options) *CryptoCollector {
	return &CryptoCollector{
		provider: provider,
		opts:     opts.withDefaults(),
	}
}

// Market returns the market kind this collector serves
func (c *CryptoCollector) Market() models.MarketKind {
	return models.MarketKindCrypto
}

// Source returns the backing exchange name
func (c *CryptoCollector) Source() string {
	return c.provider.Name()
}

// Collect fetches daily candles for the period and validates the dataset
func (c *CryptoCollector) Collect(ctx context.Context, symbol, period string) (*models.MarketData, error) {
	start := time.Now()

	data, err := c.collect(ctx, symbol, period)
	recordCollect(models.MarketKindCrypto, c.Source(), start, dataLen(data), err)
	if err != nil {
		observability.Error("crypto collection failed",
			"symbol", symbol, "period", period, "source", c.Source(), "error", err)
		return nil, fmt.Errorf("암호화폐 데이터 수집 실패: %w", err)
	}

	observability.Debug("crypto collection complete",
		"symbol", symbol, "period", period, "data_points", data.DataLength())
	return data, nil
}

func (c *CryptoCollector) collect(ctx context.Context, symbol, period string) (*models.MarketData, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	var bars []models.Bar
	var fetchErr error
	if err := c.opts.offload(ctx, func() {
		bars, fetchErr = c.provider.FetchDailyBars(ctx, symbol, models.PeriodDays(period))
	}); err != nil {
		return nil, classifyUpstreamError(err, symbol)
	}
	if fetchErr != nil {
		return nil, classifyUpstreamError(fetchErr, symbol)
	}

	data := assemble(symbol, models.MarketKindCrypto, period, bars, c.opts.MaxDataPoints)

	if data.DataLength() < models.MinDataPoints {
		return nil, fmt.Errorf("충분한 암호화폐 %w: %s", models.ErrDataUnavailable, symbol)
	}
	if !data.Validate() {
		return nil, fmt.Errorf("%w: 수집된 암호화폐 데이터가 유효하지 않습니다: %s", models.ErrDataUnavailable, symbol)
	}
	return data, nil
}

// Validate asks the exchange whether the trading pair exists
func (c *CryptoCollector) Validate(ctx context.Context, symbol string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	ok, err := c.provider.ValidateSymbol(ctx, symbol)
	if err != nil {
		return false, classifyUpstreamError(err, symbol)
	}
	return ok, nil
}

// Compile-time interface verification
var _ Collector = (*CryptoCollector)(nil)
