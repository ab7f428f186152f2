package collector

import (
	"context"
	"fmt"
	"time"

	"patternleader/models"
	"patternleader/observability"
	"patternleader/services"
)

// StockCollector collects daily equity history from a bar provider
type StockCollector struct {
	provider services.BarProvider
	opts     Options
}

// NewStockCollector creates a stock collector backed by the given provider
func NewStockCollector(provider services.BarProvider, opts Options) *StockCollector {
	return &StockCollector{
		provider: provider,
		opts:     opts.withDefaults(),
	}
}

// Market returns the market kind this collector serves
func (c *StockCollector) Market() models.MarketKind {
	return models.MarketKindStock
}

// Source returns the backing provider name
func (c *StockCollector) Source() string {
	return c.provider.Name()
}

// Collect fetches daily bars for the period and validates the dataset
func (c *StockCollector) Collect(ctx context.Context, symbol, period string) (*models.MarketData, error) {
	start := time.Now()

	data, err := c.collect(ctx, symbol, period)
	recordCollect(models.MarketKindStock, c.Source(), start, dataLen(data), err)
	if err != nil {
		observability.Error("stock collection failed",
			"symbol", symbol, "period", period, "source", c.Source(), "error", err)
		return nil, fmt.Errorf("주식 데이터 수집 실패: %w", err)
	}

	observability.Debug("stock collection complete",
		"symbol", symbol, "period", period, "data_points", data.DataLength())
	return data, nil
}

func (c *StockCollector) collect(ctx context.Context, symbol, period string) (*models.MarketData, error) {
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
	if len(bars) == 0 {
		return nil, fmt.Errorf("주식 %w: %s", models.ErrDataUnavailable, symbol)
	}

	data := assemble(symbol, models.MarketKindStock, period, bars, c.opts.MaxDataPoints)

	if data.DataLength() < models.MinDataPoints {
		return nil, fmt.Errorf("%w: %s (데이터 포인트: %d)", models.ErrDataUnavailable, symbol, data.DataLength())
	}
	if !data.Validate() {
		return nil, fmt.Errorf("%w: 수집된 데이터가 유효하지 않습니다: %s", models.ErrDataUnavailable, symbol)
	}
	return data, nil
}

// Validate asks the provider whether the symbol exists
func (c *StockCollector) Validate(ctx context.Context, symbol string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	ok, err := c.provider.ValidateSymbol(ctx, symbol)
	if err != nil {
		return false, classifyUpstreamError(err, symbol)
	}
	return ok, nil
}

func dataLen(data *models.MarketData) int {
	if data == nil {
		return 0
	}
	return data.DataLength()
}

// Compile-time interface verification
var _ Collector = (*StockCollector)(nil)
