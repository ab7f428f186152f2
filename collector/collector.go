// Package collector turns raw provider history into validated MarketData
// ready for analysis. One collector exists per market kind, each owning its
// provider, timeout and data-point cap.
package collector

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"patternleader/models"
	"patternleader/observability"
	"patternleader/services"
)

// Collector fetches and validates market history for one market kind
type Collector interface {
	// Collect returns validated history for symbol over the period
	Collect(ctx context.Context, symbol, period string) (*models.MarketData, error)
	// Validate reports whether the upstream source knows the symbol.
	// (false, nil) is a definitive rejection; an error means the answer
	// could not be obtained.
	Validate(ctx context.Context, symbol string) (bool, error)
	// Market returns the market kind this collector serves
	Market() models.MarketKind
	// Source returns the backing provider name
	Source() string
}

// Options bound collector behavior; zero values fall back to defaults.
// Pool, when set, funnels provider calls through a shared fixed-size
// worker pool so a burst of analyses cannot flood the upstream host.
type Options struct {
	Timeout       time.Duration
	MaxDataPoints int
	Pool          *services.WorkerPool
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	if o.MaxDataPoints <= 0 {
		o.MaxDataPoints = 1000
	}
	return o
}

// offload runs fn on the worker pool when one is configured and waits for
// it to finish. Without a pool fn runs inline; fn observes deadlines
// through its own context either way.
func (o Options) offload(ctx context.Context, fn func()) error {
	if o.Pool == nil {
		fn()
		return nil
	}

	done := make(chan struct{})
	if err := o.Pool.Submit(ctx, func() {
		defer close(done)
		fn()
	}); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

// classifyUpstreamError folds transport-level failures into the error
// taxonomy. Definitive symbol rejections become ErrInvalidSymbol; breaker
// rejections and connection failures become ErrUpstreamUnreachable so an
// outage never reads as a bad symbol.
func classifyUpstreamError(err error, symbol string) error {
	switch {
	case services.IsSymbolNotFound(err):
		return fmt.Errorf("%w: %s", models.ErrInvalidSymbol, symbol)
	case services.IsCircuitOpen(err):
		return fmt.Errorf("%w: %v", models.ErrUpstreamUnreachable, err)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", models.ErrUpstreamTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return fmt.Errorf("%w: %v", models.ErrUpstreamTimeout, err)
		}
		return fmt.Errorf("%w: %v", models.ErrUpstreamUnreachable, err)
	}
	return err
}

// assemble builds MarketData from provider bars, applying the point cap
func assemble(symbol string, market models.MarketKind, period string, bars []models.Bar, maxPoints int) *models.MarketData {
	if len(bars) > maxPoints {
		bars = bars[len(bars)-maxPoints:]
	}
	return &models.MarketData{
		Symbol:    symbol,
		Market:    market,
		Period:    period,
		Bars:      bars,
		FetchedAt: time.Now().UTC(),
	}
}

func recordCollect(market models.MarketKind, source string, start time.Time, barCount int, err error) {
	m := observability.GetMetrics()
	m.RecordCollectorDuration(string(market), source, time.Since(start))
	if err != nil {
		m.RecordCollectorError(string(market), errorType(err))
		return
	}
	m.RecordCollectorBars(string(market), barCount)
}

func errorType(err error) string {
	switch {
	case errors.Is(err, models.ErrInvalidSymbol):
		return "invalid_symbol"
	case errors.Is(err, models.ErrUpstreamTimeout):
		return "timeout"
	case errors.Is(err, models.ErrUpstreamUnreachable):
		return "unreachable"
	case errors.Is(err, models.ErrDataUnavailable):
		return "data_unavailable"
	default:
		return "internal"
	}
}
