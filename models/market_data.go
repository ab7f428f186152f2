package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MinDataPoints is the smallest bar count a dataset needs before the
// return distribution is worth analyzing.
const MinDataPoints = 10

// DefaultPeriod is assumed whenever a request does not name a lookback window.
const DefaultPeriod = "3mo"

// MarketKind identifies the market a symbol trades on.
type MarketKind string

const (
	MarketKindStock  MarketKind = "stock"
	MarketKindCrypto MarketKind = "crypto"
)

// IsValid reports whether the kind names a supported market.
func (k MarketKind) IsValid() bool {
	return k == MarketKindStock || k == MarketKindCrypto
}

// MarketKinds lists the supported markets in display order.
func MarketKinds() []MarketKind {
	return []MarketKind{MarketKindStock, MarketKindCrypto}
}

// SupportedPeriods lists the lookback windows collectors accept.
var SupportedPeriods = []string{"1mo", "3mo", "6mo", "1y", "2y"}

var periodDays = map[string]int{
	"1mo": 30,
	"3mo": 90,
	"6mo": 180,
	"1y":  365,
	"2y":  730,
}

// IsSupportedPeriod reports whether period is one of SupportedPeriods.
func IsSupportedPeriod(period string) bool {
	_, ok := periodDays[period]
	return ok
}

// PeriodDays maps a lookback period onto a calendar day count. Unknown
// periods fall back to the default three month window.
func PeriodDays(period string) int {
	if days, ok := periodDays[period]; ok {
		return days
	}
	return periodDays[DefaultPeriod]
}

// Bar represents OHLCV price data for a single trading day
type Bar struct {
	Timestamp time.Time       `json:"timestamp"`
	Open      decimal.Decimal `json:"open"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Close     decimal.Decimal `json:"close"`
	Volume    decimal.Decimal `json:"volume"`
}

// MarketData holds the collected daily price history for one symbol.
// Bars are ordered oldest first.
type MarketData struct {
	Symbol    string     `json:"symbol"`
	Market    MarketKind `json:"market_type"`
	Period    string     `json:"period"`
	Bars      []Bar      `json:"bars"`
	FetchedAt time.Time  `json:"fetched_at"`
}

// CurrentPrice returns the most recent closing price, or zero when the
// dataset is empty.
func (m *MarketData) CurrentPrice() decimal.Decimal {
	if len(m.Bars) == 0 {
		return decimal.Zero
	}
	return m.Bars[len(m.Bars)-1].Close
}

// DataLength returns the number of bars collected.
func (m *MarketData) DataLength() int {
	return len(m.Bars)
}

// DateRange returns the timestamps of the oldest and newest bars. Both
// are zero when the dataset is empty.
func (m *MarketData) DateRange() (start, end time.Time) {
	if len(m.Bars) == 0 {
		return time.Time{}, time.Time{}
	}
	return m.Bars[0].Timestamp, m.Bars[len(m.Bars)-1].Timestamp
}

// Closes returns the closing prices as floats, oldest first.
func (m *MarketData) Closes() []float64 {
	closes := make([]float64, len(m.Bars))
	for i, b := range m.Bars {
		closes[i], _ = b.Close.Float64()
	}
	return closes
}

// Validate reports whether the dataset is plausible for analysis: every
// open/high/low/close strictly positive, volume non-negative, high at
// least low on each bar, and at least MinDataPoints bars overall.
func (m *MarketData) Validate() bool {
	if len(m.Bars) < MinDataPoints {
		return false
	}
	for _, b := range m.Bars {
		if !b.Open.IsPositive() || !b.High.IsPositive() || !b.Low.IsPositive() || !b.Close.IsPositive() {
			return false
		}
		if b.Volume.IsNegative() {
			return false
		}
		if b.High.LessThan(b.Low) {
			return false
		}
	}
	return true
}
