package mocks

import (
	"math"
	"math/rand"
	"time"

	"patternleader/models"

	"github.com/shopspring/decimal"
)

// WalkSeed fixes the random walk so every scenario run sees the same data
const WalkSeed = 42

// RandomWalkCloses generates n daily closes starting at start, each step
// multiplying by exp(N(0, sigma)).
func RandomWalkCloses(n int, start, sigma float64, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))

	closes := make([]float64, n)
	closes[0] = start
	for i := 1; i < n; i++ {
		closes[i] = closes[i-1] * math.Exp(rng.NormFloat64()*sigma)
	}
	return closes
}

// BarsFromCloses converts a close series into daily OHLCV bars
func BarsFromCloses(closes []float64) []models.Bar {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	bars := make([]models.Bar, len(closes))
	for i, c := range closes {
		bars[i] = models.Bar{
			Timestamp: base.AddDate(0, 0, i),
			Open:      decimal.NewFromFloat(c * 0.998),
			High:      decimal.NewFromFloat(c * 1.012),
			Low:       decimal.NewFromFloat(c * 0.988),
			Close:     decimal.NewFromFloat(c),
			Volume:    decimal.NewFromInt(int64(500000 + i*1000)),
		}
	}
	return bars
}

// RandomWalkBars is the standard scenario dataset: a seeded walk from 100
// with 2% daily log-steps.
func RandomWalkBars(n int) []models.Bar {
	return BarsFromCloses(RandomWalkCloses(n, 100, 0.02, WalkSeed))
}
