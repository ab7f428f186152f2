// Package analysis turns collected market data into a crowd psychology
// read: a KDE fit of the daily-return distribution, buyer/holder/seller
// ratios from the newest return's rank, a sentiment score, a risk level
// and a Korean-language interpretation.
package analysis

import (
	"fmt"
	"math"

	"patternleader/models"
	"patternleader/observability"
)

const (
	// minReturns is the smallest return count the pipeline accepts
	minReturns = 10

	// returnClip bounds single-day returns against split glitches and
	// bad prints
	returnClip = 0.5

	// gridPoints is the density curve resolution served to charts
	gridPoints = 100
)

// PsychologyAnalyzer computes market psychology from price history
type PsychologyAnalyzer struct{}

// NewPsychologyAnalyzer creates a new PsychologyAnalyzer instance
func NewPsychologyAnalyzer() *PsychologyAnalyzer {
	return &PsychologyAnalyzer{}
}

// Analyze runs the psychology pipeline over one collected dataset
func (a *PsychologyAnalyzer) Analyze(data *models.MarketData) (*models.PsychologyResult, error) {
	observability.Debug("psychology analysis started", "symbol", data.Symbol)

	closes := data.Closes()
	returns := a.calculateReturns(closes)
	if len(returns) < minReturns {
		return nil, fmt.Errorf("%w: %d개", models.ErrInsufficientData, len(returns))
	}

	kde := newGaussianKDE(returns)
	stats := a.calculateStats(returns)
	position := a.currentPosition(closes)

	ratios := a.calculateRatios(returns, position)
	sentiment := a.calculateSentiment(ratios, returns)
	risk := a.assessRiskLevel(sentiment, ratios, stats)
	viz := a.buildVisualization(kde, position, stats)
	confidence := a.calculateConfidence(len(returns), stats)
	interpretation := a.buildInterpretation(ratios, sentiment, risk, stats, position)

	observability.Debug("psychology analysis complete",
		"symbol", data.Symbol, "sentiment", sentiment, "risk_level", risk)

	return &models.PsychologyResult{
		Symbol:            data.Symbol,
		CurrentPrice:      data.CurrentPrice(),
		PsychologyRatios:  ratios,
		SentimentScore:    sentiment,
		RiskLevel:         risk,
		Interpretation:    interpretation,
		DistributionStats: stats,
		VisualizationData: viz,
		ConfidenceScore:   confidence,
	}, nil
}

// calculateReturns computes day-over-day simple returns, clipped to
// ±returnClip
func (a *PsychologyAnalyzer) calculateReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			continue
		}
		r := (closes[i] - closes[i-1]) / closes[i-1]
		returns = append(returns, clamp(r, -returnClip, returnClip))
	}
	return returns
}

// currentPosition returns the most recent daily return
func (a *PsychologyAnalyzer) currentPosition(closes []float64) float64 {
	if len(closes) < 2 {
		return 0.0
	}
	prev := closes[len(closes)-2]
	if prev == 0 {
		return 0.0
	}
	return (closes[len(closes)-1] - prev) / prev
}

// calculateStats summarizes the untrimmed return distribution
func (a *PsychologyAnalyzer) calculateStats(returns []float64) models.DistributionStats {
	return models.DistributionStats{
		Mean:         mean(returns),
		Std:          sampleStd(returns),
		Skewness:     skewness(returns),
		Kurtosis:     kurtosis(returns),
		PeakPosition: percentile(returns, 50),
		Percentile5:  percentile(returns, 5),
		Percentile25: percentile(returns, 25),
		Percentile50: percentile(returns, 50),
		Percentile75: percentile(returns, 75),
		Percentile95: percentile(returns, 95),
	}
}

// positionRank returns the fraction of returns at or below position
func (a *PsychologyAnalyzer) positionRank(returns []float64, position float64) float64 {
	below := 0
	for _, r := range returns {
		if r <= position {
			below++
		}
	}
	return float64(below) / float64(len(returns))
}

// calculateRatios splits the market into buyer, holder and seller camps
// from where the newest return sits in the distribution
func (a *PsychologyAnalyzer) calculateRatios(returns []float64, position float64) models.PsychologyRatios {
	rank := a.positionRank(returns, position)

	var buyers, holders, sellers float64
	switch {
	case rank < 0.16:
		// Below -1σ of a normal fit, washed out sellers leave buyers
		buyers = 0.70 + (0.16-rank)*0.5
		sellers = 0.10
		holders = 1.0 - buyers - sellers
	case rank > 0.84:
		// Above +1σ, profit taking dominates
		sellers = 0.60 + (rank-0.84)*0.8
		buyers = 0.15
		holders = 1.0 - buyers - sellers
	case rank < 0.5:
		buyers = 0.45 + (0.5-rank)*0.4
		sellers = 0.25 + (rank-0.16)*0.3
		holders = 1.0 - buyers - sellers
	default:
		buyers = 0.35 - (rank-0.5)*0.3
		sellers = 0.35 + (rank-0.5)*0.4
		holders = 1.0 - buyers - sellers
	}

	buyers = clamp(buyers, 0.05, 0.85)
	sellers = clamp(sellers, 0.05, 0.85)
	holders = clamp(holders, 0.10, 0.80)

	total := buyers + sellers + holders
	return models.PsychologyRatios{
		Buyers:  buyers / total,
		Holders: holders / total,
		Sellers: sellers / total,
	}
}

// calculateSentiment maps the buy/sell balance onto a greed-fear index
// in [-1, 1], amplified by volatility
func (a *PsychologyAnalyzer) calculateSentiment(ratios models.PsychologyRatios, returns []float64) float64 {
	base := ratios.Buyers - ratios.Sellers

	volatility := populationStd(returns)
	factor := math.Min(0.3, volatility*10)

	sentiment := base - factor
	if base > 0 {
		sentiment = base + factor
	}
	return clamp(sentiment, -1.0, 1.0)
}

// assessRiskLevel scores sentiment extremity, volatility and camp
// imbalance into one of four levels
func (a *PsychologyAnalyzer) assessRiskLevel(sentiment float64, ratios models.PsychologyRatios, stats models.DistributionStats) models.RiskLevel {
	sentimentRisk := math.Abs(sentiment)
	volatilityRisk := math.Min(1.0, stats.Std*20)
	imbalanceRisk := math.Abs(ratios.Buyers - ratios.Sellers)

	total := sentimentRisk*0.4 + volatilityRisk*0.4 + imbalanceRisk*0.2

	switch {
	case total >= 0.75:
		return models.RiskLevelExtreme
	case total >= 0.5:
		return models.RiskLevelHigh
	case total >= 0.25:
		return models.RiskLevelMedium
	default:
		return models.RiskLevelLow
	}
}

// buildVisualization samples the density curve across mean ± 3σ and
// labels the oversold/normal/overbought zones at ± 2σ
func (a *PsychologyAnalyzer) buildVisualization(kde *gaussianKDE, position float64, stats models.DistributionStats) models.VisualizationData {
	xMin := stats.Mean - 3*stats.Std
	xMax := stats.Mean + 3*stats.Std
	oversold := stats.Mean - 2*stats.Std
	overbought := stats.Mean + 2*stats.Std

	xValues := linspace(xMin, xMax, gridPoints)
	yValues := make([]float64, len(xValues))
	for i, x := range xValues {
		yValues[i] = kde.evaluate(x)
	}

	return models.VisualizationData{
		XValues:         xValues,
		YValues:         yValues,
		CurrentPosition: position,
		Zones: map[string]models.Zone{
			"oversold":   {Start: xMin, End: oversold},
			"normal":     {Start: oversold, End: overbought},
			"overbought": {Start: overbought, End: xMax},
		},
	}
}

// calculateConfidence scores how trustworthy the analysis is from sample
// size, tail weight and volatility
func (a *PsychologyAnalyzer) calculateConfidence(returnCount int, stats models.DistributionStats) float64 {
	dataScore := math.Min(1.0, float64(returnCount)/100.0)
	kurtosisScore := math.Max(0.1, 1.0-math.Abs(stats.Kurtosis)/10.0)
	volatilityScore := math.Max(0.1, 1.0-math.Min(1.0, stats.Std*20))

	confidence := dataScore*0.4 + kurtosisScore*0.3 + volatilityScore*0.3
	return clamp(confidence, 0.1, 1.0)
}
