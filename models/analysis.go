package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RiskLevel buckets the overall riskiness of an analyzed distribution.
type RiskLevel string

const (
	RiskLevelLow     RiskLevel = "low"
	RiskLevelMedium  RiskLevel = "medium"
	RiskLevelHigh    RiskLevel = "high"
	RiskLevelExtreme RiskLevel = "extreme"
)

// RiskLevels lists the defined levels from calmest to most severe.
func RiskLevels() []RiskLevel {
	return []RiskLevel{RiskLevelLow, RiskLevelMedium, RiskLevelHigh, RiskLevelExtreme}
}

// PsychologyRatios splits market participants into buyer, holder and
// seller camps. The three ratios always sum to 1.
type PsychologyRatios struct {
	Buyers  float64 `json:"buyers"`
	Holders float64 `json:"holders"`
	Sellers float64 `json:"sellers"`
}

// Sum returns the total of the three ratios.
func (p PsychologyRatios) Sum() float64 {
	return p.Buyers + p.Holders + p.Sellers
}

// DistributionStats describes the shape of a daily-return distribution.
type DistributionStats struct {
	Mean         float64 `json:"mean"`
	Std          float64 `json:"std"`
	Skewness     float64 `json:"skewness"`
	Kurtosis     float64 `json:"kurtosis"`
	PeakPosition float64 `json:"peak_position"`
	Percentile5  float64 `json:"percentile_5"`
	Percentile25 float64 `json:"percentile_25"`
	Percentile50 float64 `json:"percentile_50"`
	Percentile75 float64 `json:"percentile_75"`
	Percentile95 float64 `json:"percentile_95"`
}

// Zone is one labelled region of the return distribution.
type Zone struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// VisualizationData carries the sampled density curve for charting.
// XValues and YValues always have the same length.
type VisualizationData struct {
	XValues         []float64       `json:"x_values"`
	YValues         []float64       `json:"y_values"`
	CurrentPosition float64         `json:"current_position"`
	Zones           map[string]Zone `json:"zones"`
}

// PsychologyResult is the analyzer output for a single dataset.
type PsychologyResult struct {
	Symbol            string            `json:"symbol"`
	CurrentPrice      decimal.Decimal   `json:"current_price"`
	PsychologyRatios  PsychologyRatios  `json:"psychology_ratios"`
	SentimentScore    float64           `json:"sentiment_score"`
	RiskLevel         RiskLevel         `json:"risk_level"`
	Interpretation    string            `json:"interpretation"`
	DistributionStats DistributionStats `json:"distribution_stats"`
	VisualizationData VisualizationData `json:"visualization_data"`
	ConfidenceScore   float64           `json:"confidence_score"`
}

// AnalysisResponse is the full analysis payload returned to clients.
type AnalysisResponse struct {
	ID                uuid.UUID         `json:"id"`
	Symbol            string            `json:"symbol"`
	CurrentPrice      decimal.Decimal   `json:"current_price"`
	AnalysisTimestamp time.Time         `json:"analysis_timestamp"`
	PsychologyRatios  PsychologyRatios  `json:"psychology_ratios"`
	SentimentScore    float64           `json:"sentiment_score"`
	RiskLevel         RiskLevel         `json:"risk_level"`
	Interpretation    string            `json:"interpretation"`
	DistributionStats DistributionStats `json:"distribution_stats"`
	VisualizationData VisualizationData `json:"visualization_data"`
	ConfidenceScore   float64           `json:"confidence_score"`
	MarketType        MarketKind        `json:"market_type"`
	Period            string            `json:"period"`
	DataPointsCount   int               `json:"data_points_count"`
}

// NewAnalysisResponse assembles the client payload from an analyzer
// result and the dataset it was computed from.
func NewAnalysisResponse(result *PsychologyResult, data *MarketData) *AnalysisResponse {
	period := data.Period
	if period == "" {
		period = DefaultPeriod
	}
	return &AnalysisResponse{
		ID:                uuid.New(),
		Symbol:            result.Symbol,
		CurrentPrice:      result.CurrentPrice,
		AnalysisTimestamp: time.Now().UTC(),
		PsychologyRatios:  result.PsychologyRatios,
		SentimentScore:    result.SentimentScore,
		RiskLevel:         result.RiskLevel,
		Interpretation:    result.Interpretation,
		DistributionStats: result.DistributionStats,
		VisualizationData: result.VisualizationData,
		ConfidenceScore:   result.ConfidenceScore,
		MarketType:        data.Market,
		Period:            period,
		DataPointsCount:   data.DataLength(),
	}
}

// QuickAnalysisResponse is the trimmed payload for the quick endpoint.
type QuickAnalysisResponse struct {
	Symbol            string           `json:"symbol"`
	CurrentPrice      decimal.Decimal  `json:"current_price"`
	PsychologyRatios  PsychologyRatios `json:"psychology_ratios"`
	SentimentScore    float64          `json:"sentiment_score"`
	RiskLevel         RiskLevel        `json:"risk_level"`
	Interpretation    string           `json:"interpretation"`
	ConfidenceScore   float64          `json:"confidence_score"`
	AnalysisTimestamp time.Time        `json:"analysis_timestamp"`
}

// Quick projects the full response down to the quick-analysis payload.
func (r *AnalysisResponse) Quick() *QuickAnalysisResponse {
	return &QuickAnalysisResponse{
		Symbol:            r.Symbol,
		CurrentPrice:      r.CurrentPrice,
		PsychologyRatios:  r.PsychologyRatios,
		SentimentScore:    r.SentimentScore,
		RiskLevel:         r.RiskLevel,
		Interpretation:    r.Interpretation,
		ConfidenceScore:   r.ConfidenceScore,
		AnalysisTimestamp: r.AnalysisTimestamp,
	}
}

// SymbolValidationResponse reports whether a symbol resolved on its market.
type SymbolValidationResponse struct {
	Symbol     string     `json:"symbol"`
	IsValid    bool       `json:"is_valid"`
	MarketType MarketKind `json:"market_type"`
	Message    string     `json:"message,omitempty"`
}

// HealthCheckResponse summarizes service health for the health endpoint.
type HealthCheckResponse struct {
	Status        string            `json:"status"`
	Timestamp     time.Time         `json:"timestamp"`
	Version       string            `json:"version"`
	Services      map[string]string `json:"services"`
	UptimeSeconds float64           `json:"uptime_seconds"`
}
