package services

import (
	"context"
	"errors"

	"patternleader/models"
)

// ErrSymbolNotFound marks a definitive unknown-symbol answer from a
// provider, as opposed to a transport failure.
var ErrSymbolNotFound = errors.New("symbol not found")

// IsSymbolNotFound reports whether err is a definitive unknown-symbol
// rejection from a provider.
func IsSymbolNotFound(err error) bool {
	return errors.Is(err, ErrSymbolNotFound)
}

// BarProvider fetches daily OHLCV history from one upstream market data
// source and answers symbol existence checks against it.
type BarProvider interface {
	// FetchDailyBars returns up to days of daily bars, oldest first
	FetchDailyBars(ctx context.Context, symbol string, days int) ([]models.Bar, error)
	// ValidateSymbol returns (false, nil) only when the source definitively
	// rejects the symbol; transport failures come back as errors.
	ValidateSymbol(ctx context.Context, symbol string) (bool, error)
	// Name identifies the provider in logs and metrics
	Name() string
}

// WeatherProvider resolves cities and reports current and forecast weather
type WeatherProvider interface {
	Geocode(ctx context.Context, city string) (*models.GeoLocation, error)
	CurrentWeather(ctx context.Context, lat, lon float64) (*models.WeatherInfo, error)
	Forecast(ctx context.Context, lat, lon float64, steps int) ([]models.WeatherInfo, error)
	Name() string
}

// PlaceProvider searches points of interest around a location
type PlaceProvider interface {
	SearchPlaces(ctx context.Context, lat, lon float64, activityType string, radius int) ([]models.PlaceInfo, error)
	Name() string
}

// Compile-time interface verification
var _ BarProvider = (*YahooService)(nil)
var _ BarProvider = (*AlpacaService)(nil)
var _ BarProvider = (*BinanceService)(nil)
var _ BarProvider = (*BybitService)(nil)
var _ WeatherProvider = (*OpenWeatherService)(nil)
var _ PlaceProvider = (*OverpassService)(nil)
