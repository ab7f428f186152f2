// Package mocks provides deterministic provider doubles for end-to-end
// scenarios. They implement the services provider interfaces, so the
// full collector, engine, cache and HTTP stack runs unchanged on top of
// them without any network access.
package mocks

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"patternleader/models"
	"patternleader/services"
)

// BarProvider serves per-symbol bar fixtures. Unknown symbols answer
// like a real provider: a definitive not-found error.
type BarProvider struct {
	mu       sync.Mutex
	name     string
	fixtures map[string][]models.Bar
	fetchErr error
	calls    map[string]int
}

// NewBarProvider creates a provider preloaded with the standard 60-bar
// walk for each given symbol.
func NewBarProvider(name string, symbols ...string) *BarProvider {
	p := &BarProvider{
		name:     name,
		fixtures: make(map[string][]models.Bar),
		calls:    make(map[string]int),
	}
	for _, symbol := range symbols {
		p.fixtures[strings.ToUpper(symbol)] = RandomWalkBars(60)
	}
	return p
}

// SetBars replaces the fixture for one symbol
func (p *BarProvider) SetBars(symbol string, bars []models.Bar) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fixtures[strings.ToUpper(symbol)] = bars
}

// FailWith makes every fetch return err until reset with nil
func (p *BarProvider) FailWith(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fetchErr = err
}

// FetchCalls reports how many times a symbol was fetched
func (p *BarProvider) FetchCalls(symbol string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[strings.ToUpper(symbol)]
}

func (p *BarProvider) FetchDailyBars(ctx context.Context, symbol string, days int) ([]models.Bar, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	symbol = strings.ToUpper(symbol)
	p.calls[symbol]++

	if p.fetchErr != nil {
		return nil, p.fetchErr
	}

	bars, ok := p.fixtures[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: %s", services.ErrSymbolNotFound, symbol)
	}
	if days < len(bars) {
		bars = bars[len(bars)-days:]
	}

	out := make([]models.Bar, len(bars))
	copy(out, bars)
	return out, nil
}

func (p *BarProvider) ValidateSymbol(ctx context.Context, symbol string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.fetchErr != nil {
		return false, p.fetchErr
	}
	_, ok := p.fixtures[strings.ToUpper(symbol)]
	return ok, nil
}

func (p *BarProvider) Name() string { return p.name }

var _ services.BarProvider = (*BarProvider)(nil)

// WeatherProvider serves a fixed clear-sky observation for any city
// except "Atlantis", which geocodes to nothing.
type WeatherProvider struct{}

func (w *WeatherProvider) Geocode(ctx context.Context, city string) (*models.GeoLocation, error) {
	if strings.EqualFold(city, "Atlantis") {
		return nil, fmt.Errorf("%w: %s", models.ErrCityNotFound, city)
	}
	return &models.GeoLocation{Name: city, Lat: 37.5665, Lon: 126.978, Country: "KR"}, nil
}

func (w *WeatherProvider) CurrentWeather(ctx context.Context, lat, lon float64) (*models.WeatherInfo, error) {
	return &models.WeatherInfo{
		Condition:   "Clear",
		Temperature: 21.5,
		FeelsLike:   21.0,
		Humidity:    50,
		WindSpeed:   2.5,
		Cloudiness:  5,
	}, nil
}

func (w *WeatherProvider) Forecast(ctx context.Context, lat, lon float64, steps int) ([]models.WeatherInfo, error) {
	forecast := make([]models.WeatherInfo, steps)
	for i := range forecast {
		forecast[i] = models.WeatherInfo{
			Condition:   "Clear",
			Temperature: 20 + float64(i),
			Humidity:    55,
			WindSpeed:   3,
		}
	}
	return forecast, nil
}

func (w *WeatherProvider) Name() string { return "openweather" }

var _ services.WeatherProvider = (*WeatherProvider)(nil)

// PlaceProvider serves two fixed places for every search
type PlaceProvider struct{}

func (p *PlaceProvider) SearchPlaces(ctx context.Context, lat, lon float64, activityType string, radius int) ([]models.PlaceInfo, error) {
	return []models.PlaceInfo{
		{ID: 101, Name: "한강공원", Type: activityType, Lat: lat + 0.01, Lon: lon},
		{ID: 102, Name: "서울숲", Type: activityType, Lat: lat, Lon: lon + 0.01},
	}, nil
}

func (p *PlaceProvider) Name() string { return "overpass" }

var _ services.PlaceProvider = (*PlaceProvider)(nil)
