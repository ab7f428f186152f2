package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"patternleader/models"
)

// OpenWeatherService handles communication with the OpenWeatherMap API
type OpenWeatherService struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	geoURL     string
}

// NewOpenWeatherService creates a new OpenWeatherService instance
func NewOpenWeatherService(apiKey string) *OpenWeatherService {
	return &OpenWeatherService{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    "https://api.openweathermap.org/data/2.5",
		geoURL:     "http://api.openweathermap.org/geo/1.0",
	}
}

// Name returns the provider identifier used in logs and metrics
func (s *OpenWeatherService) Name() string {
	return "openweather"
}

// owGeocodeResponse is one geocoding hit
type owGeocodeResponse struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Country string  `json:"country"`
}

// owWeatherResponse is the current-weather payload
type owWeatherResponse struct {
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Clouds struct {
		All int `json:"all"`
	} `json:"clouds"`
	Dt   int64  `json:"dt"`
	Name string `json:"name"`
}

// owForecastResponse is the 5-day/3-hour forecast payload
type owForecastResponse struct {
	List []owWeatherResponse `json:"list"`
}

// Geocode resolves a city name into coordinates. An empty result set means
// the city is unknown, surfaced as ErrCityNotFound.
func (s *OpenWeatherService) Geocode(ctx context.Context, city string) (*models.GeoLocation, error) {
	return WithCircuitBreaker(ctx, BreakerOpenWeather, func() (*models.GeoLocation, error) {
		params := url.Values{}
		params.Set("q", city)
		params.Set("limit", "1")
		params.Set("appid", s.apiKey)

		reqURL := s.geoURL + "/direct?" + params.Encode()

		var hits []owGeocodeResponse
		if err := s.getJSON(ctx, reqURL, &hits); err != nil {
			return nil, fmt.Errorf("failed to geocode city: %w", err)
		}
		if len(hits) == 0 {
			return nil, fmt.Errorf("%w: %s", models.ErrCityNotFound, city)
		}

		return &models.GeoLocation{
			Name:    hits[0].Name,
			Lat:     hits[0].Lat,
			Lon:     hits[0].Lon,
			Country: hits[0].Country,
		}, nil
	})
}

// CurrentWeather fetches the current conditions at a location
func (s *OpenWeatherService) CurrentWeather(ctx context.Context, lat, lon float64) (*models.WeatherInfo, error) {
	return WithCircuitBreaker(ctx, BreakerOpenWeather, func() (*models.WeatherInfo, error) {
		reqURL := fmt.Sprintf("%s/weather?%s", s.baseURL, s.coordParams(lat, lon).Encode())

		var resp owWeatherResponse
		if err := s.getJSON(ctx, reqURL, &resp); err != nil {
			return nil, fmt.Errorf("failed to fetch current weather: %w", err)
		}

		info := toWeatherInfo(resp)
		return &info, nil
	})
}

// Forecast fetches the 3-hourly forecast, capped at the given number of steps
func (s *OpenWeatherService) Forecast(ctx context.Context, lat, lon float64, steps int) ([]models.WeatherInfo, error) {
	return WithCircuitBreaker(ctx, BreakerOpenWeather, func() ([]models.WeatherInfo, error) {
		reqURL := fmt.Sprintf("%s/forecast?%s", s.baseURL, s.coordParams(lat, lon).Encode())

		var resp owForecastResponse
		if err := s.getJSON(ctx, reqURL, &resp); err != nil {
			return nil, fmt.Errorf("failed to fetch forecast: %w", err)
		}

		list := resp.List
		if steps > 0 && len(list) > steps {
			list = list[:steps]
		}

		forecast := make([]models.WeatherInfo, 0, len(list))
		for _, step := range list {
			forecast = append(forecast, toWeatherInfo(step))
		}
		return forecast, nil
	})
}

func (s *OpenWeatherService) coordParams(lat, lon float64) url.Values {
	params := url.Values{}
	params.Set("lat", fmt.Sprintf("%.6f", lat))
	params.Set("lon", fmt.Sprintf("%.6f", lon))
	params.Set("appid", s.apiKey)
	params.Set("units", "metric")
	return params
}

func (s *OpenWeatherService) getJSON(ctx context.Context, reqURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("weather API returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode weather response: %w", err)
	}
	return nil
}

func toWeatherInfo(resp owWeatherResponse) models.WeatherInfo {
	info := models.WeatherInfo{
		Temperature: resp.Main.Temp,
		FeelsLike:   resp.Main.FeelsLike,
		Humidity:    resp.Main.Humidity,
		WindSpeed:   resp.Wind.Speed,
		Cloudiness:  resp.Clouds.All,
		City:        resp.Name,
		ObservedAt:  time.Unix(resp.Dt, 0).UTC(),
	}
	if len(resp.Weather) > 0 {
		info.Condition = resp.Weather[0].Main
		info.Description = resp.Weather[0].Description
		info.Icon = resp.Weather[0].Icon
	}
	return info
}
