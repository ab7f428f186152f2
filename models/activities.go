package models

import "time"

// GeoLocation is a geocoded city position
type GeoLocation struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Country string  `json:"country,omitempty"`
}

// WeatherInfo is an observed or forecast weather state for a location
type WeatherInfo struct {
	Condition   string    `json:"condition"`
	Description string    `json:"description"`
	Icon        string    `json:"icon,omitempty"`
	Temperature float64   `json:"temperature"`
	FeelsLike   float64   `json:"feels_like"`
	Humidity    int       `json:"humidity"`
	WindSpeed   float64   `json:"wind_speed"`
	Cloudiness  int       `json:"cloudiness"`
	City        string    `json:"city,omitempty"`
	ObservedAt  time.Time `json:"observed_at"`
}

// WeatherScore grades how suitable the weather is for being outside.
// Component scores and the overall mean are on a 0-100 scale.
type WeatherScore struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	Wind        float64 `json:"wind"`
	Condition   float64 `json:"condition"`
	Overall     float64 `json:"overall"`
	Outdoor     bool    `json:"outdoor_friendly"`
}

// PlaceInfo is a point of interest found near a geocoded location
type PlaceInfo struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Lat          float64 `json:"lat"`
	Lon          float64 `json:"lon"`
	Type         string  `json:"type"`
	Description  string  `json:"description"`
	OpeningHours string  `json:"opening_hours,omitempty"`
	Website      string  `json:"website,omitempty"`
	Phone        string  `json:"phone,omitempty"`
	Address      string  `json:"address,omitempty"`
	MatchScore   int     `json:"weather_match_score,omitempty"`
}

// ForecastWindow is one 3-hour forecast step with its suitability score
type ForecastWindow struct {
	StartsAt time.Time   `json:"starts_at"`
	Score    float64     `json:"score"`
	Weather  WeatherInfo `json:"weather"`
}

// WeatherReport is the response for a city weather lookup
type WeatherReport struct {
	City    string       `json:"city"`
	Weather WeatherInfo  `json:"weather"`
	Score   WeatherScore `json:"score"`
}

// ActivityRecommendation is the combined weather, activity and place response
type ActivityRecommendation struct {
	City         string                 `json:"city"`
	Weather      WeatherInfo            `json:"weather"`
	Score        WeatherScore           `json:"score"`
	Indoor       []string               `json:"indoor"`
	Outdoor      []string               `json:"outdoor"`
	BestWindow   *ForecastWindow        `json:"best_window,omitempty"`
	Places       map[string][]PlaceInfo `json:"places,omitempty"`
	SearchRadius int                    `json:"search_radius,omitempty"`
}

// PlaceSearchResult is the response for an activity place search
type PlaceSearchResult struct {
	City         string      `json:"city"`
	ActivityType string      `json:"activity_type"`
	Places       []PlaceInfo `json:"places"`
	TotalCount   int         `json:"total_count"`
	SearchRadius int         `json:"search_radius"`
}
