// Package activities pairs city weather with activity and place
// suggestions. It is the secondary surface next to the market analysis
// API, fed by the OpenWeather and Overpass clients.
package activities

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"patternleader/models"
	"patternleader/observability"
	"patternleader/services"
)

// ErrWeatherDisabled is returned when no OpenWeather API key is
// configured, which also disables geocoding for place search.
var ErrWeatherDisabled = errors.New("날씨 서비스가 설정되지 않았습니다")

// Options tunes a Service
type Options struct {
	// Timeout bounds one whole operation including place fan-out
	Timeout time.Duration
	// ForecastSteps is how many 3h forecast steps the best-window scan reads
	ForecastSteps int
	// DefaultRadius is the place search radius in meters when none is given
	DefaultRadius int
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	if o.ForecastSteps <= 0 {
		o.ForecastSteps = 8
	}
	if o.DefaultRadius <= 0 {
		o.DefaultRadius = 2000
	}
	return o
}

// Service answers city weather lookups, activity recommendations and
// place searches.
type Service struct {
	weather services.WeatherProvider
	places  services.PlaceProvider
	pool    *services.WorkerPool
	opts    Options
}

// NewService creates a new activities Service. weather may be nil when no
// API key is configured; recommendations then degrade to indoor
// suggestions and the other operations report ErrWeatherDisabled. A nil
// pool runs place searches sequentially.
func NewService(weather services.WeatherProvider, places services.PlaceProvider, pool *services.WorkerPool, opts Options) *Service {
	return &Service{
		weather: weather,
		places:  places,
		pool:    pool,
		opts:    opts.withDefaults(),
	}
}

// Weather reports current conditions and the outdoor suitability score
// for a city.
func (s *Service) Weather(ctx context.Context, city string) (*models.WeatherReport, error) {
	if s.weather == nil {
		return nil, ErrWeatherDisabled
	}
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	_, weather, err := s.observe(ctx, city)
	if err != nil {
		return nil, err
	}

	report := &models.WeatherReport{
		City:    city,
		Weather: *weather,
		Score:   scoreWeather(weather),
	}
	report.Weather.Description = koreanCondition(weather.Condition)
	return report, nil
}

// Recommend builds the combined weather, activity and place response for
// a city. Place search and the forecast window are best-effort; their
// failures degrade the response instead of failing it.
func (s *Service) Recommend(ctx context.Context, city string, radius int) (*models.ActivityRecommendation, error) {
	if radius <= 0 {
		radius = s.opts.DefaultRadius
	}
	if s.weather == nil {
		observability.Warn("weather provider not configured, serving indoor suggestions", "city", city)
		return &models.ActivityRecommendation{
			City:   city,
			Indoor: indoorActivities(),
		}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	location, weather, err := s.observe(ctx, city)
	if err != nil {
		return nil, err
	}

	score := scoreWeather(weather)
	indoor, outdoor := classifyActivities(suggestActivities(score), city)

	recommendation := &models.ActivityRecommendation{
		City:         city,
		Weather:      *weather,
		Score:        score,
		Indoor:       indoor,
		Outdoor:      outdoor,
		BestWindow:   s.bestWindow(ctx, location),
		SearchRadius: radius,
	}
	recommendation.Weather.Description = koreanCondition(weather.Condition)

	if s.places != nil {
		types := activityTypesForWeather(score, weather.Condition)
		recommendation.Places = s.searchByTypes(ctx, location, types, radius, weather)
	}

	observability.Info("activity recommendation built",
		"city", city, "score", score.Overall, "outdoor", score.Outdoor)
	return recommendation, nil
}

// Places searches points of interest of one activity category around a
// city.
func (s *Service) Places(ctx context.Context, city, activityType string, radius int) (*models.PlaceSearchResult, error) {
	if s.weather == nil {
		return nil, ErrWeatherDisabled
	}
	if radius <= 0 {
		radius = s.opts.DefaultRadius
	}
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	location, err := s.weather.Geocode(ctx, city)
	if err != nil {
		return nil, err
	}

	places, err := s.places.SearchPlaces(ctx, location.Lat, location.Lon, activityType, radius)
	if err != nil {
		return nil, err
	}

	return &models.PlaceSearchResult{
		City:         city,
		ActivityType: activityType,
		Places:       places,
		TotalCount:   len(places),
		SearchRadius: radius,
	}, nil
}

// observe resolves a city and reads its current weather
func (s *Service) observe(ctx context.Context, city string) (*models.GeoLocation, *models.WeatherInfo, error) {
	location, err := s.weather.Geocode(ctx, city)
	if err != nil {
		return nil, nil, err
	}
	weather, err := s.weather.CurrentWeather(ctx, location.Lat, location.Lon)
	if err != nil {
		return nil, nil, err
	}
	return location, weather, nil
}

// bestWindow scans the forecast for the highest-scoring 3h step. A
// missing forecast is not an error, just an absent window.
func (s *Service) bestWindow(ctx context.Context, location *models.GeoLocation) *models.ForecastWindow {
	steps, err := s.weather.Forecast(ctx, location.Lat, location.Lon, s.opts.ForecastSteps)
	if err != nil {
		observability.Warn("forecast unavailable, skipping best window", "error", err)
		return nil
	}

	var best *models.ForecastWindow
	for _, step := range steps {
		score := scoreWeather(&step)
		if best == nil || score.Overall > best.Score {
			weather := step
			weather.Description = koreanCondition(step.Condition)
			best = &models.ForecastWindow{
				StartsAt: step.ObservedAt,
				Score:    score.Overall,
				Weather:  weather,
			}
		}
	}
	return best
}

// searchByTypes fans the place search out over the worker pool, one job
// per category, and keys results by the rendered Korean label. Failed
// categories are dropped from the map.
func (s *Service) searchByTypes(ctx context.Context, location *models.GeoLocation, types []string, radius int, weather *models.WeatherInfo) map[string][]models.PlaceInfo {
	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string][]models.PlaceInfo, len(types))
	)

	for _, activityType := range types {
		activityType := activityType
		wg.Add(1)
		job := func() {
			defer wg.Done()

			places, err := s.places.SearchPlaces(ctx, location.Lat, location.Lon, activityType, radius)
			if err != nil {
				observability.Warn("place search failed",
					"activity_type", activityType, "error", err)
				return
			}

			for i := range places {
				places[i].MatchScore = matchScore(weather, places[i].Type)
			}
			sort.SliceStable(places, func(i, j int) bool {
				return places[i].MatchScore > places[j].MatchScore
			})

			mu.Lock()
			results[KoreanActivityType(activityType)] = places
			mu.Unlock()
		}

		if s.pool == nil {
			job()
			continue
		}
		if err := s.pool.Submit(ctx, job); err != nil {
			wg.Done()
			observability.Warn("place search not scheduled",
				"activity_type", activityType, "error", err)
		}
	}

	wg.Wait()
	return results
}
