package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"patternleader/models"
)

// OverpassService searches OpenStreetMap points of interest through the
// public Overpass interpreter.
type OverpassService struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	maxResults int
}

// NewOverpassService creates a new OverpassService instance
func NewOverpassService() *OverpassService {
	return &OverpassService{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    "https://overpass-api.de/api/interpreter",
		userAgent:  "PatternLeader/1.0",
		maxResults: 20,
	}
}

// Name returns the provider identifier used in logs and metrics
func (s *OverpassService) Name() string {
	return "overpass"
}

// activityTags maps activity categories onto OpenStreetMap tag selectors.
// Entries with an explicit key=value pair are used as-is, bare values query
// the amenity key.
var activityTags = map[string][]string{
	"cafe":          {"cafe", "restaurant", "fast_food", "bar"},
	"park":          {"leisure=park", "leisure=garden", "leisure=playground"},
	"museum":        {"tourism=museum", "tourism=gallery", "tourism=attraction"},
	"shopping":      {"shop", "amenity=marketplace"},
	"sports":        {"leisure=sports_centre", "leisure=fitness_centre", "leisure=swimming_pool", "leisure=stadium"},
	"education":     {"amenity=library", "amenity=university", "amenity=school"},
	"entertainment": {"amenity=cinema", "amenity=theatre", "leisure=amusement_arcade"},
	"outdoor":       {"leisure=park", "natural=beach", "leisure=nature_reserve", "tourism=viewpoint"},
}

// ActivityTypes returns the supported place search categories
func ActivityTypes() []string {
	return []string{"cafe", "park", "museum", "shopping", "sports", "education", "entertainment", "outdoor"}
}

// IsActivityType reports whether the category has a tag mapping
func IsActivityType(activityType string) bool {
	_, ok := activityTags[activityType]
	return ok
}

// overpassResponse is the interpreter result envelope
type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

type overpassElement struct {
	Type     string            `json:"type"`
	ID       int64             `json:"id"`
	Lat      float64           `json:"lat"`
	Lon      float64           `json:"lon"`
	Tags     map[string]string `json:"tags"`
	Geometry []struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"geometry"`
}

// SearchPlaces finds named places of the given activity category around a
// point. Unknown categories fall back to cafes, mirroring the search UI.
func (s *OverpassService) SearchPlaces(ctx context.Context, lat, lon float64, activityType string, radius int) ([]models.PlaceInfo, error) {
	return WithCircuitBreaker(ctx, BreakerOverpass, func() ([]models.PlaceInfo, error) {
		tags, ok := activityTags[activityType]
		if !ok {
			tags = activityTags["cafe"]
		}

		query := buildOverpassQuery(lat, lon, radius, tags)

		form := url.Values{}
		form.Set("data", query)

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, strings.NewReader(form.Encode()))
		if err != nil {
			return nil, fmt.Errorf("failed to create overpass request: %w", err)
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("User-Agent", s.userAgent)

		resp, err := s.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to query overpass: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("overpass API returned status %d", resp.StatusCode)
		}

		var result overpassResponse
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return nil, fmt.Errorf("failed to decode overpass response: %w", err)
		}

		places := make([]models.PlaceInfo, 0, len(result.Elements))
		for _, element := range result.Elements {
			place, ok := parseOverpassElement(element)
			if !ok {
				continue
			}
			places = append(places, place)
			if len(places) >= s.maxResults {
				break
			}
		}
		return places, nil
	})
}

// buildOverpassQuery assembles an Overpass QL union of node and way lookups
// around a point for each tag selector.
func buildOverpassQuery(lat, lon float64, radius int, tags []string) string {
	var b strings.Builder
	b.WriteString("[out:json][timeout:25];\n(\n")
	for _, tag := range tags {
		key, value := "amenity", tag
		if k, v, found := strings.Cut(tag, "="); found {
			key, value = k, v
		}
		selector := fmt.Sprintf("[%q=%q]", key, value)
		fmt.Fprintf(&b, "  node%s(around:%d,%f,%f);\n", selector, radius, lat, lon)
		fmt.Fprintf(&b, "  way%s(around:%d,%f,%f);\n", selector, radius, lat, lon)
	}
	b.WriteString(");\nout geom;")
	return b.String()
}

// parseOverpassElement converts one OSM element into a PlaceInfo. Unnamed
// and closed-down places are dropped; way coordinates are the geometry
// centroid.
func parseOverpassElement(element overpassElement) (models.PlaceInfo, bool) {
	name := element.Tags["name"]
	if name == "" {
		return models.PlaceInfo{}, false
	}
	if isClosedBusiness(element.Tags) {
		return models.PlaceInfo{}, false
	}

	lat, lon := element.Lat, element.Lon
	if element.Type == "way" {
		if len(element.Geometry) == 0 {
			return models.PlaceInfo{}, false
		}
		var sumLat, sumLon float64
		for _, point := range element.Geometry {
			sumLat += point.Lat
			sumLon += point.Lon
		}
		lat = sumLat / float64(len(element.Geometry))
		lon = sumLon / float64(len(element.Geometry))
	} else if element.Type != "node" {
		return models.PlaceInfo{}, false
	}

	return models.PlaceInfo{
		ID:           element.ID,
		Name:         name,
		Lat:          lat,
		Lon:          lon,
		Type:         placeType(element.Tags),
		Description:  placeDescription(element.Tags),
		OpeningHours: element.Tags["opening_hours"],
		Website:      element.Tags["website"],
		Phone:        element.Tags["phone"],
		Address:      placeAddress(element.Tags),
	}, true
}

// closed-business tag prefixes used by OSM mappers
var closedPrefixes = []string{"disused:", "abandoned:", "demolished:", "former:"}

func isClosedBusiness(tags map[string]string) bool {
	for key := range tags {
		for _, prefix := range closedPrefixes {
			if strings.HasPrefix(key, prefix) {
				return true
			}
		}
	}
	switch strings.ToLower(tags["opening_hours"]) {
	case "closed", "off", "none":
		return true
	}
	return false
}

func placeType(tags map[string]string) string {
	for _, key := range []string{"amenity", "leisure", "tourism", "shop"} {
		if v := tags[key]; v != "" {
			return v
		}
	}
	return "unknown"
}

func placeDescription(tags map[string]string) string {
	labels := []struct{ key, label string }{
		{"amenity", "편의시설"},
		{"leisure", "여가시설"},
		{"tourism", "관광지"},
		{"shop", "상점"},
		{"cuisine", "요리"},
	}

	parts := make([]string, 0, len(labels)+1)
	for _, l := range labels {
		if v := tags[l.key]; v != "" {
			parts = append(parts, fmt.Sprintf("%s: %s", l.label, v))
		}
	}
	if tags["wifi"] == "yes" {
		parts = append(parts, "WiFi 제공")
	}

	if len(parts) == 0 {
		return "정보 없음"
	}
	return strings.Join(parts, " | ")
}

func placeAddress(tags map[string]string) string {
	parts := make([]string, 0, 5)
	for _, key := range []string{"addr:full", "addr:street", "addr:housenumber", "addr:city", "addr:postcode"} {
		if v := tags[key]; v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}
