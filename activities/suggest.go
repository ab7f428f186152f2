package activities

import (
	"math"
	"strings"

	"patternleader/models"
)

// minSuggestions is the smallest indoor or outdoor list served; short
// lists are padded with city-specific defaults.
const minSuggestions = 3

// indoorKeywords classify a suggestion as an indoor activity
var indoorKeywords = []string{
	"실내", "카페", "관람", "박물관", "도서관", "쇼핑", "영화관", "서점", "문화시설",
}

// activityTypeKorean carries the category labels the product renders
var activityTypeKorean = map[string]string{
	"cafe":          "카페",
	"park":          "공원",
	"museum":        "박물관/미술관",
	"shopping":      "쇼핑",
	"sports":        "스포츠시설",
	"education":     "교육시설",
	"entertainment": "엔터테인먼트",
	"outdoor":       "야외관광지",
}

var conditionKorean = map[string]string{
	"Clear":        "맑음",
	"Clouds":       "구름 많음",
	"Rain":         "비",
	"Snow":         "눈",
	"Thunderstorm": "천둥번개",
	"Drizzle":      "이슬비",
	"Mist":         "안개",
	"Haze":         "옅은 안개",
	"Fog":          "짙은 안개",
}

// KoreanActivityType translates a place search category, passing unknown
// values through unchanged.
func KoreanActivityType(activityType string) string {
	if korean, ok := activityTypeKorean[activityType]; ok {
		return korean
	}
	return activityType
}

func koreanCondition(condition string) string {
	if korean, ok := conditionKorean[condition]; ok {
		return korean
	}
	return condition
}

// suggestActivities picks the base activity list for the weather tier
func suggestActivities(score models.WeatherScore) []string {
	switch {
	case score.Outdoor && score.Overall >= fineThreshold:
		return []string{"공원에서 산책하기", "야외 운동하기", "자전거 타기", "피크닉 즐기기", "야외 카페에서 휴식"}
	case score.Outdoor:
		return []string{"짧은 산책하기", "가벼운 야외 활동", "그늘진 공원 방문", "실내외 겸용 카페 가기"}
	default:
		return indoorActivities()
	}
}

func indoorActivities() []string {
	return []string{"실내 카페 가기", "박물관 관람하기", "쇼핑몰 가기", "도서관에서 독서", "실내 문화시설 방문"}
}

// classifyActivities splits suggestions into indoor and outdoor buckets by
// keyword, padding short buckets with city-specific defaults.
func classifyActivities(activities []string, city string) (indoor, outdoor []string) {
	for _, activity := range activities {
		if containsAny(activity, indoorKeywords) {
			indoor = append(indoor, activity)
		} else {
			outdoor = append(outdoor, activity)
		}
	}

	if len(indoor) < minSuggestions {
		indoor = appendMissing(indoor, []string{
			city + " 카페에서 휴식",
			city + " 박물관 방문",
			city + " 미술관 관람",
			"실내 영화관 관람",
			"쇼핑몰 쇼핑",
			"도서관에서 독서",
		})
	}
	if len(outdoor) < minSuggestions {
		outdoor = appendMissing(outdoor, []string{
			city + " 공원 산책",
			city + " 근처 등산",
			city + " 주변 하이킹",
			city + " 자전거 타기",
			city + " 명소 관광",
		})
	}
	return indoor, outdoor
}

// activityTypesForWeather picks the place search categories worth showing
// under the current conditions.
func activityTypesForWeather(score models.WeatherScore, condition string) []string {
	switch {
	case wetConditions[condition]:
		return []string{"cafe", "museum", "shopping", "entertainment"}
	case score.Overall < 50:
		return []string{"cafe", "museum", "shopping", "entertainment", "education"}
	case score.Overall < fineThreshold:
		return []string{"cafe", "park", "museum", "shopping", "education"}
	default:
		return []string{"park", "outdoor", "cafe", "museum", "sports"}
	}
}

// outdoorPlaceTypes are OSM categories treated as open-air venues
var outdoorPlaceTypes = map[string]bool{
	"park":           true,
	"garden":         true,
	"playground":     true,
	"beach":          true,
	"nature_reserve": true,
	"viewpoint":      true,
	"stadium":        true,
	"attraction":     true,
}

// matchScore grades how well the current weather suits a visit, 0-100.
// Open-air venues follow the outdoor suitability score; enclosed venues
// get more attractive as the weather worsens.
func matchScore(weather *models.WeatherInfo, placeType string) int {
	score := scoreWeather(weather)
	if outdoorPlaceTypes[placeType] {
		return int(math.Round(score.Overall))
	}

	condition := 85.0
	switch weather.Condition {
	case "Rain", "Drizzle", "Snow", "Thunderstorm":
		condition = 100
	case "Clear":
		condition = 70
	}
	overall := score.Temperature*0.2 + score.Humidity*0.3 + 90*0.1 + condition*0.4
	return int(math.Round(overall))
}

func containsAny(s string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(s, keyword) {
			return true
		}
	}
	return false
}

func appendMissing(list, defaults []string) []string {
	for _, d := range defaults {
		if !containsString(list, d) {
			list = append(list, d)
		}
	}
	return list
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
