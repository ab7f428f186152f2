package activities

import "patternleader/models"

const (
	// outdoorThreshold is the overall score at which being outside is
	// recommended at all
	outdoorThreshold = 70.0

	// fineThreshold separates genuinely good weather from merely workable
	// weather
	fineThreshold = 85.0
)

// wetConditions rule out outdoor recommendations regardless of score
var wetConditions = map[string]bool{
	"Rain":         true,
	"Snow":         true,
	"Thunderstorm": true,
}

// scoreWeather grades current conditions for outdoor suitability on a
// 0-100 scale per component, with the overall score as their mean.
func scoreWeather(weather *models.WeatherInfo) models.WeatherScore {
	score := models.WeatherScore{
		Temperature: temperatureScore(weather.Temperature),
		Humidity:    humidityScore(weather.Humidity),
		Wind:        windScore(weather.WindSpeed),
		Condition:   conditionScore(weather.Condition),
	}
	score.Overall = (score.Temperature + score.Humidity + score.Wind + score.Condition) / 4
	score.Outdoor = score.Overall >= outdoorThreshold && !wetConditions[weather.Condition]
	return score
}

// temperatureScore peaks in the 18-26°C comfort band
func temperatureScore(celsius float64) float64 {
	switch {
	case celsius >= 18 && celsius <= 26:
		return 100
	case (celsius >= 10 && celsius < 18) || (celsius > 26 && celsius <= 30):
		return 80
	case (celsius >= 5 && celsius < 10) || (celsius > 30 && celsius <= 35):
		return 60
	default:
		return 30
	}
}

// humidityScore peaks in the 40-70% comfort band
func humidityScore(percent int) float64 {
	switch {
	case percent >= 40 && percent <= 70:
		return 100
	case (percent >= 30 && percent < 40) || (percent > 70 && percent <= 80):
		return 80
	default:
		return 50
	}
}

// windScore degrades above a 5 m/s breeze
func windScore(speed float64) float64 {
	switch {
	case speed <= 5:
		return 100
	case speed <= 8:
		return 80
	default:
		return 60
	}
}

func conditionScore(condition string) float64 {
	switch condition {
	case "Clear":
		return 100
	case "Clouds":
		return 80
	case "Drizzle", "Mist":
		return 50
	case "Rain", "Snow":
		return 30
	default:
		return 40
	}
}
