package domain

import "time"

// WeatherCondition enumerates the synthetic forecast conditions.
type WeatherCondition string

const (
	CondSunny        WeatherCondition = "sunny"
	CondPartlyCloudy WeatherCondition = "partly-cloudy"
	CondCloudy       WeatherCondition = "cloudy"
	CondRainy        WeatherCondition = "rainy"
	CondStorm        WeatherCondition = "storm"
	CondWindy        WeatherCondition = "windy"
)

// HourlyForecast is one hour of the synthetic weather forecast. The
// sequence fed to the planner is chronological, one entry per hour,
// starting from "now".
type HourlyForecast struct {
	Timestamp    time.Time        `json:"timestamp"`
	TimeLabel    string           `json:"time"` // display label, e.g. "15:00"
	Temp         int              `json:"temp"` // Celsius
	Condition    WeatherCondition `json:"condition"`
	PrecipChance int              `json:"precipChance"` // 0-100
}

// DailyForecast summarizes one day of the synthetic forecast.
type DailyForecast struct {
	Day          string           `json:"day"`
	MinTemp      int              `json:"minTemp"`
	MaxTemp      int              `json:"maxTemp"`
	Condition    WeatherCondition `json:"condition"`
	PrecipChance int              `json:"precipChance"`
}
