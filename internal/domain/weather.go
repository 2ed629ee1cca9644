package domain

// Weather is a simulated weather label.
type Weather string

const (
	WeatherClear     Weather = "clear"
	WeatherCloudy    Weather = "cloudy"
	WeatherLightRain Weather = "light_rain"
	WeatherHeavyRain Weather = "heavy_rain"
	WeatherWindy     Weather = "windy"
	WeatherSandstorm Weather = "sandstorm"
)

// IsRain reports whether the label is one of the rain conditions.
func (w Weather) IsRain() bool {
	return w == WeatherLightRain || w == WeatherHeavyRain
}

// WeatherCondition is the fixed reference data for a weather label.
type WeatherCondition struct {
	Weather    Weather
	Icon       string
	Multiplier float64
	Color      string
	Weight     float64 // sampling probability
}

// TimePeriod is a coarse bucket of the day.
type TimePeriod string

const (
	PeriodMorning TimePeriod = "morning"
	PeriodNoon    TimePeriod = "noon"
	PeriodEvening TimePeriod = "evening"
	PeriodNight   TimePeriod = "night"
)

// Theme is the dashboard color scheme derived from conditions.
type Theme string

const (
	ThemeRain  Theme = "rain"
	ThemePeak  Theme = "peak"
	ThemeClear Theme = "clear"
)

// SurgeCondition is a per-request snapshot of pricing conditions.
type SurgeCondition struct {
	Weather           Weather    `json:"weather"`
	WeatherColor      string     `json:"weather_color"`
	IsPeak            bool       `json:"is_peak"`
	WeatherMultiplier float64    `json:"weather_multiplier"`
	TimeMultiplier    float64    `json:"time_multiplier"`
	Multiplier        float64    `json:"multiplier"`
	TimePeriod        TimePeriod `json:"time_period"`
	Theme             Theme      `json:"theme"`
}
