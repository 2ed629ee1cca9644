package service

import (
	"context"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"bits/internal/domain"
	"bits/internal/redis"
)

// PeakMultiplier is the time multiplier applied during peak windows.
const PeakMultiplier = 1.4

// DefaultWeatherTTL is how long a sampled weather snapshot stays live.
const DefaultWeatherTTL = 5 * time.Minute

// WeatherTable lists the known weather labels with their multipliers,
// display colors and sampling weights. Weights sum to 1.
var WeatherTable = []domain.WeatherCondition{
	{Weather: domain.WeatherClear, Icon: "☀️", Multiplier: 1.0, Color: "green", Weight: 0.40},
	{Weather: domain.WeatherCloudy, Icon: "☁️", Multiplier: 1.0, Color: "gray", Weight: 0.20},
	{Weather: domain.WeatherLightRain, Icon: "🌦️", Multiplier: 1.2, Color: "blue", Weight: 0.15},
	{Weather: domain.WeatherHeavyRain, Icon: "🌧️", Multiplier: 1.5, Color: "blue", Weight: 0.10},
	{Weather: domain.WeatherWindy, Icon: "💨", Multiplier: 1.1, Color: "orange", Weight: 0.10},
	{Weather: domain.WeatherSandstorm, Icon: "🌪️", Multiplier: 1.3, Color: "orange", Weight: 0.05},
}

// peakWindows are inclusive [start, end] offsets into the day.
var peakWindows = [][2]time.Duration{
	{7*time.Hour + 30*time.Minute, 9*time.Hour + 30*time.Minute},
	{14 * time.Hour, 16 * time.Hour},
}

func lookupWeather(w domain.Weather) (domain.WeatherCondition, bool) {
	for _, c := range WeatherTable {
		if c.Weather == w {
			return c, true
		}
	}
	return domain.WeatherCondition{}, false
}

// IsKnownWeather reports whether w is one of the labels in WeatherTable.
func IsKnownWeather(w domain.Weather) bool {
	_, ok := lookupWeather(w)
	return ok
}

// WeatherMultiplier returns the surge factor for a weather label, or 1.0
// for labels outside the table.
func WeatherMultiplier(w domain.Weather) float64 {
	if c, ok := lookupWeather(w); ok {
		return c.Multiplier
	}
	return 1.0
}

// WeatherColor returns the display color for a weather label, or green for
// labels outside the table.
func WeatherColor(w domain.Weather) string {
	if c, ok := lookupWeather(w); ok {
		return c.Color
	}
	return "green"
}

// IsPeakHour reports whether the wall clock of t falls in a peak window.
// Both window endpoints are included, so 09:30:00 is peak and 09:30:01 is not.
func IsPeakHour(t time.Time) bool {
	d := time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second +
		time.Duration(t.Nanosecond())
	for _, w := range peakWindows {
		if d >= w[0] && d <= w[1] {
			return true
		}
	}
	return false
}

// TimePeriod buckets t into a coarse part of the day.
func TimePeriod(t time.Time) domain.TimePeriod {
	h := t.Hour()
	switch {
	case h >= 5 && h < 12:
		return domain.PeriodMorning
	case h >= 12 && h < 17:
		return domain.PeriodNoon
	case h >= 17 && h < 21:
		return domain.PeriodEvening
	default:
		return domain.PeriodNight
	}
}

// Conditions derives the surge condition for a weather label at time now.
func Conditions(now time.Time, weather domain.Weather) domain.SurgeCondition {
	isPeak := IsPeakHour(now)
	wm := WeatherMultiplier(weather)
	tm := 1.0
	if isPeak {
		tm = PeakMultiplier
	}

	theme := domain.ThemeClear
	switch {
	case weather.IsRain():
		theme = domain.ThemeRain
	case isPeak:
		theme = domain.ThemePeak
	}

	return domain.SurgeCondition{
		Weather:           weather,
		WeatherColor:      WeatherColor(weather),
		IsPeak:            isPeak,
		WeatherMultiplier: wm,
		TimeMultiplier:    tm,
		Multiplier:        wm * tm,
		TimePeriod:        TimePeriod(now),
		Theme:             theme,
	}
}

// WeatherProvider stands in for a live weather feed.
type WeatherProvider interface {
	Sample() domain.Weather
}

// RandomWeather samples labels from WeatherTable by weight.
type RandomWeather struct {
	rnd *rand.Rand
}

// NewRandomWeather creates a RandomWeather. A nil rnd uses the global source.
func NewRandomWeather(rnd *rand.Rand) *RandomWeather {
	return &RandomWeather{rnd: rnd}
}

// Sample draws one weather label.
func (r *RandomWeather) Sample() domain.Weather {
	var x float64
	if r.rnd != nil {
		x = r.rnd.Float64()
	} else {
		x = rand.Float64()
	}

	acc := 0.0
	for _, c := range WeatherTable {
		acc += c.Weight
		if x < acc {
			return c.Weather
		}
	}
	return WeatherTable[len(WeatherTable)-1].Weather
}

// SequenceWeather replays a fixed list of labels, repeating the last one.
type SequenceWeather struct {
	labels []domain.Weather
	next   int
}

// NewSequenceWeather creates a SequenceWeather over labels.
func NewSequenceWeather(labels ...domain.Weather) *SequenceWeather {
	return &SequenceWeather{labels: labels}
}

// Sample returns the next label.
func (s *SequenceWeather) Sample() domain.Weather {
	if len(s.labels) == 0 {
		return domain.WeatherClear
	}
	w := s.labels[s.next]
	if s.next < len(s.labels)-1 {
		s.next++
	}
	return w
}

// ConditionsService resolves the live surge condition. The weather snapshot
// is shared through Redis when a store is configured so that every replica
// prices against the same weather for the snapshot TTL.
type ConditionsService struct {
	provider WeatherProvider
	store    redis.WeatherStoreInterface
	ttl      time.Duration
	logger   *zap.Logger
}

// NewConditionsService creates a new ConditionsService. store may be nil.
func NewConditionsService(
	provider WeatherProvider,
	store redis.WeatherStoreInterface,
	ttl time.Duration,
	logger *zap.Logger,
) *ConditionsService {
	if ttl <= 0 {
		ttl = DefaultWeatherTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConditionsService{
		provider: provider,
		store:    store,
		ttl:      ttl,
		logger:   logger,
	}
}

// Weather returns the current weather label. Snapshot store failures fall
// back to a fresh sample.
func (s *ConditionsService) Weather(ctx context.Context) domain.Weather {
	if s.store == nil {
		return s.provider.Sample()
	}

	w, err := s.store.CurrentWeather(ctx, s.provider.Sample, s.ttl)
	if err != nil {
		s.logger.Warn("weather snapshot unavailable", zap.Error(err))
		return s.provider.Sample()
	}
	return w
}

// Current returns the surge condition at time now.
func (s *ConditionsService) Current(ctx context.Context, now time.Time) domain.SurgeCondition {
	return Conditions(now, s.Weather(ctx))
}
