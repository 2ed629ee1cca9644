package service

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bits/internal/domain"
)

func at(hour, minute int) time.Time {
	return time.Date(2026, 3, 2, hour, minute, 0, 0, time.UTC)
}

func TestWeatherMultiplier(t *testing.T) {
	tests := []struct {
		weather domain.Weather
		want    float64
	}{
		{domain.WeatherClear, 1.0},
		{domain.WeatherCloudy, 1.0},
		{domain.WeatherLightRain, 1.2},
		{domain.WeatherHeavyRain, 1.5},
		{domain.WeatherWindy, 1.1},
		{domain.WeatherSandstorm, 1.3},
		{"hail", 1.0},
		{"", 1.0},
	}
	for _, tt := range tests {
		t.Run(string(tt.weather), func(t *testing.T) {
			assert.Equal(t, tt.want, WeatherMultiplier(tt.weather))
		})
	}
}

func TestWeatherColor_UnknownIsGreen(t *testing.T) {
	assert.Equal(t, "blue", WeatherColor(domain.WeatherHeavyRain))
	assert.Equal(t, "green", WeatherColor("hail"))
}

func TestWeatherTable_WeightsSumToOne(t *testing.T) {
	sum := 0.0
	for _, c := range WeatherTable {
		sum += c.Weight
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestIsPeakHour_Boundaries(t *testing.T) {
	tests := []struct {
		hour, minute int
		want         bool
	}{
		{7, 29, false},
		{7, 30, true},
		{8, 45, true},
		{9, 30, true},
		{9, 31, false},
		{13, 59, false},
		{14, 0, true},
		{16, 0, true},
		{16, 1, false},
		{0, 0, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsPeakHour(at(tt.hour, tt.minute)), "%02d:%02d", tt.hour, tt.minute)
	}
}

func TestIsPeakHour_WindowEndsAtExactMinute(t *testing.T) {
	clock := func(h, m, sec, nsec int) time.Time {
		return time.Date(2026, 3, 2, h, m, sec, nsec, time.UTC)
	}

	assert.True(t, IsPeakHour(clock(9, 30, 0, 0)))
	assert.False(t, IsPeakHour(clock(9, 30, 0, 1)))
	assert.False(t, IsPeakHour(clock(9, 30, 1, 0)))
	assert.False(t, IsPeakHour(clock(9, 30, 30, 0)))
	assert.False(t, IsPeakHour(clock(9, 30, 59, 0)))
	assert.True(t, IsPeakHour(clock(16, 0, 0, 0)))
	assert.False(t, IsPeakHour(clock(16, 0, 45, 0)))
	assert.False(t, IsPeakHour(clock(7, 29, 59, 999999999)))
	assert.True(t, IsPeakHour(clock(7, 30, 0, 0)))
}

func TestTimePeriod(t *testing.T) {
	assert.Equal(t, domain.PeriodNight, TimePeriod(at(4, 59)))
	assert.Equal(t, domain.PeriodMorning, TimePeriod(at(5, 0)))
	assert.Equal(t, domain.PeriodMorning, TimePeriod(at(11, 59)))
	assert.Equal(t, domain.PeriodNoon, TimePeriod(at(12, 0)))
	assert.Equal(t, domain.PeriodEvening, TimePeriod(at(17, 0)))
	assert.Equal(t, domain.PeriodEvening, TimePeriod(at(20, 59)))
	assert.Equal(t, domain.PeriodNight, TimePeriod(at(21, 0)))
}

func TestConditions(t *testing.T) {
	c := Conditions(at(8, 0), domain.WeatherHeavyRain)
	assert.True(t, c.IsPeak)
	assert.Equal(t, 1.5, c.WeatherMultiplier)
	assert.Equal(t, PeakMultiplier, c.TimeMultiplier)
	assert.InDelta(t, 2.1, c.Multiplier, 1e-9)
	assert.Equal(t, domain.ThemeRain, c.Theme, "rain wins over peak")
	assert.Equal(t, domain.PeriodMorning, c.TimePeriod)

	c = Conditions(at(15, 0), domain.WeatherWindy)
	assert.Equal(t, domain.ThemePeak, c.Theme)
	assert.Equal(t, "orange", c.WeatherColor)

	c = Conditions(at(22, 0), domain.WeatherClear)
	assert.False(t, c.IsPeak)
	assert.Equal(t, 1.0, c.TimeMultiplier)
	assert.Equal(t, domain.ThemeClear, c.Theme)
}

func TestRandomWeather_ReturnsKnownLabels(t *testing.T) {
	known := map[domain.Weather]bool{}
	for _, c := range WeatherTable {
		known[c.Weather] = true
	}

	r := NewRandomWeather(rand.New(rand.NewPCG(1, 2)))
	for i := 0; i < 1000; i++ {
		w := r.Sample()
		require.True(t, known[w], "unexpected label %q", w)
	}
}

func TestSequenceWeather_RepeatsLast(t *testing.T) {
	s := NewSequenceWeather(domain.WeatherClear, domain.WeatherSandstorm)
	assert.Equal(t, domain.WeatherClear, s.Sample())
	assert.Equal(t, domain.WeatherSandstorm, s.Sample())
	assert.Equal(t, domain.WeatherSandstorm, s.Sample())

	assert.Equal(t, domain.WeatherClear, NewSequenceWeather().Sample())
}

type stubWeatherStore struct {
	weather domain.Weather
	err     error
}

func (s *stubWeatherStore) CurrentWeather(ctx context.Context, sample func() domain.Weather, ttl time.Duration) (domain.Weather, error) {
	if s.err != nil {
		return "", s.err
	}
	if s.weather == "" {
		s.weather = sample()
	}
	return s.weather, nil
}

func TestConditionsService_UsesSnapshot(t *testing.T) {
	store := &stubWeatherStore{weather: domain.WeatherSandstorm}
	svc := NewConditionsService(NewSequenceWeather(domain.WeatherClear), store, time.Minute, nil)

	c := svc.Current(context.Background(), at(22, 0))
	assert.Equal(t, domain.WeatherSandstorm, c.Weather)
	assert.Equal(t, 1.3, c.Multiplier)
}

func TestConditionsService_FallsBackToSample(t *testing.T) {
	store := &stubWeatherStore{err: errors.New("connection refused")}
	svc := NewConditionsService(NewSequenceWeather(domain.WeatherWindy), store, time.Minute, nil)

	assert.Equal(t, domain.WeatherWindy, svc.Weather(context.Background()))
}
