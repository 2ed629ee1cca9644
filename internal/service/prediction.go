package service

import (
	"math/rand/v2"
	"slices"
	"strconv"
	"time"

	"bits/internal/domain"
)

// IntSource draws bounded random integers. *rand.Rand satisfies it.
type IntSource interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// randBetween returns a value in [lo, hi].
func randBetween(src IntSource, lo, hi int) int {
	return lo + src.IntN(hi-lo+1)
}

type hourRange struct{ start, end int }

type trafficPattern struct {
	highRisk  []string
	peakHours []hourRange // inclusive
}

var trafficPatterns = map[time.Weekday]trafficPattern{
	time.Monday:    {highRisk: []string{"Mansour", "Karrada", "Jadriya"}, peakHours: []hourRange{{7, 9}, {14, 16}, {17, 19}}},
	time.Tuesday:   {highRisk: []string{"Mansour", "Karrada"}, peakHours: []hourRange{{7, 9}, {14, 16}, {17, 19}}},
	time.Wednesday: {highRisk: []string{"Mansour", "Karrada", "Jadriya"}, peakHours: []hourRange{{7, 9}, {14, 16}, {17, 19}}},
	time.Thursday:  {highRisk: []string{"Mansour", "Karrada", "Adhamiya"}, peakHours: []hourRange{{7, 9}, {14, 16}, {17, 20}}},
	time.Friday:    {highRisk: []string{"Adhamiya", "Kadhimiya"}, peakHours: []hourRange{{10, 13}, {17, 21}}},
	time.Saturday:  {highRisk: []string{"Karrada", "Mazza"}, peakHours: []hourRange{{10, 14}, {18, 22}}},
	time.Sunday:    {highRisk: []string{"Mansour", "Jadriya"}, peakHours: []hourRange{{7, 9}, {14, 16}, {17, 19}}},
}

// PredictedZones are the zones covered by AllPredictions.
var PredictedZones = []string{"Mansour", "Karrada", "Jadriya", "Adhamiya", "Mazza"}

// Prediction warnings.
const (
	WarningSevereCongestion   = "Severe congestion expected"
	WarningPossibleCongestion = "Possible congestion"
	WarningLightCongestion    = "Light congestion during peak hours"
	WarningFridayMosques      = "Friday: congestion around mosques"
)

// demandCurve is the baseline demand index for each hour of the day.
var demandCurve = [24]int{25, 18, 12, 8, 8, 12, 28, 55, 75, 85, 80, 72, 68, 62, 68, 78, 88, 95, 92, 82, 72, 62, 48, 32}

// PredictionService produces rule-table traffic forecasts.
type PredictionService struct {
	rnd IntSource
}

// NewPredictionService creates a new PredictionService. A nil rnd uses the
// global random source.
func NewPredictionService(rnd IntSource) *PredictionService {
	if rnd == nil {
		rnd = globalSource{}
	}
	return &PredictionService{rnd: rnd}
}

// PredictTraffic forecasts congestion risk for a zone at now.
func (s *PredictionService) PredictTraffic(zoneName string, now time.Time) domain.Prediction {
	day := now.Weekday()
	hour := now.Hour()
	pattern := trafficPatterns[day]

	isHighRisk := slices.Contains(pattern.highRisk, zoneName)
	isPeakTime := false
	for _, r := range pattern.peakHours {
		if hour >= r.start && hour <= r.end {
			isPeakTime = true
			break
		}
	}

	risk := domain.RiskLow
	warnings := []string{}
	switch {
	case isHighRisk && isPeakTime:
		risk = domain.RiskCritical
		warnings = append(warnings,
			WarningSevereCongestion,
			"Expect a delay of about "+strconv.Itoa(randBetween(s.rnd, 15, 35))+" minutes",
		)
	case isHighRisk:
		risk = domain.RiskHigh
		warnings = append(warnings, WarningPossibleCongestion)
	case isPeakTime:
		risk = domain.RiskMedium
		warnings = append(warnings, WarningLightCongestion)
	}
	if day == time.Friday {
		warnings = append(warnings, WarningFridayMosques)
	}

	return domain.Prediction{
		Zone:       zoneName,
		Day:        day.String(),
		Hour:       hour,
		RiskLevel:  risk,
		IsHighRisk: isHighRisk,
		IsPeakTime: isPeakTime,
		Warnings:   warnings,
		Confidence: randBetween(s.rnd, 75, 95),
	}
}

// AllPredictions forecasts every zone in PredictedZones.
func (s *PredictionService) AllPredictions(now time.Time) []domain.Prediction {
	predictions := make([]domain.Prediction, 0, len(PredictedZones))
	for _, z := range PredictedZones {
		predictions = append(predictions, s.PredictTraffic(z, now))
	}
	return predictions
}

// Recommendations lists the zones with high or critical predicted risk.
func Recommendations(predictions []domain.Prediction) []string {
	zones := []string{}
	for _, p := range predictions {
		if p.RiskLevel == domain.RiskCritical || p.RiskLevel == domain.RiskHigh {
			zones = append(zones, p.Zone)
		}
	}
	return zones
}

// DemandForecast returns the hourly demand index, scaled up during peak
// hours and in rain. Each scaling step truncates.
func DemandForecast(isPeak, isRain bool) []domain.DemandPoint {
	points := make([]domain.DemandPoint, len(demandCurve))
	for h, d := range demandCurve {
		if isPeak {
			d = int(float64(d) * 1.4)
		}
		if isRain {
			d = int(float64(d) * 1.5)
		}
		points[h] = domain.DemandPoint{Hour: h, Demand: d}
	}
	return points
}
