package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"bits/internal/domain"
	"bits/internal/geo"
	"bits/internal/metrics"
	"bits/internal/repository"
	"bits/internal/zone"
)

// Route option parameters.
const (
	fastestBaseFactor     = 1.5
	fastestDistanceFactor = 0.85
	fastestPeakPenalty    = 1.2
	fastestSpeedKmh       = 40.0

	economicBaseFactor     = 1.0
	economicDistanceFactor = 1.2
	economicIncidentFactor = 1.3
	economicSpeedKmh       = 25.0
)

// IncidentCounter counts active incidents in a set of zones.
type IncidentCounter interface {
	CountInZones(ctx context.Context, zones ...string) (int, error)
}

// Ensure IncidentService implements IncidentCounter.
var _ IncidentCounter = (*IncidentService)(nil)

// ComputeQuote prices the fastest and economic options between two zones.
// Peak hours penalize only the fastest option and active incidents only the
// economic option.
func ComputeQuote(origin, destination domain.Zone, incidentCount int, weatherMultiplier, timeMultiplier float64, isPeak bool) domain.RouteQuote {
	distance := geo.DistanceKm(origin.Lat, origin.Lon, destination.Lat, destination.Lon)
	baseBlend := float64(origin.BasePrice+destination.BasePrice) / 2

	fastestMultiplier := weatherMultiplier * timeMultiplier
	if isPeak {
		fastestMultiplier *= fastestPeakPenalty
	}
	fastest := buildQuote(baseBlend*fastestBaseFactor, distance*fastestDistanceFactor, fastestMultiplier, fastestSpeedKmh)

	economicMultiplier := weatherMultiplier * timeMultiplier
	if incidentCount > 0 {
		economicMultiplier *= economicIncidentFactor
	}
	economic := buildQuote(baseBlend*economicBaseFactor, distance*economicDistanceFactor, economicMultiplier, economicSpeedKmh)

	return domain.RouteQuote{
		Origin:      origin.Name,
		Destination: destination.Name,
		Fastest:     fastest,
		Economic:    economic,
		DistanceKm:  geo.Round(distance, 1),
		BaseBlend:   baseBlend,
	}
}

// buildQuote prices one option. Price and ETA use full precision; the
// distance and multiplier are rounded for display.
func buildQuote(priceBase, effectiveDistance, multiplier, speedKmh float64) domain.Quote {
	return domain.Quote{
		Price:       int64(math.Floor(priceBase * multiplier)),
		TimeMinutes: int(math.Floor(effectiveDistance / speedKmh * 60)),
		DistanceKm:  geo.Round(effectiveDistance, 1),
		Multiplier:  geo.Round(multiplier, 2),
	}
}

// QuoteResult is a priced route together with the conditions it was priced under.
type QuoteResult struct {
	Route     domain.RouteQuote
	Condition domain.SurgeCondition
}

// PricingService prices routes between registry zones.
type PricingService struct {
	registry   *zone.Registry
	incidents  IncidentCounter
	conditions *ConditionsService
	auditRepo  repository.PricingRecordRepository
	logger     *zap.Logger
}

// NewPricingService creates a new PricingService. auditRepo may be nil.
func NewPricingService(
	registry *zone.Registry,
	incidents IncidentCounter,
	conditions *ConditionsService,
	auditRepo repository.PricingRecordRepository,
	logger *zap.Logger,
) *PricingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PricingService{
		registry:   registry,
		incidents:  incidents,
		conditions: conditions,
		auditRepo:  auditRepo,
		logger:     logger,
	}
}

// PriceRoute resolves both zones, falling back to the city center for
// unknown names, and prices the route against the active incidents in them.
func (s *PricingService) PriceRoute(ctx context.Context, origin, destination string, weatherMultiplier, timeMultiplier float64, isPeak bool) (domain.RouteQuote, error) {
	o := s.registry.Resolve(origin)
	d := s.registry.Resolve(destination)

	incidentCount, err := s.incidents.CountInZones(ctx, origin, destination)
	if err != nil {
		return domain.RouteQuote{}, err
	}

	return ComputeQuote(o, d, incidentCount, weatherMultiplier, timeMultiplier, isPeak), nil
}

// Quote prices a route under the live conditions at now and appends the
// two options to the pricing audit log. Audit failures are logged only.
func (s *PricingService) Quote(ctx context.Context, origin, destination string, now time.Time) (*QuoteResult, error) {
	if origin == "" || destination == "" {
		return nil, fmt.Errorf("%w: origin and destination are required", ErrInvalidZone)
	}

	cond := s.conditions.Current(ctx, now)
	route, err := s.PriceRoute(ctx, origin, destination, cond.WeatherMultiplier, cond.TimeMultiplier, cond.IsPeak)
	if err != nil {
		return nil, err
	}
	metrics.RecordQuote(string(cond.Weather), cond.IsPeak)

	s.audit(ctx, route, cond)

	return &QuoteResult{Route: route, Condition: cond}, nil
}

func (s *PricingService) audit(ctx context.Context, route domain.RouteQuote, cond domain.SurgeCondition) {
	if s.auditRepo == nil {
		return
	}

	records := []*domain.PricingRecord{
		{
			RouteType:  domain.RouteFastest,
			BasePrice:  route.BaseBlend * fastestBaseFactor,
			FinalPrice: float64(route.Fastest.Price),
			DistanceKm: route.Fastest.DistanceKm,
			Multiplier: route.Fastest.Multiplier,
		},
		{
			RouteType:  domain.RouteEconomic,
			BasePrice:  route.BaseBlend * economicBaseFactor,
			FinalPrice: float64(route.Economic.Price),
			DistanceKm: route.Economic.DistanceKm,
			Multiplier: route.Economic.Multiplier,
		},
	}

	for _, r := range records {
		r.Origin = route.Origin
		r.Destination = route.Destination
		r.Weather = cond.Weather
		r.TimePeriod = cond.TimePeriod
		if err := s.auditRepo.Create(ctx, r); err != nil {
			metrics.AuditWriteFailuresTotal.Inc()
			s.logger.Warn("failed to write pricing record",
				zap.String("origin", route.Origin),
				zap.String("destination", route.Destination),
				zap.String("route_type", string(r.RouteType)),
				zap.Error(err),
			)
		}
	}
}
