package service

import (
	"context"
	"time"

	"bits/internal/domain"
)

const (
	dashboardBaseFare        = 3000
	dashboardTopIncidents    = 5
	alertMultiplierThreshold = 2.0
)

// Alert kinds and their notification tones.
const (
	AlertRoadClosure = "road_closure"
	AlertPriceSpike  = "price_spike"

	roadClosureToneHz = 800
	priceSpikeToneHz  = 600
)

// Alert asks dashboard clients to sound a notification.
type Alert struct {
	Kind       string
	ToneHz     int
	Multiplier float64
}

// DashboardSnapshot is the operations hub view at one instant.
type DashboardSnapshot struct {
	Condition       domain.SurgeCondition
	Time            time.Time
	ActiveDrivers   int
	NewDrivers      int
	PendingOrders   int
	NewOrders       int
	BaseFare        int64
	DisplayedFare   int64
	FareIncreasePct int
	ActiveIncidents int
	TopIncidents    []*domain.Incident
	Alert           *Alert
}

// DashboardService assembles operations hub snapshots.
type DashboardService struct {
	incidents  *IncidentService
	conditions *ConditionsService
	rnd        IntSource
}

// NewDashboardService creates a new DashboardService. A nil rnd uses the
// global random source for the simulated fleet figures.
func NewDashboardService(incidents *IncidentService, conditions *ConditionsService, rnd IntSource) *DashboardService {
	if rnd == nil {
		rnd = globalSource{}
	}
	return &DashboardService{incidents: incidents, conditions: conditions, rnd: rnd}
}

// Snapshot returns the operations hub view at now.
func (s *DashboardService) Snapshot(ctx context.Context, now time.Time) (*DashboardSnapshot, error) {
	active, err := s.incidents.ActiveIncidents(ctx)
	if err != nil {
		return nil, err
	}
	cond := s.conditions.Current(ctx, now)

	top := active
	if len(top) > dashboardTopIncidents {
		top = top[:dashboardTopIncidents]
	}

	return &DashboardSnapshot{
		Condition:       cond,
		Time:            now,
		ActiveDrivers:   randBetween(s.rnd, 150, 400),
		NewDrivers:      randBetween(s.rnd, 10, 50),
		PendingOrders:   randBetween(s.rnd, 50, 250),
		NewOrders:       randBetween(s.rnd, 5, 30),
		BaseFare:        dashboardBaseFare,
		DisplayedFare:   int64(dashboardBaseFare * cond.Multiplier),
		FareIncreasePct: int((cond.Multiplier - 1) * 100),
		ActiveIncidents: len(active),
		TopIncidents:    top,
		Alert:           AlertFor(cond.Multiplier, active),
	}, nil
}

// AlertFor returns the alert to raise for the given multiplier and active
// incidents, or nil. Road closures take precedence over price spikes.
func AlertFor(multiplier float64, active []*domain.Incident) *Alert {
	for _, i := range active {
		if i.Severity == domain.SeverityCritical {
			return &Alert{Kind: AlertRoadClosure, ToneHz: roadClosureToneHz, Multiplier: multiplier}
		}
	}
	if multiplier >= alertMultiplierThreshold {
		return &Alert{Kind: AlertPriceSpike, ToneHz: priceSpikeToneHz, Multiplier: multiplier}
	}
	return nil
}
