package service

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"bits/internal/domain"
	"bits/internal/geo"
	"bits/internal/metrics"
	"bits/internal/redis"
	"bits/internal/repository"
	"bits/internal/zone"
)

const (
	ledgerLockTTL = 5 * time.Second

	// DefaultNearbyRadiusKm is used when a nearby query has no radius.
	DefaultNearbyRadiusKm = 3.0
)

// AddIncidentRequest contains the parameters for recording an incident.
// Nil coordinates default to the zone's registry coordinates.
type AddIncidentRequest struct {
	Zone         string
	Category     domain.IncidentCategory
	Severity     domain.Severity
	Description  string
	Lat          *float64
	Lon          *float64
	AffectedRoad string
}

// NearbyIncident is an active incident with its distance from a query point.
type NearbyIncident struct {
	Incident   *domain.Incident
	DistanceKm float64
}

// IncidentService is the incident ledger. Adds and removes are serialized
// in-process and, when a lock store is configured, across processes.
type IncidentService struct {
	repo      repository.IncidentRepository
	registry  *zone.Registry
	lockStore redis.LockStoreInterface
	geoIndex  redis.LocationStoreInterface
	events    redis.EventPublisherInterface
	logger    *zap.Logger

	mu  sync.Mutex
	now func() time.Time
}

// NewIncidentService creates a new IncidentService. lockStore, geoIndex and
// events may be nil.
func NewIncidentService(
	repo repository.IncidentRepository,
	registry *zone.Registry,
	lockStore redis.LockStoreInterface,
	geoIndex redis.LocationStoreInterface,
	events redis.EventPublisherInterface,
	logger *zap.Logger,
) *IncidentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IncidentService{
		repo:      repo,
		registry:  registry,
		lockStore: lockStore,
		geoIndex:  geoIndex,
		events:    events,
		logger:    logger,
		now:       time.Now,
	}
}

// AddIncident validates and records a new active incident.
func (s *IncidentService) AddIncident(ctx context.Context, req AddIncidentRequest) (*domain.Incident, error) {
	incident, err := s.buildIncident(req)
	if err != nil {
		return nil, err
	}

	unlock, err := s.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	err = s.repo.Create(ctx, incident)
	metrics.RecordIncidentChange("add", err)
	if err != nil {
		s.logger.Error("failed to add incident", zap.String("zone", incident.Zone), zap.Error(err))
		return nil, fmt.Errorf("%w: add incident: %w", ErrStorageFault, err)
	}

	if s.geoIndex != nil {
		if err := s.geoIndex.AddIncident(ctx, incident.ID, incident.Lat, incident.Lon); err != nil {
			s.logger.Warn("failed to index incident", zap.Int64("incident_id", incident.ID), zap.Error(err))
		}
	}
	s.publish(ctx, domain.IncidentEvent{
		Type:       domain.IncidentAdded,
		IncidentID: incident.ID,
		Zone:       incident.Zone,
		Severity:   incident.Severity,
	})

	s.logger.Info("incident added",
		zap.Int64("incident_id", incident.ID),
		zap.String("zone", incident.Zone),
		zap.String("severity", string(incident.Severity)),
	)
	return incident, nil
}

func (s *IncidentService) buildIncident(req AddIncidentRequest) (*domain.Incident, error) {
	name := strings.TrimSpace(req.Zone)
	if name == "" {
		return nil, ErrInvalidZone
	}
	if !req.Category.Valid() {
		return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidIncident, req.Category)
	}
	if !req.Severity.Valid() {
		return nil, fmt.Errorf("%w: unknown severity %q", ErrInvalidIncident, req.Severity)
	}

	z := s.registry.Resolve(name)
	lat, lon := z.Lat, z.Lon
	if req.Lat != nil {
		lat = *req.Lat
	}
	if req.Lon != nil {
		lon = *req.Lon
	}
	if !geo.ValidCoordinates(lat, lon) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidIncident, zone.ErrInvalidCoordinates)
	}

	return &domain.Incident{
		Zone:         name,
		Category:     req.Category,
		Severity:     req.Severity,
		Description:  strings.TrimSpace(req.Description),
		Lat:          lat,
		Lon:          lon,
		AffectedRoad: strings.TrimSpace(req.AffectedRoad),
		Active:       true,
	}, nil
}

// RemoveIncident soft-deletes an incident. Removing an unknown or already
// inactive incident succeeds.
func (s *IncidentService) RemoveIncident(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalidIncidentID
	}

	unlock, err := s.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	err = s.repo.Deactivate(ctx, id)
	metrics.RecordIncidentChange("remove", err)
	if err != nil {
		s.logger.Error("failed to remove incident", zap.Int64("incident_id", id), zap.Error(err))
		return fmt.Errorf("%w: remove incident: %w", ErrStorageFault, err)
	}

	if s.geoIndex != nil {
		if err := s.geoIndex.RemoveIncident(ctx, id); err != nil {
			s.logger.Warn("failed to unindex incident", zap.Int64("incident_id", id), zap.Error(err))
		}
	}
	s.publish(ctx, domain.IncidentEvent{Type: domain.IncidentRemoved, IncidentID: id})

	s.logger.Info("incident removed", zap.Int64("incident_id", id))
	return nil
}

// ActiveIncidents returns active incidents, most severe first, then in
// creation order.
func (s *IncidentService) ActiveIncidents(ctx context.Context) ([]*domain.Incident, error) {
	incidents, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list incidents: %w", ErrStorageFault, err)
	}

	slices.SortStableFunc(incidents, func(a, b *domain.Incident) int {
		if c := cmp.Compare(a.Severity.Rank(), b.Severity.Rank()); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return incidents, nil
}

// CountByZone returns the number of active incidents per zone.
func (s *IncidentService) CountByZone(ctx context.Context) (map[string]int, error) {
	counts, err := s.repo.CountActiveByZone(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: count incidents: %w", ErrStorageFault, err)
	}
	return counts, nil
}

// CountInZones returns the number of active incidents in any of zones.
func (s *IncidentService) CountInZones(ctx context.Context, zones ...string) (int, error) {
	n, err := s.repo.CountActiveInZones(ctx, zones...)
	if err != nil {
		return 0, fmt.Errorf("%w: count incidents: %w", ErrStorageFault, err)
	}
	return n, nil
}

// NearbyIncidents returns active incidents within radiusKm of (lat, lon),
// nearest first.
func (s *IncidentService) NearbyIncidents(ctx context.Context, lat, lon, radiusKm float64) ([]NearbyIncident, error) {
	if !geo.ValidCoordinates(lat, lon) {
		return nil, zone.ErrInvalidCoordinates
	}
	if radiusKm <= 0 {
		radiusKm = DefaultNearbyRadiusKm
	}

	active, err := s.ActiveIncidents(ctx)
	if err != nil {
		return nil, err
	}

	if s.geoIndex != nil {
		found, err := s.findIndexed(ctx, active, lat, lon, radiusKm)
		if err == nil {
			byID := make(map[int64]*domain.Incident, len(active))
			for _, i := range active {
				byID[i.ID] = i
			}
			nearby := make([]NearbyIncident, 0, len(found))
			for _, f := range found {
				if i, ok := byID[f.IncidentID]; ok {
					nearby = append(nearby, NearbyIncident{Incident: i, DistanceKm: f.DistanceKm})
				}
			}
			return nearby, nil
		}
		s.logger.Warn("incident geo index unavailable, scanning ledger", zap.Error(err))
	}

	nearby := []NearbyIncident{}
	for _, i := range active {
		d := geo.DistanceKm(lat, lon, i.Lat, i.Lon)
		if d <= radiusKm {
			nearby = append(nearby, NearbyIncident{Incident: i, DistanceKm: d})
		}
	}
	slices.SortStableFunc(nearby, func(a, b NearbyIncident) int {
		return cmp.Compare(a.DistanceKm, b.DistanceKm)
	})
	return nearby, nil
}

// findIndexed brings the geo index in line with active before querying it,
// so rows written while the index was unreachable are still found.
func (s *IncidentService) findIndexed(ctx context.Context, active []*domain.Incident, lat, lon, radiusKm float64) ([]redis.IncidentLocation, error) {
	if _, err := s.syncIndex(ctx, active); err != nil {
		return nil, err
	}
	return s.geoIndex.FindNearbyIncidents(ctx, lat, lon, radiusKm)
}

// ReindexLocations adds active incidents missing from the geo index and
// drops indexed ids that are no longer active. It returns the number of
// index entries changed.
func (s *IncidentService) ReindexLocations(ctx context.Context) (int, error) {
	if s.geoIndex == nil {
		return 0, nil
	}
	active, err := s.ActiveIncidents(ctx)
	if err != nil {
		return 0, err
	}
	changed, err := s.syncIndex(ctx, active)
	if err != nil {
		return changed, fmt.Errorf("reindex incident locations: %w", err)
	}
	if changed > 0 {
		s.logger.Info("incident geo index repaired", zap.Int("changed", changed))
	}
	return changed, nil
}

func (s *IncidentService) syncIndex(ctx context.Context, active []*domain.Incident) (int, error) {
	indexed, err := s.geoIndex.IndexedIncidents(ctx)
	if err != nil {
		return 0, err
	}

	seen := make(map[int64]bool, len(indexed))
	for _, id := range indexed {
		seen[id] = true
	}

	changed := 0
	for _, i := range active {
		if seen[i.ID] {
			delete(seen, i.ID)
			continue
		}
		if err := s.geoIndex.AddIncident(ctx, i.ID, i.Lat, i.Lon); err != nil {
			return changed, err
		}
		changed++
	}
	for id := range seen {
		if err := s.geoIndex.RemoveIncident(ctx, id); err != nil {
			return changed, err
		}
		changed++
	}
	return changed, nil
}

// SampleIncidents are recorded by SeedSamples into an empty ledger.
var SampleIncidents = []AddIncidentRequest{
	{Zone: "Mansour", Category: domain.CategoryRoadClosure, Severity: domain.SeverityHigh, Description: "Partial road closure", Lat: ptr(33.3209), Lon: ptr(44.3661), AffectedRoad: "Algeria Street"},
	{Zone: "Karrada", Category: domain.CategoryConstruction, Severity: domain.SeverityMedium, Description: "Construction works", Lat: ptr(33.3156), Lon: ptr(44.4012), AffectedRoad: "Karrada Street"},
	{Zone: "Jadriya", Category: domain.CategoryAccident, Severity: domain.SeverityHigh, Description: "Traffic accident", Lat: ptr(33.3089), Lon: ptr(44.3432), AffectedRoad: "Jadriya Bridge"},
	{Zone: "Adhamiya", Category: domain.CategoryRoadClosure, Severity: domain.SeverityCritical, Description: "Full road closure", Lat: ptr(33.3428), Lon: ptr(44.3278), AffectedRoad: "Adhamiya Street"},
}

// SeedSamples records SampleIncidents when the ledger has no active
// incidents. It returns the number of incidents added.
func (s *IncidentService) SeedSamples(ctx context.Context) (int, error) {
	active, err := s.ActiveIncidents(ctx)
	if err != nil {
		return 0, err
	}
	if len(active) > 0 {
		return 0, nil
	}

	for i, req := range SampleIncidents {
		if _, err := s.AddIncident(ctx, req); err != nil {
			return i, err
		}
	}
	return len(SampleIncidents), nil
}

// lock serializes ledger writes. A lock store failure is logged and the
// write proceeds under the in-process mutex only.
func (s *IncidentService) lock(ctx context.Context) (func(), error) {
	s.mu.Lock()
	if s.lockStore == nil {
		return s.mu.Unlock, nil
	}

	token, acquired, err := s.lockStore.AcquireLedgerLock(ctx, ledgerLockTTL)
	if err != nil {
		s.logger.Warn("ledger lock unavailable", zap.Error(err))
		return s.mu.Unlock, nil
	}
	if !acquired {
		s.mu.Unlock()
		return nil, ErrLedgerBusy
	}

	return func() {
		if err := s.lockStore.ReleaseLedgerLock(context.WithoutCancel(ctx), token); err != nil {
			s.logger.Warn("failed to release ledger lock", zap.Error(err))
		}
		s.mu.Unlock()
	}, nil
}

func (s *IncidentService) publish(ctx context.Context, event domain.IncidentEvent) {
	if s.events == nil {
		return
	}
	event.At = s.now()
	if err := s.events.PublishIncidentEvent(ctx, event); err != nil {
		s.logger.Warn("failed to publish incident event", zap.String("type", string(event.Type)), zap.Error(err))
	}
}

func ptr[T any](v T) *T {
	return &v
}
