package redis

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const incidentLocationKey = "incidents:locations"

// IncidentLocation is an indexed incident position with its distance from
// the query point.
type IncidentLocation struct {
	IncidentID int64
	Lat        float64
	Lon        float64
	DistanceKm float64
}

// LocationStore keeps a geo index of active incidents in Redis.
type LocationStore struct {
	client *redis.Client
}

// NewLocationStore creates a new LocationStore.
func NewLocationStore(client *redis.Client) *LocationStore {
	return &LocationStore{client: client}
}

// AddIncident stores an incident's location using GEOADD.
func (s *LocationStore) AddIncident(ctx context.Context, id int64, lat, lon float64) error {
	return s.client.GeoAdd(ctx, incidentLocationKey, &redis.GeoLocation{
		Name:      strconv.FormatInt(id, 10),
		Longitude: lon,
		Latitude:  lat,
	}).Err()
}

// FindNearbyIncidents returns indexed incidents within the given radius (in
// kilometers), nearest first.
func (s *LocationStore) FindNearbyIncidents(ctx context.Context, lat, lon, radiusKm float64) ([]IncidentLocation, error) {
	results, err := s.client.GeoRadius(ctx, incidentLocationKey, lon, lat, &redis.GeoRadiusQuery{
		Radius:    radiusKm,
		Unit:      "km",
		WithCoord: true,
		WithDist:  true,
		Sort:      "ASC",
	}).Result()
	if err != nil {
		return nil, err
	}

	locations := make([]IncidentLocation, 0, len(results))
	for _, r := range results {
		id, err := strconv.ParseInt(r.Name, 10, 64)
		if err != nil {
			continue
		}
		locations = append(locations, IncidentLocation{
			IncidentID: id,
			Lat:        r.Latitude,
			Lon:        r.Longitude,
			DistanceKm: r.Dist,
		})
	}

	return locations, nil
}

// RemoveIncident removes an incident from the geo index.
func (s *LocationStore) RemoveIncident(ctx context.Context, id int64) error {
	return s.client.ZRem(ctx, incidentLocationKey, strconv.FormatInt(id, 10)).Err()
}

// IndexedIncidents returns the ids of every incident in the geo index.
func (s *LocationStore) IndexedIncidents(ctx context.Context) ([]int64, error) {
	members, err := s.client.ZRange(ctx, incidentLocationKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
