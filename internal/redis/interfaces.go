package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"bits/internal/domain"
)

// LocationStoreInterface defines the interface for incident geo index operations.
type LocationStoreInterface interface {
	AddIncident(ctx context.Context, id int64, lat, lon float64) error
	FindNearbyIncidents(ctx context.Context, lat, lon, radiusKm float64) ([]IncidentLocation, error)
	RemoveIncident(ctx context.Context, id int64) error
	IndexedIncidents(ctx context.Context) ([]int64, error)
}

// LockStoreInterface defines the interface for distributed locking.
type LockStoreInterface interface {
	AcquireLedgerLock(ctx context.Context, ttl time.Duration) (token string, ok bool, err error)
	ReleaseLedgerLock(ctx context.Context, token string) error
}

// WeatherStoreInterface defines the interface for the shared weather snapshot.
type WeatherStoreInterface interface {
	CurrentWeather(ctx context.Context, sample func() domain.Weather, ttl time.Duration) (domain.Weather, error)
}

// SessionStoreInterface defines the interface for session state records.
type SessionStoreInterface interface {
	GetSession(ctx context.Context, id string) (*domain.SessionState, error)
	SaveSession(ctx context.Context, state *domain.SessionState) error
}

// EventPublisherInterface defines the interface for broadcasting ledger events.
type EventPublisherInterface interface {
	PublishIncidentEvent(ctx context.Context, event domain.IncidentEvent) error
}

// EventSubscriberInterface defines the interface for consuming ledger events.
type EventSubscriberInterface interface {
	Subscribe(ctx context.Context) *redis.PubSub
}

// Ensure concrete types implement interfaces.
var (
	_ LocationStoreInterface   = (*LocationStore)(nil)
	_ LockStoreInterface       = (*LockStore)(nil)
	_ WeatherStoreInterface    = (*CacheStore)(nil)
	_ SessionStoreInterface    = (*CacheStore)(nil)
	_ EventPublisherInterface  = (*EventBus)(nil)
	_ EventSubscriberInterface = (*EventBus)(nil)
)
