package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"bits/internal/domain"
)

// CacheStore holds short-lived shared state in Redis: the current weather
// snapshot and per-client session records.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// SessionTTL bounds how long an idle session record is kept.
const SessionTTL = 24 * time.Hour

// Key prefixes
const (
	weatherKey    = "cache:weather:current"
	sessionPrefix = "session:"
)

// CurrentWeather returns the weather snapshot, sampling and storing a new one
// when none is live. Concurrent callers agree on a single snapshot per TTL.
func (s *CacheStore) CurrentWeather(ctx context.Context, sample func() domain.Weather, ttl time.Duration) (domain.Weather, error) {
	current, err := s.client.Get(ctx, weatherKey).Result()
	if err == nil {
		return domain.Weather(current), nil
	}
	if !errors.Is(err, redis.Nil) {
		return "", err
	}

	if _, err := s.client.SetNX(ctx, weatherKey, string(sample()), ttl).Result(); err != nil {
		return "", err
	}

	// Re-read so a caller that lost the SETNX race sees the winner's value.
	current, err = s.client.Get(ctx, weatherKey).Result()
	if err != nil {
		return "", err
	}
	return domain.Weather(current), nil
}

// SetWeather replaces the weather snapshot.
func (s *CacheStore) SetWeather(ctx context.Context, weather domain.Weather, ttl time.Duration) error {
	return s.client.Set(ctx, weatherKey, string(weather), ttl).Err()
}

// GetSession retrieves a session record. A missing session returns nil, nil.
func (s *CacheStore) GetSession(ctx context.Context, id string) (*domain.SessionState, error) {
	data, err := s.client.Get(ctx, sessionPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var state domain.SessionState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// SaveSession stores a session record and refreshes its TTL.
func (s *CacheStore) SaveSession(ctx context.Context, state *domain.SessionState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionPrefix+state.ID, data, SessionTTL).Err()
}
