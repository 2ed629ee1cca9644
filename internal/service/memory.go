package service

import (
	"context"
	"sync"
	"time"

	"bits/internal/domain"
	"bits/internal/redis"
)

// MemoryStore keeps the weather snapshot and session records in process.
// It stands in for Redis when Redis is disabled.
type MemoryStore struct {
	mu             sync.Mutex
	weather        domain.Weather
	weatherExpires time.Time
	sessions       map[string]memorySession
	now            func() time.Time
}

type memorySession struct {
	state   domain.SessionState
	expires time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]memorySession),
		now:      time.Now,
	}
}

// CurrentWeather returns the snapshot, sampling a new one once ttl expires.
func (m *MemoryStore) CurrentWeather(ctx context.Context, sample func() domain.Weather, ttl time.Duration) (domain.Weather, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if m.weather == "" || !now.Before(m.weatherExpires) {
		m.weather = sample()
		m.weatherExpires = now.Add(ttl)
	}
	return m.weather, nil
}

// GetSession returns the stored session, or nil when absent or expired.
func (m *MemoryStore) GetSession(ctx context.Context, id string) (*domain.SessionState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	if !m.now().Before(s.expires) {
		delete(m.sessions, id)
		return nil, nil
	}
	state := s.state
	state.ChatHistory = append([]domain.ChatMessage(nil), s.state.ChatHistory...)
	return &state, nil
}

// SaveSession stores a copy of state for redis.SessionTTL.
func (m *MemoryStore) SaveSession(ctx context.Context, state *domain.SessionState) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	saved := *state
	saved.ChatHistory = append([]domain.ChatMessage(nil), state.ChatHistory...)
	m.sessions[state.ID] = memorySession{state: saved, expires: m.now().Add(redis.SessionTTL)}
	return nil
}

var (
	_ redis.WeatherStoreInterface = (*MemoryStore)(nil)
	_ redis.SessionStoreInterface = (*MemoryStore)(nil)
)
